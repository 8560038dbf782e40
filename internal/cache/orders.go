package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"dental-lab-backend/internal/models"
)

// OrderLists is a per-user read-through cache over the order list
// query. A nil client disables caching entirely, so the handlers work
// without Redis configured.
type OrderLists struct {
	client *redis.Client
	ttl    time.Duration
}

func NewOrderLists(client *redis.Client, ttl time.Duration) *OrderLists {
	return &OrderLists{client: client, ttl: ttl}
}

func listKey(userID uuid.UUID) string {
	return fmt.Sprintf("orders:%s", userID)
}

// Get returns the cached list for the user, or ok=false on miss or
// when caching is disabled. Decode errors are treated as misses.
func (c *OrderLists) Get(ctx context.Context, userID uuid.UUID) ([]models.OrderSummaryResponse, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, listKey(userID)).Result()
	if err != nil {
		return nil, false
	}
	var out []models.OrderSummaryResponse
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, false
	}
	return out, true
}

// Set stores the list with the configured TTL. Failures are dropped;
// the cache is an optimization, not a source of truth.
func (c *OrderLists) Set(ctx context.Context, userID uuid.UUID, list []models.OrderSummaryResponse) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(list)
	if err != nil {
		return
	}
	c.client.Set(ctx, listKey(userID), data, c.ttl)
}

// Invalidate drops the user's cached list so the next read refetches.
func (c *OrderLists) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, listKey(userID)).Err()
}
