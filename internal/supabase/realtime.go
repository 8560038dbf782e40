package supabase

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"
)

// RealtimeClient publishes change notifications to web clients.
// Database writes already trigger Supabase Realtime on the subscribed
// tables; these helpers exist for explicit events over the same
// channels.
type RealtimeClient struct {
	client *supabase.Client
}

func NewRealtimeClient(client *supabase.Client) *RealtimeClient {
	return &RealtimeClient{client: client}
}

func (r *RealtimeClient) PublishEvent(channel string, event string, payload map[string]interface{}) error {
	// The Go client has no direct Realtime publish; the row inserts
	// themselves notify subscribers. Kept as the single seam for an
	// explicit publish if the client gains one.
	return nil
}

// PublishOrderCreated notifies the practitioner's channel that the
// order list changed and needs a refetch.
func (r *RealtimeClient) PublishOrderCreated(userID, orderID uuid.UUID) error {
	channel := fmt.Sprintf("user:%s", userID.String())
	return r.PublishEvent(channel, "order_created", OrderCreatedPayload(orderID))
}

func OrderCreatedPayload(orderID uuid.UUID) map[string]interface{} {
	return map[string]interface{}{
		"order_id": orderID.String(),
		"status":   "pending",
	}
}

func ScanUploadedPayload(orderID uuid.UUID, filePath string) map[string]interface{} {
	return map[string]interface{}{
		"order_id":  orderID.String(),
		"file_path": filePath,
	}
}
