package orders_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dental-lab-backend/internal/orders"
)

func TestDraftStoreIsolatesUsers(t *testing.T) {
	store := orders.NewDraftStore()
	alice := uuid.New()
	bob := uuid.New()

	store.Open(alice)
	store.Open(bob)

	require.NoError(t, store.Do(alice, func(d *orders.Draft) error {
		return d.SelectType(orders.TypeCrown)
	}))

	// Bob's draft is untouched by Alice's selection.
	require.NoError(t, store.Do(bob, func(d *orders.Draft) error {
		assert.Equal(t, orders.OrderType(""), d.Type())
		return nil
	}))
}

func TestDraftStoreOpenReplacesExistingDraft(t *testing.T) {
	store := orders.NewDraftStore()
	userID := uuid.New()

	store.Open(userID)
	require.NoError(t, store.Do(userID, func(d *orders.Draft) error {
		return d.SelectType(orders.TypeBridge)
	}))

	store.Open(userID)
	require.NoError(t, store.Do(userID, func(d *orders.Draft) error {
		assert.Equal(t, orders.OrderType(""), d.Type())
		return nil
	}))
}

func TestDraftStoreDiscard(t *testing.T) {
	store := orders.NewDraftStore()
	userID := uuid.New()

	store.Open(userID)
	store.Discard(userID)

	err := store.Do(userID, func(d *orders.Draft) error { return nil })
	assert.ErrorIs(t, err, orders.ErrNoDraft)

	// Discarding twice is harmless.
	store.Discard(userID)
}

func TestDraftStoreNoDraft(t *testing.T) {
	store := orders.NewDraftStore()

	err := store.Do(uuid.New(), func(d *orders.Draft) error { return nil })
	assert.ErrorIs(t, err, orders.ErrNoDraft)
}
