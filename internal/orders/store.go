package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"dental-lab-backend/internal/models"
)

var (
	// ErrUnauthenticated means no active identity was resolved.
	ErrUnauthenticated = errors.New("no authenticated identity")
	// ErrNotFound means a referenced row is absent.
	ErrNotFound = errors.New("not found")
)

// Store is the slice of the data service the commit protocol needs.
// The Supabase database client implements it; tests substitute an
// in-memory fake.
type Store interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	CreateProfile(ctx context.Context, p *models.Profile) error
	CreatePatient(ctx context.Context, p *models.Patient) error
	DeletePatient(ctx context.Context, id uuid.UUID) error
	CreateOrder(ctx context.Context, o *models.Order) error
}

// ListInvalidator is the coarse "refetch everything tagged orders"
// signal sent after a successful create.
type ListInvalidator interface {
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// EventPublisher pushes the order-created notification to interested
// clients.
type EventPublisher interface {
	PublishOrderCreated(userID, orderID uuid.UUID) error
}
