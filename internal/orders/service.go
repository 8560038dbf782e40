package orders

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"dental-lab-backend/internal/models"
)

// Service runs the order submission commit protocol against the data
// service. Each network step either fully succeeds before the next
// begins, or the submission is abandoned at that step; there are no
// automatic retries.
type Service struct {
	store  Store
	lists  ListInvalidator
	events EventPublisher
	now    func() time.Time
}

func NewService(store Store, lists ListInvalidator, events EventPublisher) *Service {
	return &Service{
		store:  store,
		lists:  lists,
		events: events,
		now:    time.Now,
	}
}

// Submit commits a completed draft: ensure a profile row exists for the
// identity, insert the patient, insert the order referencing it, then
// invalidate the cached order list and publish the created event.
// On order-insert failure the just-created patient row is deleted as a
// compensating action.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, email string, sub Submission) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	if err := s.ensureProfile(ctx, userID, email); err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}

	patient := &models.Patient{
		ID:             uuid.New(),
		PractitionerID: userID,
		FirstName:      strings.TrimSpace(sub.Patient.FirstName),
		LastName:       strings.TrimSpace(sub.Patient.LastName),
		Email:          nullString(sub.Patient.Email),
		Phone:          nullString(sub.Patient.Phone),
		DateOfBirth:    nullTime(sub.Patient.DateOfBirth),
		CreatedAt:      s.now(),
	}
	if err := s.store.CreatePatient(ctx, patient); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}

	order := &models.Order{
		ID:             uuid.New(),
		PractitionerID: userID,
		PatientID:      patient.ID,
		Type:           string(sub.Type),
		Status:         string(StatusPending),
		AdditionalInfo: nullString(sub.Notes),
		DueDate:        nullTime(sub.DueDate),
		CreatedAt:      s.now(),
		UpdatedAt:      s.now(),
	}
	if err := s.store.CreateOrder(ctx, order); err != nil {
		// Compensate so the failed submission leaves no orphaned
		// patient row behind.
		if delErr := s.store.DeletePatient(ctx, patient.ID); delErr != nil {
			log.Printf("failed to delete patient %s after order insert failure: %v", patient.ID, delErr)
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	if s.lists != nil {
		if err := s.lists.Invalidate(ctx, userID); err != nil {
			log.Printf("failed to invalidate order list for %s: %v", userID, err)
		}
	}
	if s.events != nil {
		if err := s.events.PublishOrderCreated(userID, order.ID); err != nil {
			log.Printf("failed to publish order created event for %s: %v", order.ID, err)
		}
	}

	return order, nil
}

// ensureProfile is an existence check followed by a conditional insert,
// not an atomic upsert. A concurrent first login can race the insert;
// that race is benign, so an insert failure is tolerated when the row
// turns out to exist after all.
func (s *Service) ensureProfile(ctx context.Context, userID uuid.UUID, email string) error {
	_, err := s.store.GetProfile(ctx, userID)
	if err == nil {
		return nil
	}
	if err != ErrNotFound {
		return err
	}

	profile := &models.Profile{
		ID:        userID,
		Email:     email,
		CreatedAt: s.now(),
	}
	if insertErr := s.store.CreateProfile(ctx, profile); insertErr != nil {
		if _, checkErr := s.store.GetProfile(ctx, userID); checkErr == nil {
			return nil
		}
		return insertErr
	}
	return nil
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
