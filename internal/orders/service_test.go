package orders_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dental-lab-backend/internal/models"
	"dental-lab-backend/internal/orders"
)

// fakeStore is an in-memory stand-in for the data service.
type fakeStore struct {
	profiles map[uuid.UUID]*models.Profile
	patients map[uuid.UUID]*models.Patient
	orders   map[uuid.UUID]*models.Order

	failCreatePatient bool
	failCreateOrder   bool
	failCreateProfile bool

	orderInserts int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles: make(map[uuid.UUID]*models.Profile),
		patients: make(map[uuid.UUID]*models.Patient),
		orders:   make(map[uuid.UUID]*models.Order),
	}
}

func (f *fakeStore) GetProfile(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, orders.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) CreateProfile(_ context.Context, p *models.Profile) error {
	if f.failCreateProfile {
		return errors.New("profile insert failed")
	}
	f.profiles[p.ID] = p
	return nil
}

func (f *fakeStore) CreatePatient(_ context.Context, p *models.Patient) error {
	if f.failCreatePatient {
		return errors.New("patient insert failed")
	}
	f.patients[p.ID] = p
	return nil
}

func (f *fakeStore) DeletePatient(_ context.Context, id uuid.UUID) error {
	delete(f.patients, id)
	return nil
}

func (f *fakeStore) CreateOrder(_ context.Context, o *models.Order) error {
	f.orderInserts++
	if f.failCreateOrder {
		return errors.New("order insert failed")
	}
	f.orders[o.ID] = o
	return nil
}

type fakeInvalidator struct {
	calls []uuid.UUID
}

func (f *fakeInvalidator) Invalidate(_ context.Context, userID uuid.UUID) error {
	f.calls = append(f.calls, userID)
	return nil
}

type fakePublisher struct {
	events []uuid.UUID
}

func (f *fakePublisher) PublishOrderCreated(_, orderID uuid.UUID) error {
	f.events = append(f.events, orderID)
	return nil
}

func crownSubmission() orders.Submission {
	return orders.Submission{
		Type:    orders.TypeCrown,
		Patient: orders.PatientDetails{FirstName: "Jane", LastName: "Doe"},
	}
}

func TestSubmitHappyPath(t *testing.T) {
	store := newFakeStore()
	lists := &fakeInvalidator{}
	events := &fakePublisher{}
	svc := orders.NewService(store, lists, events)
	userID := uuid.New()

	order, err := svc.Submit(context.Background(), userID, "jane@lab.test", crownSubmission())
	require.NoError(t, err)

	assert.Len(t, store.patients, 1)
	assert.Len(t, store.orders, 1)
	assert.Equal(t, string(orders.StatusPending), order.Status)
	assert.Equal(t, string(orders.TypeCrown), order.Type)
	assert.Equal(t, userID, order.PractitionerID)

	patient := store.patients[order.PatientID]
	require.NotNil(t, patient)
	assert.Equal(t, "Jane", patient.FirstName)
	assert.Equal(t, "Doe", patient.LastName)
	assert.Equal(t, userID, patient.PractitionerID)

	// The coarse invalidation signal and the created event both fire.
	assert.Equal(t, []uuid.UUID{userID}, lists.calls)
	assert.Equal(t, []uuid.UUID{order.ID}, events.events)

	// Profile was created as a side effect of the first submission.
	profile, err := store.GetProfile(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "jane@lab.test", profile.Email)
}

func TestSubmitUnauthenticated(t *testing.T) {
	svc := orders.NewService(newFakeStore(), nil, nil)

	_, err := svc.Submit(context.Background(), uuid.Nil, "", crownSubmission())
	assert.ErrorIs(t, err, orders.ErrUnauthenticated)
}

func TestSubmitPatientInsertFailureAbortsBeforeOrderInsert(t *testing.T) {
	store := newFakeStore()
	store.failCreatePatient = true
	svc := orders.NewService(store, nil, nil)

	_, err := svc.Submit(context.Background(), uuid.New(), "", crownSubmission())
	require.Error(t, err)
	assert.Zero(t, store.orderInserts)
	assert.Empty(t, store.orders)
	assert.Empty(t, store.patients)
}

func TestSubmitOrderInsertFailureCompensatesPatient(t *testing.T) {
	store := newFakeStore()
	store.failCreateOrder = true
	lists := &fakeInvalidator{}
	svc := orders.NewService(store, lists, nil)

	_, err := svc.Submit(context.Background(), uuid.New(), "", crownSubmission())
	require.Error(t, err)

	assert.Empty(t, store.orders)
	// The compensating delete removed the patient row.
	assert.Empty(t, store.patients)
	// No invalidation on failure.
	assert.Empty(t, lists.calls)
}

func TestSubmitProfileExistsSkipsInsert(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	store.profiles[userID] = &models.Profile{ID: userID, Email: "existing@lab.test"}
	store.failCreateProfile = true

	svc := orders.NewService(store, nil, nil)
	_, err := svc.Submit(context.Background(), userID, "new@lab.test", crownSubmission())
	require.NoError(t, err)

	// The pre-existing profile is untouched.
	assert.Equal(t, "existing@lab.test", store.profiles[userID].Email)
}
