package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dental-lab-backend/internal/handlers"
	"dental-lab-backend/internal/middleware"
	"dental-lab-backend/internal/models"
	"dental-lab-backend/internal/orders"
)

// stubStore is the minimal data service the submission path needs.
type stubStore struct {
	profiles        map[uuid.UUID]*models.Profile
	patients        map[uuid.UUID]*models.Patient
	orders          map[uuid.UUID]*models.Order
	failCreateOrder bool
}

func newStubStore() *stubStore {
	return &stubStore{
		profiles: make(map[uuid.UUID]*models.Profile),
		patients: make(map[uuid.UUID]*models.Patient),
		orders:   make(map[uuid.UUID]*models.Order),
	}
}

func (s *stubStore) GetProfile(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, orders.ErrNotFound
	}
	return p, nil
}

func (s *stubStore) CreateProfile(_ context.Context, p *models.Profile) error {
	s.profiles[p.ID] = p
	return nil
}

func (s *stubStore) CreatePatient(_ context.Context, p *models.Patient) error {
	s.patients[p.ID] = p
	return nil
}

func (s *stubStore) DeletePatient(_ context.Context, id uuid.UUID) error {
	delete(s.patients, id)
	return nil
}

func (s *stubStore) CreateOrder(_ context.Context, o *models.Order) error {
	if s.failCreateOrder {
		return errors.New("insert failed")
	}
	s.orders[o.ID] = o
	return nil
}

func draftsRouter(store *stubStore, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	service := orders.NewService(store, nil, nil)
	handler := handlers.NewDraftsHandler(orders.NewDraftStore(), service)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID.String())
		c.Set(middleware.UserEmailKey, "dr.smith@example.com")
		c.Next()
	})
	router.POST("/drafts", handler.Open)
	router.GET("/drafts", handler.Get)
	router.DELETE("/drafts", handler.Cancel)
	router.PUT("/drafts/type", handler.SelectType)
	router.PUT("/drafts/patient", handler.SetPatient)
	router.POST("/drafts/files", handler.StageFile)
	router.DELETE("/drafts/files/:name", handler.UnstageFile)
	router.POST("/drafts/next", handler.Next)
	router.POST("/drafts/previous", handler.Previous)
	router.POST("/drafts/submit", handler.Submit)
	return router
}

func do(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestDraftWizard_FullFlow(t *testing.T) {
	store := newStubStore()
	userID := uuid.New()
	router := draftsRouter(store, userID)

	w := do(router, "POST", "/drafts", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// The first step's guard blocks advancing before a type is chosen.
	w = do(router, "POST", "/drafts/next", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(router, "PUT", "/drafts/type", models.SelectTypeRequest{Type: "crown"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(router, "POST", "/drafts/next", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Patient names are required before leaving the patient step.
	w = do(router, "POST", "/drafts/next", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(router, "PUT", "/drafts/patient", models.PatientInfoRequest{
		FirstName: "Jane",
		LastName:  "Doe",
		DueDate:   "2026-10-01",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(router, "POST", "/drafts/next", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Files are optional; stage one anyway and advance to review.
	w = do(router, "POST", "/drafts/files", models.StageFileRequest{Name: "upper-arch.stl", Size: 2048})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(router, "POST", "/drafts/next", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view models.DraftResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.True(t, view.FinalStep)
	assert.Equal(t, "review_submit", view.StepName)

	w = do(router, "POST", "/drafts/submit", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var submitted models.SubmitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))
	assert.Equal(t, "pending", submitted.Status)
	assert.Len(t, store.orders, 1)
	assert.Len(t, store.patients, 1)

	// Submission consumes the draft.
	w = do(router, "GET", "/drafts", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDraftWizard_SubmitBeforeReviewRejected(t *testing.T) {
	store := newStubStore()
	router := draftsRouter(store, uuid.New())

	do(router, "POST", "/drafts", nil)
	do(router, "PUT", "/drafts/type", models.SelectTypeRequest{Type: "bridge"})

	w := do(router, "POST", "/drafts/submit", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, store.orders)
}

func TestDraftWizard_FailedSubmitPreservesDraft(t *testing.T) {
	store := newStubStore()
	store.failCreateOrder = true
	router := draftsRouter(store, uuid.New())

	do(router, "POST", "/drafts", nil)
	do(router, "PUT", "/drafts/type", models.SelectTypeRequest{Type: "implant"})
	do(router, "POST", "/drafts/next", nil)
	do(router, "PUT", "/drafts/patient", models.PatientInfoRequest{FirstName: "Jane", LastName: "Doe"})
	do(router, "POST", "/drafts/next", nil)
	do(router, "POST", "/drafts/next", nil)

	w := do(router, "POST", "/drafts/submit", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	// The compensating delete removed the patient row and the draft is
	// still there for a retry.
	assert.Empty(t, store.patients)
	w = do(router, "GET", "/drafts", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// A retry is allowed once the in-flight flag is released.
	store.failCreateOrder = false
	w = do(router, "POST", "/drafts/submit", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestDraftWizard_PreviousKeepsEnteredData(t *testing.T) {
	store := newStubStore()
	router := draftsRouter(store, uuid.New())

	do(router, "POST", "/drafts", nil)
	do(router, "PUT", "/drafts/type", models.SelectTypeRequest{Type: "denture"})
	do(router, "POST", "/drafts/next", nil)
	do(router, "PUT", "/drafts/patient", models.PatientInfoRequest{FirstName: "Jane", LastName: "Doe"})

	w := do(router, "POST", "/drafts/previous", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view models.DraftResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "denture", view.Type)
	require.NotNil(t, view.Patient)
	assert.Equal(t, "Jane", view.Patient.FirstName)

	// Backing out of the first step is a no-op.
	w = do(router, "POST", "/drafts/previous", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 0, view.Step)
	assert.Equal(t, "denture", view.Type)
}

func TestDraftWizard_NoDraft(t *testing.T) {
	store := newStubStore()
	router := draftsRouter(store, uuid.New())

	w := do(router, "GET", "/drafts", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, "POST", "/drafts/next", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
