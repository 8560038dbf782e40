package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"dental-lab-backend/internal/models"
	"dental-lab-backend/internal/orders"
)

// DraftsHandler drives the new-order wizard. The draft itself lives
// server-side in an in-memory session store; every endpoint operates on
// the caller's single open draft.
type DraftsHandler struct {
	drafts  *orders.DraftStore
	service *orders.Service
}

func NewDraftsHandler(drafts *orders.DraftStore, service *orders.Service) *DraftsHandler {
	return &DraftsHandler{drafts: drafts, service: service}
}

// Open godoc
// @Summary     Open a new order draft
// @Description Starts a fresh draft at the select-type step, replacing any existing draft.
// @Tags        drafts
// @Produce     json
// @Security    Bearer
// @Success     201 {object} models.DraftResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /drafts [post]
func (h *DraftsHandler) Open(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	h.drafts.Open(userID)
	view, _ := h.draftView(c)
	c.JSON(http.StatusCreated, view)
}

// Get godoc
// @Summary     Get the open draft
// @Tags        drafts
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.DraftResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /drafts [get]
func (h *DraftsHandler) Get(c *gin.Context) {
	view, ok := h.draftView(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, view)
}

// Cancel godoc
// @Summary     Discard the open draft
// @Description Explicit cancellation: the draft is dropped without persisting anything.
// @Tags        drafts
// @Security    Bearer
// @Success     204
// @Failure     401 {object} models.ErrorResponse
// @Router      /drafts [delete]
func (h *DraftsHandler) Cancel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	h.drafts.Discard(userID)
	c.Status(http.StatusNoContent)
}

// SelectType godoc
// @Summary     Choose the order type
// @Tags        drafts
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.SelectTypeRequest true "Order type"
// @Success     200 {object} models.DraftResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /drafts/type [put]
func (h *DraftsHandler) SelectType(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.SelectTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}
	orderType, err := orders.ParseOrderType(req.Type)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid order type", Message: err.Error()})
		return
	}

	if err := h.withDraft(c, userID, func(d *orders.Draft) error {
		return d.SelectType(orderType)
	}); err != nil {
		return
	}
	view, _ := h.draftView(c)
	c.JSON(http.StatusOK, view)
}

// SetPatient godoc
// @Summary     Set patient details and order notes
// @Tags        drafts
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.PatientInfoRequest true "Patient details"
// @Success     200 {object} models.DraftResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /drafts/patient [put]
func (h *DraftsHandler) SetPatient(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.PatientInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid date_of_birth", Message: err.Error()})
		return
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid due_date", Message: err.Error()})
		return
	}

	if err := h.withDraft(c, userID, func(d *orders.Draft) error {
		d.SetPatient(orders.PatientDetails{
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Email:       req.Email,
			Phone:       req.Phone,
			DateOfBirth: dob,
		})
		d.SetNotes(req.AdditionalInfo)
		d.SetDueDate(due)
		return nil
	}); err != nil {
		return
	}
	view, _ := h.draftView(c)
	c.JSON(http.StatusOK, view)
}

// StageFile godoc
// @Summary     Stage a file handle on the draft
// @Description Records name and size only; bytes are uploaded against the created order later.
// @Tags        drafts
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.StageFileRequest true "File handle"
// @Success     200 {object} models.DraftResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /drafts/files [post]
func (h *DraftsHandler) StageFile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.StageFileRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.drafts.Do(userID, func(d *orders.Draft) error {
		return d.StageFile(orders.StagedFile{Name: req.Name, Size: req.Size})
	})
	switch {
	case errors.Is(err, orders.ErrNoDraft):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "no open draft"})
		return
	case errors.Is(err, orders.ErrFileAlreadyStaged):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: "file already staged", Message: err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to stage file", Message: err.Error()})
		return
	}
	view, _ := h.draftView(c)
	c.JSON(http.StatusOK, view)
}

// UnstageFile godoc
// @Summary     Remove a staged file from the draft
// @Tags        drafts
// @Produce     json
// @Security    Bearer
// @Param       name path string true "Staged file name"
// @Success     200 {object} models.DraftResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /drafts/files/{name} [delete]
func (h *DraftsHandler) UnstageFile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	name := c.Param("name")
	err := h.drafts.Do(userID, func(d *orders.Draft) error {
		if !d.UnstageFile(name) {
			return orders.ErrNotFound
		}
		return nil
	})
	switch {
	case errors.Is(err, orders.ErrNoDraft):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "no open draft"})
		return
	case errors.Is(err, orders.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "file not staged"})
		return
	}
	view, _ := h.draftView(c)
	c.JSON(http.StatusOK, view)
}

// Next godoc
// @Summary     Advance the wizard one step
// @Description Fails with 422 when the current step's guard is unmet.
// @Tags        drafts
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.DraftResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /drafts/next [post]
func (h *DraftsHandler) Next(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	err := h.drafts.Do(userID, func(d *orders.Draft) error {
		return d.Next()
	})
	switch {
	case errors.Is(err, orders.ErrNoDraft):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "no open draft"})
		return
	case err != nil:
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Error: "cannot advance", Message: err.Error()})
		return
	}
	view, _ := h.draftView(c)
	c.JSON(http.StatusOK, view)
}

// Previous godoc
// @Summary     Step the wizard back
// @Description A no-op at the first step.
// @Tags        drafts
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.DraftResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /drafts/previous [post]
func (h *DraftsHandler) Previous(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.drafts.Do(userID, func(d *orders.Draft) error {
		d.Previous()
		return nil
	}); errors.Is(err, orders.ErrNoDraft) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "no open draft"})
		return
	}
	view, _ := h.draftView(c)
	c.JSON(http.StatusOK, view)
}

// Submit godoc
// @Summary     Submit the completed draft
// @Description Runs the commit protocol: ensure profile, insert patient, insert order. On success the draft is discarded; on failure it is preserved for manual retry.
// @Tags        drafts
// @Produce     json
// @Security    Bearer
// @Success     201 {object} models.SubmitResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /drafts/submit [post]
func (h *DraftsHandler) Submit(c *gin.Context) {
	if h.service == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var sub orders.Submission
	err := h.drafts.Do(userID, func(d *orders.Draft) error {
		s, err := d.BeginSubmit()
		if err != nil {
			return err
		}
		sub = s
		return nil
	})
	switch {
	case errors.Is(err, orders.ErrNoDraft):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "no open draft"})
		return
	case errors.Is(err, orders.ErrSubmitInFlight):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: "submission already in flight"})
		return
	case err != nil:
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Error: "draft not ready to submit", Message: err.Error()})
		return
	}

	order, err := h.service.Submit(c.Request.Context(), userID, currentUserEmail(c), sub)
	if err != nil {
		// Release the in-flight flag; the draft stays intact for retry.
		_ = h.drafts.Do(userID, func(d *orders.Draft) error {
			d.EndSubmit()
			return nil
		})
		if errors.Is(err, orders.ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "not authenticated"})
			return
		}
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "submission failed", Message: err.Error()})
		return
	}

	h.drafts.Discard(userID)
	c.JSON(http.StatusCreated, models.SubmitResponse{
		OrderID:   order.ID.String(),
		PatientID: order.PatientID.String(),
		Status:    order.Status,
	})
}

// withDraft runs fn on the caller's draft, translating the common
// failures to responses. Call sites return on non-nil error.
func (h *DraftsHandler) withDraft(c *gin.Context, userID uuid.UUID, fn func(*orders.Draft) error) error {
	err := h.drafts.Do(userID, fn)
	switch {
	case errors.Is(err, orders.ErrNoDraft):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "no open draft"})
	case err != nil:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "draft update failed", Message: err.Error()})
	}
	return err
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *DraftsHandler) draftView(c *gin.Context) (models.DraftResponse, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return models.DraftResponse{}, false
	}

	var view models.DraftResponse
	err := h.drafts.Do(userID, func(d *orders.Draft) error {
		files := make([]models.StagedFileResponse, 0, len(d.Files()))
		for _, f := range d.Files() {
			files = append(files, models.StagedFileResponse{Name: f.Name, Size: f.Size})
		}
		p := d.Patient()
		view = models.DraftResponse{
			Step:       int(d.Step()),
			StepName:   d.Step().String(),
			Type:       string(d.Type()),
			Files:      files,
			CanAdvance: d.CanAdvance(),
			CanGoBack:  d.Step() > orders.StepSelectType,
			FinalStep:  d.AtFinalStep(),
			Submitting: d.Submitting(),
		}
		if p.FirstName != "" || p.LastName != "" {
			dob := ""
			if p.DateOfBirth != nil {
				dob = p.DateOfBirth.Format("2006-01-02")
			}
			view.Patient = &models.PatientInfoRequest{
				FirstName:   p.FirstName,
				LastName:    p.LastName,
				Email:       p.Email,
				Phone:       p.Phone,
				DateOfBirth: dob,
			}
		}
		return nil
	})
	if errors.Is(err, orders.ErrNoDraft) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "no open draft"})
		return models.DraftResponse{}, false
	}
	return view, true
}
