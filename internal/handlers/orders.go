package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dental-lab-backend/internal/cache"
	"dental-lab-backend/internal/export"
	"dental-lab-backend/internal/models"
	"dental-lab-backend/internal/orders"
	"dental-lab-backend/internal/supabase"
)

type OrdersHandler struct {
	dbClient *supabase.DatabaseClient
	lists    *cache.OrderLists
}

func NewOrdersHandler(dbClient *supabase.DatabaseClient, lists *cache.OrderLists) *OrdersHandler {
	return &OrdersHandler{dbClient: dbClient, lists: lists}
}

// ListOrders godoc
// @Summary     List the practitioner's orders
// @Description Newest first, joined with the patient's name. Served from the order-list cache when warm.
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.OrderListResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /orders [get]
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if cached, hit := h.lists.Get(c.Request.Context(), userID); hit {
		c.JSON(http.StatusOK, models.OrderListResponse{Orders: cached})
		return
	}

	rows, err := h.dbClient.ListOrders(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list orders",
			Message: err.Error(),
		})
		return
	}

	summaries := summarize(rows)
	h.lists.Set(c.Request.Context(), userID, summaries)
	c.JSON(http.StatusOK, models.OrderListResponse{Orders: summaries})
}

// GetOrder godoc
// @Summary     Get order details
// @Description Returns the order joined with its patient and scans, plus the lifecycle render state.
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID (UUID)"
// @Success     200 {object} models.OrderResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /orders/{order_id} [get]
func (h *OrdersHandler) GetOrder(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathUUID(c, "order_id")
	if !ok {
		return
	}

	detail, err := h.dbClient.GetOrderDetail(c.Request.Context(), orderID, userID)
	if errors.Is(err, orders.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "order not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to get order",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, orderResponse(detail))
}

// ExportOrder godoc
// @Summary     Export order details
// @Description Produces a downloadable artifact for the order: a structured JSON document or a paginated PDF report, named by the truncated order id.
// @Tags        orders
// @Produce     json
// @Produce     application/pdf
// @Security    Bearer
// @Param       order_id path string true "Order ID (UUID)"
// @Param       format query string false "json or pdf" default(json)
// @Success     200 {file} file
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /orders/{order_id}/export [get]
func (h *OrdersHandler) ExportOrder(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathUUID(c, "order_id")
	if !ok {
		return
	}

	format := c.DefaultQuery("format", export.FormatJSON)
	if format != export.FormatJSON && format != export.FormatPDF {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unsupported export format"})
		return
	}

	detail, err := h.dbClient.GetOrderDetail(c.Request.Context(), orderID, userID)
	if errors.Is(err, orders.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "order not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to get order",
			Message: err.Error(),
		})
		return
	}

	doc := export.BuildDocument(detail)
	filename := export.Filename(doc.OrderID, format)

	var buf bytes.Buffer
	var contentType string
	switch format {
	case export.FormatPDF:
		contentType = "application/pdf"
		err = export.WritePDF(doc, &buf)
	default:
		contentType = "application/json"
		err = export.WriteJSON(doc, &buf)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to build export",
			Message: err.Error(),
		})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func summarize(rows []models.OrderSummary) []models.OrderSummaryResponse {
	out := make([]models.OrderSummaryResponse, 0, len(rows))
	for _, row := range rows {
		s := models.OrderSummaryResponse{
			ID:          row.ID.String(),
			PatientName: row.PatientFirstName + " " + row.PatientLastName,
			Type:        row.Type,
			Status:      row.Status,
			CreatedAt:   row.CreatedAt,
		}
		if row.DueDate.Valid {
			due := row.DueDate.Time
			s.DueDate = &due
		}
		out = append(out, s)
	}
	return out
}

func orderResponse(detail *models.OrderDetail) models.OrderResponse {
	o := detail.Order
	resp := models.OrderResponse{
		ID:        o.ID.String(),
		Type:      o.Type,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	if o.AdditionalInfo.Valid {
		resp.AdditionalInfo = o.AdditionalInfo.String
	}
	if o.DueDate.Valid {
		due := o.DueDate.Time
		resp.DueDate = &due
	}

	p := detail.Patient
	patient := &models.PatientResponse{
		ID:        p.ID.String(),
		FirstName: p.FirstName,
		LastName:  p.LastName,
	}
	if p.Email.Valid {
		patient.Email = p.Email.String
	}
	if p.Phone.Valid {
		patient.Phone = p.Phone.String
	}
	if p.DateOfBirth.Valid {
		dob := p.DateOfBirth.Time
		patient.DateOfBirth = &dob
	}
	resp.Patient = patient

	resp.Scans = make([]models.ScanResponse, 0, len(detail.Scans))
	for _, s := range detail.Scans {
		resp.Scans = append(resp.Scans, models.ScanResponse{
			ID:         s.ID.String(),
			FilePath:   s.FilePath,
			UploadedAt: s.UploadedAt,
		})
	}

	lc := orders.BuildLifecycle(orders.Status(o.Status))
	lifecycle := &models.LifecycleResponse{
		Cancelled: lc.Cancelled,
		Rank:      lc.Rank,
		Progress:  lc.Progress,
	}
	for _, stage := range lc.Stages {
		lifecycle.Stages = append(lifecycle.Stages, models.StageResponse{
			Status:  string(stage.Status),
			Rank:    stage.Rank,
			Active:  stage.Active,
			Current: stage.Current,
		})
	}
	resp.Lifecycle = lifecycle

	return resp
}
