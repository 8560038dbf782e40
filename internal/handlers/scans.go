package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"dental-lab-backend/internal/models"
	"dental-lab-backend/internal/orders"
	"dental-lab-backend/internal/scans"
	"dental-lab-backend/internal/supabase"
)

type ScansHandler struct {
	dbClient       *supabase.DatabaseClient
	storageClient  *supabase.StorageClient
	realtimeClient *supabase.RealtimeClient
}

func NewScansHandler(dbClient *supabase.DatabaseClient, storageClient *supabase.StorageClient, realtimeClient *supabase.RealtimeClient) *ScansHandler {
	return &ScansHandler{
		dbClient:       dbClient,
		storageClient:  storageClient,
		realtimeClient: realtimeClient,
	}
}

// Upload godoc
// @Summary     Upload scan files to an order
// @Description Accepts STL, OBJ and DICOM files. DICOM payloads are parsed to confirm the format before storage.
// @Tags        scans
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID (UUID)"
// @Param       files formData file true "Scan files (multiple allowed)"
// @Success     201 {array} models.ScanResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /orders/{order_id}/scans [post]
func (h *ScansHandler) Upload(c *gin.Context) {
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

	// Ownership check before touching storage.
	if _, err := h.dbClient.GetOrderDetail(c.Request.Context(), orderID, userID); err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to get order", Message: err.Error()})
		return
	}

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: err.Error(),
		})
		return
	}
	form := c.Request.MultipartForm
	if form == nil || len(form.File["files"]) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "no files uploaded",
			Message: "provide scan files under the 'files' field",
		})
		return
	}

	var created []models.ScanResponse
	for _, header := range form.File["files"] {
		contentType, allowed := scans.Allowed(header.Filename)
		if !allowed {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "unsupported file type",
				Message: header.Filename + ": supported formats are STL, OBJ, DCM",
			})
			return
		}

		file, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to read file", Message: err.Error()})
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to read file", Message: err.Error()})
			return
		}

		if contentType == "application/dicom" {
			meta, err := scans.InspectDICOM(data)
			if err != nil {
				c.JSON(http.StatusBadRequest, models.ErrorResponse{
					Error:   "invalid DICOM file",
					Message: header.Filename + ": " + err.Error(),
				})
				return
			}
			if meta.PatientName != "" {
				log.Printf("scan %s carries DICOM patient name %q (modality %s)", header.Filename, meta.PatientName, meta.Modality)
			}
		}

		storagePath, err := h.storageClient.UploadScan(userID, orderID, header.Filename, contentType, data)
		if err != nil {
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Error:   "failed to upload scan",
				Message: err.Error(),
			})
			return
		}

		scan := &models.Scan{
			ID:         uuid.New(),
			OrderID:    orderID,
			FilePath:   storagePath,
			UploadedAt: time.Now(),
		}
		if err := h.dbClient.CreateScan(c.Request.Context(), userID, scan); err != nil {
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Error:   "failed to record scan",
				Message: err.Error(),
			})
			return
		}

		created = append(created, models.ScanResponse{
			ID:         scan.ID.String(),
			FilePath:   scan.FilePath,
			UploadedAt: scan.UploadedAt,
		})
	}

	if h.realtimeClient != nil && len(created) > 0 {
		channel := "user:" + userID.String()
		if err := h.realtimeClient.PublishEvent(channel, "scan_uploaded", supabase.ScanUploadedPayload(orderID, created[0].FilePath)); err != nil {
			log.Printf("failed to publish scan event: %v", err)
		}
	}

	c.JSON(http.StatusCreated, created)
}

// List godoc
// @Summary     List an order's scans
// @Tags        scans
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID (UUID)"
// @Success     200 {array} models.ScanResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /orders/{order_id}/scans [get]
func (h *ScansHandler) List(c *gin.Context) {
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

	rows, err := h.dbClient.ListScans(c.Request.Context(), orderID, userID)
	if errors.Is(err, orders.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "order not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list scans", Message: err.Error()})
		return
	}

	out := make([]models.ScanResponse, 0, len(rows))
	for _, s := range rows {
		out = append(out, models.ScanResponse{
			ID:         s.ID.String(),
			FilePath:   s.FilePath,
			UploadedAt: s.UploadedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}
