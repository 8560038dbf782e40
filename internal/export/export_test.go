package export_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dental-lab-backend/internal/export"
	"dental-lab-backend/internal/models"
)

func sampleDetail() *models.OrderDetail {
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return &models.OrderDetail{
		Order: models.Order{
			ID:        uuid.MustParse("1a2b3c4d-0000-4000-8000-000000000001"),
			Type:      "crown",
			Status:    "pending",
			CreatedAt: created,
		},
		Patient: models.Patient{
			FirstName: "Jane",
			LastName:  "Doe",
			Email:     sql.NullString{String: "jane@example.com", Valid: true},
		},
	}
}

func TestBuildDocumentFieldMapping(t *testing.T) {
	doc := export.BuildDocument(sampleDetail())

	assert.Equal(t, "1a2b3c4d-0000-4000-8000-000000000001", doc.OrderID)
	assert.Equal(t, "crown", doc.Type)
	assert.Equal(t, "pending", doc.Status)
	assert.Equal(t, "March 14, 2026", doc.CreatedAt)
	assert.Equal(t, "Not set", doc.DueDate)
	assert.Equal(t, "Jane Doe", doc.Patient.Name)
	assert.Equal(t, "jane@example.com", doc.Patient.Email)
	assert.Equal(t, "Not provided", doc.Patient.Phone)
	assert.Equal(t, "Not provided", doc.Patient.DateOfBirth)
	assert.Equal(t, "No additional information provided.", doc.AdditionalInfo)
}

func TestBuildDocumentZeroScans(t *testing.T) {
	doc := export.BuildDocument(sampleDetail())

	// Empty scans section, present but empty in the JSON output.
	require.NotNil(t, doc.Scans)
	assert.Empty(t, doc.Scans)

	var buf bytes.Buffer
	require.NoError(t, export.WriteJSON(doc, &buf))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	scansField, ok := decoded["scans"].([]interface{})
	require.True(t, ok, "scans must serialize as an array, not null")
	assert.Empty(t, scansField)
}

func TestBuildDocumentWithScansAndDueDate(t *testing.T) {
	detail := sampleDetail()
	detail.Order.DueDate = sql.NullTime{Time: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), Valid: true}
	detail.Order.AdditionalInfo = sql.NullString{String: "Shade A2, rush case", Valid: true}
	detail.Scans = []models.Scan{
		{FilePath: "users/u/orders/o/upper-arch.stl", UploadedAt: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
	}

	doc := export.BuildDocument(detail)
	assert.Equal(t, "April 1, 2026", doc.DueDate)
	assert.Equal(t, "Shade A2, rush case", doc.AdditionalInfo)
	require.Len(t, doc.Scans, 1)
	assert.Equal(t, "users/u/orders/o/upper-arch.stl", doc.Scans[0].FilePath)
	assert.Equal(t, "March 15, 2026", doc.Scans[0].UploadedAt)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "order-1a2b3c4d.json", export.Filename("1a2b3c4d-0000-4000-8000-000000000001", export.FormatJSON))
	assert.Equal(t, "order-abc.pdf", export.Filename("abc", export.FormatPDF))
}

func TestWritePDFProducesOutput(t *testing.T) {
	var buf bytes.Buffer
	err := export.WritePDF(export.BuildDocument(sampleDetail()), &buf)
	require.NoError(t, err)

	// A PDF artifact starts with the %PDF header.
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Greater(t, buf.Len(), 500)
}
