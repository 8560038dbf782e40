// Package export turns a fully joined order record into downloadable
// artifacts. Pure transformation: no network I/O, no retries.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"dental-lab-backend/internal/models"
)

const (
	FormatJSON = "json"
	FormatPDF  = "pdf"

	dateLayout = "January 2, 2006"

	notSet      = "Not set"
	notProvided = "Not provided"
	noNotes     = "No additional information provided."
)

// Document mirrors the order detail view with human-readable dates.
type Document struct {
	OrderID        string       `json:"orderId"`
	Type           string       `json:"type"`
	Status         string       `json:"status"`
	CreatedAt      string       `json:"createdAt"`
	DueDate        string       `json:"dueDate"`
	Patient        PatientBlock `json:"patient"`
	AdditionalInfo string       `json:"additionalInfo"`
	Scans          []ScanEntry  `json:"scans"`
}

type PatientBlock struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"dateOfBirth"`
}

type ScanEntry struct {
	FilePath   string `json:"filePath"`
	UploadedAt string `json:"uploadedAt"`
}

// BuildDocument flattens an order detail into the export document. An
// order with zero scans produces an empty scans section.
func BuildDocument(d *models.OrderDetail) Document {
	doc := Document{
		OrderID:   d.Order.ID.String(),
		Type:      d.Order.Type,
		Status:    d.Order.Status,
		CreatedAt: d.Order.CreatedAt.Format(dateLayout),
		DueDate:   notSet,
		Patient: PatientBlock{
			Name:        d.Patient.FirstName + " " + d.Patient.LastName,
			Email:       notProvided,
			Phone:       notProvided,
			DateOfBirth: notProvided,
		},
		AdditionalInfo: noNotes,
		Scans:          []ScanEntry{},
	}

	if d.Order.DueDate.Valid {
		doc.DueDate = d.Order.DueDate.Time.Format(dateLayout)
	}
	if d.Patient.Email.Valid {
		doc.Patient.Email = d.Patient.Email.String
	}
	if d.Patient.Phone.Valid {
		doc.Patient.Phone = d.Patient.Phone.String
	}
	if d.Patient.DateOfBirth.Valid {
		doc.Patient.DateOfBirth = d.Patient.DateOfBirth.Time.Format(dateLayout)
	}
	if d.Order.AdditionalInfo.Valid && d.Order.AdditionalInfo.String != "" {
		doc.AdditionalInfo = d.Order.AdditionalInfo.String
	}
	for _, s := range d.Scans {
		doc.Scans = append(doc.Scans, ScanEntry{
			FilePath:   s.FilePath,
			UploadedAt: s.UploadedAt.Format(dateLayout),
		})
	}
	return doc
}

// Filename names the artifact by the truncated order id,
// e.g. order-1a2b3c4d.json.
func Filename(orderID string, format string) string {
	short := orderID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("order-%s.%s", short, format)
}

// WriteJSON writes the document as indented JSON.
func WriteJSON(doc Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WritePDF renders the document as a paginated A4 report. gofpdf's
// automatic page breaks handle orders with long scan lists.
func WritePDF(doc Document, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Order %s", doc.OrderID), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Order Details")
	pdf.Ln(12)

	writeSection(pdf, "Order Information", [][2]string{
		{"Order ID", doc.OrderID},
		{"Type", doc.Type},
		{"Status", doc.Status},
		{"Created At", doc.CreatedAt},
		{"Due Date", doc.DueDate},
	})

	writeSection(pdf, "Patient Information", [][2]string{
		{"Name", doc.Patient.Name},
		{"Email", doc.Patient.Email},
		{"Phone", doc.Patient.Phone},
		{"Date of Birth", doc.Patient.DateOfBirth},
	})

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Additional Information")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, doc.AdditionalInfo, "", "L", false)
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Uploaded Scans")
	pdf.Ln(8)
	if len(doc.Scans) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.Cell(0, 6, "No scans uploaded.")
		pdf.Ln(8)
	} else {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(120, 7, "File Path", "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, "Uploaded At", "1", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, s := range doc.Scans {
			pdf.CellFormat(120, 7, s.FilePath, "1", 0, "L", false, 0, "")
			pdf.CellFormat(60, 7, s.UploadedAt, "1", 1, "L", false, 0, "")
		}
	}

	return pdf.Output(w)
}

func writeSection(pdf *gofpdf.Fpdf, title string, rows [][2]string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		pdf.CellFormat(45, 6, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}
