package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Order struct {
	ID             uuid.UUID
	PractitionerID uuid.UUID
	PatientID      uuid.UUID
	Type           string
	Status         string
	AdditionalInfo sql.NullString
	DueDate        sql.NullTime
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Patient struct {
	ID             uuid.UUID
	PractitionerID uuid.UUID
	FirstName      string
	LastName       string
	Email          sql.NullString
	Phone          sql.NullString
	DateOfBirth    sql.NullTime
	CreatedAt      time.Time
}

type Scan struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	FilePath   string
	UploadedAt time.Time
}

// OrderSummary is the list-view row: order columns joined with the
// patient's name.
type OrderSummary struct {
	Order
	PatientFirstName string
	PatientLastName  string
}

// OrderDetail is the fully joined record the detail view and the
// exporter work from.
type OrderDetail struct {
	Order   Order
	Patient Patient
	Scans   []Scan
}
