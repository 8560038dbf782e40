package orders

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// OrderType is the kind of dental work being ordered.
type OrderType string

const (
	TypeCrown   OrderType = "crown"
	TypeBridge  OrderType = "bridge"
	TypeImplant OrderType = "implant"
	TypeDenture OrderType = "denture"
	TypeOther   OrderType = "other"
)

var orderTypes = map[OrderType]bool{
	TypeCrown:   true,
	TypeBridge:  true,
	TypeImplant: true,
	TypeDenture: true,
	TypeOther:   true,
}

// ParseOrderType accepts the enumerated type names case-insensitively.
func ParseOrderType(s string) (OrderType, error) {
	t := OrderType(strings.ToLower(strings.TrimSpace(s)))
	if !orderTypes[t] {
		return "", fmt.Errorf("unknown order type %q", s)
	}
	return t, nil
}

// Step indexes the wizard's fixed linear sequence.
type Step int

const (
	StepSelectType Step = iota
	StepPatientInfo
	StepUploadFiles
	StepReviewSubmit

	numSteps = 4
)

func (s Step) String() string {
	switch s {
	case StepSelectType:
		return "select_type"
	case StepPatientInfo:
		return "patient_info"
	case StepUploadFiles:
		return "upload_files"
	case StepReviewSubmit:
		return "review_submit"
	}
	return "unknown"
}

var (
	ErrNoTypeSelected     = errors.New("an order type must be selected")
	ErrPatientNameMissing = errors.New("patient first and last name are required")
	ErrNotAtReview        = errors.New("draft has not reached the review step")
	ErrSubmitInFlight     = errors.New("a submission for this draft is already in flight")
	ErrFileAlreadyStaged  = errors.New("a file with that name is already staged")
)

// PatientDetails is the patient block accumulated at the patient-info
// step. Only first and last name gate advancement.
type PatientDetails struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	DateOfBirth *time.Time
}

// StagedFile is an in-memory file handle: name and size only, no bytes.
// Actual scan upload happens against the created order.
type StagedFile struct {
	Name string
	Size int64
}

// Draft accumulates a new order across the wizard steps. All mutation
// goes through guard-checked methods so a draft can never reach review
// without a selected type and a named patient, and a Submission can
// only be produced from a complete draft.
type Draft struct {
	step       Step
	orderType  OrderType
	patient    PatientDetails
	notes      string
	dueDate    *time.Time
	files      []StagedFile
	submitting bool
}

func NewDraft() *Draft {
	return &Draft{}
}

func (d *Draft) Step() Step              { return d.step }
func (d *Draft) Type() OrderType         { return d.orderType }
func (d *Draft) Patient() PatientDetails { return d.patient }
func (d *Draft) Notes() string           { return d.notes }
func (d *Draft) DueDate() *time.Time     { return d.dueDate }
func (d *Draft) Submitting() bool        { return d.submitting }

// Files returns a copy of the staged file list.
func (d *Draft) Files() []StagedFile {
	out := make([]StagedFile, len(d.files))
	copy(out, d.files)
	return out
}

func (d *Draft) SelectType(t OrderType) error {
	if !orderTypes[t] {
		return fmt.Errorf("unknown order type %q", t)
	}
	d.orderType = t
	return nil
}

func (d *Draft) SetPatient(p PatientDetails) {
	d.patient = p
}

func (d *Draft) SetNotes(notes string) {
	d.notes = notes
}

func (d *Draft) SetDueDate(t *time.Time) {
	d.dueDate = t
}

func (d *Draft) StageFile(f StagedFile) error {
	for _, existing := range d.files {
		if existing.Name == f.Name {
			return ErrFileAlreadyStaged
		}
	}
	d.files = append(d.files, f)
	return nil
}

func (d *Draft) UnstageFile(name string) bool {
	for i, f := range d.files {
		if f.Name == name {
			d.files = append(d.files[:i], d.files[i+1:]...)
			return true
		}
	}
	return false
}

// guard returns the reason the draft may not advance past its current
// step, or nil. Files are optional, so the upload step has no guard.
func (d *Draft) guard() error {
	switch d.step {
	case StepSelectType:
		if d.orderType == "" {
			return ErrNoTypeSelected
		}
	case StepPatientInfo:
		if strings.TrimSpace(d.patient.FirstName) == "" || strings.TrimSpace(d.patient.LastName) == "" {
			return ErrPatientNameMissing
		}
	}
	return nil
}

// CanAdvance reports whether the current step's guard passes. At the
// review step it reports whether the draft may submit.
func (d *Draft) CanAdvance() bool {
	return d.guard() == nil
}

// Next advances one step. At the final step the caller submits instead;
// Next refuses to move past review.
func (d *Draft) Next() error {
	if err := d.guard(); err != nil {
		return err
	}
	if d.step >= StepReviewSubmit {
		return errors.New("already at the review step; submit instead")
	}
	d.step++
	return nil
}

// Previous steps back, preserving everything entered so far. At step 0
// it is a no-op.
func (d *Draft) Previous() {
	if d.step > StepSelectType {
		d.step--
	}
}

// AtFinalStep reports whether the wizard's advance control should read
// "Submit" rather than "Next".
func (d *Draft) AtFinalStep() bool {
	return d.step == StepReviewSubmit
}

// Submission is the closed record handed to the commit protocol. It can
// only be obtained from a draft that has reached review with every
// guard satisfied, so a submission without a type or patient name is
// unrepresentable.
type Submission struct {
	Type    OrderType
	Patient PatientDetails
	Notes   string
	DueDate *time.Time
	Files   []StagedFile
}

// BeginSubmit validates the draft and marks it in flight, returning the
// submission record. A second BeginSubmit before EndSubmit fails, which
// is what disables the submit control during a network call.
func (d *Draft) BeginSubmit() (Submission, error) {
	if d.step != StepReviewSubmit {
		return Submission{}, ErrNotAtReview
	}
	if d.submitting {
		return Submission{}, ErrSubmitInFlight
	}
	if d.orderType == "" {
		return Submission{}, ErrNoTypeSelected
	}
	if strings.TrimSpace(d.patient.FirstName) == "" || strings.TrimSpace(d.patient.LastName) == "" {
		return Submission{}, ErrPatientNameMissing
	}
	d.submitting = true
	return Submission{
		Type:    d.orderType,
		Patient: d.patient,
		Notes:   d.notes,
		DueDate: d.dueDate,
		Files:   d.Files(),
	}, nil
}

// EndSubmit clears the in-flight flag after a failed submission so the
// draft can be retried. On success the draft is discarded instead.
func (d *Draft) EndSubmit() {
	d.submitting = false
}

// Reset returns the draft to its initial empty state.
func (d *Draft) Reset() {
	*d = Draft{}
}
