package orders_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dental-lab-backend/internal/orders"
)

func TestDraftNextBlockedWithoutType(t *testing.T) {
	d := orders.NewDraft()

	assert.False(t, d.CanAdvance())
	err := d.Next()
	assert.ErrorIs(t, err, orders.ErrNoTypeSelected)
	assert.Equal(t, orders.StepSelectType, d.Step())

	require.NoError(t, d.SelectType(orders.TypeCrown))
	assert.True(t, d.CanAdvance())
	require.NoError(t, d.Next())
	assert.Equal(t, orders.StepPatientInfo, d.Step())
}

func TestDraftNextBlockedWithoutPatientName(t *testing.T) {
	d := orders.NewDraft()
	require.NoError(t, d.SelectType(orders.TypeBridge))
	require.NoError(t, d.Next())

	err := d.Next()
	assert.ErrorIs(t, err, orders.ErrPatientNameMissing)

	// Whitespace-only names do not pass the guard.
	d.SetPatient(orders.PatientDetails{FirstName: "  ", LastName: "Doe"})
	assert.ErrorIs(t, d.Next(), orders.ErrPatientNameMissing)

	d.SetPatient(orders.PatientDetails{FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, d.Next())
	assert.Equal(t, orders.StepUploadFiles, d.Step())
}

func TestDraftFilesOptional(t *testing.T) {
	d := completeDraft(t)
	assert.Equal(t, orders.StepReviewSubmit, d.Step())
	assert.Empty(t, d.Files())
}

func TestDraftPreviousIsNoOpAtStepZero(t *testing.T) {
	d := orders.NewDraft()
	d.Previous()
	assert.Equal(t, orders.StepSelectType, d.Step())

	require.NoError(t, d.SelectType(orders.TypeImplant))
	require.NoError(t, d.Next())
	d.Previous()
	assert.Equal(t, orders.StepSelectType, d.Step())
	// Going back preserves the selection.
	assert.Equal(t, orders.TypeImplant, d.Type())
}

func TestDraftNextRefusesPastReview(t *testing.T) {
	d := completeDraft(t)
	assert.True(t, d.AtFinalStep())
	assert.Error(t, d.Next())
	assert.Equal(t, orders.StepReviewSubmit, d.Step())
}

func TestDraftStageAndUnstageFiles(t *testing.T) {
	d := orders.NewDraft()

	require.NoError(t, d.StageFile(orders.StagedFile{Name: "upper-arch.stl", Size: 2048}))
	assert.ErrorIs(t, d.StageFile(orders.StagedFile{Name: "upper-arch.stl", Size: 4096}), orders.ErrFileAlreadyStaged)
	require.NoError(t, d.StageFile(orders.StagedFile{Name: "bite.dcm", Size: 512}))
	assert.Len(t, d.Files(), 2)

	assert.True(t, d.UnstageFile("upper-arch.stl"))
	assert.False(t, d.UnstageFile("upper-arch.stl"))
	assert.Len(t, d.Files(), 1)
}

func TestBeginSubmitRequiresReviewStep(t *testing.T) {
	d := orders.NewDraft()
	require.NoError(t, d.SelectType(orders.TypeCrown))
	_, err := d.BeginSubmit()
	assert.ErrorIs(t, err, orders.ErrNotAtReview)
}

func TestBeginSubmitBlocksDoubleSubmission(t *testing.T) {
	d := completeDraft(t)

	sub, err := d.BeginSubmit()
	require.NoError(t, err)
	assert.Equal(t, orders.TypeCrown, sub.Type)
	assert.Equal(t, "Jane", sub.Patient.FirstName)

	_, err = d.BeginSubmit()
	assert.ErrorIs(t, err, orders.ErrSubmitInFlight)

	// A failed attempt releases the draft for manual retry.
	d.EndSubmit()
	_, err = d.BeginSubmit()
	assert.NoError(t, err)
}

func TestDraftReset(t *testing.T) {
	d := completeDraft(t)
	require.NoError(t, d.StageFile(orders.StagedFile{Name: "scan.stl", Size: 10}))

	d.Reset()

	assert.Equal(t, orders.StepSelectType, d.Step())
	assert.Empty(t, string(d.Type()))
	assert.Empty(t, d.Patient().FirstName)
	assert.Empty(t, d.Files())
	assert.False(t, d.Submitting())
}

func TestParseOrderType(t *testing.T) {
	got, err := orders.ParseOrderType(" Crown ")
	require.NoError(t, err)
	assert.Equal(t, orders.TypeCrown, got)

	_, err = orders.ParseOrderType("veneer")
	assert.Error(t, err)
}

// completeDraft walks a draft through every guard to the review step.
func completeDraft(t *testing.T) *orders.Draft {
	t.Helper()
	d := orders.NewDraft()
	if err := d.SelectType(orders.TypeCrown); err != nil {
		t.Fatalf("SelectType: %v", err)
	}
	if err := d.Next(); err != nil {
		t.Fatalf("Next past select_type: %v", err)
	}
	d.SetPatient(orders.PatientDetails{FirstName: "Jane", LastName: "Doe"})
	if err := d.Next(); err != nil {
		t.Fatalf("Next past patient_info: %v", err)
	}
	if err := d.Next(); err != nil {
		t.Fatalf("Next past upload_files: %v", err)
	}
	return d
}
