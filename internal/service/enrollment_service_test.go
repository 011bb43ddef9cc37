package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/admission-api/internal/models"
	appErrors "github.com/noah-isme/admission-api/pkg/errors"
)

func TestEnrollmentServiceCreateSchedulesExam(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.registerApplicant(t, "1316202082", 9)
	h.createOffering(t, 101, 1, 10)

	e, err := h.enrollment.Create(ctx, CreateEnrollmentRequest{Identification: "1316202082", ProgramID: 101, SiteID: 1, Shift: " Vespertina ", Rank: 1})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentActive, e.State)
	assert.Equal(t, models.ShiftAfternoon, e.Shift)
	assert.Equal(t, "COMP-1-1316202082.pdf", e.ReceiptRef)

	require.NotNil(t, e.Exam)
	assert.Equal(t, models.ExamPractical, e.Exam.Type)
	assert.Equal(t, 101, e.Exam.Room)
	assert.Equal(t, models.TimeWindow{Start: "14:00", End: "16:00"}, e.Exam.Window)
	assert.Equal(t, fixedNow.Add(15*24*time.Hour), e.Exam.ScheduledDate)
	assert.Equal(t, models.ExamScheduled, e.Exam.State)

	applicant, ok := h.applicants.FindByIdentification("1316202082")
	require.True(t, ok)
	assert.Equal(t, []int64{e.ID}, applicant.EnrollmentIDs)

	stored, ok := h.enrollment.Get(ctx, e.ID)
	require.True(t, ok)
	require.NotNil(t, stored.Exam)
	assert.Equal(t, e.Exam.ID, stored.Exam.ID)
}

func TestEnrollmentServiceCreateRules(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.registerApplicant(t, "1316202082", 9)
	for _, program := range []int{101, 102, 103, 104} {
		h.createOffering(t, program, 1, 10)
	}
	enroll := func(program, rank int) error {
		_, err := h.enrollment.Create(ctx, CreateEnrollmentRequest{Identification: "1316202082", ProgramID: program, SiteID: 1, Shift: "matutina", Rank: rank})
		return err
	}

	require.NoError(t, enroll(101, 1))
	assert.True(t, appErrors.HasCode(enroll(102, 1), appErrors.ErrStateConflict.Code), "duplicate rank")
	assert.True(t, appErrors.HasCode(enroll(101, 2), appErrors.ErrStateConflict.Code), "duplicate offering")
	require.NoError(t, enroll(102, 2))
	require.NoError(t, enroll(103, 3))
	assert.True(t, appErrors.HasCode(enroll(104, 3), appErrors.ErrStateConflict.Code), "limit reached")

	assert.True(t, appErrors.HasCode(enroll(104, 4), appErrors.ErrValidation.Code))
	assert.True(t, appErrors.HasCode(enroll(999, 1), appErrors.ErrNotFound.Code))

	_, err := h.enrollment.Create(ctx, CreateEnrollmentRequest{Identification: "1316202082", ProgramID: 104, SiteID: 1, Shift: "madrugada", Rank: 1})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	_, err = h.enrollment.Create(ctx, CreateEnrollmentRequest{Identification: "0912345678", ProgramID: 101, SiteID: 1, Shift: "matutina", Rank: 1})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))

	list := h.enrollment.ListByIdentification(ctx, "1316202082")
	require.Len(t, list, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{list[0].Rank, list[1].Rank, list[2].Rank})
}

func TestEnrollmentServiceCancelFreesSlot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.registerApplicant(t, "1316202082", 9)
	h.createOffering(t, 101, 1, 10)
	h.createOffering(t, 102, 1, 10)

	e, err := h.enrollment.Create(ctx, CreateEnrollmentRequest{Identification: "1316202082", ProgramID: 101, SiteID: 1, Shift: "matutina", Rank: 1})
	require.NoError(t, err)

	cancelled, err := h.enrollment.Cancel(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentCancelled, cancelled.State)
	assert.Equal(t, models.ExamCancelled, cancelled.Exam.State)

	_, err = h.enrollment.Cancel(ctx, e.ID)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStateConflict.Code))

	req, err := h.enrollment.Requirements(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, req.Valid)

	_, err = h.enrollment.Create(ctx, CreateEnrollmentRequest{Identification: "1316202082", ProgramID: 102, SiteID: 1, Shift: "matutina", Rank: 1})
	require.NoError(t, err)

	_, err = h.enrollment.Cancel(ctx, 999)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
}

func TestEnrollmentServiceCompleteRequiresGradedExam(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.registerApplicant(t, "1316202082", 9)
	h.createOffering(t, 201, 2, 10)

	e, err := h.enrollment.Create(ctx, CreateEnrollmentRequest{Identification: "1316202082", ProgramID: 201, SiteID: 2, Shift: "nocturna", Rank: 1})
	require.NoError(t, err)
	assert.Equal(t, models.ExamWritten, e.Exam.Type)
	assert.Equal(t, 201, e.Exam.Room)

	_, err = h.enrollment.Complete(ctx, e.ID)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStateConflict.Code))

	_, err = h.exam.RegisterGrade(ctx, e.Exam.ID, GradeRequest{Grade: floatPtr(700)})
	require.NoError(t, err)

	completed, err := h.enrollment.Complete(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentCompleted, completed.State)

	_, err = h.enrollment.Cancel(ctx, e.ID)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStateConflict.Code))

	req, err := h.enrollment.Requirements(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, req.Valid)
	assert.Equal(t, "COMP-1-1316202082.pdf", req.ReceiptRef)
}
