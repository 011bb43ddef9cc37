package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/admission-api/internal/models"
	appErrors "github.com/noah-isme/admission-api/pkg/errors"
)

func newExamFixture(t *testing.T) (*admissionHarness, *models.Enrollment) {
	t.Helper()
	h := newHarness(t)
	h.registerApplicant(t, "1316202082", 9)
	h.createOffering(t, 101, 1, 10)
	e, err := h.enrollment.Create(context.Background(), CreateEnrollmentRequest{Identification: "1316202082", ProgramID: 101, SiteID: 1, Shift: "matutina", Rank: 1})
	require.NoError(t, err)
	return h, e
}

func TestExamServiceGradeIsWriteOnce(t *testing.T) {
	h, e := newExamFixture(t)
	ctx := context.Background()

	exam, err := h.exam.RegisterGrade(ctx, e.Exam.ID, GradeRequest{Grade: floatPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, models.ExamCompleted, exam.State)
	require.NotNil(t, exam.Grade)
	assert.Equal(t, 0.0, *exam.Grade)

	_, err = h.exam.RegisterGrade(ctx, e.Exam.ID, GradeRequest{Grade: floatPtr(800)})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStateConflict.Code))

	found, ok := h.exam.Find(ctx, e.Exam.ID)
	require.True(t, ok)
	assert.Equal(t, 0.0, *found.Grade)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.examsGraded))
}

func TestExamServiceGradeValidation(t *testing.T) {
	h, e := newExamFixture(t)
	ctx := context.Background()

	_, err := h.exam.RegisterGrade(ctx, e.Exam.ID, GradeRequest{Grade: floatPtr(1000.5)})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
	_, err = h.exam.RegisterGrade(ctx, e.Exam.ID, GradeRequest{})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	found, _ := h.exam.Find(ctx, e.Exam.ID)
	assert.Equal(t, models.ExamScheduled, found.State)
	assert.Nil(t, found.Grade)

	_, err = h.exam.RegisterGrade(ctx, 999, GradeRequest{Grade: floatPtr(500)})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
}

func TestExamServiceRescheduleReopensGrading(t *testing.T) {
	h, e := newExamFixture(t)
	ctx := context.Background()
	_, err := h.exam.RegisterGrade(ctx, e.Exam.ID, GradeRequest{Grade: floatPtr(400)})
	require.NoError(t, err)

	_, err = h.exam.Reschedule(ctx, e.Exam.ID, RescheduleRequest{Date: "2025-09-30", Start: "10:00"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
	_, err = h.exam.Reschedule(ctx, e.Exam.ID, RescheduleRequest{Date: "30/10/2025", Start: "10:00"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
	_, err = h.exam.Reschedule(ctx, e.Exam.ID, RescheduleRequest{Date: "2025-10-20", Start: "10h00"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	exam, err := h.exam.Reschedule(ctx, e.Exam.ID, RescheduleRequest{Date: "2025-10-01", Start: "10:30"})
	require.NoError(t, err)
	assert.Equal(t, models.ExamRescheduled, exam.State)
	assert.Nil(t, exam.Grade)
	assert.Equal(t, models.TimeWindow{Start: "10:30", End: "12:30"}, exam.Window)

	exam, err = h.exam.RegisterGrade(ctx, e.Exam.ID, GradeRequest{Grade: floatPtr(650)})
	require.NoError(t, err)
	assert.Equal(t, 650.0, *exam.Grade)
}

func TestExamServiceCancelAndObservations(t *testing.T) {
	h, e := newExamFixture(t)
	ctx := context.Background()

	exam, err := h.exam.AddObservations(ctx, e.Exam.ID, ObservationsRequest{Observations: "  arrived late  "})
	require.NoError(t, err)
	assert.Equal(t, "arrived late", exam.Observations)

	exam, err = h.exam.Cancel(ctx, e.Exam.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExamCancelled, exam.State)

	_, err = h.exam.RegisterGrade(ctx, e.Exam.ID, GradeRequest{Grade: floatPtr(500)})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStateConflict.Code))
	_, err = h.exam.Reschedule(ctx, e.Exam.ID, RescheduleRequest{Date: "2025-10-20", Start: "08:00"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStateConflict.Code))

	enrollment, ok := h.enrollment.Get(ctx, e.ID)
	require.True(t, ok)
	assert.Equal(t, models.EnrollmentActive, enrollment.State)
}

func TestExamServiceFreezesExamOfCompletedEnrollment(t *testing.T) {
	h, e := newExamFixture(t)
	ctx := context.Background()
	_, err := h.exam.RegisterGrade(ctx, e.Exam.ID, GradeRequest{Grade: floatPtr(850)})
	require.NoError(t, err)
	_, err = h.enrollment.Complete(ctx, e.ID)
	require.NoError(t, err)

	_, err = h.exam.Reschedule(ctx, e.Exam.ID, RescheduleRequest{Date: "2025-10-20", Start: "08:00"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStateConflict.Code))
	_, err = h.exam.RegisterGrade(ctx, e.Exam.ID, GradeRequest{Grade: floatPtr(100)})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStateConflict.Code))
	_, err = h.exam.Cancel(ctx, e.Exam.ID)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStateConflict.Code))

	exam, err := h.exam.AddObservations(ctx, e.Exam.ID, ObservationsRequest{Observations: "reviewed"})
	require.NoError(t, err)
	assert.Equal(t, models.ExamCompleted, exam.State)
	require.NotNil(t, exam.Grade)
	assert.Equal(t, 850.0, *exam.Grade)

	enrollment, ok := h.enrollment.Get(ctx, e.ID)
	require.True(t, ok)
	assert.Equal(t, models.EnrollmentCompleted, enrollment.State)
}
