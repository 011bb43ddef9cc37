package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/admission-api/pkg/errors"
)

func newTestEnrollment(t *testing.T, programID, siteID int, shift string) *Enrollment {
	t.Helper()
	e, err := NewEnrollment(EnrollmentParams{
		ID: 7, ExamID: 3, ApplicantID: 1, Identification: "1316202082",
		ProgramID: programID, SiteID: siteID, Shift: shift, Rank: 1,
	}, DefaultExamPolicy(), fixedNow)
	require.NoError(t, err)
	return e
}

func TestNewEnrollmentSchedulesExam(t *testing.T) {
	e := newTestEnrollment(t, 101, 1, " Matutina ")

	assert.Equal(t, ShiftMorning, e.Shift)
	assert.Equal(t, EnrollmentActive, e.State)
	assert.Equal(t, "COMP-7-1316202082.pdf", e.ReceiptRef)
	require.NotNil(t, e.Exam)
	assert.Equal(t, int64(3), e.Exam.ID)
	assert.Equal(t, e.ID, e.Exam.EnrollmentID)
	assert.Equal(t, ExamPractical, e.Exam.Type)
	assert.Equal(t, fixedNow.AddDate(0, 0, 15), e.Exam.ScheduledDate)
	assert.Equal(t, TimeWindow{Start: "08:00", End: "10:00"}, e.Exam.Window)
	assert.Equal(t, 101, e.Exam.Room)
	assert.Equal(t, ExamScheduled, e.Exam.State)
}

func TestNewEnrollmentExamVariants(t *testing.T) {
	tests := []struct {
		program, site int
		shift         string
		examType      ExamType
		room          int
		window        TimeWindow
	}{
		{102, 2, "vespertina", ExamPractical, 201, TimeWindow{"14:00", "16:00"}},
		{205, 3, "NOCTURNA", ExamWritten, 301, TimeWindow{"18:00", "20:00"}},
		{103, 9, "matutina", ExamWritten, 101, TimeWindow{"08:00", "10:00"}},
	}
	for _, tc := range tests {
		e := newTestEnrollment(t, tc.program, tc.site, tc.shift)
		assert.Equal(t, tc.examType, e.Exam.Type)
		assert.Equal(t, tc.room, e.Exam.Room)
		assert.Equal(t, tc.window, e.Exam.Window)
	}
}

func TestNewEnrollmentValidation(t *testing.T) {
	base := EnrollmentParams{ID: 1, ApplicantID: 1, Identification: "1316202082", ProgramID: 101, SiteID: 1, Shift: "matutina", Rank: 1}

	bad := base
	bad.Rank = 4
	_, err := NewEnrollment(bad, DefaultExamPolicy(), fixedNow)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	bad = base
	bad.Rank = 0
	_, err = NewEnrollment(bad, DefaultExamPolicy(), fixedNow)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	bad = base
	bad.Shift = "madrugada"
	_, err = NewEnrollment(bad, DefaultExamPolicy(), fixedNow)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}

func TestEnrollmentCancelCascades(t *testing.T) {
	e := newTestEnrollment(t, 101, 1, "matutina")
	require.NoError(t, e.Cancel())

	assert.Equal(t, EnrollmentCancelled, e.State)
	assert.Equal(t, ExamCancelled, e.Exam.State)
	assert.False(t, e.ValidateRequirements())
	assert.True(t, appErrors.HasCode(e.Cancel(), appErrors.ErrStateConflict.Code))
	assert.True(t, appErrors.HasCode(e.Complete(), appErrors.ErrStateConflict.Code))
}

func TestEnrollmentCompleteRequiresGradedExam(t *testing.T) {
	e := newTestEnrollment(t, 101, 1, "matutina")
	assert.True(t, e.ValidateRequirements())

	err := e.Complete()
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStateConflict.Code))
	assert.Equal(t, EnrollmentActive, e.State)

	require.NoError(t, e.Exam.RegisterGrade(850))
	require.NoError(t, e.Complete())
	assert.Equal(t, EnrollmentCompleted, e.State)
	assert.True(t, appErrors.HasCode(e.Cancel(), appErrors.ErrStateConflict.Code))
}

func TestEnrollmentChangeExamOnlyWhileActive(t *testing.T) {
	e := newTestEnrollment(t, 101, 1, "matutina")
	require.NoError(t, e.ChangeExam(func(x *Exam) error { return x.RegisterGrade(850) }))
	require.NoError(t, e.Complete())

	later := fixedNow.AddDate(0, 0, 20)
	err := e.ChangeExam(func(x *Exam) error { return x.Reschedule(later, "08:00", fixedNow) })
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStateConflict.Code))
	assert.Equal(t, ExamCompleted, e.Exam.State)
	require.NotNil(t, e.Exam.Grade)
	assert.Equal(t, 850.0, *e.Exam.Grade)
}

func TestExamRegisterGrade(t *testing.T) {
	e := newTestEnrollment(t, 101, 1, "matutina")

	err := e.Exam.RegisterGrade(1500)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
	assert.Equal(t, ExamScheduled, e.Exam.State)
	assert.Nil(t, e.Exam.Grade)

	require.NoError(t, e.Exam.RegisterGrade(850))
	assert.Equal(t, ExamCompleted, e.Exam.State)
	assert.Equal(t, 850.0, *e.Exam.Grade)

	err = e.Exam.RegisterGrade(900)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStateConflict.Code))
	assert.Equal(t, 850.0, *e.Exam.Grade)
}

func TestExamRescheduleReopensGrading(t *testing.T) {
	e := newTestEnrollment(t, 101, 1, "matutina")
	require.NoError(t, e.Exam.RegisterGrade(400))

	past := fixedNow.Add(-24 * time.Hour)
	assert.True(t, appErrors.HasCode(e.Exam.Reschedule(past, "09:00", fixedNow), appErrors.ErrValidation.Code))
	assert.Equal(t, ExamCompleted, e.Exam.State)

	future := fixedNow.AddDate(0, 0, 20)
	assert.True(t, appErrors.HasCode(e.Exam.Reschedule(future, "9am", fixedNow), appErrors.ErrValidation.Code))

	require.NoError(t, e.Exam.Reschedule(future, "09:30", fixedNow))
	assert.Equal(t, ExamRescheduled, e.Exam.State)
	assert.Equal(t, TimeWindow{Start: "09:30", End: "11:30"}, e.Exam.Window)
	assert.Nil(t, e.Exam.Grade)

	require.NoError(t, e.Exam.RegisterGrade(720))
	assert.Equal(t, 720.0, *e.Exam.Grade)
}

func TestExamCancelled(t *testing.T) {
	e := newTestEnrollment(t, 101, 1, "matutina")
	e.Exam.Cancel()
	assert.True(t, appErrors.HasCode(e.Exam.RegisterGrade(500), appErrors.ErrStateConflict.Code))
	assert.True(t, appErrors.HasCode(e.Exam.Reschedule(fixedNow.AddDate(0, 0, 2), "08:00", fixedNow), appErrors.ErrStateConflict.Code))
	e.Exam.Cancel()
	assert.Equal(t, ExamCancelled, e.Exam.State)
}

func TestExamPolicyFromConfig(t *testing.T) {
	p := NewExamPolicy(0, []int{300})
	assert.Equal(t, DefaultExamOffset, p.OffsetDays)
	assert.Equal(t, ExamPractical, p.TypeFor(300))
	assert.Equal(t, ExamWritten, p.TypeFor(101))
}
