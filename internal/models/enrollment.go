package models

import (
	"fmt"
	"strings"
	"time"
)

// EnrollmentState represents the lifecycle of an enrollment.
type EnrollmentState string

const (
	EnrollmentActive    EnrollmentState = "ACTIVE"
	EnrollmentCancelled EnrollmentState = "CANCELLED"
	EnrollmentCompleted EnrollmentState = "COMPLETED"
)

// Shift is the time-of-day track of an enrollment.
type Shift string

const (
	ShiftMorning   Shift = "matutina"
	ShiftAfternoon Shift = "vespertina"
	ShiftEvening   Shift = "nocturna"
)

const (
	MinPreferenceRank = 1
	MaxPreferenceRank = 3
)

// ParseShift accepts any casing and surrounding whitespace.
func ParseShift(raw string) (Shift, error) {
	shift := Shift(strings.ToLower(strings.TrimSpace(raw)))
	switch shift {
	case ShiftMorning, ShiftAfternoon, ShiftEvening:
		return shift, nil
	}
	return "", validationError("shift must be one of matutina, vespertina, nocturna")
}

// Enrollment binds an applicant to a program offering with a preference rank.
type Enrollment struct {
	ID             int64           `json:"id"`
	ApplicantID    int64           `json:"applicant_id"`
	Identification string          `json:"identification"`
	ProgramID      int             `json:"program_id"`
	SiteID         int             `json:"site_id"`
	Shift          Shift           `json:"shift"`
	Rank           int             `json:"rank"`
	ReceiptRef     string          `json:"receipt_ref"`
	State          EnrollmentState `json:"state"`
	CreatedAt      time.Time       `json:"created_at"`
	Exam           *Exam           `json:"exam"`
}

// EnrollmentParams are the inputs of NewEnrollment.
type EnrollmentParams struct {
	ID             int64
	ExamID         int64
	ApplicantID    int64
	Identification string
	ProgramID      int
	SiteID         int
	Shift          string
	Rank           int
	Room           int
}

// NewEnrollment validates rank and shift and schedules the exam in the same step.
func NewEnrollment(p EnrollmentParams, policy ExamPolicy, now time.Time) (*Enrollment, error) {
	if p.Rank < MinPreferenceRank || p.Rank > MaxPreferenceRank {
		return nil, validationError(fmt.Sprintf("preference rank must be between %d and %d", MinPreferenceRank, MaxPreferenceRank))
	}
	shift, err := ParseShift(p.Shift)
	if err != nil {
		return nil, err
	}
	e := &Enrollment{
		ID:             p.ID,
		ApplicantID:    p.ApplicantID,
		Identification: p.Identification,
		ProgramID:      p.ProgramID,
		SiteID:         p.SiteID,
		Shift:          shift,
		Rank:           p.Rank,
		ReceiptRef:     fmt.Sprintf("COMP-%d-%s.pdf", p.ID, p.Identification),
		State:          EnrollmentActive,
		CreatedAt:      now.UTC(),
	}
	e.Exam = NewExam(p.ExamID, p.ID, p.ProgramID, p.SiteID, shift, p.Room, policy, now)
	return e, nil
}

// ValidateRequirements is true while the enrollment is not cancelled and has
// its proof-of-enrollment reference.
func (e *Enrollment) ValidateRequirements() bool {
	return e.State != EnrollmentCancelled && e.ReceiptRef != ""
}

// Cancel cancels the enrollment and its exam.
func (e *Enrollment) Cancel() error {
	if e.State != EnrollmentActive {
		return stateConflict(fmt.Sprintf("enrollment is %s", strings.ToLower(string(e.State))))
	}
	e.State = EnrollmentCancelled
	if e.Exam != nil {
		e.Exam.Cancel()
	}
	return nil
}

// Complete closes an active enrollment whose exam has been graded.
func (e *Enrollment) Complete() error {
	if e.State != EnrollmentActive {
		return stateConflict(fmt.Sprintf("enrollment is %s", strings.ToLower(string(e.State))))
	}
	if e.Exam == nil || !e.Exam.IsGraded() {
		return stateConflict("exam has not been graded")
	}
	e.State = EnrollmentCompleted
	return nil
}

// ChangeExam applies fn to the exam while the enrollment is active. Completed
// and cancelled enrollments keep the exam their final score was computed from.
func (e *Enrollment) ChangeExam(fn func(*Exam) error) error {
	if e.State != EnrollmentActive {
		return stateConflict(fmt.Sprintf("enrollment is %s; its exam can no longer change", strings.ToLower(string(e.State))))
	}
	if e.Exam == nil {
		return stateConflict("enrollment has no exam")
	}
	return fn(e.Exam)
}
