package repository

import (
	"errors"

	"github.com/noah-isme/admission-api/internal/models"
)

// Errors returned by the in-memory admission stores.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicate      = errors.New("record already exists")
)

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneRecord(r *models.NationalRecord) *models.NationalRecord {
	c := *r
	c.Academic.Grade = cloneFloat(r.Academic.Grade)
	if r.Age != nil {
		age := *r.Age
		c.Age = &age
	}
	if r.Disability != nil {
		d := *r.Disability
		c.Disability = &d
	}
	return &c
}

func cloneApplicant(a *models.Applicant) *models.Applicant {
	c := *a
	c.EnrollmentIDs = append([]int64{}, a.EnrollmentIDs...)
	return &c
}

func cloneEnrollment(e *models.Enrollment) *models.Enrollment {
	c := *e
	if e.Exam != nil {
		exam := *e.Exam
		exam.Grade = cloneFloat(e.Exam.Grade)
		c.Exam = &exam
	}
	return &c
}

func cloneAssignment(a *models.SeatAssignment) *models.SeatAssignment {
	c := *a
	if a.ConfirmedAt != nil {
		ts := *a.ConfirmedAt
		c.ConfirmedAt = &ts
	}
	return &c
}
