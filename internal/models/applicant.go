package models

import (
	"strings"
	"time"
)

// Applicant is a verified person allowed to enroll in program offerings.
type Applicant struct {
	ID             int64     `json:"id"`
	Identification string    `json:"identification"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	BirthDate      string    `json:"birth_date"`
	EnrollmentIDs  []int64   `json:"enrollment_ids"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewApplicant validates identification and email before building the applicant.
func NewApplicant(id int64, identification, fullName, email, phone, birthDate string, now time.Time) (*Applicant, error) {
	identification = strings.TrimSpace(identification)
	if err := ValidateIdentification(identification); err != nil {
		return nil, err
	}
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	return &Applicant{
		ID:             id,
		Identification: identification,
		FullName:       strings.TrimSpace(fullName),
		Email:          normalized,
		Phone:          strings.TrimSpace(phone),
		BirthDate:      strings.TrimSpace(birthDate),
		EnrollmentIDs:  []int64{},
		CreatedAt:      now.UTC(),
	}, nil
}

// ApplicantFromRecord builds an applicant out of a COMPLETE national record.
func ApplicantFromRecord(id int64, record *NationalRecord, now time.Time) (*Applicant, error) {
	if record == nil || !record.IsComplete() {
		return nil, stateConflict("national record is not complete")
	}
	return NewApplicant(id, record.Identification, record.FullName(), record.Email, record.Phone, record.BirthDate, now)
}

// CalculateAge returns the age at now, or an error when the birth date is unset.
func (a *Applicant) CalculateAge(now time.Time) (int, error) {
	dob, err := time.Parse(birthDateLayout, a.BirthDate)
	if err != nil {
		return 0, validationError("applicant birth date is missing or malformed")
	}
	return AgeAt(dob, now), nil
}

// UpdateContact replaces only the provided fields, validating the email.
func (a *Applicant) UpdateContact(email, phone *string) error {
	if email != nil {
		normalized, err := NormalizeEmail(*email)
		if err != nil {
			return err
		}
		a.Email = normalized
	}
	if phone != nil {
		a.Phone = strings.TrimSpace(*phone)
	}
	return nil
}

// AttachEnrollment records an enrollment id owned by the applicant.
func (a *Applicant) AttachEnrollment(enrollmentID int64) {
	a.EnrollmentIDs = append(a.EnrollmentIDs, enrollmentID)
}
