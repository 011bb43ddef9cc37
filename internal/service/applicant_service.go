package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/admission-api/internal/models"
)

type recordLookup interface {
	FindByIdentification(identification string) (*models.NationalRecord, bool)
}

type applicantRepository interface {
	Create(applicant *models.Applicant) error
	FindByID(id int64) (*models.Applicant, bool)
	FindByIdentification(identification string) (*models.Applicant, bool)
	Update(id int64, fn func(*models.Applicant) error) (*models.Applicant, error)
}

// CreateApplicantRequest promotes a complete national record to an applicant.
type CreateApplicantRequest struct {
	Identification string `json:"identification" validate:"required,len=10,numeric"`
}

// UpdateContactRequest changes only the provided contact fields.
type UpdateContactRequest struct {
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone" validate:"omitempty,min=7"`
}

// ApplicantService handles applicant registration.
type ApplicantService struct {
	records    recordLookup
	applicants applicantRepository
	ids        idSource
	validator  *validator.Validate
	logger     *zap.Logger
	now        clock
}

// NewApplicantService constructs an ApplicantService.
func NewApplicantService(records recordLookup, applicants applicantRepository, ids idSource, validate *validator.Validate, logger *zap.Logger) *ApplicantService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicantService{records: records, applicants: applicants, ids: ids, validator: validate, logger: logger, now: systemClock}
}

// Create builds an applicant from the COMPLETE record of the identification.
func (s *ApplicantService) Create(ctx context.Context, req CreateApplicantRequest) (*models.Applicant, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid applicant payload")
	}
	if err := models.ValidateIdentification(req.Identification); err != nil {
		return nil, err
	}
	record, ok := s.records.FindByIdentification(req.Identification)
	if !ok {
		return nil, notFound("national record")
	}
	if _, exists := s.applicants.FindByIdentification(req.Identification); exists {
		return nil, stateConflict("applicant already registered for identification")
	}
	applicant, err := models.ApplicantFromRecord(s.ids.Next(), record, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.applicants.Create(applicant); err != nil {
		return nil, storeError(err, "applicant")
	}
	s.logger.Info("applicant registered", zap.Int64("applicant_id", applicant.ID), zap.String("identification", applicant.Identification))
	return applicant, nil
}

// Find looks an applicant up by identification.
func (s *ApplicantService) Find(ctx context.Context, identification string) (*models.Applicant, bool) {
	return s.applicants.FindByIdentification(strings.TrimSpace(identification))
}

// Age returns the applicant's age today.
func (s *ApplicantService) Age(applicant *models.Applicant) (int, error) {
	return applicant.CalculateAge(s.now())
}

// UpdateContact re-validates and stores the provided contact fields.
func (s *ApplicantService) UpdateContact(ctx context.Context, identification string, req UpdateContactRequest) (*models.Applicant, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid contact payload")
	}
	applicant, ok := s.applicants.FindByIdentification(strings.TrimSpace(identification))
	if !ok {
		return nil, notFound("applicant")
	}
	updated, err := s.applicants.Update(applicant.ID, func(a *models.Applicant) error {
		return a.UpdateContact(req.Email, req.Phone)
	})
	if err != nil {
		return nil, storeError(err, "applicant")
	}
	return updated, nil
}
