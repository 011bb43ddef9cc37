package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/admission-api/internal/models"
)

type nationalRecordRepository interface {
	Create(record *models.NationalRecord) error
	FindByIdentification(identification string) (*models.NationalRecord, bool)
	Update(identification string, fn func(*models.NationalRecord) error) (*models.NationalRecord, error)
	List() []models.NationalRecord
}

// CreateNationalRecordRequest registers a person in the national registry.
type CreateNationalRecordRequest struct {
	Identification   string `json:"identification" validate:"required,min=5,max=20"`
	FirstNames       string `json:"first_names" validate:"required"`
	LastNames        string `json:"last_names" validate:"required"`
	Nationality      string `json:"nationality"`
	HomologatedTitle bool   `json:"homologated_title"`
}

// PersonalSectionRequest completes the personal section.
type PersonalSectionRequest struct {
	BirthDate          string `json:"birth_date" validate:"required"`
	Sex                string `json:"sex" validate:"required"`
	SelfIdentification string `json:"self_identification"`
}

// LocationSectionRequest completes the residence section.
type LocationSectionRequest struct {
	Province     string `json:"province" validate:"required"`
	Canton       string `json:"canton" validate:"required"`
	Parish       string `json:"parish"`
	Neighborhood string `json:"neighborhood"`
	Street       string `json:"street"`
}

// ContactSectionRequest completes the contact section.
type ContactSectionRequest struct {
	Phone string `json:"phone" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// AcademicSectionRequest completes the academic origin. Grade is omitted for
// applicants still in school.
type AcademicSectionRequest struct {
	Institution     string   `json:"institution" validate:"required"`
	InstitutionType string   `json:"institution_type" validate:"required"`
	Grade           *float64 `json:"grade"`
	HonorRoll       bool     `json:"honor_roll"`
}

// DisabilitySectionRequest registers a disability card.
type DisabilitySectionRequest struct {
	Card       string `json:"card" validate:"required"`
	Type       string `json:"type" validate:"required"`
	Percentage int    `json:"percentage" validate:"min=0,max=100"`
}

// PreviousSeatRequest records a seat accepted in an earlier period.
type PreviousSeatRequest struct {
	Accepted bool   `json:"accepted"`
	Period   string `json:"period" validate:"required_if=Accepted true"`
}

// RecordValidation is the outcome of validating a record.
type RecordValidation struct {
	Record      *models.NationalRecord `json:"record"`
	Complete    bool                   `json:"complete"`
	Homologated bool                   `json:"homologated"`
}

// RegistryService manages the national registry of verified records.
type RegistryService struct {
	repo      nationalRecordRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       clock
}

// NewRegistryService constructs a RegistryService.
func NewRegistryService(repo nationalRecordRepository, validate *validator.Validate, logger *zap.Logger) *RegistryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistryService{repo: repo, validator: validate, logger: logger, now: systemClock}
}

// Create registers a new INCOMPLETE record.
func (s *RegistryService) Create(ctx context.Context, req CreateNationalRecordRequest) (*models.NationalRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid national record payload")
	}
	record, err := models.NewNationalRecord(req.Identification, req.FirstNames, req.LastNames, s.now())
	if err != nil {
		return nil, err
	}
	if nationality := strings.ToUpper(strings.TrimSpace(req.Nationality)); nationality != "" {
		record.Nationality = nationality
	}
	record.HomologatedTitle = req.HomologatedTitle
	if err := s.repo.Create(record); err != nil {
		return nil, storeError(err, "national record")
	}
	s.logger.Info("national record registered", zap.String("identification", record.Identification), zap.String("document_type", string(record.DocumentType)))
	return record, nil
}

// Find looks a record up by identification.
func (s *RegistryService) Find(ctx context.Context, identification string) (*models.NationalRecord, bool) {
	return s.repo.FindByIdentification(strings.TrimSpace(identification))
}

// List returns every record.
func (s *RegistryService) List(ctx context.Context) []models.NationalRecord {
	return s.repo.List()
}

// CompletePersonal fills the personal section.
func (s *RegistryService) CompletePersonal(ctx context.Context, identification string, req PersonalSectionRequest) (*models.NationalRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid personal section payload")
	}
	return s.update(identification, func(r *models.NationalRecord) error {
		return r.CompletePersonal(req.BirthDate, req.Sex, req.SelfIdentification, s.now())
	})
}

// CompleteLocation fills the residence section.
func (s *RegistryService) CompleteLocation(ctx context.Context, identification string, req LocationSectionRequest) (*models.NationalRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid location section payload")
	}
	return s.update(identification, func(r *models.NationalRecord) error {
		r.CompleteLocation(models.Location{
			Province:     req.Province,
			Canton:       req.Canton,
			Parish:       req.Parish,
			Neighborhood: req.Neighborhood,
			Street:       req.Street,
		})
		return nil
	})
}

// CompleteContact fills the contact section.
func (s *RegistryService) CompleteContact(ctx context.Context, identification string, req ContactSectionRequest) (*models.NationalRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid contact section payload")
	}
	return s.update(identification, func(r *models.NationalRecord) error {
		r.CompleteContact(req.Phone, req.Email)
		return nil
	})
}

// CompleteAcademic fills the academic origin section.
func (s *RegistryService) CompleteAcademic(ctx context.Context, identification string, req AcademicSectionRequest) (*models.NationalRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid academic section payload")
	}
	return s.update(identification, func(r *models.NationalRecord) error {
		return r.CompleteAcademic(req.Institution, req.InstitutionType, req.Grade, req.HonorRoll)
	})
}

// RegisterDisability records a disability card.
func (s *RegistryService) RegisterDisability(ctx context.Context, identification string, req DisabilitySectionRequest) (*models.NationalRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid disability payload")
	}
	return s.update(identification, func(r *models.NationalRecord) error {
		return r.RegisterDisability(req.Card, req.Type, req.Percentage)
	})
}

// MarkPreviousSeat records a previously accepted seat.
func (s *RegistryService) MarkPreviousSeat(ctx context.Context, identification string, req PreviousSeatRequest) (*models.NationalRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid previous seat payload")
	}
	return s.update(identification, func(r *models.NationalRecord) error {
		r.MarkPreviousSeat(req.Accepted, strings.TrimSpace(req.Period))
		return nil
	})
}

// Validate runs the completeness and homologation checks and stores the result.
func (s *RegistryService) Validate(ctx context.Context, identification string) (*RecordValidation, error) {
	result := &RecordValidation{}
	record, err := s.update(identification, func(r *models.NationalRecord) error {
		result.Complete = r.ValidateCompleteness()
		result.Homologated = r.ValidateHomologation()
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Record = record
	fields := []zap.Field{
		zap.String("identification", record.Identification),
		zap.Bool("complete", result.Complete),
		zap.Bool("homologated", result.Homologated),
	}
	switch {
	case !result.Complete:
		s.logger.Info("national record incomplete", append(fields, zap.String("reason", record.StateReason))...)
	case !result.Homologated:
		s.logger.Info("national record title not homologated", append(fields, zap.String("note", record.PopulationNote))...)
	default:
		s.logger.Debug("national record validated", fields...)
	}
	return result, nil
}

func (s *RegistryService) update(identification string, fn func(*models.NationalRecord) error) (*models.NationalRecord, error) {
	record, err := s.repo.Update(strings.TrimSpace(identification), fn)
	if err != nil {
		return nil, storeError(err, "national record")
	}
	return record, nil
}
