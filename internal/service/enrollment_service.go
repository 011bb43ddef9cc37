package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/admission-api/internal/models"
)

// DefaultMaxEnrollments caps the active enrollments per applicant.
const DefaultMaxEnrollments = 3

type enrollmentRepository interface {
	CreateGuarded(applicantID int64, guard func(existing []models.Enrollment) error, build func() (*models.Enrollment, error)) (*models.Enrollment, error)
	FindByID(id int64) (*models.Enrollment, bool)
	ListByIdentification(identification string) []models.Enrollment
	Update(id int64, fn func(*models.Enrollment) error) (*models.Enrollment, error)
}

type offeringLookup interface {
	Find(key models.OfferingKey) (*models.ProgramOffering, bool)
}

// CreateEnrollmentRequest enrolls an applicant in an offering.
type CreateEnrollmentRequest struct {
	Identification string `json:"identification" validate:"required,len=10,numeric"`
	ProgramID      int    `json:"program_id" validate:"required,gt=0"`
	SiteID         int    `json:"site_id" validate:"required,gt=0"`
	Shift          string `json:"shift" validate:"required"`
	Rank           int    `json:"rank" validate:"required,min=1,max=3"`
}

// RequirementsResult reports whether an enrollment meets its requirements.
type RequirementsResult struct {
	EnrollmentID int64  `json:"enrollment_id"`
	Valid        bool   `json:"valid"`
	ReceiptRef   string `json:"receipt_ref"`
}

// EnrollmentService creates enrollments with their exams and drives their
// state transitions.
type EnrollmentService struct {
	applicants     applicantRepository
	offerings      offeringLookup
	repo           enrollmentRepository
	enrollmentIDs  idSource
	examIDs        idSource
	policy         models.ExamPolicy
	maxEnrollments int
	validator      *validator.Validate
	logger         *zap.Logger
	now            clock
}

// NewEnrollmentService constructs an EnrollmentService.
func NewEnrollmentService(applicants applicantRepository, offerings offeringLookup, repo enrollmentRepository, enrollmentIDs, examIDs idSource, policy models.ExamPolicy, maxEnrollments int, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxEnrollments <= 0 {
		maxEnrollments = DefaultMaxEnrollments
	}
	return &EnrollmentService{
		applicants:     applicants,
		offerings:      offerings,
		repo:           repo,
		enrollmentIDs:  enrollmentIDs,
		examIDs:        examIDs,
		policy:         policy,
		maxEnrollments: maxEnrollments,
		validator:      validate,
		logger:         logger,
		now:            systemClock,
	}
}

// Create enrolls the applicant and schedules the exam in one step.
func (s *EnrollmentService) Create(ctx context.Context, req CreateEnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid enrollment payload")
	}
	if _, err := models.ParseShift(req.Shift); err != nil {
		return nil, err
	}
	applicant, ok := s.applicants.FindByIdentification(req.Identification)
	if !ok {
		return nil, notFound("applicant")
	}
	key := models.OfferingKey{ProgramID: req.ProgramID, SiteID: req.SiteID}
	if _, ok := s.offerings.Find(key); !ok {
		return nil, notFound("offering")
	}

	guard := func(existing []models.Enrollment) error {
		active := 0
		for _, e := range existing {
			if e.State == models.EnrollmentCancelled {
				continue
			}
			active++
			if e.Rank == req.Rank {
				return stateConflict(fmt.Sprintf("preference rank %d is already used", req.Rank))
			}
			if e.ProgramID == key.ProgramID && e.SiteID == key.SiteID {
				return stateConflict("applicant is already enrolled in offering " + key.String())
			}
		}
		if active >= s.maxEnrollments {
			return stateConflict(fmt.Sprintf("applicant already has %d enrollments", active))
		}
		return nil
	}
	build := func() (*models.Enrollment, error) {
		return models.NewEnrollment(models.EnrollmentParams{
			ID:             s.enrollmentIDs.Next(),
			ExamID:         s.examIDs.Next(),
			ApplicantID:    applicant.ID,
			Identification: applicant.Identification,
			ProgramID:      req.ProgramID,
			SiteID:         req.SiteID,
			Shift:          req.Shift,
			Rank:           req.Rank,
		}, s.policy, s.now())
	}

	enrollment, err := s.repo.CreateGuarded(applicant.ID, guard, build)
	if err != nil {
		return nil, storeError(err, "enrollment")
	}
	if _, err := s.applicants.Update(applicant.ID, func(a *models.Applicant) error {
		a.AttachEnrollment(enrollment.ID)
		return nil
	}); err != nil {
		s.logger.Warn("failed to attach enrollment to applicant", zap.Int64("enrollment_id", enrollment.ID), zap.Error(err))
	}

	s.logger.Info("enrollment created",
		zap.Int64("enrollment_id", enrollment.ID),
		zap.String("offering", key.String()),
		zap.Int("rank", enrollment.Rank),
		zap.Int64("exam_id", enrollment.Exam.ID),
	)
	return enrollment, nil
}

// ListByIdentification returns the applicant's enrollments ordered by rank.
func (s *EnrollmentService) ListByIdentification(ctx context.Context, identification string) []models.Enrollment {
	return s.repo.ListByIdentification(strings.TrimSpace(identification))
}

// Get returns an enrollment with its exam.
func (s *EnrollmentService) Get(ctx context.Context, id int64) (*models.Enrollment, bool) {
	return s.repo.FindByID(id)
}

// Cancel cancels an active enrollment together with its exam.
func (s *EnrollmentService) Cancel(ctx context.Context, id int64) (*models.Enrollment, error) {
	updated, err := s.repo.Update(id, func(e *models.Enrollment) error { return e.Cancel() })
	if err != nil {
		return nil, storeError(err, "enrollment")
	}
	s.logger.Info("enrollment cancelled", zap.Int64("enrollment_id", id))
	return updated, nil
}

// Complete closes an active enrollment whose exam has been graded.
func (s *EnrollmentService) Complete(ctx context.Context, id int64) (*models.Enrollment, error) {
	updated, err := s.repo.Update(id, func(e *models.Enrollment) error { return e.Complete() })
	if err != nil {
		return nil, storeError(err, "enrollment")
	}
	s.logger.Info("enrollment completed", zap.Int64("enrollment_id", id))
	return updated, nil
}

// Requirements checks the enrollment requirements.
func (s *EnrollmentService) Requirements(ctx context.Context, id int64) (*RequirementsResult, error) {
	enrollment, ok := s.repo.FindByID(id)
	if !ok {
		return nil, notFound("enrollment")
	}
	return &RequirementsResult{
		EnrollmentID: enrollment.ID,
		Valid:        enrollment.ValidateRequirements(),
		ReceiptRef:   enrollment.ReceiptRef,
	}, nil
}
