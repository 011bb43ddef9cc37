package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/admission-api/internal/models"
)

type scoreRepository interface {
	Create(score *models.FinalScore) error
	FindByApplicant(applicantID int64) (*models.FinalScore, bool)
	Update(applicantID int64, fn func(*models.FinalScore) error) (*models.FinalScore, error)
}

type enrollmentLookup interface {
	FindByID(id int64) (*models.Enrollment, bool)
}

// ComputeScoreRequest computes an applicant's final score from the graded exam
// of one of their enrollments.
type ComputeScoreRequest struct {
	Identification string  `json:"identification" validate:"required,len=10,numeric"`
	EnrollmentID   int64   `json:"enrollment_id" validate:"required,gt=0"`
	MeritBonus     float64 `json:"merit_bonus" validate:"min=0,max=1000"`
}

// MeritBonusRequest replaces the merit bonus of a score.
type MeritBonusRequest struct {
	MeritBonus *float64 `json:"merit_bonus" validate:"required"`
}

// ScoreView is a score with its weighted components.
type ScoreView struct {
	*models.FinalScore
	Breakdown models.ScoreBreakdown `json:"breakdown"`
}

// ScoreService computes and maintains final scores.
type ScoreService struct {
	records     recordLookup
	applicants  applicantRepository
	enrollments enrollmentLookup
	repo        scoreRepository
	ids         idSource
	validator   *validator.Validate
	logger      *zap.Logger
	now         clock
}

// NewScoreService constructs a ScoreService.
func NewScoreService(records recordLookup, applicants applicantRepository, enrollments enrollmentLookup, repo scoreRepository, ids idSource, validate *validator.Validate, logger *zap.Logger) *ScoreService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoreService{
		records:     records,
		applicants:  applicants,
		enrollments: enrollments,
		repo:        repo,
		ids:         ids,
		validator:   validate,
		logger:      logger,
		now:         systemClock,
	}
}

// Compute stores the applicant's only final score.
func (s *ScoreService) Compute(ctx context.Context, req ComputeScoreRequest) (*ScoreView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid score payload")
	}
	applicant, ok := s.applicants.FindByIdentification(req.Identification)
	if !ok {
		return nil, notFound("applicant")
	}
	record, ok := s.records.FindByIdentification(req.Identification)
	if !ok {
		return nil, notFound("national record")
	}
	enrollment, ok := s.enrollments.FindByID(req.EnrollmentID)
	if !ok || enrollment.ApplicantID != applicant.ID {
		return nil, notFound("enrollment")
	}
	if enrollment.State == models.EnrollmentCancelled {
		return nil, stateConflict("enrollment is cancelled")
	}
	if enrollment.Exam == nil || !enrollment.Exam.IsGraded() {
		return nil, stateConflict("exam has not been graded")
	}
	if _, exists := s.repo.FindByApplicant(applicant.ID); exists {
		return nil, stateConflict("final score already computed for applicant")
	}

	score, err := models.NewFinalScore(s.ids.Next(), applicant.ID, applicant.Identification,
		record.PriorGrade(), *enrollment.Exam.Grade, req.MeritBonus, s.now())
	if err != nil {
		return nil, err
	}
	score.EnrollmentID = enrollment.ID
	if err := s.repo.Create(score); err != nil {
		return nil, storeError(err, "final score")
	}
	s.logger.Info("final score computed",
		zap.String("identification", applicant.Identification),
		zap.Int64("enrollment_id", enrollment.ID),
		zap.Float64("total", score.Total),
	)
	return newScoreView(score), nil
}

// Find returns the applicant's score with its breakdown.
func (s *ScoreService) Find(ctx context.Context, identification string) (*ScoreView, bool) {
	applicant, ok := s.applicants.FindByIdentification(strings.TrimSpace(identification))
	if !ok {
		return nil, false
	}
	score, ok := s.repo.FindByApplicant(applicant.ID)
	if !ok {
		return nil, false
	}
	return newScoreView(score), true
}

// SetMeritBonus replaces the bonus and recomputes the total.
func (s *ScoreService) SetMeritBonus(ctx context.Context, identification string, req MeritBonusRequest) (*ScoreView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid merit bonus payload")
	}
	applicant, ok := s.applicants.FindByIdentification(strings.TrimSpace(identification))
	if !ok {
		return nil, notFound("applicant")
	}
	score, err := s.repo.Update(applicant.ID, func(fs *models.FinalScore) error {
		return fs.SetMeritBonus(*req.MeritBonus)
	})
	if err != nil {
		return nil, storeError(err, "final score")
	}
	return newScoreView(score), nil
}

func newScoreView(score *models.FinalScore) *ScoreView {
	return &ScoreView{FinalScore: score, Breakdown: score.Breakdown()}
}
