package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/admission-api/internal/models"
	appErrors "github.com/noah-isme/admission-api/pkg/errors"
)

const examDateLayout = "2006-01-02"

type examRepository interface {
	FindByExamID(examID int64) (*models.Enrollment, bool)
	UpdateExam(examID int64, fn func(*models.Exam) error) (*models.Exam, error)
	UpdateActiveExam(examID int64, fn func(*models.Exam) error) (*models.Exam, error)
}

// GradeRequest registers an exam grade. Grade is a pointer so zero is accepted.
type GradeRequest struct {
	Grade *float64 `json:"grade" validate:"required"`
}

// RescheduleRequest moves an exam to a new date and start time.
type RescheduleRequest struct {
	Date  string `json:"date" validate:"required"`
	Start string `json:"start" validate:"required"`
}

// ObservationsRequest replaces the exam observations.
type ObservationsRequest struct {
	Observations string `json:"observations" validate:"max=2000"`
}

// ExamService drives exam grading and scheduling.
type ExamService struct {
	repo      examRepository
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       clock
}

// NewExamService constructs an ExamService.
func NewExamService(repo examRepository, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ExamService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamService{repo: repo, metrics: metrics, validator: validate, logger: logger, now: systemClock}
}

// Find returns an exam by id.
func (s *ExamService) Find(ctx context.Context, id int64) (*models.Exam, bool) {
	enrollment, ok := s.repo.FindByExamID(id)
	if !ok || enrollment.Exam == nil {
		return nil, false
	}
	return enrollment.Exam, true
}

// RegisterGrade grades a scheduled or rescheduled exam of an active enrollment.
func (s *ExamService) RegisterGrade(ctx context.Context, id int64, req GradeRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid grade payload")
	}
	exam, err := s.repo.UpdateActiveExam(id, func(e *models.Exam) error { return e.RegisterGrade(*req.Grade) })
	if err != nil {
		return nil, storeError(err, "exam")
	}
	s.metrics.RecordExamGraded()
	s.logger.Info("exam graded", zap.Int64("exam_id", id), zap.Float64("grade", *req.Grade))
	return exam, nil
}

// Reschedule moves the exam and reopens it for grading.
func (s *ExamService) Reschedule(ctx context.Context, id int64, req RescheduleRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid reschedule payload")
	}
	date, err := time.Parse(examDateLayout, req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must use YYYY-MM-DD")
	}
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	exam, err := s.repo.UpdateActiveExam(id, func(e *models.Exam) error { return e.Reschedule(date, req.Start, today) })
	if err != nil {
		return nil, storeError(err, "exam")
	}
	s.logger.Info("exam rescheduled", zap.Int64("exam_id", id), zap.String("date", req.Date), zap.String("start", exam.Window.Start))
	return exam, nil
}

// Cancel cancels the exam of an active enrollment without touching the
// enrollment itself.
func (s *ExamService) Cancel(ctx context.Context, id int64) (*models.Exam, error) {
	exam, err := s.repo.UpdateActiveExam(id, func(e *models.Exam) error {
		e.Cancel()
		return nil
	})
	if err != nil {
		return nil, storeError(err, "exam")
	}
	s.logger.Info("exam cancelled", zap.Int64("exam_id", id))
	return exam, nil
}

// AddObservations replaces the exam observations.
func (s *ExamService) AddObservations(ctx context.Context, id int64, req ObservationsRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid observations payload")
	}
	exam, err := s.repo.UpdateExam(id, func(e *models.Exam) error {
		e.AddObservations(req.Observations)
		return nil
	})
	if err != nil {
		return nil, storeError(err, "exam")
	}
	return exam, nil
}
