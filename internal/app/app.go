// Package app wires stores, services and handlers into a runnable API.
package app

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/admission-api/internal/handler"
	"github.com/noah-isme/admission-api/internal/models"
	"github.com/noah-isme/admission-api/internal/repository"
	"github.com/noah-isme/admission-api/internal/router"
	"github.com/noah-isme/admission-api/internal/service"
	"github.com/noah-isme/admission-api/pkg/config"
	"github.com/noah-isme/admission-api/pkg/idgen"
	"github.com/noah-isme/admission-api/pkg/messaging"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// OfferingCatalog reads the national offer of a period.
type OfferingCatalog interface {
	ListByPeriod(ctx context.Context, period string) ([]models.CatalogOffering, error)
}

// Dependencies are the optional infrastructure adapters. Nil fields fall back
// to in-process behaviour: no stats cache, no catalog import and events
// written to the log.
type Dependencies struct {
	Cache     service.CacheRepository
	Catalog   OfferingCatalog
	Publisher service.EventPublisher
	Readiness map[string]handler.ReadinessCheck
}

// App holds the assembled API.
type App struct {
	Engine     *gin.Engine
	Metrics    *service.MetricsService
	Offerings  *service.OfferingService
	Dispatcher *service.EventDispatcher

	cfg    *config.Config
	logger *zap.Logger
}

// New builds every store, service and handler from cfg.
func New(cfg *config.Config, logger *zap.Logger, deps Dependencies) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := validator.New()
	metrics := service.NewMetricsService()

	records := repository.NewNationalRecordRepository()
	applicants := repository.NewApplicantRepository()
	offerings := repository.NewOfferingRepository()
	enrollments := repository.NewEnrollmentRepository()
	scores := repository.NewScoreRepository()
	profiles := repository.NewProfileRepository()
	assignments := repository.NewAssignmentRepository()

	publisher := deps.Publisher
	if publisher == nil {
		publisher = messaging.NewLogPublisher(logger.Named("events"))
	}
	dispatcher := service.NewEventDispatcher(publisher, metrics, service.DispatcherConfig{
		Queue:      cfg.Events.Queue,
		Workers:    cfg.Events.Workers,
		MaxRetries: cfg.Events.MaxRetries,
		RetryDelay: cfg.Events.RetryDelay,
	}, logger.Named("events"))

	cache := service.NewCacheService(deps.Cache, metrics, cfg.Stats.CacheTTL, logger.Named("cache"), cfg.Stats.CacheEnabled)
	policy := models.NewExamPolicy(cfg.Admission.ExamOffsetDays, cfg.Admission.PracticalPrograms)

	registrySvc := service.NewRegistryService(records, validate, logger.Named("registry"))
	applicantSvc := service.NewApplicantService(records, applicants, idgen.NewSequence(0), validate, logger.Named("applicants"))
	offeringSvc := service.NewOfferingService(offerings, deps.Catalog, cache, metrics, validate, logger.Named("offerings"), cfg.Stats.CacheTTL)
	enrollmentSvc := service.NewEnrollmentService(applicants, offerings, enrollments, idgen.NewSequence(0), idgen.NewSequence(0), policy, cfg.Admission.MaxEnrollments, validate, logger.Named("enrollments"))
	examSvc := service.NewExamService(enrollments, metrics, validate, logger.Named("exams"))
	scoreSvc := service.NewScoreService(records, applicants, enrollments, scores, idgen.NewSequence(0), validate, logger.Named("scores"))
	profileSvc := service.NewProfileService(records, applicants, profiles, validate, logger.Named("profiles"))
	assignmentSvc := service.NewAssignmentService(applicants, enrollments, scores, profiles, offeringSvc, assignments, dispatcher, idgen.NewSequence(0), metrics, validate, logger.Named("assignments"))
	exportSvc := service.NewExportService(offeringSvc, assignmentSvc, nil, nil, logger.Named("exports"))
	authSvc := service.NewAuthService(operators(cfg.Auth.Operators), validate, logger.Named("auth"), service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Registry:   handler.NewRegistryHandler(registrySvc),
		Applicant:  handler.NewApplicantHandler(applicantSvc),
		Offering:   handler.NewOfferingHandler(offeringSvc),
		Enrollment: handler.NewEnrollmentHandler(enrollmentSvc),
		Exam:       handler.NewExamHandler(examSvc),
		Profile:    handler.NewProfileHandler(profileSvc),
		Score:      handler.NewScoreHandler(scoreSvc),
		Assignment: handler.NewAssignmentHandler(assignmentSvc, logger.Named("assignments")),
		Export:     handler.NewExportHandler(exportSvc),
		Metrics:    handler.NewMetricsHandler(metrics, Version, deps.Readiness),
	}
	engine := router.New(handlers, router.Options{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableAuth:     cfg.Auth.Enabled,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Tokens:         authSvc,
		Metrics:        metrics,
		Logger:         logger,
	})

	return &App{
		Engine:     engine,
		Metrics:    metrics,
		Offerings:  offeringSvc,
		Dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger,
	}
}

// ImportCatalog loads the configured period when the catalog is enabled.
func (a *App) ImportCatalog(ctx context.Context) error {
	if !a.cfg.Catalog.Enabled {
		return nil
	}
	result, err := a.Offerings.ImportCatalog(ctx, a.cfg.Catalog.Period)
	if err != nil {
		return err
	}
	if len(result.Failed) > 0 {
		a.logger.Warn("some catalog offerings were not imported", zap.Strings("offerings", result.Failed))
	}
	return nil
}

func operators(creds []config.OperatorCredential) []models.Operator {
	out := make([]models.Operator, 0, len(creds))
	for _, c := range creds {
		out = append(out, models.Operator{
			Username:     c.Username,
			PasswordHash: c.PasswordHash,
			Role:         models.OperatorRole(strings.ToUpper(c.Role)),
			Active:       true,
		})
	}
	return out
}
