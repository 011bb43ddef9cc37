// Package router assembles the gin engine and the admission API routes.
package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/admission-api/internal/handler"
	"github.com/noah-isme/admission-api/internal/middleware"
	"github.com/noah-isme/admission-api/internal/models"
	"github.com/noah-isme/admission-api/internal/service"
	"github.com/noah-isme/admission-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/admission-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/admission-api/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler the API serves.
type Handlers struct {
	Auth       *handler.AuthHandler
	Registry   *handler.RegistryHandler
	Applicant  *handler.ApplicantHandler
	Offering   *handler.OfferingHandler
	Enrollment *handler.EnrollmentHandler
	Exam       *handler.ExamHandler
	Profile    *handler.ProfileHandler
	Score      *handler.ScoreHandler
	Assignment *handler.AssignmentHandler
	Export     *handler.ExportHandler
	Metrics    *handler.MetricsHandler
}

// Options controls the cross-cutting middleware.
type Options struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableAuth     bool
	EnableDocs     bool
	Tokens         middleware.TokenValidator
	Metrics        *service.MetricsService
	Logger         *zap.Logger
}

// New builds the engine. With auth disabled every route is public.
func New(h Handlers, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	prefix := "/" + strings.Trim(opts.APIPrefix, "/")
	if prefix == "/" {
		prefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(opts.Metrics, "/metrics"))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(prefix)
	api.POST("/auth/login", h.Auth.Login)

	read, write, admin := api, api, api
	if opts.EnableAuth {
		authed := api.Group("", middleware.JWT(opts.Tokens))
		authed.GET("/auth/me", h.Auth.Me)
		read = authed.Group("", middleware.RequireRoles(models.RoleAdmin, models.RoleOperator, models.RoleViewer))
		write = authed.Group("", middleware.RequireRoles(models.RoleAdmin, models.RoleOperator))
		admin = authed.Group("", middleware.RequireRoles(models.RoleAdmin))
	}

	read.GET("/sites", h.Offering.Sites)

	read.GET("/national-records", h.Registry.List)
	read.GET("/national-records/:identification", h.Registry.Get)
	write.POST("/national-records", h.Registry.Create)
	write.PUT("/national-records/:identification/personal", h.Registry.CompletePersonal)
	write.PUT("/national-records/:identification/location", h.Registry.CompleteLocation)
	write.PUT("/national-records/:identification/contact", h.Registry.CompleteContact)
	write.PUT("/national-records/:identification/academic", h.Registry.CompleteAcademic)
	write.PUT("/national-records/:identification/disability", h.Registry.RegisterDisability)
	write.PUT("/national-records/:identification/previous-seat", h.Registry.MarkPreviousSeat)
	write.POST("/national-records/:identification/validate", h.Registry.Validate)

	read.GET("/applicants/:identification", h.Applicant.Get)
	write.POST("/applicants", h.Applicant.Create)
	write.PATCH("/applicants/:identification/contact", h.Applicant.UpdateContact)

	read.GET("/offerings", h.Offering.List)
	read.GET("/offerings/:programId/:siteId", h.Offering.Get)
	read.GET("/offerings/:programId/:siteId/availability", h.Offering.Availability)
	read.GET("/offerings/:programId/:siteId/stats", h.Offering.Stats)
	read.GET("/offerings/:programId/:siteId/assignments", h.Assignment.ListByOffering)
	read.GET("/offerings/:programId/:siteId/assignments/export", h.Export.AssignmentRoster)
	admin.POST("/offerings", h.Offering.Create)
	admin.POST("/offerings/import", h.Offering.Import)
	admin.PUT("/offerings/:programId/:siteId/external", h.Offering.ConfigureExternal)
	admin.POST("/offerings/:programId/:siteId/reserve", h.Offering.Reserve)
	admin.POST("/offerings/:programId/:siteId/release", h.Offering.Release)
	admin.POST("/offerings/:programId/:siteId/allocate", h.Assignment.Allocate)

	read.GET("/enrollments", h.Enrollment.List)
	read.GET("/enrollments/:id", h.Enrollment.Get)
	read.GET("/enrollments/:id/requirements", h.Enrollment.Requirements)
	write.POST("/enrollments", h.Enrollment.Create)
	write.POST("/enrollments/:id/cancel", h.Enrollment.Cancel)
	write.POST("/enrollments/:id/complete", h.Enrollment.Complete)

	read.GET("/exams/:id", h.Exam.Get)
	write.POST("/exams/:id/grade", h.Exam.Grade)
	write.POST("/exams/:id/reschedule", h.Exam.Reschedule)
	write.POST("/exams/:id/cancel", h.Exam.Cancel)
	write.POST("/exams/:id/observations", h.Exam.Observations)

	read.GET("/profiles/:identification", h.Profile.Get)
	write.PUT("/profiles/:identification", h.Profile.Apply)

	read.GET("/scores/:identification", h.Score.Get)
	write.POST("/scores", h.Score.Compute)
	write.PUT("/scores/:identification/merit", h.Score.SetMeritBonus)

	read.GET("/assignments/summary", h.Assignment.Summary)
	read.GET("/assignments/:identification", h.Assignment.ListByIdentification)
	write.POST("/assignments", h.Assignment.Create)
	write.POST("/assignments/:id/confirm", h.Assignment.Confirm)
	write.POST("/assignments/:id/reject", h.Assignment.Reject)
	write.POST("/assignments/:id/expire", h.Assignment.Expire)

	return r
}
