package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/admission-api/internal/models"
	"github.com/noah-isme/admission-api/internal/service"
	appErrors "github.com/noah-isme/admission-api/pkg/errors"
	"github.com/noah-isme/admission-api/pkg/response"
)

type examService interface {
	Find(ctx context.Context, id int64) (*models.Exam, bool)
	RegisterGrade(ctx context.Context, id int64, req service.GradeRequest) (*models.Exam, error)
	Reschedule(ctx context.Context, id int64, req service.RescheduleRequest) (*models.Exam, error)
	Cancel(ctx context.Context, id int64) (*models.Exam, error)
	AddObservations(ctx context.Context, id int64, req service.ObservationsRequest) (*models.Exam, error)
}

// ExamHandler exposes exam grading and scheduling.
type ExamHandler struct {
	exams examService
}

// NewExamHandler constructs ExamHandler.
func NewExamHandler(exams examService) *ExamHandler {
	return &ExamHandler{exams: exams}
}

// Get godoc
// @Summary Find an exam
// @Tags Exams
// @Produce json
// @Param id path int true "Exam ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exams/{id} [get]
func (h *ExamHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	exam, ok := h.exams.Find(c.Request.Context(), id)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exam not found"))
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// Grade godoc
// @Summary Register the exam grade
// @Tags Exams
// @Accept json
// @Produce json
// @Param id path int true "Exam ID"
// @Param payload body service.GradeRequest true "Grade"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /exams/{id}/grade [post]
func (h *ExamHandler) Grade(c *gin.Context) {
	var req service.GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid grade payload"))
		return
	}
	h.apply(c, func(ctx context.Context, id int64) (*models.Exam, error) {
		return h.exams.RegisterGrade(ctx, id, req)
	})
}

// Reschedule godoc
// @Summary Move the exam to a new date
// @Tags Exams
// @Accept json
// @Produce json
// @Param id path int true "Exam ID"
// @Param payload body service.RescheduleRequest true "New schedule"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/reschedule [post]
func (h *ExamHandler) Reschedule(c *gin.Context) {
	var req service.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid schedule payload"))
		return
	}
	h.apply(c, func(ctx context.Context, id int64) (*models.Exam, error) {
		return h.exams.Reschedule(ctx, id, req)
	})
}

// Cancel godoc
// @Summary Cancel the exam
// @Tags Exams
// @Produce json
// @Param id path int true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/cancel [post]
func (h *ExamHandler) Cancel(c *gin.Context) {
	h.apply(c, h.exams.Cancel)
}

// Observations godoc
// @Summary Replace the exam observations
// @Tags Exams
// @Accept json
// @Produce json
// @Param id path int true "Exam ID"
// @Param payload body service.ObservationsRequest true "Observations"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/observations [post]
func (h *ExamHandler) Observations(c *gin.Context) {
	var req service.ObservationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid observations payload"))
		return
	}
	h.apply(c, func(ctx context.Context, id int64) (*models.Exam, error) {
		return h.exams.AddObservations(ctx, id, req)
	})
}

func (h *ExamHandler) apply(c *gin.Context, op func(context.Context, int64) (*models.Exam, error)) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	exam, err := op(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}
