package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/admission-api/internal/dto"
	"github.com/noah-isme/admission-api/internal/models"
	"github.com/noah-isme/admission-api/internal/service"
	"github.com/noah-isme/admission-api/pkg/response"
)

type assignmentService interface {
	Create(ctx context.Context, req service.CreateAssignmentRequest) (*models.SeatAssignment, error)
	FindByIdentification(ctx context.Context, identification string) []models.SeatAssignment
	ListByOffering(ctx context.Context, key models.OfferingKey) []models.SeatAssignment
	Summary(ctx context.Context) map[models.AssignmentState]int
	Confirm(ctx context.Context, id int64) (*models.SeatAssignment, error)
	Reject(ctx context.Context, id int64, req service.RejectAssignmentRequest) (*models.SeatAssignment, error)
	Expire(ctx context.Context, id int64) (*models.SeatAssignment, error)
	Allocate(ctx context.Context, key models.OfferingKey) (*service.AllocationResult, error)
}

// AssignmentHandler exposes seat assignments and allocation runs.
type AssignmentHandler struct {
	assignments assignmentService
	logger      *zap.Logger
}

// NewAssignmentHandler constructs AssignmentHandler.
func NewAssignmentHandler(assignments assignmentService, logger *zap.Logger) *AssignmentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentHandler{assignments: assignments, logger: logger}
}

// Create godoc
// @Summary Assign a seat to an applicant
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body service.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req service.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid payload"))
		return
	}
	assignment, err := h.assignments.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.logger.Info("seat assigned", zap.Int64("assignment_id", assignment.ID), operatorField(c))
	response.Created(c, assignment)
}

// ListByIdentification godoc
// @Summary List an applicant's assignments
// @Tags Assignments
// @Produce json
// @Param identification path string true "National identification"
// @Success 200 {object} response.Envelope
// @Router /assignments/{identification} [get]
func (h *AssignmentHandler) ListByIdentification(c *gin.Context) {
	assignments := h.assignments.FindByIdentification(c.Request.Context(), c.Param("identification"))
	response.JSON(c, http.StatusOK, assignments, nil, map[string]interface{}{"total": len(assignments)})
}

// ListByOffering godoc
// @Summary List the assignments of an offering
// @Tags Assignments
// @Produce json
// @Param programId path int true "Program ID"
// @Param siteId path int true "Site ID"
// @Success 200 {object} response.Envelope
// @Router /offerings/{programId}/{siteId}/assignments [get]
func (h *AssignmentHandler) ListByOffering(c *gin.Context) {
	key, err := offeringKeyParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	assignments := h.assignments.ListByOffering(c.Request.Context(), key)
	response.JSON(c, http.StatusOK, assignments, nil, map[string]interface{}{"total": len(assignments)})
}

// Summary godoc
// @Summary Count assignments per state
// @Tags Assignments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /assignments/summary [get]
func (h *AssignmentHandler) Summary(c *gin.Context) {
	byState := h.assignments.Summary(c.Request.Context())
	total := 0
	for _, n := range byState {
		total += n
	}
	response.JSON(c, http.StatusOK, dto.AssignmentSummary{ByState: byState, Total: total}, nil)
}

// Confirm godoc
// @Summary Confirm an assignment
// @Tags Assignments
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assignments/{id}/confirm [post]
func (h *AssignmentHandler) Confirm(c *gin.Context) {
	h.transition(c, "confirm", h.assignments.Confirm)
}

// Reject godoc
// @Summary Reject an assignment and release its seat
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path int true "Assignment ID"
// @Param payload body service.RejectAssignmentRequest false "Reason"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/reject [post]
func (h *AssignmentHandler) Reject(c *gin.Context) {
	var req service.RejectAssignmentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, invalidPayload(err, "invalid reject payload"))
			return
		}
	}
	h.transition(c, "reject", func(ctx context.Context, id int64) (*models.SeatAssignment, error) {
		return h.assignments.Reject(ctx, id, req)
	})
}

// Expire godoc
// @Summary Expire a pending assignment and release its seat
// @Tags Assignments
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/expire [post]
func (h *AssignmentHandler) Expire(c *gin.Context) {
	h.transition(c, "expire", h.assignments.Expire)
}

// Allocate godoc
// @Summary Run the allocation for an offering
// @Tags Assignments
// @Produce json
// @Param programId path int true "Program ID"
// @Param siteId path int true "Site ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /offerings/{programId}/{siteId}/allocate [post]
func (h *AssignmentHandler) Allocate(c *gin.Context) {
	key, err := offeringKeyParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.assignments.Allocate(c.Request.Context(), key)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.logger.Info("allocation requested",
		zap.String("offering", key.String()),
		zap.Int("assigned", len(result.Assigned)),
		operatorField(c),
	)
	response.JSON(c, http.StatusOK, result, nil)
}

func (h *AssignmentHandler) transition(c *gin.Context, action string, op func(context.Context, int64) (*models.SeatAssignment, error)) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	assignment, err := op(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.logger.Info("assignment "+action, zap.Int64("assignment_id", id), zap.String("state", string(assignment.State)), operatorField(c))
	response.JSON(c, http.StatusOK, assignment, nil)
}
