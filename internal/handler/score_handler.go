package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/admission-api/internal/service"
	appErrors "github.com/noah-isme/admission-api/pkg/errors"
	"github.com/noah-isme/admission-api/pkg/response"
)

type scoreService interface {
	Compute(ctx context.Context, req service.ComputeScoreRequest) (*service.ScoreView, error)
	Find(ctx context.Context, identification string) (*service.ScoreView, bool)
	SetMeritBonus(ctx context.Context, identification string, req service.MeritBonusRequest) (*service.ScoreView, error)
}

// ScoreHandler exposes final scores.
type ScoreHandler struct {
	scores scoreService
}

// NewScoreHandler constructs ScoreHandler.
func NewScoreHandler(scores scoreService) *ScoreHandler {
	return &ScoreHandler{scores: scores}
}

// Compute godoc
// @Summary Compute an applicant's final score
// @Tags Scores
// @Accept json
// @Produce json
// @Param payload body service.ComputeScoreRequest true "Score payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /scores [post]
func (h *ScoreHandler) Compute(c *gin.Context) {
	var req service.ComputeScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid payload"))
		return
	}
	score, err := h.scores.Compute(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, score)
}

// Get godoc
// @Summary Find a final score with its breakdown
// @Tags Scores
// @Produce json
// @Param identification path string true "National identification"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /scores/{identification} [get]
func (h *ScoreHandler) Get(c *gin.Context) {
	score, ok := h.scores.Find(c.Request.Context(), c.Param("identification"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "score not found"))
		return
	}
	response.JSON(c, http.StatusOK, score, nil)
}

// SetMeritBonus godoc
// @Summary Replace the merit bonus and recompute the total
// @Tags Scores
// @Accept json
// @Produce json
// @Param identification path string true "National identification"
// @Param payload body service.MeritBonusRequest true "Merit bonus"
// @Success 200 {object} response.Envelope
// @Router /scores/{identification}/merit [put]
func (h *ScoreHandler) SetMeritBonus(c *gin.Context) {
	var req service.MeritBonusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid merit payload"))
		return
	}
	score, err := h.scores.SetMeritBonus(c.Request.Context(), c.Param("identification"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, score, nil)
}
