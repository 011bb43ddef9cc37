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

type profileService interface {
	Apply(ctx context.Context, identification string, req service.ApplyProfileRequest) (*models.AffirmativeProfile, error)
	Find(ctx context.Context, identification string) (*models.AffirmativeProfile, bool)
}

// ProfileHandler exposes affirmative action profiles.
type ProfileHandler struct {
	profiles profileService
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(profiles profileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Apply godoc
// @Summary Apply affirmative action conditions and recompute the segment
// @Tags Profiles
// @Accept json
// @Produce json
// @Param identification path string true "National identification"
// @Param payload body service.ApplyProfileRequest true "Conditions"
// @Success 200 {object} response.Envelope
// @Router /profiles/{identification} [put]
func (h *ProfileHandler) Apply(c *gin.Context) {
	var req service.ApplyProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid profile payload"))
		return
	}
	profile, err := h.profiles.Apply(c.Request.Context(), c.Param("identification"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Get godoc
// @Summary Read an applicant's segment and flags
// @Tags Profiles
// @Produce json
// @Param identification path string true "National identification"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profiles/{identification} [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, ok := h.profiles.Find(c.Request.Context(), c.Param("identification"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "profile not found"))
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}
