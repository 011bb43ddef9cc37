package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/admission-api/internal/dto"
	"github.com/noah-isme/admission-api/internal/models"
	"github.com/noah-isme/admission-api/internal/service"
	appErrors "github.com/noah-isme/admission-api/pkg/errors"
	"github.com/noah-isme/admission-api/pkg/response"
)

type applicantService interface {
	Create(ctx context.Context, req service.CreateApplicantRequest) (*models.Applicant, error)
	Find(ctx context.Context, identification string) (*models.Applicant, bool)
	Age(applicant *models.Applicant) (int, error)
	UpdateContact(ctx context.Context, identification string, req service.UpdateContactRequest) (*models.Applicant, error)
}

// ApplicantHandler exposes applicant endpoints.
type ApplicantHandler struct {
	applicants applicantService
}

// NewApplicantHandler constructs ApplicantHandler.
func NewApplicantHandler(applicants applicantService) *ApplicantHandler {
	return &ApplicantHandler{applicants: applicants}
}

// Create godoc
// @Summary Register an applicant from a complete national record
// @Tags Applicants
// @Accept json
// @Produce json
// @Param payload body service.CreateApplicantRequest true "Applicant payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /applicants [post]
func (h *ApplicantHandler) Create(c *gin.Context) {
	var req service.CreateApplicantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid payload"))
		return
	}
	applicant, err := h.applicants.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, applicant)
}

// Get godoc
// @Summary Find an applicant with their current age
// @Tags Applicants
// @Produce json
// @Param identification path string true "National identification"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applicants/{identification} [get]
func (h *ApplicantHandler) Get(c *gin.Context) {
	applicant, ok := h.applicants.Find(c.Request.Context(), c.Param("identification"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "applicant not found"))
		return
	}
	age, err := h.applicants.Age(applicant)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.ApplicantResponse{Applicant: applicant, Age: age}, nil)
}

// UpdateContact godoc
// @Summary Update applicant contact details
// @Tags Applicants
// @Accept json
// @Produce json
// @Param identification path string true "National identification"
// @Param payload body service.UpdateContactRequest true "Contact payload"
// @Success 200 {object} response.Envelope
// @Router /applicants/{identification}/contact [patch]
func (h *ApplicantHandler) UpdateContact(c *gin.Context) {
	var req service.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid contact payload"))
		return
	}
	applicant, err := h.applicants.UpdateContact(c.Request.Context(), c.Param("identification"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, applicant, nil)
}
