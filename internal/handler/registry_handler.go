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

type registryService interface {
	Create(ctx context.Context, req service.CreateNationalRecordRequest) (*models.NationalRecord, error)
	Find(ctx context.Context, identification string) (*models.NationalRecord, bool)
	List(ctx context.Context) []models.NationalRecord
	CompletePersonal(ctx context.Context, identification string, req service.PersonalSectionRequest) (*models.NationalRecord, error)
	CompleteLocation(ctx context.Context, identification string, req service.LocationSectionRequest) (*models.NationalRecord, error)
	CompleteContact(ctx context.Context, identification string, req service.ContactSectionRequest) (*models.NationalRecord, error)
	CompleteAcademic(ctx context.Context, identification string, req service.AcademicSectionRequest) (*models.NationalRecord, error)
	RegisterDisability(ctx context.Context, identification string, req service.DisabilitySectionRequest) (*models.NationalRecord, error)
	MarkPreviousSeat(ctx context.Context, identification string, req service.PreviousSeatRequest) (*models.NationalRecord, error)
	Validate(ctx context.Context, identification string) (*service.RecordValidation, error)
}

// RegistryHandler exposes the national registry endpoints.
type RegistryHandler struct {
	registry registryService
}

// NewRegistryHandler constructs RegistryHandler.
func NewRegistryHandler(registry registryService) *RegistryHandler {
	return &RegistryHandler{registry: registry}
}

// Create godoc
// @Summary Register a national record
// @Tags Registry
// @Accept json
// @Produce json
// @Param payload body service.CreateNationalRecordRequest true "Record payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /national-records [post]
func (h *RegistryHandler) Create(c *gin.Context) {
	var req service.CreateNationalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid payload"))
		return
	}
	record, err := h.registry.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// List godoc
// @Summary List national records
// @Tags Registry
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /national-records [get]
func (h *RegistryHandler) List(c *gin.Context) {
	records := h.registry.List(c.Request.Context())
	response.JSON(c, http.StatusOK, records, nil, map[string]interface{}{"total": len(records)})
}

// Get godoc
// @Summary Find a national record
// @Tags Registry
// @Produce json
// @Param identification path string true "National identification"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /national-records/{identification} [get]
func (h *RegistryHandler) Get(c *gin.Context) {
	record, ok := h.registry.Find(c.Request.Context(), c.Param("identification"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "national record not found"))
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// CompletePersonal godoc
// @Summary Complete the personal section
// @Tags Registry
// @Accept json
// @Produce json
// @Param identification path string true "National identification"
// @Param payload body service.PersonalSectionRequest true "Personal section"
// @Success 200 {object} response.Envelope
// @Router /national-records/{identification}/personal [put]
func (h *RegistryHandler) CompletePersonal(c *gin.Context) {
	var req service.PersonalSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid personal section"))
		return
	}
	h.respond(c, func(ctx context.Context, id string) (*models.NationalRecord, error) {
		return h.registry.CompletePersonal(ctx, id, req)
	})
}

// CompleteLocation godoc
// @Summary Complete the location section
// @Tags Registry
// @Accept json
// @Produce json
// @Param identification path string true "National identification"
// @Param payload body service.LocationSectionRequest true "Location section"
// @Success 200 {object} response.Envelope
// @Router /national-records/{identification}/location [put]
func (h *RegistryHandler) CompleteLocation(c *gin.Context) {
	var req service.LocationSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid location section"))
		return
	}
	h.respond(c, func(ctx context.Context, id string) (*models.NationalRecord, error) {
		return h.registry.CompleteLocation(ctx, id, req)
	})
}

// CompleteContact godoc
// @Summary Complete the contact section
// @Tags Registry
// @Accept json
// @Produce json
// @Param identification path string true "National identification"
// @Param payload body service.ContactSectionRequest true "Contact section"
// @Success 200 {object} response.Envelope
// @Router /national-records/{identification}/contact [put]
func (h *RegistryHandler) CompleteContact(c *gin.Context) {
	var req service.ContactSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid contact section"))
		return
	}
	h.respond(c, func(ctx context.Context, id string) (*models.NationalRecord, error) {
		return h.registry.CompleteContact(ctx, id, req)
	})
}

// CompleteAcademic godoc
// @Summary Complete the academic section
// @Tags Registry
// @Accept json
// @Produce json
// @Param identification path string true "National identification"
// @Param payload body service.AcademicSectionRequest true "Academic section"
// @Success 200 {object} response.Envelope
// @Router /national-records/{identification}/academic [put]
func (h *RegistryHandler) CompleteAcademic(c *gin.Context) {
	var req service.AcademicSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid academic section"))
		return
	}
	h.respond(c, func(ctx context.Context, id string) (*models.NationalRecord, error) {
		return h.registry.CompleteAcademic(ctx, id, req)
	})
}

// RegisterDisability godoc
// @Summary Register disability details
// @Tags Registry
// @Accept json
// @Produce json
// @Param identification path string true "National identification"
// @Param payload body service.DisabilitySectionRequest true "Disability section"
// @Success 200 {object} response.Envelope
// @Router /national-records/{identification}/disability [put]
func (h *RegistryHandler) RegisterDisability(c *gin.Context) {
	var req service.DisabilitySectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid disability section"))
		return
	}
	h.respond(c, func(ctx context.Context, id string) (*models.NationalRecord, error) {
		return h.registry.RegisterDisability(ctx, id, req)
	})
}

// MarkPreviousSeat godoc
// @Summary Record a previously held public university seat
// @Tags Registry
// @Accept json
// @Produce json
// @Param identification path string true "National identification"
// @Param payload body service.PreviousSeatRequest true "Previous seat"
// @Success 200 {object} response.Envelope
// @Router /national-records/{identification}/previous-seat [put]
func (h *RegistryHandler) MarkPreviousSeat(c *gin.Context) {
	var req service.PreviousSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid previous seat payload"))
		return
	}
	h.respond(c, func(ctx context.Context, id string) (*models.NationalRecord, error) {
		return h.registry.MarkPreviousSeat(ctx, id, req)
	})
}

// Validate godoc
// @Summary Check that every record section is complete
// @Tags Registry
// @Produce json
// @Param identification path string true "National identification"
// @Success 200 {object} response.Envelope
// @Router /national-records/{identification}/validate [post]
func (h *RegistryHandler) Validate(c *gin.Context) {
	result, err := h.registry.Validate(c.Request.Context(), c.Param("identification"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

func (h *RegistryHandler) respond(c *gin.Context, update func(ctx context.Context, identification string) (*models.NationalRecord, error)) {
	record, err := update(c.Request.Context(), c.Param("identification"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}
