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

type offeringService interface {
	Create(ctx context.Context, req service.CreateOfferingRequest) (*models.ProgramOffering, error)
	List(ctx context.Context) []*models.ProgramOffering
	Find(ctx context.Context, key models.OfferingKey) (*models.ProgramOffering, bool)
	ConfigureExternal(ctx context.Context, key models.OfferingKey, req service.ExternalSeatRequest) (*models.ProgramOffering, error)
	Availability(ctx context.Context, key models.OfferingKey, segment string) (service.Availability, error)
	Reserve(ctx context.Context, key models.OfferingKey, req service.SeatRequest) (service.Availability, error)
	Release(ctx context.Context, key models.OfferingKey, req service.SeatRequest) (service.Availability, error)
	Stats(ctx context.Context, key models.OfferingKey) (*models.OfferingStats, error)
	ImportCatalog(ctx context.Context, period string) (*service.ImportResult, error)
}

// OfferingHandler exposes program offerings and their seat ledger.
type OfferingHandler struct {
	offerings offeringService
}

// NewOfferingHandler constructs OfferingHandler.
func NewOfferingHandler(offerings offeringService) *OfferingHandler {
	return &OfferingHandler{offerings: offerings}
}

// Sites godoc
// @Summary List university sites
// @Tags Offerings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sites [get]
func (h *OfferingHandler) Sites(c *gin.Context) {
	response.JSON(c, http.StatusOK, models.Sites(), nil)
}

// Create godoc
// @Summary Create a program offering
// @Tags Offerings
// @Accept json
// @Produce json
// @Param payload body service.CreateOfferingRequest true "Offering payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /offerings [post]
func (h *OfferingHandler) Create(c *gin.Context) {
	var req service.CreateOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid payload"))
		return
	}
	offering, err := h.offerings.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, offering.Stats())
}

// List godoc
// @Summary List program offerings
// @Tags Offerings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /offerings [get]
func (h *OfferingHandler) List(c *gin.Context) {
	offerings := h.offerings.List(c.Request.Context())
	items := make([]models.OfferingStats, 0, len(offerings))
	for _, o := range offerings {
		items = append(items, o.Stats())
	}
	response.JSON(c, http.StatusOK, items, nil, map[string]interface{}{"total": len(items)})
}

// Get godoc
// @Summary Find a program offering
// @Tags Offerings
// @Produce json
// @Param programId path int true "Program ID"
// @Param siteId path int true "Site ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /offerings/{programId}/{siteId} [get]
func (h *OfferingHandler) Get(c *gin.Context) {
	key, err := offeringKeyParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	offering, ok := h.offerings.Find(c.Request.Context(), key)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "offering not found"))
		return
	}
	response.JSON(c, http.StatusOK, offering.Stats(), nil)
}

// ConfigureExternal godoc
// @Summary Replace the seat breakdown with the national offer values
// @Tags Offerings
// @Accept json
// @Produce json
// @Param programId path int true "Program ID"
// @Param siteId path int true "Site ID"
// @Param payload body service.ExternalSeatRequest true "Seat breakdown"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /offerings/{programId}/{siteId}/external [put]
func (h *OfferingHandler) ConfigureExternal(c *gin.Context) {
	key, err := offeringKeyParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.ExternalSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid seat breakdown"))
		return
	}
	offering, err := h.offerings.ConfigureExternal(c.Request.Context(), key, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offering.Stats(), nil)
}

// Availability godoc
// @Summary Free seats of an offering
// @Tags Offerings
// @Produce json
// @Param programId path int true "Program ID"
// @Param siteId path int true "Site ID"
// @Param segment query string false "Segment"
// @Success 200 {object} response.Envelope
// @Router /offerings/{programId}/{siteId}/availability [get]
func (h *OfferingHandler) Availability(c *gin.Context) {
	key, err := offeringKeyParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.offerings.Availability(c.Request.Context(), key, c.Query("segment"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Reserve godoc
// @Summary Reserve one seat of a segment
// @Tags Offerings
// @Accept json
// @Produce json
// @Param programId path int true "Program ID"
// @Param siteId path int true "Site ID"
// @Param payload body service.SeatRequest true "Segment"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /offerings/{programId}/{siteId}/reserve [post]
func (h *OfferingHandler) Reserve(c *gin.Context) {
	h.seat(c, h.offerings.Reserve)
}

// Release godoc
// @Summary Release one seat of a segment
// @Tags Offerings
// @Accept json
// @Produce json
// @Param programId path int true "Program ID"
// @Param siteId path int true "Site ID"
// @Param payload body service.SeatRequest true "Segment"
// @Success 200 {object} response.Envelope
// @Router /offerings/{programId}/{siteId}/release [post]
func (h *OfferingHandler) Release(c *gin.Context) {
	h.seat(c, h.offerings.Release)
}

// Stats godoc
// @Summary Occupancy statistics of an offering
// @Tags Offerings
// @Produce json
// @Param programId path int true "Program ID"
// @Param siteId path int true "Site ID"
// @Success 200 {object} response.Envelope
// @Router /offerings/{programId}/{siteId}/stats [get]
func (h *OfferingHandler) Stats(c *gin.Context) {
	key, err := offeringKeyParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	stats, err := h.offerings.Stats(c.Request.Context(), key)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Import godoc
// @Summary Import the offerings of a period from the national catalog
// @Tags Offerings
// @Produce json
// @Param period query string true "Admission period"
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /offerings/import [post]
func (h *OfferingHandler) Import(c *gin.Context) {
	period := c.Query("period")
	if period == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "period required"))
		return
	}
	result, err := h.offerings.ImportCatalog(c.Request.Context(), period)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

func (h *OfferingHandler) seat(c *gin.Context, op func(context.Context, models.OfferingKey, service.SeatRequest) (service.Availability, error)) {
	key, err := offeringKeyParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.SeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid seat payload"))
		return
	}
	result, err := op(c.Request.Context(), key, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
