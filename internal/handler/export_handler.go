package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/admission-api/internal/models"
	"github.com/noah-isme/admission-api/internal/service"
	"github.com/noah-isme/admission-api/pkg/response"
)

type rosterExporter interface {
	AssignmentRoster(ctx context.Context, key models.OfferingKey, format string) (*service.ExportFile, error)
}

// ExportHandler streams generated documents.
type ExportHandler struct {
	exports rosterExporter
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports rosterExporter) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// AssignmentRoster godoc
// @Summary Download the assignment roster of an offering
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param programId path int true "Program ID"
// @Param siteId path int true "Site ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /offerings/{programId}/{siteId}/assignments/export [get]
func (h *ExportHandler) AssignmentRoster(c *gin.Context) {
	key, err := offeringKeyParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.AssignmentRoster(c.Request.Context(), key, c.DefaultQuery("format", service.FormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
