package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/admission-api/internal/middleware"
	"github.com/noah-isme/admission-api/internal/models"
	appErrors "github.com/noah-isme/admission-api/pkg/errors"
)

func idParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" must be a positive integer")
	}
	return id, nil
}

func offeringKeyParam(c *gin.Context) (models.OfferingKey, error) {
	programID, err := strconv.Atoi(c.Param("programId"))
	if err != nil || programID <= 0 {
		return models.OfferingKey{}, appErrors.Clone(appErrors.ErrValidation, "programId must be a positive integer")
	}
	siteID, err := strconv.Atoi(c.Param("siteId"))
	if err != nil || siteID <= 0 {
		return models.OfferingKey{}, appErrors.Clone(appErrors.ErrValidation, "siteId must be a positive integer")
	}
	return models.OfferingKey{ProgramID: programID, SiteID: siteID}, nil
}

func invalidPayload(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

// operatorField names the acting operator in audit log lines.
func operatorField(c *gin.Context) zap.Field {
	if claims := middleware.OperatorFromContext(c); claims != nil {
		return zap.String("operator", claims.Username)
	}
	return zap.Skip()
}
