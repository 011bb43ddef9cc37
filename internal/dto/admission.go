package dto

import (
	"time"

	"github.com/noah-isme/admission-api/internal/models"
)

// ApplicantResponse is an applicant with the age derived from the birth date.
type ApplicantResponse struct {
	*models.Applicant
	Age int `json:"age"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status  string                 `json:"status"`
	Version string                 `json:"version,omitempty"`
	Metrics map[string]interface{} `json:"metrics,omitempty"`
}

// ReadinessResponse reports the state of every dependency.
type ReadinessResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	CheckedAt time.Time         `json:"checked_at"`
}

// AssignmentSummary counts assignments per state.
type AssignmentSummary struct {
	ByState map[models.AssignmentState]int `json:"by_state"`
	Total   int                            `json:"total"`
}
