package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/admission-api/internal/dto"
	"github.com/noah-isme/admission-api/internal/service"
)

func TestMetricsHandlerReadiness(t *testing.T) {
	h := NewMetricsHandler(service.NewMetricsService(), "1.0.0", map[string]ReadinessCheck{
		"redis":   func(context.Context) error { return nil },
		"catalog": func(context.Context) error { return errors.New("connection refused") },
	})

	c, w := newTestContext(http.MethodGet, "/ready", "")
	h.Ready(c)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp dto.ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "ok", resp.Checks["redis"])
	assert.Equal(t, "connection refused", resp.Checks["catalog"])
}

func TestMetricsHandlerHealth(t *testing.T) {
	h := NewMetricsHandler(service.NewMetricsService(), "1.0.0", nil)

	c, w := newTestContext(http.MethodGet, "/health", "")
	h.Health(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.0.0", resp.Version)
}
