package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmx-service/internal/config"
	"dmx-service/internal/dmx"
)

func newHealthRouter(status StatusProvider) *gin.Engine {
	cfg := &config.Config{App: config.AppConfig{Name: "dmx-service", Version: "1.0.0"}}
	h := NewHealthHandler(status, cfg)
	router := gin.New()
	router.GET("/health", h.HealthCheck)
	router.GET("/ready", h.ReadinessCheck)
	router.GET("/live", h.LivenessCheck)
	return router
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		status     dmx.Status
		wantCode   int
		wantStatus string
	}{
		{"idle", dmx.Status{State: dmx.StateIdle}, http.StatusOK, "healthy"},
		{"streaming", dmx.Status{State: dmx.StateStreaming, OpenedPort: "COM3"}, http.StatusOK, "healthy"},
		{"fault backoff", dmx.Status{State: dmx.StateFaultBackoff, LastError: "device unplugged"}, http.StatusOK, "degraded"},
		{"stopped", dmx.Status{State: dmx.StateStopped}, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := newFakeController()
			fc.setStatus(tt.status)

			rec := doJSON(t, newHealthRouter(fc), http.MethodGet, "/health", nil)
			require.Equal(t, tt.wantCode, rec.Code)

			var health HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
			assert.Equal(t, tt.wantStatus, health.Status)
			assert.Equal(t, "dmx-service", health.Service)
			assert.Contains(t, health.Checks, "dmx_writer")
		})
	}
}

func TestReadinessCheck(t *testing.T) {
	fc := newFakeController()
	router := newHealthRouter(fc)

	assert.Equal(t, http.StatusOK, doJSON(t, router, http.MethodGet, "/ready", nil).Code)

	fc.setStatus(dmx.Status{State: dmx.StateFaultBackoff, LastError: "write failed"})
	rec := doJSON(t, router, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "write failed")

	fc.setStatus(dmx.Status{State: dmx.StateStopped})
	assert.Equal(t, http.StatusServiceUnavailable, doJSON(t, router, http.MethodGet, "/ready", nil).Code)
}

func TestLivenessCheck(t *testing.T) {
	fc := newFakeController()
	fc.setStatus(dmx.Status{State: dmx.StateStopped})

	rec := doJSON(t, newHealthRouter(fc), http.MethodGet, "/live", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alive")
}
