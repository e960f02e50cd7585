// internal/handler/health_handler.go
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dmx-service/internal/config"
	"dmx-service/internal/dmx"
)

// StatusProvider reports the DMX writer status
type StatusProvider interface {
	Status() dmx.Status
}

// HealthHandler handles health check requests
type HealthHandler struct {
	status    StatusProvider
	config    *config.Config
	startedAt time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(status StatusProvider, config *config.Config) *HealthHandler {
	return &HealthHandler{
		status:    status,
		config:    config,
		startedAt: time.Now(),
	}
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]CheckResult `json:"checks"`
}

// CheckResult represents individual check result
type CheckResult struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// HealthCheck performs general health check
// @Summary Health check
// @Description Service health including the DMX writer state. A writer in fault backoff reports degraded.
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Service is healthy or degraded"
// @Failure 503 {object} HealthResponse "Writer stopped"
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	writer := h.status.Status()

	health := &HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Service:   h.config.App.Name,
		Version:   h.config.App.Version,
		Uptime:    time.Since(h.startedAt).String(),
		Checks:    make(map[string]CheckResult),
	}

	check := CheckResult{Status: "healthy", Data: writer}
	switch writer.State {
	case dmx.StateFaultBackoff:
		health.Status = "degraded"
		check.Status = "degraded"
		check.Message = writer.LastError
	case dmx.StateStopped:
		health.Status = "unhealthy"
		check.Status = "unhealthy"
		check.Message = "DMX writer stopped"
	case dmx.StateIdle:
		check.Message = "No port selected"
	}
	health.Checks["dmx_writer"] = check

	statusCode := http.StatusOK
	if health.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, health)
}

// ReadinessCheck reports whether the writer is free of faults
// @Summary Readiness check
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,timestamp=string} "Service is ready"
// @Failure 503 {object} object{status=string,reason=string} "Service is not ready"
// @Router /ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	status := h.status.Status()
	switch status.State {
	case dmx.StateStopped:
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "dmx writer stopped",
		})
		return
	case dmx.StateFaultBackoff:
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "dmx writer faulted: " + status.LastError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now(),
	})
}

// LivenessCheck reports that the process responds
// @Summary Liveness check
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,timestamp=string} "Service is alive"
// @Router /live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now(),
	})
}
