package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type readinessCheck struct {
	name  string
	check func(ctx context.Context) error
}

// HealthHandler exposes liveness and readiness information.
type HealthHandler struct {
	startedAt time.Time
	checks    []readinessCheck
}

// HealthOption configures a HealthHandler.
type HealthOption func(*HealthHandler)

// WithReadinessCheck adds a named dependency check to the readiness probe.
func WithReadinessCheck(name string, check func(ctx context.Context) error) HealthOption {
	return func(h *HealthHandler) {
		if check != nil {
			h.checks = append(h.checks, readinessCheck{name: name, check: check})
		}
	}
}

// NewHealthHandler builds a new health handler instance.
func NewHealthHandler(opts ...HealthOption) *HealthHandler {
	handler := &HealthHandler{startedAt: time.Now().UTC()}
	for _, opt := range opts {
		opt(handler)
	}
	return handler
}

// Status reports process liveness.
func (h *HealthHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		StartedAt: h.startedAt,
	})
}

// Readiness runs every dependency check and reports per-component status.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for _, check := range h.checks {
		if err := check.check(ctx); err != nil {
			results[check.name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[check.name] = "ok"
	}

	overall := "ready"
	if status != http.StatusOK {
		overall = "not_ready"
	}

	c.JSON(status, ReadinessResponse{
		Status: overall,
		Checks: results,
	})
}
