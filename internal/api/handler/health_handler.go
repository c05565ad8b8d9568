package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is any dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles GET /health, the liveness probe.
// Returns 200 immediately; confirms the process is alive.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// ReadinessHandler handles GET /health/ready. Required dependencies gate
// readiness; optional ones (the cache) are reported but only degrade it.
type ReadinessHandler struct {
	required map[string]Pinger
	optional map[string]Pinger
}

func NewReadinessHandler(required, optional map[string]Pinger) *ReadinessHandler {
	return &ReadinessHandler{required: required, optional: optional}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Readiness reports 200 "ok" when everything answers, 200 "degraded" when
// only optional dependencies fail and 503 "unavailable" otherwise.
func (h *ReadinessHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus, len(h.required)+len(h.optional))
	check := func(name string, p Pinger) bool {
		if err := p.Ping(ctx); err != nil {
			deps[name] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			return false
		}
		deps[name] = dependencyStatus{Status: "ok"}
		return true
	}

	ready, degraded := true, false
	for name, p := range h.required {
		if !check(name, p) {
			ready = false
		}
	}
	for name, p := range h.optional {
		if !check(name, p) {
			degraded = true
		}
	}

	status, httpStatus := "ok", http.StatusOK
	switch {
	case !ready:
		status, httpStatus = "unavailable", http.StatusServiceUnavailable
	case degraded:
		status = "degraded"
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
