package health

import (
	"context"
	"net/http"
	"time"

	"github.com/appdotbuilder/school-management-app/internal/httputil"
	"github.com/appdotbuilder/school-management-app/internal/metrics"

	"github.com/go-chi/chi/v5"
)

// Check probes one dependency. A nil error means ready.
type Check func(ctx context.Context) error

type Handler struct {
	checks  map[string]Check
	metrics *metrics.Metrics
	timeout time.Duration
}

func NewHandler(checks map[string]Check, metrics *metrics.Metrics) *Handler {
	return &Handler{
		checks:  checks,
		metrics: metrics,
		timeout: 2 * time.Second,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{Status: "ready", Checks: make(map[string]string, len(h.checks))}
	code := http.StatusOK

	for name, check := range h.checks {
		start := time.Now()
		err := check(ctx)
		if h.metrics != nil {
			h.metrics.Health.RecordDependencyCheck(ctx, name, time.Since(start), err)
		}

		if err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "unavailable"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	httputil.RespondWithJSON(w, code, resp)
}
