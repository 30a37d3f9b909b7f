package stats

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/appdotbuilder/school-management-app/internal/grade"
	"github.com/appdotbuilder/school-management-app/internal/httputil"
	"github.com/appdotbuilder/school-management-app/internal/metrics"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewHandler(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		metrics: metrics,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/statistics/dashboard", h.GetDashboard)
	r.Get("/statistics/top-students", h.GetTopStudents)
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetDashboardStatistics(r.Context())
	if err != nil {
		httputil.RespondWithServiceError(r.Context(), w, h.logger, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, stats)
}

// GetTopStudents serves ?limit=N&grade_type=T, both optional.
func (h *Handler) GetTopStudents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var input TopStudentsInput
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			httputil.RespondWithError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		input.Limit = &limit
	}
	input.GradeType = grade.Type(query.Get("grade_type"))

	rankings, err := h.service.GetTopStudents(r.Context(), input)
	if err != nil {
		httputil.RespondWithServiceError(r.Context(), w, h.logger, err)
		return
	}

	h.metrics.RecordRankingComputed(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, rankings)
}
