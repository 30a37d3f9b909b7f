package attendance

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/appdotbuilder/school-management-app/internal/httputil"
	"github.com/appdotbuilder/school-management-app/internal/metrics"
	"github.com/appdotbuilder/school-management-app/internal/projection"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
		metrics:  metrics,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/attendance", h.RecordAttendance)
	r.Get("/attendance", h.GetAttendance)
}

func (h *Handler) RecordAttendance(w http.ResponseWriter, r *http.Request) {
	var input RecordAttendanceInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&input); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "recording attendance", "student_id", input.StudentID, "date", input.Date.String())
	created, err := h.service.RecordAttendance(r.Context(), input)
	if err != nil {
		httputil.RespondWithServiceError(r.Context(), w, h.logger, err)
		return
	}

	h.metrics.RecordAttendance(r.Context())

	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

// GetAttendance serves ?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD[&student_id=N].
func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var filter RangeFilter
	var err error
	if filter.StartDate, err = projection.ParseDate(query.Get("start_date")); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid start_date")
		return
	}
	if filter.EndDate, err = projection.ParseDate(query.Get("end_date")); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid end_date")
		return
	}
	if raw := query.Get("student_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			httputil.RespondWithError(w, http.StatusBadRequest, "Invalid student_id")
			return
		}
		filter.StudentID = &id
	}

	records, err := h.service.GetAttendanceInRange(r.Context(), filter)
	if err != nil {
		httputil.RespondWithServiceError(r.Context(), w, h.logger, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, records)
}
