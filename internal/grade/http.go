package grade

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/appdotbuilder/school-management-app/internal/httputil"
	"github.com/appdotbuilder/school-management-app/internal/metrics"

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
	r.Post("/grades", h.RecordGrade)
	r.Get("/grades", h.GetGrades)
}

func (h *Handler) RecordGrade(w http.ResponseWriter, r *http.Request) {
	var input RecordGradeInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&input); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "recording grade", "student_id", input.StudentID, "subject_id", input.SubjectID)
	created, err := h.service.RecordGrade(r.Context(), input)
	if err != nil {
		httputil.RespondWithServiceError(r.Context(), w, h.logger, err)
		return
	}

	h.metrics.RecordGrade(r.Context())

	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetGrades(w http.ResponseWriter, r *http.Request) {
	var studentID *int
	if raw := r.URL.Query().Get("student_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			httputil.RespondWithError(w, http.StatusBadRequest, "Invalid student_id")
			return
		}
		studentID = &id
	}

	grades, err := h.service.GetGradesWithDetails(r.Context(), studentID)
	if err != nil {
		httputil.RespondWithServiceError(r.Context(), w, h.logger, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, grades)
}
