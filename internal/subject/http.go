package subject

import (
	"log/slog"
	"net/http"

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
	r.Post("/subjects", h.CreateSubject)
	r.Get("/subjects", h.GetAllSubjects)
}

func (h *Handler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	var input CreateSubjectInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&input); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "creating subject", "code", input.Code)
	created, err := h.service.CreateSubject(r.Context(), input)
	if err != nil {
		httputil.RespondWithServiceError(r.Context(), w, h.logger, err)
		return
	}

	h.metrics.RecordSubjectCreated(r.Context())

	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetAllSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.service.GetAllSubjects(r.Context())
	if err != nil {
		httputil.RespondWithServiceError(r.Context(), w, h.logger, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, subjects)
}
