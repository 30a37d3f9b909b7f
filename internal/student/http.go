package student

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
	r.Route("/students", func(r chi.Router) {
		r.Post("/", h.CreateStudent)
		r.Get("/", h.GetAllStudents)
		r.Get("/{id}", h.GetStudent)
		r.Put("/{id}", h.UpdateStudent)
		r.Delete("/{id}", h.DeleteStudent)
	})
}

func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var input CreateStudentInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&input); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "creating student", "email", input.Email)
	created, err := h.service.CreateStudent(r.Context(), input)
	if err != nil {
		httputil.RespondWithServiceError(r.Context(), w, h.logger, err)
		return
	}

	h.metrics.RecordStudentCreated(r.Context())

	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetAllStudents(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "fetching all students")

	students, err := h.service.GetAllStudents(r.Context())
	if err != nil {
		httputil.RespondWithServiceError(r.Context(), w, h.logger, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, students)
}

func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.studentID(w, r)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "fetching student by ID", "student_id", id)
	student, err := h.service.GetStudentByID(r.Context(), id)
	if err != nil {
		httputil.RespondWithServiceError(r.Context(), w, h.logger, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, student)
}

func (h *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.studentID(w, r)
	if !ok {
		return
	}

	var input UpdateStudentInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&input); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	input.ID = id

	h.logger.InfoContext(r.Context(), "updating student", "student_id", id)
	updated, err := h.service.UpdateStudent(r.Context(), input)
	if err != nil {
		httputil.RespondWithServiceError(r.Context(), w, h.logger, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.studentID(w, r)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "deleting student", "student_id", id)
	result, err := h.service.DeleteStudent(r.Context(), id)
	if err != nil {
		httputil.RespondWithServiceError(r.Context(), w, h.logger, err)
		return
	}
	if !result.Success {
		httputil.RespondWithJSON(w, http.StatusNotFound, result)
		return
	}

	h.metrics.RecordStudentDeleted(r.Context(), result.Dependents())

	httputil.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) studentID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid student ID")
		return 0, false
	}
	return id, true
}
