package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/appdotbuilder/school-management-app/internal/apperr"
)

// RespondWithError writes an error response in JSON format
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}

// RespondWithJSON writes a JSON response
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrDuplicateKey), errors.Is(err, apperr.ErrDuplicateAttendance):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithServiceError writes err with the status of its kind. Storage and other
// unexpected failures are logged and answered with a generic message.
func RespondWithServiceError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error) {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		logger.ErrorContext(ctx, "internal error", "error", err)
		RespondWithError(w, code, "Internal server error")
		return
	}

	logger.InfoContext(ctx, "request rejected", "status", code, "error", err)
	RespondWithError(w, code, err.Error())
}

// DecodeJSON decodes the request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
