package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"shopfront/internal/model"

	"github.com/rs/zerolog"
)

// ErrorResponse is the error body: message is always present, error
// carries the upstream detail when available.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already written; nothing useful left to do.
		return
	}
}

// writeError writes an error response with the given status and message.
func writeError(w http.ResponseWriter, status int, message, detail string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, ErrorResponse{Message: message, Error: detail})
}

// writeServiceError maps a service failure to an HTTP response: domain
// errors carry their own status, everything else is a 500 with the
// fallback message and the upstream detail.
func writeServiceError(w http.ResponseWriter, err error, fallback string, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		writeError(w, statusForCode(domainErr.Code), domainErr.Message, "", logger)
		return
	}
	writeError(w, http.StatusInternalServerError, fallback, err.Error(), logger)
}

// statusForCode maps domain error codes to HTTP status codes.
func statusForCode(code string) int {
	switch code {
	case model.ErrCodeMissingField, model.ErrCodeInvalidImage, model.ErrCodeNoFieldsToUpdate:
		return http.StatusBadRequest
	case model.ErrCodeProductNotFound:
		return http.StatusNotFound
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
