package handler

// Every response is JSON. Errors always have the shape
//
//	{"message": "<text>"}
//
// which is what the browser client reads, whatever the status code.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/chronoflow/internal/apperror"
)

// MaxBodyBytes caps request bodies. Event photos travel inline as base64 data
// URLs, hence the generous limit.
const MaxBodyBytes = 10 << 20

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Message string `json:"message"`
}

// MessageResponse is the body of success responses that carry nothing else.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already out; all we can do is log.
			logger.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to a status code:
//
//	ErrValidation   → 400
//	ErrUnauthorized → 401
//	ErrNotFound     → 404
//	ErrConflict     → 409
//	anything else   → 500, "Error: <err>"
//
// The 500 body echoes the raw error text. The browser client shows it to the
// user as-is.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
		}

		if status != http.StatusInternalServerError {
			writeJSON(w, logger, status, ErrorResponse{Message: appErr.Message})
			return
		}
	}

	logger.Error("unexpected error", slog.String("error", err.Error()))
	writeJSON(w, logger, http.StatusInternalServerError, ErrorResponse{Message: "Error: " + err.Error()})
}

// decodeJSON reads a JSON body into dst. Unknown keys are ignored. A missing
// or malformed body is a validation error with message invalidMsg.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, invalidMsg string) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperror.ValidationFailed("body", "Request body too large")
		}
		return apperror.ValidationFailed("body", invalidMsg)
	}
	return nil
}
