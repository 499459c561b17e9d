package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"finledger/internal/core"
	"finledger/internal/log"
)

// envelope is the body of every /api/v1 response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondData(w http.ResponseWriter, status int, message string, data any) {
	respondJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, envelope{Success: status < 400, Message: message})
}

// statusFor maps an error kind onto its HTTP status and log category.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest, log.ErrorTypeValidation
	case errors.Is(err, core.ErrInsufficientFunds):
		return http.StatusBadRequest, log.ErrorTypeInsufficientFunds
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, log.ErrorTypeNotFound
	case errors.Is(err, core.ErrConflict):
		return http.StatusConflict, log.ErrorTypeConflict
	default:
		return http.StatusInternalServerError, log.ErrorTypeInternal
	}
}

// respondError writes the failure envelope. Unexpected errors are logged in
// full and reported with a generic message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, errType := statusFor(err)
	logger := log.FromContext(r.Context())
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", log.FieldError, err, log.FieldErrorType, errType)
	} else {
		logger.DebugContext(r.Context(), "Request rejected", log.FieldError, err, log.FieldErrorType, errType)
	}
	respondMessage(w, status, core.Message(err))
}
