package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/GregMSThompson/patient-payments/internal/errs"
	"github.com/GregMSThompson/patient-payments/pkg/logger"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *responseHandler) WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Code:    code,
		Message: message,
	}); err != nil {
		// Use context logger if encoding fails
		log := logger.FromContext(r.Context())
		log.Error("failed to encode error response", "error", err, "status", status, "code", code)
	}
}

// HandleError maps a typed error to its HTTP status. Client errors echo the
// error message; backend failures are logged and answered generically.
func (h *responseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	var (
		notFound     *errs.NotFoundError
		exists       *errs.AlreadyExistsError
		validation   *errs.ValidationError
		unauthorized *errs.UnauthorizedError
		parse        *errs.ParseError
		database     *errs.DatabaseError
		external     *errs.ExternalServiceError
		encryption   *errs.EncryptionError
	)

	switch {
	case errors.As(err, &notFound):
		log.Warn("resource not found", "error", notFound.Message)
		h.WriteError(w, r, http.StatusNotFound, "not_found", notFound.Message)

	case errors.As(err, &exists):
		log.Warn("resource already exists", "error", exists.Message)
		h.WriteError(w, r, http.StatusConflict, "already_exists", exists.Message)

	case errors.As(err, &validation):
		log.Warn("validation failed", "error", validation.Message, "field", validation.Field)
		h.WriteError(w, r, http.StatusBadRequest, "invalid_input", validation.Message)

	case errors.As(err, &unauthorized):
		log.Warn("unauthorized", "error", unauthorized.Message)
		h.WriteError(w, r, http.StatusUnauthorized, "unauthorized", unauthorized.Message)

	case errors.As(err, &parse):
		log.Warn("file could not be parsed", "error", parse.Message)
		h.WriteError(w, r, http.StatusUnprocessableEntity, "parse_error", parse.Message)

	case errors.As(err, &database):
		log.Error("database error",
			"operation", database.Operation,
			"error", database.Message,
			"cause", database.Err)
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error",
			"An error occurred")

	case errors.As(err, &external):
		level := slog.LevelError
		if external.Transient {
			level = slog.LevelWarn
		}
		log.Log(r.Context(), level, "external service error",
			"service", external.Service,
			"transient", external.Transient,
			"error", external.Message,
			"cause", external.Err)

		status := http.StatusBadGateway
		if external.Transient {
			status = http.StatusServiceUnavailable
		}
		h.WriteError(w, r, status, "service_unavailable",
			"Service temporarily unavailable")

	case errors.As(err, &encryption):
		log.Error("encryption error", "error", encryption.Message, "cause", encryption.Err)
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error",
			"An error occurred")

	default:
		log.Error("unexpected error",
			"error", err,
			"type", fmt.Sprintf("%T", err))
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error",
			"An unexpected error occurred")
	}
}
