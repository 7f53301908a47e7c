package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GregMSThompson/patient-payments/internal/errs"
	"github.com/GregMSThompson/patient-payments/pkg/helpers"
	"github.com/GregMSThompson/patient-payments/pkg/logger"
)

func TestHandleErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"NotFound", errs.NewNotFoundError("venmo payment not found"), http.StatusNotFound, "not_found", "venmo payment not found"},
		{"Exists", errs.NewAlreadyExistsError("user already exists"), http.StatusConflict, "already_exists", "user already exists"},
		{"Validation", errs.NewMissingFieldError("patientName"), http.StatusBadRequest, "invalid_input", "patientName is required"},
		{"Unauthorized", errs.NewUnauthorizedError("invalid or expired token"), http.StatusUnauthorized, "unauthorized", "invalid or expired token"},
		{"Parse", errs.NewParseError("missing required columns: %s", "datetime"), http.StatusUnprocessableEntity, "parse_error", "missing required columns: datetime"},
		{"WrappedParse", fmt.Errorf("upload: %w", errs.NewParseError("bad")), http.StatusUnprocessableEntity, "parse_error", "bad"},
		{"Database", errs.NewDatabaseError("read", "failed to list", errors.New("connection reset")), http.StatusInternalServerError, "internal_error", "An error occurred"},
		{"Transient", errs.NewExternalServiceError("kms", "down", true, nil), http.StatusServiceUnavailable, "service_unavailable", "Service temporarily unavailable"},
		{"External", errs.NewExternalServiceError("kms", "down", false, nil), http.StatusBadGateway, "service_unavailable", "Service temporarily unavailable"},
		{"Encryption", errs.NewEncryptionError("failed", nil), http.StatusInternalServerError, "internal_error", "An error occurred"},
		{"Unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error", "An unexpected error occurred"},
	}

	h := New(logger.New("", logger.NewTestHandler))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(helpers.TestCtx())
			rec := httptest.NewRecorder()

			h.HandleError(rec, req, tt.err)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			var body ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode error: %v", err)
			}
			if body.Code != tt.code || body.Message != tt.message {
				t.Fatalf("body = %+v", body)
			}
		})
	}
}

func TestWriteSuccessEnvelope(t *testing.T) {
	h := New(logger.New("", logger.NewTestHandler))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	h.WriteSuccess(rec, req, http.StatusCreated, map[string]int{"created": 2})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Body.String(); got != "{\"success\":true,\"data\":{\"created\":2}}\n" {
		t.Fatalf("body = %s", got)
	}
}
