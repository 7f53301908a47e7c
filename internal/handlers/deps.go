package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"

	"github.com/GregMSThompson/patient-payments/internal/errs"
	"github.com/GregMSThompson/patient-payments/internal/metrics"
	"github.com/GregMSThompson/patient-payments/internal/response"
)

type Deps struct {
	Log               *slog.Logger
	ResponseHandler   response.ResponseHandler
	Metrics           *metrics.Metrics
	UserSvc           UserService
	InsuranceSvc      insuranceService
	VenmoSvc          venmoService
	ReconciliationSvc reconciliationService
	SettingsSvc       settingsService
}

// decodeJSON reads a JSON request body into v. Malformed bodies come back as
// validation errors so clients get a 400 instead of a 500.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return nil
	}

	var (
		typeErr    *json.UnmarshalTypeError
		validation *errs.ValidationError
	)
	switch {
	case errors.As(err, &validation):
		return err
	case errors.Is(err, io.EOF):
		return errs.NewValidationError("request body is empty")
	case errors.As(err, &typeErr) && typeErr.Field == "":
		if reflect.TypeOf(v).Elem().Kind() == reflect.Slice {
			return errs.NewValidationError("request body must be a JSON array")
		}
		return errs.NewValidationError("request body must be a JSON object")
	case errors.As(err, &typeErr):
		verr := errs.NewValidationError(typeErr.Field + " has the wrong type")
		verr.Field = typeErr.Field
		return verr
	default:
		return errs.NewValidationError("invalid JSON: " + err.Error())
	}
}
