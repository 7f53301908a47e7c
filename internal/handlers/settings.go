package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/patient-payments/internal/dto"
	"github.com/GregMSThompson/patient-payments/internal/middleware"
	"github.com/GregMSThompson/patient-payments/internal/models"
	"github.com/GregMSThompson/patient-payments/internal/response"
)

type settingsService interface {
	Get(ctx context.Context, uid string) (*models.UserSetting, error)
	UpdateIgnoredAddresses(ctx context.Context, uid string, addresses []string) (*models.UserSetting, error)
}

type settingsHandlers struct {
	ResponseHandler response.ResponseHandler
	SettingsSvc     settingsService
}

func NewSettingsHandlers(deps *Deps) *settingsHandlers {
	return &settingsHandlers{
		ResponseHandler: deps.ResponseHandler,
		SettingsSvc:     deps.SettingsSvc,
	}
}

func (h *settingsHandlers) SettingsRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Get)
	r.Put("/ignored-addresses", h.UpdateIgnoredAddresses)
	return r
}

func (h *settingsHandlers) Get(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	settings, err := h.SettingsSvc.Get(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, settings)
}

func (h *settingsHandlers) UpdateIgnoredAddresses(w http.ResponseWriter, r *http.Request) {
	var req dto.IgnoredAddressesRequest
	if err := decodeJSON(r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	settings, err := h.SettingsSvc.UpdateIgnoredAddresses(r.Context(), uid, req.IgnoredAddresses)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, settings)
}
