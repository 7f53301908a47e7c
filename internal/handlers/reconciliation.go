package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/patient-payments/internal/dto"
	"github.com/GregMSThompson/patient-payments/internal/middleware"
	"github.com/GregMSThompson/patient-payments/internal/response"
	"github.com/GregMSThompson/patient-payments/internal/venmo"
	"github.com/GregMSThompson/patient-payments/pkg/logger"
)

type reconciliationService interface {
	Summary(ctx context.Context, uid string) (dto.ReconciliationResponse, error)
	Patients(ctx context.Context, uid string) ([]venmo.Patient, error)
	PatientDetail(ctx context.Context, uid, token string) (dto.PatientDetail, error)
	Export(ctx context.Context, uid, format string) (dto.ExportFile, error)
}

type reconciliationHandlers struct {
	ResponseHandler   response.ResponseHandler
	ReconciliationSvc reconciliationService
}

func NewReconciliationHandlers(deps *Deps) *reconciliationHandlers {
	return &reconciliationHandlers{
		ResponseHandler:   deps.ResponseHandler,
		ReconciliationSvc: deps.ReconciliationSvc,
	}
}

func (h *reconciliationHandlers) ReconciliationRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Summary)
	r.Get("/export", h.Export)
	r.Get("/patients", h.Patients)
	r.Get("/patients/{key}", h.PatientDetail)
	return r
}

func (h *reconciliationHandlers) Summary(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	resp, err := h.ReconciliationSvc.Summary(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}

func (h *reconciliationHandlers) Patients(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	patients, err := h.ReconciliationSvc.Patients(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, patients)
}

// PatientDetail passes the lookup key on still percent-encoded; the service
// decodes it. Without a RawPath chi matches on the decoded path, so the
// param is escaped again.
func (h *reconciliationHandlers) PatientDetail(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if r.URL.RawPath == "" {
		key = url.PathEscape(key)
	}
	uid := middleware.UID(r.Context())
	detail, err := h.ReconciliationSvc.PatientDetail(r.Context(), uid, key)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, detail)
}

// Export streams the report as a download instead of the JSON envelope.
func (h *reconciliationHandlers) Export(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	file, err := h.ReconciliationSvc.Export(r.Context(), uid, r.URL.Query().Get("format"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Data); err != nil {
		logger.FromContext(r.Context()).Error("failed to write export", "error", err)
	}
}
