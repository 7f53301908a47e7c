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

type insuranceService interface {
	List(ctx context.Context, uid string) ([]*models.InsurancePayment, error)
	Import(ctx context.Context, uid string, rows []dto.InsurancePaymentInput) (dto.ImportResult, error)
	UpdateTrackingStatus(ctx context.Context, uid, id, status string) (*models.InsurancePayment, error)
	Update(ctx context.Context, uid, id string, req dto.UpdateInsurancePaymentRequest) (*models.InsurancePayment, error)
	Delete(ctx context.Context, uid, id string) error
	BulkDelete(ctx context.Context, uid string, ids []string) (int, error)
}

type insuranceHandlers struct {
	ResponseHandler response.ResponseHandler
	InsuranceSvc    insuranceService
}

func NewInsuranceHandlers(deps *Deps) *insuranceHandlers {
	return &insuranceHandlers{
		ResponseHandler: deps.ResponseHandler,
		InsuranceSvc:    deps.InsuranceSvc,
	}
}

func (h *insuranceHandlers) InsuranceRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/import", h.Import)
	r.Post("/bulk-delete", h.BulkDelete) // must be before /{id}
	r.Patch("/{id}", h.Update)
	r.Put("/{id}/tracking-status", h.UpdateTrackingStatus)
	r.Delete("/{id}", h.Delete)
	return r
}

func (h *insuranceHandlers) List(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	payments, err := h.InsuranceSvc.List(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, payments)
}

func (h *insuranceHandlers) Import(w http.ResponseWriter, r *http.Request) {
	var rows []dto.InsurancePaymentInput
	if err := decodeJSON(r, &rows); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	result, err := h.InsuranceSvc.Import(r.Context(), uid, rows)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, result)
}

func (h *insuranceHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req dto.UpdateInsurancePaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	payment, err := h.InsuranceSvc.Update(r.Context(), uid, id, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, payment)
}

func (h *insuranceHandlers) UpdateTrackingStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req dto.TrackingStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	payment, err := h.InsuranceSvc.UpdateTrackingStatus(r.Context(), uid, id, req.TrackingStatus)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, payment)
}

func (h *insuranceHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	uid := middleware.UID(r.Context())
	if err := h.InsuranceSvc.Delete(r.Context(), uid, id); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *insuranceHandlers) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req dto.BulkDeleteRequest
	if err := decodeJSON(r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	n, err := h.InsuranceSvc.BulkDelete(r.Context(), uid, req.IDs)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, dto.BulkDeleteResult{Deleted: n})
}
