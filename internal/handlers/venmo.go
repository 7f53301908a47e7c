package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/patient-payments/internal/dto"
	"github.com/GregMSThompson/patient-payments/internal/errs"
	"github.com/GregMSThompson/patient-payments/internal/middleware"
	"github.com/GregMSThompson/patient-payments/internal/models"
	"github.com/GregMSThompson/patient-payments/internal/response"
)

// statements larger than this are rejected before parsing
const maxStatementBytes = 10 << 20

type venmoService interface {
	List(ctx context.Context, uid string) ([]*models.VenmoPayment, error)
	Create(ctx context.Context, uid string, in dto.VenmoPaymentInput) (*models.VenmoPayment, error)
	ImportBatch(ctx context.Context, uid string, rows []dto.VenmoPaymentInput) (dto.ImportResult, error)
	ParseStatement(ctx context.Context, uid string, r io.Reader) (dto.StatementPreview, error)
	ImportStatement(ctx context.Context, uid string, req dto.StatementImportRequest) (dto.ImportResult, error)
	Delete(ctx context.Context, uid, id string) error
}

type venmoHandlers struct {
	ResponseHandler response.ResponseHandler
	VenmoSvc        venmoService
}

func NewVenmoHandlers(deps *Deps) *venmoHandlers {
	return &venmoHandlers{
		ResponseHandler: deps.ResponseHandler,
		VenmoSvc:        deps.VenmoSvc,
	}
}

func (h *venmoHandlers) VenmoRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/import", h.ImportBatch)
	r.Post("/csv/parse", h.ParseStatement)
	r.Post("/csv/import", h.ImportStatement)
	r.Delete("/{id}", h.Delete)
	return r
}

func (h *venmoHandlers) List(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	payments, err := h.VenmoSvc.List(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, payments)
}

func (h *venmoHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var in dto.VenmoPaymentInput
	if err := decodeJSON(r, &in); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	payment, err := h.VenmoSvc.Create(r.Context(), uid, in)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, payment)
}

func (h *venmoHandlers) ImportBatch(w http.ResponseWriter, r *http.Request) {
	var rows []dto.VenmoPaymentInput
	if err := decodeJSON(r, &rows); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	result, err := h.VenmoSvc.ImportBatch(r.Context(), uid, rows)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, result)
}

// ParseStatement reads an uploaded statement from the multipart field "file"
// and returns a preview. Nothing is stored.
func (h *venmoHandlers) ParseStatement(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxStatementBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			h.ResponseHandler.HandleError(w, r, errs.NewValidationError("statement file is too large"))
		default:
			h.ResponseHandler.HandleError(w, r, errs.NewMissingFieldError("file"))
		}
		return
	}
	defer file.Close()

	uid := middleware.UID(r.Context())
	preview, err := h.VenmoSvc.ParseStatement(r.Context(), uid, file)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, preview)
}

func (h *venmoHandlers) ImportStatement(w http.ResponseWriter, r *http.Request) {
	var req dto.StatementImportRequest
	if err := decodeJSON(r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	result, err := h.VenmoSvc.ImportStatement(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, result)
}

func (h *venmoHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	uid := middleware.UID(r.Context())
	if err := h.VenmoSvc.Delete(r.Context(), uid, id); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}
