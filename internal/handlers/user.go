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

type UserService interface {
	EnsureUser(ctx context.Context, id dto.Identity) (*models.User, error)
}

type userHandlers struct {
	ResponseHandler response.ResponseHandler
	UserSvc         UserService
}

func NewUserHandlers(deps *Deps) *userHandlers {
	return &userHandlers{
		ResponseHandler: deps.ResponseHandler,
		UserSvc:         deps.UserSvc,
	}
}

func (h *userHandlers) UserRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/me", h.EnsureUser)
	return r
}

// EnsureUser provisions the caller on first sign-in and returns the record.
func (h *userHandlers) EnsureUser(w http.ResponseWriter, r *http.Request) {
	id := middleware.CallerIdentity(r.Context())
	user, err := h.UserSvc.EnsureUser(r.Context(), id)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, user)
}
