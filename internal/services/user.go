package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/GregMSThompson/patient-payments/internal/dto"
	"github.com/GregMSThompson/patient-payments/internal/errs"
	"github.com/GregMSThompson/patient-payments/internal/models"
	"github.com/GregMSThompson/patient-payments/pkg/logger"
)

type userUSStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, uid string) (*models.User, error)
	ReassignOwner(ctx context.Context, fromUID, toUID string) error
}

type userService struct {
	Store userUSStore
}

func NewUserService(store userUSStore) *userService {
	return &userService{
		Store: store,
	}
}

// EnsureUser returns the caller's user record, creating it on first sight.
func (s *userService) EnsureUser(ctx context.Context, id dto.Identity) (*models.User, error) {
	// Get logger from context - already has uid, request_id, method, path
	log := logger.FromContext(ctx)

	user, err := s.Store.GetUser(ctx, id.UID)
	if err == nil {
		return user, nil
	}
	var nf *errs.NotFoundError
	if !errors.As(err, &nf) {
		return nil, err
	}

	now := time.Now()
	user = &models.User{
		UID:         id.UID,
		Email:       strings.ToLower(strings.TrimSpace(id.Email)),
		DisplayName: id.DisplayName,
		Provider:    id.Provider,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.Store.CreateUser(ctx, user)
	var exists *errs.AlreadyExistsError
	if errors.As(err, &exists) {
		// created by a concurrent request
		return s.Store.GetUser(ctx, id.UID)
	}
	if err != nil {
		log.Error("failed to create user in store", "error", err)
		return nil, err
	}

	log.Info("user created successfully", "provider", id.Provider)
	log.Debug("user created with full details", "user", user)
	return user, nil
}

// MigrateUser moves every record of a legacy account onto the account the
// same person now signs in with. Both accounts must exist and share an
// email address. Running it again after success does nothing.
func (s *userService) MigrateUser(ctx context.Context, fromUID, toUID string) error {
	log, ctx := logger.With(ctx, "from_uid", fromUID, "to_uid", toUID)

	if fromUID == "" {
		return errs.NewMissingFieldError("from")
	}
	if toUID == "" {
		return errs.NewMissingFieldError("to")
	}
	if fromUID == toUID {
		return errs.NewValidationError("source and target accounts are the same")
	}

	target, err := s.Store.GetUser(ctx, toUID)
	if err != nil {
		return err
	}
	if target.MigratedFrom == fromUID {
		log.Info("user already migrated")
		return nil
	}
	legacy, err := s.Store.GetUser(ctx, fromUID)
	if err != nil {
		return err
	}
	if legacy.Email == "" || !strings.EqualFold(legacy.Email, target.Email) {
		return errs.NewValidationError("accounts do not share an email address")
	}

	if err := s.Store.ReassignOwner(ctx, fromUID, toUID); err != nil {
		log.Error("failed to reassign records", "error", err)
		return err
	}

	target.MigratedFrom = fromUID
	target.UpdatedAt = time.Now()
	if err := s.Store.UpdateUser(ctx, target); err != nil {
		return err
	}
	log.Info("user records migrated")
	return nil
}
