package services

import (
	"errors"
	"testing"
	"time"

	"github.com/GregMSThompson/patient-payments/internal/dto"
	"github.com/GregMSThompson/patient-payments/internal/errs"
	"github.com/GregMSThompson/patient-payments/internal/models"
	"github.com/GregMSThompson/patient-payments/pkg/helpers"
)

func TestUserServiceEnsureUserCreatesOnce(t *testing.T) {
	store := newStubUserStore()
	svc := NewUserService(store)

	ctx := helpers.TestCtx()
	now := time.Now()

	user, err := svc.EnsureUser(ctx, dto.Identity{UID: "uid-123", Email: " User@Example.com ", Provider: "firebase"})
	if err != nil {
		t.Fatalf("EnsureUser returned error: %v", err)
	}
	if store.createUserCalls != 1 {
		t.Fatalf("CreateUser called %d times, want 1", store.createUserCalls)
	}
	if user.UID != "uid-123" || user.Email != "user@example.com" || user.Provider != "firebase" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.CreatedAt.Before(now) {
		t.Fatalf("CreatedAt set earlier than call time: %v before %v", user.CreatedAt, now)
	}

	if _, err := svc.EnsureUser(ctx, dto.Identity{UID: "uid-123"}); err != nil {
		t.Fatalf("second EnsureUser returned error: %v", err)
	}
	if store.createUserCalls != 1 {
		t.Fatalf("CreateUser called %d times, want 1", store.createUserCalls)
	}
}

func TestUserServiceEnsureUserStoreError(t *testing.T) {
	store := newStubUserStore()
	store.createErr = errors.New("store failure")
	svc := NewUserService(store)

	if _, err := svc.EnsureUser(helpers.TestCtx(), dto.Identity{UID: "uid-456"}); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestUserServiceMigrateUser(t *testing.T) {
	legacy := &models.User{UID: "old", Email: "a@example.com", Provider: "jwt"}
	target := &models.User{UID: "new", Email: "A@example.com", Provider: "firebase"}
	store := newStubUserStore(legacy, target)
	svc := NewUserService(store)
	ctx := helpers.TestCtx()

	if err := svc.MigrateUser(ctx, "old", "new"); err != nil {
		t.Fatalf("MigrateUser returned error: %v", err)
	}
	if len(store.reassigned) != 1 || store.reassigned[0] != [2]string{"old", "new"} {
		t.Fatalf("unexpected reassignments: %v", store.reassigned)
	}
	if store.users["new"].MigratedFrom != "old" {
		t.Fatalf("target not marked as migrated: %+v", store.users["new"])
	}

	// already done
	if err := svc.MigrateUser(ctx, "old", "new"); err != nil {
		t.Fatalf("repeat MigrateUser returned error: %v", err)
	}
	if len(store.reassigned) != 1 {
		t.Fatalf("repeat migration reassigned again")
	}
}

func TestUserServiceMigrateUserRejects(t *testing.T) {
	store := newStubUserStore(
		&models.User{UID: "old", Email: "a@example.com"},
		&models.User{UID: "new", Email: "b@example.com"},
	)
	svc := NewUserService(store)
	ctx := helpers.TestCtx()

	var verr *errs.ValidationError
	if err := svc.MigrateUser(ctx, "old", "new"); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for mismatched emails, got %v", err)
	}
	if err := svc.MigrateUser(ctx, "new", "new"); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for same account, got %v", err)
	}
	var nf *errs.NotFoundError
	if err := svc.MigrateUser(ctx, "missing", "new"); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if len(store.reassigned) != 0 {
		t.Fatalf("nothing should be reassigned")
	}
}
