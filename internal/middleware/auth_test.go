package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GregMSThompson/patient-payments/internal/dto"
	"github.com/GregMSThompson/patient-payments/internal/response"
	"github.com/GregMSThompson/patient-payments/pkg/helpers"
	"github.com/GregMSThompson/patient-payments/pkg/logger"
)

type stubVerifier struct {
	token string
	id    dto.Identity
	err   error
}

func (s *stubVerifier) Verify(_ context.Context, token string) (dto.Identity, error) {
	s.token = token
	return s.id, s.err
}

func newAuth(v TokenVerifier) *Middleware {
	return NewMiddleware(v, response.New(logger.New("", logger.NewTestHandler)))
}

func TestAuthRejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
		err    error
		id     dto.Identity
	}{
		{name: "MissingHeader"},
		{name: "WrongScheme", header: "Basic abc"},
		{name: "ExtraParts", header: "Bearer a b"},
		{name: "VerifierError", header: "Bearer abc", err: errors.New("expired")},
		{name: "EmptyUID", header: "Bearer abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })
			m := newAuth(&stubVerifier{id: tt.id, err: tt.err})

			req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(helpers.TestCtx())
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			m.Auth(next).ServeHTTP(rec, req)

			if called {
				t.Fatalf("next handler should not run")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestAuthStoresIdentity(t *testing.T) {
	v := &stubVerifier{id: dto.Identity{UID: "uid-1", Email: "a@b.com"}}
	m := newAuth(v)

	var gotUID string
	var gotID dto.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUID = UID(r.Context())
		gotID = CallerIdentity(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer tok-123")
	rec := httptest.NewRecorder()
	m.Auth(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if v.token != "tok-123" {
		t.Fatalf("verifier got %q", v.token)
	}
	if gotUID != "uid-1" || gotID.Email != "a@b.com" {
		t.Fatalf("context = %q %+v", gotUID, gotID)
	}
}
