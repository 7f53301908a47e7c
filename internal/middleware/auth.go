package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/GregMSThompson/patient-payments/internal/dto"
	"github.com/GregMSThompson/patient-payments/internal/errs"
	"github.com/GregMSThompson/patient-payments/internal/response"
	"github.com/GregMSThompson/patient-payments/pkg/logger"
)

// TokenVerifier checks a bearer token with the configured identity provider.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (dto.Identity, error)
}

type Middleware struct {
	Verifier        TokenVerifier
	ResponseHandler response.ResponseHandler
}

func NewMiddleware(verifier TokenVerifier, rh response.ResponseHandler) *Middleware {
	return &Middleware{Verifier: verifier, ResponseHandler: rh}
}

// context key
type contextKey string

const (
	UIDKey      contextKey = "uid"
	IdentityKey contextKey = "identity"
)

// Auth rejects requests without a valid bearer token and scopes the rest of
// the chain to the caller's uid.
func (m *Middleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			m.ResponseHandler.HandleError(w, r, errs.NewUnauthorizedError("missing Authorization header"))
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.ResponseHandler.HandleError(w, r, errs.NewUnauthorizedError("invalid Authorization header"))
			return
		}

		id, err := m.Verifier.Verify(r.Context(), parts[1])
		if err != nil || id.UID == "" {
			logger.FromContext(r.Context()).Debug("token rejected", "error", err)
			m.ResponseHandler.HandleError(w, r, errs.NewUnauthorizedError("invalid or expired token"))
			return
		}

		_, ctx := logger.With(r.Context(), "uid", id.UID)
		ctx = context.WithValue(ctx, UIDKey, id.UID)
		ctx = context.WithValue(ctx, IdentityKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Helper to extract UID
func UID(ctx context.Context) string {
	uid, _ := ctx.Value(UIDKey).(string)
	return uid
}

// CallerIdentity returns the verified identity stored by Auth.
func CallerIdentity(ctx context.Context) dto.Identity {
	id, _ := ctx.Value(IdentityKey).(dto.Identity)
	return id
}

// WithIdentity stores an identity the way Auth does. Handlers' tests use it
// to fake an authenticated request.
func WithIdentity(ctx context.Context, id dto.Identity) context.Context {
	ctx = context.WithValue(ctx, UIDKey, id.UID)
	return context.WithValue(ctx, IdentityKey, id)
}
