package bootstrap

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"

	firebaseclient "github.com/GregMSThompson/patient-payments/internal/client/firebase"
	"github.com/GregMSThompson/patient-payments/internal/client/session"
	"github.com/GregMSThompson/patient-payments/internal/config"
	"github.com/GregMSThompson/patient-payments/internal/middleware"
	"github.com/GregMSThompson/patient-payments/internal/store"
)

func InitFirebase(ctx context.Context) (*auth.Client, error) {
	app, err := firebase.NewApp(ctx, nil)
	if err != nil {
		return nil, err
	}
	return app.Auth(ctx)
}

func NewFirebaseVerifier(client *auth.Client) middleware.TokenVerifier {
	return firebaseclient.NewVerifier(client)
}

func NewSessionVerifier(secret string) (middleware.TokenVerifier, error) {
	return session.NewVerifier(secret)
}

// sessionSecret prefers JWTSECRET and falls back to reading JWTSECRETNAME
// from Secret Manager.
func (bs *Bootstrap) sessionSecret(ctx context.Context, cfg *config.Config) (string, error) {
	if cfg.JWTSecret != "" {
		return cfg.JWTSecret, nil
	}
	if cfg.JWTSecretName == "" {
		return "", errNoSessionSecret
	}
	var err error
	if bs.Secrets == nil {
		bs.Secrets, err = InitSecretManager(ctx)
		if err != nil {
			return "", err
		}
	}
	return store.NewSecretsStore(bs.Secrets, cfg.ProjectID).Latest(ctx, cfg.JWTSecretName)
}
