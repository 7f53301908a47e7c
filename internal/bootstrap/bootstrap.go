package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	gcpkms "cloud.google.com/go/kms/apiv1"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"firebase.google.com/go/v4/auth"
	"gorm.io/gorm"

	"github.com/GregMSThompson/patient-payments/internal/config"
	"github.com/GregMSThompson/patient-payments/internal/middleware"
	"github.com/GregMSThompson/patient-payments/pkg/logger"
)

type Bootstrap struct {
	Log       *slog.Logger
	Firestore *firestore.Client
	DB        *gorm.DB
	Firebase  *auth.Client
	KMS       *gcpkms.KeyManagementClient
	Secrets   *secretmanager.Client
	Verifier  middleware.TokenVerifier
	Stores    Stores
}

// Run sets up everything the API server needs. On error the returned
// Bootstrap still carries a logger and whatever was opened so far.
func Run(cfg *config.Config) (*Bootstrap, error) {
	applicationCtx := context.Background()
	bs, err := RunStorage(cfg)
	if err != nil {
		return bs, err
	}
	if err := bs.initAuth(applicationCtx, cfg); err != nil {
		return bs, err
	}
	return bs, nil
}

// RunStorage sets up logging and the configured store only. One-shot
// commands that never verify tokens use it.
func RunStorage(cfg *config.Config) (*Bootstrap, error) {
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.ForFormat(cfg.LogFormat))
	if err := bs.initStores(applicationCtx, cfg); err != nil {
		return bs, err
	}
	bs.Log.Info("storage ready", "driver", cfg.StoreDriver)
	return bs, nil
}

func (bs *Bootstrap) initAuth(ctx context.Context, cfg *config.Config) error {
	switch cfg.AuthProvider {
	case config.AuthFirebase:
		var err error
		bs.Firebase, err = InitFirebase(ctx)
		if err != nil {
			return err
		}
		bs.Verifier = NewFirebaseVerifier(bs.Firebase)
	case config.AuthJWT:
		secret, err := bs.sessionSecret(ctx, cfg)
		if err != nil {
			return err
		}
		bs.Verifier, err = NewSessionVerifier(secret)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown AUTHPROVIDER %q", cfg.AuthProvider)
	}
	bs.Log.Info("auth ready", "provider", cfg.AuthProvider)
	return nil
}

// Close releases every client that was opened.
func (bs *Bootstrap) Close() error {
	var errList []error
	if bs.Firestore != nil {
		errList = append(errList, bs.Firestore.Close())
	}
	if bs.KMS != nil {
		errList = append(errList, bs.KMS.Close())
	}
	if bs.Secrets != nil {
		errList = append(errList, bs.Secrets.Close())
	}
	if bs.DB != nil {
		if sqlDB, err := bs.DB.DB(); err == nil {
			errList = append(errList, sqlDB.Close())
		}
	}
	return errors.Join(errList...)
}
