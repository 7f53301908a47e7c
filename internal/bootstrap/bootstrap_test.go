package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GregMSThompson/patient-payments/internal/config"
	"github.com/GregMSThompson/patient-payments/internal/models"
)

func TestRunWithSQLiteAndSessionAuth(t *testing.T) {
	cfg := &config.Config{
		StoreDriver:  config.StoreSQLite,
		DatabaseURL:  "file::memory:",
		AuthProvider: config.AuthJWT,
		JWTSecret:    "s3cret",
	}

	bs, err := Run(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { bs.Close() })

	require.NotNil(t, bs.DB)
	require.NotNil(t, bs.Verifier)

	ctx := context.Background()
	require.NoError(t, bs.Stores.Users.CreateUser(ctx, &models.User{UID: "uid-1", Email: "a@b.com"}))
	got, err := bs.Stores.Users.GetUser(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", got.Email)
}

func TestRunRejectsBadConfig(t *testing.T) {
	tests := map[string]*config.Config{
		"UnknownDriver":  {StoreDriver: "mongo", AuthProvider: config.AuthJWT, JWTSecret: "x"},
		"PostgresNoURL":  {StoreDriver: config.StorePostgres, AuthProvider: config.AuthJWT, JWTSecret: "x"},
		"UnknownAuth":    {StoreDriver: config.StoreSQLite, DatabaseURL: "file::memory:", AuthProvider: "saml"},
		"JWTWithoutKeys": {StoreDriver: config.StoreSQLite, DatabaseURL: "file::memory:", AuthProvider: config.AuthJWT},
	}
	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			bs, err := Run(cfg)
			assert.Error(t, err)
			require.NotNil(t, bs.Log)
			bs.Close()
		})
	}
}
