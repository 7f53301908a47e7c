package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreFirestore = "firestore"
	StorePostgres  = "postgres"
	StoreSQLite    = "sqlite"
)

// Auth providers.
const (
	AuthFirebase = "firebase"
	AuthJWT      = "jwt"
)

type Config struct {
	ProjectID     string
	Region        string
	LogLevel      string
	LogFormat     string
	Port          string
	StoreDriver   string
	DatabaseURL   string
	AuthProvider  string
	JWTSecret     string
	JWTSecretName string
	KMSKeyName    string
}

// New reads the environment, after loading a .env file from the working
// directory if there is one.
func New() *Config {
	_ = godotenv.Load()

	return &Config{
		ProjectID:     os.Getenv("PROJECTID"),
		Region:        os.Getenv("REGION"),
		LogLevel:      os.Getenv("LOGLEVEL"),
		LogFormat:     os.Getenv("LOGFORMAT"),
		Port:          getOrDefault("PORT", "8080"),
		StoreDriver:   strings.ToLower(getOrDefault("STOREDRIVER", StoreFirestore)),
		DatabaseURL:   os.Getenv("DATABASEURL"),
		AuthProvider:  strings.ToLower(getOrDefault("AUTHPROVIDER", AuthFirebase)),
		JWTSecret:     os.Getenv("JWTSECRET"),
		JWTSecretName: os.Getenv("JWTSECRETNAME"),
		KMSKeyName:    os.Getenv("KMSKEYNAME"),
	}
}

func getOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
