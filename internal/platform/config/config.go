package config

import (
	"errors"
	"os"
	"strings"
)

type HTTPConfig struct {
	Addr string
}

// AppConfig carries everything the activity service reads from the
// environment. DatabaseURL is optional: without it the service falls back to
// the local file-backed progress store (demo mode).
type AppConfig struct {
	ServiceName string
	Environment string // "production" tightens fallbacks
	LogLevel    string
	HTTP        HTTPConfig

	DatabaseURL string
	RedisDSN    string
	NATSURL     string
	JWTSecret   string

	// CatalogPath points at a JSON catalog file used when no database is
	// configured. DataDir holds the local progress store in the same mode.
	CatalogPath string
	DataDir     string

	AsyncWrites bool
}

func Load() (AppConfig, error) {
	cfg := AppConfig{
		ServiceName: envString("SERVICE_NAME", "activity"),
		Environment: envString("ENVIRONMENT", "development"),
		LogLevel:    envString("LOG_LEVEL", "info"),
		HTTP: HTTPConfig{
			Addr: envString("HTTP_ADDR", ":8080"),
		},
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisDSN:    strings.TrimSpace(os.Getenv("REDIS_DSN")),
		NATSURL:     strings.TrimSpace(os.Getenv("NATS_URL")),
		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
		CatalogPath: envString("CATALOG_PATH", "data/catalog.json"),
		DataDir:     envString("DATA_DIR", "data"),
		AsyncWrites: envBool("ASYNC_WRITES", true),
	}

	if cfg.JWTSecret == "" {
		return AppConfig{}, errors.New("JWT_SECRET is required")
	}
	if cfg.IsProduction() && cfg.DatabaseURL == "" {
		return AppConfig{}, errors.New("DATABASE_URL is required in production")
	}
	return cfg, nil
}

func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func envString(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return fallback
	}
	return v != "0" && v != "false" && v != "no"
}
