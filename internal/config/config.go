// Package config loads the stub server configuration from the environment.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the stub server.
type Config struct {
	// Listen address, e.g. ":8080".
	ListenAddr string

	// Database is the SQLite path; ":memory:" keeps everything in-process.
	Database string

	// JWTSecret signs the session cookie. Auto-generated when empty.
	JWTSecret string

	// CORSOrigin is the browser origin allowed to call the API with
	// credentials. The web UI runs on a separate dev server.
	CORSOrigin string

	// Seed controls whether a default admin account is created on an empty
	// database.
	Seed bool

	Logging LoggingConfig
}

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load reads configuration from environment variables, with .env files
// loaded first (silently skipped when absent).
func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	return &Config{
		ListenAddr: getenv("CONTROLE_LISTEN_ADDR", ":8080"),
		Database:   getenv("CONTROLE_DATABASE", "controle.sqlite"),
		JWTSecret:  os.Getenv("CONTROLE_JWT_SECRET"),
		CORSOrigin: getenv("CONTROLE_CORS_ORIGIN", "http://localhost:5173"),
		Seed:       os.Getenv("CONTROLE_SEED") != "false",
		Logging: LoggingConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "console"),
		},
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
