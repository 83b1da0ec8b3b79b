// Package config loads server configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	DBPath        string
	JWTSigningKey string
	TokenDuration time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	return Server{
		Addr:          getEnv("SPLITLEDGER_ADDR", ":8080"),
		DBPath:        getEnv("DB_PATH", "./data/splitledger.db"),
		JWTSigningKey: getEnv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		TokenDuration: 24 * time.Hour,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
