package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings. It is built once in main and passed
// into the handlers that need it; nothing reads the environment after Load.
type Config struct {
	Port         string
	DatabasePath string
	BaseURL      string
	AppEnv       string
	JWTSecret    string
}

// Load reads configuration from the environment, with .env support for
// local development.
func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	return &Config{
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("SHORTENER_DB_PATH", "shortener.db"),
		BaseURL:      getEnv("SHORTENER_BASE_URL", "http://localhost:8080"),
		AppEnv:       getEnv("APP_ENV", "local"),
		// Default for development only - should be set in production
		JWTSecret:    getEnv("JWT_SECRET", "urlshortener-dev-secret-change-in-production"),
	}
}

// ShortURL builds the public short URL for a code.
func (c *Config) ShortURL(code string) string {
	base := c.BaseURL
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + "/" + code
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
