package config

import (
	"log/slog"

	"github.com/joho/godotenv"
)

// loadEnvFiles loads environment variables from .env and .env.local when
// present. Missing files are normal; godotenv never overrides variables that
// already exist, so .env (loaded first) wins over .env.local.
func loadEnvFiles() {
	for _, path := range []string{".env", ".env.local"} {
		if err := godotenv.Load(path); err == nil {
			slog.Debug("Loaded environment variables", "file", path)
		}
	}
}
