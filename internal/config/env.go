package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variables recognized by blogbuilder.
const (
	EnvSiteURL  = "BLOGBUILDER_SITE_URL"
	EnvLogLevel = "BLOGBUILDER_LOG_LEVEL"
)

// loadEnvFiles loads .env.local and then .env from the project root when
// present. godotenv never overwrites a set variable, so the process
// environment wins over .env.local, which wins over .env.
func loadEnvFiles(root string) {
	for _, name := range []string{".env.local", ".env"} {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("Failed to load env file", slog.String("path", path), slog.String("error", err.Error()))
		}
	}
}

func applyEnvOverrides(raw *fileConfig) {
	if v, ok := os.LookupEnv(EnvSiteURL); ok {
		raw.SiteURL = v
	}
}
