// Package cli provides common initialization utilities shared by
// cmd/tempo and cmd/tempo-worker.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"tempo/internal/config"
	applog "tempo/internal/log"
	"tempo/internal/storage"
)

// Bootstrap loads the optional .env file and installs the default
// structured logger. Env file errors are ignored since the file only
// exists in local development.
func Bootstrap() *applog.Logger {
	_ = godotenv.Load()
	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// OpenStorage opens the SQLite repository, running migrations.
// Returns the repository or exits the process on failure.
func OpenStorage(logger *applog.Logger, dbPath string) *storage.Repository {
	repo, err := storage.Open(dbPath)
	if err != nil {
		logger.Error("Failed to open database", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}
