//go:build prod

package database

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

func appDir() (string, bool) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		log.Warn().Err(err).Msg("failed to get user config dir, using fallback")
		return "", false
	}

	dir := filepath.Join(configDir, "taletable")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Warn().Err(err).Msg("failed to create app config dir, using fallback")
		return "", false
	}
	return dir, true
}

// GetDefaultDBPath returns the database path for production mode.
// In production, the database is stored in the user's config directory.
func GetDefaultDBPath() string {
	dir, ok := appDir()
	if !ok {
		return "taletable.db"
	}
	return filepath.Join(dir, "taletable.db")
}

// GetDefaultDataDir returns the directory holding per-project transcript files.
func GetDefaultDataDir() string {
	dir, ok := appDir()
	if !ok {
		return "data"
	}
	return filepath.Join(dir, "data")
}

func IsDevelopment() bool {
	return false
}
