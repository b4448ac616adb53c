package utils

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// ErrNoEnvFile is returned by LoadEnv when no .env file was found.
var ErrNoEnvFile = errors.New("no .env file found")

// FindUp walks from start towards the filesystem root and returns the first
// directory containing name.
func FindUp(start, name string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// envCandidates lists .env locations: the nearest one above the working
// directory, then the user config directory.
func envCandidates() []string {
	var paths []string
	if wd, err := os.Getwd(); err == nil {
		if dir, err := FindUp(wd, ".env"); err == nil {
			paths = append(paths, filepath.Join(dir, ".env"))
		}
	}
	if cfg, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(cfg, "taletable", ".env"))
	}
	return paths
}

// LoadEnv loads the given .env files, or the default candidates when none are
// given. Missing files are skipped; variables already set are not overridden.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = envCandidates()
	}
	loaded := 0
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return err
		}
		loaded++
	}
	if loaded == 0 {
		return ErrNoEnvFile
	}
	return nil
}
