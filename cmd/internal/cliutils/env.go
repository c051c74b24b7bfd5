package cliutils

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// EnvOrDefault returns the environment value for key, or fallback when unset.
func EnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// LoadDotEnv loads dir/.env when present. Variables already set in the
// environment win over the file.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}
