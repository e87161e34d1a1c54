package storage

import (
	"os"
	"path/filepath"
)

// DefaultDir returns the default cache directory, creating it if needed.
func DefaultDir() (string, error) {
	base, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, ".regent", "cache")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
