package util

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "mexp"

// DataDir returns the XDG data directory for mexp.
// It respects XDG_DATA_HOME if set, otherwise falls back to ~/.local/share/mexp
func DataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".local", "share", appName), nil
}

// DataPath joins elem onto the data directory, creating the directory.
func DataPath(elem ...string) (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return filepath.Join(append([]string{dir}, elem...)...), nil
}
