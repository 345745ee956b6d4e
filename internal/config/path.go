// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and environment variables in a file path.
// It handles both ~ for home directory and $VAR style environment variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// DefaultDBPath returns the default database location, creating the
// parent directory when needed.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "recibo.db"
	}
	dir := filepath.Join(home, ".local", "share", "recibo")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "recibo.db"
	}
	return filepath.Join(dir, "recibo.db")
}
