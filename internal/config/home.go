package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetStateHome returns the shipshape state directory
// Priority order:
//  1. SHIPSHAPE_HOME environment variable (if set)
//  2. ~/.shipshape under the user's home directory
//
// The directory is created if it doesn't exist
func GetStateHome() (string, error) {
	// Try env var first
	if home := os.Getenv("SHIPSHAPE_HOME"); home != "" {
		if err := os.MkdirAll(home, 0755); err != nil {
			return "", fmt.Errorf("create state home directory: %w", err)
		}
		return home, nil
	}

	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home directory: %w", err)
	}

	stateHome := filepath.Join(userHome, ".shipshape")
	if err := os.MkdirAll(stateHome, 0755); err != nil {
		return "", fmt.Errorf("create state home directory: %w", err)
	}
	return stateHome, nil
}

// GetLogDir returns the run-log directory, creating it if needed.
// Always returns: $SHIPSHAPE_HOME/logs
func GetLogDir() (string, error) {
	home, err := GetStateHome()
	if err != nil {
		return "", err
	}

	logDir := filepath.Join(home, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("create log directory: %w", err)
	}
	return logDir, nil
}

// GetHistoryDBPath returns the absolute path to the history database
// Always returns: $SHIPSHAPE_HOME/history/runs.db
func GetHistoryDBPath() (string, error) {
	home, err := GetStateHome()
	if err != nil {
		return "", err
	}

	historyDir := filepath.Join(home, "history")
	if err := os.MkdirAll(historyDir, 0755); err != nil {
		return "", fmt.Errorf("create history directory: %w", err)
	}
	return filepath.Join(historyDir, "runs.db"), nil
}

// GetLockPath returns the path of the lock file that serializes apply runs.
func GetLockPath() (string, error) {
	home, err := GetStateHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "apply.lock"), nil
}

// DefaultConfigPath returns where LoadConfig looks when --config is not
// given: $SHIPSHAPE_HOME/config.yaml
func DefaultConfigPath() (string, error) {
	home, err := GetStateHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "config.yaml"), nil
}
