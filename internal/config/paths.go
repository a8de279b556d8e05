package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrz1836/svnbridge/internal/constants"
	"github.com/mrz1836/svnbridge/internal/errors"
)

// HomeDir returns the svnbridge data directory.
// SVNBRIDGE_HOME takes precedence; otherwise it is ~/.svnbridge.
//
// Returns an error if the home directory cannot be determined.
func HomeDir() (string, error) {
	if dir := os.Getenv(constants.HomeEnvVar); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.AppHome), nil
}

// GlobalConfigPath returns the full path to the global configuration file.
func GlobalConfigPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", fmt.Errorf("get global config path: %w", err)
	}
	return filepath.Join(dir, constants.ConfigFileName), nil
}

// ProjectConfigPath returns the relative path to the project configuration file.
// This is always .svnbridge/config.yaml relative to the current directory.
func ProjectConfigPath() string {
	return filepath.Join(constants.AppHome, constants.ConfigFileName)
}

// StatePath returns the full path to the persisted state file.
func StatePath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", fmt.Errorf("get state path: %w", err)
	}
	return filepath.Join(dir, constants.StateFileName), nil
}
