package config

import (
	"os"
	"path/filepath"
)

// UserConfigPath returns the path to the user-level config file.
// This follows the XDG Base Directory Specification:
// - Linux: ~/.config/gatehook/config.yml
// - macOS: ~/Library/Application Support/gatehook/config.yml
// - Windows: %APPDATA%\gatehook\config.yml
func UserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "gatehook", "config.yml"), nil
}

// ProjectConfigPath returns the path to the project-level config file.
// This is always .gatehook/config.yml relative to the current directory.
func ProjectConfigPath() string {
	return filepath.Join(ProjectConfigDir(), "config.yml")
}

// ProjectJSONConfigPath returns the path to the JSON variant of the project config.
func ProjectJSONConfigPath() string {
	return filepath.Join(ProjectConfigDir(), "config.json")
}

// ProjectConfigDir returns the path to the project-level config directory.
func ProjectConfigDir() string {
	return ".gatehook"
}

// StateDir returns the directory holding gatehook's per-user state, such as
// the run history: ~/.gatehook/state.
func StateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".gatehook", "state"), nil
}
