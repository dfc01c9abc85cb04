package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Environment variables overriding the default locations.
const (
	EnvConfigPath = "MEALPLAN_CONFIG_PATH"
	EnvHome       = "MEALPLAN_HOME"
	EnvLogDir     = "MEALPLAN_LOG_DIR"
)

// GetDefaults returns the default config path, data directory and log
// directory under the keys config_path, base_dir and log_dir.
//
// Each location is taken from its MEALPLAN_* variable when set. Otherwise the
// config file lives in $XDG_CONFIG_HOME (~/.config) and data in
// $XDG_DATA_HOME (~/.local/share). Logs default to <base_dir>/log.
func GetDefaults() (map[string]string, error) {
	configPath, err := locate(EnvConfigPath, "XDG_CONFIG_HOME", ".config", "mealplan.toml")
	if err != nil {
		return nil, err
	}
	baseDir, err := locate(EnvHome, "XDG_DATA_HOME", filepath.Join(".local", "share"), "mealplan")
	if err != nil {
		return nil, err
	}
	logDir := os.Getenv(EnvLogDir)
	if logDir == "" {
		logDir = filepath.Join(baseDir, "log")
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     logDir,
	}, nil
}

// locate resolves $override, then $xdg/name, then ~/home/name.
// Relative XDG values are ignored.
func locate(override, xdg, home, name string) (string, error) {
	if path := os.Getenv(override); path != "" {
		return path, nil
	}
	if dir := os.Getenv(xdg); filepath.IsAbs(dir) {
		return filepath.Join(dir, name), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, home, name), nil
}
