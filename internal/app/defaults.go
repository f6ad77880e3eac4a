package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - BRANDKIT_CONFIG_PATH: config file location (default: ~/.config/brandkit.toml)
//   - BRANDKIT_HOME: base directory for brandkit data (default: ~/.local/share/brandkit)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// getConfigPath returns the config file path, checking BRANDKIT_CONFIG_PATH env var first,
// then falling back to the default ~/.config/brandkit.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("BRANDKIT_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "brandkit.toml"), nil
}

// getBaseDir returns the base directory for brandkit data, checking BRANDKIT_HOME env var first,
// then falling back to the XDG default ~/.local/share/brandkit.
func getBaseDir() (string, error) {
	if path := os.Getenv("BRANDKIT_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "brandkit"), nil
}
