package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaults_EnvOverrides(t *testing.T) {
	t.Setenv("BRANDKIT_CONFIG_PATH", "/custom/brandkit.toml")
	t.Setenv("BRANDKIT_HOME", "/custom/data")

	defaults, err := GetDefaults()
	if err != nil {
		t.Fatalf("GetDefaults() error = %v", err)
	}
	if defaults["config_path"] != "/custom/brandkit.toml" {
		t.Errorf("config_path = %q, want %q", defaults["config_path"], "/custom/brandkit.toml")
	}
	if defaults["base_dir"] != "/custom/data" {
		t.Errorf("base_dir = %q, want %q", defaults["base_dir"], "/custom/data")
	}
	if want := filepath.Join("/custom/data", "log"); defaults["log_dir"] != want {
		t.Errorf("log_dir = %q, want %q", defaults["log_dir"], want)
	}
}

func TestGetDefaults_HomeFallback(t *testing.T) {
	t.Setenv("BRANDKIT_CONFIG_PATH", "")
	t.Setenv("BRANDKIT_HOME", "")

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	defaults, err := GetDefaults()
	if err != nil {
		t.Fatalf("GetDefaults() error = %v", err)
	}
	if want := filepath.Join(home, ".config", "brandkit.toml"); defaults["config_path"] != want {
		t.Errorf("config_path = %q, want %q", defaults["config_path"], want)
	}
	if want := filepath.Join(home, ".local", "share", "brandkit"); defaults["base_dir"] != want {
		t.Errorf("base_dir = %q, want %q", defaults["base_dir"], want)
	}
}
