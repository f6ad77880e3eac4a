package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"brandkit/internal/brand"
)

func TestYAMLStore_SaveLoad(t *testing.T) {
	s := NewYAMLStore()
	path := filepath.Join(t.TempDir(), "nested", "dir", "brand_config.yaml")

	doc := brand.Document{
		"brand": map[string]any{"name": "Acme"},
		"colors": map[string]any{
			"primary":   "#1a2b3c",
			"secondary": "#ffffff",
		},
	}

	if err := s.Save(path, doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := s.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	colors, ok := loaded.Section("colors")
	if !ok {
		t.Fatal("colors section missing after roundtrip")
	}
	if colors["primary"] != "#1a2b3c" {
		t.Errorf("primary = %v, want %q", colors["primary"], "#1a2b3c")
	}
	info, _ := loaded.Section("brand")
	if info["name"] != "Acme" {
		t.Errorf("name = %v, want %q", info["name"], "Acme")
	}
}

func TestYAMLStore_SaveLeavesNoTempFiles(t *testing.T) {
	s := NewYAMLStore()
	dir := t.TempDir()
	path := filepath.Join(dir, "brand_config.yaml")

	if err := s.Save(path, brand.Document{"brand": map[string]any{"name": "X"}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".tmp-") {
			t.Errorf("temp file %s left behind", entry.Name())
		}
	}
}

func TestYAMLStore_Load_Errors(t *testing.T) {
	s := NewYAMLStore()
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := s.Load(filepath.Join(dir, "absent.yaml"))
		if err == nil {
			t.Fatal("Load() error = nil, want fs error")
		}
		if errors.Is(err, brand.ErrValidation) {
			t.Error("missing file reported as validation error")
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(dir, "broken.yaml")
		if err := os.WriteFile(path, []byte("brand: [unclosed"), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := s.Load(path)
		if !errors.Is(err, brand.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("empty document", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yaml")
		if err := os.WriteFile(path, []byte(""), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := s.Load(path)
		if !errors.Is(err, brand.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})
}

func TestYAMLStore_Exists(t *testing.T) {
	s := NewYAMLStore()
	dir := t.TempDir()

	if s.Exists(filepath.Join(dir, "absent.yaml")) {
		t.Error("Exists() = true for missing file")
	}

	path := filepath.Join(dir, "present.yaml")
	if err := os.WriteFile(path, []byte("a: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if !s.Exists(path) {
		t.Error("Exists() = false for present file")
	}

	// Directories are not documents.
	if s.Exists(dir) {
		t.Error("Exists() = true for a directory")
	}
}
