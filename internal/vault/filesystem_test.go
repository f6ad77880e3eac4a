package vault

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileSystemVault_PutArchive(t *testing.T) {
	t.Run("stores archive and returns its path", func(t *testing.T) {
		root := t.TempDir()
		v, err := NewFileSystemVault("test-vault", root)
		if err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}

		data := "archive-bytes"
		location, err := v.PutArchive("acme.tar.gz", strings.NewReader(data), int64(len(data)))
		if err != nil {
			t.Fatalf("PutArchive() error = %v", err)
		}
		if want := filepath.Join(root, "acme.tar.gz"); location != want {
			t.Errorf("location = %q, want %q", location, want)
		}

		stored, err := os.ReadFile(location)
		if err != nil {
			t.Fatalf("reading stored archive: %v", err)
		}
		if string(stored) != data {
			t.Errorf("stored content = %q, want %q", stored, data)
		}
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		v, err := NewFileSystemVault("test-vault", t.TempDir())
		if err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}

		if _, err := v.PutArchive("acme.tar.gz", strings.NewReader("first"), 5); err != nil {
			t.Fatalf("first PutArchive() error = %v", err)
		}
		if _, err := v.PutArchive("acme.tar.gz", strings.NewReader("again"), 5); err == nil {
			t.Error("PutArchive() error = nil, want already-exists error")
		}
	})

	t.Run("size mismatch leaves nothing behind", func(t *testing.T) {
		root := t.TempDir()
		v, err := NewFileSystemVault("test-vault", root)
		if err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}

		if _, err := v.PutArchive("acme.tar.gz", strings.NewReader("short"), 100); err == nil {
			t.Fatal("PutArchive() error = nil, want size mismatch")
		}

		entries, err := os.ReadDir(root)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 0 {
			t.Errorf("vault root has %d entries after failed write, want 0", len(entries))
		}
	})
}

func TestFileSystemVault_ValidateSetup(t *testing.T) {
	t.Run("writable directory", func(t *testing.T) {
		v, err := NewFileSystemVault("test-vault", t.TempDir())
		if err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}
		if err := v.ValidateSetup(); err != nil {
			t.Errorf("ValidateSetup() error = %v", err)
		}
	})

	t.Run("missing root", func(t *testing.T) {
		v := &FileSystemVault{name: "test-vault", root: filepath.Join(t.TempDir(), "gone")}
		if err := v.ValidateSetup(); err == nil {
			t.Error("ValidateSetup() error = nil, want not-accessible error")
		}
	})

	t.Run("root is a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "not-a-dir")
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		v := &FileSystemVault{name: "test-vault", root: path}
		if err := v.ValidateSetup(); err == nil {
			t.Error("ValidateSetup() error = nil, want not-a-directory error")
		}
	})
}
