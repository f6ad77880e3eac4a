package brand_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"brandkit/internal/brand"
	"brandkit/internal/encryption"
	"brandkit/internal/store"
	"brandkit/internal/testutil"
	"brandkit/internal/vault"
)

func TestBackupManager_Snapshot(t *testing.T) {
	docs := store.NewYAMLStore()
	mgr := brand.NewBackupManager(docs, vault.NewMemoryVault("test-vault"), nil, testutil.FixedClock(), brand.NewNopLogger())

	brandDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(brandDir, "backups"), 0755); err != nil {
		t.Fatal(err)
	}
	doc := brand.Document{"colors": map[string]any{"primary": "#123456"}}

	t.Run("names snapshot by timestamp", func(t *testing.T) {
		path, err := mgr.Snapshot(brandDir, doc)
		if err != nil {
			t.Fatalf("Snapshot() error = %v", err)
		}
		if got, want := filepath.Base(path), "backup_20240115_103000.yaml"; got != want {
			t.Errorf("snapshot name = %q, want %q", got, want)
		}

		loaded, err := docs.Load(path)
		if err != nil {
			t.Fatalf("loading snapshot: %v", err)
		}
		colors, _ := loaded.Section("colors")
		if colors["primary"] != "#123456" {
			t.Errorf("snapshot primary = %v, want original value", colors["primary"])
		}
	})

	t.Run("suffixes on collision", func(t *testing.T) {
		path, err := mgr.Snapshot(brandDir, doc)
		if err != nil {
			t.Fatalf("Snapshot() error = %v", err)
		}
		if got, want := filepath.Base(path), "backup_20240115_103000_1.yaml"; got != want {
			t.Errorf("snapshot name = %q, want %q", got, want)
		}
	})
}

func writeArchiveFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	brandDir := filepath.Join(dir, "acme")
	if err := os.MkdirAll(filepath.Join(brandDir, "assets", "images"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(brandDir, brand.ConfigFileName), []byte("brand:\n  name: Acme\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(brandDir, "assets", "images", "logo.png"), []byte("png-bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	return brandDir
}

func readTarNames(t *testing.T, data []byte) map[string]string {
	t.Helper()
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("opening gzip: %v", err)
	}
	defer gz.Close()

	entries := make(map[string]string)
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("reading tar: %v", err)
		}
		content, err := io.ReadAll(tr)
		if err != nil {
			t.Fatalf("reading tar entry %s: %v", hdr.Name, err)
		}
		entries[hdr.Name] = string(content)
	}
	return entries
}

func TestBackupManager_Archive(t *testing.T) {
	mv := vault.NewMemoryVault("test-vault")
	mgr := brand.NewBackupManager(store.NewYAMLStore(), mv, nil, testutil.FixedClock(), brand.NewNopLogger())
	brandDir := writeArchiveFixture(t)

	location, err := mgr.Archive("acme", brandDir)
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	if want := "memory://test-vault/acme_deleted_20240115_103000.tar.gz"; location != want {
		t.Errorf("location = %q, want %q", location, want)
	}

	data, ok := mv.Archive("acme_deleted_20240115_103000.tar.gz")
	if !ok {
		t.Fatal("archive not stored in vault")
	}

	entries := readTarNames(t, data)
	if got := entries["acme/"+brand.ConfigFileName]; !strings.Contains(got, "name: Acme") {
		t.Errorf("config entry = %q, want brand yaml", got)
	}
	if got := entries["acme/assets/images/logo.png"]; got != "png-bytes" {
		t.Errorf("asset entry = %q, want %q", got, "png-bytes")
	}
	if _, ok := entries["acme/assets/"]; !ok {
		t.Error("directory entries not rooted at the brand name")
	}
}

func TestBackupManager_Archive_Encrypted(t *testing.T) {
	mv := vault.NewMemoryVault("test-vault")
	enc := encryption.NewTestEncryptor()
	mgr := brand.NewBackupManager(store.NewYAMLStore(), mv, enc, testutil.FixedClock(), brand.NewNopLogger())
	brandDir := writeArchiveFixture(t)

	location, err := mgr.Archive("acme", brandDir)
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	if !strings.HasSuffix(location, ".tar.gz.age") {
		t.Errorf("location = %q, want .tar.gz.age suffix", location)
	}

	ciphertext, ok := mv.Archive("acme_deleted_20240115_103000.tar.gz.age")
	if !ok {
		t.Fatal("encrypted archive not stored in vault")
	}

	ctx, err := enc.Unlock("")
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	var plaintext bytes.Buffer
	if err := ctx.Decrypt(bytes.NewReader(ciphertext), &plaintext); err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}

	entries := readTarNames(t, plaintext.Bytes())
	if _, ok := entries["acme/"+brand.ConfigFileName]; !ok {
		t.Error("decrypted archive missing the config entry")
	}
}
