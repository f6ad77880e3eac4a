package brand_test

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"brandkit/internal/brand"
)

func encode(data string) string {
	return base64.StdEncoding.EncodeToString([]byte(data))
}

func newBrandWithRegistry(t *testing.T) (*testEnv, string) {
	t.Helper()
	env := newTestEnv(t)
	if _, err := env.registry.Create("acme", brand.CreateOptions{Config: baseConfig()}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return env, "acme"
}

func TestRegistry_UploadAsset(t *testing.T) {
	t.Run("stores under type directory", func(t *testing.T) {
		env, name := newBrandWithRegistry(t)

		data := "png-bytes"
		result, err := env.registry.UploadAsset(name, "logo.png", "image", encode(data), nil)
		if err != nil {
			t.Fatalf("UploadAsset() error = %v", err)
		}

		wantPath := filepath.Join(env.registry.BrandDir(name), "assets", "images", "logo.png")
		if result.Path != wantPath {
			t.Errorf("Path = %q, want %q", result.Path, wantPath)
		}
		if result.Size != int64(len(data)) {
			t.Errorf("Size = %d, want %d", result.Size, len(data))
		}
		if want := fmt.Sprintf("%x", sha256.Sum256([]byte(data))); result.Checksum != want {
			t.Errorf("Checksum = %q, want %q", result.Checksum, want)
		}
		if result.Renamed {
			t.Error("Renamed = true for a fresh filename")
		}

		stored, err := os.ReadFile(wantPath)
		if err != nil {
			t.Fatalf("reading stored asset: %v", err)
		}
		if string(stored) != data {
			t.Errorf("stored content = %q, want %q", stored, data)
		}
	})

	t.Run("persists metadata in the index", func(t *testing.T) {
		env, name := newBrandWithRegistry(t)

		metadata := map[string]any{"source": "design-team", "license": "internal"}
		if _, err := env.registry.UploadAsset(name, "logo.png", "image", encode("x"), metadata); err != nil {
			t.Fatalf("UploadAsset() error = %v", err)
		}
		if _, err := env.registry.UploadAsset(name, "plain.png", "image", encode("x"), nil); err != nil {
			t.Fatalf("UploadAsset() error = %v", err)
		}

		raw, err := os.ReadFile(filepath.Join(env.registry.BrandDir(name), brand.AssetRegistryFileName))
		if err != nil {
			t.Fatalf("reading asset index: %v", err)
		}
		index := map[string]brand.AssetRecord{}
		if err := json.Unmarshal(raw, &index); err != nil {
			t.Fatalf("parsing asset index: %v", err)
		}

		if got := index["logo.png"].Metadata; !reflect.DeepEqual(got, metadata) {
			t.Errorf("metadata = %v, want %v", got, metadata)
		}
		if got := index["plain.png"].Metadata; got != nil {
			t.Errorf("metadata = %v, want none recorded", got)
		}
	})

	t.Run("routes types to directories", func(t *testing.T) {
		env, name := newBrandWithRegistry(t)

		tests := []struct {
			filename  string
			assetType string
			wantDir   string
		}{
			{"mark.svg", "logo", "assets/images"},
			{"body.woff2", "font", "assets/fonts"},
			{"theme.css", "css", "assets"},
			{"invoice.html", "template", "templates"},
			{"widget.js", "script", "assets/misc"},
		}
		for _, tt := range tests {
			result, err := env.registry.UploadAsset(name, tt.filename, tt.assetType, encode("x"), nil)
			if err != nil {
				t.Fatalf("UploadAsset(%s, %s) error = %v", tt.filename, tt.assetType, err)
			}
			want := filepath.Join(env.registry.BrandDir(name), filepath.FromSlash(tt.wantDir), tt.filename)
			if result.Path != want {
				t.Errorf("UploadAsset(%s, %s) path = %q, want %q", tt.filename, tt.assetType, result.Path, want)
			}
		}
	})

	t.Run("collision gets a numeric suffix", func(t *testing.T) {
		env, name := newBrandWithRegistry(t)

		if _, err := env.registry.UploadAsset(name, "logo.png", "image", encode("first"), nil); err != nil {
			t.Fatalf("first upload error = %v", err)
		}
		result, err := env.registry.UploadAsset(name, "logo.png", "image", encode("second"), nil)
		if err != nil {
			t.Fatalf("second upload error = %v", err)
		}
		if result.Filename != "logo_1.png" {
			t.Errorf("Filename = %q, want %q", result.Filename, "logo_1.png")
		}
		if !result.Renamed {
			t.Error("Renamed = false, want true")
		}

		// The original must be untouched.
		original := filepath.Join(env.registry.BrandDir(name), "assets", "images", "logo.png")
		data, err := os.ReadFile(original)
		if err != nil {
			t.Fatalf("reading original: %v", err)
		}
		if string(data) != "first" {
			t.Errorf("original content = %q, want %q", data, "first")
		}
	})

	t.Run("rejections", func(t *testing.T) {
		env, name := newBrandWithRegistry(t)

		tests := []struct {
			testName  string
			filename  string
			assetType string
			encoded   string
		}{
			{"empty data", "logo.png", "image", ""},
			{"invalid base64", "logo.png", "image", "not-base64!!!"},
			{"decoded empty", "logo.png", "image", encode("")},
			{"empty filename", "", "image", encode("x")},
			{"long filename", strings.Repeat("a", 252) + ".png", "image", encode("x")},
			{"path separator", "../logo.png", "image", encode("x")},
			{"no extension", "logo", "image", encode("x")},
			{"wrong extension for type", "logo.exe", "image", encode("x")},
			{"font extension on image", "body.woff2", "image", encode("x")},
		}
		for _, tt := range tests {
			t.Run(tt.testName, func(t *testing.T) {
				_, err := env.registry.UploadAsset(name, tt.filename, tt.assetType, tt.encoded, nil)
				if !errors.Is(err, brand.ErrValidation) {
					t.Errorf("error = %v, want ErrValidation", err)
				}
			})
		}
	})

	t.Run("oversize payload", func(t *testing.T) {
		env, name := newBrandWithRegistry(t)

		// 11 MiB decoded, just over the 10 MiB ceiling.
		_, err := env.registry.UploadAsset(name, "huge.png", "image", encode(strings.Repeat("a", 11<<20)), nil)
		if !errors.Is(err, brand.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
		if _, statErr := os.Stat(filepath.Join(env.registry.BrandDir(name), "assets", "images", "huge.png")); !os.IsNotExist(statErr) {
			t.Error("oversize asset landed on disk")
		}
	})

	t.Run("missing brand", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.registry.UploadAsset("ghost", "logo.png", "image", encode("x"), nil)
		if !errors.Is(err, brand.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}

func TestRegistry_ListAssets(t *testing.T) {
	env, name := newBrandWithRegistry(t)

	uploads := []struct {
		filename  string
		assetType string
	}{
		{"zulu.png", "image"},
		{"body.woff2", "font"},
		{"invoice.html", "template"},
	}
	for _, u := range uploads {
		if _, err := env.registry.UploadAsset(name, u.filename, u.assetType, encode("x"), nil); err != nil {
			t.Fatalf("UploadAsset(%s) error = %v", u.filename, err)
		}
	}

	assets, err := env.registry.ListAssets(name, "")
	if err != nil {
		t.Fatalf("ListAssets() error = %v", err)
	}

	var got []string
	for _, a := range assets {
		got = append(got, a.Filename+":"+a.AssetType)
	}
	want := []string{"body.woff2:font", "invoice.html:template", "zulu.png:image"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("assets = %v, want %v", got, want)
	}

	t.Run("type filter", func(t *testing.T) {
		fonts, err := env.registry.ListAssets(name, "font")
		if err != nil {
			t.Fatalf("ListAssets() error = %v", err)
		}
		if len(fonts) != 1 || fonts[0].Filename != "body.woff2" {
			t.Errorf("fonts = %+v, want only body.woff2", fonts)
		}
	})

	t.Run("missing brand", func(t *testing.T) {
		_, err := env.registry.ListAssets("ghost", "")
		if !errors.Is(err, brand.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}

func TestRegistry_ValidateAssets(t *testing.T) {
	env, name := newBrandWithRegistry(t)

	if _, err := env.registry.UploadAsset(name, "logo.png", "image", encode("x"), nil); err != nil {
		t.Fatalf("UploadAsset() error = %v", err)
	}
	result, err := env.registry.UploadAsset(name, "gone.png", "image", encode("x"), nil)
	if err != nil {
		t.Fatalf("UploadAsset() error = %v", err)
	}
	if err := os.Remove(result.Path); err != nil {
		t.Fatalf("removing asset behind the index: %v", err)
	}

	checks, err := env.registry.ValidateAssets(name)
	if err != nil {
		t.Fatalf("ValidateAssets() error = %v", err)
	}
	if len(checks) != 2 {
		t.Fatalf("got %d checks, want 2", len(checks))
	}
	// Sorted by filename: gone.png first.
	if checks[0].Filename != "gone.png" || checks[0].Status != "missing" {
		t.Errorf("checks[0] = %+v, want gone.png missing", checks[0])
	}
	if checks[1].Filename != "logo.png" || checks[1].Status != "valid" {
		t.Errorf("checks[1] = %+v, want logo.png valid", checks[1])
	}

	t.Run("checksum mismatch", func(t *testing.T) {
		env, name := newBrandWithRegistry(t)

		result, err := env.registry.UploadAsset(name, "logo.png", "image", encode("original"), nil)
		if err != nil {
			t.Fatalf("UploadAsset() error = %v", err)
		}
		if err := os.WriteFile(result.Path, []byte("tampered"), 0o644); err != nil {
			t.Fatalf("overwriting asset: %v", err)
		}

		checks, err := env.registry.ValidateAssets(name)
		if err != nil {
			t.Fatalf("ValidateAssets() error = %v", err)
		}
		if len(checks) != 1 {
			t.Fatalf("got %d checks, want 1", len(checks))
		}
		if checks[0].Status != "error" || checks[0].Detail != "checksum mismatch" {
			t.Errorf("check = %+v, want checksum mismatch error", checks[0])
		}
	})
}

func TestRegistry_DeleteAsset(t *testing.T) {
	t.Run("backs up before removing", func(t *testing.T) {
		env, name := newBrandWithRegistry(t)

		result, err := env.registry.UploadAsset(name, "logo.png", "image", encode("png-bytes"), nil)
		if err != nil {
			t.Fatalf("UploadAsset() error = %v", err)
		}

		if err := env.registry.DeleteAsset(name, "logo.png", true); err != nil {
			t.Fatalf("DeleteAsset() error = %v", err)
		}

		if _, err := os.Stat(result.Path); !os.IsNotExist(err) {
			t.Error("asset still on disk after delete")
		}

		backupPath := filepath.Join(env.registry.BrandDir(name), "backups", "20240115_103000_logo.png")
		data, err := os.ReadFile(backupPath)
		if err != nil {
			t.Fatalf("backup copy missing: %v", err)
		}
		if string(data) != "png-bytes" {
			t.Errorf("backup content = %q, want %q", data, "png-bytes")
		}

		// The advisory index must drop the record too.
		checks, err := env.registry.ValidateAssets(name)
		if err != nil {
			t.Fatalf("ValidateAssets() error = %v", err)
		}
		if len(checks) != 0 {
			t.Errorf("checks = %+v, want empty index", checks)
		}
	})

	t.Run("without backup", func(t *testing.T) {
		env, name := newBrandWithRegistry(t)

		result, err := env.registry.UploadAsset(name, "logo.png", "image", encode("png-bytes"), nil)
		if err != nil {
			t.Fatalf("UploadAsset() error = %v", err)
		}

		if err := env.registry.DeleteAsset(name, "logo.png", false); err != nil {
			t.Fatalf("DeleteAsset() error = %v", err)
		}

		if _, err := os.Stat(result.Path); !os.IsNotExist(err) {
			t.Error("asset still on disk after delete")
		}
		backupPath := filepath.Join(env.registry.BrandDir(name), "backups", "20240115_103000_logo.png")
		if _, err := os.Stat(backupPath); !os.IsNotExist(err) {
			t.Error("backup copy written despite createBackup=false")
		}
	})

	t.Run("missing asset", func(t *testing.T) {
		env, name := newBrandWithRegistry(t)
		err := env.registry.DeleteAsset(name, "ghost.png", true)
		if !errors.Is(err, brand.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}

// seedCleanupFixture creates a brand whose document references logo.png,
// leaving orphan.png and stray.js unreferenced.
func seedCleanupFixture(t *testing.T) (*testEnv, string) {
	t.Helper()
	env, name := newBrandWithRegistry(t)

	if _, err := env.registry.Update(name, brand.Document{
		"assets": map[string]any{"logo": "assets/images/logo.png"},
	}, brand.UpdateOptions{}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if _, err := env.registry.UploadAsset(name, "logo.png", "image", encode("keep"), nil); err != nil {
		t.Fatalf("UploadAsset() error = %v", err)
	}
	if _, err := env.registry.UploadAsset(name, "orphan.png", "image", encode("drop-me"), nil); err != nil {
		t.Fatalf("UploadAsset() error = %v", err)
	}
	// A file in an otherwise unreferenced directory; its directory should be
	// pruned once the file is gone.
	if _, err := env.registry.UploadAsset(name, "stray.js", "script", encode("x"), nil); err != nil {
		t.Fatalf("UploadAsset() error = %v", err)
	}
	return env, name
}

func TestRegistry_CleanupAssets(t *testing.T) {
	t.Run("report only by default", func(t *testing.T) {
		env, name := seedCleanupFixture(t)

		summary, err := env.registry.CleanupAssets(name, false)
		if err != nil {
			t.Fatalf("CleanupAssets() error = %v", err)
		}

		if want := []string{"orphan.png", "stray.js"}; !reflect.DeepEqual(summary.Unused, want) {
			t.Errorf("Unused = %v, want %v", summary.Unused, want)
		}
		if len(summary.Removed) != 0 {
			t.Errorf("Removed = %v, want nothing deleted", summary.Removed)
		}
		if summary.Kept != 1 {
			t.Errorf("Kept = %d, want 1", summary.Kept)
		}
		if want := int64(len("drop-me") + len("x")); summary.BytesFreed != want {
			t.Errorf("BytesFreed = %d, want %d", summary.BytesFreed, want)
		}
		if summary.DirsRemoved != 0 {
			t.Errorf("DirsRemoved = %d, want 0", summary.DirsRemoved)
		}

		// Every file must survive a report-only pass, index included.
		for _, rel := range []string{
			filepath.Join("assets", "images", "orphan.png"),
			filepath.Join("assets", "misc", "stray.js"),
		} {
			if _, err := os.Stat(filepath.Join(env.registry.BrandDir(name), rel)); err != nil {
				t.Errorf("unreferenced asset deleted without remove: %v", err)
			}
		}
		checks, err := env.registry.ValidateAssets(name)
		if err != nil {
			t.Fatalf("ValidateAssets() error = %v", err)
		}
		if len(checks) != 3 {
			t.Errorf("got %d index entries, want 3", len(checks))
		}
	})

	t.Run("remove unused", func(t *testing.T) {
		env, name := seedCleanupFixture(t)

		summary, err := env.registry.CleanupAssets(name, true)
		if err != nil {
			t.Fatalf("CleanupAssets() error = %v", err)
		}

		want := []string{"orphan.png", "stray.js"}
		if !reflect.DeepEqual(summary.Unused, want) {
			t.Errorf("Unused = %v, want %v", summary.Unused, want)
		}
		if !reflect.DeepEqual(summary.Removed, want) {
			t.Errorf("Removed = %v, want %v", summary.Removed, want)
		}
		if summary.Kept != 1 {
			t.Errorf("Kept = %d, want 1", summary.Kept)
		}
		if want := int64(len("drop-me") + len("x")); summary.BytesFreed != want {
			t.Errorf("BytesFreed = %d, want %d", summary.BytesFreed, want)
		}
		if summary.DirsRemoved == 0 {
			t.Error("DirsRemoved = 0, want misc directory pruned")
		}

		if _, err := os.Stat(filepath.Join(env.registry.BrandDir(name), "assets", "images", "logo.png")); err != nil {
			t.Errorf("referenced asset removed: %v", err)
		}
		if _, err := os.Stat(filepath.Join(env.registry.BrandDir(name), "assets", "misc")); !os.IsNotExist(err) {
			t.Error("empty misc directory not pruned")
		}
	})
}
