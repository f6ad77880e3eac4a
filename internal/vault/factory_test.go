package vault

import (
	"testing"

	"brandkit/internal/config"
)

func TestNewArchiveVaultFromConfig(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		v, err := NewArchiveVaultFromConfig(config.VaultConfig{Type: "memory", Name: "test"})
		if err != nil {
			t.Fatalf("NewArchiveVaultFromConfig() error = %v", err)
		}
		if _, ok := v.(*MemoryVault); !ok {
			t.Errorf("got %T, want *MemoryVault", v)
		}
	})

	t.Run("filesystem", func(t *testing.T) {
		v, err := NewArchiveVaultFromConfig(config.VaultConfig{
			Type:        "filesystem",
			Name:        "test",
			FSVaultRoot: t.TempDir(),
		})
		if err != nil {
			t.Fatalf("NewArchiveVaultFromConfig() error = %v", err)
		}
		if _, ok := v.(*FileSystemVault); !ok {
			t.Errorf("got %T, want *FileSystemVault", v)
		}
	})

	t.Run("filesystem without root", func(t *testing.T) {
		if _, err := NewArchiveVaultFromConfig(config.VaultConfig{Type: "filesystem", Name: "test"}); err == nil {
			t.Error("error = nil, want missing fs_vault_root error")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := NewArchiveVaultFromConfig(config.VaultConfig{Type: "tape"}); err == nil {
			t.Error("error = nil, want unknown type error")
		}
	})
}
