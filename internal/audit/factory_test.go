package audit

import (
	"testing"

	"brandkit/internal/config"
)

func TestNewAuditLogFromConfig(t *testing.T) {
	t.Run("sqlite", func(t *testing.T) {
		log, err := NewAuditLogFromConfig(config.AuditConfig{Type: "sqlite", DataDir: t.TempDir()})
		if err != nil {
			t.Fatalf("NewAuditLogFromConfig() error = %v", err)
		}
		defer log.Close()
		if _, ok := log.(*SQLiteAuditLog); !ok {
			t.Errorf("got %T, want *SQLiteAuditLog", log)
		}
	})

	t.Run("sqlite without data dir", func(t *testing.T) {
		if _, err := NewAuditLogFromConfig(config.AuditConfig{Type: "sqlite"}); err == nil {
			t.Error("error = nil, want missing data_dir error")
		}
	})

	t.Run("memory", func(t *testing.T) {
		log, err := NewAuditLogFromConfig(config.AuditConfig{Type: "memory"})
		if err != nil {
			t.Fatalf("NewAuditLogFromConfig() error = %v", err)
		}
		if _, ok := log.(*MemoryAuditLog); !ok {
			t.Errorf("got %T, want *MemoryAuditLog", log)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := NewAuditLogFromConfig(config.AuditConfig{Type: "paper"}); err == nil {
			t.Error("error = nil, want unknown type error")
		}
	})
}
