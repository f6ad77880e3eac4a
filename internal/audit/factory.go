package audit

import (
	"fmt"
	"os"
	"path/filepath"

	"brandkit/internal/brand"
	"brandkit/internal/config"
)

// NewAuditLogFromConfig creates an AuditLog implementation based on the
// audit config type.
func NewAuditLogFromConfig(cfg config.AuditConfig) (brand.AuditLog, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite audit log")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating audit data directory: %w", err)
		}
		return NewSQLiteAuditLog(filepath.Join(cfg.DataDir, "audit.db"))
	case "memory":
		return NewMemoryAuditLog(), nil
	default:
		return nil, fmt.Errorf("unknown audit log type: %s", cfg.Type)
	}
}
