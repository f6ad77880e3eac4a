package testutil

import (
	"brandkit/internal/brand"
	"brandkit/internal/vault"
)

// NewTestVault creates a new in-memory archive vault for testing.
func NewTestVault() brand.ArchiveVault {
	return vault.NewMemoryVault("test-vault")
}
