package vault

import (
	"fmt"
	"io"
	"sync"

	"brandkit/internal/brand"
)

// MemoryVault is an in-memory implementation of the ArchiveVault interface.
// It stores all archives in memory, making it useful for testing.
// This implementation is safe for concurrent use.
type MemoryVault struct {
	name     string
	archives map[string][]byte // archive name -> bytes
	mu       sync.RWMutex
}

// NewMemoryVault creates a new in-memory vault with the given name.
func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{
		name:     name,
		archives: make(map[string][]byte),
	}
}

// PutArchive stores an archive and returns a memory URI for it. An archive
// name may only be stored once.
func (m *MemoryVault) PutArchive(name string, r io.Reader, size int64) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read archive: %w", err)
	}

	if int64(len(data)) != size {
		return "", fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.archives[name]; ok {
		return "", fmt.Errorf("archive already exists: %s", name)
	}
	m.archives[name] = data
	return "memory://" + m.name + "/" + name, nil
}

// Archive returns a stored archive's bytes. Used by tests.
func (m *MemoryVault) Archive(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.archives[name]
	return data, ok
}

// ValidateSetup always succeeds for in-memory vault.
func (m *MemoryVault) ValidateSetup() error {
	return nil
}

// Compile-time check that MemoryVault implements brand.ArchiveVault
var _ brand.ArchiveVault = (*MemoryVault)(nil)
