package audit

import (
	"sync"

	"brandkit/internal/brand"
)

// MemoryAuditLog is an in-memory implementation of the AuditLog interface,
// useful for testing. Safe for concurrent use.
type MemoryAuditLog struct {
	events []brand.Event
	mu     sync.RWMutex
}

// NewMemoryAuditLog creates a new in-memory audit log.
func NewMemoryAuditLog() *MemoryAuditLog {
	return &MemoryAuditLog{}
}

// Record stores one event.
func (l *MemoryAuditLog) Record(e brand.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return nil
}

// Recent returns up to limit events, newest first.
func (l *MemoryAuditLog) Recent(limit int) ([]brand.Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := len(l.events)
	if limit > n {
		limit = n
	}
	out := make([]brand.Event, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, l.events[i])
	}
	return out, nil
}

// Close is a no-op for the in-memory log.
func (l *MemoryAuditLog) Close() error {
	return nil
}

// Compile-time check that MemoryAuditLog implements brand.AuditLog
var _ brand.AuditLog = (*MemoryAuditLog)(nil)
