package brand

import "time"

// Audit event levels.
const (
	AuditInfo = "info"
	AuditWarn = "warn"
)

// Event is a recorded registry action: a protection warning, a lock, or an
// unlock. The audit trail is advisory; recording failures are logged and
// never fail the operation that produced the event.
type Event struct {
	ID        string
	Brand     string
	Operation string
	Level     string
	Actor     string
	Reason    string
	CreatedAt time.Time
}

// AuditLog persists registry events.
type AuditLog interface {
	// Record stores one event.
	Record(e Event) error

	// Recent returns up to limit events, newest first.
	Recent(limit int) ([]Event, error)

	// Close releases the underlying storage.
	Close() error
}
