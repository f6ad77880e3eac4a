package brand

import (
	"fmt"
	"time"
)

// ProtectionLevel gates mutation of a brand.
type ProtectionLevel string

const (
	// ProtectionNone places no restriction on mutation.
	ProtectionNone ProtectionLevel = "none"
	// ProtectionWarn allows mutation but records a warning event.
	ProtectionWarn ProtectionLevel = "warn"
	// ProtectionStrict blocks mutation unless the caller forces past the
	// guard.
	ProtectionStrict ProtectionLevel = "strict"
)

// Valid reports whether l is a recognized protection level.
func (l ProtectionLevel) Valid() bool {
	switch l {
	case ProtectionNone, ProtectionWarn, ProtectionStrict:
		return true
	}
	return false
}

// Protection is a brand's lock state, stored in the top level of its
// document.
type Protection struct {
	Protected bool
	Level     ProtectionLevel
	By        string
	At        time.Time
	Reason    string
}

// Document keys for protection fields.
const (
	keyIsProtected      = "is_protected"
	keyProtectionLevel  = "protection_level"
	keyProtectedBy      = "protected_by"
	keyProtectedAt      = "protected_at"
	keyProtectionReason = "protection_reason"
)

var protectionKeys = []string{
	keyIsProtected, keyProtectionLevel, keyProtectedBy, keyProtectedAt, keyProtectionReason,
}

// protectionFromDocument reads the protection record out of a raw document.
// Absent or malformed fields degrade to the unprotected defaults.
func protectionFromDocument(doc Document) Protection {
	p := Protection{Level: ProtectionNone}
	if v, ok := doc[keyIsProtected].(bool); ok {
		p.Protected = v
	}
	if v, ok := doc[keyProtectionLevel].(string); ok && ProtectionLevel(v).Valid() {
		p.Level = ProtectionLevel(v)
	}
	if v, ok := doc[keyProtectedBy].(string); ok {
		p.By = v
	}
	if v, ok := doc[keyProtectionReason].(string); ok {
		p.Reason = v
	}
	if v, ok := doc[keyProtectedAt].(string); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			p.At = t
		}
	}
	return p
}

// stripProtection removes all protection fields from a document. Used when
// creating a brand as a copy: a new brand never inherits its source's lock.
func stripProtection(doc Document) {
	for _, key := range protectionKeys {
		delete(doc, key)
	}
}

// checkProtection evaluates the guard for a mutating operation. Callers that
// force an operation skip this call entirely; the guard itself has no
// override path. A protection state that cannot be read fails closed.
func (r *Registry) checkProtection(name, operation string) error {
	doc, err := r.loadDocument(name)
	if err != nil {
		if isNotFound(err) {
			// Nothing to protect.
			return nil
		}
		r.logger.Error("protection check failed", "brand", name, "operation", operation, "error", err)
		return fmt.Errorf("brand %q: protection state unverifiable, operation blocked: %w", name, ErrProtected)
	}

	p := protectionFromDocument(doc)
	if !p.Protected {
		return nil
	}

	reason := p.Reason
	if reason == "" {
		reason = "brand is marked as protected"
	}

	switch p.Level {
	case ProtectionStrict:
		return fmt.Errorf("brand %q: cannot %s: %s (protected by %s): %w",
			name, operation, reason, orUnknown(p.By), ErrProtected)
	case ProtectionWarn:
		r.logger.Warn("mutating protected brand", "brand", name, "operation", operation,
			"protected_by", p.By, "reason", reason)
		r.recordEvent(Event{
			Brand:     name,
			Operation: operation,
			Level:     AuditWarn,
			Actor:     p.By,
			Reason:    reason,
		})
	}
	return nil
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// LockResult reports a protection change.
type LockResult struct {
	BrandName string
	Level     ProtectionLevel
	By        string
	At        time.Time
	Reason    string
}

// Lock protects a brand at the given level. Lock is an administrative
// override: it updates the protection fields through the normal update path
// with force semantics, so changing a lock is never blocked by the lock
// being changed. The actor identity is required and recorded in the audit
// trail.
func (r *Registry) Lock(name string, level ProtectionLevel, reason, by string) (*LockResult, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("brand %q: protection level must be none, warn, or strict: %w", name, ErrInvalidArgument)
	}
	if by == "" {
		return nil, fmt.Errorf("brand %q: lock requires an actor identity: %w", name, ErrInvalidArgument)
	}

	now := r.clock.Now()
	if reason == "" {
		reason = fmt.Sprintf("brand locked at %s level", level)
	}
	updates := Document{
		keyIsProtected:      level != ProtectionNone,
		keyProtectionLevel:  string(level),
		keyProtectedBy:      by,
		keyProtectedAt:      now.Format(time.RFC3339),
		keyProtectionReason: reason,
	}

	if _, err := r.Update(name, updates, UpdateOptions{CreateBackup: true, Force: true}); err != nil {
		return nil, err
	}

	r.recordEvent(Event{Brand: name, Operation: "lock", Level: AuditInfo, Actor: by, Reason: reason})
	r.logger.Info("brand locked", "brand", name, "level", level, "by", by)
	return &LockResult{BrandName: name, Level: level, By: by, At: now, Reason: reason}, nil
}

// Unlock removes a brand's protection. Like Lock, it always forces past the
// guard and records the acting identity.
func (r *Registry) Unlock(name, by string) (*LockResult, error) {
	if by == "" {
		return nil, fmt.Errorf("brand %q: unlock requires an actor identity: %w", name, ErrInvalidArgument)
	}

	updates := Document{
		keyIsProtected:      false,
		keyProtectionLevel:  string(ProtectionNone),
		keyProtectedBy:      "",
		keyProtectedAt:      "",
		keyProtectionReason: "",
	}

	if _, err := r.Update(name, updates, UpdateOptions{CreateBackup: true, Force: true}); err != nil {
		return nil, err
	}

	r.recordEvent(Event{Brand: name, Operation: "unlock", Level: AuditInfo, Actor: by})
	r.logger.Info("brand unlocked", "brand", name, "by", by)
	return &LockResult{BrandName: name, Level: ProtectionNone, By: by, At: r.clock.Now()}, nil
}

// ProtectionStatus describes a brand's lock state and what it permits.
type ProtectionStatus struct {
	BrandName  string
	Protection Protection
	CanUpdate  bool
	CanDelete  bool
}

// CheckProtection returns the protection status of a brand.
func (r *Registry) CheckProtection(name string) (*ProtectionStatus, error) {
	doc, err := r.loadDocument(name)
	if err != nil {
		return nil, err
	}
	p := protectionFromDocument(doc)
	unrestricted := !p.Protected || p.Level != ProtectionStrict
	return &ProtectionStatus{
		BrandName:  name,
		Protection: p,
		CanUpdate:  unrestricted,
		CanDelete:  unrestricted,
	}, nil
}
