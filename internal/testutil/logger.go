package testutil

import (
	"fmt"
	"sync"
)

// CaptureLogger records every log call so tests can assert on warnings
// emitted by registry operations. Safe for concurrent use.
type CaptureLogger struct {
	mu      sync.Mutex
	entries []string
}

func NewCaptureLogger() *CaptureLogger {
	return &CaptureLogger{}
}

func (l *CaptureLogger) record(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := level + " " + msg
	for i := 0; i+1 < len(args); i += 2 {
		entry += fmt.Sprintf(" %v=%v", args[i], args[i+1])
	}
	l.entries = append(l.entries, entry)
}

func (l *CaptureLogger) Debug(msg string, args ...any) { l.record("DEBUG", msg, args) }
func (l *CaptureLogger) Info(msg string, args ...any)  { l.record("INFO", msg, args) }
func (l *CaptureLogger) Warn(msg string, args ...any)  { l.record("WARN", msg, args) }
func (l *CaptureLogger) Error(msg string, args ...any) { l.record("ERROR", msg, args) }

// Entries returns a copy of everything logged so far.
func (l *CaptureLogger) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string{}, l.entries...)
}
