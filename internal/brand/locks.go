package brand

import "sync"

// namedLocks serializes mutating operations per brand name within a single
// process. Lock entries are never removed; the registry holds one mutex per
// brand name ever mutated, which is bounded by the number of brands.
type namedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newNamedLocks() *namedLocks {
	return &namedLocks{locks: make(map[string]*sync.Mutex)}
}

// Acquire locks the mutex for name and returns the release function.
func (l *namedLocks) Acquire(name string) func() {
	l.mu.Lock()
	m, ok := l.locks[name]
	if !ok {
		m = &sync.Mutex{}
		l.locks[name] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
