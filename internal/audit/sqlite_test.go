package audit

import (
	"path/filepath"
	"testing"
	"time"

	"brandkit/internal/brand"
)

func newTestLog(t *testing.T) *SQLiteAuditLog {
	t.Helper()
	log, err := NewSQLiteAuditLog(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("NewSQLiteAuditLog() error = %v", err)
	}
	t.Cleanup(func() { log.Close() })
	return log
}

func TestSQLiteAuditLog_RecordAndRecent(t *testing.T) {
	log := newTestLog(t)

	base := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	events := []brand.Event{
		{ID: "id-1", Brand: "acme", Operation: "lock", Level: brand.AuditInfo, Actor: "alice", Reason: "freeze", CreatedAt: base},
		{ID: "id-2", Brand: "acme", Operation: "update", Level: brand.AuditWarn, Actor: "bob", CreatedAt: base.Add(time.Minute)},
		{ID: "id-3", Brand: "other", Operation: "unlock", Level: brand.AuditInfo, Actor: "alice", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range events {
		if err := log.Record(e); err != nil {
			t.Fatalf("Record(%s) error = %v", e.ID, err)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		got, err := log.Recent(10)
		if err != nil {
			t.Fatalf("Recent() error = %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("got %d events, want 3", len(got))
		}
		for i, wantID := range []string{"id-3", "id-2", "id-1"} {
			if got[i].ID != wantID {
				t.Errorf("got[%d].ID = %q, want %q", i, got[i].ID, wantID)
			}
		}
	})

	t.Run("roundtrips fields", func(t *testing.T) {
		got, err := log.Recent(10)
		if err != nil {
			t.Fatalf("Recent() error = %v", err)
		}
		e := got[2]
		if e.Brand != "acme" || e.Operation != "lock" || e.Level != brand.AuditInfo || e.Actor != "alice" || e.Reason != "freeze" {
			t.Errorf("event = %+v, want the recorded lock event", e)
		}
		if !e.CreatedAt.Equal(base) {
			t.Errorf("CreatedAt = %v, want %v", e.CreatedAt, base)
		}
	})

	t.Run("honors limit", func(t *testing.T) {
		got, err := log.Recent(2)
		if err != nil {
			t.Fatalf("Recent() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d events, want 2", len(got))
		}
		if got[0].ID != "id-3" || got[1].ID != "id-2" {
			t.Errorf("got = %v, want the two newest events", got)
		}
	})

	t.Run("ties broken by id", func(t *testing.T) {
		if err := log.Record(brand.Event{ID: "id-9", Brand: "acme", Operation: "lock", Level: brand.AuditInfo, CreatedAt: base.Add(2 * time.Minute)}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		got, err := log.Recent(2)
		if err != nil {
			t.Fatalf("Recent() error = %v", err)
		}
		if got[0].ID != "id-9" || got[1].ID != "id-3" {
			t.Errorf("got = [%s %s], want [id-9 id-3]", got[0].ID, got[1].ID)
		}
	})
}

func TestSQLiteAuditLog_CheckMigrations(t *testing.T) {
	log := newTestLog(t)
	if err := log.CheckMigrations(); err != nil {
		t.Errorf("CheckMigrations() error = %v", err)
	}
}

func TestSQLiteAuditLog_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")

	first, err := NewSQLiteAuditLog(path)
	if err != nil {
		t.Fatalf("NewSQLiteAuditLog() error = %v", err)
	}
	e := brand.Event{ID: "id-1", Brand: "acme", Operation: "lock", Level: brand.AuditInfo, CreatedAt: time.Now().UTC()}
	if err := first.Record(e); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	second, err := NewSQLiteAuditLog(path)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer second.Close()

	got, err := second.Recent(10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "id-1" {
		t.Errorf("got = %+v, want the event recorded before reopen", got)
	}
}

func TestMemoryAuditLog(t *testing.T) {
	log := NewMemoryAuditLog()

	for _, id := range []string{"id-1", "id-2", "id-3"} {
		if err := log.Record(brand.Event{ID: id, Brand: "acme", Operation: "lock", Level: brand.AuditInfo}); err != nil {
			t.Fatalf("Record(%s) error = %v", id, err)
		}
	}

	got, err := log.Recent(2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].ID != "id-3" || got[1].ID != "id-2" {
		t.Errorf("got = [%s %s], want newest first [id-3 id-2]", got[0].ID, got[1].ID)
	}
}
