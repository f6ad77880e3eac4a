package audit

import (
	"context"
	"database/sql"
	"fmt"

	"brandkit/internal/audit/migrations"
	"brandkit/internal/brand"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteAuditLog persists registry events in a SQLite database.
type SQLiteAuditLog struct {
	db   *sql.DB
	path string
}

// NewSQLiteAuditLog opens (or creates) the audit database at path and
// migrates it to the latest schema. path can be a file path or ":memory:".
func NewSQLiteAuditLog(path string) (*SQLiteAuditLog, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating audit database: %w", err)
	}

	return &SQLiteAuditLog{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
// This is exported for use in tools and tests that need a properly configured SQLite connection.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Record stores one event.
func (l *SQLiteAuditLog) Record(e brand.Event) error {
	_, err := l.db.ExecContext(context.Background(),
		`INSERT INTO events (id, brand, operation, level, actor, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Brand, e.Operation, e.Level, e.Actor, e.Reason, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("recording audit event: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (l *SQLiteAuditLog) Recent(limit int) ([]brand.Event, error) {
	rows, err := l.db.QueryContext(context.Background(),
		`SELECT id, brand, operation, level, actor, reason, created_at
		 FROM events ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing audit events: %w", err)
	}
	defer rows.Close()

	var events []brand.Event
	for rows.Next() {
		var e brand.Event
		if err := rows.Scan(&e.ID, &e.Brand, &e.Operation, &e.Level, &e.Actor, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning audit event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading audit events: %w", err)
	}
	return events, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (l *SQLiteAuditLog) Path() string {
	return l.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (l *SQLiteAuditLog) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(l.db)
}

// Close closes the database connection.
func (l *SQLiteAuditLog) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteAuditLog implements brand.AuditLog
var _ brand.AuditLog = (*SQLiteAuditLog)(nil)
