package sqlite

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite database connection with thread-safe access.
type DB struct {
	conn *sql.DB
	mu   sync.RWMutex
}

// New creates and initializes a new SQLite database connection.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// migrate creates the reports table if it doesn't exist, then applies
// additive column migrations. Columns introduced after the first release
// are added with fixed defaults and existing rows are never rewritten,
// so the store stays operable across schema versions.
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		image_path TEXT NOT NULL,
		summary TEXT,
		severity TEXT,
		latitude REAL,
		longitude REAL,
		created_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);
	`

	if _, err := db.conn.Exec(schema); err != nil {
		return err
	}

	migrations := []struct {
		column string
		ddl    string
	}{
		{"kind", `ALTER TABLE reports ADD COLUMN kind TEXT DEFAULT 'image'`},
		{"feedback", `ALTER TABLE reports ADD COLUMN feedback TEXT DEFAULT NULL`},
		{"department", `ALTER TABLE reports ADD COLUMN department TEXT DEFAULT 'General'`},
	}

	for _, m := range migrations {
		exists, err := db.hasColumn("reports", m.column)
		if err != nil {
			return fmt.Errorf("failed to inspect column %s: %w", m.column, err)
		}
		if exists {
			continue
		}
		if _, err := db.conn.Exec(m.ddl); err != nil {
			return fmt.Errorf("failed to add column %s: %w", m.column, err)
		}
	}

	return nil
}

// hasColumn checks whether a table already carries the given column.
func (db *DB) hasColumn(table, column string) (bool, error) {
	rows, err := db.conn.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection for use by repositories.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Lock acquires a write lock.
func (db *DB) Lock() {
	db.mu.Lock()
}

// Unlock releases the write lock.
func (db *DB) Unlock() {
	db.mu.Unlock()
}

// RLock acquires a read lock.
func (db *DB) RLock() {
	db.mu.RLock()
}

// RUnlock releases the read lock.
func (db *DB) RUnlock() {
	db.mu.RUnlock()
}
