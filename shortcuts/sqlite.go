package shortcuts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS shortcuts (
	user_id  TEXT NOT NULL,
	id       TEXT NOT NULL,
	title    TEXT NOT NULL,
	url      TEXT NOT NULL,
	kind     TEXT NOT NULL DEFAULT '',
	added_at INTEGER NOT NULL,
	PRIMARY KEY (user_id, id)
);`

// SQLitePersistence stores shortcuts in a SQLite database.
type SQLitePersistence struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLitePersistence, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening shortcut database: %w", err)
	}
	// One writer keeps sqlite from reporting SQLITE_BUSY under the store's queue.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating shortcut schema: %w", err)
	}
	if err := addKindColumn(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLitePersistence{db: db}, nil
}

// addKindColumn upgrades databases created before shortcuts had a kind.
func addKindColumn(db *sql.DB) error {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('shortcuts') WHERE name = 'kind'`).Scan(&n)
	if err != nil {
		return fmt.Errorf("inspecting shortcut schema: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := db.Exec(`ALTER TABLE shortcuts ADD COLUMN kind TEXT NOT NULL DEFAULT ''`); err != nil {
		return fmt.Errorf("adding shortcut kind column: %w", err)
	}
	return nil
}

// Close closes the database.
func (p *SQLitePersistence) Close() error {
	return p.db.Close()
}

// LoadShortcuts returns the user's shortcuts in insertion order.
func (p *SQLitePersistence) LoadShortcuts(ctx context.Context, userID string) ([]Shortcut, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, title, url, kind, added_at FROM shortcuts WHERE user_id = ? ORDER BY added_at, rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying shortcuts: %w", err)
	}
	defer rows.Close()

	var out []Shortcut
	for rows.Next() {
		var s Shortcut
		var added int64
		if err := rows.Scan(&s.ID, &s.Title, &s.URL, &s.Kind, &added); err != nil {
			return nil, fmt.Errorf("scanning shortcut: %w", err)
		}
		s.AddedAt = time.UnixMilli(added)
		out = append(out, s)
	}
	return out, rows.Err()
}

// SaveShortcut inserts or replaces s.
func (p *SQLitePersistence) SaveShortcut(ctx context.Context, userID string, s Shortcut) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO shortcuts (user_id, id, title, url, kind, added_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, id) DO UPDATE SET title = excluded.title, url = excluded.url, kind = excluded.kind`,
		userID, s.ID, s.Title, s.URL, s.Kind, s.AddedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("saving shortcut %s: %w", s.ID, err)
	}
	return nil
}

// DeleteShortcut removes the shortcut with the given ID.
func (p *SQLitePersistence) DeleteShortcut(ctx context.Context, userID, id string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM shortcuts WHERE user_id = ? AND id = ?`, userID, id); err != nil {
		return fmt.Errorf("deleting shortcut %s: %w", id, err)
	}
	return nil
}

// RenameShortcut retitles the shortcut with the given ID.
func (p *SQLitePersistence) RenameShortcut(ctx context.Context, userID, id, title string) error {
	if _, err := p.db.ExecContext(ctx, `UPDATE shortcuts SET title = ? WHERE user_id = ? AND id = ?`, title, userID, id); err != nil {
		return fmt.Errorf("renaming shortcut %s: %w", id, err)
	}
	return nil
}
