// Package sqlite provides a SQLite-backed history driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // register the "sqlite3" driver

	"github.com/papercomputeco/legalqa/pkg/history"
)

const schema = `
CREATE TABLE IF NOT EXISTS history (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	question   TEXT NOT NULL,
	answer     TEXT NOT NULL,
	created_at TEXT NOT NULL
)`

// Driver implements history.Driver on SQLite. AUTOINCREMENT keeps ids from
// being reused after Clear.
type Driver struct {
	db *sql.DB
}

// NewDriver opens (or creates) the database at dbPath and applies the schema.
// dbPath can be a file path or ":memory:".
func NewDriver(dbPath string) (*Driver, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection serializes appends and keeps ":memory:" databases
	// from being split across pooled connections.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Driver{db: db}, nil
}

// Append inserts an entry and returns it with its assigned id.
func (d *Driver) Append(ctx context.Context, question, answer string) (*history.Entry, error) {
	now := history.Now()

	var id int64
	err := d.db.QueryRowContext(ctx,
		`INSERT INTO history (question, answer, created_at) VALUES (?, ?, ?) RETURNING id`,
		question, answer, now.Format(time.RFC3339Nano),
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("appending history entry: %w", err)
	}

	return &history.Entry{ID: id, Question: question, Answer: answer, Timestamp: now}, nil
}

// List returns the last limit entries, oldest first.
func (d *Driver) List(ctx context.Context, limit int) ([]*history.Entry, error) {
	if limit <= 0 {
		return []*history.Entry{}, nil
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, question, answer, created_at FROM (
			SELECT id, question, answer, created_at FROM history ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	entries := []*history.Entry{}
	for rows.Next() {
		var (
			e  history.Entry
			ts string
		)
		if err := rows.Scan(&e.ID, &e.Question, &e.Answer, &ts); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		e.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp of entry %d: %w", e.ID, err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}

	return entries, nil
}

// Clear deletes every entry.
func (d *Driver) Clear(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// Count returns the number of stored entries.
func (d *Driver) Count(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting history: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (d *Driver) Close() error {
	return d.db.Close()
}
