package export

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/iksnae/taskchat/internal"
	_ "modernc.org/sqlite"
)

// SQLiteExporter writes the transcript as a standalone SQLite database.
// The database is built in a temporary file and then streamed to w.
type SQLiteExporter struct{}

const sqliteSchema = `
CREATE TABLE transcript (
	id          TEXT PRIMARY KEY,
	base_url    TEXT,
	exported_at TEXT NOT NULL
);
CREATE TABLE messages (
	seq       INTEGER PRIMARY KEY,
	id        TEXT NOT NULL,
	role      TEXT NOT NULL,
	content   TEXT NOT NULL,
	timestamp TEXT
);
CREATE TABLE tasks (
	position  INTEGER PRIMARY KEY,
	title     TEXT NOT NULL,
	completed INTEGER NOT NULL,
	raw_line  TEXT NOT NULL,
	ref       TEXT,
	due       TEXT,
	priority  INTEGER
);`

// Export exports a transcript to a SQLite database image
func (e *SQLiteExporter) Export(transcript *internal.Transcript, w io.Writer) error {
	dir, err := os.MkdirTemp("", "taskchat-export-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	path := filepath.Join(dir, "transcript.db")
	if err := writeDatabase(path, transcript); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to copy database: %w", err)
	}
	return nil
}

func writeDatabase(path string, transcript *internal.Transcript) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		"INSERT INTO transcript (id, base_url, exported_at) VALUES (?, ?, ?)",
		transcript.ID, transcript.BaseURL, transcript.ExportedAt.Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("failed to insert transcript: %w", err)
	}

	for i, msg := range transcript.Messages {
		var ts interface{}
		if !msg.Timestamp.IsZero() {
			ts = msg.Timestamp.Format(time.RFC3339Nano)
		}
		if _, err := tx.Exec(
			"INSERT INTO messages (seq, id, role, content, timestamp) VALUES (?, ?, ?, ?, ?)",
			i+1, msg.ID, string(msg.Role), msg.Content, ts,
		); err != nil {
			return fmt.Errorf("failed to insert message %s: %w", msg.ID, err)
		}
	}

	for _, task := range transcript.Tasks {
		if _, err := tx.Exec(
			"INSERT INTO tasks (position, title, completed, raw_line, ref, due, priority) VALUES (?, ?, ?, ?, ?, ?, ?)",
			task.ID, task.Title, task.Completed, task.RawLine, task.Ref, task.Due, task.Priority,
		); err != nil {
			return fmt.Errorf("failed to insert task %d: %w", task.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Extension returns the file extension for this format
func (e *SQLiteExporter) Extension() string {
	return "db"
}
