package testutil

import (
	"database/sql"
	"os"
	"testing"

	_ "modernc.org/sqlite"
)

// Task fixtures in the backend's list format
var (
	OpenTask = FakeTask{
		ID:       "3f2a6c1e-9b7d-4e21-8a5f-0c1d2e3f4a5b",
		Title:    "Buy milk",
		Priority: 1,
	}
	DoneTask = FakeTask{
		ID:        "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		Title:     "Pay rent",
		Due:       "2025-01-31",
		Priority:  3,
		Completed: true,
	}
)

// SampleTasks returns fresh copies of the task fixtures
func SampleTasks() []FakeTask {
	return []FakeTask{OpenTask, DoneTask}
}

// WriteSQLiteBytes writes an exported database image to disk and opens it
// read-only. The handle is closed at test cleanup.
func WriteSQLiteBytes(t *testing.T, data []byte) *sql.DB {
	t.Helper()
	path := TempPath(t, "export.db")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("Failed to write database: %v", err)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// CountRows returns the row count of table
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}
