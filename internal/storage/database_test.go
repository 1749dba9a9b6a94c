package storage

import (
	"database/sql"
	"path/filepath"
	"sort"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func TestMigrateIdempotent(t *testing.T) {
	db := newTestDB(t)

	// Running migrations again must not fail.
	if err := Migrate(db); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

func TestTimeFormatSortsChronologically(t *testing.T) {
	// created_at is a TEXT column ordered lexicographically, so the
	// layout must produce fixed-width fractions. A trimmed fraction
	// like ".12345Z" would sort after ".123456789Z".
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	times := []time.Time{
		base.Add(123450000),
		base.Add(123456789),
		base.Add(time.Second),
	}

	formatted := make([]string, len(times))
	for i, ts := range times {
		formatted[i] = ts.Format(timeFormat)
	}
	if !sort.StringsAreSorted(formatted) {
		t.Errorf("formatted timestamps are not in chronological order: %v", formatted)
	}

	for i, s := range formatted {
		parsed, err := time.Parse(timeFormat, s)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", s, err)
		}
		if !parsed.Equal(times[i]) {
			t.Errorf("timestamp did not round-trip: %v != %v", parsed, times[i])
		}
	}
}

func TestForeignKeysEnabled(t *testing.T) {
	db := newTestDB(t)

	var enabled int
	if err := db.QueryRow("PRAGMA foreign_keys;").Scan(&enabled); err != nil {
		t.Fatalf("query pragma: %v", err)
	}
	if enabled != 1 {
		t.Error("foreign keys should be enabled")
	}
}
