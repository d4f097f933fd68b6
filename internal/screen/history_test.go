package screen

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func newHistoryDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE command_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			screen_name TEXT NOT NULL,
			device_uuid TEXT NOT NULL,
			heat REAL NOT NULL,
			position INTEGER NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		)
	`)
	if err != nil {
		t.Fatalf("creating schema: %v", err)
	}
	return db
}

func TestHistoryRecordAndList(t *testing.T) {
	repo := NewSQLiteHistoryRepository(newHistoryDB(t))
	ctx := context.Background()

	entries := []HistoryEntry{
		{ScreenName: "west", DeviceUUID: testUUID, Heat: 25, Position: 0},
		{ScreenName: "west", DeviceUUID: testUUID, Heat: 10, Position: 50},
		{ScreenName: "south", DeviceUUID: testUUID, Heat: 5, Position: 75},
	}
	for _, e := range entries {
		if err := repo.RecordCommand(ctx, e); err != nil {
			t.Fatalf("RecordCommand() error = %v", err)
		}
	}

	got, err := repo.ListByScreen(ctx, "west", 0)
	if err != nil {
		t.Fatalf("ListByScreen() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries for west, got %d", len(got))
	}

	// Newest first.
	if got[0].Position != 50 || got[1].Position != 0 {
		t.Errorf("order = %d, %d; want 50, 0", got[0].Position, got[1].Position)
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("created_at not parsed")
	}
}

func TestHistoryLatestByScreen(t *testing.T) {
	repo := NewSQLiteHistoryRepository(newHistoryDB(t))
	ctx := context.Background()

	latest, err := repo.LatestByScreen(ctx, "west")
	if err != nil {
		t.Fatalf("LatestByScreen() error = %v", err)
	}
	if latest != nil {
		t.Errorf("expected nil for never-driven screen, got %+v", latest)
	}

	if err := repo.RecordCommand(ctx, HistoryEntry{
		ScreenName: "west", DeviceUUID: testUUID, Heat: 25, Position: 0,
	}); err != nil {
		t.Fatal(err)
	}

	latest, err = repo.LatestByScreen(ctx, "west")
	if err != nil {
		t.Fatalf("LatestByScreen() error = %v", err)
	}
	if latest == nil || latest.Position != 0 {
		t.Errorf("latest = %+v, want position 0", latest)
	}
}

func TestHistoryValidation(t *testing.T) {
	repo := NewSQLiteHistoryRepository(newHistoryDB(t))
	ctx := context.Background()

	if err := repo.RecordCommand(ctx, HistoryEntry{}); err == nil {
		t.Error("RecordCommand without screen name should fail")
	}
	if _, err := repo.ListByScreen(ctx, "", 10); err == nil {
		t.Error("ListByScreen without screen name should fail")
	}
}

func TestHistoryPrune(t *testing.T) {
	db := newHistoryDB(t)
	repo := NewSQLiteHistoryRepository(db)
	ctx := context.Background()

	// One old entry, one fresh.
	_, err := db.Exec(`INSERT INTO command_history
		(screen_name, device_uuid, heat, position, created_at)
		VALUES ('west', ?, 25, 0, '2020-01-01T00:00:00Z')`, testUUID)
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.RecordCommand(ctx, HistoryEntry{
		ScreenName: "west", DeviceUUID: testUUID, Heat: 10, Position: 50,
	}); err != nil {
		t.Fatal(err)
	}

	removed, err := repo.Prune(ctx, 90)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	got, err := repo.ListByScreen(ctx, "west", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Position != 50 {
		t.Errorf("remaining = %+v, want only the fresh entry", got)
	}

	// Zero retention disables pruning.
	if removed, err := repo.Prune(ctx, 0); err != nil || removed != 0 {
		t.Errorf("Prune(0) = %d, %v; want 0, nil", removed, err)
	}
}
