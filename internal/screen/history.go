package screen

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// HistoryEntry is one recorded position command.
type HistoryEntry struct {
	ID         int64     `json:"id"`
	ScreenName string    `json:"screen"`
	DeviceUUID string    `json:"device_uuid"`
	Heat       float64   `json:"heat"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
}

// HistoryRecorder persists dispatched commands. The scheduler depends on
// this interface; SQLiteHistoryRepository implements it.
type HistoryRecorder interface {
	RecordCommand(ctx context.Context, entry HistoryEntry) error
}

// SQLiteHistoryRepository stores command history in the SQLite journal.
type SQLiteHistoryRepository struct {
	db *sql.DB
}

// NewSQLiteHistoryRepository creates a command history repository.
//
// Parameters:
//   - db: Open SQLite connection used for queries
func NewSQLiteHistoryRepository(db *sql.DB) *SQLiteHistoryRepository {
	return &SQLiteHistoryRepository{db: db}
}

// RecordCommand inserts a command history entry.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - entry: Command to persist (ID and CreatedAt are assigned by the database)
//
// Returns:
//   - error: nil on success, otherwise the underlying database error
func (r *SQLiteHistoryRepository) RecordCommand(ctx context.Context, entry HistoryEntry) error {
	if entry.ScreenName == "" {
		return fmt.Errorf("screen name is required")
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO command_history (screen_name, device_uuid, heat, position) VALUES (?, ?, ?, ?)",
		entry.ScreenName,
		entry.DeviceUUID,
		entry.Heat,
		entry.Position,
	)
	if err != nil {
		return fmt.Errorf("inserting command history: %w", err)
	}

	return nil
}

// ListByScreen returns recent commands for one screen, newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - screenName: Screen to query
//   - limit: Maximum entries to return (default 50, max 200)
//
// Returns:
//   - []HistoryEntry: Entries ordered by created_at DESC
//   - error: nil on success, otherwise the underlying query error
func (r *SQLiteHistoryRepository) ListByScreen(ctx context.Context, screenName string, limit int) ([]HistoryEntry, error) {
	if screenName == "" {
		return nil, fmt.Errorf("screen name is required")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, screen_name, device_uuid, heat, position, created_at
		 FROM command_history
		 WHERE screen_name = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		screenName,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying command history: %w", err)
	}
	defer rows.Close()

	entries := make([]HistoryEntry, 0, limit)
	for rows.Next() {
		var entry HistoryEntry
		var createdAt string

		if err := rows.Scan(&entry.ID, &entry.ScreenName, &entry.DeviceUUID,
			&entry.Heat, &entry.Position, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning command history: %w", err)
		}

		entry.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // Format is controlled
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating command history: %w", err)
	}
	return entries, nil
}

// LatestByScreen returns the most recent command for one screen, or nil
// when the screen has never been driven. Used at startup to seed the
// last known position.
func (r *SQLiteHistoryRepository) LatestByScreen(ctx context.Context, screenName string) (*HistoryEntry, error) {
	entries, err := r.ListByScreen(ctx, screenName, 1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// Prune removes entries older than the retention window.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - retentionDays: Entries older than this many days are removed
//
// Returns:
//   - int64: Number of rows removed
//   - error: nil on success, otherwise the underlying database error
func (r *SQLiteHistoryRepository) Prune(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM command_history WHERE created_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("pruning command history: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned rows: %w", err)
	}
	return removed, nil
}
