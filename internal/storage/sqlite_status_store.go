package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/foodregister/regnotify/internal/registration"
)

// SQLiteStatusStore implements StatusStore backed by a SQLite database.
// The notification records are stored as a JSON column; a derived pending
// flag column lets the sweeper find retryable registrations without
// parsing every row.
type SQLiteStatusStore struct {
	db *sql.DB
}

// NewSQLiteStatusStore returns a new SQLiteStatusStore.
func NewSQLiteStatusStore(db *sql.DB) *SQLiteStatusStore {
	return &SQLiteStatusStore{db: db}
}

// Load returns the status for fsaID, or a zero-value Status when none exists.
func (s *SQLiteStatusStore) Load(ctx context.Context, fsaID string) (registration.Status, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT notifications FROM notification_status WHERE fsa_id = ?", fsaID)

	var raw string
	err := row.Scan(&raw)
	if err == sql.ErrNoRows {
		return registration.Status{}, nil
	}
	if err != nil {
		return registration.Status{}, fmt.Errorf("loading status %q: %w", fsaID, err)
	}

	var status registration.Status
	if err := json.Unmarshal([]byte(raw), &status.Notifications); err != nil {
		return registration.Status{}, fmt.Errorf("parsing status %q: %w", fsaID, err)
	}
	return status, nil
}

// Save persists the status for fsaID (upsert).
func (s *SQLiteStatusStore) Save(ctx context.Context, fsaID string, status registration.Status) error {
	records := status.Notifications
	if records == nil {
		records = []registration.NotificationRecord{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshaling status %q: %w", fsaID, err)
	}

	pending := 0
	if status.Pending() {
		pending = 1
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO notification_status (fsa_id, notifications, pending, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(fsa_id) DO UPDATE SET
			notifications = excluded.notifications,
			pending = excluded.pending,
			updated_at = excluded.updated_at`,
		fsaID, string(raw), pending, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving status %q: %w", fsaID, err)
	}
	return nil
}

// ListPending returns up to limit fsa ids with unsent notifications,
// oldest update first.
func (s *SQLiteStatusStore) ListPending(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT fsa_id FROM notification_status
		WHERE pending = 1
		ORDER BY updated_at ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing pending statuses: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning pending status: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
