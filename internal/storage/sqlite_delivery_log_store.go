package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteDeliveryLogStore implements DeliveryLogStore backed by a SQLite database.
type SQLiteDeliveryLogStore struct {
	db *sql.DB
}

// NewSQLiteDeliveryLogStore returns a new SQLiteDeliveryLogStore.
func NewSQLiteDeliveryLogStore(db *sql.DB) *SQLiteDeliveryLogStore {
	return &SQLiteDeliveryLogStore{db: db}
}

// LogDelivery records a send attempt.
func (s *SQLiteDeliveryLogStore) LogDelivery(ctx context.Context, entry DeliveryLogEntry) error {
	created := entry.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO delivery_log (fsa_id, type, address, template_id, outcome, error_msg, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.FsaID, entry.Type, entry.Address, entry.TemplateID, entry.Outcome, entry.ErrorMsg, created,
	)
	if err != nil {
		return fmt.Errorf("logging delivery for %q: %w", entry.FsaID, err)
	}
	return nil
}

// ListDeliveries returns the most recent entries, newest first. An empty
// fsaID lists across all registrations.
func (s *SQLiteDeliveryLogStore) ListDeliveries(ctx context.Context, fsaID string, limit int) ([]DeliveryLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, fsa_id, type, address, template_id, outcome, error_msg, created_at
		FROM delivery_log`
	args := []any{}
	if fsaID != "" {
		query += " WHERE fsa_id = ?"
		args = append(args, fsaID)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing deliveries: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	entries := make([]DeliveryLogEntry, 0)
	for rows.Next() {
		var e DeliveryLogEntry
		if err := rows.Scan(&e.ID, &e.FsaID, &e.Type, &e.Address, &e.TemplateID, &e.Outcome, &e.ErrorMsg, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning delivery entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
