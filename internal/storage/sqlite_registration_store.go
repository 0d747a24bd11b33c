package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SQLiteRegistrationStore implements RegistrationStore backed by a SQLite
// database. The registration document is stored as a JSON column; the
// council URL is kept in its own column so dispatch can re-resolve contact
// configuration without parsing the document.
type SQLiteRegistrationStore struct {
	db *sql.DB
}

// NewSQLiteRegistrationStore returns a new SQLiteRegistrationStore.
func NewSQLiteRegistrationStore(db *sql.DB) *SQLiteRegistrationStore {
	return &SQLiteRegistrationStore{db: db}
}

// Save upserts a registration record.
func (s *SQLiteRegistrationStore) Save(ctx context.Context, rec RegistrationRecord) error {
	if rec.FsaID == "" {
		return fmt.Errorf("registration fsa id is required")
	}

	doc, err := json.Marshal(rec.Document)
	if err != nil {
		return fmt.Errorf("marshaling registration %q: %w", rec.FsaID, err)
	}

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO registrations (fsa_id, council_url, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(fsa_id) DO UPDATE SET
			council_url = excluded.council_url,
			document = excluded.document,
			updated_at = excluded.updated_at`,
		rec.FsaID, rec.CouncilURL, string(doc), rec.CreatedAt, now,
	)
	if err != nil {
		return fmt.Errorf("saving registration %q: %w", rec.FsaID, err)
	}
	return nil
}

// Get returns the registration record for fsaID, or nil if not found.
func (s *SQLiteRegistrationStore) Get(ctx context.Context, fsaID string) (*RegistrationRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT fsa_id, council_url, document, created_at, updated_at
		FROM registrations WHERE fsa_id = ?`, fsaID)

	rec := &RegistrationRecord{}
	var doc string
	err := row.Scan(&rec.FsaID, &rec.CouncilURL, &doc, &rec.CreatedAt, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting registration %q: %w", fsaID, err)
	}

	if err := json.Unmarshal([]byte(doc), &rec.Document); err != nil {
		return nil, fmt.Errorf("parsing registration %q: %w", fsaID, err)
	}
	return rec, nil
}

// Rekey moves a registration from a temporary reference to its permanent
// one. The stored document's reference is rewritten to match. The
// registration's delivery status row, if any, moves with it.
func (s *SQLiteRegistrationStore) Rekey(ctx context.Context, oldID, newID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rekey %q -> %q: %w", oldID, newID, err)
	}
	defer tx.Rollback() //nolint:errcheck

	rec, err := s.getInTx(ctx, tx, oldID)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("registration %q not found", oldID)
	}

	rec.Document.FsaID = newID
	doc, err := json.Marshal(rec.Document)
	if err != nil {
		return fmt.Errorf("marshaling registration %q: %w", newID, err)
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		UPDATE registrations SET fsa_id = ?, document = ?, updated_at = ? WHERE fsa_id = ?`,
		newID, string(doc), now, oldID,
	); err != nil {
		return fmt.Errorf("rekeying registration %q -> %q: %w", oldID, newID, err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE notification_status SET fsa_id = ?, updated_at = ? WHERE fsa_id = ?`,
		newID, now, oldID,
	); err != nil {
		return fmt.Errorf("rekeying status %q -> %q: %w", oldID, newID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rekey %q -> %q: %w", oldID, newID, err)
	}
	return nil
}

func (s *SQLiteRegistrationStore) getInTx(ctx context.Context, tx *sql.Tx, fsaID string) (*RegistrationRecord, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT fsa_id, council_url, document, created_at, updated_at
		FROM registrations WHERE fsa_id = ?`, fsaID)

	rec := &RegistrationRecord{}
	var doc string
	err := row.Scan(&rec.FsaID, &rec.CouncilURL, &doc, &rec.CreatedAt, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting registration %q: %w", fsaID, err)
	}
	if err := json.Unmarshal([]byte(doc), &rec.Document); err != nil {
		return nil, fmt.Errorf("parsing registration %q: %w", fsaID, err)
	}
	return rec, nil
}
