package storage

import (
	"context"

	"github.com/foodregister/regnotify/internal/registration"
)

// StatusStore defines the interface for persisting notification delivery
// status documents. It satisfies the dispatch engine's store contract and
// adds the pending listing the retry sweeper needs.
type StatusStore interface {
	// Load returns the status for fsaID, or a zero-value Status (empty
	// notifications) when none exists.
	Load(ctx context.Context, fsaID string) (registration.Status, error)
	// Save persists the status for fsaID (upsert).
	Save(ctx context.Context, fsaID string, status registration.Status) error
	// ListPending returns up to limit fsa ids whose status still has
	// unsent notifications, oldest first.
	ListPending(ctx context.Context, limit int) ([]string, error)
}
