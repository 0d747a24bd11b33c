package storage

import (
	"context"
	"time"

	"github.com/foodregister/regnotify/internal/registration"
)

// RegistrationRecord is a stored registration document together with the
// council routing it was submitted under.
type RegistrationRecord struct {
	FsaID      string            `json:"fsa_id"`
	CouncilURL string            `json:"council_url"`
	Document   registration.View `json:"document"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// RegistrationStore defines the interface for persisting registrations.
type RegistrationStore interface {
	// Save upserts a registration record keyed by its fsa id.
	Save(ctx context.Context, rec RegistrationRecord) error
	// Get returns the registration record for fsaID, or nil if not found.
	Get(ctx context.Context, fsaID string) (*RegistrationRecord, error)
	// Rekey moves a registration from a temporary reference to its
	// permanent one, keeping the stored document in sync.
	Rekey(ctx context.Context, oldID, newID string) error
}
