package storage

import (
	"context"
	"time"
)

// DeliveryLogEntry records a single notification send attempt. It is an
// audit trail only; the delivery status document remains the source of
// truth for what has been sent.
type DeliveryLogEntry struct {
	ID         int64     `json:"id"`
	FsaID      string    `json:"fsa_id"`
	Type       string    `json:"type"`
	Address    string    `json:"address"`
	TemplateID string    `json:"template_id"`
	Outcome    string    `json:"outcome"` // "sent" or "failed"
	ErrorMsg   string    `json:"error_msg,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// DeliveryLogStore defines the interface for persisting send-attempt audit
// entries.
type DeliveryLogStore interface {
	// LogDelivery records a send attempt.
	LogDelivery(ctx context.Context, entry DeliveryLogEntry) error
	// ListDeliveries returns the most recent entries for a registration,
	// up to limit. An empty fsaID lists across all registrations.
	ListDeliveries(ctx context.Context, fsaID string, limit int) ([]DeliveryLogEntry, error)
}
