package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/foodregister/regnotify/internal/dispatch"
	"github.com/foodregister/regnotify/internal/eventbus"
	"github.com/foodregister/regnotify/internal/storage"
)

// deliveryWriteTimeout bounds the audit write so a stalled database cannot
// hold an event bus worker forever.
const deliveryWriteTimeout = 5 * time.Second

// NewDeliveryRecorder returns an event bus listener that turns send-attempt
// events into delivery audit rows. The audit trail is best effort; the
// delivery status document remains the source of truth.
func NewDeliveryRecorder(store storage.DeliveryLogStore, logger *slog.Logger) eventbus.Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return func(e eventbus.Event) {
		if e.Type != dispatch.EventSendAttempted {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), deliveryWriteTimeout)
		defer cancel()

		entry := storage.DeliveryLogEntry{
			FsaID:      e.Payload["fsa_id"],
			Type:       e.Payload["type"],
			Address:    e.Payload["address"],
			TemplateID: e.Payload["template_id"],
			Outcome:    e.Payload["outcome"],
			ErrorMsg:   e.Payload["error"],
			CreatedAt:  e.Timestamp,
		}
		if err := store.LogDelivery(ctx, entry); err != nil {
			logger.Error("recording delivery audit entry failed",
				"fsa_id", entry.FsaID, "error", err)
		}
	}
}
