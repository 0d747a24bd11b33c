package dispatch

import (
	"context"
	"fmt"

	"github.com/foodregister/regnotify/internal/registration"
)

// NewStatusForPlan builds the initial delivery status for a plan: one
// record per item, unsent, except that a pending-reference item in a plan
// of more than one item is pre-marked sent. That encodes "a pending
// notification already delivered under the temporary reference must not be
// resent once the full plan supersedes it".
func NewStatusForPlan(plan []Item) registration.Status {
	records := make([]registration.NotificationRecord, 0, len(plan))
	for _, item := range plan {
		records = append(records, registration.NotificationRecord{
			Type:    item.Type,
			Address: item.Address,
			Sent:    len(plan) > 1 && item.Type == registration.TypeRNGPending,
		})
	}
	return registration.Status{Notifications: records}
}

// EnsureStatus reconciles the persisted status for fsaID with the plan.
// A status whose record count already matches the plan is left untouched;
// that is the common no-op path on retries. Anything else (absent, empty, or a
// length mismatch from the pending plan growing into the full plan) is
// overwritten with a fresh status and persisted before returning.
func (e *Engine) EnsureStatus(ctx context.Context, fsaID string, plan []Item) (registration.Status, error) {
	status, err := e.store.Load(ctx, fsaID)
	if err != nil {
		return registration.Status{}, fmt.Errorf("loading status for %s: %w", fsaID, err)
	}

	if len(status.Notifications) == len(plan) {
		e.logger.Debug("notification status already initialized",
			"fsa_id", fsaID, "records", len(status.Notifications))
		return status, nil
	}

	if len(status.Notifications) > 0 {
		e.logger.Info("reinitializing notification status",
			"fsa_id", fsaID,
			"existing_records", len(status.Notifications),
			"planned_items", len(plan))
	}

	status = NewStatusForPlan(plan)
	if err := e.store.Save(ctx, fsaID, status); err != nil {
		return registration.Status{}, fmt.Errorf("saving initial status for %s: %w", fsaID, err)
	}

	e.metrics.StatusInitialized()
	e.logger.Info("initialized notification status",
		"fsa_id", fsaID, "planned_items", len(plan))
	return status, nil
}
