package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/foodregister/regnotify/internal/registration"
)

// ErrStatusMismatch indicates the persisted status length is neither zero
// nor equal to the computed plan length. Plan and status records correlate
// by position, so a mismatch means the status document is corrupt and no
// send can be attempted safely.
var ErrStatusMismatch = errors.New("notification status does not match plan")

// Dispatch sends every planned item not yet marked sent, records each
// outcome in the status, and persists the status unconditionally so that
// partial progress survives transport failures.
//
// The returned bool is the logical AND of the outcomes attempted in this
// call; items already sent before the call do not affect it. A non-nil
// error means nothing was sent (status corruption or render failure).
func (e *Engine) Dispatch(ctx context.Context, fsaID string, plan []Item, status registration.Status, reg *registration.View, councils registration.CouncilContactConfig) (registration.Status, bool, error) {
	if len(plan) == 0 {
		// Nothing owed for this state; trivially successful.
		e.logger.Warn("empty notification plan", "fsa_id", fsaID)
		return status, true, nil
	}

	if len(status.Notifications) != 0 && len(status.Notifications) != len(plan) {
		return status, false, fmt.Errorf("%w: %d records, %d planned items (fsa_id %s)",
			ErrStatusMismatch, len(status.Notifications), len(plan), fsaID)
	}
	if len(status.Notifications) == 0 {
		status = NewStatusForPlan(plan)
	}

	// Personalisation data and the council attachment are rendered once and
	// shared across every item in the plan.
	data := buildNotifyData(reg, councils)
	attachment, err := e.renderer.Render(reg, councils)
	if err != nil {
		return status, false, fmt.Errorf("rendering attachment for %s: %w", fsaID, err)
	}

	success := true
	for i := range plan {
		if status.Notifications[i].Sent {
			e.logger.Info("skipping already sent notification",
				"fsa_id", fsaID, "type", plan[i].Type, "index", i)
			continue
		}

		var file []byte
		if plan[i].Type == registration.TypeLC {
			file = attachment
		}

		sendErr := e.transport.Send(ctx, plan[i].TemplateID, plan[i].Address, data, file)
		if sendErr == nil {
			now := time.Now()
			status.Notifications[i].Sent = true
			status.Notifications[i].Time = &now
		} else {
			success = false
			e.metrics.SendFailed()
			e.logger.Error("notification send failed",
				"fsa_id", fsaID, "type", plan[i].Type, "index", i,
				"address", plan[i].Address, "error", sendErr)
		}
		e.publishSendAttempted(fsaID, plan[i], i, sendErr)
	}

	// Persist whatever progress was made, even after failures, so a retry
	// only re-attempts the items still unsent.
	if err := e.store.Save(ctx, fsaID, status); err != nil {
		e.metrics.StatusSaveFailed()
		e.logger.Error("saving notification status failed", "fsa_id", fsaID, "error", err)
	}

	return status, success, nil
}

func (e *Engine) publishSendAttempted(fsaID string, item Item, index int, sendErr error) {
	if e.events == nil {
		return
	}
	payload := map[string]string{
		"fsa_id":      fsaID,
		"type":        string(item.Type),
		"address":     item.Address,
		"template_id": item.TemplateID,
		"index":       strconv.Itoa(index),
		"outcome":     "sent",
	}
	if sendErr != nil {
		payload["outcome"] = "failed"
		payload["error"] = sendErr.Error()
	}
	e.events.Publish(EventSendAttempted, payload)
}
