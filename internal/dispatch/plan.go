// Package dispatch implements the notification dispatch engine: it decides
// which notification emails are owed for a registration state, reconciles
// that plan against the persisted delivery status, and drives per-item
// sends so that each logical notification is delivered exactly once even
// when the triggering request is retried.
package dispatch

import (
	"github.com/foodregister/regnotify/internal/config"
	"github.com/foodregister/regnotify/internal/registration"
)

// Reference-pending template ids. These are dedicated constants rather than
// part of the notify template configuration because the pending email is
// owned by the numbering flow, not the council-facing template set.
const (
	RNGPendingTemplateID      = "rng-pending"
	RNGPendingTemplateIDWelsh = "rng-pending-cy"
)

// Item is one planned notification: who gets which template at which
// address. Items are immutable once planned; only the delivery status
// record changes.
type Item struct {
	Type       registration.NotificationType
	Address    string
	TemplateID string
}

// BuildPlan computes the ordered notification plan for a registration.
// It is pure: no I/O, deterministic for identical inputs.
//
// Three mutually exclusive branches, evaluated in order:
//  1. A prior status with more than one record, or a single non-pending
//     record, freezes the plan: the same (type, address) sequence is
//     reproduced and only template ids are re-resolved.
//  2. A registration whose reference number is still temporary gets a
//     single reference-pending notification to the operator.
//  3. Otherwise the full plan is built: a carried-over pending item when
//     one was previously planned, an LC copy per configured council inbox,
//     the operator confirmation, and the feedback pair when opted in.
func BuildPlan(reg *registration.View, councils registration.CouncilContactConfig, tmpl config.NotifyTemplates) []Item {
	welsh := reg.Welsh()
	operatorAddr := reg.OperatorContactAddress()

	if hasFrozenPlan(reg.Status) {
		items := make([]Item, 0, len(reg.Status.Notifications))
		for _, rec := range reg.Status.Notifications {
			items = append(items, Item{
				Type:       rec.Type,
				Address:    rec.Address,
				TemplateID: templateFor(rec.Type, welsh, tmpl),
			})
		}
		return items
	}

	if reg.HasPendingReference() {
		return []Item{{
			Type:       registration.TypeRNGPending,
			Address:    operatorAddr,
			TemplateID: templateFor(registration.TypeRNGPending, welsh, tmpl),
		}}
	}

	var items []Item

	// A previously planned pending notification is carried forward so its
	// delivery record is not orphaned once the full plan supersedes it.
	if hasSolePendingRecord(reg.Status) {
		items = append(items, Item{
			Type:       registration.TypeRNGPending,
			Address:    operatorAddr,
			TemplateID: templateFor(registration.TypeRNGPending, welsh, tmpl),
		})
	}

	for _, group := range councils.Groups() {
		for _, addr := range group.NotifyAddresses {
			items = append(items, Item{
				Type:       registration.TypeLC,
				Address:    addr,
				TemplateID: templateFor(registration.TypeLC, welsh, tmpl),
			})
		}
	}

	items = append(items, Item{
		Type:       registration.TypeFBO,
		Address:    operatorAddr,
		TemplateID: templateFor(registration.TypeFBO, welsh, tmpl),
	})

	if reg.Declaration.FeedbackOptIn() {
		items = append(items,
			Item{
				Type:       registration.TypeFBOFeedback,
				Address:    operatorAddr,
				TemplateID: templateFor(registration.TypeFBOFeedback, welsh, tmpl),
			},
			Item{
				Type:       registration.TypeFDFeedback,
				Address:    tmpl.FutureDeliveryEmail,
				TemplateID: templateFor(registration.TypeFDFeedback, welsh, tmpl),
			},
		)
	}

	return items
}

// hasFrozenPlan reports whether the prior status commits the plan shape:
// multiple records, or a single record that is not the pending placeholder.
func hasFrozenPlan(status *registration.Status) bool {
	if status == nil {
		return false
	}
	n := len(status.Notifications)
	if n > 1 {
		return true
	}
	return n == 1 && status.Notifications[0].Type != registration.TypeRNGPending
}

// hasSolePendingRecord reports whether the prior status is exactly one
// reference-pending record.
func hasSolePendingRecord(status *registration.Status) bool {
	return status != nil &&
		len(status.Notifications) == 1 &&
		status.Notifications[0].Type == registration.TypeRNGPending
}

// templateFor resolves the notify template id for a notification type in
// the registration's submission language. The future-delivery feedback
// template has no Welsh variant.
func templateFor(t registration.NotificationType, welsh bool, tmpl config.NotifyTemplates) string {
	switch t {
	case registration.TypeLC:
		if welsh {
			return tmpl.Keys.LCNewRegistrationWelsh
		}
		return tmpl.Keys.LCNewRegistration
	case registration.TypeFBO:
		if welsh {
			return tmpl.Keys.FBOSubmissionCompleteWelsh
		}
		return tmpl.Keys.FBOSubmissionComplete
	case registration.TypeFBOFeedback:
		if welsh {
			return tmpl.Keys.FBOFeedbackWelsh
		}
		return tmpl.Keys.FBOFeedback
	case registration.TypeFDFeedback:
		return tmpl.Keys.FDFeedback
	case registration.TypeRNGPending:
		if welsh {
			return RNGPendingTemplateIDWelsh
		}
		return RNGPendingTemplateID
	}
	return ""
}
