// Package service implements the application service layer: registration
// intake, reference allocation and re-dispatch of owed notifications.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/foodregister/regnotify/internal/config"
	"github.com/foodregister/regnotify/internal/registration"
	"github.com/foodregister/regnotify/internal/storage"
)

// ErrRegistrationNotFound indicates the requested registration does not exist.
var ErrRegistrationNotFound = errors.New("registration not found")

// ErrUnknownCouncil indicates the submission names a council that is not in
// the register.
var ErrUnknownCouncil = errors.New("unknown council")

// ErrInvalidSubmission indicates the submitted document fails the minimal
// shape checks.
var ErrInvalidSubmission = errors.New("invalid submission")

// Notifier drives notification dispatch for one registration event.
type Notifier interface {
	Notify(ctx context.Context, fsaID string, councils registration.CouncilContactConfig, reg *registration.View) error
}

// NumberAllocator issues permanent application reference numbers. It stands
// in for the external numbering authority; an error means the authority is
// unavailable and the registration proceeds with a temporary reference.
type NumberAllocator interface {
	Allocate(ctx context.Context) (string, error)
}

// SubmissionResult is what the caller gets back from Submit.
type SubmissionResult struct {
	FsaID string `json:"fsa_rn"`
	// ReferencePending is true when the numbering authority was unavailable
	// and the registration carries a temporary reference.
	ReferencePending bool `json:"reference_pending"`
}

// RegistrationService is the application-facing API for registrations.
type RegistrationService interface {
	// Submit persists a new registration, allocates its reference and
	// dispatches the owed notifications. Send failures do not fail the
	// submission; they are retried by the sweeper.
	Submit(ctx context.Context, doc *registration.View, councilURL string) (*SubmissionResult, error)
	// Get returns a stored registration.
	Get(ctx context.Context, fsaID string) (*storage.RegistrationRecord, error)
	// Resend re-drives dispatch for a registration. When the registration
	// still carries a temporary reference, a permanent one is requested
	// first and the registration is rekeyed on success.
	Resend(ctx context.Context, fsaID string) error
	// ListPending returns fsa ids that still have unsent notifications.
	ListPending(ctx context.Context, limit int) ([]string, error)
	// ListDeliveries returns the send-attempt audit trail for a registration.
	ListDeliveries(ctx context.Context, fsaID string, limit int) ([]storage.DeliveryLogEntry, error)
}

// registrationServiceImpl implements RegistrationService.
type registrationServiceImpl struct {
	registrations storage.RegistrationStore
	statuses      storage.StatusStore
	deliveries    storage.DeliveryLogStore
	councils      *config.CouncilRegister
	notifier      Notifier
	allocator     NumberAllocator
	logger        *slog.Logger
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(
	registrations storage.RegistrationStore,
	statuses storage.StatusStore,
	deliveries storage.DeliveryLogStore,
	councils *config.CouncilRegister,
	notifier Notifier,
	allocator NumberAllocator,
	logger *slog.Logger,
) RegistrationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &registrationServiceImpl{
		registrations: registrations,
		statuses:      statuses,
		deliveries:    deliveries,
		councils:      councils,
		notifier:      notifier,
		allocator:     allocator,
		logger:        logger,
	}
}

// Submit persists the registration and dispatches its notifications. The
// registration is accepted even when the numbering authority is down (a
// temporary reference is used) or when sends fail (the sweeper retries).
func (s *registrationServiceImpl) Submit(ctx context.Context, doc *registration.View, councilURL string) (*SubmissionResult, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: no registration document", ErrInvalidSubmission)
	}
	if doc.Establishment.Details.TradingName == "" {
		return nil, fmt.Errorf("%w: establishment trading name is required", ErrInvalidSubmission)
	}
	if doc.OperatorContactAddress() == "" {
		return nil, fmt.Errorf("%w: operator contact email is required", ErrInvalidSubmission)
	}

	councilCfg, ok := s.councils.Find(councilURL)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCouncil, councilURL)
	}

	fsaID, err := s.allocator.Allocate(ctx)
	pending := false
	if err != nil {
		fsaID = registration.TmpPrefix + uuid.NewString()
		pending = true
		s.logger.Warn("numbering authority unavailable, using temporary reference",
			"fsa_id", fsaID, "error", err)
	}

	doc.FsaID = fsaID
	if doc.SubmissionDate.IsZero() {
		doc.SubmissionDate = time.Now().UTC()
	}

	if err := s.registrations.Save(ctx, storage.RegistrationRecord{
		FsaID:      fsaID,
		CouncilURL: councilURL,
		Document:   *doc,
	}); err != nil {
		return nil, fmt.Errorf("persisting registration: %w", err)
	}

	// The registration is committed at this point. Dispatch failures are
	// logged and left to the sweeper; they do not fail the submission.
	if err := s.notifier.Notify(ctx, fsaID, councilCfg, doc); err != nil {
		s.logger.Error("notification dispatch failed after submission",
			"fsa_id", fsaID, "error", err)
	}

	return &SubmissionResult{FsaID: fsaID, ReferencePending: pending}, nil
}

// Get returns the stored registration for fsaID.
func (s *registrationServiceImpl) Get(ctx context.Context, fsaID string) (*storage.RegistrationRecord, error) {
	rec, err := s.registrations.Get(ctx, fsaID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %q", ErrRegistrationNotFound, fsaID)
	}
	return rec, nil
}

// Resend re-drives dispatch for a stored registration. A registration still
// on a temporary reference gets a permanent one first when the numbering
// authority has recovered; already sent notifications are never repeated.
func (s *registrationServiceImpl) Resend(ctx context.Context, fsaID string) error {
	rec, err := s.Get(ctx, fsaID)
	if err != nil {
		return err
	}

	if rec.Document.HasPendingReference() {
		if newID, allocErr := s.allocator.Allocate(ctx); allocErr == nil {
			if err := s.registrations.Rekey(ctx, rec.FsaID, newID); err != nil {
				return fmt.Errorf("rekeying registration: %w", err)
			}
			s.logger.Info("permanent reference issued",
				"old_fsa_id", rec.FsaID, "fsa_id", newID)
			rec, err = s.Get(ctx, newID)
			if err != nil {
				return err
			}
		} else {
			s.logger.Warn("numbering authority still unavailable",
				"fsa_id", rec.FsaID, "error", allocErr)
		}
	}

	status, err := s.statuses.Load(ctx, rec.FsaID)
	if err != nil {
		return fmt.Errorf("loading notification status: %w", err)
	}
	doc := rec.Document
	if len(status.Notifications) > 0 {
		doc.Status = &status
	}

	councilCfg, ok := s.councils.Find(rec.CouncilURL)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCouncil, rec.CouncilURL)
	}

	return s.notifier.Notify(ctx, rec.FsaID, councilCfg, &doc)
}

// ListPending returns fsa ids with unsent notifications.
func (s *registrationServiceImpl) ListPending(ctx context.Context, limit int) ([]string, error) {
	return s.statuses.ListPending(ctx, limit)
}

// ListDeliveries returns the audit trail for a registration.
func (s *registrationServiceImpl) ListDeliveries(ctx context.Context, fsaID string, limit int) ([]storage.DeliveryLogEntry, error) {
	return s.deliveries.ListDeliveries(ctx, fsaID, limit)
}
