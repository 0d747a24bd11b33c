package dispatch

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/foodregister/regnotify/internal/config"
	"github.com/foodregister/regnotify/internal/registration"
)

// StatusStore persists the per-registration delivery status document.
type StatusStore interface {
	// Load returns the status for fsaID, or a zero-value Status (empty
	// notifications) when none exists.
	Load(ctx context.Context, fsaID string) (registration.Status, error)
	// Save persists the status for fsaID.
	Save(ctx context.Context, fsaID string, status registration.Status) error
}

// Transport delivers a single templated email. Implementations must return
// an error (not panic) for an empty address.
type Transport interface {
	Send(ctx context.Context, templateID, address string, data map[string]string, attachment []byte) error
}

// Renderer produces the registration summary attached to local-council
// notification copies.
type Renderer interface {
	Render(reg *registration.View, councils registration.CouncilContactConfig) ([]byte, error)
}

// Metrics is the sink for dispatch outcome counters.
type Metrics interface {
	DispatchSucceeded()
	DispatchFailed()
	SendFailed()
	StatusInitialized()
	StatusSaveFailed()
}

// NopMetrics discards all counter increments.
type NopMetrics struct{}

func (NopMetrics) DispatchSucceeded() {}
func (NopMetrics) DispatchFailed()    {}
func (NopMetrics) SendFailed()        {}
func (NopMetrics) StatusInitialized() {}
func (NopMetrics) StatusSaveFailed()  {}

// EventPublisher allows the engine to emit delivery events without
// depending on a concrete event bus implementation.
type EventPublisher interface {
	Publish(eventType string, payload map[string]string)
}

// Event types published by the engine.
const (
	EventSendAttempted     = "notifications.send.attempted"
	EventDispatchCompleted = "notifications.dispatch.completed"
)

// Engine composes the plan builder, status initializer and dispatcher into
// the single entry point for one registration event.
type Engine struct {
	store     StatusStore
	transport Transport
	renderer  Renderer
	templates config.NotifyTemplates
	metrics   Metrics
	events    EventPublisher // optional
	logger    *slog.Logger
	locks     keyedMutex
}

// Config holds the engine's collaborators.
type Config struct {
	Store     StatusStore
	Transport Transport
	Renderer  Renderer
	Templates config.NotifyTemplates
	Metrics   Metrics
	// Events is optional. When set, per-send and per-dispatch outcome
	// events are published.
	Events EventPublisher
	Logger *slog.Logger
}

// NewEngine creates a dispatch Engine.
func NewEngine(cfg Config) *Engine {
	m := cfg.Metrics
	if m == nil {
		m = NopMetrics{}
	}
	l := cfg.Logger
	if l == nil {
		l = slog.Default()
	}
	return &Engine{
		store:     cfg.Store,
		transport: cfg.Transport,
		renderer:  cfg.Renderer,
		templates: cfg.Templates,
		metrics:   m,
		events:    cfg.Events,
		logger:    l,
	}
}

// Notify builds the notification plan for the registration, initializes the
// delivery status when needed, and dispatches every unsent item.
//
// Per-item transport failures are recorded in the status for a later retry
// and are not returned as errors; only fatal conditions (status corruption,
// render failure, store errors during initialization) are. Invocations for
// the same fsaID are serialized by a per-key mutex to avoid lost status
// updates.
func (e *Engine) Notify(ctx context.Context, fsaID string, councils registration.CouncilContactConfig, reg *registration.View) error {
	unlock := e.locks.lock(fsaID)
	defer unlock()

	plan := BuildPlan(reg, councils, e.templates)

	status, err := e.EnsureStatus(ctx, fsaID, plan)
	if err != nil {
		e.metrics.DispatchFailed()
		return err
	}

	_, success, err := e.Dispatch(ctx, fsaID, plan, status, reg, councils)
	if err != nil {
		e.metrics.DispatchFailed()
		e.publishDispatchCompleted(fsaID, false)
		return err
	}

	if success {
		e.metrics.DispatchSucceeded()
	} else {
		e.metrics.DispatchFailed()
	}
	e.publishDispatchCompleted(fsaID, success)
	return nil
}

func (e *Engine) publishDispatchCompleted(fsaID string, success bool) {
	if e.events == nil {
		return
	}
	e.events.Publish(EventDispatchCompleted, map[string]string{
		"fsa_id":  fsaID,
		"success": strconv.FormatBool(success),
	})
}

// keyedMutex serializes callers per string key. Entries are reference
// counted and removed once the last holder releases the key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
