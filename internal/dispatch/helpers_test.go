package dispatch_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/foodregister/regnotify/internal/config"
	"github.com/foodregister/regnotify/internal/dispatch"
	"github.com/foodregister/regnotify/internal/registration"
)

// --- in-memory status store ---

type memStatusStore struct {
	mu        sync.Mutex
	statuses  map[string]registration.Status
	loadErr   error
	saveErr   error
	saveCalls int
}

func newMemStatusStore() *memStatusStore {
	return &memStatusStore{statuses: make(map[string]registration.Status)}
}

func (m *memStatusStore) Load(_ context.Context, fsaID string) (registration.Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return registration.Status{}, m.loadErr
	}
	return cloneStatus(m.statuses[fsaID]), nil
}

func (m *memStatusStore) Save(_ context.Context, fsaID string, status registration.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.statuses[fsaID] = cloneStatus(status)
	return nil
}

func cloneStatus(s registration.Status) registration.Status {
	out := registration.Status{Notifications: make([]registration.NotificationRecord, len(s.Notifications))}
	copy(out.Notifications, s.Notifications)
	return out
}

// --- stub transport ---

type sentCall struct {
	TemplateID    string
	Address       string
	HasAttachment bool
}

type stubTransport struct {
	mu    sync.Mutex
	calls []sentCall
	// failAddresses maps an address to the error Send returns for it.
	failAddresses map[string]error
	// delay simulates a slow transport.
	delay time.Duration
}

func (t *stubTransport) Send(_ context.Context, templateID, address string, _ map[string]string, attachment []byte) error {
	if t.delay > 0 {
		time.Sleep(t.delay)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, sentCall{TemplateID: templateID, Address: address, HasAttachment: attachment != nil})
	if err, ok := t.failAddresses[address]; ok {
		return err
	}
	return nil
}

func (t *stubTransport) callCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.calls)
}

// --- stub renderer ---

type stubRenderer struct {
	out []byte
	err error
}

func (r *stubRenderer) Render(*registration.View, registration.CouncilContactConfig) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.out == nil {
		return []byte("attachment"), nil
	}
	return r.out, nil
}

// --- counting metrics sink ---

type countingMetrics struct {
	mu                sync.Mutex
	dispatchSucceeded int
	dispatchFailed    int
	sendFailed        int
	statusInitialized int
	statusSaveFailed  int
}

func (m *countingMetrics) DispatchSucceeded() { m.mu.Lock(); m.dispatchSucceeded++; m.mu.Unlock() }
func (m *countingMetrics) DispatchFailed()    { m.mu.Lock(); m.dispatchFailed++; m.mu.Unlock() }
func (m *countingMetrics) SendFailed()        { m.mu.Lock(); m.sendFailed++; m.mu.Unlock() }
func (m *countingMetrics) StatusInitialized() { m.mu.Lock(); m.statusInitialized++; m.mu.Unlock() }
func (m *countingMetrics) StatusSaveFailed()  { m.mu.Lock(); m.statusSaveFailed++; m.mu.Unlock() }

// --- recording event publisher ---

type recordingEvents struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	Type    string
	Payload map[string]string
}

func (r *recordingEvents) Publish(eventType string, payload map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Type: eventType, Payload: payload})
}

// --- fixtures ---

func testTemplates() config.NotifyTemplates {
	return config.NotifyTemplates{
		Keys: config.TemplateKeys{
			LCNewRegistration:          "lc-en",
			LCNewRegistrationWelsh:     "lc-cy",
			FBOSubmissionComplete:      "fbo-en",
			FBOSubmissionCompleteWelsh: "fbo-cy",
			FBOFeedback:                "fbo-fb-en",
			FBOFeedbackWelsh:           "fbo-fb-cy",
			FDFeedback:                 "fd-fb",
		},
		FutureDeliveryEmail: "future-delivery@example.com",
	}
}

func combinedCouncil() registration.CouncilContactConfig {
	return registration.CouncilContactConfig{
		HygieneAndStandards: &registration.CouncilContact{
			Name:            "Cardiff Council",
			NameWelsh:       "Cyngor Caerdydd",
			Email:           "food@cardiff.gov.uk",
			Country:         "wales",
			NotifyAddresses: []string{"inbox1@cardiff.gov.uk", "inbox2@cardiff.gov.uk"},
		},
	}
}

func splitCouncil() registration.CouncilContactConfig {
	return registration.CouncilContactConfig{
		Hygiene: &registration.CouncilContact{
			Name:            "West Dorset District Council",
			Email:           "hygiene@westdorset.gov.uk",
			Country:         "england",
			NotifyAddresses: []string{"hygiene-inbox@westdorset.gov.uk"},
		},
		Standards: &registration.CouncilContact{
			Name:            "Dorset County Council",
			Email:           "standards@dorset.gov.uk",
			Country:         "england",
			NotifyAddresses: []string{"standards-inbox@dorset.gov.uk"},
		},
	}
}

func testRegistration(fsaID string) *registration.View {
	return &registration.View{
		FsaID:          fsaID,
		SubmissionDate: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		Establishment: registration.Establishment{
			Details: registration.EstablishmentDetails{TradingName: "Blue Door Bakery"},
			Operator: registration.Operator{
				FirstName: "Ffion",
				LastName:  "Hughes",
				Email:     "operator@example.com",
			},
			Premise: registration.Premise{
				AddressLine1: "12 Castle Street",
				Postcode:     "CF10 1BH",
			},
		},
	}
}

func newTestEngine(t *testing.T, store dispatch.StatusStore, transport dispatch.Transport, renderer dispatch.Renderer, metrics dispatch.Metrics, events dispatch.EventPublisher) *dispatch.Engine {
	t.Helper()
	return dispatch.NewEngine(dispatch.Config{
		Store:     store,
		Transport: transport,
		Renderer:  renderer,
		Templates: testTemplates(),
		Metrics:   metrics,
		Events:    events,
		Logger:    slog.New(slog.DiscardHandler),
	})
}
