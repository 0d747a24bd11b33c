package dispatch_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodregister/regnotify/internal/dispatch"
	"github.com/foodregister/regnotify/internal/registration"
)

func TestNotify_FirstPendingSubmission(t *testing.T) {
	store := newMemStatusStore()
	transport := &stubTransport{}
	metrics := &countingMetrics{}
	eng := newTestEngine(t, store, transport, &stubRenderer{}, metrics, nil)

	reg := testRegistration("tmp_482")
	require.NoError(t, eng.Notify(context.Background(), "tmp_482", combinedCouncil(), reg))

	status, err := store.Load(context.Background(), "tmp_482")
	require.NoError(t, err)
	require.Len(t, status.Notifications, 1)
	assert.Equal(t, registration.TypeRNGPending, status.Notifications[0].Type)
	assert.True(t, status.Notifications[0].Sent)
	assert.NotNil(t, status.Notifications[0].Time)
	assert.Equal(t, 1, metrics.dispatchSucceeded)
}

func TestNotify_ResubmissionWithPermanentReference(t *testing.T) {
	store := newMemStatusStore()
	transport := &stubTransport{}
	eng := newTestEngine(t, store, transport, &stubRenderer{}, nil, nil)

	// The same registration later carries a permanent number and the
	// delivered pending record from the earlier phase.
	prior := registration.Status{Notifications: []registration.NotificationRecord{
		{Type: registration.TypeRNGPending, Address: "operator@example.com", Sent: true},
	}}
	require.NoError(t, store.Save(context.Background(), "FSA000123", prior))

	reg := testRegistration("FSA000123")
	reg.Status = &prior
	require.NoError(t, eng.Notify(context.Background(), "FSA000123", combinedCouncil(), reg))

	status, err := store.Load(context.Background(), "FSA000123")
	require.NoError(t, err)
	require.Len(t, status.Notifications, 4)
	for i, rec := range status.Notifications {
		assert.True(t, rec.Sent, "record %d", i)
	}
	// The carried-over pending item was never re-sent: only the three new
	// items hit the transport.
	assert.Equal(t, 3, transport.callCount())
}

func TestNotify_RetryResendsOnlyUnsent(t *testing.T) {
	store := newMemStatusStore()
	transport := &stubTransport{failAddresses: map[string]error{
		"inbox2@cardiff.gov.uk": errors.New("temporary failure"),
	}}
	metrics := &countingMetrics{}
	eng := newTestEngine(t, store, transport, &stubRenderer{}, metrics, nil)

	reg := testRegistration("FSA000123")
	require.NoError(t, eng.Notify(context.Background(), "FSA000123", combinedCouncil(), reg))
	assert.Equal(t, 3, transport.callCount())
	assert.Equal(t, 1, metrics.dispatchFailed)

	// The transport recovers; a retry must only attempt the failed item.
	transport.failAddresses = nil
	require.NoError(t, eng.Notify(context.Background(), "FSA000123", combinedCouncil(), reg))

	assert.Equal(t, 4, transport.callCount())
	assert.Equal(t, "inbox2@cardiff.gov.uk", transport.calls[3].Address)
	assert.Equal(t, 1, metrics.dispatchSucceeded)

	status, err := store.Load(context.Background(), "FSA000123")
	require.NoError(t, err)
	assert.False(t, status.Pending())
}

func TestNotify_RenderFailureSurfaces(t *testing.T) {
	store := newMemStatusStore()
	metrics := &countingMetrics{}
	eng := newTestEngine(t, store, &stubTransport{}, &stubRenderer{err: errors.New("render broke")}, metrics, nil)

	reg := testRegistration("FSA000123")
	err := eng.Notify(context.Background(), "FSA000123", combinedCouncil(), reg)

	require.Error(t, err)
	assert.Equal(t, 1, metrics.dispatchFailed)
}

func TestNotify_StoreErrorSurfaces(t *testing.T) {
	store := newMemStatusStore()
	store.loadErr = errors.New("status store down")
	eng := newTestEngine(t, store, &stubTransport{}, &stubRenderer{}, nil, nil)

	err := eng.Notify(context.Background(), "FSA000123", combinedCouncil(), testRegistration("FSA000123"))
	require.Error(t, err)
}

func TestNotify_ConcurrentInvocationsDoNotDuplicateSends(t *testing.T) {
	store := newMemStatusStore()
	transport := &stubTransport{delay: 10 * time.Millisecond}
	eng := newTestEngine(t, store, transport, &stubRenderer{}, nil, nil)

	reg := testRegistration("FSA000123")

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = eng.Notify(context.Background(), "FSA000123", combinedCouncil(), reg)
		}()
	}
	wg.Wait()

	// The per-key lock serializes the two invocations; the second sees the
	// first's status and skips everything.
	assert.Equal(t, 3, transport.callCount())

	status, err := store.Load(context.Background(), "FSA000123")
	require.NoError(t, err)
	assert.False(t, status.Pending())
}

func TestNotify_PublishesDispatchCompleted(t *testing.T) {
	store := newMemStatusStore()
	events := &recordingEvents{}
	eng := newTestEngine(t, store, &stubTransport{}, &stubRenderer{}, nil, events)

	reg := testRegistration("FSA000123")
	require.NoError(t, eng.Notify(context.Background(), "FSA000123", combinedCouncil(), reg))

	last := events.events[len(events.events)-1]
	assert.Equal(t, dispatch.EventDispatchCompleted, last.Type)
	assert.Equal(t, "true", last.Payload["success"])
}
