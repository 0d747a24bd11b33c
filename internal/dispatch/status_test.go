package dispatch_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodregister/regnotify/internal/dispatch"
	"github.com/foodregister/regnotify/internal/registration"
)

func TestNewStatusForPlan_AllUnsent(t *testing.T) {
	reg := testRegistration("FSA000123")
	plan := dispatch.BuildPlan(reg, combinedCouncil(), testTemplates())

	status := dispatch.NewStatusForPlan(plan)

	require.Len(t, status.Notifications, len(plan))
	for i, rec := range status.Notifications {
		assert.False(t, rec.Sent, "record %d", i)
		assert.Nil(t, rec.Time, "record %d", i)
		assert.Equal(t, plan[i].Type, rec.Type)
		assert.Equal(t, plan[i].Address, rec.Address)
	}
}

func TestNewStatusForPlan_SolePendingItemStaysUnsent(t *testing.T) {
	plan := []dispatch.Item{{Type: registration.TypeRNGPending, Address: "operator@example.com"}}

	status := dispatch.NewStatusForPlan(plan)

	require.Len(t, status.Notifications, 1)
	assert.False(t, status.Notifications[0].Sent)
}

func TestNewStatusForPlan_CarriedPendingItemPreMarkedSent(t *testing.T) {
	plan := []dispatch.Item{
		{Type: registration.TypeRNGPending, Address: "operator@example.com"},
		{Type: registration.TypeLC, Address: "inbox1@cardiff.gov.uk"},
		{Type: registration.TypeFBO, Address: "operator@example.com"},
	}

	status := dispatch.NewStatusForPlan(plan)

	require.Len(t, status.Notifications, 3)
	assert.True(t, status.Notifications[0].Sent)
	assert.False(t, status.Notifications[1].Sent)
	assert.False(t, status.Notifications[2].Sent)
}

func TestEnsureStatus_InitializesAndPersists(t *testing.T) {
	store := newMemStatusStore()
	metrics := &countingMetrics{}
	eng := newTestEngine(t, store, &stubTransport{}, &stubRenderer{}, metrics, nil)

	reg := testRegistration("FSA000123")
	plan := dispatch.BuildPlan(reg, combinedCouncil(), testTemplates())

	status, err := eng.EnsureStatus(context.Background(), "FSA000123", plan)
	require.NoError(t, err)

	assert.Len(t, status.Notifications, len(plan))
	persisted, err := store.Load(context.Background(), "FSA000123")
	require.NoError(t, err)
	assert.Equal(t, status, persisted)
	assert.Equal(t, 1, metrics.statusInitialized)
}

func TestEnsureStatus_NoOpWhenLengthMatches(t *testing.T) {
	store := newMemStatusStore()
	existing := registration.Status{Notifications: []registration.NotificationRecord{
		{Type: registration.TypeLC, Address: "inbox1@cardiff.gov.uk", Sent: true},
		{Type: registration.TypeLC, Address: "inbox2@cardiff.gov.uk", Sent: false},
		{Type: registration.TypeFBO, Address: "operator@example.com", Sent: true},
	}}
	require.NoError(t, store.Save(context.Background(), "FSA000123", existing))
	store.saveCalls = 0

	eng := newTestEngine(t, store, &stubTransport{}, &stubRenderer{}, nil, nil)
	reg := testRegistration("FSA000123")
	plan := dispatch.BuildPlan(reg, combinedCouncil(), testTemplates())

	status, err := eng.EnsureStatus(context.Background(), "FSA000123", plan)
	require.NoError(t, err)

	// Existing sent flags survive untouched and nothing is rewritten.
	assert.Equal(t, existing, status)
	assert.Equal(t, 0, store.saveCalls)
}

func TestEnsureStatus_ReinitializesOnLengthMismatch(t *testing.T) {
	store := newMemStatusStore()
	// Delivered pending notification from the temporary-reference phase.
	prior := registration.Status{Notifications: []registration.NotificationRecord{
		{Type: registration.TypeRNGPending, Address: "operator@example.com", Sent: true},
	}}
	require.NoError(t, store.Save(context.Background(), "FSA000123", prior))

	eng := newTestEngine(t, store, &stubTransport{}, &stubRenderer{}, nil, nil)
	reg := testRegistration("FSA000123")
	reg.Status = &prior
	plan := dispatch.BuildPlan(reg, combinedCouncil(), testTemplates())
	require.Len(t, plan, 4)

	status, err := eng.EnsureStatus(context.Background(), "FSA000123", plan)
	require.NoError(t, err)

	require.Len(t, status.Notifications, 4)
	// The superseded pending item is pre-marked sent so it is never resent.
	assert.True(t, status.Notifications[0].Sent)
	for i := 1; i < 4; i++ {
		assert.False(t, status.Notifications[i].Sent, "record %d", i)
	}
}

func TestEnsureStatus_LoadErrorPropagates(t *testing.T) {
	store := newMemStatusStore()
	store.loadErr = errors.New("store unavailable")

	eng := newTestEngine(t, store, &stubTransport{}, &stubRenderer{}, nil, nil)
	_, err := eng.EnsureStatus(context.Background(), "FSA000123", []dispatch.Item{{Type: registration.TypeFBO}})

	require.Error(t, err)
	assert.ErrorContains(t, err, "store unavailable")
}
