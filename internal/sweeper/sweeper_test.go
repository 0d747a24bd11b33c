package sweeper_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodregister/regnotify/internal/sweeper"
)

type stubPending struct {
	ids []string
	err error
}

func (s *stubPending) ListPending(_ context.Context, _ int) ([]string, error) {
	return s.ids, s.err
}

type stubResender struct {
	mu     sync.Mutex
	calls  []string
	errFor map[string]error
}

func (s *stubResender) Resend(_ context.Context, fsaID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, fsaID)
	if err, ok := s.errFor[fsaID]; ok {
		return err
	}
	return nil
}

func (s *stubResender) called() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

func newSweeper(t *testing.T, pending *stubPending, resender *stubResender) *sweeper.Sweeper {
	t.Helper()
	s, err := sweeper.New(sweeper.Config{
		Resender: resender,
		Pending:  pending,
		Interval: time.Minute,
		Logger:   slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)
	return s
}

func TestSweep_ResendsAllPending(t *testing.T) {
	resender := &stubResender{}
	s := newSweeper(t, &stubPending{ids: []string{"tmp_482", "FSA000123", "FSA000999"}}, resender)

	s.Sweep(context.Background())

	assert.ElementsMatch(t, []string{"tmp_482", "FSA000123", "FSA000999"}, resender.called())
}

func TestSweep_ContinuesPastFailures(t *testing.T) {
	resender := &stubResender{errFor: map[string]error{"FSA000123": errors.New("smtp down")}}
	s := newSweeper(t, &stubPending{ids: []string{"FSA000123", "FSA000999"}}, resender)

	s.Sweep(context.Background())

	assert.ElementsMatch(t, []string{"FSA000123", "FSA000999"}, resender.called())
}

func TestSweep_ListErrorSkipsPass(t *testing.T) {
	resender := &stubResender{}
	s := newSweeper(t, &stubPending{err: errors.New("db down")}, resender)

	s.Sweep(context.Background())

	assert.Empty(t, resender.called())
}

func TestSweep_NothingPending(t *testing.T) {
	resender := &stubResender{}
	s := newSweeper(t, &stubPending{}, resender)

	s.Sweep(context.Background())

	assert.Empty(t, resender.called())
}

func TestNew_RequiresPositiveInterval(t *testing.T) {
	_, err := sweeper.New(sweeper.Config{Interval: 0})
	require.Error(t, err)
}
