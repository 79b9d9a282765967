package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Freeeeeet/clinic_bot/internal/service"
)

type recordingRunner struct {
	mu    sync.Mutex
	dates []time.Time
}

func (r *recordingRunner) RunWeekly(_ context.Context, baseDate time.Time) (*service.BatchReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dates = append(r.dates, baseDate)
	return &service.BatchReport{RunID: uuid.New()}, nil
}

func (r *recordingRunner) calls() []time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Time(nil), r.dates...)
}

func TestScheduler_RunsCurrentAndNextWeek(t *testing.T) {
	runner := &recordingRunner{}
	s := NewScheduler(runner, time.Hour, zaptest.NewLogger(t))
	now := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.Start(t.Context())
	require.Eventually(t, func() bool { return len(runner.calls()) >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()

	calls := runner.calls()
	assert.Equal(t, now, calls[0])
	assert.Equal(t, now.AddDate(0, 0, 7), calls[1])
}

func TestScheduler_StopsOnContext(t *testing.T) {
	runner := &recordingRunner{}
	s := NewScheduler(runner, time.Hour, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(t.Context())
	s.Start(ctx)
	cancel()

	select {
	case <-s.done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancel")
	}
}
