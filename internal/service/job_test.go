package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sekolahku/offline-sync/models"
)

// spyEngine counts SyncNow triggers coming from the ticker.
type spyEngine struct {
	calls atomic.Int64
	err   error
}

func (s *spyEngine) SyncNow(context.Context) error {
	s.calls.Add(1)
	return s.err
}

func (s *spyEngine) InProgress() bool                 { return false }
func (s *spyEngine) LastSyncedAt() time.Time          { return time.Time{} }
func (s *spyEngine) Notices() []models.ConflictNotice { return nil }
func (s *spyEngine) AddResultHook(ResultHook)         {}
func (s *spyEngine) SubscribePassDone(func()) func()  { return func() {} }

// ── Run / Stop ───────────────────────────────────────────────────────────────

func TestSyncJob_RunTriggersPasses(t *testing.T) {
	spy := &spyEngine{}
	job := NewSyncJob(spy, 10*time.Millisecond)

	job.Run(context.Background())
	time.Sleep(55 * time.Millisecond)
	job.Stop()

	got := spy.calls.Load()
	assert.GreaterOrEqual(t, got, int64(3), "ticker should have fired several times, fired: %d", got)
}

func TestSyncJob_StopHaltsGoroutine(t *testing.T) {
	spy := &spyEngine{}
	job := NewSyncJob(spy, 10*time.Millisecond)

	job.Run(context.Background())
	time.Sleep(30 * time.Millisecond)
	job.Stop()

	callsAfterStop := spy.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, callsAfterStop, spy.calls.Load(), "no triggers after Stop")
}

func TestSyncJob_StopBeforeRun_NoPanic(t *testing.T) {
	job := NewSyncJob(&spyEngine{}, 10*time.Millisecond)
	assert.NotPanics(t, func() { job.Stop() })
}

func TestSyncJob_DoubleStop_NoPanic(t *testing.T) {
	job := NewSyncJob(&spyEngine{}, 10*time.Millisecond)
	job.Run(context.Background())
	job.Stop()
	assert.NotPanics(t, func() { job.Stop() })
}

func TestSyncJob_DefaultInterval(t *testing.T) {
	spy := &spyEngine{}
	job := NewSyncJob(spy, 0)

	// interval <= 0 defaults to 15s, so nothing fires within 20ms.
	job.Run(context.Background())
	time.Sleep(20 * time.Millisecond)
	job.Stop()

	assert.Equal(t, int64(0), spy.calls.Load())
}

func TestSyncJob_RestartStopsPrevious(t *testing.T) {
	spy := &spyEngine{}
	job := NewSyncJob(spy, 10*time.Millisecond)
	ctx := context.Background()

	job.Run(ctx)
	time.Sleep(30 * time.Millisecond)
	callsBefore := spy.calls.Load()
	assert.Greater(t, callsBefore, int64(0))

	// A second Run stops the previous goroutine before starting over.
	job.Run(ctx)
	time.Sleep(30 * time.Millisecond)
	job.Stop()

	assert.Greater(t, spy.calls.Load(), callsBefore)
}

func TestSyncJob_ContextCancelStopsJob(t *testing.T) {
	spy := &spyEngine{}
	job := NewSyncJob(spy, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	job.Run(ctx)
	time.Sleep(30 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		job.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop hung after context cancellation")
	}
}

func TestSyncJob_EngineErrorDoesNotStopJob(t *testing.T) {
	spy := &spyEngine{err: assert.AnError}
	job := NewSyncJob(spy, 10*time.Millisecond)

	job.Run(context.Background())
	time.Sleep(55 * time.Millisecond)
	job.Stop()

	got := spy.calls.Load()
	require.GreaterOrEqual(t, got, int64(3), "triggers keep coming despite engine errors: %d", got)
}
