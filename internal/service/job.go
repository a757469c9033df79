package service

import (
	"context"
	"sync"
	"time"
)

type syncJob struct {
	engine   SyncEngine
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncJob creates a syncJob that calls engine.SyncNow every interval as
// the safety net for missed connectivity events. If interval is zero or
// negative it defaults to 15 seconds. The job is idle until Run is called.
func NewSyncJob(engine SyncEngine, interval time.Duration) SyncJob {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &syncJob{engine: engine, interval: interval}
}

// Run implements SyncJob. It stops any previously running job, then
// launches a background goroutine that triggers a pass every interval. The
// goroutine exits when ctx is cancelled or Stop is called.
func (j *syncJob) Run(ctx context.Context) {
	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(j.interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				_ = j.engine.SyncNow(jobCtx)
			}
		}
	}()
}

// Stop implements SyncJob. It cancels the background goroutine's context
// and blocks until the goroutine has fully exited. Safe to call when the
// job is not running (no-op in that case).
func (j *syncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
