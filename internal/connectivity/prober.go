package connectivity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/sekolahku/offline-sync/internal/config"
	"github.com/sekolahku/offline-sync/internal/logger"
)

// Prober polls an HTTP endpoint on a ticker and feeds the result into a
// Monitor. Any HTTP response counts as reachable, including error statuses:
// the probe answers "can we reach the host", not "is the API healthy".
type Prober struct {
	monitor  Monitor
	client   *resty.Client
	interval time.Duration
	logger   *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewProber creates a Prober that is idle until Run is called.
func NewProber(m Monitor, cfg config.Connectivity, log *logger.Logger) *Prober {
	interval := cfg.ProbeInterval
	if interval <= 0 {
		interval = config.DefaultProbeInterval
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.ProbeURL, "/")).
		SetTimeout(interval / 2)

	return &Prober{
		monitor:  m,
		client:   cli,
		interval: interval,
		logger:   log,
	}
}

// Run launches the probing goroutine: one immediate probe, then one every
// interval. It stops any previously running goroutine first. The goroutine
// exits when ctx is cancelled or Stop is called.
func (p *Prober) Run(ctx context.Context) {
	p.Stop()

	p.mu.Lock()
	probeCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		t := time.NewTicker(p.interval)
		defer t.Stop()

		p.probe(probeCtx)
		for {
			select {
			case <-probeCtx.Done():
				return
			case <-t.C:
				p.probe(probeCtx)
			}
		}
	}()
}

// Stop cancels the probing goroutine and blocks until it has fully exited.
// Safe to call when the prober is not running (no-op in that case).
func (p *Prober) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}

func (p *Prober) probe(ctx context.Context) {
	_, err := p.client.R().SetContext(ctx).Head("/")
	online := err == nil

	if !online {
		p.logger.Debug().
			Str("func", "Prober.probe").
			Err(err).
			Msg("reachability probe failed")
	}

	p.monitor.SetOnline(online)
}
