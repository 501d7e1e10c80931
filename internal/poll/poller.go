// Package poll re-runs the playability check on a fixed interval while the
// player is in game.
package poll

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// CheckFunc performs one playability check and returns the remaining play
// time in seconds. The loop ends once it returns zero or less.
type CheckFunc func(ctx context.Context) int

// Poller owns at most one polling loop at a time.
type Poller struct {
	check  CheckFunc
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	gen    uint64
}

// Option configures a Poller.
type Option func(*Poller)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Poller) {
		p.logger = logger
	}
}

func New(check CheckFunc, opts ...Option) (*Poller, error) {
	if check == nil {
		return nil, errors.New("check is required")
	}
	p := &Poller{check: check, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Start replaces any running loop with one that checks every interval.
// The first check happens after one interval has elapsed. The loop keeps
// the values of ctx but not its cancellation; use Stop to end it.
func (p *Poller) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		p.logger.Warn("poll not started: non-positive interval", "interval", interval)
		return
	}
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.gen++
	gen := p.gen
	p.cancel = cancel
	p.mu.Unlock()

	p.logger.Debug("poll started", "interval", interval)
	go p.loop(loopCtx, gen, interval)
}

// Stop ends the running loop, if any. It does not wait for an in-flight
// check to return, so it may be called from within the check itself.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel == nil {
		return
	}
	p.cancel()
	p.cancel = nil
	p.gen++
	p.logger.Debug("poll stopped")
}

// Running reports whether a loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Poller) loop(ctx context.Context, gen uint64, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if ctx.Err() != nil {
			return
		}
		remain := p.check(ctx)
		if ctx.Err() != nil {
			return
		}
		if remain <= 0 {
			p.finish(gen)
			return
		}
	}
}

// finish clears the loop handle unless a newer loop has replaced it.
func (p *Poller) finish(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen || p.cancel == nil {
		return
	}
	p.cancel()
	p.cancel = nil
	p.logger.Debug("poll finished: no play time left")
}
