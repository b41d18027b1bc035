package agent

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// DefaultPacingInterval is the pause between delegated calls.
const DefaultPacingInterval = 90 * time.Second

// Pacer spaces delegated calls by a fixed interval.
// The first call passes immediately. The coordinator paces each item on
// its own gate obtained from ForItem.
type Pacer struct {
	interval time.Duration
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// NewPacer creates a pacer releasing one call per interval.
// An interval of zero or less disables pacing.
func NewPacer(interval time.Duration, logger *slog.Logger) *Pacer {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pacer{interval: interval, logger: logger}
	if interval > 0 {
		p.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return p
}

// Name returns the capability name.
func (p *Pacer) Name() string {
	return "delay"
}

// Interval returns the configured interval.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// ForItem returns a fresh pacer with the same interval and an unused gate.
func (p *Pacer) ForItem() Delay {
	return NewPacer(p.interval, p.logger)
}

// Wait blocks until the next call is allowed or ctx is done.
func (p *Pacer) Wait(ctx context.Context, reason string) error {
	if p.limiter == nil {
		return ctx.Err()
	}

	reservation := p.limiter.Reserve()
	delay := reservation.Delay()
	if delay == 0 {
		return nil
	}

	p.logger.Info("Pacing", slog.String("reason", reason), slog.Duration("wait", delay))
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		reservation.Cancel()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
