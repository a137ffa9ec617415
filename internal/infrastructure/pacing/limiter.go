package pacing

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"IntentScanner/internal/ports"
)

// Limiter spaces outbound requests at a fixed minimum interval.
type Limiter struct {
	limiter *rate.Limiter
	delay   time.Duration
}

var _ ports.Pacer = (*Limiter)(nil)

// NewLimiter builds a pacer allowing one request per delay. The first Wait
// returns immediately; a non-positive delay disables pacing.
func NewLimiter(delay time.Duration) *Limiter {
	if delay <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Every(delay), 1), delay: delay}
}

// Wait blocks until the next request may start or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.limiter == nil {
		return ctx.Err()
	}
	return l.limiter.Wait(ctx)
}

// Delay reports the configured interval.
func (l *Limiter) Delay() time.Duration {
	if l == nil {
		return 0
	}
	return l.delay
}
