package syncchan

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Default reconnect backoff values.
const (
	DefaultBaseDelay     = 500 * time.Millisecond
	DefaultMaxDelay      = 30 * time.Second
	DefaultJitterFactor  = 0.5
	DefaultBackoffFactor = 2.0
)

// Backoff computes reconnect delays. Attempts are unlimited.
type Backoff struct {
	BaseDelay     time.Duration // delay before the first retry
	MaxDelay      time.Duration // cap on any single delay
	JitterFactor  float64       // random jitter factor (0-1)
	BackoffFactor float64       // exponential multiplier
}

// DefaultBackoff returns the reconnect policy used by New.
func DefaultBackoff() Backoff {
	return Backoff{
		BaseDelay:     DefaultBaseDelay,
		MaxDelay:      DefaultMaxDelay,
		JitterFactor:  DefaultJitterFactor,
		BackoffFactor: DefaultBackoffFactor,
	}
}

// Delay returns the wait before retry number attempt (1-based).
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	factor := b.BackoffFactor
	if factor < 1 {
		factor = 1
	}

	// baseDelay * factor^(attempt-1)
	delay := float64(b.BaseDelay) * math.Pow(factor, float64(attempt-1))

	// delay * (1 + jitter * random(-1, 1))
	if b.JitterFactor > 0 {
		jitter := b.JitterFactor * (2*rand.Float64() - 1)
		delay *= 1 + jitter
	}

	if b.MaxDelay > 0 && delay > float64(b.MaxDelay) {
		delay = float64(b.MaxDelay)
	}
	if delay < 0 {
		delay = float64(b.BaseDelay)
	}
	return time.Duration(delay)
}

// Wait blocks for Delay(attempt) or until ctx is done.
func (b Backoff) Wait(ctx context.Context, attempt int) error {
	t := time.NewTimer(b.Delay(attempt))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
