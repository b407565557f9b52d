package attachment

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces out attachment operations against the blob backend. It is a
// flat courtesy delay, not adaptive backoff; failures pace slower than
// successes.
type Pacer interface {
	WaitSuccess(ctx context.Context) error
	WaitFailure(ctx context.Context) error
}

// limiterPacer paces with two fixed-interval limiters. The first call on
// each limiter passes immediately; subsequent calls wait out the interval.
type limiterPacer struct {
	success *rate.Limiter
	failure *rate.Limiter
}

// NewPacer returns the production pacer: one operation per successInterval,
// slowing to failureInterval after errors.
func NewPacer(successInterval, failureInterval time.Duration) Pacer {
	return &limiterPacer{
		success: rate.NewLimiter(rate.Every(successInterval), 1),
		failure: rate.NewLimiter(rate.Every(failureInterval), 1),
	}
}

func (p *limiterPacer) WaitSuccess(ctx context.Context) error { return p.success.Wait(ctx) }
func (p *limiterPacer) WaitFailure(ctx context.Context) error { return p.failure.Wait(ctx) }

// NopPacer skips pacing entirely. Used by tests and dry runs.
type NopPacer struct{}

func (NopPacer) WaitSuccess(ctx context.Context) error { return nil }
func (NopPacer) WaitFailure(ctx context.Context) error { return nil }
