package worker

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter throttles batch throughput so a large backlog of narratives does
// not overwhelm whatever sits downstream of the results.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a limiter allowing docsPerSecond with the given burst.
func NewLimiter(docsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}
	if docsPerSecond <= 0 {
		docsPerSecond = 20
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(docsPerSecond), burst)}
}

// Wait blocks until the next document may start, or the context ends.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether a document may start without waiting.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}
