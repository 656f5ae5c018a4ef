// Package provider holds the generic ordered-fallback routine shared by
// the text and image generation chains. Providers are only ever chained,
// never raced, so a single external call is in flight at any moment and
// spend is never duplicated.
package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"saga-server/internal/metrics"
	"saga-server/internal/models"
)

// Provider is one interchangeable external-AI backend.
type Provider[Req, Res any] interface {
	// Name identifies the provider in metrics and persisted episodes.
	Name() string
	// Generate performs one call. A returned error makes the chain
	// retry (when configured) and then fall through to the next entry.
	Generate(ctx context.Context, req Req) (Res, error)
}

// Costed lets the chain record estimated spend without knowing the
// concrete result type.
type Costed interface {
	CostUSD() float64
}

// Entry configures one provider inside a chain. MaxAttempts below 1 is
// treated as a single attempt. NewBackoff, when set, supplies fresh
// backoff state per Generate call for the waits between attempts.
type Entry[Req any, Res Costed] struct {
	Provider    Provider[Req, Res]
	MaxAttempts int
	NewBackoff  func() backoff.BackOff
}

// Outcome reports which provider produced the result and how long the
// successful call took.
type Outcome[Res any] struct {
	Result   Res
	Provider string
	Elapsed  time.Duration
}

// Chain tries providers in order until one succeeds. Every attempt,
// success or failure, is recorded against the provider's name.
type Chain[Req any, Res Costed] struct {
	name     string
	entries  []Entry[Req, Res]
	recorder *metrics.Recorder
	logger   *zap.Logger
}

// NewChain builds a chain. The name labels log lines only; metrics are
// keyed by provider name.
func NewChain[Req any, Res Costed](
	name string,
	recorder *metrics.Recorder,
	logger *zap.Logger,
	entries ...Entry[Req, Res],
) *Chain[Req, Res] {
	return &Chain[Req, Res]{
		name:     name,
		entries:  entries,
		recorder: recorder,
		logger:   logger.Named(name),
	}
}

// Generate walks the chain. Only exhaustion of every provider surfaces an
// error, wrapped in models.ErrGenerationFailed; individual failures are
// logged, recorded, and swallowed by the fallback.
func (c *Chain[Req, Res]) Generate(ctx context.Context, req Req) (Outcome[Res], error) {
	var lastErr error

	for _, entry := range c.entries {
		attempts := entry.MaxAttempts
		if attempts < 1 {
			attempts = 1
		}
		var wait backoff.BackOff
		if entry.NewBackoff != nil {
			wait = entry.NewBackoff()
		}

		for attempt := 1; attempt <= attempts; attempt++ {
			if err := ctx.Err(); err != nil {
				return Outcome[Res]{}, fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
			}

			start := time.Now()
			res, err := entry.Provider.Generate(ctx, req)
			elapsed := time.Since(start)

			if err == nil {
				c.recorder.RecordSuccess(entry.Provider.Name(), elapsed)
				c.recorder.RecordCost(entry.Provider.Name(), res.CostUSD())
				return Outcome[Res]{Result: res, Provider: entry.Provider.Name(), Elapsed: elapsed}, nil
			}

			c.recorder.RecordFailure(entry.Provider.Name(), elapsed)
			c.logger.Warn("Provider call failed",
				zap.String("provider", entry.Provider.Name()),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", attempts),
				zap.Duration("elapsed", elapsed),
				zap.Error(err))
			lastErr = err

			if attempt < attempts && wait != nil {
				d := wait.NextBackOff()
				if d == backoff.Stop {
					break
				}
				select {
				case <-time.After(d):
				case <-ctx.Done():
					return Outcome[Res]{}, fmt.Errorf("%w: %v", models.ErrGenerationFailed, ctx.Err())
				}
			}
		}
	}

	return Outcome[Res]{}, fmt.Errorf("%w: all providers exhausted: %v", models.ErrGenerationFailed, lastErr)
}
