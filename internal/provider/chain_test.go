package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"saga-server/internal/metrics"
	"saga-server/internal/models"
)

type fakeResult struct {
	value string
	cost  float64
}

func (r fakeResult) CostUSD() float64 { return r.cost }

type fakeProvider struct {
	name     string
	failures int
	calls    int
	result   fakeResult
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Generate(_ context.Context, _ string) (fakeResult, error) {
	p.calls++
	if p.calls <= p.failures {
		return fakeResult{}, errors.New("simulated provider failure")
	}
	return p.result, nil
}

func zeroBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 0
	b.MaxInterval = 0
	return b
}

func TestChain_PrimarySucceeds(t *testing.T) {
	rec := metrics.NewRecorder(prometheus.NewRegistry())
	primary := &fakeProvider{name: "primary", result: fakeResult{value: "ok", cost: 0.01}}
	secondary := &fakeProvider{name: "secondary", result: fakeResult{value: "fallback"}}

	chain := NewChain[string, fakeResult]("TestChain", rec, zap.NewNop(),
		Entry[string, fakeResult]{Provider: primary},
		Entry[string, fakeResult]{Provider: secondary},
	)

	out, err := chain.Generate(context.Background(), "req")
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Result.value)
	assert.Equal(t, "primary", out.Provider)
	assert.Zero(t, secondary.calls, "secondary must not be called when primary succeeds")

	snap := rec.Snapshot()
	assert.Equal(t, int64(1), snap["primary"].SuccessCount)
	assert.InDelta(t, 0.01, snap["primary"].TotalCostUSD, 1e-9)
}

func TestChain_FallsThroughToSecondary(t *testing.T) {
	rec := metrics.NewRecorder(prometheus.NewRegistry())
	primary := &fakeProvider{name: "primary", failures: 10}
	secondary := &fakeProvider{name: "secondary", result: fakeResult{value: "fallback"}}

	chain := NewChain[string, fakeResult]("TestChain", rec, zap.NewNop(),
		Entry[string, fakeResult]{Provider: primary},
		Entry[string, fakeResult]{Provider: secondary},
	)

	out, err := chain.Generate(context.Background(), "req")
	require.NoError(t, err)
	assert.Equal(t, "secondary", out.Provider)

	snap := rec.Snapshot()
	assert.Equal(t, int64(1), snap["primary"].FailureCount)
	assert.Equal(t, int64(1), snap["secondary"].SuccessCount)
}

func TestChain_RetriesSameProviderBeforeFallingThrough(t *testing.T) {
	rec := metrics.NewRecorder(prometheus.NewRegistry())
	flaky := &fakeProvider{name: "flaky", failures: 2, result: fakeResult{value: "third time"}}
	never := &fakeProvider{name: "never"}

	chain := NewChain[string, fakeResult]("TestChain", rec, zap.NewNop(),
		Entry[string, fakeResult]{Provider: flaky, MaxAttempts: 3, NewBackoff: zeroBackoff},
		Entry[string, fakeResult]{Provider: never},
	)

	out, err := chain.Generate(context.Background(), "req")
	require.NoError(t, err)
	assert.Equal(t, "flaky", out.Provider)
	assert.Equal(t, 3, flaky.calls)
	assert.Zero(t, never.calls)

	snap := rec.Snapshot()
	assert.Equal(t, int64(2), snap["flaky"].FailureCount)
	assert.Equal(t, int64(1), snap["flaky"].SuccessCount)
}

func TestChain_ExhaustionIsTerminal(t *testing.T) {
	rec := metrics.NewRecorder(prometheus.NewRegistry())
	a := &fakeProvider{name: "a", failures: 10}
	b := &fakeProvider{name: "b", failures: 10}

	chain := NewChain[string, fakeResult]("TestChain", rec, zap.NewNop(),
		Entry[string, fakeResult]{Provider: a},
		Entry[string, fakeResult]{Provider: b},
	)

	_, err := chain.Generate(context.Background(), "req")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrGenerationFailed)
}

func TestChain_ContextCancellationStopsRetries(t *testing.T) {
	rec := metrics.NewRecorder(prometheus.NewRegistry())
	a := &fakeProvider{name: "a", failures: 10}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chain := NewChain[string, fakeResult]("TestChain", rec, zap.NewNop(),
		Entry[string, fakeResult]{Provider: a, MaxAttempts: 3, NewBackoff: func() backoff.BackOff {
			return backoff.NewConstantBackOff(time.Hour)
		}},
	)

	_, err := chain.Generate(ctx, "req")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrGenerationFailed)
	assert.Zero(t, a.calls)
}
