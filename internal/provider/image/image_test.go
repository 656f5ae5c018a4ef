package image

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"saga-server/internal/metrics"
	"saga-server/internal/provider"
)

type stubProvider struct {
	name  string
	url   string
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Generate(_ context.Context, _ Request) (Result, error) {
	s.calls++
	if s.err != nil {
		return Result{}, s.err
	}
	return Result{URL: s.url, EstimatedCostUSD: 0.01}, nil
}

func newStubChain(recorder *metrics.Recorder, identity, secondary, fallback *stubProvider) *Chain {
	identityEntry := provider.Entry[Request, Result]{Provider: identity}
	secondaryEntry := provider.Entry[Request, Result]{Provider: secondary}
	fallbackEntry := provider.Entry[Request, Result]{Provider: fallback}

	return &Chain{
		withReference: provider.NewChain[Request, Result]("ImageChain", recorder, zap.NewNop(),
			identityEntry, secondaryEntry, fallbackEntry),
		withoutReference: provider.NewChain[Request, Result]("ImageChain", recorder, zap.NewNop(),
			secondaryEntry, fallbackEntry),
	}
}

func TestChainGenerate_ReferenceSelectsIdentityFirst(t *testing.T) {
	recorder := metrics.NewRecorder(prometheus.NewRegistry())
	identity := &stubProvider{name: ProviderNameIdentity, url: "https://cdn.example.com/id.png"}
	secondary := &stubProvider{name: ProviderNameGemini, url: "https://cdn.example.com/g.png"}
	fallback := &stubProvider{name: ProviderNameOpenAIImage, url: "https://cdn.example.com/o.png"}
	chain := newStubChain(recorder, identity, secondary, fallback)

	out, err := chain.Generate(context.Background(), Request{ReferencePhoto: []byte{1}})
	require.NoError(t, err)
	assert.Equal(t, ProviderNameIdentity, out.Provider)
	assert.Equal(t, 0, secondary.calls)
}

func TestChainGenerate_NoReferenceSkipsIdentity(t *testing.T) {
	recorder := metrics.NewRecorder(prometheus.NewRegistry())
	identity := &stubProvider{name: ProviderNameIdentity, url: "https://cdn.example.com/id.png"}
	secondary := &stubProvider{name: ProviderNameGemini, url: "https://cdn.example.com/g.png"}
	fallback := &stubProvider{name: ProviderNameOpenAIImage, url: "https://cdn.example.com/o.png"}
	chain := newStubChain(recorder, identity, secondary, fallback)

	out, err := chain.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, ProviderNameGemini, out.Provider)
	assert.Equal(t, 0, identity.calls)
}

func TestChainGenerate_PrimaryFailureFallsToSecondary(t *testing.T) {
	recorder := metrics.NewRecorder(prometheus.NewRegistry())
	identity := &stubProvider{name: ProviderNameIdentity, err: errors.New("backend queue timeout")}
	secondary := &stubProvider{name: ProviderNameGemini, url: "https://cdn.example.com/g.png"}
	fallback := &stubProvider{name: ProviderNameOpenAIImage, url: "https://cdn.example.com/o.png"}
	chain := newStubChain(recorder, identity, secondary, fallback)

	out, err := chain.Generate(context.Background(), Request{ReferencePhoto: []byte{1}})
	require.NoError(t, err)
	assert.Equal(t, ProviderNameGemini, out.Provider)

	stats := recorder.Snapshot()
	assert.Equal(t, int64(1), stats[ProviderNameIdentity].FailureCount)
	assert.Equal(t, int64(1), stats[ProviderNameGemini].SuccessCount)
	assert.Equal(t, 0, fallback.calls)
}

func TestPlaceholderNeverFails(t *testing.T) {
	p := &PlaceholderProvider{url: "https://cdn.example.com/static/placeholder.jpg"}

	res, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/static/placeholder.jpg", res.URL)
	assert.Zero(t, res.EstimatedCostUSD)
}
