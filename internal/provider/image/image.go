// Package image implements the image-generation provider chain:
// identity-preserving primary (retried with backoff), identity-preserving
// secondary, a non-identity stylistic fallback, and a static placeholder
// that never fails. Provider outputs are persisted to the system's own
// blob store before a URL is returned.
package image

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"saga-server/internal/config"
	"saga-server/internal/metrics"
	"saga-server/internal/models"
	"saga-server/internal/provider"
	"saga-server/pkg/blobstore"
)

// Request carries everything a provider needs for one image. A nil
// ReferencePhoto means no identity source is available.
type Request struct {
	Scene          models.Scene
	VisualStyle    string
	Gender         models.UserGender
	ReferencePhoto []byte
}

// HasReference reports whether an identity source is present.
func (r Request) HasReference() bool { return len(r.ReferencePhoto) > 0 }

// Result is the normalized output of any image provider. URL always
// points at the system's own blob store.
type Result struct {
	URL              string
	EstimatedCostUSD float64
}

// CostUSD implements provider.Costed.
func (r Result) CostUSD() float64 { return r.EstimatedCostUSD }

// Chain selects between two orderings of the same providers depending on
// whether a reference photo is available. The identity primary is only
// meaningful with a reference in hand.
type Chain struct {
	withReference    *provider.Chain[Request, Result]
	withoutReference *provider.Chain[Request, Result]
}

// NewChain constructs the full provider ordering. A provider whose
// credentials are missing fails construction: configuration errors are
// fatal at startup, never retried.
func NewChain(
	cfg config.ImageAIConfig,
	store *blobstore.Store,
	recorder *metrics.Recorder,
	logger *zap.Logger,
) (*Chain, error) {
	primary, err := NewIdentityProvider(cfg, store, logger)
	if err != nil {
		return nil, err
	}
	secondary, err := NewGeminiProvider(cfg, store, logger)
	if err != nil {
		return nil, err
	}
	fallback, err := NewOpenAIImageProvider(cfg, store, logger)
	if err != nil {
		return nil, err
	}
	placeholder := NewPlaceholderProvider(cfg, store)

	primaryEntry := provider.Entry[Request, Result]{
		Provider:    primary,
		MaxAttempts: cfg.IdentityMaxAttempts,
		NewBackoff:  identityBackoff,
	}
	secondaryEntry := provider.Entry[Request, Result]{Provider: secondary}
	fallbackEntry := provider.Entry[Request, Result]{Provider: fallback}
	placeholderEntry := provider.Entry[Request, Result]{Provider: placeholder}

	return &Chain{
		withReference: provider.NewChain[Request, Result]("ImageChain", recorder, logger,
			primaryEntry, secondaryEntry, fallbackEntry, placeholderEntry),
		withoutReference: provider.NewChain[Request, Result]("ImageChain", recorder, logger,
			secondaryEntry, fallbackEntry, placeholderEntry),
	}, nil
}

// identityBackoff spaces the identity primary's retries: 2s initial,
// doubling, uncapped within the small attempt budget.
func identityBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Second
	b.Multiplier = 2
	b.RandomizationFactor = 0
	return b
}

// Generate runs the appropriate ordering for the request.
func (c *Chain) Generate(ctx context.Context, req Request) (provider.Outcome[Result], error) {
	if req.HasReference() {
		return c.withReference.Generate(ctx, req)
	}
	return c.withoutReference.Generate(ctx, req)
}
