package image

import (
	"context"
	"strings"

	"saga-server/internal/config"
	"saga-server/pkg/blobstore"
)

// ProviderNamePlaceholder keys metrics and persisted episodes.
const ProviderNamePlaceholder = "placeholder"

// PlaceholderProvider is the absolute last resort: a static image
// reference already present in the blob store. No network call, no
// failure mode, no cost.
type PlaceholderProvider struct {
	url string
}

// NewPlaceholderProvider resolves the placeholder's public URL against
// the store's base URL when the configured path is relative.
func NewPlaceholderProvider(cfg config.ImageAIConfig, store *blobstore.Store) *PlaceholderProvider {
	url := cfg.PlaceholderPath
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = store.PublicURL(strings.TrimPrefix(url, "/"))
	}
	return &PlaceholderProvider{url: url}
}

// Name implements provider.Provider.
func (p *PlaceholderProvider) Name() string { return ProviderNamePlaceholder }

// Generate returns the static reference unconditionally.
func (p *PlaceholderProvider) Generate(_ context.Context, _ Request) (Result, error) {
	return Result{URL: p.url, EstimatedCostUSD: 0}, nil
}
