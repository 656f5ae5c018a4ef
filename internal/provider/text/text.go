// Package text implements the text-generation provider chain: a primary
// rich-prompt provider with a strict output contract and a secondary
// simplified-prompt provider used only when the primary fails outright.
// Malformed output is never a failure; it is recovered locally.
package text

import (
	"go.uber.org/zap"

	"saga-server/internal/config"
	"saga-server/internal/metrics"
	"saga-server/internal/narrative"
	"saga-server/internal/provider"
)

// Result is the normalized output of any text provider.
type Result struct {
	Title            string
	Text             string
	SceneDescription string
	PromptTokens     int
	CompletionTokens int
	EstimatedCostUSD float64
}

// CostUSD implements provider.Costed.
func (r Result) CostUSD() float64 { return r.EstimatedCostUSD }

// Chain is the ordered text provider chain.
type Chain = provider.Chain[*narrative.Context, Result]

// NewChain wires the primary and secondary text providers in order. The
// secondary has no further fallback: its failure propagates as chain
// exhaustion.
func NewChain(cfg config.TextAIConfig, recorder *metrics.Recorder, logger *zap.Logger) (*Chain, error) {
	primary, err := NewOpenRouterProvider(cfg, logger)
	if err != nil {
		return nil, err
	}
	secondary, err := NewOllamaProvider(cfg, logger)
	if err != nil {
		return nil, err
	}

	return provider.NewChain[*narrative.Context, Result]("TextChain", recorder, logger,
		provider.Entry[*narrative.Context, Result]{Provider: primary},
		provider.Entry[*narrative.Context, Result]{Provider: secondary},
	), nil
}
