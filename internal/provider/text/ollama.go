package text

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"

	"saga-server/internal/config"
	"saga-server/internal/narrative"
)

// ProviderNameOllama keys metrics and persisted episodes.
const ProviderNameOllama = "ollama"

// OllamaProvider is the secondary text provider: a local model behind the
// native ollama API with the simplified prompt. Running locally, its cost
// estimate is always zero.
type OllamaProvider struct {
	client *api.Client
	model  string
	logger *zap.Logger
}

// NewOllamaProvider builds the secondary provider. The host URL must
// parse; there is no credential to validate.
func NewOllamaProvider(cfg config.TextAIConfig, logger *zap.Logger) (*OllamaProvider, error) {
	host := strings.TrimSuffix(cfg.OllamaHost, "/")
	parsed, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("ollama: invalid host URL %q: %w", cfg.OllamaHost, err)
	}

	return &OllamaProvider{
		client: api.NewClient(parsed, &http.Client{Timeout: cfg.OllamaTimeout}),
		model:  cfg.OllamaModel,
		logger: logger.Named("OllamaProvider"),
	}, nil
}

// Name implements provider.Provider.
func (p *OllamaProvider) Name() string { return ProviderNameOllama }

// Generate performs one non-streaming chat call. The simplified contract
// returns prose only; title and scene description are synthesized.
func (p *OllamaProvider) Generate(ctx context.Context, nctx *narrative.Context) (Result, error) {
	stream := false
	req := &api.ChatRequest{
		Model: p.model,
		Messages: []api.Message{
			{Role: "system", Content: simpleSystemPrompt},
			{Role: "user", Content: BuildSimplePrompt(nctx)},
		},
		Stream: &stream,
		Options: map[string]interface{}{
			"temperature": 0.8,
			"num_predict": 1200,
		},
	}

	var resp api.ChatResponse
	err := p.client.Chat(ctx, req, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("ollama: chat failed: %w", err)
	}

	story := strings.TrimSpace(resp.Message.Content)
	if story == "" {
		return Result{}, errors.New("ollama: empty response")
	}

	p.logger.Debug("Secondary text generation succeeded",
		zap.Int("day", nctx.Day),
		zap.Int("prompt_tokens", resp.PromptEvalCount),
		zap.Int("completion_tokens", resp.EvalCount))

	return Result{
		Title:            fallbackEpisodeTitle(nctx.TemplateTitle, nctx.Day),
		Text:             story,
		SceneDescription: synthesizeSceneDescription(story),
		PromptTokens:     resp.PromptEvalCount,
		CompletionTokens: resp.EvalCount,
		EstimatedCostUSD: 0,
	}, nil
}
