package text

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"saga-server/internal/config"
	"saga-server/internal/narrative"
)

// ProviderNameOpenRouter keys metrics and persisted episodes.
const ProviderNameOpenRouter = "openrouter"

// OpenRouterProvider is the primary rich-prompt text provider, talking to
// an OpenRouter-compatible chat completions endpoint.
type OpenRouterProvider struct {
	client    *openai.Client
	model     string
	logger    *zap.Logger
	estimator *costEstimator
}

// NewOpenRouterProvider validates credentials at construction; a missing
// key is fatal here and never retried.
func NewOpenRouterProvider(cfg config.TextAIConfig, logger *zap.Logger) (*OpenRouterProvider, error) {
	if cfg.OpenRouterAPIKey == "" {
		return nil, errors.New("openrouter: API key is not configured")
	}
	clientCfg := openai.DefaultConfig(cfg.OpenRouterAPIKey)
	clientCfg.BaseURL = cfg.OpenRouterBaseURL
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.OpenRouterTimeout}

	estimator, err := newCostEstimator(cfg.PriceInputPerMTok, cfg.PriceOutputPerMTok)
	if err != nil {
		return nil, err
	}

	return &OpenRouterProvider{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.OpenRouterModel,
		logger:    logger.Named("OpenRouterProvider"),
		estimator: estimator,
	}, nil
}

// Name implements provider.Provider.
func (p *OpenRouterProvider) Name() string { return ProviderNameOpenRouter }

// Generate performs one chat completion with the strict-contract prompt.
// Network and HTTP failures surface as errors for the chain to handle;
// structurally malformed output is recovered by the parser and is NOT a
// failure.
func (p *OpenRouterProvider) Generate(ctx context.Context, nctx *narrative.Context) (Result, error) {
	userPrompt := BuildRichPrompt(nctx)

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: richSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.8,
		MaxTokens:   1600,
		TopP:        0.95,
	})
	if err != nil {
		return Result{}, fmt.Errorf("openrouter: chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return Result{}, errors.New("openrouter: empty response from API")
	}

	raw := resp.Choices[0].Message.Content
	out := parseMarkedResponse(raw, fallbackEpisodeTitle(nctx.TemplateTitle, nctx.Day))

	promptTokens := resp.Usage.PromptTokens
	completionTokens := resp.Usage.CompletionTokens
	if promptTokens == 0 && completionTokens == 0 {
		// Some OpenRouter upstreams omit usage; fall back to local counts.
		promptTokens = p.estimator.countTokens(richSystemPrompt + userPrompt)
		completionTokens = p.estimator.countTokens(raw)
	}

	p.logger.Debug("Primary text generation succeeded",
		zap.Int("day", nctx.Day),
		zap.Int("prompt_tokens", promptTokens),
		zap.Int("completion_tokens", completionTokens))

	return Result{
		Title:            out.Title,
		Text:             out.Story,
		SceneDescription: out.SceneDescription,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		EstimatedCostUSD: p.estimator.estimate(promptTokens, completionTokens),
	}, nil
}
