package image

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"saga-server/internal/config"
	"saga-server/internal/scene"
	"saga-server/pkg/blobstore"
)

// ProviderNameOpenAIImage keys metrics and persisted episodes.
const ProviderNameOpenAIImage = "openai-image"

// OpenAIImageProvider is the non-identity fallback: a generic but
// stylistically matching image from the plain cinematic prompt. It fails
// only when misconfigured or when the platform itself is down.
type OpenAIImageProvider struct {
	client  *openai.Client
	model   string
	costUSD float64
	store   *blobstore.Store
	logger  *zap.Logger
}

// NewOpenAIImageProvider validates credentials at construction.
func NewOpenAIImageProvider(cfg config.ImageAIConfig, store *blobstore.Store, logger *zap.Logger) (*OpenAIImageProvider, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, errors.New("openai image provider: API key is not configured")
	}
	return &OpenAIImageProvider{
		client:  openai.NewClient(cfg.OpenAIAPIKey),
		model:   cfg.OpenAIModel,
		costUSD: cfg.OpenAICostUSD,
		store:   store,
		logger:  logger.Named("OpenAIImageProvider"),
	}, nil
}

// Name implements provider.Provider.
func (p *OpenAIImageProvider) Name() string { return ProviderNameOpenAIImage }

// Generate produces one image from the cinematic prompt; the reference
// photo, if any, is deliberately ignored here.
func (p *OpenAIImageProvider) Generate(ctx context.Context, req Request) (Result, error) {
	resp, err := p.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         scene.BuildCinematicPrompt(req.Scene, req.VisualStyle),
		Model:          p.model,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return Result{}, fmt.Errorf("openai image provider: create image failed: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return Result{}, errors.New("openai image provider: empty image response")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return Result{}, fmt.Errorf("openai image provider: decoding image payload: %w", err)
	}

	url, err := p.store.SaveImage(data, "png")
	if err != nil {
		return Result{}, err
	}

	p.logger.Debug("Fallback image generated", zap.String("url", url))
	return Result{URL: url, EstimatedCostUSD: p.costUSD}, nil
}
