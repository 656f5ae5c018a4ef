package image

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"saga-server/internal/config"
	"saga-server/internal/scene"
	"saga-server/pkg/blobstore"
)

// ProviderNameGemini keys metrics and persisted episodes.
const ProviderNameGemini = "gemini-image"

// GeminiProvider is the identity-preserving secondary. With a reference
// photo it passes the photo inline alongside the identity prompt; without
// one it degrades to a plain cinematic prompt. Single attempt only.
type GeminiProvider struct {
	client  *genai.Client
	model   string
	costUSD float64
	store   *blobstore.Store
	logger  *zap.Logger
}

// NewGeminiProvider validates credentials at construction.
func NewGeminiProvider(cfg config.ImageAIConfig, store *blobstore.Store, logger *zap.Logger) (*GeminiProvider, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, errors.New("gemini image provider: API key is not configured")
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: cfg.GeminiAPIKey})
	if err != nil {
		return nil, fmt.Errorf("gemini image provider: %w", err)
	}
	return &GeminiProvider{
		client:  client,
		model:   cfg.GeminiModel,
		costUSD: cfg.GeminiCostUSD,
		store:   store,
		logger:  logger.Named("GeminiProvider"),
	}, nil
}

// Name implements provider.Provider.
func (p *GeminiProvider) Name() string { return ProviderNameGemini }

// Generate produces one image and persists it to the blob store.
func (p *GeminiProvider) Generate(ctx context.Context, req Request) (Result, error) {
	var parts []*genai.Part
	if req.HasReference() {
		parts = append(parts,
			genai.NewPartFromText(scene.BuildIdentityPrompt(req.Scene, req.Gender, req.VisualStyle)),
			genai.NewPartFromBytes(req.ReferencePhoto, "image/jpeg"),
		)
	} else {
		parts = append(parts,
			genai.NewPartFromText(scene.BuildCinematicPrompt(req.Scene, req.VisualStyle)),
		)
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	})
	if err != nil {
		return Result{}, fmt.Errorf("gemini image provider: generate content failed: %w", err)
	}

	data := firstInlineImage(resp)
	if len(data) == 0 {
		return Result{}, errors.New("gemini image provider: response carried no image data")
	}

	url, err := p.store.SaveImage(data, "png")
	if err != nil {
		return Result{}, err
	}

	p.logger.Debug("Gemini image generated",
		zap.Bool("with_reference", req.HasReference()),
		zap.String("url", url))
	return Result{URL: url, EstimatedCostUSD: p.costUSD}, nil
}

func firstInlineImage(resp *genai.GenerateContentResponse) []byte {
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data
			}
		}
	}
	return nil
}
