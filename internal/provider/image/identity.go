package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"saga-server/internal/config"
	"saga-server/internal/scene"
	"saga-server/pkg/blobstore"
)

// ProviderNameIdentity keys metrics and persisted episodes.
const ProviderNameIdentity = "instantid"

// IdentityProvider is the identity-preserving primary: a bearer-token
// REST endpoint that takes the reference photo and prompt as multipart
// form-data and returns the generated image as a URL or base64 payload.
type IdentityProvider struct {
	baseURL     string
	apiKey      string
	costUSD     float64
	attemptWait time.Duration
	httpClient  *http.Client
	store       *blobstore.Store
	logger      *zap.Logger
}

// identityResponse normalizes the two response shapes the endpoint emits.
type identityResponse struct {
	ImageURL string `json:"image_url"`
	ImageB64 string `json:"image_b64"`
	Error    string `json:"error"`
}

// NewIdentityProvider validates credentials at construction.
func NewIdentityProvider(cfg config.ImageAIConfig, store *blobstore.Store, logger *zap.Logger) (*IdentityProvider, error) {
	if cfg.IdentityBaseURL == "" {
		return nil, errors.New("identity image provider: base URL is not configured")
	}
	if cfg.IdentityAPIKey == "" {
		return nil, errors.New("identity image provider: API key is not configured")
	}
	return &IdentityProvider{
		baseURL:     strings.TrimSuffix(cfg.IdentityBaseURL, "/"),
		apiKey:      cfg.IdentityAPIKey,
		costUSD:     cfg.IdentityCostUSD,
		attemptWait: cfg.IdentityTimeout,
		// No client-level timeout: the per-attempt bound in Generate governs.
		httpClient: &http.Client{},
		store:      store,
		logger:     logger.Named("IdentityProvider"),
	}, nil
}

// Name implements provider.Provider.
func (p *IdentityProvider) Name() string { return ProviderNameIdentity }

// Generate uploads the reference photo and prompt, then persists the
// returned image to the blob store. Requires a reference photo. Each
// attempt waits at most attemptWait before the call is abandoned; this
// provider is the only one with an explicit bound on top of the HTTP
// client defaults because its backend routinely queues work.
func (p *IdentityProvider) Generate(ctx context.Context, req Request) (Result, error) {
	if !req.HasReference() {
		return Result{}, errors.New("identity image provider: no reference photo in request")
	}

	ctx, cancel := context.WithTimeout(ctx, p.attemptWait)
	defer cancel()

	prompt := scene.BuildIdentityPrompt(req.Scene, req.Gender, req.VisualStyle)

	body, contentType, err := buildMultipart(prompt, req.ReferencePhoto)
	if err != nil {
		return Result{}, fmt.Errorf("identity image provider: building request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/generate", body)
	if err != nil {
		return Result{}, fmt.Errorf("identity image provider: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("identity image provider: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return Result{}, fmt.Errorf("identity image provider: reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("identity image provider: status %d: %s", resp.StatusCode, truncateForLog(raw))
	}

	var parsed identityResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Result{}, fmt.Errorf("identity image provider: malformed response: %w", err)
	}
	if parsed.Error != "" {
		return Result{}, fmt.Errorf("identity image provider: API error: %s", parsed.Error)
	}

	var url string
	switch {
	case parsed.ImageB64 != "":
		data, err := base64.StdEncoding.DecodeString(parsed.ImageB64)
		if err != nil {
			return Result{}, fmt.Errorf("identity image provider: decoding image payload: %w", err)
		}
		url, err = p.store.SaveImage(data, "jpg")
		if err != nil {
			return Result{}, err
		}
	case parsed.ImageURL != "":
		url, err = p.store.FetchAndStore(ctx, parsed.ImageURL)
		if err != nil {
			return Result{}, err
		}
	default:
		return Result{}, errors.New("identity image provider: response carried no image")
	}

	p.logger.Debug("Identity image generated", zap.String("url", url))
	return Result{URL: url, EstimatedCostUSD: p.costUSD}, nil
}

func buildMultipart(prompt string, photo []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("prompt", prompt); err != nil {
		return nil, "", err
	}
	part, err := w.CreateFormFile("reference_photo", "reference.jpg")
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(photo); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func truncateForLog(raw []byte) string {
	const max = 300
	s := string(raw)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
