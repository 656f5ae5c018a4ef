// Package blobstore persists generated images under a base URL the system
// owns, so episode image URLs never point at ephemeral provider links.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var log = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Str("component", "blobstore").Logger()

// ErrImageSaveFailed wraps any failure to persist image bytes.
var ErrImageSaveFailed = errors.New("image save failed")

// maxFetchBytes bounds how much we will pull from a provider URL.
const maxFetchBytes = 20 << 20

// Store writes image files to local disk and serves them under a public
// base URL. The save path is expected to be a mounted volume.
type Store struct {
	savePath   string
	baseURL    string
	httpClient *http.Client
}

// New validates the configuration and ensures the save directory exists.
func New(savePath, publicBaseURL string) (*Store, error) {
	if savePath == "" {
		return nil, errors.New("blobstore: save path is not configured")
	}
	if publicBaseURL == "" {
		return nil, errors.New("blobstore: public base URL is not configured")
	}
	if err := os.MkdirAll(savePath, 0o755); err != nil {
		return nil, fmt.Errorf("blobstore: failed to create save path %s: %w", savePath, err)
	}
	return &Store{
		savePath:   savePath,
		baseURL:    strings.TrimSuffix(publicBaseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// PublicURL joins a relative file name onto the store's base URL.
func (s *Store) PublicURL(fileName string) string {
	return s.baseURL + "/" + strings.TrimPrefix(fileName, "/")
}

// Fetch downloads raw bytes from a remote URL without persisting them.
// Used to pull the user's reference photo ahead of identity generation.
func (s *Store) Fetch(ctx context.Context, remoteURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remoteURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", remoteURL, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
}

// SaveImage persists raw image bytes and returns the owned public URL.
func (s *Store) SaveImage(data []byte, ext string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty image data", ErrImageSaveFailed)
	}
	if ext == "" {
		ext = "jpg"
	}
	fileName := fmt.Sprintf("%s.%s", uuid.NewString(), strings.TrimPrefix(ext, "."))
	filePath := filepath.Join(s.savePath, fileName)

	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		log.Error().Err(err).Str("path", filePath).Msg("Failed to write image file")
		return "", fmt.Errorf("%w: %v", ErrImageSaveFailed, err)
	}

	url := s.baseURL + "/" + fileName
	log.Info().Str("path", filePath).Str("url", url).Int("size_bytes", len(data)).Msg("Image persisted")
	return url, nil
}

// FetchAndStore downloads a provider-hosted image and persists it locally,
// returning the owned URL. Provider URLs are often short-lived signed
// links; nothing downstream may depend on them.
func (s *Store) FetchAndStore(ctx context.Context, remoteURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remoteURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageSaveFailed, err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetch failed: %v", ErrImageSaveFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: fetch returned status %d", ErrImageSaveFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("%w: reading fetch body: %v", ErrImageSaveFailed, err)
	}

	return s.SaveImage(data, extFromContentType(resp.Header.Get("Content-Type")))
}

func extFromContentType(ct string) string {
	switch {
	case strings.Contains(ct, "png"):
		return "png"
	case strings.Contains(ct, "webp"):
		return "webp"
	default:
		return "jpg"
	}
}
