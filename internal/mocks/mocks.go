// Package mocks holds hand-written testify mocks for the service layer
// collaborators.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"saga-server/internal/messaging"
	"saga-server/internal/models"
	"saga-server/internal/narrative"
	"saga-server/internal/provider"
	"saga-server/internal/provider/image"
	"saga-server/internal/provider/text"
	"saga-server/internal/quota"
	"saga-server/internal/repository"
)

// MockArcRepository is a mock type for repository.ArcRepository.
type MockArcRepository struct {
	mock.Mock
}

var _ repository.ArcRepository = (*MockArcRepository)(nil)

func (m *MockArcRepository) Create(ctx context.Context, arc *models.StoryArc) error {
	args := m.Called(ctx, arc)
	return args.Error(0)
}

func (m *MockArcRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StoryArc, error) {
	args := m.Called(ctx, id)
	if arc, ok := args.Get(0).(*models.StoryArc); ok {
		return arc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockArcRepository) GetActiveByUser(ctx context.Context, userID uuid.UUID) (*models.StoryArc, error) {
	args := m.Called(ctx, userID)
	if arc, ok := args.Get(0).(*models.StoryArc); ok {
		return arc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockArcRepository) UpdateProgress(ctx context.Context, id uuid.UUID, currentDay int) error {
	args := m.Called(ctx, id, currentDay)
	return args.Error(0)
}

func (m *MockArcRepository) Complete(ctx context.Context, id uuid.UUID, completedAt time.Time) error {
	args := m.Called(ctx, id, completedAt)
	return args.Error(0)
}

// MockEpisodeRepository is a mock type for repository.EpisodeRepository.
type MockEpisodeRepository struct {
	mock.Mock
}

var _ repository.EpisodeRepository = (*MockEpisodeRepository)(nil)

func (m *MockEpisodeRepository) Create(ctx context.Context, ep *models.Episode) error {
	args := m.Called(ctx, ep)
	return args.Error(0)
}

func (m *MockEpisodeRepository) GetByArcAndNumber(ctx context.Context, arcID uuid.UUID, episodeNumber int) (*models.Episode, error) {
	args := m.Called(ctx, arcID, episodeNumber)
	if ep, ok := args.Get(0).(*models.Episode); ok {
		return ep, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEpisodeRepository) ListByArc(ctx context.Context, arcID uuid.UUID) ([]*models.Episode, error) {
	args := m.Called(ctx, arcID)
	if rf, ok := args.Get(0).(func(context.Context, uuid.UUID) []*models.Episode); ok {
		return rf(ctx, arcID), args.Error(1)
	}
	if eps, ok := args.Get(0).([]*models.Episode); ok {
		return eps, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEpisodeRepository) UpdateForRegeneration(ctx context.Context, ep *models.Episode) error {
	args := m.Called(ctx, ep)
	return args.Error(0)
}

func (m *MockEpisodeRepository) UpdateFeedback(ctx context.Context, id uuid.UUID, feedback models.EpisodeFeedback) error {
	args := m.Called(ctx, id, feedback)
	return args.Error(0)
}

// MockPhotoRepository is a mock type for repository.PhotoRepository.
type MockPhotoRepository struct {
	mock.Mock
}

var _ repository.PhotoRepository = (*MockPhotoRepository)(nil)

func (m *MockPhotoRepository) GetActivePhotoURL(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

// MockQuotaTracker is a mock type for quota.Tracker.
type MockQuotaTracker struct {
	mock.Mock
}

var _ quota.Tracker = (*MockQuotaTracker)(nil)

func (m *MockQuotaTracker) HasGeneratedToday(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockQuotaTracker) RecordGeneration(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockEpisodeEventPublisher is a mock type for messaging.EpisodeEventPublisher.
type MockEpisodeEventPublisher struct {
	mock.Mock
}

var _ messaging.EpisodeEventPublisher = (*MockEpisodeEventPublisher)(nil)

func (m *MockEpisodeEventPublisher) PublishEpisodeDelivered(ctx context.Context, event messaging.EpisodeDeliveredEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockTextGenerator is a mock type for service.TextGenerator.
type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) Generate(ctx context.Context, nc *narrative.Context) (provider.Outcome[text.Result], error) {
	args := m.Called(ctx, nc)
	if out, ok := args.Get(0).(provider.Outcome[text.Result]); ok {
		return out, args.Error(1)
	}
	return provider.Outcome[text.Result]{}, args.Error(1)
}

// MockImageGenerator is a mock type for service.ImageGenerator.
type MockImageGenerator struct {
	mock.Mock
}

func (m *MockImageGenerator) Generate(ctx context.Context, req image.Request) (provider.Outcome[image.Result], error) {
	args := m.Called(ctx, req)
	if out, ok := args.Get(0).(provider.Outcome[image.Result]); ok {
		return out, args.Error(1)
	}
	return provider.Outcome[image.Result]{}, args.Error(1)
}

// MockPhotoFetcher is a mock type for service.PhotoFetcher.
type MockPhotoFetcher struct {
	mock.Mock
}

func (m *MockPhotoFetcher) Fetch(ctx context.Context, remoteURL string) ([]byte, error) {
	args := m.Called(ctx, remoteURL)
	if data, ok := args.Get(0).([]byte); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}
