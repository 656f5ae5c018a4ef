package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"saga-server/internal/catalog"
	"saga-server/internal/messaging"
	"saga-server/internal/models"
	"saga-server/internal/narrative"
	"saga-server/internal/provider"
	"saga-server/internal/provider/image"
	"saga-server/internal/provider/text"
	"saga-server/internal/quota"
	"saga-server/internal/repository"
	"saga-server/internal/scene"
)

// TextGenerator produces episode prose from a continuity context.
type TextGenerator interface {
	Generate(ctx context.Context, nc *narrative.Context) (provider.Outcome[text.Result], error)
}

// ImageGenerator produces the episode image.
type ImageGenerator interface {
	Generate(ctx context.Context, req image.Request) (provider.Outcome[image.Result], error)
}

// PhotoFetcher pulls the user's reference photo bytes from its stored URL.
type PhotoFetcher interface {
	Fetch(ctx context.Context, remoteURL string) ([]byte, error)
}

// GenerateRequest is one episode generation call. Regenerate asks for an
// in-place replacement of an already delivered episode; it is honored for
// premium users only.
type GenerateRequest struct {
	ArcID      uuid.UUID
	DayNumber  int
	User       *models.User
	Overrides  *narrative.NameOverrides
	Regenerate bool
}

// EpisodeService drives the full generation flow: continuity context,
// text, scene, image, persistence and arc progression.
type EpisodeService struct {
	arcs     repository.ArcRepository
	episodes repository.EpisodeRepository
	photos   repository.PhotoRepository
	catalog  *catalog.Catalog
	builder  *narrative.Builder
	composer *scene.Composer
	texts    TextGenerator
	images   ImageGenerator
	fetcher  PhotoFetcher
	quota    quota.Tracker
	events   messaging.EpisodeEventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// Deps bundles the collaborators of EpisodeService.
type Deps struct {
	Arcs     repository.ArcRepository
	Episodes repository.EpisodeRepository
	Photos   repository.PhotoRepository
	Catalog  *catalog.Catalog
	Builder  *narrative.Builder
	Composer *scene.Composer
	Texts    TextGenerator
	Images   ImageGenerator
	Fetcher  PhotoFetcher
	Quota    quota.Tracker
	Events   messaging.EpisodeEventPublisher
	Logger   *zap.Logger
}

func NewEpisodeService(d Deps) *EpisodeService {
	return &EpisodeService{
		arcs:     d.Arcs,
		episodes: d.Episodes,
		photos:   d.Photos,
		catalog:  d.Catalog,
		builder:  d.Builder,
		composer: d.Composer,
		texts:    d.Texts,
		images:   d.Images,
		fetcher:  d.Fetcher,
		quota:    d.Quota,
		events:   d.Events,
		logger:   d.Logger.Named("EpisodeService"),
		now:      time.Now,
	}
}

// StartArc begins a new serialized story for the user. A user may run
// only one active arc at a time.
func (s *EpisodeService) StartArc(ctx context.Context, userID uuid.UUID, templateID string) (*models.StoryArc, error) {
	tpl := s.catalog.GetByID(templateID)
	if tpl == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrTemplateNotFound, templateID)
	}

	existing, err := s.arcs.GetActiveByUser(ctx, userID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to check active arc: %w", err)
	}
	if existing != nil {
		return nil, models.NewStateError(models.ReasonActiveArcExists,
			"user %s already runs arc %s", userID, existing.ID)
	}

	arc := &models.StoryArc{
		ID:         uuid.New(),
		UserID:     userID,
		TemplateID: tpl.ID,
		Status:     models.ArcStatusActive,
		CurrentDay: 1,
		TotalDays:  len(tpl.Outline),
		StartedAt:  s.now().UTC(),
	}
	if err := s.arcs.Create(ctx, arc); err != nil {
		return nil, err
	}

	s.logger.Info("Story arc started",
		zap.String("arc_id", arc.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("template_id", tpl.ID))
	return arc, nil
}

// GetArc loads one arc.
func (s *EpisodeService) GetArc(ctx context.Context, arcID uuid.UUID) (*models.StoryArc, error) {
	return s.arcs.GetByID(ctx, arcID)
}

// ListEpisodes returns all delivered episodes of an arc in order.
func (s *EpisodeService) ListEpisodes(ctx context.Context, arcID uuid.UUID) ([]*models.Episode, error) {
	if _, err := s.arcs.GetByID(ctx, arcID); err != nil {
		return nil, err
	}
	return s.episodes.ListByArc(ctx, arcID)
}

// RecordFeedback stores the user's reaction to an episode.
func (s *EpisodeService) RecordFeedback(ctx context.Context, episodeID uuid.UUID, feedback models.EpisodeFeedback) error {
	if !models.ValidFeedback(feedback) {
		return fmt.Errorf("invalid feedback value %q", feedback)
	}
	return s.episodes.UpdateFeedback(ctx, episodeID, feedback)
}

// GenerateEpisode runs the generation flow for one day of an arc.
//
// Calling it again for an already delivered day returns the stored
// episode without touching any provider. Premium users may pass
// Regenerate to replace a delivered episode in place.
func (s *EpisodeService) GenerateEpisode(ctx context.Context, req GenerateRequest) (*models.Episode, error) {
	log := s.logger.With(
		zap.String("arc_id", req.ArcID.String()),
		zap.Int("day", req.DayNumber))

	arc, err := s.arcs.GetByID(ctx, req.ArcID)
	if err != nil {
		return nil, err
	}

	if !arc.IsActive() {
		if arc.Status == models.ArcStatusCompleted {
			return nil, models.NewStateError(models.ReasonArcCompleted,
				"arc %s is completed", arc.ID)
		}
		return nil, models.NewStateError(models.ReasonArcNotActive,
			"arc %s is %s", arc.ID, arc.Status)
	}

	if req.DayNumber < 1 || req.DayNumber > arc.TotalDays {
		return nil, models.NewStateError(models.ReasonDayOutOfRange,
			"day %d is outside 1..%d", req.DayNumber, arc.TotalDays)
	}

	// Delivered days are idempotent: no provider calls, no quota charge.
	existing, err := s.episodes.GetByArcAndNumber(ctx, req.ArcID, req.DayNumber)
	if err != nil && !errors.Is(err, models.ErrNotFound) && !errors.Is(err, models.ErrEpisodeNotFound) {
		return nil, err
	}
	regenerating := false
	if existing != nil {
		if !req.Regenerate || !req.User.IsPremium {
			log.Debug("Episode already delivered, returning stored copy")
			return existing, nil
		}
		regenerating = true
	}

	if !regenerating && req.DayNumber != arc.CurrentDay {
		return nil, models.NewStateError(models.ReasonDayOutOfRange,
			"day %d requested but arc is on day %d", req.DayNumber, arc.CurrentDay)
	}

	if !req.User.IsPremium {
		generated, err := s.quota.HasGeneratedToday(ctx, req.User.ID)
		if err != nil {
			return nil, err
		}
		if generated {
			return nil, models.NewStateError(models.ReasonQuotaExceeded,
				"user %s already generated an episode today", req.User.ID)
		}
	}

	tpl := s.catalog.GetByID(arc.TemplateID)
	if tpl == nil {
		return nil, fmt.Errorf("%w: arc %s references template %s", models.ErrTemplateNotFound, arc.ID, arc.TemplateID)
	}
	outline := tpl.OutlineForDay(req.DayNumber)
	if outline == nil {
		return nil, models.NewStateError(models.ReasonDayOutOfRange,
			"template %s has no outline for day %d", tpl.ID, req.DayNumber)
	}

	history, err := s.episodes.ListByArc(ctx, req.ArcID)
	if err != nil {
		return nil, err
	}
	past := make([]models.Episode, 0, len(history))
	for _, ep := range history {
		if ep.EpisodeNumber < req.DayNumber {
			past = append(past, *ep)
		}
	}

	nc := s.builder.Build(tpl, outline, past, req.Overrides, req.User.Gender)

	textOutcome, err := s.texts.Generate(ctx, nc)
	if err != nil {
		return nil, err
	}
	story := textOutcome.Result

	composed := s.composer.Compose(story.SceneDescription)

	imageOutcome, err := s.images.Generate(ctx, image.Request{
		Scene:          composed,
		VisualStyle:    tpl.VisualStyle,
		Gender:         req.User.Gender,
		ReferencePhoto: s.referencePhoto(ctx, req.User.ID, log),
	})
	if err != nil {
		return nil, err
	}

	episode := &models.Episode{
		ID:               uuid.New(),
		ArcID:            arc.ID,
		EpisodeNumber:    req.DayNumber,
		Title:            story.Title,
		Text:             story.Text,
		ImageURL:         imageOutcome.Result.URL,
		SceneDescription: story.SceneDescription,
		Feedback:         models.FeedbackNone,
		TextProvider:     textOutcome.Provider,
		ImageProvider:    imageOutcome.Provider,
		TextDurationMs:   textOutcome.Elapsed.Milliseconds(),
		ImageDurationMs:  imageOutcome.Elapsed.Milliseconds(),
		CostEstimateUSD:  story.EstimatedCostUSD + imageOutcome.Result.EstimatedCostUSD,
		DeliveredAt:      s.now().UTC(),
	}

	arcCompleted := false
	if regenerating {
		episode.ID = existing.ID
		episode.Feedback = existing.Feedback
		if err := s.episodes.UpdateForRegeneration(ctx, episode); err != nil {
			return nil, err
		}
	} else {
		if err := s.episodes.Create(ctx, episode); err != nil {
			return nil, err
		}

		if err := s.arcs.UpdateProgress(ctx, arc.ID, req.DayNumber+1); err != nil {
			return nil, err
		}
		if req.DayNumber == arc.TotalDays {
			arcCompleted = true
			if err := s.arcs.Complete(ctx, arc.ID, s.now().UTC()); err != nil {
				return nil, err
			}
			log.Info("Story arc completed after final episode")
		}

		if err := s.quota.RecordGeneration(ctx, req.User.ID); err != nil {
			// The episode is already delivered; a quota write failure
			// must not surface to the user.
			log.Warn("Failed to record daily quota", zap.Error(err))
		}
	}

	s.publishDelivered(ctx, arc, episode, arcCompleted, log)

	log.Info("Episode delivered",
		zap.String("episode_id", episode.ID.String()),
		zap.String("text_provider", episode.TextProvider),
		zap.String("image_provider", episode.ImageProvider),
		zap.Bool("regenerated", regenerating))
	return episode, nil
}

// referencePhoto resolves the user's reference photo bytes. Any failure
// degrades to cinematic (no identity) generation instead of failing the
// episode.
func (s *EpisodeService) referencePhoto(ctx context.Context, userID uuid.UUID, log *zap.Logger) []byte {
	photoURL, err := s.photos.GetActivePhotoURL(ctx, userID)
	if err != nil {
		log.Warn("Failed to look up reference photo", zap.Error(err))
		return nil
	}
	if photoURL == "" {
		return nil
	}
	data, err := s.fetcher.Fetch(ctx, photoURL)
	if err != nil {
		log.Warn("Failed to fetch reference photo, generating without identity", zap.Error(err))
		return nil
	}
	return data
}

func (s *EpisodeService) publishDelivered(ctx context.Context, arc *models.StoryArc, ep *models.Episode, completed bool, log *zap.Logger) {
	if s.events == nil {
		return
	}
	err := s.events.PublishEpisodeDelivered(ctx, messaging.EpisodeDeliveredEvent{
		ArcID:         arc.ID,
		UserID:        arc.UserID,
		EpisodeID:     ep.ID,
		EpisodeNumber: ep.EpisodeNumber,
		Title:         ep.Title,
		ArcCompleted:  completed,
		DeliveredAt:   ep.DeliveredAt,
	})
	if err != nil {
		// Event delivery is best effort.
		log.Warn("Failed to publish episode delivered event", zap.Error(err))
	}
}
