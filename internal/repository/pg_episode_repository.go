package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"saga-server/internal/models"
)

// Compile-time check to ensure pgEpisodeRepository implements the interface
var _ EpisodeRepository = (*pgEpisodeRepository)(nil)

const (
	createEpisodeQuery = `
        INSERT INTO episodes (
            id, arc_id, episode_number, title, text, image_url, scene_description,
            feedback, text_provider, image_provider, text_duration_ms, image_duration_ms,
            cost_estimate_usd, delivered_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
    `
	getEpisodeByArcAndNumberQuery = `
        SELECT id, arc_id, episode_number, title, text, image_url, scene_description,
               feedback, text_provider, image_provider, text_duration_ms, image_duration_ms,
               cost_estimate_usd, delivered_at
        FROM episodes WHERE arc_id = $1 AND episode_number = $2
    `
	listEpisodesByArcQuery = `
        SELECT id, arc_id, episode_number, title, text, image_url, scene_description,
               feedback, text_provider, image_provider, text_duration_ms, image_duration_ms,
               cost_estimate_usd, delivered_at
        FROM episodes WHERE arc_id = $1 ORDER BY episode_number
    `
	updateEpisodeForRegenerationQuery = `
        UPDATE episodes SET
            title = $2, text = $3, image_url = $4, scene_description = $5,
            text_provider = $6, image_provider = $7, text_duration_ms = $8,
            image_duration_ms = $9, cost_estimate_usd = $10, delivered_at = $11
        WHERE id = $1
    `
	updateEpisodeFeedbackQuery = `
        UPDATE episodes SET feedback = $2 WHERE id = $1
    `
)

type pgEpisodeRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgEpisodeRepository creates a PostgreSQL-backed EpisodeRepository.
func NewPgEpisodeRepository(db DBTX, logger *zap.Logger) EpisodeRepository {
	return &pgEpisodeRepository{
		db:     db,
		logger: logger.Named("PgEpisodeRepo"),
	}
}

func (r *pgEpisodeRepository) Create(ctx context.Context, ep *models.Episode) error {
	if ep.ID == uuid.Nil {
		ep.ID = uuid.New()
	}
	if ep.DeliveredAt.IsZero() {
		ep.DeliveredAt = time.Now().UTC()
	}
	if ep.Feedback == "" {
		ep.Feedback = models.FeedbackNone
	}

	_, err := r.db.Exec(ctx, createEpisodeQuery,
		ep.ID, ep.ArcID, ep.EpisodeNumber, ep.Title, ep.Text, ep.ImageURL, ep.SceneDescription,
		ep.Feedback, ep.TextProvider, ep.ImageProvider, ep.TextDurationMs, ep.ImageDurationMs,
		ep.CostEstimateUSD, ep.DeliveredAt)
	if err != nil {
		r.logger.Error("Failed to create episode",
			zap.String("arc_id", ep.ArcID.String()),
			zap.Int("episode_number", ep.EpisodeNumber),
			zap.Error(err))
		return fmt.Errorf("failed to create episode %d for arc %s: %w", ep.EpisodeNumber, ep.ArcID, err)
	}

	r.logger.Debug("Episode created",
		zap.String("episode_id", ep.ID.String()),
		zap.Int("episode_number", ep.EpisodeNumber))
	return nil
}

func (r *pgEpisodeRepository) GetByArcAndNumber(ctx context.Context, arcID uuid.UUID, episodeNumber int) (*models.Episode, error) {
	var ep models.Episode
	err := pgxscan.Get(ctx, r.db, &ep, getEpisodeByArcAndNumberQuery, arcID, episodeNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: episode %d of arc %s", models.ErrEpisodeNotFound, episodeNumber, arcID)
		}
		r.logger.Error("Error getting episode",
			zap.String("arc_id", arcID.String()),
			zap.Int("episode_number", episodeNumber),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get episode %d of arc %s: %w", episodeNumber, arcID, err)
	}
	return &ep, nil
}

func (r *pgEpisodeRepository) ListByArc(ctx context.Context, arcID uuid.UUID) ([]*models.Episode, error) {
	var episodes []*models.Episode
	err := pgxscan.Select(ctx, r.db, &episodes, listEpisodesByArcQuery, arcID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []*models.Episode{}, nil
		}
		r.logger.Error("Error listing episodes", zap.String("arc_id", arcID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list episodes for arc %s: %w", arcID, err)
	}
	if episodes == nil {
		episodes = []*models.Episode{}
	}
	return episodes, nil
}

func (r *pgEpisodeRepository) UpdateForRegeneration(ctx context.Context, ep *models.Episode) error {
	cmdTag, err := r.db.Exec(ctx, updateEpisodeForRegenerationQuery,
		ep.ID, ep.Title, ep.Text, ep.ImageURL, ep.SceneDescription,
		ep.TextProvider, ep.ImageProvider, ep.TextDurationMs, ep.ImageDurationMs,
		ep.CostEstimateUSD, ep.DeliveredAt)
	if err != nil {
		r.logger.Error("Error updating regenerated episode", zap.String("episode_id", ep.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to update regenerated episode %s: %w", ep.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: episode %s", models.ErrEpisodeNotFound, ep.ID)
	}
	r.logger.Debug("Episode regenerated in place", zap.String("episode_id", ep.ID.String()))
	return nil
}

func (r *pgEpisodeRepository) UpdateFeedback(ctx context.Context, id uuid.UUID, feedback models.EpisodeFeedback) error {
	cmdTag, err := r.db.Exec(ctx, updateEpisodeFeedbackQuery, id, feedback)
	if err != nil {
		r.logger.Error("Error updating episode feedback", zap.String("episode_id", id.String()), zap.Error(err))
		return fmt.Errorf("failed to update feedback for episode %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: episode %s", models.ErrEpisodeNotFound, id)
	}
	return nil
}
