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

// Compile-time check to ensure pgArcRepository implements the interface
var _ ArcRepository = (*pgArcRepository)(nil)

const (
	createArcQuery = `
        INSERT INTO story_arcs (id, user_id, template_id, status, current_day, total_days, started_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	getArcByIDQuery = `
        SELECT id, user_id, template_id, status, current_day, total_days, started_at, completed_at
        FROM story_arcs WHERE id = $1
    `
	getActiveArcByUserQuery = `
        SELECT id, user_id, template_id, status, current_day, total_days, started_at, completed_at
        FROM story_arcs WHERE user_id = $1 AND status = 'active'
    `
	updateArcProgressQuery = `
        UPDATE story_arcs SET current_day = $2 WHERE id = $1
    `
	completeArcQuery = `
        UPDATE story_arcs SET status = 'completed', completed_at = $2 WHERE id = $1
    `
)

type pgArcRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgArcRepository creates a PostgreSQL-backed ArcRepository.
func NewPgArcRepository(db DBTX, logger *zap.Logger) ArcRepository {
	return &pgArcRepository{
		db:     db,
		logger: logger.Named("PgArcRepo"),
	}
}

func (r *pgArcRepository) Create(ctx context.Context, arc *models.StoryArc) error {
	if arc.ID == uuid.Nil {
		arc.ID = uuid.New()
	}
	if arc.StartedAt.IsZero() {
		arc.StartedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(ctx, createArcQuery,
		arc.ID, arc.UserID, arc.TemplateID, arc.Status, arc.CurrentDay, arc.TotalDays, arc.StartedAt)
	if err != nil {
		r.logger.Error("Failed to create story arc",
			zap.String("user_id", arc.UserID.String()),
			zap.String("template_id", arc.TemplateID),
			zap.Error(err))
		return fmt.Errorf("failed to create story arc: %w", err)
	}

	r.logger.Debug("Story arc created",
		zap.String("arc_id", arc.ID.String()),
		zap.String("template_id", arc.TemplateID))
	return nil
}

func (r *pgArcRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StoryArc, error) {
	var arc models.StoryArc
	err := pgxscan.Get(ctx, r.db, &arc, getArcByIDQuery, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: story arc %s", models.ErrArcNotFound, id)
		}
		r.logger.Error("Error getting story arc by ID", zap.String("arc_id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get story arc %s: %w", id, err)
	}
	return &arc, nil
}

func (r *pgArcRepository) GetActiveByUser(ctx context.Context, userID uuid.UUID) (*models.StoryArc, error) {
	var arc models.StoryArc
	err := pgxscan.Get(ctx, r.db, &arc, getActiveArcByUserQuery, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Error getting active arc for user", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get active arc for user %s: %w", userID, err)
	}
	return &arc, nil
}

func (r *pgArcRepository) UpdateProgress(ctx context.Context, id uuid.UUID, currentDay int) error {
	cmdTag, err := r.db.Exec(ctx, updateArcProgressQuery, id, currentDay)
	if err != nil {
		r.logger.Error("Error updating arc progress", zap.String("arc_id", id.String()), zap.Error(err))
		return fmt.Errorf("failed to update progress for arc %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: story arc %s", models.ErrArcNotFound, id)
	}
	return nil
}

func (r *pgArcRepository) Complete(ctx context.Context, id uuid.UUID, completedAt time.Time) error {
	cmdTag, err := r.db.Exec(ctx, completeArcQuery, id, completedAt)
	if err != nil {
		r.logger.Error("Error completing arc", zap.String("arc_id", id.String()), zap.Error(err))
		return fmt.Errorf("failed to complete arc %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: story arc %s", models.ErrArcNotFound, id)
	}
	r.logger.Info("Story arc completed", zap.String("arc_id", id.String()))
	return nil
}
