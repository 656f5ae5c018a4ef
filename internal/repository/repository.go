package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"saga-server/internal/models"
)

// DBTX is the subset of pgxpool.Pool / pgx.Tx the repositories need.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ArcRepository persists story arcs.
type ArcRepository interface {
	Create(ctx context.Context, arc *models.StoryArc) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.StoryArc, error)
	// GetActiveByUser returns models.ErrNotFound when the user has no active arc.
	GetActiveByUser(ctx context.Context, userID uuid.UUID) (*models.StoryArc, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, currentDay int) error
	Complete(ctx context.Context, id uuid.UUID, completedAt time.Time) error
}

// EpisodeRepository persists delivered episodes.
type EpisodeRepository interface {
	Create(ctx context.Context, ep *models.Episode) error
	GetByArcAndNumber(ctx context.Context, arcID uuid.UUID, episodeNumber int) (*models.Episode, error)
	ListByArc(ctx context.Context, arcID uuid.UUID) ([]*models.Episode, error)
	// UpdateForRegeneration replaces the generated content of an existing
	// episode row in place, keeping its identity and feedback.
	UpdateForRegeneration(ctx context.Context, ep *models.Episode) error
	UpdateFeedback(ctx context.Context, id uuid.UUID, feedback models.EpisodeFeedback) error
}

// PhotoRepository resolves the user's active reference photo.
type PhotoRepository interface {
	// GetActivePhotoURL returns an empty string (no error) when the user
	// has not uploaded a reference photo.
	GetActivePhotoURL(ctx context.Context, userID uuid.UUID) (string, error)
}
