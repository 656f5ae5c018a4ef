package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Compile-time check to ensure pgPhotoRepository implements the interface
var _ PhotoRepository = (*pgPhotoRepository)(nil)

const getActivePhotoURLQuery = `
    SELECT photo_url FROM reference_photos
    WHERE user_id = $1 AND is_active = TRUE
    ORDER BY uploaded_at DESC LIMIT 1
`

type pgPhotoRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgPhotoRepository creates a PostgreSQL-backed PhotoRepository.
func NewPgPhotoRepository(db DBTX, logger *zap.Logger) PhotoRepository {
	return &pgPhotoRepository{
		db:     db,
		logger: logger.Named("PgPhotoRepo"),
	}
}

// GetActivePhotoURL returns the most recently uploaded active photo URL,
// or an empty string when the user has none.
func (r *pgPhotoRepository) GetActivePhotoURL(ctx context.Context, userID uuid.UUID) (string, error) {
	var photoURL string
	err := r.db.QueryRow(ctx, getActivePhotoURLQuery, userID).Scan(&photoURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("No active reference photo for user", zap.String("user_id", userID.String()))
			return "", nil
		}
		r.logger.Error("Error querying reference photo", zap.String("user_id", userID.String()), zap.Error(err))
		return "", fmt.Errorf("failed to get reference photo for user %s: %w", userID, err)
	}
	return photoURL, nil
}
