// Package quota enforces the one-episode-per-day limit for free users.
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Tracker answers whether a user already generated an episode today.
type Tracker interface {
	HasGeneratedToday(ctx context.Context, userID uuid.UUID) (bool, error)
	RecordGeneration(ctx context.Context, userID uuid.UUID) error
}

// Keys carry the calendar day so entries for different days never collide;
// the TTL only has to outlive the day they mark.
const quotaTTL = 48 * time.Hour

// Compile-time check to ensure redisTracker implements Tracker
var _ Tracker = (*redisTracker)(nil)

type redisTracker struct {
	client *redis.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewRedisTracker creates a Redis-backed quota Tracker.
func NewRedisTracker(client *redis.Client, logger *zap.Logger) Tracker {
	return &redisTracker{
		client: client,
		logger: logger.Named("QuotaTracker"),
		now:    time.Now,
	}
}

func quotaKey(userID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("quota:%s:%s", userID, day.UTC().Format("2006-01-02"))
}

func (t *redisTracker) HasGeneratedToday(ctx context.Context, userID uuid.UUID) (bool, error) {
	key := quotaKey(userID, t.now())
	_, err := t.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		t.logger.Error("Failed to check daily quota", zap.String("user_id", userID.String()), zap.Error(err))
		return false, fmt.Errorf("failed to check daily quota for user %s: %w", userID, err)
	}
	return true, nil
}

func (t *redisTracker) RecordGeneration(ctx context.Context, userID uuid.UUID) error {
	key := quotaKey(userID, t.now())
	if err := t.client.Set(ctx, key, "1", quotaTTL).Err(); err != nil {
		t.logger.Error("Failed to record daily quota", zap.String("user_id", userID.String()), zap.Error(err))
		return fmt.Errorf("failed to record daily quota for user %s: %w", userID, err)
	}
	t.logger.Debug("Daily quota recorded", zap.String("user_id", userID.String()))
	return nil
}
