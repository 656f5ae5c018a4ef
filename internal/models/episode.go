package models

import (
	"time"

	"github.com/google/uuid"
)

// EpisodeFeedback is the user's reaction to a delivered episode.
type EpisodeFeedback string

const (
	FeedbackLike    EpisodeFeedback = "like"
	FeedbackNeutral EpisodeFeedback = "neutral"
	FeedbackDislike EpisodeFeedback = "dislike"
	FeedbackNone    EpisodeFeedback = "none"
)

// ValidFeedback reports whether f is one of the accepted feedback values.
func ValidFeedback(f EpisodeFeedback) bool {
	switch f {
	case FeedbackLike, FeedbackNeutral, FeedbackDislike, FeedbackNone:
		return true
	}
	return false
}

// Episode is one delivered day of an arc: generated prose plus the
// personalized image. EpisodeNumber is 1-based and unique per arc.
type Episode struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	ArcID            uuid.UUID       `json:"arcId" db:"arc_id"`
	EpisodeNumber    int             `json:"episodeNumber" db:"episode_number"`
	Title            string          `json:"title" db:"title"`
	Text             string          `json:"text" db:"text"`
	ImageURL         string          `json:"imageUrl" db:"image_url"`
	SceneDescription string          `json:"sceneDescription" db:"scene_description"`
	Feedback         EpisodeFeedback `json:"feedback" db:"feedback"`
	TextProvider     string          `json:"textProvider" db:"text_provider"`
	ImageProvider    string          `json:"imageProvider" db:"image_provider"`
	TextDurationMs   int64           `json:"textDurationMs" db:"text_duration_ms"`
	ImageDurationMs  int64           `json:"imageDurationMs" db:"image_duration_ms"`
	CostEstimateUSD  float64         `json:"costEstimateUsd" db:"cost_estimate_usd"`
	DeliveredAt      time.Time       `json:"deliveredAt" db:"delivered_at"`
}
