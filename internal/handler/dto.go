package handler

import (
	"time"

	"saga-server/internal/models"
	"saga-server/internal/narrative"
)

// apiError is the standardized error response body. Reason carries the
// machine-readable state code when the rejection came from arc
// progression rules.
type apiError struct {
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

type startArcRequest struct {
	TemplateID string `json:"templateId" binding:"required"`
}

type generateEpisodeRequest struct {
	DayNumber  int                      `json:"dayNumber" binding:"required,min=1"`
	Regenerate bool                     `json:"regenerate"`
	Overrides  *narrative.NameOverrides `json:"nameOverrides,omitempty"`
}

type feedbackRequest struct {
	Feedback string `json:"feedback" binding:"required"`
}

type arcResponse struct {
	ID          string     `json:"id"`
	TemplateID  string     `json:"templateId"`
	Status      string     `json:"status"`
	CurrentDay  int        `json:"currentDay"`
	TotalDays   int        `json:"totalDays"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func toArcResponse(arc *models.StoryArc) arcResponse {
	return arcResponse{
		ID:          arc.ID.String(),
		TemplateID:  arc.TemplateID,
		Status:      string(arc.Status),
		CurrentDay:  arc.CurrentDay,
		TotalDays:   arc.TotalDays,
		StartedAt:   arc.StartedAt,
		CompletedAt: arc.CompletedAt,
	}
}

type episodeResponse struct {
	ID            string    `json:"id"`
	ArcID         string    `json:"arcId"`
	EpisodeNumber int       `json:"episodeNumber"`
	Title         string    `json:"title"`
	Text          string    `json:"text"`
	ImageURL      string    `json:"imageUrl"`
	Feedback      string    `json:"feedback"`
	DeliveredAt   time.Time `json:"deliveredAt"`
}

func toEpisodeResponse(ep *models.Episode) episodeResponse {
	return episodeResponse{
		ID:            ep.ID.String(),
		ArcID:         ep.ArcID.String(),
		EpisodeNumber: ep.EpisodeNumber,
		Title:         ep.Title,
		Text:          ep.Text,
		ImageURL:      ep.ImageURL,
		Feedback:      string(ep.Feedback),
		DeliveredAt:   ep.DeliveredAt,
	}
}

type templateSummary struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Genre         string   `json:"genre"`
	Emotion       string   `json:"emotion"`
	Summary       string   `json:"summary"`
	ThemeKeywords []string `json:"themeKeywords"`
	TotalDays     int      `json:"totalDays"`
}

func toTemplateSummary(t *models.StoryTemplate) templateSummary {
	return templateSummary{
		ID:            t.ID,
		Title:         t.Title,
		Genre:         t.Genre,
		Emotion:       t.Emotion,
		Summary:       t.Summary,
		ThemeKeywords: t.ThemeKeywords,
		TotalDays:     len(t.Outline),
	}
}

func toTemplateSummaries(ts []models.StoryTemplate) []templateSummary {
	out := make([]templateSummary, 0, len(ts))
	for i := range ts {
		out = append(out, toTemplateSummary(&ts[i]))
	}
	return out
}
