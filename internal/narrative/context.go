// Package narrative assembles the bounded continuity context that prompt
// construction feeds into the text providers. Everything here is
// deterministic and side-effect-free: same template, same episodes, same
// output.
package narrative

import (
	"saga-server/internal/models"
)

const (
	// maxRecentEpisodes bounds how many prior episodes the continuity
	// block summarizes.
	maxRecentEpisodes = 3

	// shortSummaryBudget caps each recent-episode summary.
	shortSummaryBudget = 220

	// previousSummaryBudget caps the longer summary of the immediately
	// preceding episode.
	previousSummaryBudget = 400
)

// NameOverrides carries user-supplied character names. Empty fields fall
// through to the heuristic and table lookups.
type NameOverrides struct {
	Protagonist string `json:"protagonist,omitempty"`
	Counterpart string `json:"counterpart,omitempty"`
}

// EpisodeSummary is one entry of the continuity block.
type EpisodeSummary struct {
	EpisodeNumber int
	Title         string
	Summary       string
}

// Context is the structured bundle handed to the text provider chain.
type Context struct {
	TemplateTitle string
	Genre         string
	Tone          string
	ThemeKeywords []string

	ProtagonistName string
	CounterpartName string

	Day        int
	PlotBeat   string
	KeyMoments []string

	// RecentEpisodes holds at most maxRecentEpisodes summaries,
	// oldest first. PreviousEpisodeDetail is a longer summary of the
	// immediately preceding episode, empty on day one.
	RecentEpisodes        []EpisodeSummary
	PreviousEpisodeDetail string
}

// Builder constructs continuity contexts.
type Builder struct{}

// NewBuilder returns a context builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build assembles the context for today's generation. episodes must be
// ordered oldest to newest; overrides may be nil.
func (b *Builder) Build(
	tpl *models.StoryTemplate,
	outline *models.EpisodeOutline,
	episodes []models.Episode,
	overrides *NameOverrides,
	gender models.UserGender,
) *Context {
	protagonist, counterpart := ResolveNames(tpl, overrides, gender)

	ctx := &Context{
		TemplateTitle:   tpl.Title,
		Genre:           tpl.Genre,
		Tone:            tpl.Tone,
		ThemeKeywords:   append([]string(nil), tpl.ThemeKeywords...),
		ProtagonistName: protagonist,
		CounterpartName: counterpart,
		Day:             outline.Day,
		PlotBeat:        outline.Plot,
		KeyMoments:      append([]string(nil), outline.KeyMoments...),
	}

	if len(episodes) == 0 {
		return ctx
	}

	recent := episodes
	if len(recent) > maxRecentEpisodes {
		recent = recent[len(recent)-maxRecentEpisodes:]
	}
	for _, ep := range recent {
		ctx.RecentEpisodes = append(ctx.RecentEpisodes, EpisodeSummary{
			EpisodeNumber: ep.EpisodeNumber,
			Title:         ep.Title,
			Summary:       Summarize(ep.Text, shortSummaryBudget),
		})
	}

	prev := episodes[len(episodes)-1]
	ctx.PreviousEpisodeDetail = Summarize(prev.Text, previousSummaryBudget)

	return ctx
}
