package narrative

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saga-server/internal/models"
)

func testTemplate() *models.StoryTemplate {
	return &models.StoryTemplate{
		ID:      "sweet_revenge_shattered_vows",
		Title:   "Shattered Vows",
		Genre:   "Romance",
		Emotion: "Revenge",
		Summary: "Elena walked out of her own rehearsal dinner with nothing but a ruined dress and a plan. Five years later she returns engaged to the one man her ex-fiancé Adrian cannot afford to cross.",
		Tone:    "sharp, simmering",
		Outline: []models.EpisodeOutline{
			{Day: 1, Plot: "Elena returns to the city.", KeyMoments: []string{"private jet arrival"}},
		},
	}
}

func makeEpisode(n int, text string) models.Episode {
	return models.Episode{EpisodeNumber: n, Title: "Episode", Text: text}
}

func TestBuild_FirstDayHasNoContinuity(t *testing.T) {
	b := NewBuilder()
	tpl := testTemplate()

	ctx := b.Build(tpl, &tpl.Outline[0], nil, nil, models.GenderFemale)

	assert.Equal(t, "Shattered Vows", ctx.TemplateTitle)
	assert.Equal(t, 1, ctx.Day)
	assert.Equal(t, "Elena returns to the city.", ctx.PlotBeat)
	assert.Empty(t, ctx.RecentEpisodes)
	assert.Empty(t, ctx.PreviousEpisodeDetail)
}

func TestBuild_SummarizesAtMostThreePriorEpisodes(t *testing.T) {
	b := NewBuilder()
	tpl := testTemplate()

	long := strings.Repeat("A vivid thing happened between them that evening. ", 12)
	episodes := []models.Episode{
		makeEpisode(1, long),
		makeEpisode(2, long),
		makeEpisode(3, long),
		makeEpisode(4, long),
		makeEpisode(5, long),
	}

	ctx := b.Build(tpl, &tpl.Outline[0], episodes, nil, models.GenderFemale)

	require.Len(t, ctx.RecentEpisodes, 3)
	assert.Equal(t, 3, ctx.RecentEpisodes[0].EpisodeNumber)
	assert.Equal(t, 5, ctx.RecentEpisodes[2].EpisodeNumber)
	for _, s := range ctx.RecentEpisodes {
		assert.True(t, strings.HasSuffix(s.Summary, "…"), "truncated summary carries ellipsis")
		assert.LessOrEqual(t, len([]rune(s.Summary)), 221)
	}
	assert.NotEmpty(t, ctx.PreviousEpisodeDetail)
	assert.Greater(t, len(ctx.PreviousEpisodeDetail), len(ctx.RecentEpisodes[2].Summary))
}

func TestSummarize(t *testing.T) {
	t.Run("short text returned whole", func(t *testing.T) {
		assert.Equal(t, "Short.", Summarize("Short.", 100))
	})

	t.Run("greedy sentence packing", func(t *testing.T) {
		text := "One two three. Four five six. Seven eight nine."
		got := Summarize(text, 30)
		assert.Equal(t, "One two three. Four five six.…", got)
	})

	t.Run("first sentence over budget is hard-cut", func(t *testing.T) {
		got := Summarize("An unbroken sentence that never terminates and keeps going", 10)
		assert.True(t, strings.HasSuffix(got, "…"))
		assert.LessOrEqual(t, len([]rune(got)), 11)
	})

	t.Run("deterministic", func(t *testing.T) {
		text := "Same in. Same out. Every time."
		assert.Equal(t, Summarize(text, 20), Summarize(text, 20))
	})
}

func TestResolveNames(t *testing.T) {
	tpl := testTemplate()

	t.Run("explicit overrides win", func(t *testing.T) {
		p, c := ResolveNames(tpl, &NameOverrides{Protagonist: "Mina", Counterpart: "Theo"}, models.GenderFemale)
		assert.Equal(t, "Mina", p)
		assert.Equal(t, "Theo", c)
	})

	t.Run("heuristic extraction from summary", func(t *testing.T) {
		p, c := ResolveNames(tpl, nil, models.GenderFemale)
		assert.Equal(t, "Elena", p)
		assert.Equal(t, "Adrian", c)
	})

	t.Run("partial override keeps heuristic for the rest", func(t *testing.T) {
		p, c := ResolveNames(tpl, &NameOverrides{Protagonist: "Mina"}, models.GenderFemale)
		assert.Equal(t, "Mina", p)
		assert.Equal(t, "Elena", c)
	})

	t.Run("gender table when summary has no names", func(t *testing.T) {
		bare := &models.StoryTemplate{Genre: "Romance", Summary: "a story about two strangers in a seaside town"}
		p, c := ResolveNames(bare, nil, models.GenderMale)
		assert.Equal(t, "Daniel", p)
		assert.Equal(t, "Sofia", c)
	})

	t.Run("literal defaults for unknown genre", func(t *testing.T) {
		bare := &models.StoryTemplate{Genre: "Western", Summary: "a story without names"}
		p, c := ResolveNames(bare, nil, models.GenderUnknown)
		assert.Equal(t, "Aria", p)
		assert.Equal(t, "Kai", c)
	})

	t.Run("full names collapse to given name", func(t *testing.T) {
		tpl2 := &models.StoryTemplate{Genre: "Mystery", Summary: "Stenographer Iris Vale types every word while the clerk Park watches."}
		p, c := ResolveNames(tpl2, nil, models.GenderFemale)
		assert.Equal(t, "Iris", p)
		assert.Equal(t, "Park", c)
	})
}
