package text

import (
	"fmt"
	"strings"

	"saga-server/internal/narrative"
)

// richSystemPrompt is the primary provider's contract. The three markers
// are load-bearing: the parser keys on them.
const richSystemPrompt = `You are a serialized fiction writer producing one daily episode of an ongoing personalized story.
Write in close third person, present tense, 350-500 words. Maintain continuity with the summaries provided.
Respond in EXACTLY this format, with all three markers present:

TITLE: <episode title, at most 8 words>
STORY: <the full episode prose>
SCENE: <one vivid sentence describing the single most visual moment of the episode, suitable for an illustrator>`

// simpleSystemPrompt is the secondary provider's reduced contract: prose
// only, no structural markers, so smaller local models don't mangle it.
const simpleSystemPrompt = `You are a fiction writer. Write one 350-500 word episode of a serialized story in close third person, present tense. Output only the story prose, nothing else.`

// BuildRichPrompt renders the continuity context into the primary
// provider's user prompt.
func BuildRichPrompt(ctx *narrative.Context) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Story: %q (%s). Tone: %s.\n", ctx.TemplateTitle, ctx.Genre, ctx.Tone)
	if len(ctx.ThemeKeywords) > 0 {
		fmt.Fprintf(&sb, "Themes: %s.\n", strings.Join(ctx.ThemeKeywords, ", "))
	}
	fmt.Fprintf(&sb, "Protagonist: %s. Counterpart: %s.\n", ctx.ProtagonistName, ctx.CounterpartName)
	fmt.Fprintf(&sb, "\nThis is episode %d.\n", ctx.Day)

	writeContinuity(&sb, ctx)

	fmt.Fprintf(&sb, "\nToday's plot beat: %s\n", ctx.PlotBeat)
	if len(ctx.KeyMoments) > 0 {
		fmt.Fprintf(&sb, "Key moments to include: %s.\n", strings.Join(ctx.KeyMoments, "; "))
	}
	return sb.String()
}

// BuildSimplePrompt renders the context for the secondary provider: same
// continuity, no formatting contract.
func BuildSimplePrompt(ctx *narrative.Context) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Story %q, a %s serial. Episode %d of 30. Protagonist %s, counterpart %s.\n",
		ctx.TemplateTitle, ctx.Genre, ctx.Day, ctx.ProtagonistName, ctx.CounterpartName)
	writeContinuity(&sb, ctx)
	fmt.Fprintf(&sb, "\nToday: %s\n", ctx.PlotBeat)
	return sb.String()
}

func writeContinuity(sb *strings.Builder, ctx *narrative.Context) {
	if len(ctx.RecentEpisodes) == 0 {
		sb.WriteString("This is the first episode; establish the world and the protagonist.\n")
		return
	}
	sb.WriteString("Previously:\n")
	for _, ep := range ctx.RecentEpisodes {
		fmt.Fprintf(sb, "- Episode %d (%s): %s\n", ep.EpisodeNumber, ep.Title, ep.Summary)
	}
	if ctx.PreviousEpisodeDetail != "" {
		fmt.Fprintf(sb, "The immediately preceding episode in more detail: %s\n", ctx.PreviousEpisodeDetail)
	}
}
