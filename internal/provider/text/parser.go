package text

import (
	"fmt"
	"strings"

	"saga-server/internal/narrative"
)

const (
	markerTitle = "TITLE:"
	markerStory = "STORY:"
	markerScene = "SCENE:"

	// sceneFallbackBudget caps the heuristic scene description when the
	// provider omitted the SCENE marker.
	sceneFallbackBudget = 180
)

// parsed is the structural view of a primary-provider response.
type parsed struct {
	Title            string
	Story            string
	SceneDescription string
}

// parseMarkedResponse extracts the TITLE/STORY/SCENE sections. A missing
// marker is not an error: the whole response becomes the story and the
// missing pieces are synthesized, so unparseable output never fails a
// generation that the model actually produced.
func parseMarkedResponse(raw string, fallbackTitle string) parsed {
	raw = strings.TrimSpace(raw)

	titleIdx := strings.Index(raw, markerTitle)
	storyIdx := strings.Index(raw, markerStory)
	sceneIdx := strings.Index(raw, markerScene)

	if titleIdx < 0 || storyIdx < 0 || storyIdx < titleIdx {
		// Contract violated: recover the whole response as prose.
		return parsed{
			Title:            fallbackTitle,
			Story:            raw,
			SceneDescription: synthesizeSceneDescription(raw),
		}
	}

	title := strings.TrimSpace(raw[titleIdx+len(markerTitle) : storyIdx])

	var story, sceneDesc string
	if sceneIdx > storyIdx {
		story = strings.TrimSpace(raw[storyIdx+len(markerStory) : sceneIdx])
		sceneDesc = strings.TrimSpace(raw[sceneIdx+len(markerScene):])
	} else {
		story = strings.TrimSpace(raw[storyIdx+len(markerStory):])
	}

	if title == "" {
		title = fallbackTitle
	}
	if story == "" {
		story = raw
	}
	if sceneDesc == "" {
		sceneDesc = synthesizeSceneDescription(story)
	}

	return parsed{Title: title, Story: story, SceneDescription: sceneDesc}
}

// synthesizeSceneDescription derives a scene description from prose when
// the provider did not supply one: the opening sentences, bounded.
func synthesizeSceneDescription(story string) string {
	return narrative.Summarize(story, sceneFallbackBudget)
}

// fallbackEpisodeTitle names an episode when the provider supplied none.
func fallbackEpisodeTitle(templateTitle string, day int) string {
	return fmt.Sprintf("%s: Day %d", templateTitle, day)
}
