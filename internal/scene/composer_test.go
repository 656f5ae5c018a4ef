package scene

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"saga-server/internal/models"
)

func newTestComposer(t *testing.T, opts ...Option) *Composer {
	t.Helper()
	c, err := NewComposer(zap.NewNop(), opts...)
	require.NoError(t, err)
	return c
}

func TestNewComposer_InventoryCoversEveryPair(t *testing.T) {
	// Constructor validation is the test: a missing pool fails New.
	newTestComposer(t)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		genre   string
		emotion string
	}{
		{
			name:    "romance tender",
			text:    "She took his hand and the kiss was gentle, a warm ending to a long day.",
			genre:   GenreRomance,
			emotion: EmotionTender,
		},
		{
			name:    "thriller tense",
			text:    "The chase ended at the platform edge with a gun between them.",
			genre:   GenreThriller,
			emotion: EmotionTense,
		},
		{
			name:    "fantasy ominous",
			text:    "The curse in the crown whispered her name from the empty throne.",
			genre:   GenreFantasy,
			emotion: EmotionOminous,
		},
		{
			name:    "mystery melancholy",
			text:    "She filed the transcript beside her father's photograph, grief neatly alphabetized.",
			genre:   GenreMystery,
			emotion: EmotionMelancholy,
		},
		{
			name:    "unmatched falls back to defaults",
			text:    "Breakfast. Commute. Paperwork.",
			genre:   GenreDrama,
			emotion: EmotionTender,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cls := classify(tc.text)
			assert.Equal(t, tc.genre, cls.Genre)
			assert.Equal(t, tc.emotion, cls.Emotion)
		})
	}
}

func TestClassify_FirstMatchingRuleWins(t *testing.T) {
	// "kiss" (romance) and "throne" (fantasy) both present: romance is
	// earlier in the rule order.
	cls := classify("A kiss beside the throne.")
	assert.Equal(t, GenreRomance, cls.Genre)
	assert.True(t, cls.GenreMatched)
}

func TestCompose(t *testing.T) {
	t.Run("scene is always safe and carries the classified emotion", func(t *testing.T) {
		c := newTestComposer(t, WithPicker(func(int) int { return 0 }))
		s := c.Compose("The chase ended at the border, danger on every side.")
		assert.True(t, s.IsSafe)
		assert.Equal(t, EmotionTense, s.Emotion)
		assert.NotEmpty(t, s.Description)
		assert.NotEmpty(t, s.Camera.Shot)
		assert.NotEmpty(t, s.Lighting.Type)
	})

	t.Run("picker selects within the pool for variety", func(t *testing.T) {
		var sizes []int
		c := newTestComposer(t, WithPicker(func(n int) int {
			sizes = append(sizes, n)
			return n - 1
		}))
		s := c.Compose("A gentle kiss, warm light, her hand in his.")
		require.Len(t, sizes, 1)
		assert.GreaterOrEqual(t, sizes[0], 1)
		assert.True(t, s.IsSafe)
	})
}

func TestPromptBuilders(t *testing.T) {
	s := models.Scene{
		Description: "two figures at a candlelit table",
		Camera:      models.SceneCamera{Shot: "two-shot", Angle: "eye level", Distance: "medium", Action: "leaning in"},
		Lighting:    models.SceneLighting{Type: "candlelight", Quality: "warm"},
		Emotion:     EmotionTender,
		Environment: "a restaurant corner",
		Atmosphere:  "hushed",
		IsSafe:      true,
	}

	t.Run("identity prompt carries the checklist", func(t *testing.T) {
		p := BuildIdentityPrompt(s, models.GenderFemale, "glossy modern drama")
		assert.Contains(t, p, "reference photo")
		assert.Contains(t, p, "IDENTITY REQUIREMENTS")
		assert.Contains(t, p, "glossy modern drama")
	})

	t.Run("cinematic prompt has no identity constraints", func(t *testing.T) {
		p := BuildCinematicPrompt(s, "glossy modern drama")
		assert.NotContains(t, p, "reference photo")
		assert.NotContains(t, p, "IDENTITY REQUIREMENTS")
		assert.True(t, strings.Contains(p, "candlelight"))
	})
}
