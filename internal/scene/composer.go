// Package scene derives structured visual descriptors from generated
// prose. Classification is ordered keyword matching; the actual visuals
// come from a vetted inventory of pre-authored scenes keyed by
// (genre, emotion), selected uniformly for variety across episodes.
package scene

import (
	_ "embed"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"saga-server/internal/models"
)

//go:embed data/scenes.yaml
var scenesYAML []byte

type poolKey struct {
	genre   string
	emotion string
}

type sceneEntry struct {
	Description string               `yaml:"description"`
	Camera      models.SceneCamera   `yaml:"camera"`
	Lighting    models.SceneLighting `yaml:"lighting"`
	Environment string               `yaml:"environment"`
	Atmosphere  string               `yaml:"atmosphere"`
}

type inventoryFile struct {
	Version int `yaml:"version"`
	Pools   []struct {
		Genre   string       `yaml:"genre"`
		Emotion string       `yaml:"emotion"`
		Scenes  []sceneEntry `yaml:"scenes"`
	} `yaml:"pools"`
}

// Composer turns story text into a Scene.
type Composer struct {
	logger *zap.Logger
	pools  map[poolKey][]sceneEntry
	pick   func(n int) int
}

// Option adjusts composer construction.
type Option func(*Composer)

// WithPicker replaces the uniform random selector, for deterministic tests.
func WithPicker(pick func(n int) int) Option {
	return func(c *Composer) { c.pick = pick }
}

// NewComposer loads and validates the embedded scene inventory. Every
// genre x emotion pair must resolve to at least one authored scene.
func NewComposer(logger *zap.Logger, opts ...Option) (*Composer, error) {
	var file inventoryFile
	if err := yaml.Unmarshal(scenesYAML, &file); err != nil {
		return nil, fmt.Errorf("failed to parse scene inventory: %w", err)
	}

	c := &Composer{
		logger: logger.Named("SceneComposer"),
		pools:  make(map[poolKey][]sceneEntry),
		pick:   rand.IntN,
	}
	for _, p := range file.Pools {
		key := poolKey{p.Genre, p.Emotion}
		if len(p.Scenes) == 0 {
			return nil, fmt.Errorf("scene pool (%s, %s) is empty", p.Genre, p.Emotion)
		}
		c.pools[key] = append(c.pools[key], p.Scenes...)
	}

	genres := []string{GenreRomance, GenreFantasy, GenreMystery, GenreThriller, GenreDrama}
	emotions := []string{EmotionTender, EmotionTense, EmotionMelancholy, EmotionTriumphant, EmotionOminous}
	for _, g := range genres {
		for _, e := range emotions {
			if len(c.pools[poolKey{g, e}]) == 0 {
				return nil, fmt.Errorf("scene inventory missing pool for (%s, %s)", g, e)
			}
		}
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Compose classifies the story text and selects one vetted scene from the
// matching pool. The inventory contains only approved scenes, so the
// result is always safe.
func (c *Composer) Compose(storyText string) models.Scene {
	cls := classify(storyText)
	if !cls.GenreMatched || !cls.EmotionMatched {
		c.logger.Warn("Scene classification fell back to defaults",
			zap.Bool("genre_matched", cls.GenreMatched),
			zap.Bool("emotion_matched", cls.EmotionMatched),
			zap.String("genre", cls.Genre),
			zap.String("emotion", cls.Emotion))
	}

	pool := c.pools[poolKey{cls.Genre, cls.Emotion}]
	entry := pool[c.pick(len(pool))]

	return models.Scene{
		Description: entry.Description,
		Camera:      entry.Camera,
		Lighting:    entry.Lighting,
		Emotion:     cls.Emotion,
		Environment: entry.Environment,
		Atmosphere:  entry.Atmosphere,
		IsSafe:      true,
	}
}
