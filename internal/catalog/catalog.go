// Package catalog holds the immutable in-memory inventory of narrative
// templates. The authored data lives in an embedded YAML file and is
// validated once at construction; after that every accessor is read-only
// and safe for concurrent use.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"saga-server/internal/models"
)

//go:embed data/templates.yaml
var templatesYAML []byte

// recommendedCount is the fixed size of the cold-start subset.
const recommendedCount = 5

// Filter narrows template lookups. Empty fields are wildcards; matching is
// case-insensitive substring on genre and emotion.
type Filter struct {
	Genre   string
	Emotion string
}

// Catalog is the loaded template inventory.
type Catalog struct {
	templates   []models.StoryTemplate
	byID        map[string]*models.StoryTemplate
	recommended []string
	version     int
}

type catalogFile struct {
	Version     int                    `yaml:"version"`
	Recommended []string               `yaml:"recommended"`
	Templates   []models.StoryTemplate `yaml:"templates"`
}

// New parses and validates the embedded template data. Any authoring
// mistake (missing days, duplicate ids, broken recommended reference)
// fails construction.
func New() (*Catalog, error) {
	return load(templatesYAML)
}

func load(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse template catalog: %w", err)
	}
	if len(file.Templates) == 0 {
		return nil, fmt.Errorf("template catalog is empty")
	}

	c := &Catalog{
		templates:   file.Templates,
		byID:        make(map[string]*models.StoryTemplate, len(file.Templates)),
		recommended: file.Recommended,
		version:     file.Version,
	}

	for i := range c.templates {
		t := &c.templates[i]
		if t.ID == "" {
			return nil, fmt.Errorf("template #%d has no id", i)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}
		if err := validateOutline(t); err != nil {
			return nil, fmt.Errorf("template %q: %w", t.ID, err)
		}
		c.byID[t.ID] = t
	}

	if len(c.recommended) != recommendedCount {
		return nil, fmt.Errorf("recommended list must contain exactly %d ids, got %d", recommendedCount, len(c.recommended))
	}
	for _, id := range c.recommended {
		if _, ok := c.byID[id]; !ok {
			return nil, fmt.Errorf("recommended list references unknown template %q", id)
		}
	}

	return c, nil
}

// validateOutline checks that outline days form exactly [1,TemplateArcDays]
// in ascending order with no gaps or duplicates.
func validateOutline(t *models.StoryTemplate) error {
	if len(t.Outline) != models.TemplateArcDays {
		return fmt.Errorf("outline has %d days, want %d", len(t.Outline), models.TemplateArcDays)
	}
	for i, entry := range t.Outline {
		want := i + 1
		if entry.Day != want {
			return fmt.Errorf("outline day at position %d is %d, want %d", i, entry.Day, want)
		}
		if strings.TrimSpace(entry.Plot) == "" {
			return fmt.Errorf("outline day %d has empty plot", entry.Day)
		}
	}
	return nil
}

// Version reports the authored data version.
func (c *Catalog) Version() int { return c.version }

// GetAll returns every template in authored order.
func (c *Catalog) GetAll() []models.StoryTemplate {
	out := make([]models.StoryTemplate, len(c.templates))
	copy(out, c.templates)
	return out
}

// GetByID returns the template with the given id, or nil when unknown.
func (c *Catalog) GetByID(id string) *models.StoryTemplate {
	return c.byID[id]
}

// GetForUser returns the templates matching the filter, in authored order.
// No matches is an empty slice, never an error.
func (c *Catalog) GetForUser(filter Filter) []models.StoryTemplate {
	genre := strings.ToLower(strings.TrimSpace(filter.Genre))
	emotion := strings.ToLower(strings.TrimSpace(filter.Emotion))

	var out []models.StoryTemplate
	for _, t := range c.templates {
		if genre != "" && !strings.Contains(strings.ToLower(t.Genre), genre) {
			continue
		}
		if emotion != "" && !strings.Contains(strings.ToLower(t.Emotion), emotion) {
			continue
		}
		out = append(out, t)
	}
	if out == nil {
		out = []models.StoryTemplate{}
	}
	return out
}

// GetRecommended returns the curated cold-start subset in curated order.
func (c *Catalog) GetRecommended() []models.StoryTemplate {
	out := make([]models.StoryTemplate, 0, len(c.recommended))
	for _, id := range c.recommended {
		out = append(out, *c.byID[id])
	}
	return out
}
