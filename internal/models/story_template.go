package models

// StoryTemplate is one entry of the narrative template catalog. Templates
// are loaded once at process start and never mutated afterwards.
type StoryTemplate struct {
	ID            string           `yaml:"id" json:"id"`
	Title         string           `yaml:"title" json:"title"`
	Genre         string           `yaml:"genre" json:"genre"`
	Emotion       string           `yaml:"emotion" json:"emotion"`
	Summary       string           `yaml:"summary" json:"summary"`
	ThemeKeywords []string         `yaml:"theme_keywords" json:"themeKeywords"`
	VisualStyle   string           `yaml:"visual_style" json:"visualStyle"`
	Tone          string           `yaml:"tone" json:"tone"`
	Outline       []EpisodeOutline `yaml:"outline" json:"-"`
}

// EpisodeOutline is the authored plot beat for one day of a template's
// thirty-day arc. Days form the contiguous range [1,TemplateArcDays].
type EpisodeOutline struct {
	Day        int      `yaml:"day" json:"day"`
	Plot       string   `yaml:"plot" json:"plot"`
	KeyMoments []string `yaml:"key_moments,omitempty" json:"keyMoments,omitempty"`
}

// TemplateArcDays is the fixed length of every authored outline.
const TemplateArcDays = 30

// OutlineForDay returns the outline entry for the given day, or nil when
// the day is outside the authored range.
func (t *StoryTemplate) OutlineForDay(day int) *EpisodeOutline {
	for i := range t.Outline {
		if t.Outline[i].Day == day {
			return &t.Outline[i]
		}
	}
	return nil
}
