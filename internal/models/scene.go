package models

// Scene is the structured visual descriptor derived from generated prose.
// It is produced fresh for every generation call and never persisted or
// reused across episodes.
type Scene struct {
	Description string        `yaml:"description" json:"description"`
	Camera      SceneCamera   `yaml:"camera" json:"camera"`
	Lighting    SceneLighting `yaml:"lighting" json:"lighting"`
	Emotion     string        `yaml:"emotion" json:"emotion"`
	Environment string        `yaml:"environment" json:"environment"`
	Atmosphere  string        `yaml:"atmosphere" json:"atmosphere"`
	IsSafe      bool          `yaml:"-" json:"isSafe"`
}

// SceneCamera describes framing for the image prompt.
type SceneCamera struct {
	Shot     string `yaml:"shot" json:"shot"`
	Angle    string `yaml:"angle" json:"angle"`
	Distance string `yaml:"distance" json:"distance"`
	Action   string `yaml:"action" json:"action"`
}

// SceneLighting describes light for the image prompt.
type SceneLighting struct {
	Type    string `yaml:"type" json:"type"`
	Quality string `yaml:"quality" json:"quality"`
}
