package scene

import (
	"fmt"
	"strings"

	"saga-server/internal/models"
)

// identityChecklist is the strict constraint block injected for
// face-consistent providers. Kept verbatim across providers so output
// quality stays comparable when the chain falls through.
const identityChecklist = `IDENTITY REQUIREMENTS (must all hold):
- The generated person's face must match the reference photo exactly: same facial structure, eyes, nose, mouth, and skin tone.
- Do not beautify, age, or stylize the face beyond the scene's lighting.
- Keep the hairstyle recognizably similar to the reference photo.
- Exactly one person from the reference photo appears in frame.
- No text, watermarks, or frames.`

// BuildIdentityPrompt renders a Scene into the prompt for
// identity-preserving providers, including the constraint checklist.
func BuildIdentityPrompt(s models.Scene, gender models.UserGender, visualStyle string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "A cinematic still of the person from the reference photo as the protagonist: %s.\n", s.Description)
	writeSceneBody(&sb, s, visualStyle)
	if gender == models.GenderFemale || gender == models.GenderMale {
		fmt.Fprintf(&sb, "The protagonist presents as %s.\n", gender)
	}
	sb.WriteString(identityChecklist)
	return sb.String()
}

// BuildCinematicPrompt renders a Scene into the plain prompt for
// non-identity providers. No reference constraints: the subject is a
// generic character matching the story's style.
func BuildCinematicPrompt(s models.Scene, visualStyle string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "A cinematic still: %s.\n", s.Description)
	writeSceneBody(&sb, s, visualStyle)
	sb.WriteString("No text, watermarks, or frames.")
	return sb.String()
}

func writeSceneBody(sb *strings.Builder, s models.Scene, visualStyle string) {
	fmt.Fprintf(sb, "Setting: %s. Atmosphere: %s. Emotional register: %s.\n",
		s.Environment, s.Atmosphere, s.Emotion)
	fmt.Fprintf(sb, "Camera: %s, %s, %s; %s.\n",
		s.Camera.Shot, s.Camera.Angle, s.Camera.Distance, s.Camera.Action)
	fmt.Fprintf(sb, "Lighting: %s, %s.\n", s.Lighting.Type, s.Lighting.Quality)
	if visualStyle != "" {
		fmt.Fprintf(sb, "Visual style: %s.\n", visualStyle)
	}
}
