package narrative

import (
	"strings"
	"unicode"

	"saga-server/internal/models"
)

// Final literal defaults when every other resolution step comes up empty.
const (
	defaultProtagonist = "Aria"
	defaultCounterpart = "Kai"
)

// fallbackNames maps lowercased template genre to gender-keyed protagonist
// names. The counterpart column complements the protagonist.
var fallbackNames = map[string]map[models.UserGender][2]string{
	"romance": {
		models.GenderFemale:  {"Elena", "Adrian"},
		models.GenderMale:    {"Daniel", "Sofia"},
		models.GenderUnknown: {"Rowan", "Jules"},
	},
	"fantasy": {
		models.GenderFemale:  {"Lyra", "Kael"},
		models.GenderMale:    {"Kael", "Sera"},
		models.GenderUnknown: {"Ash", "Vey"},
	},
	"mystery": {
		models.GenderFemale:  {"Iris", "Park"},
		models.GenderMale:    {"Elias", "Vera"},
		models.GenderUnknown: {"Morgan", "Lane"},
	},
	"thriller": {
		models.GenderFemale:  {"Noa", "Marek"},
		models.GenderMale:    {"Dario", "Lena"},
		models.GenderUnknown: {"Sam", "Renn"},
	},
}

// nameStopwords are capitalized tokens in authored summaries that are not
// character names: function words, role nouns, and title-case descriptors.
var nameStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "but": true,
	"after": true, "before": true, "when": true, "five": true, "one": true,
	"at": true, "in": true, "on": true, "court": true, "princess": true,
	"prince": true, "heir": true, "paramedic": true, "stenographer": true,
	"doctor": true, "forge": true, "captain": true, "detective": true,
}

// ResolveNames determines the protagonist and counterpart names for prompt
// construction. Resolution order per name: explicit override, heuristic
// extraction from the template summary, gender-keyed table by genre, then
// the literal defaults.
func ResolveNames(tpl *models.StoryTemplate, overrides *NameOverrides, gender models.UserGender) (string, string) {
	var protagonist, counterpart string
	if overrides != nil {
		protagonist = strings.TrimSpace(overrides.Protagonist)
		counterpart = strings.TrimSpace(overrides.Counterpart)
	}

	if protagonist == "" || counterpart == "" {
		extracted := extractNames(tpl.Summary)
		if protagonist == "" && len(extracted) > 0 {
			protagonist = extracted[0]
		}
		if counterpart == "" {
			for _, name := range extracted {
				if name != protagonist {
					counterpart = name
					break
				}
			}
		}
	}

	if protagonist == "" || counterpart == "" {
		tp, tc := tableNames(tpl.Genre, gender)
		if protagonist == "" {
			protagonist = tp
		}
		if counterpart == "" && tc != protagonist {
			counterpart = tc
		}
	}

	if protagonist == "" {
		protagonist = defaultProtagonist
	}
	if counterpart == "" {
		counterpart = defaultCounterpart
	}
	return protagonist, counterpart
}

func tableNames(genre string, gender models.UserGender) (string, string) {
	byGender, ok := fallbackNames[strings.ToLower(strings.TrimSpace(genre))]
	if !ok {
		return "", ""
	}
	pair, ok := byGender[gender]
	if !ok {
		pair = byGender[models.GenderUnknown]
	}
	return pair[0], pair[1]
}

// extractNames pulls name-shaped tokens from the authored summary, in
// order of first appearance. A token qualifies when it is capitalized,
// at least three letters, all-alphabetic, and not a known stopword.
// Consecutive qualifying tokens are treated as one full name, keeping the
// given name only.
func extractNames(summary string) []string {
	var out []string
	seen := map[string]bool{}
	prevQualified := false
	for _, raw := range strings.Fields(summary) {
		token := strings.TrimFunc(raw, func(r rune) bool {
			return !unicode.IsLetter(r)
		})
		qualifies := len([]rune(token)) >= 3 &&
			isNameShaped(token) &&
			!nameStopwords[strings.ToLower(token)]
		if !qualifies {
			prevQualified = false
			continue
		}
		if prevQualified {
			// Surname of the name just taken.
			continue
		}
		prevQualified = true
		if seen[token] {
			continue
		}
		seen[token] = true
		out = append(out, token)
	}
	return out
}

func isNameShaped(token string) bool {
	for i, r := range token {
		if !unicode.IsLetter(r) {
			return false
		}
		if i == 0 && !unicode.IsUpper(r) {
			return false
		}
		if i > 0 && !unicode.IsLower(r) {
			return false
		}
	}
	return true
}
