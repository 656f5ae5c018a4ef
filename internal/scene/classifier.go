package scene

import "strings"

// Genre and emotion labels used to key the scene inventory. These are the
// composer's internal classification axes, not the catalog's marketing
// genre/emotion fields.
const (
	GenreRomance  = "romance"
	GenreFantasy  = "fantasy"
	GenreMystery  = "mystery"
	GenreThriller = "thriller"
	GenreDrama    = "drama"

	EmotionTender     = "tender"
	EmotionTense      = "tense"
	EmotionMelancholy = "melancholy"
	EmotionTriumphant = "triumphant"
	EmotionOminous    = "ominous"
)

// Defaults applied when no keyword rule matches. Kept as a silent
// fallback; the composer logs unmatched inputs so coverage gaps surface.
const (
	defaultGenre   = GenreDrama
	defaultEmotion = EmotionTender
)

type keywordRule struct {
	label    string
	keywords []string
}

// Ordered rules: the first rule with any keyword present in the text wins.
var genreRules = []keywordRule{
	{GenreRomance, []string{"kiss", "love", "heart", "embrace", "wedding", "fiancé", "fiance", "engagement", "romance", "marri"}},
	{GenreFantasy, []string{"ember", "throne", "crown", "magic", "forge", "kingdom", "curse", "sorcer", "dragon", "spell"}},
	{GenreMystery, []string{"trial", "witness", "transcript", "clue", "archive", "detective", "evidence", "verdict", "courtroom", "investigat"}},
	{GenreThriller, []string{"chase", "gun", "escape", "pursuit", "briefcase", "danger", "hostage", "border", "sabotage", "hunted"}},
}

var emotionRules = []keywordRule{
	{EmotionTense, []string{"chase", "threat", "afraid", "fear", "running", "danger", "trapped", "cornered", "gun", "knife"}},
	{EmotionMelancholy, []string{"grief", "loss", "mourn", "alone", "tears", "goodbye", "regret", "buried", "faded"}},
	{EmotionTriumphant, []string{"victory", "vindicat", "applause", "won ", "triumph", "succeed", "prevail", "overcame"}},
	{EmotionOminous, []string{"shadow", "warning", "dread", "watched", "curse", "whisper", "omen", "unseen", "lurk"}},
	{EmotionTender, []string{"warm", "gentle", "smile", "embrace", "soft", "kiss", "comfort", "hand in hand", "quiet"}},
}

// classification is the (genre, emotion) pair derived from prose, with
// flags telling the composer whether each axis actually matched.
type classification struct {
	Genre          string
	Emotion        string
	GenreMatched   bool
	EmotionMatched bool
}

// classify runs the ordered keyword rules over the story text. Unmatched
// axes take the documented defaults.
func classify(text string) classification {
	lower := strings.ToLower(text)

	out := classification{Genre: defaultGenre, Emotion: defaultEmotion}
	for _, rule := range genreRules {
		if containsAny(lower, rule.keywords) {
			out.Genre = rule.label
			out.GenreMatched = true
			break
		}
	}
	for _, rule := range emotionRules {
		if containsAny(lower, rule.keywords) {
			out.Emotion = rule.label
			out.EmotionMatched = true
			break
		}
	}
	return out
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
