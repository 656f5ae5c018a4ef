package narrative

import "strings"

// ellipsis marks a summary that was cut short of the full text.
const ellipsis = "…"

// Summarize reduces episode prose to at most budget characters by greedily
// taking whole sentences from the front. When the text is truncated an
// ellipsis marker is appended (the marker itself may push the result one
// rune past the budget; callers treat the budget as a soft cap).
func Summarize(text string, budget int) string {
	text = strings.TrimSpace(text)
	if text == "" || budget <= 0 {
		return ""
	}
	if len([]rune(text)) <= budget {
		return text
	}

	sentences := splitSentences(text)
	var sb strings.Builder
	count := 0
	for _, s := range sentences {
		runes := []rune(s)
		sep := 0
		if count > 0 {
			sep = 1
		}
		if count+sep+len(runes) > budget {
			break
		}
		if sep == 1 {
			sb.WriteByte(' ')
		}
		sb.WriteString(s)
		count += sep + len(runes)
	}

	if count == 0 {
		// First sentence alone exceeds the budget: hard-cut it.
		runes := []rune(sentences[0])
		if len(runes) > budget {
			runes = runes[:budget]
		}
		return strings.TrimSpace(string(runes)) + ellipsis
	}
	return sb.String() + ellipsis
}

// splitSentences breaks text on terminal punctuation, keeping the
// punctuation attached to its sentence.
func splitSentences(text string) []string {
	var out []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(current.String()); s != "" {
				out = append(out, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		out = append(out, s)
	}
	return out
}
