package engine

import (
	"strings"

	"github.com/auroraclub/memberqa/internal/models"
)

// properSpan is a run of capitalized words inside a message body.
type properSpan struct {
	text      string
	start     int
	multiword bool
}

// contextWindow is how many words away an establishment context word
// may sit from a span for the span to count as "in context".
const contextWindow = 4

// bestProperSpan picks the proper-noun span a "what" question most
// likely asks about: spans that are target entities or the author's
// own name are excluded, multi-word spans beat single words, and spans
// near establishment context words beat isolated ones.
func bestProperSpan(msg models.Message, entities []string) (string, bool, bool) {
	words := strings.Fields(msg.Text)
	spans := collectProperSpans(words)
	contexts := contextPositions(words)

	bestScore := -1
	var best properSpan
	for _, span := range spans {
		if spanMatchesEntity(span.text, entities) {
			continue
		}
		if strings.Contains(strings.ToLower(msg.Author), strings.ToLower(span.text)) {
			continue
		}

		score := 0
		if span.multiword {
			score += 2
		}
		if nearContext(span.start, contexts) {
			score++
		}
		if score > bestScore {
			bestScore = score
			best = span
		}
	}

	if bestScore < 0 {
		return "", false, false
	}
	return best.text, best.multiword, true
}

func collectProperSpans(words []string) []properSpan {
	var spans []properSpan

	for i := 0; i < len(words); i++ {
		head := cleanWord(words[i])
		if !spanWord(head) {
			continue
		}

		// "The" may only open a span when a capitalized word follows.
		if strings.EqualFold(head, "the") {
			if i+1 >= len(words) || !spanWord(cleanWord(words[i+1])) {
				continue
			}
		}

		parts := []string{head}
		j := i + 1
		for ; j < len(words); j++ {
			next := cleanWord(words[j])
			if !spanWord(next) || strings.EqualFold(next, "the") {
				break
			}
			parts = append(parts, next)
		}

		if len(parts) == 1 && strings.EqualFold(parts[0], "the") {
			i = j - 1
			continue
		}

		spans = append(spans, properSpan{
			text:      strings.Join(parts, " "),
			start:     i,
			multiword: len(parts) > 1,
		})
		i = j - 1
	}

	return spans
}

func spanWord(word string) bool {
	if len(word) <= 1 || !startsUpper(word) {
		return false
	}
	lower := strings.ToLower(word)
	if lower == "the" {
		return true
	}
	if _, stop := spanStopWords[lower]; stop {
		return false
	}
	if _, day := dayNames[lower]; day {
		return false
	}
	_, rel := relativeTimeWords[lower]
	return !rel
}

func contextPositions(words []string) []int {
	var positions []int
	for i, word := range words {
		lower := strings.ToLower(cleanWord(word))
		for _, ctx := range establishmentContext {
			if lower == ctx {
				positions = append(positions, i)
				break
			}
		}
	}
	return positions
}

func nearContext(pos int, contexts []int) bool {
	for _, c := range contexts {
		d := pos - c
		if d < 0 {
			d = -d
		}
		if d <= contextWindow {
			return true
		}
	}
	return false
}

// spanMatchesEntity reports whether a span and a target entity refer
// to the same name, in either containment direction.
func spanMatchesEntity(span string, entities []string) bool {
	lowerSpan := strings.ToLower(span)
	for _, entity := range entities {
		lowerEntity := strings.ToLower(entity)
		if strings.Contains(lowerSpan, lowerEntity) || strings.Contains(lowerEntity, lowerSpan) {
			return true
		}
	}
	return false
}
