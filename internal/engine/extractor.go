package engine

import (
	"regexp"
	"strings"
	"unicode"
)

// maxKeywords caps keyword extraction so pathological inputs cannot
// blow up ranking cost.
const maxKeywords = 15

// maxEntitySpan is how many extra capitalized words an entity may
// absorb after its first word ("Sophia Al-Farsi" = 1 + 2).
const maxEntitySpan = 2

var wordPattern = regexp.MustCompile(`\w+`)

// Extraction holds the candidate entities and keywords pulled out of a
// question. Both slices preserve first-occurrence order.
type Extraction struct {
	Entities []string
	Keywords []string
}

// Extract pulls candidate named entities and relevance-bearing keywords
// out of a question string. It is purely heuristic and deterministic:
// the same input always yields the same sets, and an empty question
// yields empty sets rather than an error.
func Extract(question string) Extraction {
	return Extraction{
		Entities: extractEntities(question),
		Keywords: extractKeywords(question),
	}
}

// extractEntities finds capitalized spans that are not question words
// or other common capitalized non-entities. Consecutive capitalized
// words merge into one multi-token entity.
func extractEntities(question string) []string {
	words := strings.Fields(question)
	var entities []string
	seen := make(map[string]struct{})

	for i := 0; i < len(words); i++ {
		head := cleanWord(words[i])
		if !isEntityWord(head, 2) {
			continue
		}

		parts := []string{head}
		for j := i + 1; j < len(words) && j <= i+maxEntitySpan; j++ {
			next := cleanWord(words[j])
			if !isEntityWord(next, 1) {
				break
			}
			parts = append(parts, next)
		}

		entity := strings.Join(parts, " ")
		if _, dup := seen[entity]; !dup {
			seen[entity] = struct{}{}
			entities = append(entities, entity)
		}
		i += len(parts) - 1
	}

	return entities
}

// extractKeywords lower-cases the question, drops stop words, digits
// and short tokens, and keeps at most maxKeywords terms.
func extractKeywords(question string) []string {
	tokens := wordPattern.FindAllString(strings.ToLower(question), -1)

	var keywords []string
	seen := make(map[string]struct{})
	for _, tok := range tokens {
		if len(tok) <= 2 || isDigits(tok) {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		keywords = append(keywords, tok)
		if len(keywords) == maxKeywords {
			break
		}
	}

	return keywords
}

// cleanWord strips everything except letters and interior hyphens, so
// "Paris?" becomes "Paris" and "Al-Farsi" survives intact.
func cleanWord(word string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || r == '-' {
			return r
		}
		return -1
	}, word)
	return strings.Trim(cleaned, "-")
}

func isEntityWord(word string, minLen int) bool {
	if len(word) <= minLen || !startsUpper(word) {
		return false
	}
	_, stop := stopWords[strings.ToLower(word)]
	return !stop
}

func startsUpper(word string) bool {
	for _, r := range word {
		return unicode.IsUpper(r)
	}
	return false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
