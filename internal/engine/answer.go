package engine

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/auroraclub/memberqa/internal/models"
)

// MethodTag identifies the answer pipeline in every result.
const MethodTag = "enhanced_nlp"

// Per-branch certainty multipliers. Confidence for a found answer is
// certainty * (0.5 + 0.5*relevance), so a more specific match always
// beats a weaker one at equal relevance, and raising relevance never
// lowers confidence.
const (
	certaintyExact    = 0.9
	certaintyWho      = 0.85
	certaintyWeak     = 0.7
	certaintyClause   = 0.6
	certaintyFallback = 0.5
)

// maxScanCandidates bounds how many ranked messages a branch inspects
// before falling back to the top one.
const maxScanCandidates = 3

const snippetLen = 100

var clockPattern = regexp.MustCompile(`(?i)\b\d{1,2}:\d{2}\s*(?:am|pm)?\b|\b\d{1,2}\s*(?:am|pm)\b`)

// dateParser handles temporal phrases the word tables miss ("in two
// weeks", "end of May"). Only the matched span is used, never the
// resolved time, so answers stay clock-independent.
var dateParser = newDateParser()

func newDateParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ExtractAnswer applies the type-specific extraction strategy to the
// ranked candidates and produces the final answer span with its
// confidence. Every well-formed question gets some answer: if no
// pattern matches inside a candidate the whole message is returned at
// reduced confidence, and only an empty candidate list yields the
// not-found result.
func ExtractAnswer(parsed models.ParsedQuestion, ranked []models.RankedCandidate) models.AnswerResult {
	if len(ranked) == 0 {
		return notFound(parsed.TargetEntities)
	}

	switch parsed.Type {
	case models.QuestionWhen:
		return extractWhen(ranked)
	case models.QuestionHowMany:
		return extractHowMany(ranked)
	case models.QuestionWhat:
		return extractWhat(parsed, ranked)
	case models.QuestionWhere:
		return extractWhere(parsed, ranked)
	case models.QuestionWho:
		return extractWho(ranked)
	case models.QuestionWhy, models.QuestionHow:
		return extractClause(parsed, ranked)
	default:
		return wholeMessage(ranked[0])
	}
}

func notFound(entities []string) models.AnswerResult {
	topic := "this topic"
	if len(entities) > 0 {
		topic = strings.Join(entities, ", ")
	}
	return models.AnswerResult{
		Answer:     fmt.Sprintf("I couldn't find any information about %s in the member messages.", topic),
		Confidence: 0,
		Method:     MethodTag,
	}
}

// extractWhen scans for temporal expressions via a prioritized pattern
// list: modifier+day ("this Friday"), bare day names, relative words,
// clock times and month names are exact matches; the natural-date
// parser is the weak tail.
func extractWhen(ranked []models.RankedCandidate) models.AnswerResult {
	for _, cand := range topCandidates(ranked) {
		if span, ok := findTemporalSpan(cand.Message.Text); ok {
			return spanAnswer(cand, span, certaintyExact)
		}
	}

	for _, cand := range topCandidates(ranked) {
		base := cand.Message.Timestamp
		if base.IsZero() {
			base = time.Unix(0, 0).UTC()
		}
		if r, err := dateParser.Parse(cand.Message.Text, base); err == nil && r != nil {
			return spanAnswer(cand, strings.TrimSpace(r.Text), certaintyWeak)
		}
	}

	return wholeMessage(ranked[0])
}

func findTemporalSpan(text string) (string, bool) {
	words := strings.Fields(text)

	for i, word := range words {
		clean := cleanWord(word)
		lower := strings.ToLower(clean)

		if _, day := dayNames[lower]; day {
			if i > 0 {
				prev := strings.ToLower(cleanWord(words[i-1]))
				if _, mod := dayModifiers[prev]; mod {
					return cleanWord(words[i-1]) + " " + clean, true
				}
			}
			return clean, true
		}

		if _, rel := relativeTimeWords[lower]; rel {
			return clean, true
		}

		if _, month := monthNames[lower]; month {
			if i+1 < len(words) {
				if next := alnumWord(words[i+1]); isDigits(next) {
					return clean + " " + next, true
				}
			}
			return clean, true
		}
	}

	if m := clockPattern.FindString(text); m != "" {
		return strings.TrimSpace(m), true
	}

	return "", false
}

// extractHowMany looks for a numeral or spelled-out number next to a
// unit noun; failing that, the first bare number in the top candidate.
// Spelled-out numbers are normalized to digits ("four" -> "4").
func extractHowMany(ranked []models.RankedCandidate) models.AnswerResult {
	var bareNumber string
	var bareCand models.RankedCandidate

	for _, cand := range topCandidates(ranked) {
		words := strings.Fields(cand.Message.Text)
		for i, word := range words {
			num, ok := normalizeNumber(alnumWord(word))
			if !ok {
				continue
			}

			if unit, found := nearbyUnit(words, i); found {
				return spanAnswer(cand, num+" "+unit, certaintyExact)
			}
			if bareNumber == "" {
				bareNumber = num
				bareCand = cand
			}
		}
	}

	if bareNumber != "" {
		return spanAnswer(bareCand, bareNumber, certaintyWeak)
	}
	return wholeMessage(ranked[0])
}

func normalizeNumber(token string) (string, bool) {
	lower := strings.ToLower(token)
	if isDigits(lower) {
		return lower, true
	}
	if num, ok := numberWords[lower]; ok {
		return num, true
	}
	return "", false
}

// nearbyUnit checks the window around a number for a unit noun
// ("four people", "tickets for two").
func nearbyUnit(words []string, idx int) (string, bool) {
	start := idx - 3
	if start < 0 {
		start = 0
	}
	end := idx + 4
	if end > len(words)-1 {
		end = len(words) - 1
	}

	for j := start; j <= end; j++ {
		if j == idx {
			continue
		}
		clean := strings.ToLower(cleanWord(words[j]))
		if _, unit := unitNouns[clean]; unit {
			return clean, true
		}
	}
	return "", false
}

// extractWhat looks for the proper-noun span the question asks about:
// a capitalized multi-word run ("The French Laundry") that is neither
// a target entity nor the author, preferably near establishment
// context words.
func extractWhat(parsed models.ParsedQuestion, ranked []models.RankedCandidate) models.AnswerResult {
	for _, cand := range topCandidates(ranked) {
		span, multiword, ok := bestProperSpan(cand.Message, parsed.TargetEntities)
		if !ok {
			continue
		}
		certainty := certaintyWeak
		if multiword {
			certainty = certaintyExact
		}
		return spanAnswer(cand, span, certainty)
	}
	return wholeMessage(ranked[0])
}

// extractWhere looks for a capitalized place after a location
// preposition ("to Paris"), then for a known destination anywhere in
// the text.
func extractWhere(parsed models.ParsedQuestion, ranked []models.RankedCandidate) models.AnswerResult {
	for _, cand := range topCandidates(ranked) {
		words := strings.Fields(cand.Message.Text)
		for i, word := range words {
			lower := strings.ToLower(cleanWord(word))
			if _, prep := locationPrepositions[lower]; !prep || i+1 >= len(words) {
				continue
			}
			next := cleanWord(words[i+1])
			if isPlaceWord(next, parsed.TargetEntities) {
				return spanAnswer(cand, next, certaintyExact)
			}
		}
	}

	for _, cand := range topCandidates(ranked) {
		lowerText := strings.ToLower(cand.Message.Text)
		for _, place := range knownPlaces {
			if idx := strings.Index(lowerText, place); idx >= 0 {
				span := strings.TrimSpace(cand.Message.Text[idx : idx+len(place)])
				if !spanMatchesEntity(span, parsed.TargetEntities) {
					return spanAnswer(cand, span, certaintyWeak)
				}
			}
		}
	}

	return wholeMessage(ranked[0])
}

func isPlaceWord(word string, entities []string) bool {
	if len(word) <= 2 || !startsUpper(word) {
		return false
	}
	lower := strings.ToLower(word)
	if _, stop := spanStopWords[lower]; stop {
		return false
	}
	if _, day := dayNames[lower]; day {
		return false
	}
	if _, rel := relativeTimeWords[lower]; rel {
		return false
	}
	return !spanMatchesEntity(word, entities)
}

// extractWho answers with the author of the top candidate, independent
// of anything inside the message body.
func extractWho(ranked []models.RankedCandidate) models.AnswerResult {
	top := ranked[0]
	msg := top.Message
	return models.AnswerResult{
		Answer:        fmt.Sprintf("%s (based on their message: %q)", msg.Author, snippet(msg.Text)),
		Confidence:    confidence(top.Score, certaintyWho),
		SourceMessage: &msg,
		Method:        MethodTag,
	}
}

// extractClause handles why/how questions, for which no precise span
// heuristic exists: it returns the sentence of the top candidate with
// the highest keyword overlap.
func extractClause(parsed models.ParsedQuestion, ranked []models.RankedCandidate) models.AnswerResult {
	top := ranked[0]
	best, overlap := bestSentence(top.Message.Text, parsed.Keywords)
	if overlap == 0 {
		return wholeMessage(top)
	}

	msg := top.Message
	return models.AnswerResult{
		Answer:        fmt.Sprintf("Based on %s's message: %q", msg.Author, best),
		Confidence:    confidence(top.Score, certaintyClause),
		SourceMessage: &msg,
		Method:        MethodTag,
	}
}

func bestSentence(text string, keywords []string) (string, int) {
	sentences := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	best := strings.TrimSpace(text)
	bestOverlap := 0
	for _, sentence := range sentences {
		trimmed := strings.TrimSpace(sentence)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)
		overlap := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				overlap++
			}
		}
		if overlap > bestOverlap {
			best = trimmed
			bestOverlap = overlap
		}
	}
	return best, bestOverlap
}

// wholeMessage is the reduced-confidence fallback when a candidate
// exists but no type-specific pattern matched inside it.
func wholeMessage(cand models.RankedCandidate) models.AnswerResult {
	msg := cand.Message
	return models.AnswerResult{
		Answer:        fmt.Sprintf("Based on %s's message: %q", msg.Author, msg.Text),
		Confidence:    confidence(cand.Score, certaintyFallback),
		SourceMessage: &msg,
		Method:        MethodTag,
	}
}

func spanAnswer(cand models.RankedCandidate, span string, certainty float64) models.AnswerResult {
	msg := cand.Message
	return models.AnswerResult{
		Answer:        fmt.Sprintf("%s mentioned %q. (From: %q)", msg.Author, span, snippet(msg.Text)),
		Confidence:    confidence(cand.Score, certainty),
		SourceMessage: &msg,
		Method:        MethodTag,
	}
}

func confidence(relevance, certainty float64) float64 {
	c := certainty * (0.5 + 0.5*relevance)
	if c > 1 {
		c = 1
	}
	return c
}

func topCandidates(ranked []models.RankedCandidate) []models.RankedCandidate {
	if len(ranked) > maxScanCandidates {
		return ranked[:maxScanCandidates]
	}
	return ranked
}

func snippet(text string) string {
	if len(text) <= snippetLen {
		return text
	}
	return text[:snippetLen] + "..."
}

// alnumWord strips a token down to letters and digits, so "four," and
// "4." normalize cleanly.
func alnumWord(word string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			return r
		}
		return -1
	}, word)
}
