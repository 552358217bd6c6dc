package engine

import (
	"sort"
	"strings"

	"github.com/auroraclub/memberqa/internal/models"
)

// ScoringWeights controls how entity matches, keyword overlap and the
// author boost combine into one relevance score. Entity identity is
// the stronger signal for a corpus of short personal messages, so it
// carries most of the weight.
type ScoringWeights struct {
	Entity       float64
	Keyword      float64
	AuthorBoost  float64
	MinRelevance float64
}

// DefaultWeights returns the scoring configuration used in production.
func DefaultWeights() ScoringWeights {
	return ScoringWeights{
		Entity:       0.6,
		Keyword:      0.3,
		AuthorBoost:  0.1,
		MinRelevance: 0.1,
	}
}

// Per-entity match credits. An author-name hit outweighs a body hit,
// and a full-entity hit outweighs a partial (single name part) hit.
const (
	creditAuthorFull = 1.0
	creditAuthorPart = 0.8
	creditBodyFull   = 0.6
	creditBodyPart   = 0.3
)

// Rank scores every corpus message against the parsed question and
// returns the candidates above the minimum relevance threshold,
// ordered by non-increasing score. The sort is stable: equal scores
// keep corpus order, so identical inputs always rank identically.
func Rank(corpus []models.Message, parsed models.ParsedQuestion, weights ScoringWeights) []models.RankedCandidate {
	var candidates []models.RankedCandidate

	for _, msg := range corpus {
		score := scoreMessage(msg, parsed, weights)
		if score >= weights.MinRelevance {
			candidates = append(candidates, models.RankedCandidate{Message: msg, Score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	return candidates
}

// scoreMessage combines the entity-match fraction, the keyword-overlap
// fraction and the author boost into a weighted sum in [0,1].
func scoreMessage(msg models.Message, parsed models.ParsedQuestion, weights ScoringWeights) float64 {
	author := strings.ToLower(msg.Author)
	body := strings.ToLower(msg.Text)

	entityWeight := weights.Entity
	keywordWeight := weights.Keyword
	if len(parsed.TargetEntities) == 0 {
		// With no entities to match, keyword overlap is all we have.
		keywordWeight += entityWeight
		entityWeight = 0
	}

	score := entityWeight * entityScore(author, body, parsed.TargetEntities)
	score += keywordWeight * keywordScore(tokenSet(body), parsed.Keywords)

	if authorIsTarget(author, parsed.TargetEntities) {
		score += weights.AuthorBoost
	}

	if score > 1 {
		score = 1
	}
	return score
}

// entityScore is the mean per-entity credit over all target entities.
func entityScore(author, body string, entities []string) float64 {
	if len(entities) == 0 {
		return 0
	}

	var total float64
	for _, entity := range entities {
		total += entityCredit(author, body, strings.ToLower(entity))
	}
	return total / float64(len(entities))
}

func entityCredit(author, body, entity string) float64 {
	if strings.Contains(author, entity) {
		return creditAuthorFull
	}

	credit := 0.0
	for _, part := range strings.Fields(entity) {
		if strings.Contains(author, part) && creditAuthorPart > credit {
			credit = creditAuthorPart
		}
	}
	if credit > 0 {
		return credit
	}

	if strings.Contains(body, entity) {
		return creditBodyFull
	}
	for _, part := range strings.Fields(entity) {
		if strings.Contains(body, part) && creditBodyPart > credit {
			credit = creditBodyPart
		}
	}
	return credit
}

// keywordScore is the fraction of question keywords present in the
// body. Matching is whole-token, not substring, so "his" never matches
// inside "this".
func keywordScore(bodyTokens map[string]struct{}, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}

	matched := 0
	for _, kw := range keywords {
		if _, ok := bodyTokens[kw]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(keywords))
}

func tokenSet(lowerBody string) map[string]struct{} {
	tokens := wordPattern.FindAllString(lowerBody, -1)
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

// authorIsTarget reports whether the author themselves is one of the
// question's target entities, which treats "who said X" style
// questions correctly.
func authorIsTarget(author string, entities []string) bool {
	for _, entity := range entities {
		if strings.Contains(author, strings.ToLower(entity)) {
			return true
		}
	}
	return false
}
