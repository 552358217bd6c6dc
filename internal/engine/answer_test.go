package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auroraclub/memberqa/internal/models"
)

func ranked(msg models.Message, score float64) []models.RankedCandidate {
	return []models.RankedCandidate{{Message: msg, Score: score}}
}

func TestExtractAnswerWhen(t *testing.T) {
	t.Run("modifier plus day name", func(t *testing.T) {
		parsed := models.ParsedQuestion{Type: models.QuestionWhen}
		res := ExtractAnswer(parsed, ranked(testCorpus[0], 0.7))

		assert.Contains(t, res.Answer, "this Friday")
		require.NotNil(t, res.SourceMessage)
		assert.Equal(t, "m1", res.SourceMessage.ID)
		assert.Greater(t, res.Confidence, 0.7)
	})

	t.Run("bare day name", func(t *testing.T) {
		msg := models.Message{ID: "d", Author: "Armand Dupont", Text: "Arriving Friday."}
		res := ExtractAnswer(models.ParsedQuestion{Type: models.QuestionWhen}, ranked(msg, 0.5))
		assert.Contains(t, res.Answer, "Friday")
	})

	t.Run("relative word", func(t *testing.T) {
		msg := models.Message{ID: "r", Author: "Armand Dupont", Text: "See you tomorrow!"}
		res := ExtractAnswer(models.ParsedQuestion{Type: models.QuestionWhen}, ranked(msg, 0.5))
		assert.Contains(t, res.Answer, "tomorrow")
	})

	t.Run("clock time", func(t *testing.T) {
		msg := models.Message{ID: "c", Author: "Fatima El-Tahir", Text: "Dinner starts at 8 pm sharp."}
		res := ExtractAnswer(models.ParsedQuestion{Type: models.QuestionWhen}, ranked(msg, 0.5))
		assert.Contains(t, res.Answer, "8 pm")
	})

	t.Run("no temporal expression falls back to whole message", func(t *testing.T) {
		msg := models.Message{ID: "n", Author: "Vikram Desai", Text: "Please arrange my usual car."}
		res := ExtractAnswer(models.ParsedQuestion{Type: models.QuestionWhen}, ranked(msg, 0.6))

		assert.Contains(t, res.Answer, "Please arrange my usual car.")
		assert.Contains(t, res.Answer, "Vikram Desai")
		// Fallback confidence must sit below an exact match at equal relevance.
		exact := ExtractAnswer(models.ParsedQuestion{Type: models.QuestionWhen}, ranked(testCorpus[0], 0.6))
		assert.Less(t, res.Confidence, exact.Confidence)
	})
}

func TestExtractAnswerHowMany(t *testing.T) {
	t.Run("spelled-out number normalized next to unit", func(t *testing.T) {
		parsed := models.ParsedQuestion{Type: models.QuestionHowMany}
		res := ExtractAnswer(parsed, ranked(testCorpus[1], 0.85))

		assert.Contains(t, res.Answer, "4 people")
		require.NotNil(t, res.SourceMessage)
		assert.Equal(t, "m2", res.SourceMessage.ID)
	})

	t.Run("numeral with unit", func(t *testing.T) {
		msg := models.Message{ID: "q", Author: "Armand Dupont", Text: "Reserve 6 seats please."}
		res := ExtractAnswer(models.ParsedQuestion{Type: models.QuestionHowMany}, ranked(msg, 0.5))
		assert.Contains(t, res.Answer, "6 seats")
	})

	t.Run("bare number fallback", func(t *testing.T) {
		msg := models.Message{ID: "b", Author: "Vikram Desai", Text: "The gate code is 9876 apparently."}
		res := ExtractAnswer(models.ParsedQuestion{Type: models.QuestionHowMany}, ranked(msg, 0.5))
		assert.Contains(t, res.Answer, "9876")
	})

	t.Run("no number falls back to whole message", func(t *testing.T) {
		msg := models.Message{ID: "w", Author: "Vikram Desai", Text: "No numbers here at all."}
		res := ExtractAnswer(models.ParsedQuestion{Type: models.QuestionHowMany}, ranked(msg, 0.5))
		assert.Contains(t, res.Answer, "No numbers here at all.")
	})
}

func TestExtractAnswerWhat(t *testing.T) {
	parsed := models.ParsedQuestion{
		Type:           models.QuestionWhat,
		TargetEntities: []string{"Fatima"},
	}
	res := ExtractAnswer(parsed, ranked(testCorpus[1], 0.7))

	assert.Contains(t, res.Answer, "The French Laundry")
	require.NotNil(t, res.SourceMessage)
	assert.Equal(t, "m2", res.SourceMessage.ID)
}

func TestExtractAnswerWhere(t *testing.T) {
	t.Run("place after preposition", func(t *testing.T) {
		parsed := models.ParsedQuestion{
			Type:           models.QuestionWhere,
			TargetEntities: []string{"Armand"},
		}
		res := ExtractAnswer(parsed, ranked(testCorpus[2], 0.7))
		assert.Contains(t, res.Answer, "Milan")
	})

	t.Run("target entity is not the answer", func(t *testing.T) {
		msg := models.Message{ID: "p", Author: "Sophia Al-Farsi", Text: "Sophia will land in Geneva."}
		parsed := models.ParsedQuestion{
			Type:           models.QuestionWhere,
			TargetEntities: []string{"Sophia"},
		}
		res := ExtractAnswer(parsed, ranked(msg, 0.7))
		assert.Contains(t, res.Answer, "Geneva")
	})
}

func TestExtractAnswerWho(t *testing.T) {
	parsed := models.ParsedQuestion{Type: models.QuestionWho}
	res := ExtractAnswer(parsed, ranked(testCorpus[0], 0.6))

	assert.Contains(t, res.Answer, "Sophia Al-Farsi")
	require.NotNil(t, res.SourceMessage)
	assert.Equal(t, "m1", res.SourceMessage.ID)
}

func TestExtractAnswerWhyClause(t *testing.T) {
	parsed := models.ParsedQuestion{
		Type:     models.QuestionWhy,
		Keywords: []string{"wine", "tasting"},
	}
	res := ExtractAnswer(parsed, ranked(testCorpus[3], 0.6))

	assert.Contains(t, res.Answer, "wine tasting")
	assert.Contains(t, res.Answer, "Vikram Desai")
}

func TestExtractAnswerUnknownTypeFallsBack(t *testing.T) {
	parsed := models.ParsedQuestion{Type: models.QuestionUnknown}
	res := ExtractAnswer(parsed, ranked(testCorpus[0], 0.4))

	assert.Contains(t, res.Answer, "Based on Sophia Al-Farsi's message")
	assert.Greater(t, res.Confidence, 0.0)
}

func TestExtractAnswerNoCandidates(t *testing.T) {
	parsed := models.ParsedQuestion{
		Type:           models.QuestionWhen,
		TargetEntities: []string{"Maximilian"},
	}
	res := ExtractAnswer(parsed, nil)

	assert.Zero(t, res.Confidence)
	assert.Nil(t, res.SourceMessage)
	assert.Contains(t, res.Answer, "couldn't find any information about Maximilian")
}

func TestConfidenceOrdering(t *testing.T) {
	// More specific match strategies must yield higher confidence at
	// equal relevance.
	rel := 0.6
	assert.Greater(t, confidence(rel, certaintyExact), confidence(rel, certaintyWeak))
	assert.Greater(t, confidence(rel, certaintyWeak), confidence(rel, certaintyClause))
	assert.Greater(t, confidence(rel, certaintyClause), confidence(rel, certaintyFallback))

	// Confidence never decreases as relevance grows.
	assert.GreaterOrEqual(t, confidence(0.9, certaintyExact), confidence(0.2, certaintyExact))
}
