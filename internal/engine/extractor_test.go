package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractEntities(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     []string
	}{
		{
			name:     "single names",
			question: "When is Sophia planning her trip to Paris?",
			want:     []string{"Sophia", "Paris"},
		},
		{
			name:     "multi-word name merges into one entity",
			question: "Does Vikram Desai own three cars?",
			want:     []string{"Vikram Desai"},
		},
		{
			name:     "question words are not entities",
			question: "When Where What Who",
			want:     nil,
		},
		{
			name:     "punctuation is stripped",
			question: "Is Fatima in Dubai?",
			want:     []string{"Fatima", "Dubai"},
		},
		{
			name:     "single capitalized word",
			question: "Paris",
			want:     []string{"Paris"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.question)
			assert.Equal(t, tt.want, got.Entities)
		})
	}
}

func TestExtractKeywords(t *testing.T) {
	got := Extract("What restaurant did Fatima book for dinner?")
	assert.Equal(t, []string{"restaurant", "fatima", "book", "dinner"}, got.Keywords)
}

func TestExtractKeywordsDropsStopWordsAndDigits(t *testing.T) {
	got := Extract("When will the 12 cars arrive at the hotel?")
	assert.NotContains(t, got.Keywords, "when")
	assert.NotContains(t, got.Keywords, "the")
	assert.NotContains(t, got.Keywords, "12")
	assert.Contains(t, got.Keywords, "cars")
	assert.Contains(t, got.Keywords, "hotel")
}

func TestExtractEmptyQuestion(t *testing.T) {
	got := Extract("")
	assert.Empty(t, got.Entities)
	assert.Empty(t, got.Keywords)
}

func TestExtractIsDeterministic(t *testing.T) {
	const q = "How many tickets does Armand Dupont need for the opera in Milan?"
	first := Extract(q)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Extract(q))
	}
}
