package engine

import (
	"strings"

	"github.com/auroraclub/memberqa/internal/models"
)

// Classify maps a question string to a ParsedQuestion: its type plus
// the target entities and keywords extracted from it.
//
// The type is decided by a priority-ordered scan of the trigger table;
// the first matching phrase wins, so "how many tickets" classifies as
// how_many and never as how. Malformed input never fails: a question
// with no trigger (or an empty string) classifies as unknown with
// best-effort extraction, and the orchestrator decides what to do
// with it.
func Classify(question string) models.ParsedQuestion {
	parsed := models.ParsedQuestion{
		RawText: question,
		Type:    models.QuestionUnknown,
	}

	lower := strings.ToLower(strings.TrimSpace(question))
	if lower == "" {
		return parsed
	}

	for _, tt := range typeTriggers {
		for _, trigger := range tt.Triggers {
			if strings.Contains(lower, trigger) {
				parsed.Type = tt.Type
				break
			}
		}
		if parsed.Type != models.QuestionUnknown {
			break
		}
	}

	extraction := Extract(question)
	parsed.TargetEntities = extraction.Entities
	parsed.Keywords = extraction.Keywords

	return parsed
}
