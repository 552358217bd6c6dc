package engine

import (
	"go.uber.org/zap"

	"github.com/auroraclub/memberqa/internal/models"
)

// Engine composes the classifier, ranker and answer extractor into one
// question -> answer transaction. It holds no per-query state: each
// Answer call works on an immutable question and corpus snapshot, so
// concurrent queries need no locking.
type Engine struct {
	weights ScoringWeights
	logger  *zap.Logger
}

func New(weights ScoringWeights, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		weights: weights,
		logger:  logger,
	}
}

// Answer runs the full pipeline for one question against one corpus
// snapshot. It never returns an error for semantically valid inputs:
// anything unexpected degrades into a zero-confidence result instead
// of propagating, and messages_searched always reports the full corpus
// size.
func (e *Engine) Answer(question string, corpus []models.Message) (result models.QueryResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("answer pipeline recovered from panic",
				zap.Any("panic", r),
				zap.String("question", question))
			result = models.QueryResult{
				AnswerResult: models.AnswerResult{
					Answer:     "I couldn't process that question. Please try rephrasing it.",
					Confidence: 0,
					Method:     MethodTag,
				},
				QuestionType:     models.QuestionUnknown,
				MessagesSearched: len(corpus),
			}
		}
	}()

	parsed := Classify(question)
	ranked := Rank(corpus, parsed, e.weights)

	topScore := 0.0
	if len(ranked) > 0 {
		topScore = ranked[0].Score
	}

	e.logger.Debug("ranked corpus for question",
		zap.String("question_type", string(parsed.Type)),
		zap.Strings("target_entities", parsed.TargetEntities),
		zap.Int("candidates", len(ranked)),
		zap.Float64("top_score", topScore))

	answer := ExtractAnswer(parsed, ranked)

	return models.QueryResult{
		AnswerResult:     answer,
		QuestionType:     parsed.Type,
		TargetEntities:   parsed.TargetEntities,
		MessagesSearched: len(corpus),
		CandidatesRanked: len(ranked),
		TopRelevance:     topScore,
	}
}

// Parse exposes the classifier for callers that only need question
// analysis (validation, logging).
func (e *Engine) Parse(question string) models.ParsedQuestion {
	return Classify(question)
}
