package models

import "time"

// Message is a single member message as returned by the corpus provider.
// Messages are immutable once fetched; the answer pipeline never mutates them.
type Message struct {
	ID        string    `json:"id"`
	Author    string    `json:"user_name"`
	Text      string    `json:"message"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// QuestionType is the closed set of recognized question categories.
type QuestionType string

const (
	QuestionWhen    QuestionType = "when"
	QuestionWhat    QuestionType = "what"
	QuestionWhere   QuestionType = "where"
	QuestionWho     QuestionType = "who"
	QuestionHowMany QuestionType = "how_many"
	QuestionWhy     QuestionType = "why"
	QuestionHow     QuestionType = "how"
	QuestionUnknown QuestionType = "unknown"
)

// ParsedQuestion is the classifier's view of a question.
// Derived once per request, never persisted.
type ParsedQuestion struct {
	RawText        string       `json:"raw_text"`
	Type           QuestionType `json:"question_type"`
	TargetEntities []string     `json:"target_entities"`
	Keywords       []string     `json:"keywords"`
}

// RankedCandidate pairs a corpus message with its relevance to a question.
type RankedCandidate struct {
	Message Message `json:"message"`
	Score   float64 `json:"relevance_score"`
}

// AnswerResult is the terminal output of one query.
// SourceMessage is nil when no candidate cleared the relevance threshold.
type AnswerResult struct {
	Answer        string   `json:"answer"`
	Confidence    float64  `json:"confidence"`
	SourceMessage *Message `json:"source_message,omitempty"`
	Method        string   `json:"method"`
}

// QueryResult is the orchestrator's full response: the answer plus the
// intermediate data the analytics sink records per query.
type QueryResult struct {
	AnswerResult
	QuestionType     QuestionType `json:"question_type"`
	TargetEntities   []string     `json:"target_entities"`
	MessagesSearched int          `json:"messages_searched"`

	// Intermediate ranking data, emitted for the analytics sink.
	CandidatesRanked int     `json:"candidates_ranked"`
	TopRelevance     float64 `json:"top_relevance"`
}
