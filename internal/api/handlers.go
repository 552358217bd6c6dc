package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/auroraclub/memberqa/internal/corpus"
)

const (
	minQuestionLen = 5
	maxQuestionLen = 500
)

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer           string   `json:"answer"`
	Confidence       float64  `json:"confidence"`
	MessagesSearched int      `json:"messages_searched"`
	QuestionType     string   `json:"question_type"`
	TargetEntities   []string `json:"target_entities"`
	Method           string   `json:"method"`
	Timestamp        string   `json:"timestamp"`
	ProcessingTimeMS float64  `json:"processing_time_ms"`
}

func (s *Server) handleAskPost(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be JSON with a 'question' field")
		return
	}
	defer r.Body.Close()
	s.answer(w, r, req.Question)
}

func (s *Server) handleAskGet(w http.ResponseWriter, r *http.Request) {
	question := r.URL.Query().Get("question")
	if question == "" {
		question = r.URL.Query().Get("q")
	}
	s.answer(w, r, question)
}

func (s *Server) answer(w http.ResponseWriter, r *http.Request, question string) {
	requestID := requestIDFrom(r.Context())
	question = strings.TrimSpace(question)

	if reason := validateQuestion(question); reason != "" {
		s.queries.LogError(requestID, question, reason)
		writeError(w, http.StatusBadRequest, reason)
		return
	}

	snap, err := s.provider.Snapshot(r.Context())
	if err != nil {
		s.queries.LogError(requestID, question, "corpus unavailable")
		writeError(w, http.StatusServiceUnavailable, "message corpus is unavailable, try again shortly")
		return
	}

	start := time.Now()
	res := s.engine.Answer(question, snap.Messages)
	elapsedMS := float64(time.Since(start).Microseconds()) / 1000

	s.queries.LogQuery(requestID, question, res, elapsedMS)

	writeJSON(w, http.StatusOK, askResponse{
		Answer:           res.Answer,
		Confidence:       res.Confidence,
		MessagesSearched: res.MessagesSearched,
		QuestionType:     string(res.QuestionType),
		TargetEntities:   res.TargetEntities,
		Method:           res.Method,
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
		ProcessingTimeMS: elapsedMS,
	})
}

func validateQuestion(question string) string {
	switch {
	case question == "":
		return "question is required"
	case len(question) < minQuestionLen:
		return "question is too short (minimum 5 characters)"
	case len(question) > maxQuestionLen:
		return "question is too long (maximum 500 characters)"
	}
	return ""
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap, err := s.provider.Snapshot(r.Context())
	status := "ok"
	code := http.StatusOK
	if err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status":         status,
		"messages":       len(snap.Messages),
		"corpus_version": snap.Version,
		"uptime_seconds": int(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap, _ := s.provider.Snapshot(r.Context())
	stats := s.queries.Stats()

	writeJSON(w, http.StatusOK, map[string]any{
		"messages":       len(snap.Messages),
		"unique_authors": corpus.UniqueAuthors(snap.Messages),
		"corpus_version": snap.Version,
		"corpus_age":     time.Since(snap.FetchedAt).String(),
		"request_count":  stats.RequestCount,
		"error_count":    stats.ErrorCount,
		"question_types": []string{"when", "what", "where", "who", "how_many", "why", "how"},
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.queries.Stats())
}

func (s *Server) handleExamples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"examples": []string{
			"When is Sophia planning her trip to Paris?",
			"How many people does Fatima need dinner reservations for?",
			"Where does Armand want to see the opera?",
			"Who requested a private jet?",
			"What restaurant did Fatima book?",
			"Why does Vikram want another wine tasting?",
		},
		"usage": "POST /ask with {\"question\": \"...\"} or GET /ask?q=...",
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "member message question answering",
		"endpoints": []string{
			"POST /ask", "GET /ask?q=", "GET /health", "GET /stats", "GET /logs", "GET /examples",
		},
	})
}
