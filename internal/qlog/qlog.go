// Package qlog records every answered question to rotating JSON log
// files and keeps running counters for the stats endpoints.
package qlog

import (
	"os"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/auroraclub/memberqa/internal/models"
)

type Config struct {
	Directory  string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type Logger struct {
	log       *zap.Logger
	rotator   *lumberjack.Logger
	directory string

	requests atomic.Int64
	errors   atomic.Int64
}

func New(cfg Config) (*Logger, error) {
	if cfg.Directory == "" {
		cfg.Directory = "logs"
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 5
	}
	if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
		return nil, err
	}

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Directory, "queries.log"),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(rotator),
		zapcore.InfoLevel,
	)

	return &Logger{
		log:       zap.New(core),
		rotator:   rotator,
		directory: cfg.Directory,
	}, nil
}

// LogQuery records one answered question with its outcome.
func (l *Logger) LogQuery(requestID, question string, res models.QueryResult, durationMS float64) {
	l.requests.Add(1)
	l.log.Info("query",
		zap.String("request_id", requestID),
		zap.String("question", question),
		zap.String("question_type", string(res.QuestionType)),
		zap.Strings("target_entities", res.TargetEntities),
		zap.Float64("confidence", res.Confidence),
		zap.Int("messages_searched", res.MessagesSearched),
		zap.Int("candidates_ranked", res.CandidatesRanked),
		zap.Float64("top_relevance", res.TopRelevance),
		zap.String("answer", res.Answer),
		zap.Float64("processing_time_ms", durationMS),
	)
}

// LogError records a rejected or failed request.
func (l *Logger) LogError(requestID, question, reason string) {
	l.requests.Add(1)
	l.errors.Add(1)
	l.log.Warn("query_error",
		zap.String("request_id", requestID),
		zap.String("question", question),
		zap.String("reason", reason),
	)
}

type Stats struct {
	RequestCount   int64   `json:"request_count"`
	ErrorCount     int64   `json:"error_count"`
	TotalLogSizeMB float64 `json:"total_log_size_mb"`
	Files          int     `json:"files"`
}

// Stats reports the counters plus the on-disk footprint of the log
// directory.
func (l *Logger) Stats() Stats {
	st := Stats{
		RequestCount: l.requests.Load(),
		ErrorCount:   l.errors.Load(),
	}

	entries, err := os.ReadDir(l.directory)
	if err != nil {
		return st
	}
	var totalBytes int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		st.Files++
		totalBytes += info.Size()
	}
	st.TotalLogSizeMB = float64(totalBytes) / (1024 * 1024)
	return st
}

func (l *Logger) Close() error {
	l.log.Sync()
	return l.rotator.Close()
}
