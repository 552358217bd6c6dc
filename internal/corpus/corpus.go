package corpus

import (
	"context"
	"time"

	"github.com/auroraclub/memberqa/internal/models"
)

// Snapshot is one immutable view of the corpus. The answer pipeline
// works on whichever snapshot it was handed for the whole query, even
// if a refresh replaces it mid-flight.
type Snapshot struct {
	Messages  []models.Message
	Version   int64
	FetchedAt time.Time
}

// Provider hands out corpus snapshots: a finite, deduplicated sequence
// of messages in stable order.
type Provider interface {
	Snapshot(ctx context.Context) (Snapshot, error)
	Close() error
}

// Fetcher retrieves the full message set from its origin.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]models.Message, error)
}

// Archiver persists fetched snapshots for offline use.
type Archiver interface {
	SaveMessages(ctx context.Context, messages []models.Message) error
}

// UniqueAuthors counts distinct author names in a message set.
func UniqueAuthors(messages []models.Message) int {
	authors := make(map[string]struct{}, len(messages))
	for _, msg := range messages {
		authors[msg.Author] = struct{}{}
	}
	return len(authors)
}
