package corpus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/auroraclub/memberqa/internal/models"
)

// CachedProvider owns the live corpus snapshot. It refreshes from its
// fetcher when the cached copy ages past the TTL (or on the background
// refresh interval) and swaps the snapshot atomically, so concurrent
// readers always see a complete, immutable message sequence. A failed
// refresh keeps serving the previous snapshot rather than erroring.
type CachedProvider struct {
	fetcher Fetcher
	archive Archiver
	ttl     time.Duration
	logger  *zap.Logger

	mu   sync.RWMutex
	snap Snapshot
}

func NewCachedProvider(fetcher Fetcher, ttl time.Duration, logger *zap.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedProvider{
		fetcher: fetcher,
		ttl:     ttl,
		logger:  logger,
	}
}

// WithArchive persists every refreshed snapshot to the given store,
// best-effort.
func (p *CachedProvider) WithArchive(archive Archiver) *CachedProvider {
	p.archive = archive
	return p
}

// Snapshot returns the cached corpus, refreshing it first when stale.
func (p *CachedProvider) Snapshot(ctx context.Context) (Snapshot, error) {
	p.mu.RLock()
	snap := p.snap
	p.mu.RUnlock()

	if snap.Version > 0 && time.Since(snap.FetchedAt) < p.ttl {
		return snap, nil
	}

	if err := p.Refresh(ctx); err != nil {
		if snap.Version > 0 {
			p.logger.Warn("refresh failed, serving stale corpus snapshot",
				zap.Error(err),
				zap.Int64("version", snap.Version),
				zap.Time("fetched_at", snap.FetchedAt))
			return snap, nil
		}
		return Snapshot{}, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snap, nil
}

// Refresh fetches the corpus and installs it as the new snapshot.
func (p *CachedProvider) Refresh(ctx context.Context) error {
	messages, err := p.fetcher.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("refreshing corpus: %w", err)
	}

	p.mu.Lock()
	p.snap = Snapshot{
		Messages:  messages,
		Version:   p.snap.Version + 1,
		FetchedAt: time.Now(),
	}
	version := p.snap.Version
	p.mu.Unlock()

	p.logger.Info("corpus snapshot refreshed",
		zap.Int64("version", version),
		zap.Int("messages", len(messages)))

	if p.archive != nil {
		if err := p.archive.SaveMessages(ctx, messages); err != nil {
			p.logger.Error("failed to archive corpus snapshot", zap.Error(err))
		}
	}
	return nil
}

// Run refreshes the snapshot on a fixed interval until the context is
// cancelled. Meant to run in its own goroutine.
func (p *CachedProvider) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = p.ttl
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.Refresh(ctx); err != nil {
				p.logger.Error("scheduled corpus refresh failed", zap.Error(err))
			}
		}
	}
}

// Stats reports the cached snapshot's size, version and age for the
// health and stats endpoints.
func (p *CachedProvider) Stats() (count int, version int64, fetchedAt time.Time) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.snap.Messages), p.snap.Version, p.snap.FetchedAt
}

func (p *CachedProvider) Close() error {
	return nil
}

// StaticProvider serves a fixed in-memory corpus. Used in tests and
// for local runs without an upstream.
type StaticProvider struct {
	snap Snapshot
}

func NewStaticProvider(messages []models.Message) *StaticProvider {
	return &StaticProvider{
		snap: Snapshot{
			Messages:  messages,
			Version:   1,
			FetchedAt: time.Now(),
		},
	}
}

func (p *StaticProvider) Snapshot(context.Context) (Snapshot, error) {
	return p.snap, nil
}

func (p *StaticProvider) Close() error {
	return nil
}
