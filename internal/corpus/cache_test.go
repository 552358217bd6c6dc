package corpus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auroraclub/memberqa/internal/models"
)

type stubFetcher struct {
	messages []models.Message
	err      error
	calls    int
}

func (s *stubFetcher) FetchAll(context.Context) ([]models.Message, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.messages, nil
}

func sampleMessages() []models.Message {
	return []models.Message{
		{ID: "1", Author: "Sophia Al-Farsi", Text: "Please book a private jet to Paris for this Friday."},
		{ID: "2", Author: "Armand Dupont", Text: "I need two tickets for the opera in Milan next Saturday."},
	}
}

func TestCachedProviderFetchesOnce(t *testing.T) {
	fetcher := &stubFetcher{messages: sampleMessages()}
	p := NewCachedProvider(fetcher, time.Minute, nil)
	ctx := context.Background()

	first, err := p.Snapshot(ctx)
	require.NoError(t, err)
	second, err := p.Snapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, int64(1), first.Version)
	assert.Equal(t, first.Version, second.Version)
	assert.Len(t, first.Messages, 2)
}

func TestCachedProviderRefreshBumpsVersion(t *testing.T) {
	fetcher := &stubFetcher{messages: sampleMessages()}
	p := NewCachedProvider(fetcher, time.Minute, nil)
	ctx := context.Background()

	require.NoError(t, p.Refresh(ctx))
	require.NoError(t, p.Refresh(ctx))

	snap, err := p.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), snap.Version)
	assert.Equal(t, 2, fetcher.calls)
}

func TestCachedProviderServesStaleOnError(t *testing.T) {
	fetcher := &stubFetcher{messages: sampleMessages()}
	p := NewCachedProvider(fetcher, time.Nanosecond, nil)
	ctx := context.Background()

	require.NoError(t, p.Refresh(ctx))
	fetcher.err = errors.New("upstream down")

	snap, err := p.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.Version)
	assert.Len(t, snap.Messages, 2)
}

func TestCachedProviderErrorsWithoutSnapshot(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("upstream down")}
	p := NewCachedProvider(fetcher, time.Minute, nil)

	_, err := p.Snapshot(context.Background())
	require.Error(t, err)
}

type stubArchiver struct {
	saved [][]models.Message
}

func (s *stubArchiver) SaveMessages(_ context.Context, messages []models.Message) error {
	s.saved = append(s.saved, messages)
	return nil
}

func TestCachedProviderArchivesOnRefresh(t *testing.T) {
	fetcher := &stubFetcher{messages: sampleMessages()}
	archive := &stubArchiver{}
	p := NewCachedProvider(fetcher, time.Minute, nil).WithArchive(archive)

	require.NoError(t, p.Refresh(context.Background()))

	require.Len(t, archive.saved, 1)
	assert.Len(t, archive.saved[0], 2)
}

func TestCachedProviderStats(t *testing.T) {
	fetcher := &stubFetcher{messages: sampleMessages()}
	p := NewCachedProvider(fetcher, time.Minute, nil)
	require.NoError(t, p.Refresh(context.Background()))

	count, version, fetchedAt := p.Stats()
	assert.Equal(t, 2, count)
	assert.Equal(t, int64(1), version)
	assert.WithinDuration(t, time.Now(), fetchedAt, time.Minute)
}

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider(sampleMessages())

	snap, err := p.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.Version)
	assert.Len(t, snap.Messages, 2)
	require.NoError(t, p.Close())
}

func TestUniqueAuthors(t *testing.T) {
	msgs := append(sampleMessages(), models.Message{ID: "3", Author: "Sophia Al-Farsi", Text: "Also a spa day."})
	assert.Equal(t, 2, UniqueAuthors(msgs))
	assert.Zero(t, UniqueAuthors(nil))
}
