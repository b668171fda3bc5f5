package sources

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maine/idx_news_movers/internal/config"
	"github.com/maine/idx_news_movers/internal/news"
)

type mockFetcher struct {
	FetchFunc func(ctx context.Context, src config.Source) ([]news.CandidateItem, error)
}

func (m *mockFetcher) Fetch(ctx context.Context, src config.Source) ([]news.CandidateItem, error) {
	return m.FetchFunc(ctx, src)
}

func itemsFor(src string, n int) []news.CandidateItem {
	out := make([]news.CandidateItem, n)
	for i := range out {
		out[i] = news.CandidateItem{Source: src, Title: src + " title", Link: "https://" + src + ".id/" + string(rune('a'+i))}
	}
	return out
}

func TestCollector_IsolatesFailingSource(t *testing.T) {
	srcs := []config.Source{
		{ID: "a", Kind: config.SourceRSS},
		{ID: "b", Kind: config.SourceRSS},
		{ID: "c", Kind: config.SourceHTML},
	}
	rss := &mockFetcher{FetchFunc: func(ctx context.Context, src config.Source) ([]news.CandidateItem, error) {
		if src.ID == "b" {
			return nil, errors.New("connection refused")
		}
		return itemsFor(src.ID, 2), nil
	}}
	page := &mockFetcher{FetchFunc: func(ctx context.Context, src config.Source) ([]news.CandidateItem, error) {
		return itemsFor(src.ID, 3), nil
	}}

	c := NewCollector(srcs, map[string]Fetcher{config.SourceRSS: rss, config.SourceHTML: page}, 2, time.Second)
	items, reports := c.Collect(context.Background())

	require.Len(t, items, 5)
	for _, it := range items[:2] {
		assert.Equal(t, "a", it.Source)
	}
	for _, it := range items[2:] {
		assert.Equal(t, "c", it.Source)
	}

	require.Len(t, reports, 3)
	assert.NoError(t, reports[0].Err)
	assert.Equal(t, 2, reports[0].Items)
	assert.Error(t, reports[1].Err)
	assert.Equal(t, 0, reports[1].Items)
	assert.Equal(t, 3, reports[2].Items)
}

func TestCollector_UnknownKind(t *testing.T) {
	c := NewCollector([]config.Source{{ID: "x", Kind: "ftp"}}, map[string]Fetcher{}, 1, time.Second)
	items, reports := c.Collect(context.Background())

	assert.Empty(t, items)
	require.Len(t, reports, 1)
	assert.ErrorContains(t, reports[0].Err, "ftp")
}

func TestCollector_Timeout(t *testing.T) {
	slow := &mockFetcher{FetchFunc: func(ctx context.Context, src config.Source) ([]news.CandidateItem, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}

	c := NewCollector([]config.Source{{ID: "slow", Kind: config.SourceRSS}}, map[string]Fetcher{config.SourceRSS: slow}, 1, 20*time.Millisecond)
	_, reports := c.Collect(context.Background())

	require.Len(t, reports, 1)
	assert.ErrorIs(t, reports[0].Err, context.DeadlineExceeded)
}

func TestCollector_WorkerLimit(t *testing.T) {
	var inFlight, peak int32
	f := &mockFetcher{FetchFunc: func(ctx context.Context, src config.Source) ([]news.CandidateItem, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return nil, nil
	}}

	srcs := make([]config.Source, 8)
	for i := range srcs {
		srcs[i] = config.Source{ID: string(rune('a' + i)), Kind: config.SourceRSS}
	}

	c := NewCollector(srcs, map[string]Fetcher{config.SourceRSS: f}, 3, time.Second)
	_, reports := c.Collect(context.Background())

	assert.Len(t, reports, 8)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}
