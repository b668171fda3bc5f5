package sources

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/maine/idx_news_movers/internal/config"
	"github.com/maine/idx_news_movers/internal/logger"
	"github.com/maine/idx_news_movers/internal/news"
)

// Fetcher загружает кандидатов из одного источника.
type Fetcher interface {
	Fetch(ctx context.Context, src config.Source) ([]news.CandidateItem, error)
}

// Collector опрашивает источники пулом ограниченного размера.
// Ошибка одного источника не прерывает остальные.
type Collector struct {
	sources  []config.Source
	fetchers map[string]Fetcher
	workers  int
	timeout  time.Duration
}

// NewCollector создаёт сборщик. fetchers сопоставляет config.Source.Kind с реализацией.
func NewCollector(srcs []config.Source, fetchers map[string]Fetcher, workers int, timeout time.Duration) *Collector {
	if workers <= 0 {
		workers = config.DefaultWorkers
	}
	if timeout <= 0 {
		timeout = config.DefaultFetchTimeout
	}
	return &Collector{
		sources:  srcs,
		fetchers: fetchers,
		workers:  workers,
		timeout:  timeout,
	}
}

// Sources возвращает настроенные источники.
func (c *Collector) Sources() []config.Source {
	return c.sources
}

// Collect реализует app.SourceCollector. Порядок результата детерминирован:
// порядок источников в конфигурации, затем порядок записей в источнике.
func (c *Collector) Collect(ctx context.Context) ([]news.CandidateItem, []news.SourceReport) {
	type result struct {
		items []news.CandidateItem
		err   error
	}
	results := make([]result, len(c.sources))

	var g errgroup.Group
	g.SetLimit(c.workers)
	for i, src := range c.sources {
		g.Go(func() error {
			items, err := c.fetchOne(ctx, src)
			results[i] = result{items: items, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var all []news.CandidateItem
	reports := make([]news.SourceReport, 0, len(c.sources))
	for i, src := range c.sources {
		r := results[i]
		reports = append(reports, news.SourceReport{Source: src.ID, Items: len(r.items), Err: r.err})
		if r.err != nil {
			logger.Warn(ctx, "source skipped", "source", src.ID, "url", src.URL, "error", r.err)
			continue
		}
		logger.Debug(ctx, "source fetched", "source", src.ID, "items", len(r.items))
		all = append(all, r.items...)
	}
	return all, reports
}

func (c *Collector) fetchOne(ctx context.Context, src config.Source) ([]news.CandidateItem, error) {
	fetcher, ok := c.fetchers[src.Kind]
	if !ok || fetcher == nil {
		return nil, fmt.Errorf("no fetcher for source kind %q", src.Kind)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	items, err := fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.ID, err)
	}
	return items, nil
}

// NewDefaultCollector собирает Collector по конфигурации: явные источники и ленты
// Google News, RSS/Atom и HTML-фетчеры на общем http.Client.
func NewDefaultCollector(cfg config.Root, client *http.Client, loc *time.Location) *Collector {
	p := cfg.Pipeline
	fetchers := map[string]Fetcher{
		config.SourceRSS:  NewRSSFetcher(client, time.Now, p.MaxItemsPerFeed),
		config.SourceHTML: NewPageFetcher(client, time.Now, loc, p.MaxItemsPerFeed),
	}
	return NewCollector(All(cfg), fetchers, p.Workers, p.FetchTimeout)
}
