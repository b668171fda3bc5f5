package sources

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/maine/idx_news_movers/internal/config"
	"github.com/maine/idx_news_movers/internal/identity"
	"github.com/maine/idx_news_movers/internal/news"
)

// RSSFetcher загружает новости из RSS 2.0 и Atom лент.
type RSSFetcher struct {
	client   *http.Client
	clock    func() time.Time
	maxItems int
}

// NewRSSFetcher создаёт новый экземпляр. При maxItems <= 0 ограничения нет.
func NewRSSFetcher(client *http.Client, clock func() time.Time, maxItems int) *RSSFetcher {
	if clock == nil {
		clock = time.Now
	}
	return &RSSFetcher{
		client:   defaultClient(client),
		clock:    clock,
		maxItems: maxItems,
	}
}

// Fetch реализует Fetcher.
func (f *RSSFetcher) Fetch(ctx context.Context, src config.Source) ([]news.CandidateItem, error) {
	body, err := fetchBody(ctx, f.client, src.URL, feedAccept)
	if err != nil {
		return nil, err
	}

	feed, err := parseFeed(body)
	if err != nil {
		return nil, err
	}

	return f.toCandidates(src, feed.Items), nil
}

func (f *RSSFetcher) toCandidates(src config.Source, items []*gofeed.Item) []news.CandidateItem {
	// обычно первые записи ленты самые свежие
	if f.maxItems > 0 && len(items) > f.maxItems {
		items = items[:f.maxItems]
	}

	now := f.clock()
	out := make([]news.CandidateItem, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}

		title := cleanTitle(item.Title)
		link := strings.TrimSpace(item.Link)
		if link == "" && len(item.Links) > 0 {
			link = strings.TrimSpace(item.Links[0])
		}
		if title == "" || link == "" {
			continue
		}

		out = append(out, news.CandidateItem{
			Source:      src.ID,
			Title:       title,
			Link:        identity.ResolveLink(src.URL, link),
			Body:        StripMarkup(selectContent(item)),
			PublishedAt: publishedAt(item, now),
		})
	}
	return out
}

func selectContent(item *gofeed.Item) string {
	if strings.TrimSpace(item.Description) != "" {
		return item.Description
	}
	return item.Content
}

func publishedAt(item *gofeed.Item, fallback time.Time) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return *item.PublishedParsed
	case item.UpdatedParsed != nil:
		return *item.UpdatedParsed
	default:
		return fallback
	}
}

func parseFeed(data []byte) (*gofeed.Feed, error) {
	parser := gofeed.NewParser()
	feed, err := parser.Parse(bytes.NewReader(data))
	if err != nil {
		// некоторые ленты содержат голые '&', пробуем ещё раз после починки
		feed, err = parser.Parse(bytes.NewReader(fixXMLEntities(data)))
		if err != nil {
			return nil, fmt.Errorf("parse feed: %w", err)
		}
	}
	return feed, nil
}

// fixXMLEntities заменяет '&', за которым не следует сущность, на &amp;.
func fixXMLEntities(data []byte) []byte {
	result := bytes.ReplaceAll(data, []byte("& "), []byte("&amp; "))
	result = bytes.ReplaceAll(result, []byte("&,"), []byte("&amp;,"))
	result = bytes.ReplaceAll(result, []byte("&."), []byte("&amp;."))
	result = bytes.ReplaceAll(result, []byte("&;"), []byte("&amp;;"))
	return result
}
