package sources

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/maine/idx_news_movers/internal/config"
	"github.com/maine/idx_news_movers/internal/identity"
	"github.com/maine/idx_news_movers/internal/news"
)

// Селекторы по умолчанию подходят для большинства новостных лент на <article>.
var defaultSelectors = config.Selectors{
	Item:      "article",
	Title:     "h1, h2, h3, h4, a",
	Link:      "a[href]",
	Summary:   "p",
	Published: "time",
}

// PageFetcher извлекает новости из HTML-страницы по CSS-селекторам.
type PageFetcher struct {
	client   *http.Client
	clock    func() time.Time
	loc      *time.Location
	maxItems int
}

// NewPageFetcher создаёт новый экземпляр. loc используется для дат без часового пояса.
func NewPageFetcher(client *http.Client, clock func() time.Time, loc *time.Location, maxItems int) *PageFetcher {
	if clock == nil {
		clock = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &PageFetcher{
		client:   defaultClient(client),
		clock:    clock,
		loc:      loc,
		maxItems: maxItems,
	}
}

// Fetch реализует Fetcher.
func (f *PageFetcher) Fetch(ctx context.Context, src config.Source) ([]news.CandidateItem, error) {
	body, err := fetchBody(ctx, f.client, src.URL, pageAccept)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return f.extract(doc, src), nil
}

func (f *PageFetcher) extract(doc *goquery.Document, src config.Source) []news.CandidateItem {
	sel := withDefaults(src.Selectors)
	now := f.clock()
	seen := make(map[string]struct{})

	var out []news.CandidateItem
	doc.Find(sel.Item).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		if f.maxItems > 0 && len(out) >= f.maxItems {
			return false
		}

		title := cleanTitle(pick(item, sel.Title).Text())
		href, _ := pick(item, sel.Link).Attr("href")
		link := identity.ResolveLink(src.URL, href)
		if title == "" || link == "" || strings.HasPrefix(strings.TrimSpace(href), "#") {
			return true
		}
		if _, dup := seen[link]; dup {
			return true
		}
		seen[link] = struct{}{}

		var summary string
		if sel.Summary != "" {
			summary = StripMarkup(item.Find(sel.Summary).First().Text())
		}

		published := now
		if sel.Published != "" {
			ts := item.Find(sel.Published).First()
			raw, ok := ts.Attr("datetime")
			if !ok {
				raw = ts.Text()
			}
			published = parseTime(raw, f.loc, now)
		}

		out = append(out, news.CandidateItem{
			Source:      src.ID,
			Title:       title,
			Link:        link,
			Body:        summary,
			PublishedAt: published,
		})
		return true
	})
	return out
}

// pick ищет первый элемент по селектору внутри item; сам item подходит, если он совпадает.
func pick(item *goquery.Selection, selector string) *goquery.Selection {
	if item.Is(selector) {
		return item
	}
	return item.Find(selector).First()
}

func withDefaults(s config.Selectors) config.Selectors {
	if s.Item == "" {
		s.Item = defaultSelectors.Item
	}
	if s.Title == "" {
		s.Title = defaultSelectors.Title
	}
	if s.Link == "" {
		s.Link = defaultSelectors.Link
	}
	if s.Summary == "" {
		s.Summary = defaultSelectors.Summary
	}
	if s.Published == "" {
		s.Published = defaultSelectors.Published
	}
	return s
}
