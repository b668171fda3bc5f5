package sources

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/maine/idx_news_movers/internal/config"
)

const googleNewsSearchURL = "https://news.google.com/rss/search"

// GoogleNewsFeeds строит по одной поисковой ленте на каждый запрос,
// ограничивая выдачу списком сайтов: (<query>) (site:a OR site:b ...).
func GoogleNewsFeeds(g config.GoogleNews) []config.Source {
	if g.Disabled || len(g.Queries) == 0 {
		return nil
	}

	siteTerms := make([]string, 0, len(g.Sites))
	for _, site := range g.Sites {
		site = strings.TrimSpace(site)
		if site == "" {
			continue
		}
		siteTerms = append(siteTerms, "site:"+site)
	}
	siteFilter := strings.Join(siteTerms, " OR ")

	out := make([]config.Source, 0, len(g.Queries))
	for i, q := range g.Queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		full := "(" + q + ")"
		if siteFilter != "" {
			full += " (" + siteFilter + ")"
		}

		params := url.Values{}
		params.Set("q", full)
		params.Set("hl", g.Language)
		params.Set("gl", g.Region)
		params.Set("ceid", g.Edition)

		out = append(out, config.Source{
			ID:   fmt.Sprintf("google-news-%02d", i+1),
			Name: "Google News: " + q,
			Kind: config.SourceRSS,
			URL:  googleNewsSearchURL + "?" + params.Encode(),
		})
	}
	return out
}

// All возвращает явно настроенные источники и поисковые ленты Google News.
func All(cfg config.Root) []config.Source {
	out := make([]config.Source, 0, len(cfg.Sources)+len(cfg.GoogleNews.Queries))
	out = append(out, cfg.Sources...)
	out = append(out, GoogleNewsFeeds(cfg.GoogleNews)...)
	return out
}
