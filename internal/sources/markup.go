package sources

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/maine/idx_news_movers/internal/identity"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripMarkup возвращает видимый текст HTML-фрагмента с нормализованными пробелами.
func StripMarkup(s string) string {
	if !strings.Contains(s, "<") {
		return identity.NormalizeText(html.UnescapeString(s))
	}

	// пробел перед каждым тегом, чтобы текст соседних блоков не склеивался
	spaced := strings.ReplaceAll(s, "<", " <")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(spaced))
	if err != nil {
		return identity.NormalizeText(html.UnescapeString(tagPattern.ReplaceAllString(s, " ")))
	}
	doc.Find("script, style, noscript").Remove()
	return identity.NormalizeText(doc.Text())
}

// cleanTitle убирает HTML-сущности и лишние пробелы из заголовка.
func cleanTitle(s string) string {
	return identity.NormalizeText(html.UnescapeString(s))
}
