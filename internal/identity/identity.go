// Package identity приводит пару (заголовок, ссылка) к стабильному отпечатку.
package identity

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/maine/idx_news_movers/internal/news"
)

const trackingPrefix = "utm_"

// NormalizeText схлопывает любые последовательности пробельных символов в один пробел.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeURL удаляет utm_* параметры, сохраняя порядок остальных.
// Хост приводится к нижнему регистру. Неразбираемый URL возвращается как есть (после trim).
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Host = strings.ToLower(u.Host)
	u.RawQuery = stripTracking(u.RawQuery)
	u.ForceQuery = false
	return u.String()
}

// stripTracking работает с сырой строкой запроса: url.Values.Encode сортирует ключи,
// а нам нужен исходный порядок.
func stripTracking(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	parts := strings.Split(rawQuery, "&")
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		key := part
		if i := strings.IndexByte(part, '='); i >= 0 {
			key = part[:i]
		}
		if decoded, err := url.QueryUnescape(key); err == nil {
			key = decoded
		}
		if strings.HasPrefix(strings.ToLower(key), trackingPrefix) {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, "&")
}

// Fingerprint = sha1(lower(NormalizeText(title)) + "|" + NormalizeURL(link)).
func Fingerprint(title, link string) news.Fingerprint {
	base := strings.ToLower(NormalizeText(title)) + "|" + NormalizeURL(link)
	sum := sha1.Sum([]byte(base))
	return news.Fingerprint(hex.EncodeToString(sum[:]))
}

// ResolveLink разрешает относительную ссылку относительно страницы источника.
func ResolveLink(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() {
		return href
	}

	baseURL, err := url.Parse(strings.TrimSpace(base))
	if err != nil || !baseURL.IsAbs() {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

// Domain возвращает хост ссылки без "www.". Пустая строка, если хост не определить.
func Domain(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}
