package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	userAgent = "Mozilla/5.0 (compatible; NewsMoversBot/1.0)"
	referer   = "https://news.google.com/"

	// maxBodyBytes защищает от бесконечных ответов.
	maxBodyBytes = 10 << 20

	feedAccept = "application/rss+xml, application/atom+xml, application/xml, text/xml, */*"
	pageAccept = "text/html, application/xhtml+xml, */*"
)

func defaultClient(client *http.Client) *http.Client {
	if client == nil {
		return &http.Client{Timeout: 20 * time.Second}
	}
	return client
}

func fetchBody(ctx context.Context, client *http.Client, rawURL, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "id-ID,id;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("Referer", referer)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, fmt.Errorf("empty body")
	}
	return body, nil
}

// parseTime разбирает дату публикации. Даты без зоны трактуются в loc.
func parseTime(value string, loc *time.Location, fallback time.Time) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}

	zoned := []string{
		time.RFC1123Z,
		time.RFC1123,
		time.RFC822Z,
		time.RFC822,
		time.RFC3339,
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"Mon, 02 Jan 2006 15:04:05 MST",
		"02 Jan 2006 15:04:05 MST",
		"2006-01-02T15:04:05-0700",
	}
	for _, f := range zoned {
		if t, err := time.Parse(f, value); err == nil {
			return t
		}
	}

	if loc == nil {
		loc = time.UTC
	}
	local := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04",
		"02/01/2006 15:04",
		"02-01-2006 15:04",
		"2006-01-02",
	}
	for _, f := range local {
		if t, err := time.ParseInLocation(f, value, loc); err == nil {
			return t
		}
	}

	return fallback
}
