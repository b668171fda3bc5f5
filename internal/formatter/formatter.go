package formatter

import (
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/maine/idx_news_movers/internal/identity"
	"github.com/maine/idx_news_movers/internal/news"
	"github.com/maine/idx_news_movers/internal/taxonomy"
)

const (
	// telegramMaxMessageLength - максимальная длина сообщения в Telegram (4096 символов)
	telegramMaxMessageLength = 4096
	// ellipsis - символ, добавляемый при обрезке заголовка
	ellipsis = "…"

	localLayout    = "02 Jan 2006 15:04 WIB"
	fallbackLayout = "02 Jan 2006 15:04 UTC-07:00"
	fallbackSource = "sumber"
)

// Formatter реализует app.Formatter: одно HTML-сообщение Telegram на новость.
type Formatter struct {
	tax *taxonomy.Taxonomy
	loc *time.Location
}

// NewFormatter создаёт новый экземпляр форматтера. loc == nil означает, что
// часовой пояс не загрузился: время выводится в UTC с явным смещением.
func NewFormatter(tax *taxonomy.Taxonomy, loc *time.Location) *Formatter {
	return &Formatter{tax: tax, loc: loc}
}

// Format реализует app.Formatter.
func (f *Formatter) Format(item news.SelectedItem) string {
	category, ok := f.tax.Lookup(item.CategoryID)
	if !ok {
		category = f.tax.CatchAll()
	}

	title := item.Title
	msg := f.render(category, title, item)

	// Длинный заголовок укорачиваем, пока сообщение не уложится в лимит.
	for over := utf8.RuneCountInString(msg) - telegramMaxMessageLength; over > 0; over = utf8.RuneCountInString(msg) - telegramMaxMessageLength {
		runes := []rune(title)
		if len(runes) == 0 {
			break
		}
		keep := len(runes) - over - utf8.RuneCountInString(ellipsis)
		if keep < 0 {
			keep = 0
		}
		title = string(runes[:keep]) + ellipsis
		if keep == 0 {
			title = ""
		}
		msg = f.render(category, title, item)
	}

	if utf8.RuneCountInString(msg) > telegramMaxMessageLength && item.Summary != "" {
		item.Summary = ""
		msg = f.render(category, title, item)
	}
	return msg
}

func (f *Formatter) render(category taxonomy.Category, title string, item news.SelectedItem) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s <b>ALERT SAHAM – %s</b>\n\n", category.Emoji, html.EscapeString(category.Label)))
	sb.WriteString(fmt.Sprintf("📰 <b>Judul:</b> %s\n", html.EscapeString(title)))
	sb.WriteString(fmt.Sprintf("📅 <b>Tanggal:</b> %s\n", f.timestamp(item.PublishedAt)))
	sb.WriteString(fmt.Sprintf("🗞️ <b>Sumber:</b> %s\n", html.EscapeString(sourceDomain(item.Link))))
	sb.WriteString(fmt.Sprintf("🔗 <a href=\"%s\">Baca sumber</a>\n\n", html.EscapeString(item.Link)))
	sb.WriteString(fmt.Sprintf("📈 <b>Potensi Dampak:</b> %s", html.EscapeString(category.Impact)))

	if summary := strings.TrimSpace(item.Summary); summary != "" {
		sb.WriteString(fmt.Sprintf("\n📝 <b>Ringkasan:</b> %s", html.EscapeString(summary)))
	}
	return sb.String()
}

// EmptyNotice реализует app.Formatter: сообщение о том, что новых новостей нет.
func (f *Formatter) EmptyNotice(now time.Time) string {
	return fmt.Sprintf("ℹ️ Tidak ada berita saham baru per %s.", f.timestamp(now))
}

func (f *Formatter) timestamp(t time.Time) string {
	if f.loc == nil {
		return t.UTC().Format(fallbackLayout)
	}
	return t.In(f.loc).Format(localLayout)
}

func sourceDomain(link string) string {
	if d := identity.Domain(link); d != "" {
		return d
	}
	return fallbackSource
}
