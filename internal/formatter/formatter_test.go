package formatter

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maine/idx_news_movers/internal/news"
	"github.com/maine/idx_news_movers/internal/taxonomy"
)

var wib = time.FixedZone("WIB", 7*3600)

func TestFormatter_Format(t *testing.T) {
	f := NewFormatter(taxonomy.Default(), wib)

	item := news.SelectedItem{
		CategoryID:  taxonomy.Dividend,
		Title:       "BBRI bagi dividen",
		Link:        "https://www.kontan.co.id/news/bbri?id=1",
		PublishedAt: time.Date(2024, 12, 3, 2, 30, 0, 0, time.UTC),
	}

	got := f.Format(item)
	want := "💰 <b>ALERT SAHAM – Dividen</b>\n\n" +
		"📰 <b>Judul:</b> BBRI bagi dividen\n" +
		"📅 <b>Tanggal:</b> 03 Dec 2024 09:30 WIB\n" +
		"🗞️ <b>Sumber:</b> kontan.co.id\n" +
		"🔗 <a href=\"https://www.kontan.co.id/news/bbri?id=1\">Baca sumber</a>\n\n" +
		"📈 <b>Potensi Dampak:</b> Positif bila yield besar &amp; cumdate dekat."

	assert.Equal(t, want, got)
}

func TestFormatter_Format_Escaping(t *testing.T) {
	f := NewFormatter(taxonomy.Default(), wib)

	got := f.Format(news.SelectedItem{
		CategoryID: taxonomy.Acquisition,
		Title:      `<script>alert("x")</script> & merger`,
		Link:       `https://x.id/a?b=1&c="2"`,
		Summary:    "Laba <naik>",
	})

	for _, bad := range []string{"<script>", `"2"`, "<naik>"} {
		assert.NotContains(t, got, bad)
	}
	for _, want := range []string{
		"&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt; &amp; merger",
		`href="https://x.id/a?b=1&amp;c=&#34;2&#34;"`,
		"📝 <b>Ringkasan:</b> Laba &lt;naik&gt;",
	} {
		assert.Contains(t, got, want)
	}
}

func TestFormatter_Format_Fallbacks(t *testing.T) {
	f := NewFormatter(taxonomy.Default(), nil)

	got := f.Format(news.SelectedItem{
		CategoryID:  "unknown",
		Title:       "Kabar emiten",
		Link:        "::not a url",
		PublishedAt: time.Date(2024, 12, 3, 2, 30, 0, 0, time.UTC),
	})

	tests := []struct {
		name string
		want string
	}{
		{name: "catch-all header", want: "📢 <b>ALERT SAHAM – Lainnya</b>"},
		{name: "utc timestamp", want: "📅 <b>Tanggal:</b> 03 Dec 2024 02:30 UTC+00:00"},
		{name: "source fallback", want: "🗞️ <b>Sumber:</b> sumber"},
		{name: "catch-all impact", want: "Berpotensi menggerakkan harga."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, got, tt.want)
		})
	}
}

func TestFormatter_Format_LengthCap(t *testing.T) {
	f := NewFormatter(taxonomy.Default(), wib)

	item := news.SelectedItem{
		CategoryID: taxonomy.Buyback,
		Title:      strings.Repeat("buyback ", 1000),
		Link:       "https://bisnis.com/x",
	}

	got := f.Format(item)
	require.LessOrEqual(t, utf8.RuneCountInString(got), telegramMaxMessageLength)
	assert.Contains(t, got, ellipsis, "shortened title should end with an ellipsis")
	assert.Contains(t, got, `<a href="https://bisnis.com/x">Baca sumber</a>`, "link must survive shortening")
}

func TestFormatter_EmptyNotice(t *testing.T) {
	f := NewFormatter(taxonomy.Default(), wib)
	got := f.EmptyNotice(time.Date(2024, 12, 3, 0, 0, 0, 0, time.UTC))

	assert.Contains(t, got, "03 Dec 2024 07:00 WIB")
}
