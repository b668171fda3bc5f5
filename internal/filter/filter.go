package filter

import (
	"context"

	"github.com/maine/idx_news_movers/internal/identity"
	"github.com/maine/idx_news_movers/internal/news"
	"github.com/maine/idx_news_movers/internal/taxonomy"
)

// Filter отбирает новости, относящиеся к рынку и ещё не отправленные.
type Filter struct {
	tax *taxonomy.Taxonomy
}

// New создаёт экземпляр фильтра.
func New(tax *taxonomy.Taxonomy) *Filter {
	return &Filter{tax: tax}
}

// Apply реализует app.Filter.
//
// Новость отбрасывается, если классификатор не нашёл категорию, если её отпечаток
// уже есть в состоянии или если такой же отпечаток встретился раньше в этом запуске.
// Порядок входа сохраняется. Состояние не изменяется.
func (f *Filter) Apply(ctx context.Context, items []news.CandidateItem, state *news.State) ([]news.SelectedItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seen := make(map[news.Fingerprint]struct{}, len(items))
	selected := make([]news.SelectedItem, 0, len(items))

	for _, item := range items {
		category, ok := f.tax.ClassifyItem(item.Title, item.Body)
		if !ok {
			continue
		}

		fp := identity.Fingerprint(item.Title, item.Link)
		if state.Contains(fp) {
			continue
		}
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}

		selected = append(selected, news.SelectedItem{
			CategoryID:  category.ID,
			Title:       identity.NormalizeText(item.Title),
			Link:        identity.NormalizeURL(item.Link),
			Source:      item.Source,
			Excerpt:     item.Body,
			PublishedAt: item.PublishedAt,
			Fingerprint: fp,
		})
	}

	return selected, nil
}
