package ranking

import (
	"context"
	"sort"

	"github.com/maine/idx_news_movers/internal/config"
	"github.com/maine/idx_news_movers/internal/logger"
	"github.com/maine/idx_news_movers/internal/news"
)

// Ranker реализует app.Ranker: упорядочивает отобранные новости от свежих к старым
// и ограничивает число сообщений за запуск.
type Ranker struct {
	max int
}

// NewRanker создаёт новый экземпляр ранкера.
func NewRanker(cfg config.Pipeline) *Ranker {
	limit := cfg.MaxMessagesPerCycle
	if limit <= 0 {
		limit = config.DefaultMaxMessagesPerCycle
	}
	return &Ranker{max: limit}
}

// Max возвращает лимит сообщений за запуск.
func (r *Ranker) Max() int {
	return r.max
}

// Rank реализует app.Ranker.
// Сортировка стабильная: при равном времени публикации сохраняется порядок сбора.
// Не попавшие в лимит новости возвращаются во втором срезе; они не помечаются
// отправленными и могут уйти в следующем запуске.
func (r *Ranker) Rank(ctx context.Context, selected []news.SelectedItem) (kept, deferred []news.SelectedItem) {
	if len(selected) == 0 {
		return nil, nil
	}

	ordered := make([]news.SelectedItem, len(selected))
	copy(ordered, selected)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PublishedAt.After(ordered[j].PublishedAt)
	})

	if len(ordered) <= r.max {
		return ordered, nil
	}

	kept, deferred = ordered[:r.max], ordered[r.max:]

	byCategory := make(map[string]int)
	for _, item := range kept {
		byCategory[item.CategoryID]++
	}
	logger.Info(ctx, "selection capped",
		"kept", len(kept),
		"deferred", len(deferred),
		"by_category", byCategory,
	)
	return kept, deferred
}
