package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/maine/idx_news_movers/internal/logger"
	"github.com/maine/idx_news_movers/internal/news"
)

const (
	defaultSendTimeout    = 20 * time.Second
	defaultSummaryTimeout = 45 * time.Second
)

// ErrNotConfigured возвращается, когда пайплайн запущен без обязательных зависимостей.
var ErrNotConfigured = errors.New("pipeline dependencies not configured")

// Clock определяет источник времени (удобно подменять в тестах).
type Clock func() time.Time

// SourceCollector агрегирует новости из подключённых источников.
// Ошибки отдельных источников возвращаются в отчётах, а не прерывают сбор.
type SourceCollector interface {
	Collect(ctx context.Context) ([]news.CandidateItem, []news.SourceReport)
}

// Filter классифицирует новости и отсекает уже отправленные.
type Filter interface {
	Apply(ctx context.Context, items []news.CandidateItem, state *news.State) ([]news.SelectedItem, error)
}

// Ranker упорядочивает новости и ограничивает их число за запуск.
type Ranker interface {
	Rank(ctx context.Context, selected []news.SelectedItem) (kept, deferred []news.SelectedItem)
}

// Summarizer добавляет необязательные резюме.
type Summarizer interface {
	Summarize(ctx context.Context, items []news.SelectedItem) ([]news.SelectedItem, error)
}

// Formatter превращает новость в текст сообщения.
type Formatter interface {
	Format(item news.SelectedItem) string
	EmptyNotice(now time.Time) string
}

// Sender публикует одно сообщение.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// StateStore хранит множество отпечатков отправленных новостей.
type StateStore interface {
	Load(ctx context.Context) (news.State, error)
	Save(ctx context.Context, state news.State) error
}

// PipelineDeps перечисляет зависимости пайплайна.
// Summarizer и Sender необязательны: без Sender доставка пропускается
// и ничего не помечается отправленным.
type PipelineDeps struct {
	Collector       SourceCollector
	Filter          Filter
	Ranker          Ranker
	Summarizer      Summarizer
	Formatter       Formatter
	Sender          Sender
	StateStore      StateStore
	Clock           Clock
	SendTimeout     time.Duration
	SummaryTimeout  time.Duration // общий лимит на Summarize
	NotifyWhenEmpty bool
}

// Summary — итог одного запуска.
type Summary struct {
	Sources          int
	FailedSources    int
	Candidates       int
	Eligible         int
	Selected         int
	Deferred         int
	Delivered        int
	FailedDeliveries int
	DeliverySkipped  bool
	StateSaved       bool
}

// Pipeline инкапсулирует один запуск: сбор, отбор, доставка, сохранение состояния.
type Pipeline struct {
	collector       SourceCollector
	filter          Filter
	ranker          Ranker
	summarizer      Summarizer
	formatter       Formatter
	sender          Sender
	stateStore      StateStore
	clock           Clock
	sendTimeout     time.Duration
	summaryTimeout  time.Duration
	notifyWhenEmpty bool
}

// NewPipeline создаёт новый экземпляр пайплайна.
func NewPipeline(deps PipelineDeps) *Pipeline {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	sendTimeout := deps.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	summaryTimeout := deps.SummaryTimeout
	if summaryTimeout <= 0 {
		summaryTimeout = defaultSummaryTimeout
	}

	return &Pipeline{
		collector:       deps.Collector,
		filter:          deps.Filter,
		ranker:          deps.Ranker,
		summarizer:      deps.Summarizer,
		formatter:       deps.Formatter,
		sender:          deps.Sender,
		stateStore:      deps.StateStore,
		clock:           clock,
		sendTimeout:     sendTimeout,
		summaryTimeout:  summaryTimeout,
		notifyWhenEmpty: deps.NotifyWhenEmpty,
	}
}

// Run исполняет полный цикл обработки новостей.
//
// Отпечаток попадает в состояние только после успешной отправки, поэтому
// неотправленные и отложенные новости будут предложены снова в следующем запуске.
// Состояние сохраняется ровно один раз и только если что-то было отправлено.
// Ошибка возвращается при отсутствии зависимостей, отмене контекста до доставки
// и при неудачном сохранении состояния.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	var summary Summary
	if err := p.validateDeps(); err != nil {
		return summary, err
	}

	run := logger.StartOperation(ctx, "pipeline.run")
	ctx = run.Context()
	defer func() {
		run.End(
			"candidates", summary.Candidates,
			"selected", summary.Selected,
			"delivered", summary.Delivered,
			"state_saved", summary.StateSaved,
		)
	}()

	state, err := p.stateStore.Load(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "load state failed, starting with empty state", err)
		state = news.NewState()
	}
	logger.Debug(ctx, "state loaded", "entries", state.Len())

	collect := logger.StartOperation(ctx, "pipeline.collect")
	candidates, reports := p.collector.Collect(collect.Context())
	summary.Sources = len(reports)
	for _, r := range reports {
		if r.Err != nil {
			summary.FailedSources++
		}
	}
	summary.Candidates = len(candidates)
	collect.End("sources", summary.Sources, "failed", summary.FailedSources, "candidates", summary.Candidates)

	eligible, err := p.filter.Apply(ctx, candidates, &state)
	if err != nil {
		return summary, fmt.Errorf("filter candidates: %w", err)
	}
	summary.Eligible = len(eligible)

	kept, deferred := p.ranker.Rank(ctx, eligible)
	summary.Selected = len(kept)
	summary.Deferred = len(deferred)

	logger.Info(ctx, "selection ready",
		"sources", summary.Sources,
		"failed_sources", summary.FailedSources,
		"candidates", summary.Candidates,
		"eligible", summary.Eligible,
		"selected", summary.Selected,
		"deferred", summary.Deferred,
	)

	if p.sender == nil {
		summary.DeliverySkipped = true
		logger.Warn(ctx, "delivery not configured, skipping send; nothing marked as sent", "selected", summary.Selected)
		return summary, nil
	}

	if p.summarizer != nil && len(kept) > 0 {
		kept = p.summarize(ctx, kept)
	}

	working := state.Clone()
	added := p.deliver(ctx, kept, &working, &summary)

	if len(kept) == 0 && p.notifyWhenEmpty {
		if err := p.sendOne(ctx, p.formatter.EmptyNotice(p.clock())); err != nil {
			logger.Warn(ctx, "empty notice not delivered", "error", err)
		}
	}

	if added == 0 {
		logger.Debug(ctx, "nothing delivered, state left untouched")
		return summary, nil
	}

	// Уже отправленное нужно сохранить, даже если запуск прерван.
	if err := p.stateStore.Save(context.WithoutCancel(ctx), working); err != nil {
		logger.ErrorWithErr(ctx, "save state failed", err, "added", added)
		return summary, fmt.Errorf("save state: %w", err)
	}
	summary.StateSaved = true
	logger.Info(ctx, "state saved", "added", added, "entries", working.Len())

	return summary, nil
}

// summarize добавляет резюме в пределах summaryTimeout.
// При ошибке или истечении времени новости уходят без резюме.
func (p *Pipeline) summarize(ctx context.Context, items []news.SelectedItem) []news.SelectedItem {
	sumCtx, cancel := context.WithTimeout(ctx, p.summaryTimeout)
	defer cancel()

	enriched, err := p.summarizer.Summarize(sumCtx, items)
	if err != nil {
		logger.Warn(ctx, "summaries unavailable, sending alerts without them", "error", err)
		return items
	}
	if len(enriched) != len(items) {
		return items
	}
	return enriched
}

// deliver отправляет новости по порядку и возвращает число добавленных отпечатков.
func (p *Pipeline) deliver(ctx context.Context, items []news.SelectedItem, working *news.State, summary *Summary) int {
	op := logger.StartOperation(ctx, "pipeline.deliver", "items", len(items))
	defer func() {
		op.End("delivered", summary.Delivered, "failed", summary.FailedDeliveries)
	}()

	added := 0
	for i, item := range items {
		if ctx.Err() != nil {
			logger.Warn(ctx, "run canceled, remaining alerts left for the next run", "remaining", len(items)-i)
			break
		}

		if err := p.sendOne(ctx, p.formatter.Format(item)); err != nil {
			summary.FailedDeliveries++
			logger.Warn(ctx, "alert not delivered",
				"source", item.Source,
				"category", item.CategoryID,
				"link", item.Link,
				"error", err,
			)
			continue
		}

		summary.Delivered++
		if working.Add(item.Fingerprint) {
			added++
		}
	}
	return added
}

func (p *Pipeline) sendOne(ctx context.Context, text string) error {
	sendCtx, cancel := context.WithTimeout(ctx, p.sendTimeout)
	defer cancel()
	return p.sender.Send(sendCtx, text)
}

func (p *Pipeline) validateDeps() error {
	switch {
	case p.collector == nil,
		p.filter == nil,
		p.ranker == nil,
		p.formatter == nil,
		p.stateStore == nil,
		p.clock == nil:
		return ErrNotConfigured
	default:
		return nil
	}
}
