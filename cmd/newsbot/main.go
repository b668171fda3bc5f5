package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/maine/idx_news_movers/internal/app"
	"github.com/maine/idx_news_movers/internal/config"
	"github.com/maine/idx_news_movers/internal/filter"
	"github.com/maine/idx_news_movers/internal/formatter"
	"github.com/maine/idx_news_movers/internal/gemini"
	"github.com/maine/idx_news_movers/internal/logger"
	"github.com/maine/idx_news_movers/internal/ranking"
	"github.com/maine/idx_news_movers/internal/sources"
	"github.com/maine/idx_news_movers/internal/state"
	"github.com/maine/idx_news_movers/internal/telegram"
)

func main() {
	// .env необязателен: в CI переменные приходят из секретов
	_ = godotenv.Load()

	logger.Init(logger.ConfigFromEnv())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := 0
	if err := run(ctx); err != nil {
		logger.ErrorWithErr(ctx, "run failed", err)
		code = 1
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	_ = logger.Shutdown(shutdownCtx)
	cancel()
	os.Exit(code)
}

func run(ctx context.Context) error {
	envCfg, err := config.LoadEnvConfig()
	if err != nil {
		return fmt.Errorf("load env config: %w", err)
	}

	rootCfg, err := config.LoadRoot(envCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load pipeline config: %w", err)
	}
	if err := envCfg.Apply(&rootCfg); err != nil {
		return fmt.Errorf("apply env overrides: %w", err)
	}

	tax, err := rootCfg.BuildTaxonomy()
	if err != nil {
		return fmt.Errorf("build taxonomy: %w", err)
	}

	loc, err := time.LoadLocation(rootCfg.Pipeline.Timezone)
	if err != nil {
		// без tzdata форматтер переходит на UTC с явным смещением
		logger.Warn(ctx, "timezone unavailable, timestamps rendered in UTC", "timezone", rootCfg.Pipeline.Timezone, "error", err)
		loc = nil
	}

	httpClient := &http.Client{Timeout: rootCfg.Pipeline.FetchTimeout}
	collector := sources.NewDefaultCollector(rootCfg, httpClient, loc)

	store, closeStore, err := openStateStore(rootCfg.Pipeline)
	if err != nil {
		return err
	}
	defer closeStore()

	deps := app.PipelineDeps{
		Collector:       collector,
		Filter:          filter.New(tax),
		Ranker:          ranking.NewRanker(rootCfg.Pipeline),
		Formatter:       formatter.NewFormatter(tax, loc),
		StateStore:      store,
		SendTimeout:     rootCfg.Pipeline.SendTimeout,
		SummaryTimeout:  rootCfg.Gemini.Timeout,
		NotifyWhenEmpty: rootCfg.Pipeline.NotifyWhenEmpty,
	}

	if envCfg.DeliveryConfigured() {
		tgClient := telegram.NewClient(envCfg.TelegramBotToken)
		deps.Sender = telegram.NewSender(tgClient, envCfg.TelegramChatID)
	} else {
		logger.Warn(ctx, "TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID missing, alerts will not be sent")
	}

	if rootCfg.Gemini.Enabled {
		geminiClient, err := gemini.NewClient(ctx, envCfg.GeminiAPIKey, rootCfg.Gemini.Timeout)
		if err != nil {
			logger.Warn(ctx, "gemini disabled", "error", err)
		} else {
			deps.Summarizer = gemini.NewSummarizer(geminiClient, rootCfg.Gemini)
		}
	}

	logger.Info(ctx, "starting run",
		"sources", len(collector.Sources()),
		"max_messages", rootCfg.Pipeline.MaxMessagesPerCycle,
		"state_backend", rootCfg.Pipeline.StateBackend,
		"state_path", rootCfg.Pipeline.StatePath,
		"delivery", deps.Sender != nil,
		"summaries", deps.Summarizer != nil,
	)

	summary, err := app.NewPipeline(deps).Run(ctx)
	logger.Info(ctx, "run finished",
		"sources", summary.Sources,
		"failed_sources", summary.FailedSources,
		"candidates", summary.Candidates,
		"eligible", summary.Eligible,
		"selected", summary.Selected,
		"deferred", summary.Deferred,
		"delivered", summary.Delivered,
		"failed_deliveries", summary.FailedDeliveries,
		"delivery_skipped", summary.DeliverySkipped,
		"state_saved", summary.StateSaved,
	)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn(ctx, "run interrupted")
		}
		return fmt.Errorf("pipeline: %w", err)
	}
	return nil
}

func openStateStore(p config.Pipeline) (app.StateStore, func(), error) {
	switch p.StateBackend {
	case config.BackendSQLite:
		store, err := state.OpenSQLiteStore(p.StatePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite state: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return state.NewFileStore(p.StatePath), func() {}, nil
	}
}
