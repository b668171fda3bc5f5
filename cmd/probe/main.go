package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"

	"github.com/maine/idx_news_movers/internal/config"
	"github.com/maine/idx_news_movers/internal/filter"
	"github.com/maine/idx_news_movers/internal/formatter"
	"github.com/maine/idx_news_movers/internal/logger"
	"github.com/maine/idx_news_movers/internal/news"
	"github.com/maine/idx_news_movers/internal/ranking"
	"github.com/maine/idx_news_movers/internal/sources"
)

// probe прогоняет сбор и классификацию без отправки и без чтения/записи состояния.
// Нужен, чтобы проверить новые источники и ключевые слова перед включением.
func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to pipeline.yaml (default: CONFIG_FILE or configs/pipeline.yaml)")
	show := flag.Int("show", 3, "print the first N formatted alerts")
	flag.Parse()

	logCfg := logger.ConfigFromEnv()
	logCfg.Output = os.Stderr
	logger.Init(logCfg)

	if err := run(context.Background(), *configPath, *show); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, show int) error {
	envCfg, err := config.LoadEnvConfig()
	if err != nil {
		return err
	}
	if configPath == "" {
		configPath = envCfg.ConfigPath
	}

	rootCfg, err := config.LoadRoot(configPath)
	if err != nil {
		return err
	}
	if err := envCfg.Apply(&rootCfg); err != nil {
		return err
	}

	tax, err := rootCfg.BuildTaxonomy()
	if err != nil {
		return err
	}
	loc, err := time.LoadLocation(rootCfg.Pipeline.Timezone)
	if err != nil {
		loc = nil
	}

	collector := sources.NewDefaultCollector(rootCfg, &http.Client{Timeout: rootCfg.Pipeline.FetchTimeout}, loc)
	fmt.Printf("🚀 Опрашиваю %d источников\n\n", len(collector.Sources()))

	candidates, reports := collector.Collect(ctx)
	for _, r := range reports {
		if r.Err != nil {
			fmt.Printf("   ❌ %-18s %v\n", r.Source, r.Err)
			continue
		}
		fmt.Printf("   ✅ %-18s %d items\n", r.Source, r.Items)
	}

	empty := news.NewState()
	eligible, err := filter.New(tax).Apply(ctx, candidates, &empty)
	if err != nil {
		return err
	}
	kept, deferred := ranking.NewRanker(rootCfg.Pipeline).Rank(ctx, eligible)

	byCategory := make(map[string]int)
	for _, item := range eligible {
		byCategory[item.CategoryID]++
	}
	ids := make([]string, 0, len(byCategory))
	for id := range byCategory {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Printf("\n📊 Кандидатов: %d, релевантных: %d, к отправке: %d, отложено: %d\n", len(candidates), len(eligible), len(kept), len(deferred))
	for _, id := range ids {
		label := id
		if c, ok := tax.Lookup(id); ok {
			label = c.Emoji + " " + c.Label
		}
		fmt.Printf("   %-40s %d\n", label, byCategory[id])
	}

	f := formatter.NewFormatter(tax, loc)
	for i, item := range kept {
		if i >= show {
			break
		}
		fmt.Printf("\n----- %d/%d -----\n%s\n", i+1, len(kept), f.Format(item))
	}
	return nil
}
