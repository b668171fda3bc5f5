package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/maine/idx_news_movers/internal/taxonomy"
)

// ErrInvalidConfig возвращается, если файл конфигурации описан некорректно.
var ErrInvalidConfig = errors.New("invalid config")

// Значения по умолчанию.
const (
	DefaultMaxMessagesPerCycle = 12
	DefaultStatePath           = "sent_items.json"
	DefaultWorkers             = 4
	DefaultFetchTimeout        = 20 * time.Second
	DefaultSendTimeout         = 20 * time.Second
	DefaultTimezone            = "Asia/Jakarta"
	DefaultMaxItemsPerFeed     = 100
	DefaultGeminiModel         = "gemini-2.0-flash"
	DefaultGeminiTimeout       = 45 * time.Second
)

// Типы источников.
const (
	SourceRSS  = "rss"
	SourceHTML = "html"
)

// Бэкенды хранилища отпечатков.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

type (
	// Root объединяет все конфигурационные блоки.
	Root struct {
		Pipeline   Pipeline   `yaml:"pipeline"`
		Sources    []Source   `yaml:"sources"`
		GoogleNews GoogleNews `yaml:"google_news"`
		Taxonomy   Taxonomy   `yaml:"taxonomy"`
		Gemini     Gemini     `yaml:"gemini"`
	}

	// Pipeline описывает параметры одного запуска.
	Pipeline struct {
		MaxMessagesPerCycle int           `yaml:"max_messages_per_cycle"`
		StatePath           string        `yaml:"state_path"`
		StateBackend        string        `yaml:"state_backend"` // json | sqlite
		Workers             int           `yaml:"workers"`
		FetchTimeout        time.Duration `yaml:"fetch_timeout"`
		SendTimeout         time.Duration `yaml:"send_timeout"`
		MaxItemsPerFeed     int           `yaml:"max_items_per_feed"`
		Timezone            string        `yaml:"timezone"`
		NotifyWhenEmpty     bool          `yaml:"notify_when_empty"`
	}

	// Source описывает одну RSS/Atom-ленту или HTML-страницу.
	Source struct {
		ID        string    `yaml:"id"`
		Name      string    `yaml:"name"`
		Kind      string    `yaml:"kind"` // rss | html
		URL       string    `yaml:"url"`
		Selectors Selectors `yaml:"selectors,omitempty"`
	}

	// Selectors — CSS-селекторы для HTML-страниц (goquery).
	Selectors struct {
		Item      string `yaml:"item"`
		Title     string `yaml:"title"`
		Link      string `yaml:"link"`
		Summary   string `yaml:"summary"`
		Published string `yaml:"published"`
	}

	// GoogleNews описывает поисковые ленты Google News по списку сайтов.
	GoogleNews struct {
		Disabled bool     `yaml:"disabled"`
		Sites    []string `yaml:"sites"`
		Queries  []string `yaml:"queries"`
		Language string   `yaml:"hl"`
		Region   string   `yaml:"gl"`
		Edition  string   `yaml:"ceid"`
	}

	// Taxonomy позволяет переопределить встроенную таблицу ключевых слов.
	Taxonomy struct {
		Categories    []Category `yaml:"categories"`
		GenericTokens []string   `yaml:"generic_tokens"`
		CatchAll      *Category  `yaml:"catch_all"`
	}

	// Category описывает категорию в YAML.
	Category struct {
		ID       string   `yaml:"id"`
		Label    string   `yaml:"label"`
		Emoji    string   `yaml:"emoji"`
		Impact   string   `yaml:"impact"`
		Keywords []string `yaml:"keywords"`
	}

	// Gemini — опциональные однострочные резюме для алертов.
	Gemini struct {
		Enabled bool          `yaml:"enabled"`
		Model   string        `yaml:"model"`
		Timeout time.Duration `yaml:"timeout"` // на весь этап резюме
	}
)

// LoadRoot читает основной файл конфигурации. Отсутствующий файл даёт конфигурацию по умолчанию.
func LoadRoot(path string) (Root, error) {
	cfg := Root{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Root{}, fmt.Errorf("unmarshal config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Root{}, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Root{}, err
	}
	return cfg, nil
}

// Default возвращает конфигурацию без файла.
func Default() Root {
	var cfg Root
	_ = cfg.Validate()
	return cfg
}

// Validate подставляет значения по умолчанию и проверяет источники.
func (r *Root) Validate() error {
	p := &r.Pipeline
	if p.MaxMessagesPerCycle < 0 {
		return fmt.Errorf("%w: max_messages_per_cycle must not be negative", ErrInvalidConfig)
	}
	if p.MaxMessagesPerCycle == 0 {
		p.MaxMessagesPerCycle = DefaultMaxMessagesPerCycle
	}
	if strings.TrimSpace(p.StatePath) == "" {
		p.StatePath = DefaultStatePath
	}
	switch strings.ToLower(strings.TrimSpace(p.StateBackend)) {
	case "", BackendJSON:
		p.StateBackend = BackendJSON
	case BackendSQLite:
		p.StateBackend = BackendSQLite
	default:
		return fmt.Errorf("%w: unknown state_backend %q", ErrInvalidConfig, p.StateBackend)
	}
	if p.Workers <= 0 {
		p.Workers = DefaultWorkers
	}
	if p.FetchTimeout <= 0 {
		p.FetchTimeout = DefaultFetchTimeout
	}
	if p.SendTimeout <= 0 {
		p.SendTimeout = DefaultSendTimeout
	}
	if p.MaxItemsPerFeed <= 0 {
		p.MaxItemsPerFeed = DefaultMaxItemsPerFeed
	}
	if strings.TrimSpace(p.Timezone) == "" {
		p.Timezone = DefaultTimezone
	}

	seen := make(map[string]struct{}, len(r.Sources))
	for i := range r.Sources {
		s := &r.Sources[i]
		s.URL = strings.TrimSpace(s.URL)
		if s.URL == "" {
			return fmt.Errorf("%w: source #%d has empty url", ErrInvalidConfig, i)
		}
		if s.ID == "" {
			s.ID = s.URL
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("%w: duplicate source id %q", ErrInvalidConfig, s.ID)
		}
		seen[s.ID] = struct{}{}
		if s.Name == "" {
			s.Name = s.ID
		}
		switch strings.ToLower(s.Kind) {
		case "", SourceRSS:
			s.Kind = SourceRSS
		case SourceHTML:
			s.Kind = SourceHTML
		default:
			return fmt.Errorf("%w: source %q has unknown kind %q", ErrInvalidConfig, s.ID, s.Kind)
		}
	}

	g := &r.GoogleNews
	if len(g.Sites) == 0 {
		g.Sites = append([]string(nil), DefaultGoogleNewsSites...)
	}
	if len(g.Queries) == 0 {
		g.Queries = append([]string(nil), DefaultGoogleNewsQueries...)
	}
	if g.Language == "" {
		g.Language = "id"
	}
	if g.Region == "" {
		g.Region = "ID"
	}
	if g.Edition == "" {
		g.Edition = "ID:id"
	}

	if r.Gemini.Model == "" {
		r.Gemini.Model = DefaultGeminiModel
	}
	if r.Gemini.Timeout <= 0 {
		r.Gemini.Timeout = DefaultGeminiTimeout
	}

	if _, err := r.BuildTaxonomy(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// BuildTaxonomy собирает таксономию из YAML либо возвращает встроенную.
func (r Root) BuildTaxonomy() (*taxonomy.Taxonomy, error) {
	t := r.Taxonomy
	if len(t.Categories) == 0 && len(t.GenericTokens) == 0 && t.CatchAll == nil {
		return taxonomy.Default(), nil
	}

	categories := taxonomy.DefaultCategories()
	if len(t.Categories) > 0 {
		categories = make([]taxonomy.Category, 0, len(t.Categories))
		for _, c := range t.Categories {
			categories = append(categories, c.toTaxonomy())
		}
	}

	generic := taxonomy.DefaultGenericTokens
	if len(t.GenericTokens) > 0 {
		generic = t.GenericTokens
	}

	catchAll := taxonomy.DefaultCatchAll()
	if t.CatchAll != nil {
		catchAll = t.CatchAll.toTaxonomy()
	}

	return taxonomy.New(categories, generic, catchAll)
}

func (c Category) toTaxonomy() taxonomy.Category {
	return taxonomy.Category{
		ID:       c.ID,
		Label:    c.Label,
		Emoji:    c.Emoji,
		Impact:   c.Impact,
		Keywords: c.Keywords,
	}
}
