// Package taxonomy классифицирует текст новости по ключевым словам корпоративных событий.
//
// Порядок категорий и ключевых слов является частью контракта: побеждает первая
// категория (в порядке объявления), у которой хотя бы одно ключевое слово входит в текст.
package taxonomy

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidTaxonomy возвращается при некорректном описании таксономии.
var ErrInvalidTaxonomy = errors.New("invalid taxonomy")

// Category — одна корзина таксономии.
type Category struct {
	ID       string
	Label    string
	Emoji    string
	Impact   string
	Keywords []string
}

// Taxonomy неизменяема после создания и безопасна для конкурентного чтения.
type Taxonomy struct {
	categories []Category
	generic    []string
	catchAll   Category
	byID       map[string]Category
}

// New проверяет и собирает таксономию. Ключевые слова приводятся к нижнему регистру.
func New(categories []Category, genericTokens []string, catchAll Category) (*Taxonomy, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: no categories", ErrInvalidTaxonomy)
	}
	if strings.TrimSpace(catchAll.ID) == "" {
		return nil, fmt.Errorf("%w: catch-all category id is empty", ErrInvalidTaxonomy)
	}

	t := &Taxonomy{
		categories: make([]Category, 0, len(categories)),
		byID:       make(map[string]Category, len(categories)+1),
	}

	for i, c := range categories {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: category #%d has empty id", ErrInvalidTaxonomy, i)
		}
		if _, dup := t.byID[id]; dup {
			return nil, fmt.Errorf("%w: duplicate category id %q", ErrInvalidTaxonomy, id)
		}
		keywords, err := normalizeKeywords(c.Keywords)
		if err != nil {
			return nil, fmt.Errorf("%w: category %q: %v", ErrInvalidTaxonomy, id, err)
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("%w: category %q has no keywords", ErrInvalidTaxonomy, id)
		}

		c.ID = id
		c.Keywords = keywords
		if c.Label == "" {
			c.Label = id
		}
		t.categories = append(t.categories, c)
		t.byID[id] = c
	}

	catchAll.ID = strings.TrimSpace(catchAll.ID)
	if _, dup := t.byID[catchAll.ID]; dup {
		return nil, fmt.Errorf("%w: catch-all id %q collides with a category", ErrInvalidTaxonomy, catchAll.ID)
	}
	if catchAll.Label == "" {
		catchAll.Label = catchAll.ID
	}
	catchAll.Keywords = nil
	t.catchAll = catchAll
	t.byID[catchAll.ID] = catchAll

	generic, err := normalizeKeywords(genericTokens)
	if err != nil {
		return nil, fmt.Errorf("%w: generic tokens: %v", ErrInvalidTaxonomy, err)
	}
	t.generic = generic

	return t, nil
}

func normalizeKeywords(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, kw := range in {
		kw = strings.ToLower(strings.Join(strings.Fields(kw), " "))
		if kw == "" {
			return nil, errors.New("empty keyword")
		}
		out = append(out, kw)
	}
	return out, nil
}

// Classify возвращает категорию текста. false означает «нет категории»: новость
// нужно исключить, это не ошибка.
func (t *Taxonomy) Classify(text string) (Category, bool) {
	normalized := strings.ToLower(strings.Join(strings.Fields(text), " "))
	if normalized == "" {
		return Category{}, false
	}

	for _, c := range t.categories {
		for _, kw := range c.Keywords {
			if strings.Contains(normalized, kw) {
				return c, true
			}
		}
	}

	for _, token := range t.generic {
		if strings.Contains(normalized, token) {
			return t.catchAll, true
		}
	}
	return Category{}, false
}

// ClassifyItem классифицирует заголовок вместе с очищенным от разметки текстом.
func (t *Taxonomy) ClassifyItem(title, body string) (Category, bool) {
	return t.Classify(title + " " + body)
}

// Lookup возвращает метаданные категории по ID.
func (t *Taxonomy) Lookup(id string) (Category, bool) {
	c, ok := t.byID[id]
	return c, ok
}

// CatchAll возвращает категорию «Lainnya».
func (t *Taxonomy) CatchAll() Category {
	return t.catchAll
}

// Categories возвращает категории в порядке объявления (без catch-all).
func (t *Taxonomy) Categories() []Category {
	out := make([]Category, len(t.categories))
	copy(out, t.categories)
	return out
}
