package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/maine/idx_news_movers/internal/config"
	"github.com/maine/idx_news_movers/internal/logger"
	"github.com/maine/idx_news_movers/internal/news"
)

// maxExcerptRunes ограничивает объём текста одной новости в промпте.
const maxExcerptRunes = 600

// Summarizer реализует app.Summarizer: добавляет к алертам однострочное резюме
// на индонезийском языке. Все новости запуска уходят одним запросом.
type Summarizer struct {
	client GeminiClient
	model  string
}

// NewSummarizer создаёт новый экземпляр суммаризатора.
func NewSummarizer(client GeminiClient, cfg config.Gemini) *Summarizer {
	model := cfg.Model
	if model == "" {
		model = config.DefaultGeminiModel
	}
	return &Summarizer{
		client: client,
		model:  model,
	}
}

// Summarize реализует app.Summarizer.
// Возвращает копию входа с заполненным Summary. При ошибке возвращается вход без
// изменений вместе с ошибкой: резюме необязательны, алерты уходят и без них.
func (s *Summarizer) Summarize(ctx context.Context, items []news.SelectedItem) ([]news.SelectedItem, error) {
	if len(items) == 0 {
		return items, nil
	}

	inputData := make([]articleInput, 0, len(items))
	for _, item := range items {
		inputData = append(inputData, articleInput{
			ID:      string(item.Fingerprint),
			Title:   item.Title,
			Content: truncateRunes(item.Excerpt, maxExcerptRunes),
		})
	}

	inputJSON, err := json.Marshal(inputData)
	if err != nil {
		return items, fmt.Errorf("marshal input: %w", err)
	}

	responseText, err := s.client.GenerateText(ctx, s.model, s.buildPrompt(string(inputJSON)))
	if err != nil {
		return items, fmt.Errorf("generate text: %w", err)
	}

	var summaries []summaryResponse
	if err := json.Unmarshal([]byte(responseText), &summaries); err != nil {
		// Пытаемся извлечь JSON из текста, если модель добавила лишнее
		cleaned := extractJSON(responseText)
		if cleaned == "" {
			return items, fmt.Errorf("unmarshal response: %w", err)
		}
		if err := json.Unmarshal([]byte(cleaned), &summaries); err != nil {
			return items, fmt.Errorf("unmarshal cleaned response: %w", err)
		}
	}

	byID := make(map[string]string, len(summaries))
	for _, resp := range summaries {
		if summary := strings.TrimSpace(resp.Summary); summary != "" {
			byID[resp.ID] = summary
		}
	}

	out := make([]news.SelectedItem, len(items))
	copy(out, items)
	filled := 0
	for i := range out {
		if summary, ok := byID[string(out[i].Fingerprint)]; ok {
			out[i].Summary = summary
			filled++
		}
	}

	logger.Debug(ctx, "summaries generated", "items", len(items), "filled", filled)
	return out, nil
}

func (s *Summarizer) buildPrompt(inputJSON string) string {
	return fmt.Sprintf(`Ты — редактор ленты новостей фондового рынка Индонезии (IDX).
Тебе будет передан список новостей с уникальными идентификаторами id, заголовками и коротким фрагментом текста на индонезийском языке.
Для каждой новости напиши одно короткое предложение на индонезийском языке (до 25 слов): что произошло и какой эмитент затронут.
Используй нейтральный стиль, без рекомендаций покупать или продавать. Не придумывай факты, которых нет в тексте.
Верни результат в виде списка объектов JSON без дополнительных комментариев. Формат:
[{"id": "<id новости>", "summary": "<ringkasan>"}, ...]

Входные данные:
%s`, inputJSON)
}

// extractJSON извлекает JSON-массив из ответа, в том числе из markdown code block.
func extractJSON(text string) string {
	if start := strings.Index(text, "```"); start != -1 {
		body := text[start+3:]
		body = strings.TrimPrefix(body, "json")
		if end := strings.Index(body, "```"); end != -1 {
			if inner := strings.TrimSpace(body[:end]); inner != "" {
				text = inner
			}
		}
	}

	start := strings.Index(text, "[")
	if start == -1 {
		return ""
	}

	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return strings.TrimSpace(text[start : i+1])
			}
		}
	}
	return ""
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

type articleInput struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
}

type summaryResponse struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
}
