package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/maine/idx_news_movers/internal/logger"
)

// GeminiClient определяет интерфейс для работы с Gemini API.
// Это позволяет легко создавать моки для тестирования.
type GeminiClient interface {
	GenerateText(ctx context.Context, model string, prompt string) (string, error)
}

// Client инкапсулирует работу с Gemini API через официальный SDK.
type Client struct {
	client     *genai.Client
	maxRetries int
	baseDelay  time.Duration
}

// Убеждаемся, что Client реализует интерфейс GeminiClient.
var _ GeminiClient = (*Client)(nil)

const defaultRequestTimeout = 30 * time.Second

// NewClient создаёт новый клиент для работы с Gemini API.
// Ключ передаётся явно: конфигурация читается один раз при старте.
// timeout ограничивает один HTTP-запрос; при timeout <= 0 используется 30s.
func NewClient(ctx context.Context, apiKey string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{
		client:     client,
		maxRetries: 3,
		baseDelay:  2 * time.Second,
	}, nil
}

// GenerateText отправляет запрос к Gemini API и возвращает текстовый ответ.
// Временные ошибки (429 без исчерпания дневной квоты, 5xx) повторяются с
// линейной паузой; резюме необязательны, поэтому долгих ожиданий нет.
func (c *Client) GenerateText(ctx context.Context, model string, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay * time.Duration(attempt)
			logger.Debug(ctx, "retrying gemini request", "attempt", attempt+1, "delay", delay)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		result, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
		if err == nil {
			text, textErr := result.Text()
			if textErr != nil {
				return "", fmt.Errorf("get text from result: %w", textErr)
			}
			return text, nil
		}

		lastErr = err
		errStr := err.Error()

		if isRPDQuotaError(errStr) {
			return "", fmt.Errorf("gemini API RPD quota exceeded (daily limit reached): %w", err)
		}
		if isRateLimitError(errStr) || isServiceUnavailableError(errStr) || isTemporaryError(errStr) {
			logger.Warn(ctx, "temporary gemini error", "attempt", attempt+1, "error", err)
			continue
		}
		if isQuotaExceededError(errStr) {
			return "", fmt.Errorf("gemini API quota exceeded: %w", err)
		}
		return "", fmt.Errorf("generate content: %w", err)
	}

	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

// isRPDQuotaError проверяет, является ли ошибка 429 исчерпанием дневного лимита.
func isRPDQuotaError(errStr string) bool {
	errLower := strings.ToLower(errStr)
	if !strings.Contains(errLower, "429") {
		return false
	}
	return strings.Contains(errLower, "limit: 20") ||
		strings.Contains(errLower, "generate_content_free_tier_requests")
}

// isRateLimitError проверяет, является ли ошибка RPM/TPM ограничением (429, но не RPD).
func isRateLimitError(errStr string) bool {
	if isRPDQuotaError(errStr) {
		return false
	}
	errLower := strings.ToLower(errStr)
	return strings.Contains(errLower, "rate limit") ||
		strings.Contains(errLower, "429") ||
		strings.Contains(errLower, "too many requests") ||
		strings.Contains(errLower, "resource exhausted")
}

func isServiceUnavailableError(errStr string) bool {
	errLower := strings.ToLower(errStr)
	return strings.Contains(errLower, "503") ||
		strings.Contains(errLower, "service unavailable") ||
		strings.Contains(errLower, "overloaded")
}

// isTemporaryError проверяет 500/502/504.
func isTemporaryError(errStr string) bool {
	errLower := strings.ToLower(errStr)
	return strings.Contains(errLower, "500") ||
		strings.Contains(errLower, "502") ||
		strings.Contains(errLower, "504") ||
		strings.Contains(errLower, "internal server error") ||
		strings.Contains(errLower, "bad gateway") ||
		strings.Contains(errLower, "gateway timeout")
}

func isQuotaExceededError(errStr string) bool {
	errLower := strings.ToLower(errStr)
	return strings.Contains(errLower, "quota") ||
		strings.Contains(errLower, "daily limit") ||
		strings.Contains(errLower, "403")
}
