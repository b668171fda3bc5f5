package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	// parseModeHTML - сообщения форматируются как Telegram HTML
	parseModeHTML = "HTML"
	// defaultMinInterval - Bot API просит не чаще одного сообщения в секунду в один чат
	defaultMinInterval = time.Second
)

// ErrMessageRejected возвращается, когда Bot API отклонил сообщение окончательно
// (неверная разметка, чат не найден, бот заблокирован). Повтор не поможет.
var ErrMessageRejected = errors.New("telegram: message rejected")

// Sender реализует app.Sender для отправки алертов в один чат.
// Повторов внутри запуска нет: неотправленная новость уйдёт в следующем запуске.
type Sender struct {
	client      TelegramClient
	chatID      string
	minInterval time.Duration

	mu       sync.Mutex
	lastSent time.Time
}

// NewSender создаёт новый экземпляр отправителя.
func NewSender(client TelegramClient, chatID string) *Sender {
	return &Sender{
		client:      client,
		chatID:      chatID,
		minInterval: defaultMinInterval,
	}
}

// WithMinInterval задаёт минимальную паузу между сообщениями.
func (s *Sender) WithMinInterval(d time.Duration) *Sender {
	s.minInterval = d
	return s
}

// Send реализует app.Sender.
func (s *Sender) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(s.chatID) == "" {
		return fmt.Errorf("%w: chat_id is empty", ErrMessageRejected)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: empty message", ErrMessageRejected)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Контроль rate limit: минимальная задержка между сообщениями
	if !s.lastSent.IsZero() {
		if wait := s.minInterval - time.Since(s.lastSent); wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
	}

	err := s.client.SendMessage(ctx, s.chatID, text, parseModeHTML)
	s.lastSent = time.Now()
	if err == nil {
		return nil
	}

	if isPermanentError(err) {
		return fmt.Errorf("%w: %v", ErrMessageRejected, err)
	}
	return fmt.Errorf("send message: %w", err)
}

// isPermanentError определяет, что повтор отправки не поможет.
func isPermanentError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 400, 401, 403, 404:
			return true
		}
	}

	errStr := err.Error()
	nonRetryableErrors := []string{
		"chat not found",
		"bot was blocked",
		"user is deactivated",
		"chat_id is empty",
		"message is too long",
		"can't parse entities",
	}
	for _, nonRetryable := range nonRetryableErrors {
		if containsIgnoreCase(errStr, nonRetryable) {
			return true
		}
	}
	return false
}

// containsIgnoreCase проверяет, содержит ли строка подстроку (без учёта регистра).
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
