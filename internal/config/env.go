package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// EnvConfig содержит токены и переопределения из переменных окружения.
type EnvConfig struct {
	TelegramBotToken    string
	TelegramChatID      string
	GeminiAPIKey        string
	ConfigPath          string
	StatePath           string
	StateBackend        string
	MaxMessagesPerCycle int  // 0 если не задано или задано 0
	NotifyWhenEmpty     bool // NOTIFY_WHEN_EMPTY=1
}

// DefaultConfigPath задаёт путь к YAML, если CONFIG_FILE не задан.
const DefaultConfigPath = "configs/pipeline.yaml"

// LoadEnvConfig читает переменные окружения. Отсутствие токенов Telegram не является ошибкой:
// запуск пройдёт без отправки.
func LoadEnvConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{
		TelegramBotToken: strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		TelegramChatID:   strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")),
		GeminiAPIKey:     strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		ConfigPath:       strings.TrimSpace(os.Getenv("CONFIG_FILE")),
		StatePath:        strings.TrimSpace(os.Getenv("STATE_FILE")),
		StateBackend:     strings.TrimSpace(os.Getenv("STATE_BACKEND")),
		NotifyWhenEmpty:  isTruthy(os.Getenv("NOTIFY_WHEN_EMPTY")),
	}
	if cfg.ConfigPath == "" {
		cfg.ConfigPath = DefaultConfigPath
	}

	// 0 означает значение по умолчанию, отрицательные числа отклоняются
	if raw := strings.TrimSpace(os.Getenv("MAX_MSG_PER_CYCLE")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("MAX_MSG_PER_CYCLE must be a non-negative integer, got %q", raw)
		}
		cfg.MaxMessagesPerCycle = n
	}

	return cfg, nil
}

// DeliveryConfigured сообщает, заданы ли токен и чат для отправки.
func (e *EnvConfig) DeliveryConfigured() bool {
	return e.TelegramBotToken != "" && e.TelegramChatID != ""
}

// Apply переносит переопределения окружения в YAML-конфигурацию. Окружение приоритетнее.
func (e *EnvConfig) Apply(root *Root) error {
	if e.MaxMessagesPerCycle > 0 {
		root.Pipeline.MaxMessagesPerCycle = e.MaxMessagesPerCycle
	}
	if e.StatePath != "" {
		root.Pipeline.StatePath = e.StatePath
	}
	if e.StateBackend != "" {
		root.Pipeline.StateBackend = e.StateBackend
	}
	if e.NotifyWhenEmpty {
		root.Pipeline.NotifyWhenEmpty = true
	}
	if e.GeminiAPIKey == "" {
		root.Gemini.Enabled = false
	}
	return root.Validate()
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
