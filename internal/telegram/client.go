package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultAPIBase = "https://api.telegram.org"

// TelegramClient определяет интерфейс для работы с Telegram Bot API.
// Это позволяет легко создавать моки для тестирования.
type TelegramClient interface {
	SendMessage(ctx context.Context, chatID string, text string, parseMode string) error
}

// Client инкапсулирует работу с Telegram Bot API.
type Client struct {
	token  string
	client *http.Client
	apiURL string
}

// Убеждаемся, что Client реализует интерфейс TelegramClient.
var _ TelegramClient = (*Client)(nil)

// Option настраивает Client.
type Option func(*Client)

// WithBaseURL подменяет адрес Bot API (тесты, self-hosted Bot API server).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.apiURL = fmt.Sprintf("%s/bot%s", strings.TrimRight(base, "/"), c.token)
	}
}

// WithHTTPClient задаёт собственный http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// NewClient создаёт клиента. token обязателен.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token: token,
		client: &http.Client{
			Timeout: 20 * time.Second,
		},
		apiURL: fmt.Sprintf("%s/bot%s", defaultAPIBase, token),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendMessage отправляет текстовое сообщение. Превью ссылок отключено.
func (c *Client) SendMessage(ctx context.Context, chatID string, text string, parseMode string) error {
	payload := sendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		ParseMode:             parseMode,
		DisableWebPagePreview: true,
	}
	return c.post(ctx, "sendMessage", payload)
}

func (c *Client) post(ctx context.Context, method string, body interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/"+method, bytes.NewReader(data))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return c.redact(method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var out apiResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode >= 400 {
		return &APIError{StatusCode: resp.StatusCode, Description: out.Description}
	}
	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	if !out.OK {
		code := out.ErrorCode
		if code == 0 {
			code = resp.StatusCode
		}
		return &APIError{StatusCode: code, Description: out.Description}
	}
	return nil
}

// redact убирает из сетевой ошибки URL запроса: в нём содержится токен бота.
func (c *Client) redact(method string, err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	if c.token != "" && strings.Contains(err.Error(), c.token) {
		return fmt.Errorf("telegram %s: %s", method, strings.ReplaceAll(err.Error(), c.token, "<redacted>"))
	}
	return fmt.Errorf("telegram %s: %w", method, err)
}
