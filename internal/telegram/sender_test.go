package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTelegramClient - мок для тестирования Sender
type mockTelegramClient struct {
	sendMessageFunc func(ctx context.Context, chatID string, text string, parseMode string) error
}

func (m *mockTelegramClient) SendMessage(ctx context.Context, chatID string, text string, parseMode string) error {
	if m.sendMessageFunc != nil {
		return m.sendMessageFunc(ctx, chatID, text, parseMode)
	}
	return nil
}

func TestSender_Send(t *testing.T) {
	tests := []struct {
		name         string
		chatID       string
		message      string
		mockFunc     func(ctx context.Context, chatID string, text string, parseMode string) error
		wantErr      bool
		wantRejected bool
		wantCalls    int
	}{
		{
			name:         "empty chat id",
			chatID:       "",
			message:      "test",
			wantErr:      true,
			wantRejected: true,
		},
		{
			name:         "empty message",
			chatID:       "123",
			message:      "   ",
			wantErr:      true,
			wantRejected: true,
		},
		{
			name:    "successful send",
			chatID:  "123",
			message: "Message 1",
			mockFunc: func(ctx context.Context, chatID string, text string, parseMode string) error {
				if chatID != "123" || parseMode != "HTML" {
					return errors.New("unexpected arguments")
				}
				return nil
			},
			wantCalls: 1,
		},
		{
			name:    "network error is not retried",
			chatID:  "123",
			message: "Message 1",
			mockFunc: func(ctx context.Context, chatID string, text string, parseMode string) error {
				return errors.New("network timeout")
			},
			wantErr:   true,
			wantCalls: 1,
		},
		{
			name:    "api rejection",
			chatID:  "123",
			message: "Message 1",
			mockFunc: func(ctx context.Context, chatID string, text string, parseMode string) error {
				return &APIError{StatusCode: 400, Description: "Bad Request: can't parse entities"}
			},
			wantErr:      true,
			wantRejected: true,
			wantCalls:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			mockClient := &mockTelegramClient{
				sendMessageFunc: func(ctx context.Context, chatID string, text string, parseMode string) error {
					calls++
					if tt.mockFunc != nil {
						return tt.mockFunc(ctx, chatID, text, parseMode)
					}
					return nil
				},
			}
			sender := NewSender(mockClient, tt.chatID).WithMinInterval(0)

			err := sender.Send(context.Background(), tt.message)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantRejected, errors.Is(err, ErrMessageRejected))
			assert.Equal(t, tt.wantCalls, calls, "SendMessage calls")
		})
	}
}

func TestSender_isPermanentError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "network error",
			err:  errors.New("network timeout"),
			want: false,
		},
		{
			name: "too many requests",
			err:  &APIError{StatusCode: 429, Description: "Too Many Requests: retry after 5"},
			want: false,
		},
		{
			name: "server error",
			err:  &APIError{StatusCode: 502},
			want: false,
		},
		{
			name: "forbidden",
			err:  &APIError{StatusCode: 403, Description: "Forbidden: bot was kicked"},
			want: true,
		},
		{
			name: "chat not found",
			err:  errors.New("Bad Request: chat not found"),
			want: true,
		},
		{
			name: "message too long",
			err:  errors.New("message is too long"),
			want: true,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isPermanentError(tt.err))
		})
	}
}

func TestSender_RateLimit(t *testing.T) {
	sender := NewSender(&mockTelegramClient{}, "123").WithMinInterval(40 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, sender.Send(ctx, "Message"))
	}

	// две паузы между тремя сообщениями
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestSender_RateLimit_ContextCanceled(t *testing.T) {
	sender := NewSender(&mockTelegramClient{}, "123").WithMinInterval(time.Hour)

	require.NoError(t, sender.Send(context.Background(), "first"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, sender.Send(ctx, "second"), context.DeadlineExceeded)
}
