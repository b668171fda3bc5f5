package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SendMessage(t *testing.T) {
	var (
		gotPath string
		gotBody map[string]interface{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer srv.Close()

	c := NewClient("TOKEN", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, c.SendMessage(context.Background(), "-100123", "<b>hi</b>", "HTML"))

	assert.Equal(t, "/botTOKEN/sendMessage", gotPath)
	want := map[string]interface{}{
		"chat_id":                  "-100123",
		"text":                     "<b>hi</b>",
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	for k, v := range want {
		assert.Equal(t, v, gotBody[k], "body[%q]", k)
	}
}

func TestClient_SendMessage_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantDesc   string
	}{
		{
			name:       "bad request",
			status:     http.StatusBadRequest,
			body:       `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`,
			wantStatus: 400,
			wantDesc:   "Bad Request: chat not found",
		},
		{
			name:       "server error without body",
			status:     http.StatusBadGateway,
			body:       ``,
			wantStatus: 502,
		},
		{
			name:       "ok false with 200",
			status:     http.StatusOK,
			body:       `{"ok":false,"error_code":403,"description":"Forbidden"}`,
			wantStatus: 403,
			wantDesc:   "Forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := NewClient("T", WithBaseURL(srv.URL)).SendMessage(context.Background(), "1", "x", "")

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantDesc, apiErr.Description)
		})
	}
}

func TestClient_SendMessage_NetworkErrorHidesToken(t *testing.T) {
	const token = "123456:SECRET-TOKEN"

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	sender := NewSender(NewClient(token, WithBaseURL(srv.URL)), "1").WithMinInterval(0)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := sender.Send(ctx, "x")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotContains(t, err.Error(), token)
	assert.NotContains(t, err.Error(), "SECRET")
	assert.Contains(t, err.Error(), "telegram sendMessage")
}

func TestClient_SendMessage_UnreachableHostHidesToken(t *testing.T) {
	const token = "987:ANOTHER-SECRET"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	err := NewClient(token, WithBaseURL(base)).SendMessage(context.Background(), "1", "x", "")

	require.Error(t, err)
	assert.NotContains(t, err.Error(), token)
}
