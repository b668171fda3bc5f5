package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		err         string
		rpd         bool
		rateLimit   bool
		unavailable bool
		temporary   bool
		quota       bool
	}{
		{
			name:  "daily quota",
			err:   "Error 429: quota metric generate_content_free_tier_requests, limit: 20",
			rpd:   true,
			quota: true,
		},
		{
			name:  "daily quota by limit value",
			err:   "Error 429, Message: Quota exceeded for metric, limit: 20, model: gemini-2.0-flash",
			rpd:   true,
			quota: true,
		},
		{
			name:      "rpm limit",
			err:       "Error 429: Resource exhausted",
			rateLimit: true,
		},
		{
			name:      "too many requests",
			err:       "too many requests, slow down",
			rateLimit: true,
		},
		{
			name:        "overloaded",
			err:         "Error 503: The model is overloaded",
			unavailable: true,
		},
		{
			name:        "service unavailable text",
			err:         "Service Unavailable",
			unavailable: true,
		},
		{
			name:      "internal error",
			err:       "Error 500: Internal Server Error",
			temporary: true,
		},
		{
			name:      "bad gateway",
			err:       "Error 502: Bad Gateway",
			temporary: true,
		},
		{
			name:      "gateway timeout",
			err:       "Error 504: Gateway Timeout",
			temporary: true,
		},
		{
			name:  "permission denied",
			err:   "Error 403: permission denied",
			quota: true,
		},
		{
			name:  "billing quota",
			err:   "Error 400: project quota exhausted",
			quota: true,
		},
		{
			name: "bad request",
			err:  "Error 400: invalid argument",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.rpd, isRPDQuotaError(tt.err), "isRPDQuotaError")
			assert.Equal(t, tt.rateLimit, isRateLimitError(tt.err), "isRateLimitError")
			assert.Equal(t, tt.unavailable, isServiceUnavailableError(tt.err), "isServiceUnavailableError")
			assert.Equal(t, tt.temporary, isTemporaryError(tt.err), "isTemporaryError")
			assert.Equal(t, tt.quota, isQuotaExceededError(tt.err), "isQuotaExceededError")
		})
	}
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), "  ", 0)
	assert.Error(t, err)
}
