package adapter

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		message      string
		wantCategory Category
		wantTemp     bool
	}{
		{"rate limit", 429, "too many requests", CategoryRateLimit, true},
		{"server error", 503, "upstream unavailable", CategoryTransport, true},
		{"policy rejection", 400, "request blocked by content policy", CategoryContentPolicy, false},
		{"safety rejection", 422, "flagged by safety system", CategoryContentPolicy, false},
		{"plain bad request", 400, "missing field", CategoryTransport, false},
		{"auth failure", 401, "invalid api key", CategoryTransport, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.status, tt.message, nil)
			assert.Equal(t, tt.wantCategory, got.Category)
			assert.Equal(t, tt.wantTemp, got.Temporary)
			assert.Equal(t, tt.status, got.Status)
		})
	}
}

func TestClassifyWrapsUnderlyingError(t *testing.T) {
	underlying := errors.New("connection reset")
	got := classify(502, "bad gateway", underlying)
	assert.ErrorIs(t, got, underlying)
}

func TestLooksLikePolicyRejection(t *testing.T) {
	assert.True(t, looksLikePolicyRejection("Output blocked by content_filter"))
	assert.True(t, looksLikePolicyRejection("This request was REFUSED"))
	assert.True(t, looksLikePolicyRejection("violates our usage policies"))
	assert.False(t, looksLikePolicyRejection("model not found"))
	assert.False(t, looksLikePolicyRejection(""))
}

func TestIsContentPolicy(t *testing.T) {
	policy := NewContentPolicyError(400, "content filter")
	assert.True(t, IsContentPolicy(policy))
	assert.True(t, IsContentPolicy(fmt.Errorf("attempt failed: %w", policy)))
	assert.False(t, IsContentPolicy(classify(429, "slow down", nil)))
	assert.False(t, IsContentPolicy(errors.New("plain")))
	assert.False(t, IsContentPolicy(nil))
}

func TestIsRateLimited(t *testing.T) {
	assert.True(t, IsRateLimited(classify(429, "slow down", nil)))
	assert.True(t, IsRateLimited(&AdapterError{Status: 429}))
	assert.False(t, IsRateLimited(classify(500, "boom", nil)))
	assert.False(t, IsRateLimited(errors.New("plain")))
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"wrapped deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), true},
		{"temporary flag", &AdapterError{Temporary: true}, true},
		{"rate limit status", &AdapterError{Status: 429}, true},
		{"server error", &AdapterError{Status: 502}, true},
		{"client error", &AdapterError{Status: 400}, false},
		{"policy rejection", NewContentPolicyError(400, "blocked"), false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}
