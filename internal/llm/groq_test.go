package llm

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

func TestNewGroqClientRequiresAPIKey(t *testing.T) {
	_, err := NewGroqClient(Config{})
	require.Error(t, err)
}

func TestGroqClientComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama-3.3-70b-versatile", req["model"])

		messages, ok := req["messages"].([]any)
		require.True(t, ok)
		require.Len(t, messages, 2)

		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"model": "llama-3.3-70b-versatile",
			"choices": [{"message": {"role": "assistant", "content": "{\"ARROZ\": \"Mercearia\"}"}, "finish_reason": "stop"}]
		}`))
	}))
	defer server.Close()

	client, err := NewGroqClient(Config{APIKey: "test-key", BaseURL: server.URL, RateLimit: 600})
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	content, err := client.Complete(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, `{"ARROZ": "Mercearia"}`, content)
}

func TestGroqClientCompleteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limit exceeded"}}`))
	}))
	defer server.Close()

	client, err := NewGroqClient(Config{APIKey: "test-key", BaseURL: server.URL, RateLimit: 600})
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	_, err = client.Complete(context.Background(), "system", "user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestGroqClientCompleteNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id": "chatcmpl-1", "choices": []}`))
	}))
	defer server.Close()

	client, err := NewGroqClient(Config{APIKey: "test-key", BaseURL: server.URL, RateLimit: 600})
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	_, err = client.Complete(context.Background(), "system", "user")
	require.Error(t, err)
}

func TestRateLimiterBlocksWhenExhausted(t *testing.T) {
	rl := newRateLimiter(2)
	defer rl.Close()

	assert.True(t, rl.tryAcquire())
	assert.True(t, rl.tryAcquire())
	assert.False(t, rl.tryAcquire())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := rl.wait(ctx)
	require.Error(t, err)
}
