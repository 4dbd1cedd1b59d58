package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicService_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req anthropicChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-sonnet-4-20250514", req.Model)
		require.Len(t, req.Messages, 1)

		resp := anthropicChatResponse{
			Role: "assistant",
			Content: []anthropicContentBlock{
				{Type: "text", Text: "The night "},
				{Type: "text", Text: "was quiet."},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	svc := NewAnthropicService("test-key", "claude-sonnet-4-20250514", testLogger())
	svc.SetBaseURL(server.URL)

	out, err := svc.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "The night was quiet.", out)
}

func TestAnthropicService_CompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"type":"authentication_error","message":"invalid key"}}`))
	}))
	defer server.Close()

	svc := NewAnthropicService("bad-key", "claude-sonnet-4-20250514", testLogger())
	svc.SetBaseURL(server.URL)

	_, err := svc.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestMockLLMService_QueueAndRepeat(t *testing.T) {
	mock := NewMockLLMService()
	mock.QueueResponse("first")
	mock.QueueResponse("second")

	ctx := context.Background()
	out, err := mock.Complete(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "first", out)

	out, err = mock.Complete(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, "second", out)

	// Last response repeats once the queue is drained.
	out, err = mock.Complete(ctx, "p3")
	require.NoError(t, err)
	assert.Equal(t, "second", out)

	assert.Equal(t, []string{"p1", "p2", "p3"}, mock.Prompts)
}
