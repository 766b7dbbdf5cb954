package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-chat/internal/config"
)

func TestOpenAIClient_Generate(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		Temperature float32 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "openai/gpt-oss-120b",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Hello! How can I help?"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 6, "total_tokens": 18}
		}`))
	}))
	defer srv.Close()

	c := NewOpenAI("gsk_test", srv.URL, "openai/gpt-oss-120b", 0.7, 500)
	resp, err := c.Generate(context.Background(), []Message{{Role: RoleSystem, Content: "prompt"}})
	require.NoError(t, err)

	assert.Equal(t, "Hello! How can I help?", resp.Content)
	assert.Equal(t, "openai/gpt-oss-120b", resp.Model)
	assert.Equal(t, 18, resp.TotalTokens)

	assert.Equal(t, "openai/gpt-oss-120b", got.Model)
	assert.InDelta(t, 0.7, got.Temperature, 1e-6)
	assert.Equal(t, 500, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, RoleSystem, got.Messages[0].Role)
	assert.Equal(t, "prompt", got.Messages[0].Content)
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	c := NewOpenAI("k", srv.URL, "m", 0.7, 500)
	_, err := c.Generate(context.Background(), []Message{{Role: RoleSystem, Content: "p"}})
	assert.Error(t, err)
}

func TestOpenAIClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid API Key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	c := NewOpenAI("bad", srv.URL, "m", 0.7, 500)
	_, err := c.Generate(context.Background(), []Message{{Role: RoleSystem, Content: "p"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API Key")
}

func TestFactory_CreateClient(t *testing.T) {
	f := NewFactory(&config.Config{OpenAIAPIKey: "k", OpenAIModel: "m", MaxTokens: 500})

	c, err := f.CreateClient("OpenAI")
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)

	_, err = f.CreateClient("bard")
	assert.Error(t, err)
}
