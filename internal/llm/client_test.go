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

	"github.com/daryltucker/dex-bench/internal/config"
	"github.com/daryltucker/dex-bench/internal/output"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.BaseURL = srv.URL + "/v1/"
	cfg.APIKey = "secret"
	cfg.RequestTimeout = 5 * time.Second
	c := New(cfg)
	c.Logger = output.Discard()
	return c
}

func TestGenerateJSON(t *testing.T) {
	var got chatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "` + "```json\\n{\\\"summary\\\": \\\"short\\\"}\\n```" + `"}}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15}
		}`))
	})

	var out struct {
		Summary string `json:"summary"`
	}
	usage, err := c.GenerateJSON(context.Background(), Request{Model: "m/one", System: "sys", Prompt: "hi"}, &out)
	require.NoError(t, err)

	assert.Equal(t, "short", out.Summary)
	assert.Equal(t, 3, usage.CompletionTokens)
	assert.Equal(t, "m/one", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
}

func TestChatErrors(t *testing.T) {
	t.Run("gateway status", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model overloaded", http.StatusServiceUnavailable)
		})
		_, err := c.Chat(context.Background(), Request{Model: "m", Prompt: "p"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gateway error")
		assert.Contains(t, err.Error(), "model overloaded")
	})

	t.Run("api error body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error": {"message": "bad model"}}`))
		})
		_, err := c.Chat(context.Background(), Request{Model: "m", Prompt: "p"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad model")
	})

	t.Run("no choices", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices": []}`))
		})
		_, err := c.Chat(context.Background(), Request{Model: "m", Prompt: "p"})
		assert.Error(t, err)
	})

	t.Run("invalid structured output", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "I cannot do that"}}]}`))
		})
		var out map[string]any
		_, err := c.GenerateJSON(context.Background(), Request{Model: "m", Prompt: "p"}, &out)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid structured output")
	})
}

func TestListModels(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		_, _ = w.Write([]byte(`{"data": [{"id": "a/x"}, {"id": "b/y"}]}`))
	})
	models, err := c.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a/x", "b/y"}, models)
}

func TestDecodeJSON(t *testing.T) {
	var out struct {
		EntityTypes []string `json:"entityTypes"`
	}
	require.NoError(t, DecodeJSON(`Sure! {"entityTypes": ["PERSON", "ORG"]} Hope this helps.`, &out))
	assert.Equal(t, []string{"PERSON", "ORG"}, out.EntityTypes)

	assert.Error(t, DecodeJSON("", &out))
	assert.Error(t, DecodeJSON("{not json}", &out))
}
