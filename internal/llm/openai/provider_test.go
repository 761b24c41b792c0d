package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/Rrens/shop-assistant/internal/llm"
	"github.com/Rrens/shop-assistant/internal/llm/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, reply string, inspect func(body map[string]any)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if inspect != nil {
			inspect(body)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
}

func TestClassify_ToolCall(t *testing.T) {
	srv := newServer(t, `{
		"model": "gpt-4o-mini",
		"choices": [{"message": {"content": "", "tool_calls": [{"function": {"name": "add_to_cart", "arguments": "{\"quantity\": 2}"}}]}}],
		"usage": {"total_tokens": 57}
	}`, func(body map[string]any) {
		msgs := body["messages"].([]any)
		// system, the user turn kept from history, then the latest message
		require.Len(t, msgs, 3)
		assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
		assert.Equal(t, "add it", msgs[2].(map[string]any)["content"])

		tools := body["tools"].([]any)
		require.Len(t, tools, 1)
		fn := tools[0].(map[string]any)["function"].(map[string]any)
		assert.Equal(t, "add_to_cart", fn["name"])
	})
	defer srv.Close()

	p := openai.NewProvider("sk-test", "", srv.URL)
	d, err := p.Classify(context.Background(), llm.ClassifyRequest{
		History: []domain.HistoryEntry{
			{Role: domain.RoleAssistant, Content: "Welcome"},
			{Role: domain.RoleUser, Content: "show shoes"},
		},
		Message: "add it",
		Tools: []llm.Tool{{
			Name:   "add_to_cart",
			Params: []llm.ToolParam{{Name: "quantity", Type: "integer"}},
		}},
	}, "")

	require.NoError(t, err)
	assert.Equal(t, "add_to_cart", d.FunctionName)
	assert.Equal(t, json.Number("2"), d.Arguments["quantity"])
	assert.Equal(t, 57, d.TokensUsed)
}

func TestClassify_Text(t *testing.T) {
	srv := newServer(t, `{"choices": [{"message": {"content": "Hello! How can I help?"}}]}`, nil)
	defer srv.Close()

	p := openai.NewProvider("sk-test", "gpt-4o", srv.URL)
	d, err := p.Classify(context.Background(), llm.ClassifyRequest{Message: "hi"}, "")

	require.NoError(t, err)
	assert.False(t, d.IsFunctionCall())
	assert.Equal(t, "Hello! How can I help?", d.Text)
	assert.Equal(t, "gpt-4o", d.Model)
}

func TestRespond(t *testing.T) {
	srv := newServer(t, `{"choices": [{"message": {"content": "Your cart has 2 items."}}]}`, func(body map[string]any) {
		assert.Nil(t, body["tools"])
		assert.Equal(t, 0.8, body["temperature"])
	})
	defer srv.Close()

	p := openai.NewProvider("sk-test", "", srv.URL)
	resp, err := p.Respond(context.Background(), llm.RespondRequest{Prompt: "summarize"}, "")

	require.NoError(t, err)
	assert.Equal(t, "Your cart has 2 items.", resp.Text)
}

func TestComplete_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := openai.NewProvider("sk-test", "", srv.URL)
	_, err := p.Respond(context.Background(), llm.RespondRequest{Prompt: "x"}, "")
	assert.ErrorContains(t, err, "429")
}

func TestFactory(t *testing.T) {
	_, err := openai.Factory(map[string]any{})
	assert.Error(t, err)

	p, err := openai.Factory(map[string]any{"base_url": "http://localhost:11434/v1", "model": "llama3"})
	require.NoError(t, err)
	assert.True(t, p.IsConfigured())
	assert.Equal(t, "llama3", p.DefaultModel())
}
