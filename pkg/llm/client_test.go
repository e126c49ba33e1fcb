package llm

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newOpenAITestServer(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewOpenAIClient(&Config{Endpoint: srv.URL + "/v1", APIKey: "sk-test"}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestOpenAIClient_Invoke(t *testing.T) {
	var got map[string]any
	client := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"SELECT 1"}}],"usage":{"prompt_tokens":3,"completion_tokens":2}}`))
	})

	out, err := client.Invoke(context.Background(), PromptSpec{
		Model:  "gpt-4o",
		System: "Generate SQL.",
		Prompt: "count claims",
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", out)

	assert.Equal(t, "gpt-4o", got["model"])
	messages := got["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "count claims", messages[1].(map[string]any)["content"])
	// A zero temperature must still be sent.
	assert.Contains(t, got, "temperature")
}

func TestOpenAIClient_Invoke_ClassifiesHTTPError(t *testing.T) {
	client := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	})

	_, err := client.Invoke(context.Background(), PromptSpec{Model: "gpt-4o", Prompt: "q"})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeRateLimit, GetErrorType(err))
	assert.True(t, IsRetryable(err))

	var llmErr *Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, "gpt-4o", llmErr.Model)
}

func TestOpenAIClient_Invoke_NoChoices(t *testing.T) {
	client := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","choices":[]}`))
	})

	_, err := client.Invoke(context.Background(), PromptSpec{Model: "gpt-4o", Prompt: "q"})
	assert.Error(t, err)
}

func TestOpenAIClient_CreateEmbeddings_OrdersByIndex(t *testing.T) {
	client := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[
			{"object":"embedding","index":1,"embedding":[0,1]},
			{"object":"embedding","index":0,"embedding":[1,0]}
		],"model":"text-embedding-3-small"}`))
	})

	got, err := client.CreateEmbeddings(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, got)
	assert.Equal(t, defaultOpenAIEmbeddingModel, client.GetModel())
}

func TestNewOpenAIClient_RequiresEndpoint(t *testing.T) {
	_, err := NewOpenAIClient(&Config{}, zap.NewNop())
	assert.Error(t, err)
}

func TestChatTemperature(t *testing.T) {
	assert.Equal(t, float32(math.SmallestNonzeroFloat32), chatTemperature("gpt-4o", 0))
	assert.Equal(t, float32(0.7), chatTemperature("gpt-4o", 0.7))
	assert.Zero(t, chatTemperature("o4-mini", 0))
	assert.Zero(t, chatTemperature("o3", 0.5))
}

func TestAnthropicClient_Invoke(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-sonnet-4-5","content":[{"type":"text","text":"SELECT 2"}],"stop_reason":"end_turn","usage":{"input_tokens":5,"output_tokens":3}}`))
	}))
	defer srv.Close()

	client, err := NewAnthropicClient("key", srv.URL, zap.NewNop())
	require.NoError(t, err)

	out, err := client.Invoke(context.Background(), PromptSpec{
		Model:  "claude-sonnet-4-5",
		System: "Generate data insights.",
		Prompt: "rows",
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 2", out)
	assert.Equal(t, "Generate data insights.", got["system"])
	assert.Equal(t, float64(0), got["temperature"])
}
