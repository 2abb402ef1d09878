package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(provider Provider, endpoint string) LLMConfig {
	cfg := DefaultConfig()
	cfg.Provider = provider
	cfg.Endpoint = endpoint
	cfg.APIKey = "test-key"
	cfg.Model = DefaultModel(provider)
	return cfg
}

type captureObserver struct {
	events []LLMCallEvent
}

func (o *captureObserver) OnCallComplete(e LLMCallEvent) { o.events = append(o.events, e) }

func TestOpenRouterClient_Generate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nvidia/nemotron-3-nano-30b-a3b:free", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user prompt", req.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"nvidia/nemotron-3-nano-30b-a3b:free","choices":[{"message":{"role":"assistant","content":"[]"}}]}`))
	}))
	defer srv.Close()

	obs := &captureObserver{}
	client := NewOpenRouterClient(testConfig(ProviderOpenRouter, srv.URL), obs)
	resp, err := client.Generate(context.Background(), GenerateRequest{
		Task:         TaskBreakdown,
		SystemPrompt: "system prompt",
		UserPrompt:   "user prompt",
	})

	require.NoError(t, err)
	assert.Equal(t, "[]", resp.Text)
	assert.Equal(t, "nvidia/nemotron-3-nano-30b-a3b:free", resp.Model)
	require.Len(t, obs.events, 1)
	assert.True(t, obs.events[0].Success)
	assert.Equal(t, ProviderOpenRouter, obs.events[0].Provider)
}

func TestOpenRouterClient_Generate_SummaryUsesTaskModel(t *testing.T) {
	var model string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		model = req.Model
		require.Len(t, req.Messages, 1, "no system message when the prompt has none")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"short story"}}]}`))
	}))
	defer srv.Close()

	client := NewOpenRouterClient(testConfig(ProviderOpenRouter, srv.URL), nil)
	resp, err := client.Generate(context.Background(), GenerateRequest{Task: TaskSummary, UserPrompt: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "google/gemini-2.0-flash-001", model)
	assert.Equal(t, "google/gemini-2.0-flash-001", resp.Model, "falls back to the requested model")
}

func TestOpenRouterClient_Generate_SingleAttemptOnServerError(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	obs := &captureObserver{}
	client := NewOpenRouterClient(testConfig(ProviderOpenRouter, srv.URL), obs)
	_, err := client.Generate(context.Background(), GenerateRequest{Task: TaskBreakdown, UserPrompt: "x"})

	assert.ErrorIs(t, err, ErrProviderError)
	assert.Equal(t, int32(1), attempts.Load())
	require.Len(t, obs.events, 1)
	assert.Equal(t, "PROVIDER", obs.events[0].ErrorCode)
}

func TestOpenRouterClient_Generate_ErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"rate limited","code":429}}`))
	}))
	defer srv.Close()

	client := NewOpenRouterClient(testConfig(ProviderOpenRouter, srv.URL), nil)
	_, err := client.Generate(context.Background(), GenerateRequest{Task: TaskBreakdown, UserPrompt: "x"})

	assert.ErrorIs(t, err, ErrProviderError)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestOpenRouterClient_Generate_EmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"   "}}]}`))
	}))
	defer srv.Close()

	client := NewOpenRouterClient(testConfig(ProviderOpenRouter, srv.URL), nil)
	_, err := client.Generate(context.Background(), GenerateRequest{Task: TaskBreakdown, UserPrompt: "x"})

	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOpenRouterClient_Generate_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := NewOpenRouterClient(testConfig(ProviderOpenRouter, srv.URL), nil)
	_, err := client.Generate(context.Background(), GenerateRequest{Task: TaskBreakdown, UserPrompt: "x"})

	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestOpenRouterClient_Generate_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	cfg := testConfig(ProviderOpenRouter, srv.URL)
	cfg.Tasks = map[TaskType]TaskConfig{TaskBreakdown: {TimeoutMs: 50}}

	obs := &captureObserver{}
	client := NewOpenRouterClient(cfg, obs)
	_, err := client.Generate(context.Background(), GenerateRequest{Task: TaskBreakdown, UserPrompt: "x"})

	assert.ErrorIs(t, err, ErrTimeout)
	require.Len(t, obs.events, 1)
	assert.Equal(t, "TIMEOUT", obs.events[0].ErrorCode)
}

func TestOpenRouterClient_Generate_Unavailable(t *testing.T) {
	client := NewOpenRouterClient(testConfig(ProviderOpenRouter, "http://127.0.0.1:1"), nil)
	_, err := client.Generate(context.Background(), GenerateRequest{Task: TaskBreakdown, UserPrompt: "x"})

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestOpenRouterClient_Available(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	assert.True(t, NewOpenRouterClient(testConfig(ProviderOpenRouter, srv.URL), nil).Available(context.Background()))

	noKey := testConfig(ProviderOpenRouter, srv.URL)
	noKey.APIKey = ""
	assert.False(t, NewOpenRouterClient(noKey, nil).Available(context.Background()))
}

func TestOllamaClient_Generate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3.2", req.Model)
		assert.False(t, req.Stream)
		assert.Equal(t, "system prompt", req.System)

		json.NewEncoder(w).Encode(ollamaResponse{Model: "llama3.2", Response: `[{"title":"x"}]`})
	}))
	defer srv.Close()

	client := NewOllamaClient(testConfig(ProviderOllama, srv.URL), NoopObserver{})
	resp, err := client.Generate(context.Background(), GenerateRequest{
		Task:         TaskBreakdown,
		SystemPrompt: "system prompt",
		UserPrompt:   "user prompt",
	})

	require.NoError(t, err)
	assert.Equal(t, `[{"title":"x"}]`, resp.Text)
	assert.GreaterOrEqual(t, resp.LatencyMs, int64(0))
}

func TestOllamaClient_Available(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	assert.True(t, NewOllamaClient(testConfig(ProviderOllama, srv.URL), nil).Available(context.Background()))
	assert.False(t, NewOllamaClient(testConfig(ProviderOllama, "http://127.0.0.1:1"), nil).Available(context.Background()))
}

func TestAnthropicClient_Generate_Success(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "claude-sonnet-4-20250514", body["model"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_1", "type": "message", "role": "assistant",
			"model": "claude-sonnet-4-20250514",
			"content": [{"type": "text", "text": "[{\"title\":"}, {"type": "text", "text": "\"a\"}]"}],
			"stop_reason": "end_turn", "stop_sequence": null,
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer srv.Close()

	client, err := NewAnthropicClient(context.Background(), testConfig(ProviderAnthropic, srv.URL), nil)
	require.NoError(t, err)

	resp, err := client.Generate(context.Background(), GenerateRequest{
		Task:         TaskBreakdown,
		SystemPrompt: "system",
		UserPrompt:   "user",
	})
	require.NoError(t, err)
	assert.Equal(t, `[{"title":"a"}]`, resp.Text)
	assert.Equal(t, "claude-sonnet-4-20250514", resp.Model)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestAnthropicClient_Generate_NoRetryOnServerError(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`))
	}))
	defer srv.Close()

	client, err := NewAnthropicClient(context.Background(), testConfig(ProviderAnthropic, srv.URL), nil)
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), GenerateRequest{Task: TaskBreakdown, UserPrompt: "user"})
	assert.ErrorIs(t, err, ErrProviderError)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestAnthropicClient_MissingKey(t *testing.T) {
	cfg := testConfig(ProviderAnthropic, "")
	cfg.APIKey = ""
	_, err := NewAnthropicClient(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestNew_SelectsProvider(t *testing.T) {
	c, err := New(testConfig(ProviderOpenRouter, "http://example.invalid"), nil)
	require.NoError(t, err)
	assert.IsType(t, &openRouterClient{}, c)

	c, err = New(testConfig(ProviderOllama, "http://example.invalid"), nil)
	require.NoError(t, err)
	assert.IsType(t, &ollamaClient{}, c)

	c, err = New(testConfig(ProviderAnthropic, "http://example.invalid"), nil)
	require.NoError(t, err)
	assert.IsType(t, &anthropicClient{}, c)

	_, err = New(testConfig("gpt-local", ""), nil)
	assert.Error(t, err)
}

func TestUnconfigured(t *testing.T) {
	c := Unconfigured(ErrMissingCredential)

	_, err := c.Generate(context.Background(), GenerateRequest{Task: TaskBreakdown, UserPrompt: "x"})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.False(t, c.Available(context.Background()))
}
