package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// openRouterClient implements LLMClient against the OpenRouter
// chat-completions API.
type openRouterClient struct {
	cfg      LLMConfig
	http     *http.Client
	observer Observer
}

// NewOpenRouterClient creates an LLMClient for OpenRouter. The API key in
// cfg is read once here and never refreshed.
func NewOpenRouterClient(cfg LLMConfig, observer Observer) LLMClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint(ProviderOpenRouter)
	}
	return &openRouterClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
			},
		},
		observer: observerOrNoop(observer),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

func (c *openRouterClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	return invoke(ctx, c.cfg, c.observer, req, c.call)
}

func (c *openRouterClient) call(ctx context.Context, p callParams) (string, string, error) {
	body := chatRequest{
		Model:       p.Model,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	}
	if p.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: p.System})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: p.Prompt})

	data, err := json.Marshal(body)
	if err != nil {
		return "", "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", "", fmt.Errorf("creating request: %w", err)
	}
	for k, v := range c.headers() {
		httpReq.Header[k] = v
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return "", "", err
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", "", fmt.Errorf("reading response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("%w: openrouter status %d: %s", ErrProviderError, httpResp.StatusCode, truncate(raw, 200))
	}

	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", "", fmt.Errorf("%w: decoding openrouter response: %v", ErrInvalidOutput, err)
	}
	if resp.Error != nil {
		return "", "", fmt.Errorf("%w: %s", ErrProviderError, resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", resp.Model, ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, resp.Model, nil
}

func (c *openRouterClient) headers() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+c.cfg.APIKey)
	h.Set("X-Title", "Flow")
	return h
}

func (c *openRouterClient) Available(ctx context.Context) bool {
	return c.cfg.APIKey != "" && probe(ctx, c.http, c.cfg.Endpoint+"/models", c.headers())
}
