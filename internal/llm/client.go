package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// GenerateRequest holds the parameters for an LLM generation call.
type GenerateRequest struct {
	Task         TaskType
	SystemPrompt string
	UserPrompt   string
	Temperature  *float64 // nil uses task default
	MaxTokens    *int     // nil uses task default
}

// GenerateResponse holds the result of an LLM generation call.
type GenerateResponse struct {
	Text      string
	Model     string
	LatencyMs int64
}

// LLMClient provides access to a language model for text generation.
// Every Generate call is exactly one attempt against the provider.
type LLMClient interface {
	// Generate sends a prompt and returns the raw text response.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// Available checks whether the provider is reachable and configured.
	Available(ctx context.Context) bool
}

// New builds the client for cfg.Provider.
func New(cfg LLMConfig, observer Observer) (LLMClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case ProviderOpenRouter:
		return NewOpenRouterClient(cfg, observer), nil
	case ProviderOllama:
		return NewOllamaClient(cfg, observer), nil
	case ProviderAnthropic, ProviderBedrock:
		return NewAnthropicClient(context.Background(), cfg, observer)
	}
	return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
}

// callParams are the resolved settings for one call.
type callParams struct {
	Model       string
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// providerCall performs the provider-specific request and returns the text
// and the model that answered.
type providerCall func(ctx context.Context, p callParams) (text, model string, err error)

// invoke resolves task settings, enforces the task timeout, classifies
// failures into the package sentinels and reports one event to the observer.
func invoke(ctx context.Context, cfg LLMConfig, observer Observer, req GenerateRequest, call providerCall) (*GenerateResponse, error) {
	start := time.Now()

	taskCfg := cfg.Tasks[req.Task]
	params := callParams{
		Model:       cfg.ModelFor(req.Task),
		System:      req.SystemPrompt,
		Prompt:      req.UserPrompt,
		Temperature: taskCfg.Temperature,
		MaxTokens:   taskCfg.MaxTokens,
	}
	if req.Temperature != nil {
		params.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		params.MaxTokens = *req.MaxTokens
	}

	if timeoutMs := cfg.TaskTimeout(req.Task); timeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
		defer cancel()
	}

	text, model, err := call(ctx, params)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyResponse
	}
	if model == "" {
		model = params.Model
	}

	latency := time.Since(start).Milliseconds()
	event := LLMCallEvent{
		Task:      req.Task,
		Provider:  cfg.Provider,
		Model:     model,
		LatencyMs: latency,
		Success:   err == nil,
	}
	if err != nil {
		err = classify(ctx, err)
		event.ErrorCode = errorCode(err)
	}
	observer.OnCallComplete(event)

	if err != nil {
		return nil, err
	}
	return &GenerateResponse{Text: text, Model: model, LatencyMs: latency}, nil
}

func classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return ErrTimeout
	case ctx.Err() != nil:
		return fmt.Errorf("llm request canceled: %w", ctx.Err())
	case errors.Is(err, ErrEmptyResponse), errors.Is(err, ErrProviderError), errors.Is(err, ErrInvalidOutput):
		return err
	case isConnectionError(err):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", ErrProviderError, err)
	}
}

func isConnectionError(err error) bool {
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrEmptyResponse):
		return "EMPTY"
	case errors.Is(err, ErrInvalidOutput):
		return "INVALID_OUTPUT"
	case errors.Is(err, ErrProviderError):
		return "PROVIDER"
	default:
		return "UNKNOWN"
	}
}

func observerOrNoop(o Observer) Observer {
	if o == nil {
		return NoopObserver{}
	}
	return o
}

// unconfiguredClient stands in for a provider whose configuration was
// rejected. Every call fails with that reason.
type unconfiguredClient struct {
	reason error
}

// Unconfigured returns an LLMClient that always fails with reason. It keeps
// model-free commands usable when no credential is set.
func Unconfigured(reason error) LLMClient {
	return unconfiguredClient{reason: reason}
}

func (c unconfiguredClient) Generate(context.Context, GenerateRequest) (*GenerateResponse, error) {
	return nil, fmt.Errorf("%w: %w", ErrUnavailable, c.reason)
}

func (unconfiguredClient) Available(context.Context) bool { return false }
