package llm

import "fmt"

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskBreakdown TaskType = "breakdown"
	TaskSummary   TaskType = "summary"
)

// Provider names a model backend.
type Provider string

const (
	ProviderOpenRouter Provider = "openrouter"
	ProviderAnthropic  Provider = "anthropic"
	ProviderBedrock    Provider = "bedrock"
	ProviderOllama     Provider = "ollama"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Model       string // overrides LLMConfig.Model if set
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem. It is built once
// at startup and never mutated afterwards.
type LLMConfig struct {
	Provider   Provider
	Endpoint   string
	APIKey     string
	Model      string
	TimeoutMs  int
	LogCalls   bool
	AWSRegion  string
	AWSProfile string
	Tasks      map[TaskType]TaskConfig
}

// DefaultConfig returns the OpenRouter setup with the models the breakdown
// and summary prompts were tuned against.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Provider:  ProviderOpenRouter,
		Endpoint:  "https://openrouter.ai/api/v1",
		Model:     "nvidia/nemotron-3-nano-30b-a3b:free",
		TimeoutMs: 120000,
		Tasks: map[TaskType]TaskConfig{
			TaskBreakdown: {Temperature: 0.3, MaxTokens: 4096},
			TaskSummary:   {Model: "google/gemini-2.0-flash-001", Temperature: 0.5, MaxTokens: 1024, TimeoutMs: 60000},
		},
	}
}

// DefaultModel returns the default model for a provider.
func DefaultModel(p Provider) string {
	switch p {
	case ProviderAnthropic:
		return "claude-sonnet-4-20250514"
	case ProviderBedrock:
		return "us.anthropic.claude-sonnet-4-20250514-v1:0"
	case ProviderOllama:
		return "llama3.2"
	default:
		return "nvidia/nemotron-3-nano-30b-a3b:free"
	}
}

// DefaultEndpoint returns the default base URL for HTTP providers.
func DefaultEndpoint(p Provider) string {
	switch p {
	case ProviderOllama:
		return "http://localhost:11434"
	case ProviderOpenRouter:
		return "https://openrouter.ai/api/v1"
	default:
		return ""
	}
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

// ModelFor returns the model used for a task.
func (c LLMConfig) ModelFor(task TaskType) string {
	if tc, ok := c.Tasks[task]; ok && tc.Model != "" {
		return tc.Model
	}
	return c.Model
}

// Validate checks that the configuration names a known provider and carries
// the credential it needs.
func (c LLMConfig) Validate() error {
	switch c.Provider {
	case ProviderOpenRouter, ProviderAnthropic:
		if c.APIKey == "" {
			return fmt.Errorf("%w for provider %s", ErrMissingCredential, c.Provider)
		}
	case ProviderBedrock:
		if c.AWSRegion == "" {
			return fmt.Errorf("%w: bedrock needs an AWS region", ErrMissingCredential)
		}
	case ProviderOllama:
	default:
		return fmt.Errorf("unknown llm provider %q", c.Provider)
	}
	return nil
}
