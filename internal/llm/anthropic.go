package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aws/aws-sdk-go-v2/config"
)

// anthropicClient implements LLMClient with the Anthropic Messages API,
// either directly or through AWS Bedrock.
type anthropicClient struct {
	cfg      LLMConfig
	inner    anthropic.Client
	observer Observer
}

// NewAnthropicClient creates an LLMClient for ProviderAnthropic or
// ProviderBedrock. The SDK's own retries are disabled so each Generate is a
// single attempt.
func NewAnthropicClient(ctx context.Context, cfg LLMConfig, observer Observer) (LLMClient, error) {
	opts := []option.RequestOption{option.WithMaxRetries(0)}

	switch cfg.Provider {
	case ProviderBedrock:
		var loadOpts []func(*config.LoadOptions) error
		if cfg.AWSRegion != "" {
			loadOpts = append(loadOpts, config.WithRegion(cfg.AWSRegion))
		}
		if cfg.AWSProfile != "" {
			loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.AWSProfile))
		}
		opts = append(opts, bedrock.WithLoadDefaultConfig(ctx, loadOpts...))
	default:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w for provider %s", ErrMissingCredential, cfg.Provider)
		}
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
		if cfg.Endpoint != "" {
			opts = append(opts, option.WithBaseURL(cfg.Endpoint))
		}
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}

	return &anthropicClient{
		cfg:      cfg,
		inner:    anthropic.NewClient(opts...),
		observer: observerOrNoop(observer),
	}, nil
}

func (c *anthropicClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	return invoke(ctx, c.cfg, c.observer, req, c.call)
}

func (c *anthropicClient) call(ctx context.Context, p callParams) (string, string, error) {
	maxTokens := int64(p.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.Model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(p.Prompt)),
		},
		Temperature: anthropic.Float(p.Temperature),
	}
	if p.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: p.System}}
	}

	resp, err := c.inner.Messages.New(ctx, params)
	if err != nil {
		return "", "", err
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(variant.Text)
		}
	}
	return text.String(), string(resp.Model), nil
}

// Available reports whether a credential is configured. The Messages API has
// no free probe endpoint.
func (c *anthropicClient) Available(context.Context) bool {
	return c.cfg.Provider == ProviderBedrock || c.cfg.APIKey != ""
}
