package intelligence

import (
	"context"
	"fmt"
	"strings"

	"github.com/Now-Tiger/Flow/internal/domain"
	"github.com/Now-Tiger/Flow/internal/llm"
)

// BreakdownService turns a feature description into validated task records
// with one model call.
type BreakdownService interface {
	Breakdown(ctx context.Context, in BreakdownInput) (*BreakdownResult, error)
}

type breakdownService struct {
	client llm.LLMClient
}

func NewBreakdownService(client llm.LLMClient) BreakdownService {
	return &breakdownService{client: client}
}

func (s *breakdownService) Breakdown(ctx context.Context, in BreakdownInput) (*BreakdownResult, error) {
	prompt, err := BuildBreakdownPrompt(in)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:       llm.TaskBreakdown,
		UserPrompt: prompt,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}
	return ParseBreakdown(resp.Text)
}

// SummaryService answers a free-form prompt with a short architect-style
// breakdown in plain text.
type SummaryService interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

type summaryService struct {
	client llm.LLMClient
}

func NewSummaryService(client llm.LLMClient) SummaryService {
	return &summaryService{client: client}
}

func (s *summaryService) Summarize(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: prompt is required", domain.ErrValidation)
	}

	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskSummary,
		SystemPrompt: summarySystemPrompt,
		UserPrompt:   prompt,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}
	return resp.Text, nil
}
