package intelligence

import (
	"fmt"
	"strings"

	"github.com/Now-Tiger/Flow/internal/domain"
)

// BreakdownInput is the free-text description of a feature to break down.
type BreakdownInput struct {
	FeatureGoal  string
	TargetUsers  string
	Constraints  string
	TemplateType string // optional, defaults to domain.DefaultTemplateType
}

// Validate reports the first required field that is empty or blank.
func (in BreakdownInput) Validate() error {
	switch {
	case strings.TrimSpace(in.FeatureGoal) == "":
		return fmt.Errorf("%w: feature goal is required", domain.ErrValidation)
	case strings.TrimSpace(in.TargetUsers) == "":
		return fmt.Errorf("%w: target users is required", domain.ErrValidation)
	case strings.TrimSpace(in.Constraints) == "":
		return fmt.Errorf("%w: constraints is required", domain.ErrValidation)
	}
	return nil
}

// Template returns the template type, falling back to the default.
func (in BreakdownInput) Template() string {
	return domain.CoalesceStr(in.TemplateType, domain.DefaultTemplateType)
}

const breakdownOutputSchema = `Return ONLY a valid JSON array (no markdown, no code blocks) with objects containing:
{
  "title": "string",
  "description": "string",
  "type": "user-story" | "engineering-task" | "risk" | "unknown",
  "priority": "low" | "medium" | "high",
  "difficulty": "easy" | "medium" | "hard",
  "estimatedHours": number (optional, for engineering tasks only)
}

Important:
- Return valid JSON array only, nothing else
- Start with [ and end with ]
- Make sure all strings are properly escaped
- Do not include any markdown or code block markers`

// BuildBreakdownPrompt renders the instruction sent to the model for a
// feature breakdown. The input fields are embedded verbatim.
func BuildBreakdownPrompt(in BreakdownInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You are an expert task breakdown specialist. Given a feature idea, break it down into actionable items.\n\n")
	fmt.Fprintf(&b, "Feature Goal: %s\n", in.FeatureGoal)
	fmt.Fprintf(&b, "Target Users: %s\n", in.TargetUsers)
	fmt.Fprintf(&b, "Constraints: %s\n", in.Constraints)
	fmt.Fprintf(&b, "Template Type: %s\n\n", in.Template())
	b.WriteString("Generate a comprehensive breakdown with:\n")
	b.WriteString("1. 3-4 user stories (from user perspective)\n")
	b.WriteString("2. 5-7 engineering tasks (technical implementation)\n")
	b.WriteString("3. 2-3 risks or unknowns\n\n")
	b.WriteString(breakdownOutputSchema)
	return b.String(), nil
}

// summarySystemPrompt frames the free-form chat endpoint.
const summarySystemPrompt = "You are an expert Software Architect and Technical Lead. " +
	"Your task is to break down feature requests into high-quality user stories and engineering tasks. " +
	"Please limit the story under 10 lines only."
