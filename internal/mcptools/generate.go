package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/Now-Tiger/Flow/internal/domain"
	"github.com/Now-Tiger/Flow/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// GenerateTool handles the flow_generate MCP tool.
type GenerateTool struct {
	generation service.GenerationService
	user       UserResolver
}

func NewGenerateTool(generation service.GenerationService, user UserResolver) *GenerateTool {
	return &GenerateTool{generation: generation, user: user}
}

// Definition returns the MCP tool definition for flow_generate.
func (t *GenerateTool) Definition() mcp.Tool {
	return mcp.NewTool("flow_generate",
		mcp.WithDescription(
			"Break a feature description down into user stories, engineering tasks and risks, "+
				"and save them as a new project grouped by task type.",
		),
		mcp.WithString("feature_goal",
			mcp.Required(),
			mcp.Description("What the feature should achieve"),
		),
		mcp.WithString("target_users",
			mcp.Required(),
			mcp.Description("Who the feature is for"),
		),
		mcp.WithString("constraints",
			mcp.Required(),
			mcp.Description("Deadlines, stack or scope limits"),
		),
		mcp.WithString("template_type",
			mcp.Description("Kind of product (default: "+domain.DefaultTemplateType+")"),
		),
	)
}

// Handle processes the flow_generate tool call.
func (t *GenerateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goal, errRes := requiredString(req, "feature_goal")
	if errRes != nil {
		return errRes, nil
	}
	users, errRes := requiredString(req, "target_users")
	if errRes != nil {
		return errRes, nil
	}
	constraints, errRes := requiredString(req, "constraints")
	if errRes != nil {
		return errRes, nil
	}

	userID, err := t.user(ctx)
	if err != nil {
		return errorResult("resolving user", err), nil
	}
	res, err := t.generation.Generate(ctx, userID, service.GenerateRequest{
		FeatureGoal:  goal,
		TargetUsers:  users,
		Constraints:  constraints,
		TemplateType: req.GetString("template_type", ""),
	})
	if err != nil {
		return errorResult("generation failed", err), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Created project %q\n\n", res.Project.Title)
	fmt.Fprintf(&sb, "- **ID**: %s\n", res.Project.ID)
	fmt.Fprintf(&sb, "- **Tasks**: %d\n", res.Stats.TotalTasks)
	fmt.Fprintf(&sb, "- **User stories**: %d\n", res.Stats.UserStories)
	fmt.Fprintf(&sb, "- **Engineering tasks**: %d\n", res.Stats.EngineeringTasks)
	fmt.Fprintf(&sb, "- **Risks**: %d\n", res.Stats.Risks)
	if len(res.Rejected) > 0 {
		fmt.Fprintf(&sb, "\n%d model records were rejected:\n", len(res.Rejected))
		for _, r := range res.Rejected {
			fmt.Fprintf(&sb, "- #%d: %s\n", r.Index, r.Reason)
		}
	}
	if len(res.UngroupedTypes) > 0 {
		types := make([]string, len(res.UngroupedTypes))
		for i, tt := range res.UngroupedTypes {
			types[i] = string(tt)
		}
		fmt.Fprintf(&sb, "\nNo group could be created for: %s\n", strings.Join(types, ", "))
	}
	return mcp.NewToolResultText(sb.String()), nil
}
