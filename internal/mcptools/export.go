package mcptools

import (
	"context"

	"github.com/Now-Tiger/Flow/internal/export"
	"github.com/Now-Tiger/Flow/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// ExportProjectTool handles the flow_export_project MCP tool.
type ExportProjectTool struct {
	exports service.ExportService
	user    UserResolver
}

func NewExportProjectTool(exports service.ExportService, user UserResolver) *ExportProjectTool {
	return &ExportProjectTool{exports: exports, user: user}
}

func (t *ExportProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("flow_export_project",
		mcp.WithDescription("Render a project as a Markdown or plain-text document."),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("Project ID as shown by flow_list_projects"),
		),
		mcp.WithString("format",
			mcp.Description("markdown (default) or text"),
			mcp.Enum("markdown", "text"),
		),
	)
}

func (t *ExportProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, errRes := requiredString(req, "project_id")
	if errRes != nil {
		return errRes, nil
	}
	userID, err := t.user(ctx)
	if err != nil {
		return errorResult("resolving user", err), nil
	}
	file, err := t.exports.Export(ctx, userID, projectID, export.ParseFormat(req.GetString("format", "")))
	if err != nil {
		return errorResult("export failed", err), nil
	}
	return mcp.NewToolResultText(file.Content), nil
}
