package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/Now-Tiger/Flow/internal/domain"
	"github.com/Now-Tiger/Flow/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// ListProjectsTool handles the flow_list_projects MCP tool.
type ListProjectsTool struct {
	projects service.ProjectService
	user     UserResolver
}

func NewListProjectsTool(projects service.ProjectService, user UserResolver) *ListProjectsTool {
	return &ListProjectsTool{projects: projects, user: user}
}

func (t *ListProjectsTool) Definition() mcp.Tool {
	return mcp.NewTool("flow_list_projects",
		mcp.WithDescription("List saved projects, newest first, with task and group counts."),
	)
}

func (t *ListProjectsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := t.user(ctx)
	if err != nil {
		return errorResult("resolving user", err), nil
	}
	items, err := t.projects.List(ctx, userID)
	if err != nil {
		return errorResult("listing projects", err), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("No projects yet. Use flow_generate to create one."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Projects (%d)\n\n", len(items))
	for _, p := range items {
		fmt.Fprintf(&sb, "- **%s** `%s` [%s] %d tasks in %d groups\n",
			p.Title, p.ID, p.Status, p.TaskCount, p.GroupCount)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// ProjectDetailsTool handles the flow_project_details MCP tool.
type ProjectDetailsTool struct {
	projects service.ProjectService
	user     UserResolver
}

func NewProjectDetailsTool(projects service.ProjectService, user UserResolver) *ProjectDetailsTool {
	return &ProjectDetailsTool{projects: projects, user: user}
}

func (t *ProjectDetailsTool) Definition() mcp.Tool {
	return mcp.NewTool("flow_project_details",
		mcp.WithDescription("Show one project with its task groups, tasks and counts."),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("Project ID as shown by flow_list_projects"),
		),
	)
}

func (t *ProjectDetailsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, errRes := requiredString(req, "project_id")
	if errRes != nil {
		return errRes, nil
	}
	userID, err := t.user(ctx)
	if err != nil {
		return errorResult("resolving user", err), nil
	}
	d, err := t.projects.Details(ctx, userID, projectID)
	if err != nil {
		return errorResult("loading project", err), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", d.Project.Title)
	fmt.Fprintf(&sb, "- **Status**: %s\n", d.Project.Status)
	fmt.Fprintf(&sb, "- **Target users**: %s\n", d.Project.TargetUsers)
	fmt.Fprintf(&sb, "- **Constraints**: %s\n", d.Project.Constraints)
	fmt.Fprintf(&sb, "- **Totals**: %d tasks, %d user stories, %d engineering tasks, %d risks\n",
		d.Stats.TotalTasks, d.Stats.UserStories, d.Stats.EngineeringTasks, d.Stats.Risks)

	for _, g := range d.Groups {
		writeTaskSection(&sb, g.Group.Name, g.Tasks)
	}
	if len(d.Ungrouped) > 0 {
		writeTaskSection(&sb, "Ungrouped", d.Ungrouped)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func writeTaskSection(sb *strings.Builder, name string, tasks []domain.Task) {
	fmt.Fprintf(sb, "\n## %s (%d)\n\n", name, len(tasks))
	for _, task := range tasks {
		fmt.Fprintf(sb, "- [%s] **%s** `%s` %s/%s", task.Status, task.Title, task.ID, task.Priority, task.Difficulty)
		if task.EstimatedHours != nil {
			fmt.Fprintf(sb, " ~%gh", *task.EstimatedHours)
		}
		sb.WriteString("\n")
	}
}
