package mcptools

import (
	"github.com/Now-Tiger/Flow/internal/app"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// NewServer registers every Flow tool on a new MCP server.
func NewServer(svc *app.Services, user UserResolver) *server.MCPServer {
	s := server.NewMCPServer(
		"flow",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions("Flow turns feature descriptions into grouped task breakdowns. "+
			"Call flow_generate to create a project, then flow_project_details or flow_export_project to read it."),
	)

	generate := NewGenerateTool(svc.Generation, user)
	s.AddTool(generate.Definition(), generate.Handle)

	list := NewListProjectsTool(svc.Projects, user)
	s.AddTool(list.Definition(), list.Handle)

	details := NewProjectDetailsTool(svc.Projects, user)
	s.AddTool(details.Definition(), details.Handle)

	exp := NewExportProjectTool(svc.Export, user)
	s.AddTool(exp.Definition(), exp.Handle)

	return s
}
