package cli

import (
	"github.com/Now-Tiger/Flow/internal/mcptools"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func newMCPCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the workspace as MCP tools over stdio",
		Long: `Run an MCP server on stdin/stdout so assistants can generate, list,
inspect and export projects. Tools act as the local CLI user.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt := app.Runtime
			s := mcptools.NewServer(rt.Services, rt.LocalUserID)
			return server.ServeStdio(s)
		},
	}
}
