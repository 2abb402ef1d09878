// Package mcptools exposes the workspace as MCP tools.
//
// Each tool follows the same shape:
//   - a struct with its services injected through the constructor
//   - Definition() returns the mcp.Tool schema
//   - Handle() runs the call and returns a text result
//
// Every call acts as the local user returned by a UserResolver.
package mcptools

import (
	"context"
	"errors"
	"fmt"

	"github.com/Now-Tiger/Flow/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
)

// UserResolver returns the id of the user tool calls act as.
type UserResolver func(ctx context.Context) (string, error)

// errorResult turns a service error into a tool error with a short message.
// Caller errors keep their text; anything else is reported generically.
func errorResult(action string, err error) *mcp.CallToolResult {
	for _, target := range []error{domain.ErrValidation, domain.ErrNotFound, domain.ErrForbidden, domain.ErrUnauthorized} {
		if errors.Is(err, target) {
			return mcp.NewToolResultError(fmt.Sprintf("%s: %v", action, err))
		}
	}
	switch {
	case errors.Is(err, domain.ErrParse):
		return mcp.NewToolResultError(action + ": the model answer could not be parsed")
	case errors.Is(err, domain.ErrGenerationFailed):
		return mcp.NewToolResultError(action + ": the model call failed")
	}
	return mcp.NewToolResultError(action + ": internal error")
}

func requiredString(req mcp.CallToolRequest, key string) (string, *mcp.CallToolResult) {
	v := req.GetString(key, "")
	if v == "" {
		return "", mcp.NewToolResultError(fmt.Sprintf("'%s' is required", key))
	}
	return v, nil
}
