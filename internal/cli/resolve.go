package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/Now-Tiger/Flow/internal/domain"
)

// resolveProjectID accepts a full project ID or a unique prefix of one of
// the user's projects, as printed by `flow projects list`.
func resolveProjectID(ctx context.Context, app *App, userID, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("project ID is required")
	}

	projects, err := app.Runtime.Projects.List(ctx, userID)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	return matchID("project", ids, input)
}

// resolveTaskID does the same for a task inside a project.
func resolveTaskID(ctx context.Context, app *App, userID, projectID, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("task ID is required")
	}

	details, err := app.Runtime.Projects.Details(ctx, userID, projectID)
	if err != nil {
		return "", err
	}
	var ids []string
	for _, g := range details.Groups {
		for _, t := range g.Tasks {
			ids = append(ids, t.ID)
		}
	}
	for _, t := range details.Ungrouped {
		ids = append(ids, t.ID)
	}
	return matchID("task", ids, input)
}

func matchID(kind string, ids []string, input string) (string, error) {
	var matches []string
	for _, id := range ids {
		if strings.EqualFold(id, input) {
			return id, nil
		}
		if strings.HasPrefix(strings.ToLower(id), strings.ToLower(input)) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s %q: %w", kind, input, domain.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s ID prefix %q is ambiguous (%d matches)", kind, input, len(matches))
	}
}
