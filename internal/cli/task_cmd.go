package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/Now-Tiger/Flow/internal/cli/formatter"
	"github.com/Now-Tiger/Flow/internal/domain"
	"github.com/Now-Tiger/Flow/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task", "t"},
		Short:   "Edit, move and audit tasks inside a project",
	}

	cmd.AddCommand(
		newTaskUpdateCmd(app),
		newTaskMoveCmd(app),
		newTaskHistoryCmd(app),
	)
	return cmd
}

// taskUpdateFromFlags builds a partial update from the flags the user set.
// Flags left at their defaults are not part of the update.
func taskUpdateFromFlags(flags *pflag.FlagSet) (service.TaskUpdate, error) {
	var (
		upd service.TaskUpdate
		err error
	)
	flags.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		v := f.Value.String()
		switch f.Name {
		case "title":
			upd.Title = &v
		case "description":
			upd.Description = &v
		case "type":
			upd.Type = &v
		case "priority":
			upd.Priority = &v
		case "difficulty":
			upd.Difficulty = &v
		case "status":
			upd.Status = &v
		case "hours":
			var h float64
			if h, err = flags.GetFloat64("hours"); err == nil {
				upd.EstimatedHours = &h
			}
		}
	})
	if err != nil {
		return service.TaskUpdate{}, err
	}
	if upd == (service.TaskUpdate{}) {
		return upd, fmt.Errorf("%w: nothing to update, set at least one field flag", domain.ErrValidation)
	}
	return upd, nil
}

func newTaskUpdateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update PROJECT TASK",
		Short: "Change task fields; every change is kept in the edit history",
		Example: `  flow tasks update 3f2a 9c1e --status in-progress --hours 4
  flow tasks update 3f2a 9c1e --priority high --title "Handle expired cards"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			upd, err := taskUpdateFromFlags(cmd.Flags())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			userID, projectID, taskID, err := resolveTaskArgs(ctx, app, args)
			if err != nil {
				return err
			}
			task, err := app.Runtime.Tasks.Update(ctx, userID, projectID, taskID, upd)
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Task updated")
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTask(task))
			return nil
		},
	}

	f := cmd.Flags()
	f.String("title", "", "new title")
	f.String("description", "", "new description")
	f.String("type", "", "user-story, engineering-task, risk or unknown")
	f.String("priority", "", "low, medium or high")
	f.String("difficulty", "", "easy, medium or hard")
	f.String("status", "", "todo, in-progress or done")
	f.Float64("hours", 0, "estimated hours, must be positive")
	return cmd
}

func newTaskMoveCmd(app *App) *cobra.Command {
	var (
		order   int
		group   string
		ungroup bool
	)

	cmd := &cobra.Command{
		Use:   "move PROJECT TASK",
		Short: "Change a task's position and, optionally, its group",
		Long: `Set the display order of a task. --group moves it to another group of the
same project by ID prefix or name; --ungroup detaches it. Without either the
task stays in its current group.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if group != "" && ungroup {
				return fmt.Errorf("%w: --group and --ungroup are exclusive", domain.ErrValidation)
			}

			ctx := cmd.Context()
			userID, projectID, taskID, err := resolveTaskArgs(ctx, app, args)
			if err != nil {
				return err
			}
			details, err := app.Runtime.Projects.Details(ctx, userID, projectID)
			if err != nil {
				return err
			}

			target := currentGroup(details, taskID)
			switch {
			case ungroup:
				target = nil
			case group != "":
				id, err := resolveGroupID(details, group)
				if err != nil {
					return err
				}
				target = &id
			}

			tasks, err := app.Runtime.Tasks.Reorder(ctx, userID, projectID, []service.ReorderUpdate{{
				TaskID:       taskID,
				DisplayOrder: order,
				TaskGroupID:  target,
			}})
			if err != nil {
				return err
			}
			for _, t := range tasks {
				if t.ID == taskID {
					printSuccess(cmd.OutOrStdout(), "Moved %q to position %d in %s", t.Title, t.DisplayOrder, groupName(details, t.TaskGroupID))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&order, "order", 0, "new display order (required)")
	cmd.Flags().StringVar(&group, "group", "", "target group ID prefix or name")
	cmd.Flags().BoolVar(&ungroup, "ungroup", false, "remove the task from its group")
	_ = cmd.MarkFlagRequired("order")
	return cmd
}

func newTaskHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "history PROJECT TASK",
		Aliases: []string{"edits"},
		Short:   "Show the edit history of a task",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			userID, projectID, taskID, err := resolveTaskArgs(ctx, app, args)
			if err != nil {
				return err
			}
			edits, err := app.Runtime.Tasks.History(ctx, userID, projectID, taskID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTaskEdits(edits, app.now()))
			return nil
		},
	}
}

func resolveTaskArgs(ctx context.Context, app *App, args []string) (userID, projectID, taskID string, err error) {
	if userID, err = app.userID(ctx); err != nil {
		return
	}
	if projectID, err = resolveProjectID(ctx, app, userID, args[0]); err != nil {
		return
	}
	taskID, err = resolveTaskID(ctx, app, userID, projectID, args[1])
	return
}

func currentGroup(d *service.ProjectDetails, taskID string) *string {
	for _, g := range d.Groups {
		for _, t := range g.Tasks {
			if t.ID == taskID {
				id := g.Group.ID
				return &id
			}
		}
	}
	return nil
}

// resolveGroupID matches a group by exact name first, then by ID prefix.
func resolveGroupID(d *service.ProjectDetails, input string) (string, error) {
	ids := make([]string, 0, len(d.Groups))
	for _, g := range d.Groups {
		if strings.EqualFold(g.Group.Name, strings.TrimSpace(input)) {
			return g.Group.ID, nil
		}
		ids = append(ids, g.Group.ID)
	}
	return matchID("group", ids, input)
}

func groupName(d *service.ProjectDetails, groupID *string) string {
	if groupID == nil {
		return "Other Tasks"
	}
	for _, g := range d.Groups {
		if g.Group.ID == *groupID {
			return g.Group.Name
		}
	}
	return *groupID
}
