package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Now-Tiger/Flow/internal/cli/formatter"
	"github.com/Now-Tiger/Flow/internal/domain"
	"github.com/Now-Tiger/Flow/internal/export"
	"github.com/Now-Tiger/Flow/internal/service"
	"github.com/spf13/cobra"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project", "p"},
		Short:   "Manage projects",
	}

	cmd.AddCommand(
		newProjectListCmd(app),
		newProjectShowCmd(app),
		newProjectCreateCmd(app),
		newProjectStatusCmd(app),
		newProjectDeleteCmd(app),
		newProjectExportCmd(app),
	)
	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			userID, err := app.userID(ctx)
			if err != nil {
				return err
			}
			projects, err := app.Runtime.Projects.List(ctx, userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectList(projects, app.now()))
			return nil
		},
	}
}

func newProjectShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "show ID",
		Aliases: []string{"inspect"},
		Short:   "Show a project with its task groups",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			userID, err := app.userID(ctx)
			if err != nil {
				return err
			}
			projectID, err := resolveProjectID(ctx, app, userID, args[0])
			if err != nil {
				return err
			}
			details, err := app.Runtime.Projects.Details(ctx, userID, projectID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProjectDetails(details, app.now()))
			return nil
		},
	}
}

func newProjectCreateCmd(app *App) *cobra.Command {
	var in service.CreateProjectInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an empty project without calling the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			userID, err := app.userID(ctx)
			if err != nil {
				return err
			}
			p, err := app.Runtime.Projects.Create(ctx, userID, in)
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Created project %q (%s)", p.Title, p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Title, "title", "", "project title (required)")
	cmd.Flags().StringVar(&in.Description, "description", "", "description (required)")
	cmd.Flags().StringVar(&in.TargetUsers, "users", "", "target users")
	cmd.Flags().StringVar(&in.Constraints, "constraints", "", "constraints")
	cmd.Flags().StringVar(&in.TemplateType, "template", "", "template type")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func newProjectStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "status ID STATUS",
		Short:     "Set a project's status (draft, generated, completed)",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(domain.ProjectDraft), string(domain.ProjectGenerated), string(domain.ProjectCompleted)},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			status, ok := domain.ParseProjectStatus(args[1])
			if !ok {
				return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, args[1])
			}
			userID, err := app.userID(ctx)
			if err != nil {
				return err
			}
			projectID, err := resolveProjectID(ctx, app, userID, args[0])
			if err != nil {
				return err
			}
			p, err := app.Runtime.Projects.UpdateStatus(ctx, userID, projectID, status)
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "%s is now %s", p.Title, p.Status)
			return nil
		},
	}
}

func newProjectDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a project with its groups, tasks and edit history",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			userID, err := app.userID(ctx)
			if err != nil {
				return err
			}
			projectID, err := resolveProjectID(ctx, app, userID, args[0])
			if err != nil {
				return err
			}

			if !yes {
				if !app.interactive() {
					return fmt.Errorf("refusing to delete without --yes outside a terminal")
				}
				if err := confirmForm("Delete this project and all of its tasks?", &yes).RunWithContext(ctx); err != nil {
					return err
				}
				if !yes {
					printWarning(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
			}

			deleted, err := app.Runtime.Projects.Delete(ctx, userID, projectID)
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "%s", service.DeletedMessage(deleted))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newProjectExportCmd(app *App) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export ID",
		Short: "Export a project as Markdown or plain text",
		Long: `Render a project and its tasks. Without --output the document is
written to stdout. An --output directory receives the default file name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			userID, err := app.userID(ctx)
			if err != nil {
				return err
			}
			projectID, err := resolveProjectID(ctx, app, userID, args[0])
			if err != nil {
				return err
			}
			file, err := app.Runtime.Export.Export(ctx, userID, projectID, export.ParseFormat(format))
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Fprint(cmd.OutOrStdout(), file.Content)
				return nil
			}
			path := output
			if info, err := os.Stat(output); err == nil && info.IsDir() {
				path = filepath.Join(output, file.Filename)
			}
			if err := os.WriteFile(path, []byte(file.Content), 0o644); err != nil {
				return fmt.Errorf("writing export: %w", err)
			}
			printSuccess(cmd.OutOrStdout(), "Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatMarkdown), "markdown or text")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file or directory to write to")
	return cmd
}
