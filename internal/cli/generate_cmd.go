package cli

import (
	"context"
	"fmt"

	"github.com/Now-Tiger/Flow/internal/cli/formatter"
	"github.com/Now-Tiger/Flow/internal/service"
	"github.com/spf13/cobra"
)

func newGenerateCmd(app *App) *cobra.Command {
	var req service.GenerateRequest

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Break a feature idea into user stories, engineering tasks and risks",
		Long: `Ask the model for a task breakdown and save it as a new project.

In a terminal, missing fields are asked for in a form. Otherwise all three
of --goal, --users and --constraints are required.`,
		Example: `  flow generate --goal "Wishlists" --users "Returning shoppers" --constraints "Two weeks"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if app.interactive() {
				if form := generateForm(&req); form != nil {
					if err := form.RunWithContext(ctx); err != nil {
						return err
					}
				}
			}

			userID, err := app.userID(ctx)
			if err != nil {
				return err
			}

			var res *service.GenerateResult
			generate := func(ctx context.Context) error {
				var err error
				res, err = app.Runtime.Generation.Generate(ctx, userID, req)
				return err
			}
			if app.interactive() {
				err = formatter.RunWithSpinner(ctx, cmd.ErrOrStderr(), "Generating task breakdown...", generate)
			} else {
				err = generate(ctx)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatGenerateResult(res))
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.FeatureGoal, "goal", "g", "", "feature goal")
	cmd.Flags().StringVarP(&req.TargetUsers, "users", "u", "", "target users")
	cmd.Flags().StringVarP(&req.Constraints, "constraints", "c", "", "constraints such as deadline, stack or budget")
	cmd.Flags().StringVarP(&req.TemplateType, "template", "t", "", "project template (default \"Web Application\")")

	return cmd
}
