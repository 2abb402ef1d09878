package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/Now-Tiger/Flow/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newChatCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "chat PROMPT...",
		Short: "Send a one-off prompt to the summary model",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			prompt := strings.Join(args, " ")

			var text string
			ask := func(ctx context.Context) error {
				var err error
				text, err = app.Runtime.Summary.Summarize(ctx, prompt)
				return err
			}

			var err error
			if app.interactive() {
				err = formatter.RunWithSpinner(ctx, cmd.ErrOrStderr(), "Thinking...", ask)
			} else {
				err = ask(ctx)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}
