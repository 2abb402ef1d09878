package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	flowapp "github.com/Now-Tiger/Flow/internal/app"
	"github.com/Now-Tiger/Flow/internal/config"
	"github.com/spf13/cobra"
)

// App holds the opened runtime and the settings shared by every command.
type App struct {
	// Runtime is opened by the root command before a subcommand runs.
	// Tests set it up front to skip config loading.
	Runtime *flowapp.Runtime

	ConfigPath string
	DBPath     string

	// IsInteractive reports whether forms and spinners may be shown.
	IsInteractive func() bool
	// LogOut receives structured logs; stdout stays free for command output.
	LogOut io.Writer
	Now    func() time.Time
}

// NewRootCmd creates the top-level "flow" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "flow",
		Short:         "Turn feature ideas into grouped, prioritized task breakdowns",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.open(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/flow/config.yaml merged with ./flow.yaml)")
	root.PersistentFlags().StringVar(&app.DBPath, "db", "", "SQLite database path, overrides database.path")

	root.AddCommand(
		newServeCmd(app),
		newMCPCmd(app),
		newGenerateCmd(app),
		newProjectCmd(app),
		newTaskCmd(app),
		newChatCmd(app),
	)
	return root
}

func (a *App) open(ctx context.Context) error {
	if a.Runtime != nil {
		return nil
	}

	var (
		cfg *config.Config
		err error
	)
	if a.ConfigPath != "" {
		cfg, err = config.LoadFromPath(a.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if a.DBPath != "" {
		cfg.Database.Path = a.DBPath
	}

	logOut := a.LogOut
	if logOut == nil {
		logOut = os.Stderr
	}
	rt, err := flowapp.Open(ctx, cfg, logOut)
	if err != nil {
		return err
	}
	a.Runtime = rt
	return nil
}

// Close releases the runtime opened by the root command.
func (a *App) Close() error {
	return a.Runtime.Close()
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// userID resolves the local account every CLI command acts as.
func (a *App) userID(ctx context.Context) (string, error) {
	if a.Runtime == nil {
		return "", fmt.Errorf("runtime not opened")
	}
	return a.Runtime.LocalUserID(ctx)
}
