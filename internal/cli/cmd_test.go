package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	flowapp "github.com/Now-Tiger/Flow/internal/app"
	"github.com/Now-Tiger/Flow/internal/config"
	"github.com/Now-Tiger/Flow/internal/domain"
	"github.com/Now-Tiger/Flow/internal/export"
	"github.com/Now-Tiger/Flow/internal/llm"
	"github.com/Now-Tiger/Flow/internal/testutil"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const breakdownOutput = `[
  {"title":"As a shopper, I can save items","description":"wishlist button","type":"user-story","priority":"high","difficulty":"medium"},
  {"title":"Add wishlist table","description":"schema","type":"engineering-task","priority":"medium","difficulty":"easy","estimatedHours":2.5},
  {"title":"Stale prices","description":"prices change after saving","type":"risk","priority":"low","difficulty":"hard"}
]`

type stubLLM struct {
	text string
	err  error
}

func (s *stubLLM) Generate(context.Context, llm.GenerateRequest) (*llm.GenerateResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.GenerateResponse{Text: s.text, Model: "stub"}, nil
}

func (s *stubLLM) Available(context.Context) bool { return s.err == nil }

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// testApp wires an App around an in-memory database and a stub model.
func testApp(t *testing.T, model llm.LLMClient) *App {
	t.Helper()
	database := testutil.NewTestDB(t)
	logger := slog.New(slog.DiscardHandler)
	return &App{
		Runtime: &flowapp.Runtime{
			Services: flowapp.NewServices(database, model, logger),
			Config:   config.Default(),
			Logger:   logger,
			DB:       database,
			LLM:      model,
		},
		Now: func() time.Time { return fixedNow },
	}
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return ansi.Strip(buf.String()), err
}

// seedProject generates a project through the CLI and returns its ID.
func seedProject(t *testing.T, app *App) string {
	t.Helper()
	_, err := executeCmd(t, app, "generate",
		"--goal", "Wishlists for shoppers",
		"--users", "Returning shoppers",
		"--constraints", "Two weeks")
	require.NoError(t, err)

	ctx := context.Background()
	userID, err := app.userID(ctx)
	require.NoError(t, err)
	projects, err := app.Runtime.Projects.List(ctx, userID)
	require.NoError(t, err)
	require.NotEmpty(t, projects)
	return projects[0].ID
}

func taskIDByTitle(t *testing.T, app *App, projectID, title string) string {
	t.Helper()
	ctx := context.Background()
	userID, err := app.userID(ctx)
	require.NoError(t, err)
	d, err := app.Runtime.Projects.Details(ctx, userID, projectID)
	require.NoError(t, err)
	for _, g := range d.Groups {
		for _, task := range g.Tasks {
			if task.Title == title {
				return task.ID
			}
		}
	}
	for _, task := range d.Ungrouped {
		if task.Title == title {
			return task.ID
		}
	}
	t.Fatalf("task %q not found", title)
	return ""
}

func TestGenerateCmd(t *testing.T) {
	app := testApp(t, &stubLLM{text: breakdownOutput})

	out, err := executeCmd(t, app, "generate",
		"--goal", "Wishlists for shoppers",
		"--users", "Returning shoppers",
		"--constraints", "Two weeks")
	require.NoError(t, err)
	assert.Contains(t, out, "GENERATED")
	assert.Contains(t, out, "Wishlists for shoppers")
	assert.Contains(t, out, "STORIES")
}

func TestGenerateCmd_MissingFieldsOutsideTerminal(t *testing.T) {
	app := testApp(t, &stubLLM{text: breakdownOutput})

	_, err := executeCmd(t, app, "generate", "--goal", "Wishlists")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGenerateCmd_ModelFailure(t *testing.T) {
	app := testApp(t, &stubLLM{err: errors.New("boom")})

	_, err := executeCmd(t, app, "generate", "-g", "x", "-u", "y", "-c", "z")
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
}

func TestProjectListCmd(t *testing.T) {
	app := testApp(t, &stubLLM{text: breakdownOutput})

	out, err := executeCmd(t, app, "projects", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No projects yet")

	id := seedProject(t, app)
	out, err = executeCmd(t, app, "projects", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "Wishlists for shoppers")
	assert.Contains(t, out, id[:8])
	assert.Contains(t, out, "Generated")
}

func TestProjectShowCmd_ByPrefix(t *testing.T) {
	app := testApp(t, &stubLLM{text: breakdownOutput})
	id := seedProject(t, app)

	out, err := executeCmd(t, app, "projects", "show", id[:6])
	require.NoError(t, err)
	assert.Contains(t, out, "USER STORIES (1)")
	assert.Contains(t, out, "ENGINEERING TASKS (1)")
	assert.Contains(t, out, "RISKS (1)")
	assert.Contains(t, out, "Add wishlist table")
	assert.Contains(t, out, "2.5h")
	assert.Contains(t, out, "0/3 done")
}

func TestProjectShowCmd_UnknownID(t *testing.T) {
	app := testApp(t, &stubLLM{text: breakdownOutput})
	seedProject(t, app)

	_, err := executeCmd(t, app, "projects", "show", "zzzz")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectCreateAndStatusCmd(t *testing.T) {
	app := testApp(t, &stubLLM{})

	out, err := executeCmd(t, app, "projects", "create", "--title", "Manual plan", "--description", "Planned by hand")
	require.NoError(t, err)
	assert.Contains(t, out, `Created project "Manual plan"`)

	ctx := context.Background()
	userID, err := app.userID(ctx)
	require.NoError(t, err)
	projects, err := app.Runtime.Projects.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, domain.ProjectDraft, projects[0].Status)

	out, err = executeCmd(t, app, "projects", "status", projects[0].ID, "completed")
	require.NoError(t, err)
	assert.Contains(t, out, "Manual plan is now completed")

	_, err = executeCmd(t, app, "projects", "status", projects[0].ID, "archived")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestProjectDeleteCmd(t *testing.T) {
	app := testApp(t, &stubLLM{text: breakdownOutput})
	id := seedProject(t, app)

	_, err := executeCmd(t, app, "projects", "delete", id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")

	out, err := executeCmd(t, app, "projects", "rm", id, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, `Project "Wishlists for shoppers" and all related data has been deleted`)

	_, err = executeCmd(t, app, "projects", "show", id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectExportCmd(t *testing.T) {
	app := testApp(t, &stubLLM{text: breakdownOutput})
	id := seedProject(t, app)

	t.Run("stdout markdown", func(t *testing.T) {
		out, err := executeCmd(t, app, "projects", "export", id)
		require.NoError(t, err)
		assert.Contains(t, out, "# Wishlists for shoppers")
		assert.Contains(t, out, "## User Stories")
	})

	t.Run("text into directory", func(t *testing.T) {
		dir := t.TempDir()
		out, err := executeCmd(t, app, "projects", "export", id, "--format", "text", "-o", dir)
		require.NoError(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		name := entries[0].Name()
		assert.Equal(t, ".txt", filepath.Ext(name))
		assert.Contains(t, out, "Wrote "+filepath.Join(dir, name))

		raw, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Contains(t, string(raw), "Add wishlist table")
		assert.NotContains(t, string(raw), "# Wishlists")
	})

	t.Run("explicit file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "plan.md")
		_, err := executeCmd(t, app, "projects", "export", id, "--output", path)
		require.NoError(t, err)
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "# Wishlists for shoppers")
	})

	assert.Equal(t, export.FormatText, export.ParseFormat("text"))
}

func TestTaskUpdateAndHistoryCmd(t *testing.T) {
	app := testApp(t, &stubLLM{text: breakdownOutput})
	id := seedProject(t, app)
	taskID := taskIDByTitle(t, app, id, "Add wishlist table")

	out, err := executeCmd(t, app, "tasks", "update", id[:8], taskID[:8], "--status", "in-progress", "--hours", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Task updated")
	assert.Contains(t, out, "In Progress")
	assert.Contains(t, out, "4h")

	out, err = executeCmd(t, app, "tasks", "history", id, taskID)
	require.NoError(t, err)
	assert.Contains(t, out, "task_status")
	assert.Contains(t, out, "estimated_hours")
	assert.Contains(t, out, "2.5")
}

func TestTaskUpdateCmd_RequiresAField(t *testing.T) {
	app := testApp(t, &stubLLM{text: breakdownOutput})
	id := seedProject(t, app)
	taskID := taskIDByTitle(t, app, id, "Stale prices")

	_, err := executeCmd(t, app, "tasks", "update", id, taskID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = executeCmd(t, app, "tasks", "update", id, taskID, "--priority", "urgent")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTaskHistoryCmd_Empty(t *testing.T) {
	app := testApp(t, &stubLLM{text: breakdownOutput})
	id := seedProject(t, app)
	taskID := taskIDByTitle(t, app, id, "Stale prices")

	out, err := executeCmd(t, app, "tasks", "edits", id, taskID)
	require.NoError(t, err)
	assert.Contains(t, out, "No edits recorded.")
}

func TestTaskMoveCmd(t *testing.T) {
	app := testApp(t, &stubLLM{text: breakdownOutput})
	id := seedProject(t, app)
	taskID := taskIDByTitle(t, app, id, "Stale prices")

	out, err := executeCmd(t, app, "tasks", "move", id, taskID, "--order", "7", "--group", "user stories")
	require.NoError(t, err)
	assert.Contains(t, out, `Moved "Stale prices" to position 7 in User Stories`)

	out, err = executeCmd(t, app, "tasks", "move", id, taskID, "--order", "1", "--ungroup")
	require.NoError(t, err)
	assert.Contains(t, out, "in Other Tasks")

	show, err := executeCmd(t, app, "projects", "show", id)
	require.NoError(t, err)
	assert.Contains(t, show, "OTHER TASKS (1)")

	_, err = executeCmd(t, app, "tasks", "move", id, taskID, "--order", "1", "--group", "Risks", "--ungroup")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = executeCmd(t, app, "tasks", "move", id, taskID, "--order", "1", "--group", "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChatCmd(t *testing.T) {
	app := testApp(t, &stubLLM{text: "Ship the wishlist first."})

	out, err := executeCmd(t, app, "chat", "what", "should", "I", "build?")
	require.NoError(t, err)
	assert.Contains(t, out, "Ship the wishlist first.")

	_, err = executeCmd(t, app, "chat")
	assert.Error(t, err)
}

func TestRootCmd_OpensRuntimeFromFlags(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "flow.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("llm:\n  provider: ollama\nlog:\n  level: debug\n"), 0o644))
	dbPath := filepath.Join(dir, "data", "cli.db")

	var logs bytes.Buffer
	app := &App{LogOut: &logs}
	t.Cleanup(func() { _ = app.Close() })

	out, err := executeCmd(t, app, "--config", cfgPath, "--db", dbPath, "projects", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No projects yet")

	require.NotNil(t, app.Runtime)
	assert.Equal(t, dbPath, app.Runtime.Config.Database.Path)
	assert.Equal(t, "ollama", app.Runtime.Config.LLM.Provider)
	assert.FileExists(t, dbPath)
}

func TestRootCmd_BadConfigPath(t *testing.T) {
	app := &App{LogOut: new(bytes.Buffer)}
	_, err := executeCmd(t, app, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "projects", "list")
	assert.Error(t, err)
	assert.Nil(t, app.Runtime)
}

func TestMatchID(t *testing.T) {
	ids := []string{"abc123", "abd456", "ABX789"}

	got, err := matchID("task", ids, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc123", got)

	got, err = matchID("task", ids, "abx")
	require.NoError(t, err)
	assert.Equal(t, "ABX789", got)

	_, err = matchID("task", ids, "ab")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous (3 matches)")

	_, err = matchID("task", ids, "zz")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTaskUpdateFromFlags(t *testing.T) {
	newFlags := func() *pflag.FlagSet {
		f := pflag.NewFlagSet("update", pflag.ContinueOnError)
		f.String("title", "", "")
		f.String("status", "", "")
		f.Float64("hours", 0, "")
		return f
	}

	f := newFlags()
	require.NoError(t, f.Parse([]string{"--title", "", "--hours", "1.5"}))
	upd, err := taskUpdateFromFlags(f)
	require.NoError(t, err)
	require.NotNil(t, upd.Title)
	assert.Equal(t, "", *upd.Title)
	require.NotNil(t, upd.EstimatedHours)
	assert.Equal(t, 1.5, *upd.EstimatedHours)
	assert.Nil(t, upd.Status)

	_, err = taskUpdateFromFlags(newFlags())
	assert.ErrorIs(t, err, domain.ErrValidation)
}
