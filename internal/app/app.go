// Package app wires configuration, storage, the model client and the
// services into one Runtime shared by every front end.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/Now-Tiger/Flow/internal/config"
	"github.com/Now-Tiger/Flow/internal/db"
	"github.com/Now-Tiger/Flow/internal/intelligence"
	"github.com/Now-Tiger/Flow/internal/llm"
	"github.com/Now-Tiger/Flow/internal/repository"
	"github.com/Now-Tiger/Flow/internal/service"
)

// Services are the use cases the HTTP server, the MCP server and the CLI
// call into.
type Services struct {
	Generation service.GenerationService
	Projects   service.ProjectService
	Tasks      service.TaskService
	Auth       service.AuthService
	Export     service.ExportService
	Summary    intelligence.SummaryService
}

// NewServices builds every service over database and client. All services
// report use cases through one log observer.
func NewServices(database *sql.DB, client llm.LLMClient, logger *slog.Logger) *Services {
	users := repository.NewSQLiteUserRepo(database)
	projects := repository.NewSQLiteProjectRepo(database)
	groups := repository.NewSQLiteTaskGroupRepo(database)
	tasks := repository.NewSQLiteTaskRepo(database)
	edits := repository.NewSQLiteTaskEditRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)
	obs := service.NewLogUseCaseObserver(logger)

	return &Services{
		Generation: service.NewGenerationService(intelligence.NewBreakdownService(client), users, uow, obs),
		Projects:   service.NewProjectService(projects, groups, tasks, obs),
		Tasks:      service.NewTaskService(projects, groups, tasks, edits, uow, obs),
		Auth:       service.NewAuthService(users, obs),
		Export:     service.NewExportService(projects, groups, tasks, obs),
		Summary:    intelligence.NewSummaryService(client),
	}
}

// Runtime is an opened application: config, logger, database and services.
type Runtime struct {
	*Services
	Config *config.Config
	Logger *slog.Logger
	DB     *sql.DB
	LLM    llm.LLMClient
}

// Open validates cfg, opens the database and builds the services. Logs go
// to logOut. A model configuration without credentials does not fail Open;
// the client reports it on first use instead.
func Open(ctx context.Context, cfg *config.Config, logOut io.Writer) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger := cfg.Log.NewLogger(logOut)

	database, err := db.OpenDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	client := newLLMClient(ctx, cfg.LLM.Client(), logOut, logger)
	return &Runtime{
		Services: NewServices(database, client, logger),
		Config:   cfg,
		Logger:   logger,
		DB:       database,
		LLM:      client,
	}, nil
}

func newLLMClient(ctx context.Context, cfg llm.LLMConfig, logOut io.Writer, logger *slog.Logger) llm.LLMClient {
	var observer llm.Observer = llm.NoopObserver{}
	if cfg.LogCalls {
		observer = llm.NewLogObserver(logOut)
	}

	if err := cfg.Validate(); err != nil {
		logger.Warn("llm_unconfigured", "provider", cfg.Provider, "error", err.Error())
		return llm.Unconfigured(err)
	}
	var (
		client llm.LLMClient
		err    error
	)
	switch cfg.Provider {
	case llm.ProviderAnthropic, llm.ProviderBedrock:
		client, err = llm.NewAnthropicClient(ctx, cfg, observer)
	default:
		client, err = llm.New(cfg, observer)
	}
	if err != nil {
		logger.Warn("llm_unconfigured", "provider", cfg.Provider, "error", err.Error())
		return llm.Unconfigured(err)
	}
	return client
}

// LocalUserID returns the id of the configured local account, creating it
// on first use.
func (r *Runtime) LocalUserID(ctx context.Context) (string, error) {
	u, err := r.Auth.EnsureUser(ctx, r.Config.CLI.UserEmail)
	if err != nil {
		return "", fmt.Errorf("resolving local user: %w", err)
	}
	return u.ID, nil
}

func (r *Runtime) Close() error {
	if r == nil || r.DB == nil {
		return nil
	}
	return r.DB.Close()
}
