package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/Now-Tiger/Flow/internal/db"
	"github.com/Now-Tiger/Flow/internal/domain"
	"github.com/Now-Tiger/Flow/internal/llm"
	"github.com/Now-Tiger/Flow/internal/repository"
	"github.com/Now-Tiger/Flow/internal/testutil"
	"github.com/stretchr/testify/require"
)

type repos struct {
	db       *sql.DB
	users    repository.UserRepo
	projects repository.ProjectRepo
	groups   repository.TaskGroupRepo
	tasks    repository.TaskRepo
	edits    repository.TaskEditRepo
	uow      db.UnitOfWork
}

func setupRepos(t *testing.T) *repos {
	t.Helper()
	database := testutil.NewTestDB(t)
	return &repos{
		db:       database,
		users:    repository.NewSQLiteUserRepo(database),
		projects: repository.NewSQLiteProjectRepo(database),
		groups:   repository.NewSQLiteTaskGroupRepo(database),
		tasks:    repository.NewSQLiteTaskRepo(database),
		edits:    repository.NewSQLiteTaskEditRepo(database),
		uow:      testutil.NewTestUoW(database),
	}
}

func (r *repos) seedUser(t *testing.T) *domain.User {
	t.Helper()
	u := testutil.NewTestUser()
	require.NoError(t, r.users.Create(context.Background(), u))
	return u
}

func (r *repos) seedProject(t *testing.T, userID, title string, opts ...testutil.ProjectOption) *domain.Project {
	t.Helper()
	p := testutil.NewTestProject(userID, title, opts...)
	require.NoError(t, r.projects.Create(context.Background(), p))
	return p
}

func (r *repos) seedGroup(t *testing.T, projectID, name string, order int) *domain.TaskGroup {
	t.Helper()
	g := testutil.NewTestGroup(projectID, name, order)
	require.NoError(t, r.groups.Create(context.Background(), g))
	return g
}

func (r *repos) seedTasks(t *testing.T, tasks ...domain.Task) {
	t.Helper()
	require.NoError(t, r.tasks.CreateBatch(context.Background(), tasks))
}

// stubLLM returns a fixed completion.
type stubLLM struct {
	text  string
	err   error
	calls int
}

func (s *stubLLM) Generate(_ context.Context, _ llm.GenerateRequest) (*llm.GenerateResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &llm.GenerateResponse{Text: s.text, Model: "stub"}, nil
}

func (s *stubLLM) Available(context.Context) bool { return s.err == nil }

// captureObserver keeps every use-case event.
type captureObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *captureObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *captureObserver) last() UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}
