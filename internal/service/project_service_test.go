package service

import (
	"context"
	"testing"
	"time"

	"github.com/Now-Tiger/Flow/internal/domain"
	"github.com/Now-Tiger/Flow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProjectService(r *repos) ProjectService {
	return NewProjectService(r.projects, r.groups, r.tasks)
}

func TestProjectService_Create(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	user := r.seedUser(t)
	svc := newProjectService(r)

	p, err := svc.Create(ctx, user.ID, CreateProjectInput{
		Title:       "  Offline mode ",
		Description: "Let users work offline",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Offline mode", p.Title)
	assert.Equal(t, domain.ProjectDraft, p.Status)
	assert.Equal(t, domain.DefaultTemplateType, p.TemplateType)

	fetched, err := r.projects.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, fetched.UserID)
}

func TestProjectService_Create_Validation(t *testing.T) {
	r := setupRepos(t)
	user := r.seedUser(t)
	svc := newProjectService(r)

	_, err := svc.Create(context.Background(), user.ID, CreateProjectInput{Title: "only a title"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Create(context.Background(), "", CreateProjectInput{Title: "t", Description: "d"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestProjectService_List_OnlyOwnProjects(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	alice := r.seedUser(t)
	bob := r.seedUser(t)

	now := time.Now().UTC()
	older := r.seedProject(t, alice.ID, "older", testutil.WithCreatedAt(now.Add(-time.Hour)))
	newer := r.seedProject(t, alice.ID, "newer", testutil.WithCreatedAt(now))
	r.seedProject(t, bob.ID, "bob's")
	g := r.seedGroup(t, newer.ID, "User Stories", 0)
	r.seedTasks(t,
		testutil.NewTestTask(newer.ID, "a", testutil.WithGroup(g.ID)),
		testutil.NewTestTask(newer.ID, "b", testutil.WithDisplayOrder(1)),
	)

	list, err := newProjectService(r).List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, 2, list[0].TaskCount)
	assert.Equal(t, 1, list[0].GroupCount)
	assert.Equal(t, older.ID, list[1].ID)
}

func TestProjectService_Details(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	user := r.seedUser(t)
	p := r.seedProject(t, user.ID, "Workspace")
	stories := r.seedGroup(t, p.ID, "User Stories", 0)
	risks := r.seedGroup(t, p.ID, "Risks", 1)
	empty := r.seedGroup(t, p.ID, "Unknowns", 2)
	r.seedTasks(t,
		testutil.NewTestTask(p.ID, "s1", testutil.WithTaskType(domain.TaskUserStory), testutil.WithGroup(stories.ID), testutil.WithDisplayOrder(2)),
		testutil.NewTestTask(p.ID, "r1", testutil.WithTaskType(domain.TaskRisk), testutil.WithGroup(risks.ID), testutil.WithDisplayOrder(0)),
		testutil.NewTestTask(p.ID, "s0", testutil.WithTaskType(domain.TaskUserStory), testutil.WithGroup(stories.ID), testutil.WithDisplayOrder(1)),
		testutil.NewTestTask(p.ID, "loose", testutil.WithTaskType(domain.TaskUnknown), testutil.WithDisplayOrder(3)),
	)

	details, err := newProjectService(r).Details(ctx, user.ID, p.ID)
	require.NoError(t, err)

	assert.Equal(t, p.ID, details.Project.ID)
	require.Len(t, details.Groups, 3)
	assert.Equal(t, stories.ID, details.Groups[0].Group.ID)
	require.Len(t, details.Groups[0].Tasks, 2)
	assert.Equal(t, "s0", details.Groups[0].Tasks[0].Title)
	assert.Equal(t, "s1", details.Groups[0].Tasks[1].Title)
	assert.Len(t, details.Groups[1].Tasks, 1)
	assert.Equal(t, empty.ID, details.Groups[2].Group.ID)
	assert.NotNil(t, details.Groups[2].Tasks)
	assert.Empty(t, details.Groups[2].Tasks)
	require.Len(t, details.Ungrouped, 1)
	assert.Equal(t, "loose", details.Ungrouped[0].Title)
	assert.Equal(t, domain.TaskStats{TotalTasks: 4, UserStories: 2, Risks: 2}, details.Stats)
}

func TestProjectService_Details_ForeignProjectIsNotFound(t *testing.T) {
	r := setupRepos(t)
	owner := r.seedUser(t)
	other := r.seedUser(t)
	p := r.seedProject(t, owner.ID, "private")
	svc := newProjectService(r)

	_, err := svc.Details(context.Background(), other.ID, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Details(context.Background(), owner.ID, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectService_Delete(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	owner := r.seedUser(t)
	p := r.seedProject(t, owner.ID, "Doomed")
	g := r.seedGroup(t, p.ID, "Risks", 0)
	r.seedTasks(t, testutil.NewTestTask(p.ID, "t", testutil.WithGroup(g.ID)))

	deleted, err := newProjectService(r).Delete(ctx, owner.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, `Project "Doomed" and all related data has been deleted`, DeletedMessage(deleted))

	_, err = r.projects.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	tasks, err := r.tasks.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestProjectService_Delete_OwnershipBeforeMutation(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	owner := r.seedUser(t)
	intruder := r.seedUser(t)
	p := r.seedProject(t, owner.ID, "Mine")
	svc := newProjectService(r)

	_, err := svc.Delete(ctx, intruder.ID, p.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = r.projects.GetByID(ctx, p.ID)
	assert.NoError(t, err, "project must survive a forbidden delete")

	_, err = svc.Delete(ctx, owner.ID, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectService_UpdateStatus(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	owner := r.seedUser(t)
	other := r.seedUser(t)
	p := r.seedProject(t, owner.ID, "Ship it")
	svc := newProjectService(r)

	updated, err := svc.UpdateStatus(ctx, owner.ID, p.ID, domain.ProjectCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectCompleted, updated.Status)

	_, err = svc.UpdateStatus(ctx, owner.ID, p.ID, "archived")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.UpdateStatus(ctx, other.ID, p.ID, domain.ProjectDraft)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
