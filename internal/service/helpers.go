package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Now-Tiger/Flow/internal/domain"
	"github.com/Now-Tiger/Flow/internal/repository"
)

// passthrough are the sentinels a store error may already carry. Anything
// else coming out of a repository is a persistence failure.
var passthrough = []error{
	domain.ErrNotFound,
	domain.ErrValidation,
	domain.ErrConflict,
	domain.ErrForbidden,
	domain.ErrUnauthorized,
	domain.ErrPersistence,
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, target := range passthrough {
		if errors.Is(err, target) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrPersistence, err)
}

func requireSession(userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: no session", domain.ErrUnauthorized)
	}
	return nil
}

// sessionUser checks that userID names an existing account. A stale id is
// unauthorized, not missing.
func sessionUser(ctx context.Context, users repository.UserRepo, userID string) error {
	if err := requireSession(userID); err != nil {
		return err
	}
	if _, err := users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: unknown user", domain.ErrUnauthorized)
		}
		return storeErr("loading user", err)
	}
	return nil
}

// ownedProject loads a project of userID. A project owned by someone else is
// reported exactly like a missing one.
func ownedProject(ctx context.Context, projects repository.ProjectRepo, userID, projectID string) (*domain.Project, error) {
	if err := requireSession(userID); err != nil {
		return nil, err
	}
	p, err := projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, storeErr("loading project", err)
	}
	if !p.OwnedBy(userID) {
		return nil, fmt.Errorf("project: %w", domain.ErrNotFound)
	}
	return p, nil
}

// workspace is a project with its groups and tasks, both in display order.
type workspace struct {
	project *domain.Project
	groups  []domain.TaskGroup
	tasks   []domain.Task
}

type workspaceLoader struct {
	projects repository.ProjectRepo
	groups   repository.TaskGroupRepo
	tasks    repository.TaskRepo
}

func (l workspaceLoader) load(ctx context.Context, userID, projectID string) (*workspace, error) {
	p, err := ownedProject(ctx, l.projects, userID, projectID)
	if err != nil {
		return nil, err
	}
	groups, err := l.groups.ListByProject(ctx, projectID)
	if err != nil {
		return nil, storeErr("listing task groups", err)
	}
	tasks, err := l.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, storeErr("listing tasks", err)
	}
	return &workspace{project: p, groups: groups, tasks: tasks}, nil
}
