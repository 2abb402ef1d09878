package repository

import (
	"context"

	"github.com/Now-Tiger/Flow/internal/domain"
)

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	ListByUser(ctx context.Context, userID string) ([]domain.ProjectSummary, error)
	UpdateStatus(ctx context.Context, id string, status domain.ProjectStatus) error
	Delete(ctx context.Context, id, userID string) error
}

type TaskGroupRepo interface {
	Create(ctx context.Context, g *domain.TaskGroup) error
	ListByProject(ctx context.Context, projectID string) ([]domain.TaskGroup, error)
	Delete(ctx context.Context, id string) error
}

type TaskRepo interface {
	CreateBatch(ctx context.Context, tasks []domain.Task) error
	GetByID(ctx context.Context, projectID, id string) (*domain.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	// UpdatePlacement sets display order and group of one task, scoped by
	// project. It reports whether a row matched.
	UpdatePlacement(ctx context.Context, projectID, taskID string, displayOrder int, groupID *string) (bool, error)
}

type TaskEditRepo interface {
	Create(ctx context.Context, e *domain.TaskEdit) error
	ListByTask(ctx context.Context, taskID string) ([]domain.TaskEdit, error)
}
