package service

import (
	"context"

	"github.com/Now-Tiger/Flow/internal/domain"
	"github.com/Now-Tiger/Flow/internal/export"
	"github.com/Now-Tiger/Flow/internal/intelligence"
)

// GenerateRequest carries the feature description typed by the user.
type GenerateRequest struct {
	FeatureGoal  string
	TargetUsers  string
	Constraints  string
	TemplateType string
}

// GenerateResult is the outcome of one generation.
type GenerateResult struct {
	Project  *domain.Project
	Stats    domain.TaskStats
	Rejected []intelligence.RejectedRecord
	// UngroupedTypes lists task types whose group could not be created.
	UngroupedTypes []domain.TaskType
}

type GenerationService interface {
	Generate(ctx context.Context, userID string, req GenerateRequest) (*GenerateResult, error)
}

// CreateProjectInput describes a project created by hand, without the model.
type CreateProjectInput struct {
	Title        string
	Description  string
	TargetUsers  string
	Constraints  string
	TemplateType string
}

// GroupTasks is a task group with its tasks in display order.
type GroupTasks struct {
	Group domain.TaskGroup
	Tasks []domain.Task
}

// ProjectDetails is the full workspace view of one project.
type ProjectDetails struct {
	Project   *domain.Project
	Groups    []GroupTasks
	Ungrouped []domain.Task
	Stats     domain.TaskStats
}

type ProjectService interface {
	Create(ctx context.Context, userID string, in CreateProjectInput) (*domain.Project, error)
	List(ctx context.Context, userID string) ([]domain.ProjectSummary, error)
	Details(ctx context.Context, userID, projectID string) (*ProjectDetails, error)
	UpdateStatus(ctx context.Context, userID, projectID string, status domain.ProjectStatus) (*domain.Project, error)
	// Delete removes the project and returns it as it was. A missing
	// project is ErrNotFound, a project of another user is ErrForbidden.
	Delete(ctx context.Context, userID, projectID string) (*domain.Project, error)
}

// TaskUpdate is a partial update; nil fields are left unchanged.
type TaskUpdate struct {
	Title          *string
	Description    *string
	Type           *string
	Priority       *string
	Difficulty     *string
	Status         *string
	EstimatedHours *float64
}

// ReorderUpdate moves one task to a new position and, optionally, a new
// group. A nil TaskGroupID leaves the task ungrouped.
type ReorderUpdate struct {
	TaskID       string
	DisplayOrder int
	TaskGroupID  *string
}

type TaskService interface {
	Update(ctx context.Context, userID, projectID, taskID string, upd TaskUpdate) (*domain.Task, error)
	// Reorder returns the project's tasks even when some updates failed;
	// the error then wraps domain.ErrPersistence.
	Reorder(ctx context.Context, userID, projectID string, updates []ReorderUpdate) ([]domain.Task, error)
	History(ctx context.Context, userID, projectID, taskID string) ([]domain.TaskEdit, error)
}

// SignupInput holds the fields of a new account.
type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
	// EnsureUser returns the account for email, creating it with an unusable
	// random password on first use. Local front ends act through it.
	EnsureUser(ctx context.Context, email string) (*domain.User, error)
}

// ExportFile is a rendered project ready to be served or written.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     string
}

type ExportService interface {
	Export(ctx context.Context, userID, projectID string, format export.Format) (*ExportFile, error)
}
