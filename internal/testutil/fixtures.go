package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Now-Tiger/Flow/internal/domain"
	"github.com/google/uuid"
)

var emailCounter atomic.Int64

// User options
type UserOption func(*domain.User)

func WithEmail(email string) UserOption {
	return func(u *domain.User) {
		u.Email = email
	}
}

func WithPasswordHash(hash string) UserOption {
	return func(u *domain.User) {
		u.PasswordHash = hash
	}
}

func NewTestUser(opts ...UserOption) *domain.User {
	now := time.Now().UTC()
	u := &domain.User{
		ID:           uuid.New().String(),
		Email:        fmt.Sprintf("user%d@example.com", emailCounter.Add(1)),
		PasswordHash: "not-a-real-hash",
		FirstName:    "Test",
		LastName:     "User",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Project options
type ProjectOption func(*domain.Project)

func WithProjectStatus(s domain.ProjectStatus) ProjectOption {
	return func(p *domain.Project) {
		p.Status = s
	}
}

func WithDescription(d string) ProjectOption {
	return func(p *domain.Project) {
		p.Description = d
	}
}

func WithCreatedAt(t time.Time) ProjectOption {
	return func(p *domain.Project) {
		p.CreatedAt = t
		p.UpdatedAt = t
	}
}

func NewTestProject(userID, title string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC()
	p := &domain.Project{
		ID:           uuid.New().String(),
		UserID:       userID,
		Title:        title,
		Description:  title,
		TargetUsers:  "testers",
		Constraints:  "none",
		TemplateType: domain.DefaultTemplateType,
		Status:       domain.ProjectDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func NewTestGroup(projectID, name string, order int) *domain.TaskGroup {
	return &domain.TaskGroup{
		ID:           uuid.New().String(),
		ProjectID:    projectID,
		Name:         name,
		DisplayOrder: order,
		CreatedAt:    time.Now().UTC(),
	}
}

// Task options
type TaskOption func(*domain.Task)

func WithTaskType(tt domain.TaskType) TaskOption {
	return func(t *domain.Task) {
		t.Type = tt
	}
}

func WithGroup(groupID string) TaskOption {
	return func(t *domain.Task) {
		t.TaskGroupID = &groupID
	}
}

func WithDisplayOrder(n int) TaskOption {
	return func(t *domain.Task) {
		t.DisplayOrder = n
	}
}

func WithEstimatedHours(h float64) TaskOption {
	return func(t *domain.Task) {
		t.EstimatedHours = &h
	}
}

func WithTaskStatus(s domain.TaskStatus) TaskOption {
	return func(t *domain.Task) {
		t.Status = s
	}
}

func NewTestTask(projectID, title string, opts ...TaskOption) domain.Task {
	now := time.Now().UTC()
	t := domain.Task{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		Title:       title,
		Description: title + " description",
		Type:        domain.TaskEngineeringTask,
		Priority:    domain.PriorityMedium,
		Difficulty:  domain.DifficultyMedium,
		Status:      domain.TaskTodo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}
