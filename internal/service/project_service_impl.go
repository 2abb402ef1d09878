package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Now-Tiger/Flow/internal/domain"
	"github.com/Now-Tiger/Flow/internal/repository"
	"github.com/google/uuid"
)

type projectService struct {
	projects repository.ProjectRepo
	loader   workspaceLoader
	observer UseCaseObserver
}

func NewProjectService(
	projects repository.ProjectRepo,
	groups repository.TaskGroupRepo,
	tasks repository.TaskRepo,
	observers ...UseCaseObserver,
) ProjectService {
	return &projectService{
		projects: projects,
		loader:   workspaceLoader{projects: projects, groups: groups, tasks: tasks},
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *projectService) Create(ctx context.Context, userID string, in CreateProjectInput) (p *domain.Project, err error) {
	done := startUseCase(ctx, s.observer, "create-project", map[string]any{"user_id": userID})
	defer func() { done(err) }()

	if err = requireSession(userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: title and description are required", domain.ErrValidation)
	}

	now := time.Now().UTC()
	p = &domain.Project{
		ID:           uuid.New().String(),
		UserID:       userID,
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		TargetUsers:  in.TargetUsers,
		Constraints:  in.Constraints,
		TemplateType: domain.CoalesceStr(in.TemplateType, domain.DefaultTemplateType),
		Status:       domain.ProjectDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err = s.projects.Create(ctx, p); err != nil {
		return nil, storeErr("creating project", err)
	}
	return p, nil
}

func (s *projectService) List(ctx context.Context, userID string) ([]domain.ProjectSummary, error) {
	if err := requireSession(userID); err != nil {
		return nil, err
	}
	list, err := s.projects.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeErr("listing projects", err)
	}
	return list, nil
}

func (s *projectService) Details(ctx context.Context, userID, projectID string) (*ProjectDetails, error) {
	ws, err := s.loader.load(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	details := &ProjectDetails{
		Project: ws.project,
		Groups:  make([]GroupTasks, len(ws.groups)),
		Stats:   domain.CountTasks(ws.tasks),
	}
	index := make(map[string]int, len(ws.groups))
	for i, g := range ws.groups {
		details.Groups[i] = GroupTasks{Group: g, Tasks: []domain.Task{}}
		index[g.ID] = i
	}
	for _, t := range ws.tasks {
		if t.TaskGroupID != nil {
			if i, ok := index[*t.TaskGroupID]; ok {
				details.Groups[i].Tasks = append(details.Groups[i].Tasks, t)
				continue
			}
		}
		details.Ungrouped = append(details.Ungrouped, t)
	}
	return details, nil
}

func (s *projectService) UpdateStatus(ctx context.Context, userID, projectID string, status domain.ProjectStatus) (p *domain.Project, err error) {
	done := startUseCase(ctx, s.observer, "update-project-status", map[string]any{
		"project_id": projectID,
		"status":     status,
	})
	defer func() { done(err) }()

	if _, ok := domain.ParseProjectStatus(string(status)); !ok {
		return nil, fmt.Errorf("%w: unknown project status %q", domain.ErrValidation, status)
	}
	if _, err = ownedProject(ctx, s.projects, userID, projectID); err != nil {
		return nil, err
	}
	if err = s.projects.UpdateStatus(ctx, projectID, status); err != nil {
		return nil, storeErr("updating project status", err)
	}
	p, err = s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, storeErr("reloading project", err)
	}
	return p, nil
}

func (s *projectService) Delete(ctx context.Context, userID, projectID string) (p *domain.Project, err error) {
	done := startUseCase(ctx, s.observer, "delete-project", map[string]any{"project_id": projectID})
	defer func() { done(err) }()

	if err = requireSession(userID); err != nil {
		return nil, err
	}
	p, err = s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, storeErr("loading project", err)
	}
	if !p.OwnedBy(userID) {
		return nil, fmt.Errorf("%w: you can only delete your own projects", domain.ErrForbidden)
	}
	if err = s.projects.Delete(ctx, projectID, userID); err != nil {
		return nil, storeErr("deleting project", err)
	}
	return p, nil
}

// DeletedMessage is the confirmation shown after a project is deleted.
func DeletedMessage(p *domain.Project) string {
	return fmt.Sprintf("Project \"%s\" and all related data has been deleted", p.Title)
}
