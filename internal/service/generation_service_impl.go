package service

import (
	"context"
	"time"

	"github.com/Now-Tiger/Flow/internal/db"
	"github.com/Now-Tiger/Flow/internal/domain"
	"github.com/Now-Tiger/Flow/internal/intelligence"
	"github.com/Now-Tiger/Flow/internal/repository"
	"github.com/google/uuid"
)

type generationService struct {
	breakdown intelligence.BreakdownService
	users     repository.UserRepo
	uow       db.UnitOfWork
	observer  UseCaseObserver
}

func NewGenerationService(
	breakdown intelligence.BreakdownService,
	users repository.UserRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) GenerationService {
	return &generationService{
		breakdown: breakdown,
		users:     users,
		uow:       uow,
		observer:  useCaseObserverOrNoop(observers),
	}
}

// Generate runs the model, then writes the project, its groups and its tasks
// in one transaction. Nothing is written until the model output has been
// parsed.
func (s *generationService) Generate(ctx context.Context, userID string, req GenerateRequest) (result *GenerateResult, err error) {
	fields := map[string]any{"user_id": userID}
	done := startUseCase(ctx, s.observer, "generate", fields)
	defer func() { done(err) }()

	if err = sessionUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	in := intelligence.BreakdownInput{
		FeatureGoal:  req.FeatureGoal,
		TargetUsers:  req.TargetUsers,
		Constraints:  req.Constraints,
		TemplateType: req.TemplateType,
	}
	if err = in.Validate(); err != nil {
		return nil, err
	}

	var breakdown *intelligence.BreakdownResult
	breakdown, err = s.breakdown.Breakdown(ctx, in)
	if err != nil {
		return nil, err
	}
	fields["records"] = len(breakdown.Records)
	fields["rejected"] = len(breakdown.Rejected)

	now := time.Now().UTC()
	project := &domain.Project{
		ID:           uuid.New().String(),
		UserID:       userID,
		Title:        domain.TitleFromGoal(req.FeatureGoal),
		Description:  req.FeatureGoal,
		TargetUsers:  req.TargetUsers,
		Constraints:  req.Constraints,
		TemplateType: in.Template(),
		Status:       domain.ProjectDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	result = &GenerateResult{Rejected: breakdown.Rejected}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		projects := repository.NewSQLiteProjectRepo(tx)
		groups := repository.NewSQLiteTaskGroupRepo(tx)
		tasks := repository.NewSQLiteTaskRepo(tx)

		if err := projects.Create(ctx, project); err != nil {
			return storeErr("creating project", err)
		}

		groupIDs, failed := createTypeGroups(ctx, groups, project.ID, breakdown.Records, now)
		result.UngroupedTypes = failed

		batch := buildTasks(project.ID, breakdown.Records, groupIDs, now)
		if err := tasks.CreateBatch(ctx, batch); err != nil {
			return storeErr("creating tasks", err)
		}
		result.Stats = domain.CountTasks(batch)

		if err := projects.UpdateStatus(ctx, project.ID, domain.ProjectGenerated); err != nil {
			return storeErr("marking project generated", err)
		}
		stored, err := projects.GetByID(ctx, project.ID)
		if err != nil {
			return storeErr("reloading project", err)
		}
		result.Project = stored
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields["project_id"] = project.ID
	fields["tasks"] = result.Stats.TotalTasks
	if len(result.UngroupedTypes) > 0 {
		fields["ungrouped_types"] = result.UngroupedTypes
	}
	return result, nil
}

// createTypeGroups creates one group per task type present in records, in
// canonical order. Every present type takes the next display order even when
// its insert fails; a failed type is returned and its tasks stay ungrouped.
func createTypeGroups(ctx context.Context, groups repository.TaskGroupRepo, projectID string, records []intelligence.BreakdownRecord, now time.Time) (map[domain.TaskType]string, []domain.TaskType) {
	present := make(map[domain.TaskType]bool, len(domain.CanonicalTaskTypes))
	for _, r := range records {
		present[r.Type] = true
	}

	ids := make(map[domain.TaskType]string, len(present))
	var failed []domain.TaskType
	order := 0
	for _, tt := range domain.CanonicalTaskTypes {
		if !present[tt] {
			continue
		}
		g := &domain.TaskGroup{
			ID:           uuid.New().String(),
			ProjectID:    projectID,
			Name:         tt.GroupName(),
			DisplayOrder: order,
			CreatedAt:    now,
		}
		order++
		if err := groups.Create(ctx, g); err != nil {
			failed = append(failed, tt)
			continue
		}
		ids[tt] = g.ID
	}
	return ids, failed
}

func buildTasks(projectID string, records []intelligence.BreakdownRecord, groupIDs map[domain.TaskType]string, now time.Time) []domain.Task {
	tasks := make([]domain.Task, len(records))
	for i, r := range records {
		var groupID *string
		if id, ok := groupIDs[r.Type]; ok {
			groupID = &id
		}
		tasks[i] = domain.Task{
			ID:             uuid.New().String(),
			ProjectID:      projectID,
			TaskGroupID:    groupID,
			Title:          r.Title,
			Description:    r.Description,
			Type:           r.Type,
			Priority:       r.Priority,
			Difficulty:     r.Difficulty,
			EstimatedHours: r.EstimatedHours,
			Status:         domain.TaskTodo,
			DisplayOrder:   i,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
	}
	return tasks
}
