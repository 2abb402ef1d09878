package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Now-Tiger/Flow/internal/db"
	"github.com/Now-Tiger/Flow/internal/domain"
	"github.com/Now-Tiger/Flow/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentPlacements bounds the in-flight updates of one reorder.
const maxConcurrentPlacements = 8

type taskService struct {
	projects repository.ProjectRepo
	groups   repository.TaskGroupRepo
	tasks    repository.TaskRepo
	edits    repository.TaskEditRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewTaskService(
	projects repository.ProjectRepo,
	groups repository.TaskGroupRepo,
	tasks repository.TaskRepo,
	edits repository.TaskEditRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) TaskService {
	return &taskService{
		projects: projects,
		groups:   groups,
		tasks:    tasks,
		edits:    edits,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

// Update applies a partial update and records one edit row per changed
// field, all in one transaction.
func (s *taskService) Update(ctx context.Context, userID, projectID, taskID string, upd TaskUpdate) (task *domain.Task, err error) {
	fields := map[string]any{"project_id": projectID, "task_id": taskID}
	done := startUseCase(ctx, s.observer, "update-task", fields)
	defer func() { done(err) }()

	if err = requireSession(userID); err != nil {
		return nil, err
	}
	if upd == (TaskUpdate{}) {
		return nil, fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTasks := repository.NewSQLiteTaskRepo(tx)
		txEdits := repository.NewSQLiteTaskEditRepo(tx)

		if _, err := ownedProject(ctx, repository.NewSQLiteProjectRepo(tx), userID, projectID); err != nil {
			return err
		}
		current, err := txTasks.GetByID(ctx, projectID, taskID)
		if err != nil {
			return storeErr("loading task", err)
		}

		changes, err := applyTaskUpdate(current, upd)
		if err != nil {
			return err
		}
		fields["changed"] = len(changes)
		if len(changes) == 0 {
			task = current
			return nil
		}

		now := time.Now().UTC()
		current.UpdatedAt = now
		if err := txTasks.Update(ctx, current); err != nil {
			return storeErr("updating task", err)
		}
		for _, c := range changes {
			edit := &domain.TaskEdit{
				ID:            uuid.New().String(),
				TaskID:        current.ID,
				FieldChanged:  c.field,
				OriginalValue: c.from,
				NewValue:      c.to,
				EditedAt:      now,
			}
			if err := txEdits.Create(ctx, edit); err != nil {
				return storeErr("recording task edit", err)
			}
		}
		task = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

type fieldChange struct {
	field    string
	from, to *string
}

// applyTaskUpdate validates upd, mutates t and returns what actually changed.
func applyTaskUpdate(t *domain.Task, upd TaskUpdate) ([]fieldChange, error) {
	var changes []fieldChange
	record := func(field, from, to string) {
		if from != to {
			changes = append(changes, fieldChange{field: field, from: &from, to: &to})
		}
	}

	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", domain.ErrValidation)
		}
		record("title", t.Title, title)
		t.Title = title
	}
	if upd.Description != nil {
		record("description", t.Description, *upd.Description)
		t.Description = *upd.Description
	}
	if upd.Type != nil {
		v, ok := domain.ParseTaskType(*upd.Type)
		if !ok {
			return nil, fmt.Errorf("%w: invalid task type %q", domain.ErrValidation, *upd.Type)
		}
		record("task_type", string(t.Type), string(v))
		t.Type = v
	}
	if upd.Priority != nil {
		v, ok := domain.ParsePriority(*upd.Priority)
		if !ok {
			return nil, fmt.Errorf("%w: invalid priority %q", domain.ErrValidation, *upd.Priority)
		}
		record("priority", string(t.Priority), string(v))
		t.Priority = v
	}
	if upd.Difficulty != nil {
		v, ok := domain.ParseDifficulty(*upd.Difficulty)
		if !ok {
			return nil, fmt.Errorf("%w: invalid difficulty %q", domain.ErrValidation, *upd.Difficulty)
		}
		record("difficulty", string(t.Difficulty), string(v))
		t.Difficulty = v
	}
	if upd.Status != nil {
		v, ok := domain.ParseTaskStatus(*upd.Status)
		if !ok {
			return nil, fmt.Errorf("%w: invalid status %q", domain.ErrValidation, *upd.Status)
		}
		record("task_status", string(t.Status), string(v))
		t.Status = v
	}
	if upd.EstimatedHours != nil {
		h := *upd.EstimatedHours
		if h <= 0 {
			return nil, fmt.Errorf("%w: estimated hours must be positive", domain.ErrValidation)
		}
		prev := ""
		if t.EstimatedHours != nil {
			prev = formatHours(*t.EstimatedHours)
		}
		changes = appendHoursChange(changes, prev, formatHours(h))
		t.EstimatedHours = &h
	}
	return changes, nil
}

func appendHoursChange(changes []fieldChange, from, to string) []fieldChange {
	if from == to {
		return changes
	}
	c := fieldChange{field: "estimated_hours", to: &to}
	if from != "" {
		c.from = &from
	}
	return append(changes, c)
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// Reorder applies new positions and groups to tasks of one project. Updates
// run concurrently without a transaction; each is scoped by project so a
// task of another project is never touched. A failed update does not stop
// the others, and the re-read list is returned along with the joined error.
func (s *taskService) Reorder(ctx context.Context, userID, projectID string, updates []ReorderUpdate) (tasks []domain.Task, err error) {
	fields := map[string]any{"project_id": projectID, "updates": len(updates)}
	done := startUseCase(ctx, s.observer, "reorder-tasks", fields)
	defer func() { done(err) }()

	if _, err = ownedProject(ctx, s.projects, userID, projectID); err != nil {
		return nil, err
	}
	if err = validatePlacements(updates); err != nil {
		return nil, err
	}

	current, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, storeErr("listing tasks", err)
	}
	if placementsUnchanged(current, updates) {
		fields["noop"] = true
		return current, nil
	}

	groups, err := s.groups.ListByProject(ctx, projectID)
	if err != nil {
		return nil, storeErr("listing task groups", err)
	}
	known := make(map[string]bool, len(groups))
	for _, g := range groups {
		known[g.ID] = true
	}

	errs := make([]error, len(updates))
	matched := make([]bool, len(updates))
	skipped := 0
	var g errgroup.Group
	g.SetLimit(maxConcurrentPlacements)
	for i, u := range updates {
		if u.TaskGroupID != nil && !known[*u.TaskGroupID] {
			skipped++
			continue
		}
		g.Go(func() error {
			ok, err := s.tasks.UpdatePlacement(ctx, projectID, u.TaskID, u.DisplayOrder, u.TaskGroupID)
			matched[i] = ok
			if err != nil {
				errs[i] = fmt.Errorf("task %s: %w", u.TaskID, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	applied := 0
	for _, ok := range matched {
		if ok {
			applied++
		}
	}
	fields["applied"] = applied
	fields["skipped"] = skipped

	tasks, err = s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, storeErr("listing tasks", err)
	}
	if joined := errors.Join(errs...); joined != nil {
		return tasks, fmt.Errorf("reordering tasks: %w: %w", domain.ErrPersistence, joined)
	}
	return tasks, nil
}

type placement struct {
	group string
	order int
}

// validatePlacements checks the shape of every update and that no two
// updates claim the same display order within one group.
func validatePlacements(updates []ReorderUpdate) error {
	claimed := make(map[placement]string, len(updates))
	for _, u := range updates {
		if strings.TrimSpace(u.TaskID) == "" || u.DisplayOrder < 0 {
			return fmt.Errorf("%w: each update needs a task id and a non-negative display order", domain.ErrValidation)
		}
		key := placement{order: u.DisplayOrder}
		if u.TaskGroupID != nil {
			key.group = *u.TaskGroupID
		}
		if other, ok := claimed[key]; ok && other != u.TaskID {
			return fmt.Errorf("%w: tasks %s and %s share display order %d", domain.ErrValidation, other, u.TaskID, u.DisplayOrder)
		}
		claimed[key] = u.TaskID
	}
	return nil
}

// placementsUnchanged reports whether every update already matches the
// stored position and group of its task.
func placementsUnchanged(current []domain.Task, updates []ReorderUpdate) bool {
	byID := make(map[string]domain.Task, len(current))
	for _, t := range current {
		byID[t.ID] = t
	}
	for _, u := range updates {
		t, ok := byID[u.TaskID]
		if !ok || t.DisplayOrder != u.DisplayOrder || !sameGroup(t.TaskGroupID, u.TaskGroupID) {
			return false
		}
	}
	return true
}

func sameGroup(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *taskService) History(ctx context.Context, userID, projectID, taskID string) ([]domain.TaskEdit, error) {
	if _, err := ownedProject(ctx, s.projects, userID, projectID); err != nil {
		return nil, err
	}
	if _, err := s.tasks.GetByID(ctx, projectID, taskID); err != nil {
		return nil, storeErr("loading task", err)
	}
	edits, err := s.edits.ListByTask(ctx, taskID)
	if err != nil {
		return nil, storeErr("listing task edits", err)
	}
	return edits, nil
}
