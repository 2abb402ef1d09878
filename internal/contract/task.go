package contract

import (
	"time"

	"github.com/Now-Tiger/Flow/internal/domain"
	"github.com/Now-Tiger/Flow/internal/service"
)

type Task struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"project_id"`
	TaskGroupID    *string   `json:"task_group_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	TaskType       string    `json:"task_type"`
	Priority       string    `json:"priority"`
	Difficulty     string    `json:"difficulty"`
	EstimatedHours *float64  `json:"estimated_hours"`
	TaskStatus     string    `json:"task_status"`
	DisplayOrder   int       `json:"display_order"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewTask(t *domain.Task) Task {
	return Task{
		ID:             t.ID,
		ProjectID:      t.ProjectID,
		TaskGroupID:    t.TaskGroupID,
		Title:          t.Title,
		Description:    t.Description,
		TaskType:       string(t.Type),
		Priority:       string(t.Priority),
		Difficulty:     string(t.Difficulty),
		EstimatedHours: t.EstimatedHours,
		TaskStatus:     string(t.Status),
		DisplayOrder:   t.DisplayOrder,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

// NewTasks maps a task slice; the result is never nil so it encodes as [].
func NewTasks(tasks []domain.Task) []Task {
	out := make([]Task, 0, len(tasks))
	for i := range tasks {
		out = append(out, NewTask(&tasks[i]))
	}
	return out
}

type TaskEnvelope struct {
	Task Task `json:"task"`
}

type TaskList struct {
	Tasks []Task `json:"tasks"`
}

// UpdateTaskRequest is a partial update; absent fields stay unchanged.
type UpdateTaskRequest struct {
	Title          *string  `json:"title"`
	Description    *string  `json:"description"`
	TaskType       *string  `json:"task_type"`
	Priority       *string  `json:"priority"`
	Difficulty     *string  `json:"difficulty"`
	TaskStatus     *string  `json:"task_status"`
	EstimatedHours *float64 `json:"estimated_hours"`
}

func (r UpdateTaskRequest) Update() service.TaskUpdate {
	return service.TaskUpdate{
		Title:          r.Title,
		Description:    r.Description,
		Type:           r.TaskType,
		Priority:       r.Priority,
		Difficulty:     r.Difficulty,
		Status:         r.TaskStatus,
		EstimatedHours: r.EstimatedHours,
	}
}

type ReorderItem struct {
	ID           string  `json:"id"`
	DisplayOrder int     `json:"display_order"`
	TaskGroupID  *string `json:"task_group_id"`
}

type ReorderRequest struct {
	Tasks []ReorderItem `json:"tasks"`
}

func (r ReorderRequest) Updates() []service.ReorderUpdate {
	out := make([]service.ReorderUpdate, len(r.Tasks))
	for i, t := range r.Tasks {
		out[i] = service.ReorderUpdate{TaskID: t.ID, DisplayOrder: t.DisplayOrder, TaskGroupID: t.TaskGroupID}
	}
	return out
}

type TaskEdit struct {
	ID            string    `json:"id"`
	TaskID        string    `json:"task_id"`
	FieldChanged  string    `json:"field_changed"`
	OriginalValue *string   `json:"original_value"`
	NewValue      *string   `json:"new_value"`
	EditedAt      time.Time `json:"edited_at"`
}

type TaskEditList struct {
	Edits []TaskEdit `json:"edits"`
}

func NewTaskEditList(edits []domain.TaskEdit) TaskEditList {
	out := TaskEditList{Edits: make([]TaskEdit, 0, len(edits))}
	for _, e := range edits {
		out.Edits = append(out.Edits, TaskEdit(e))
	}
	return out
}
