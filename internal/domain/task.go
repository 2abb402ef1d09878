package domain

import "time"

type TaskGroup struct {
	ID           string
	ProjectID    string
	Name         string
	Description  *string
	DisplayOrder int
	CreatedAt    time.Time
}

type Task struct {
	ID             string
	ProjectID      string
	TaskGroupID    *string
	Title          string
	Description    string
	Type           TaskType
	Priority       Priority
	Difficulty     Difficulty
	EstimatedHours *float64
	Status         TaskStatus
	DisplayOrder   int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsRisk reports whether the task counts toward the merged risks bucket.
func (t *Task) IsRisk() bool {
	return t.Type == TaskRisk || t.Type == TaskUnknown
}

// TaskEdit records one field change made through a task update.
type TaskEdit struct {
	ID            string
	TaskID        string
	FieldChanged  string
	OriginalValue *string
	NewValue      *string
	EditedAt      time.Time
}

// TaskStats are the summary counts reported for a project.
type TaskStats struct {
	TotalTasks       int
	UserStories      int
	EngineeringTasks int
	Risks            int
}

// CountTasks computes TaskStats. Risks and unknowns share one bucket.
func CountTasks(tasks []Task) TaskStats {
	stats := TaskStats{TotalTasks: len(tasks)}
	for i := range tasks {
		switch {
		case tasks[i].Type == TaskUserStory:
			stats.UserStories++
		case tasks[i].Type == TaskEngineeringTask:
			stats.EngineeringTasks++
		case tasks[i].IsRisk():
			stats.Risks++
		}
	}
	return stats
}
