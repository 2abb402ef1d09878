package domain

import "strings"

type ProjectStatus string

const (
	ProjectDraft     ProjectStatus = "draft"
	ProjectGenerated ProjectStatus = "generated"
	ProjectCompleted ProjectStatus = "completed"
)

type TaskType string

const (
	TaskUserStory       TaskType = "user-story"
	TaskEngineeringTask TaskType = "engineering-task"
	TaskRisk            TaskType = "risk"
	TaskUnknown         TaskType = "unknown"
)

// CanonicalTaskTypes is the order in which task groups are created and shown.
var CanonicalTaskTypes = []TaskType{TaskUserStory, TaskEngineeringTask, TaskRisk, TaskUnknown}

var taskGroupNames = map[TaskType]string{
	TaskUserStory:       "User Stories",
	TaskEngineeringTask: "Engineering Tasks",
	TaskRisk:            "Risks",
	TaskUnknown:         "Unknowns",
}

// GroupName returns the task group name used for a task type.
func (t TaskType) GroupName() string {
	return taskGroupNames[t]
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in-progress"
	TaskDone       TaskStatus = "done"
)

// ParseProjectStatus normalises s and reports whether it names a status.
func ParseProjectStatus(s string) (ProjectStatus, bool) {
	v := ProjectStatus(normalize(s))
	switch v {
	case ProjectDraft, ProjectGenerated, ProjectCompleted:
		return v, true
	}
	return "", false
}

func ParseTaskType(s string) (TaskType, bool) {
	v := TaskType(normalize(s))
	if _, ok := taskGroupNames[v]; ok {
		return v, true
	}
	return "", false
}

func ParsePriority(s string) (Priority, bool) {
	v := Priority(normalize(s))
	switch v {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return v, true
	}
	return "", false
}

func ParseDifficulty(s string) (Difficulty, bool) {
	v := Difficulty(normalize(s))
	switch v {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return v, true
	}
	return "", false
}

func ParseTaskStatus(s string) (TaskStatus, bool) {
	v := TaskStatus(normalize(s))
	switch v {
	case TaskTodo, TaskInProgress, TaskDone:
		return v, true
	}
	return "", false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
