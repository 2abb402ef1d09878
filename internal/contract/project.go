package contract

import (
	"time"

	"github.com/Now-Tiger/Flow/internal/domain"
	"github.com/Now-Tiger/Flow/internal/service"
)

type Project struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	TargetUsers  string    `json:"target_users"`
	Constraints  string    `json:"constraints"`
	TemplateType string    `json:"template_type"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewProject(p *domain.Project) Project {
	return Project{
		ID:           p.ID,
		UserID:       p.UserID,
		Title:        p.Title,
		Description:  p.Description,
		TargetUsers:  p.TargetUsers,
		Constraints:  p.Constraints,
		TemplateType: p.TemplateType,
		Status:       string(p.Status),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// CountRef mirrors the aggregate shape `[{count: n}]` listings carry.
type CountRef struct {
	Count int `json:"count"`
}

type ProjectListItem struct {
	Project
	TaskCount  int        `json:"taskCount"`
	TaskGroups []CountRef `json:"task_groups"`
}

type ProjectList struct {
	Projects []ProjectListItem `json:"projects"`
}

func NewProjectList(items []domain.ProjectSummary) ProjectList {
	out := ProjectList{Projects: make([]ProjectListItem, 0, len(items))}
	for i := range items {
		out.Projects = append(out.Projects, ProjectListItem{
			Project:    NewProject(&items[i].Project),
			TaskCount:  items[i].TaskCount,
			TaskGroups: []CountRef{{Count: items[i].GroupCount}},
		})
	}
	return out
}

type ProjectEnvelope struct {
	Project Project `json:"project"`
}

type CreateProjectRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	TargetUsers  string `json:"target_users"`
	Constraints  string `json:"constraints"`
	TemplateType string `json:"template_type"`
}

func (r CreateProjectRequest) Input() service.CreateProjectInput {
	return service.CreateProjectInput{
		Title:        r.Title,
		Description:  r.Description,
		TargetUsers:  r.TargetUsers,
		Constraints:  r.Constraints,
		TemplateType: r.TemplateType,
	}
}

type UpdateProjectStatusRequest struct {
	Status string `json:"status"`
}

type GenerateRequest struct {
	FeatureGoal  string `json:"featureGoal"`
	TargetUsers  string `json:"targetUsers"`
	Constraints  string `json:"constraints"`
	TemplateType string `json:"templateType"`
}

func (r GenerateRequest) Input() service.GenerateRequest {
	return service.GenerateRequest{
		FeatureGoal:  r.FeatureGoal,
		TargetUsers:  r.TargetUsers,
		Constraints:  r.Constraints,
		TemplateType: r.TemplateType,
	}
}

type RejectedRecord struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// GenerateResponse reports the created project with its task counts.
type GenerateResponse struct {
	Project               Project          `json:"project"`
	TasksCount            int              `json:"tasksCount"`
	UserStoriesCount      int              `json:"userStoriesCount"`
	EngineeringTasksCount int              `json:"engineeringTasksCount"`
	RisksCount            int              `json:"risksCount"`
	Rejected              []RejectedRecord `json:"rejected,omitempty"`
	UngroupedTypes        []string         `json:"ungroupedTypes,omitempty"`
}

func NewGenerateResponse(res *service.GenerateResult) GenerateResponse {
	out := GenerateResponse{
		Project:               NewProject(res.Project),
		TasksCount:            res.Stats.TotalTasks,
		UserStoriesCount:      res.Stats.UserStories,
		EngineeringTasksCount: res.Stats.EngineeringTasks,
		RisksCount:            res.Stats.Risks,
	}
	for _, r := range res.Rejected {
		out.Rejected = append(out.Rejected, RejectedRecord{Index: r.Index, Reason: r.Reason})
	}
	for _, tt := range res.UngroupedTypes {
		out.UngroupedTypes = append(out.UngroupedTypes, string(tt))
	}
	return out
}

type Stats struct {
	TotalTasks       int `json:"totalTasks"`
	UserStories      int `json:"userStories"`
	EngineeringTasks int `json:"engineeringTasks"`
	Risks            int `json:"risks"`
}

func NewStats(s domain.TaskStats) Stats {
	return Stats(s)
}

type TaskGroup struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	Tasks        []Task    `json:"tasks"`
}

type ProjectDetails struct {
	Project    Project     `json:"project"`
	TaskGroups []TaskGroup `json:"taskGroups"`
	Ungrouped  []Task      `json:"ungroupedTasks"`
	Stats      Stats       `json:"stats"`
}

func NewProjectDetails(d *service.ProjectDetails) ProjectDetails {
	out := ProjectDetails{
		Project:    NewProject(d.Project),
		TaskGroups: make([]TaskGroup, 0, len(d.Groups)),
		Ungrouped:  NewTasks(d.Ungrouped),
		Stats:      NewStats(d.Stats),
	}
	for _, g := range d.Groups {
		out.TaskGroups = append(out.TaskGroups, TaskGroup{
			ID:           g.Group.ID,
			ProjectID:    g.Group.ProjectID,
			Name:         g.Group.Name,
			Description:  g.Group.Description,
			DisplayOrder: g.Group.DisplayOrder,
			CreatedAt:    g.Group.CreatedAt,
			Tasks:        NewTasks(g.Tasks),
		})
	}
	return out
}

type DeleteProjectResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ProjectID string `json:"projectId"`
}

func NewDeleteProjectResponse(p *domain.Project) DeleteProjectResponse {
	return DeleteProjectResponse{
		Success:   true,
		Message:   service.DeletedMessage(p),
		ProjectID: p.ID,
	}
}
