package domain

import "time"

// DefaultTemplateType is applied when a project is created without one.
const DefaultTemplateType = "Web Application"

// MaxTitleLength bounds titles derived from the feature goal.
const MaxTitleLength = 100

type Project struct {
	ID           string
	UserID       string
	Title        string
	Description  string
	TargetUsers  string
	Constraints  string
	TemplateType string
	Status       ProjectStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProjectSummary is a project row with aggregate counts for listings.
type ProjectSummary struct {
	Project
	TaskCount  int
	GroupCount int
}

// TitleFromGoal derives a project title from a feature goal: its first
// MaxTitleLength characters, whitespace included.
func TitleFromGoal(goal string) string {
	r := []rune(goal)
	if len(r) > MaxTitleLength {
		r = r[:MaxTitleLength]
	}
	return string(r)
}

// OwnedBy reports whether userID owns the project.
func (p *Project) OwnedBy(userID string) bool {
	return p != nil && userID != "" && p.UserID == userID
}
