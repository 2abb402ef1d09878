package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/Now-Tiger/Flow/internal/domain"
	"github.com/Now-Tiger/Flow/internal/service"
	"github.com/charmbracelet/lipgloss"
)

// FormatProjectList renders the user's projects inside a bordered box.
func FormatProjectList(projects []domain.ProjectSummary, now time.Time) string {
	if len(projects) == 0 {
		return RenderBox("Projects", Dim("No projects yet. Run `flow generate` to create one."))
	}

	headers := []string{"ID", "TITLE", "STATUS", "TASKS", "GROUPS", "CREATED"}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			TruncID(p.ID),
			Bold(p.Title),
			StatusPill(p.Status),
			fmt.Sprintf("%d", p.TaskCount),
			fmt.Sprintf("%d", p.GroupCount),
			Dim(HumanTimestamp(p.CreatedAt, now)),
		})
	}
	return RenderBox("Projects", RenderTable(headers, rows))
}

// FormatProjectDetails renders a project card followed by one table per task
// group and a final table for ungrouped tasks.
func FormatProjectDetails(d *service.ProjectDetails, now time.Time) string {
	var b strings.Builder
	b.WriteString(projectCard(d, now))
	b.WriteString("\n")

	for _, g := range d.Groups {
		b.WriteString("\n" + Header(fmt.Sprintf("%s (%d)", g.Group.Name, len(g.Tasks))) + "\n")
		b.WriteString(taskTable(g.Tasks))
	}
	if len(d.Ungrouped) > 0 {
		b.WriteString("\n" + Header(fmt.Sprintf("Other Tasks (%d)", len(d.Ungrouped))) + "\n")
		b.WriteString(taskTable(d.Ungrouped))
	}
	if len(d.Groups) == 0 && len(d.Ungrouped) == 0 {
		b.WriteString("\n" + Dim("No tasks yet.") + "\n")
	}
	return b.String()
}

func projectCard(d *service.ProjectDetails, now time.Time) string {
	p := d.Project
	label := func(s string) string { return StyleDim.Render(fmt.Sprintf("%-8s", s)) }

	var b strings.Builder
	b.WriteString(StyleBold.Render(p.Title) + "\n")
	if p.Description != "" {
		b.WriteString(lipgloss.NewStyle().Width(60).Render(Dim(p.Description)) + "\n")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  %s\n", label("STATUS"), StatusPill(p.Status))
	fmt.Fprintf(&b, "%s  %s\n", label("ID"), Dim(p.ID))
	fmt.Fprintf(&b, "%s  %s\n", label("TEMPLATE"), StyleFg.Render(p.TemplateType))
	if p.TargetUsers != "" {
		fmt.Fprintf(&b, "%s  %s\n", label("USERS"), StyleFg.Render(p.TargetUsers))
	}
	if p.Constraints != "" {
		fmt.Fprintf(&b, "%s  %s\n", label("LIMITS"), StyleFg.Render(p.Constraints))
	}
	fmt.Fprintf(&b, "%s  %s\n", label("UPDATED"), StyleFg.Render(HumanTimestamp(p.UpdatedAt, now)))

	s := d.Stats
	fmt.Fprintf(&b, "\n%s  %s  %s  %s\n",
		Bold(Plural(s.TotalTasks, "task")),
		TypeColor(domain.TaskUserStory).Render(fmt.Sprintf("%d stories", s.UserStories)),
		TypeColor(domain.TaskEngineeringTask).Render(fmt.Sprintf("%d engineering", s.EngineeringTasks)),
		TypeColor(domain.TaskRisk).Render(fmt.Sprintf("%d risks", s.Risks)),
	)
	if s.TotalTasks > 0 {
		b.WriteString(RenderProgress(countDone(d), s.TotalTasks, 20))
	}
	return RenderBox("", strings.TrimRight(b.String(), "\n"))
}

func countDone(d *service.ProjectDetails) int {
	n := 0
	count := func(tasks []domain.Task) {
		for _, t := range tasks {
			if t.Status == domain.TaskDone {
				n++
			}
		}
	}
	for _, g := range d.Groups {
		count(g.Tasks)
	}
	count(d.Ungrouped)
	return n
}

func taskTable(tasks []domain.Task) string {
	headers := []string{"#", "ID", "TYPE", "TITLE", "PRIORITY", "DIFFICULTY", "EST", "STATUS"}
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			Dim(fmt.Sprintf("%d", t.DisplayOrder)),
			TruncID(t.ID),
			TypeBadge(t.Type),
			StyleFg.Render(t.Title),
			PriorityIndicator(t.Priority),
			Dim(string(t.Difficulty)),
			FormatHours(t.EstimatedHours),
			TaskStatusPill(t.Status),
		})
	}
	return RenderTable(headers, rows)
}

// FormatGenerateResult summarizes a finished generation.
func FormatGenerateResult(res *service.GenerateResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", Bold(res.Project.Title), Dim(res.Project.ID))
	fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render("TASKS  "), StyleFg.Render(fmt.Sprintf("%d", res.Stats.TotalTasks)))
	fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render("STORIES"), TypeColor(domain.TaskUserStory).Render(fmt.Sprintf("%d", res.Stats.UserStories)))
	fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render("ENG    "), TypeColor(domain.TaskEngineeringTask).Render(fmt.Sprintf("%d", res.Stats.EngineeringTasks)))
	fmt.Fprintf(&b, "%s  %s", StyleDim.Render("RISKS  "), TypeColor(domain.TaskRisk).Render(fmt.Sprintf("%d", res.Stats.Risks)))

	if len(res.Rejected) > 0 {
		b.WriteString("\n\n" + StyleYellow.Render(fmt.Sprintf("Skipped %s from the model:", Plural(len(res.Rejected), "record"))))
		for _, r := range res.Rejected {
			fmt.Fprintf(&b, "\n  %s %s", Dim(fmt.Sprintf("#%d", r.Index)), r.Reason)
		}
	}
	if len(res.UngroupedTypes) > 0 {
		names := make([]string, len(res.UngroupedTypes))
		for i, t := range res.UngroupedTypes {
			names[i] = t.GroupName()
		}
		b.WriteString("\n\n" + StyleYellow.Render("Left ungrouped: "+strings.Join(names, ", ")))
	}
	return RenderBox("Generated", b.String())
}

// FormatTask renders a single task after an update.
func FormatTask(t *domain.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n%s\n\n", TypeBadge(t.Type), Bold(t.Title), Dim(t.ID))
	if t.Description != "" {
		b.WriteString(lipgloss.NewStyle().Width(60).Render(StyleFg.Render(t.Description)) + "\n\n")
	}
	fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render("STATUS    "), TaskStatusPill(t.Status))
	fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render("PRIORITY  "), PriorityIndicator(t.Priority))
	fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render("DIFFICULTY"), StyleFg.Render(string(t.Difficulty)))
	fmt.Fprintf(&b, "%s  %s", StyleDim.Render("ESTIMATE  "), StyleFg.Render(FormatHours(t.EstimatedHours)))
	return RenderBox("", b.String())
}

// FormatTaskEdits renders a task's edit history in the order it was made.
func FormatTaskEdits(edits []domain.TaskEdit, now time.Time) string {
	if len(edits) == 0 {
		return Dim("No edits recorded.") + "\n"
	}
	value := func(v *string) string {
		if v == nil {
			return Dim("(none)")
		}
		return *v
	}
	headers := []string{"WHEN", "FIELD", "FROM", "TO"}
	rows := make([][]string, 0, len(edits))
	for _, e := range edits {
		rows = append(rows, []string{
			Dim(HumanTimestamp(e.EditedAt, now)),
			StyleBold.Render(e.FieldChanged),
			StyleRed.Render(value(e.OriginalValue)),
			StyleGreen.Render(value(e.NewValue)),
		})
	}
	return RenderTable(headers, rows)
}
