// Package export renders a project and its grouped tasks as a Markdown or
// plain-text document.
package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Now-Tiger/Flow/internal/domain"
)

type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// ParseFormat maps a query value to a format. An empty value means Markdown;
// any value other than "markdown" means plain text.
func ParseFormat(s string) Format {
	switch strings.TrimSpace(s) {
	case "", string(FormatMarkdown):
		return FormatMarkdown
	default:
		return FormatText
	}
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return "txt"
}

// ContentType returns the media type of rendered documents.
func (f Format) ContentType() string {
	if f == FormatMarkdown {
		return "text/markdown"
	}
	return "text/plain"
}

// Group is a named section of tasks, already in display order.
type Group struct {
	Name  string
	Tasks []domain.Task
}

// Document is everything a rendered export contains. Groups are in display
// order; Ungrouped holds tasks whose group reference is absent.
type Document struct {
	Project   domain.Project
	Groups    []Group
	Ungrouped []domain.Task
}

// OtherTasksName titles the section holding ungrouped tasks.
const OtherTasksName = "Other Tasks"

// NewDocument assigns tasks to their groups. Both slices are expected in
// display order; the order is kept. Tasks that reference a group not in
// groups are treated as ungrouped.
func NewDocument(project domain.Project, groups []domain.TaskGroup, tasks []domain.Task) Document {
	doc := Document{Project: project, Groups: make([]Group, len(groups))}
	index := make(map[string]int, len(groups))
	for i, g := range groups {
		doc.Groups[i].Name = g.Name
		index[g.ID] = i
	}
	for _, t := range tasks {
		if t.TaskGroupID != nil {
			if i, ok := index[*t.TaskGroupID]; ok {
				doc.Groups[i].Tasks = append(doc.Groups[i].Tasks, t)
				continue
			}
		}
		doc.Ungrouped = append(doc.Ungrouped, t)
	}
	return doc
}

// sections returns the non-empty groups followed by the ungrouped tasks.
func (d Document) sections() []Group {
	out := make([]Group, 0, len(d.Groups)+1)
	for _, g := range d.Groups {
		if len(g.Tasks) > 0 {
			out = append(out, g)
		}
	}
	if len(d.Ungrouped) > 0 {
		out = append(out, Group{Name: OtherTasksName, Tasks: d.Ungrouped})
	}
	return out
}

// Render produces the document text. Output is deterministic for equal
// inputs.
func Render(doc Document, format Format) (string, error) {
	switch format {
	case FormatMarkdown:
		return renderMarkdown(doc), nil
	case FormatText:
		return renderText(doc), nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", domain.ErrValidation, format)
}

// Filename returns the attachment name for a project export.
func Filename(project domain.Project, format Format) string {
	return project.Title + "." + format.Extension()
}

func renderMarkdown(doc Document) string {
	p := doc.Project
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Title)
	fmt.Fprintf(&b, "**Feature Goal:** %s\n\n", p.Description)
	fmt.Fprintf(&b, "**Target Users:** %s\n\n", p.TargetUsers)
	fmt.Fprintf(&b, "**Constraints:** %s\n\n", p.Constraints)
	fmt.Fprintf(&b, "**Template:** %s\n\n", p.TemplateType)
	b.WriteString("---\n\n")

	for _, g := range doc.sections() {
		fmt.Fprintf(&b, "## %s\n\n", g.Name)
		for _, t := range g.Tasks {
			fmt.Fprintf(&b, "### %s\n\n", t.Title)
			fmt.Fprintf(&b, "%s\n\n", t.Description)
			fmt.Fprintf(&b, "- **Type:** %s\n", t.Type)
			fmt.Fprintf(&b, "- **Priority:** %s\n", t.Priority)
			fmt.Fprintf(&b, "- **Difficulty:** %s\n", t.Difficulty)
			if t.EstimatedHours != nil {
				fmt.Fprintf(&b, "- **Estimated:** %sh\n", formatHours(*t.EstimatedHours))
			}
			fmt.Fprintf(&b, "- **Status:** %s\n\n", t.Status)
		}
	}
	return b.String()
}

func renderText(doc Document) string {
	p := doc.Project
	var b strings.Builder
	underline(&b, p.Title, '=')
	b.WriteString("\n")
	fmt.Fprintf(&b, "Feature Goal: %s\n", p.Description)
	fmt.Fprintf(&b, "Target Users: %s\n", p.TargetUsers)
	fmt.Fprintf(&b, "Constraints: %s\n", p.Constraints)
	fmt.Fprintf(&b, "Template: %s\n\n", p.TemplateType)
	b.WriteString(strings.Repeat("=", 80) + "\n\n")

	for _, g := range doc.sections() {
		underline(&b, g.Name, '-')
		b.WriteString("\n")
		for i, t := range g.Tasks {
			fmt.Fprintf(&b, "%d. %s\n", i+1, t.Title)
			fmt.Fprintf(&b, "   %s\n", t.Description)
			fmt.Fprintf(&b, "   Type: %s | Priority: %s | Difficulty: %s\n", t.Type, t.Priority, t.Difficulty)
			if t.EstimatedHours != nil {
				fmt.Fprintf(&b, "   Estimated: %sh\n", formatHours(*t.EstimatedHours))
			}
			fmt.Fprintf(&b, "   Status: %s\n\n", t.Status)
		}
	}
	return b.String()
}

// underline writes text and a rule of the same width in runes.
func underline(b *strings.Builder, text string, ch rune) {
	b.WriteString(text)
	b.WriteString("\n")
	b.WriteString(strings.Repeat(string(ch), len([]rune(text))))
	b.WriteString("\n")
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
