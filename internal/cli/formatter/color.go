package formatter

import (
	"fmt"
	"strings"

	"github.com/Now-Tiger/Flow/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// TypeColor returns the style used for a task type across lists and badges.
func TypeColor(t domain.TaskType) lipgloss.Style {
	switch t {
	case domain.TaskUserStory:
		return StyleBlue
	case domain.TaskEngineeringTask:
		return StylePurple
	case domain.TaskRisk:
		return StyleRed
	default:
		return StyleDim
	}
}

// TypeBadge renders a short label such as "STORY" or "RISK".
func TypeBadge(t domain.TaskType) string {
	switch t {
	case domain.TaskUserStory:
		return TypeColor(t).Render("STORY")
	case domain.TaskEngineeringTask:
		return TypeColor(t).Render("ENG")
	case domain.TaskRisk:
		return TypeColor(t).Render("RISK")
	default:
		return TypeColor(t).Render("?")
	}
}

func PriorityColor(p domain.Priority) lipgloss.Style {
	switch p {
	case domain.PriorityHigh:
		return StyleRed
	case domain.PriorityMedium:
		return StyleYellow
	default:
		return StyleGreen
	}
}

// PriorityIndicator returns a colored marker such as "▲ high".
func PriorityIndicator(p domain.Priority) string {
	switch p {
	case domain.PriorityHigh:
		return PriorityColor(p).Render("▲ high")
	case domain.PriorityMedium:
		return PriorityColor(p).Render("● medium")
	case domain.PriorityLow:
		return PriorityColor(p).Render("▽ low")
	default:
		return StyleDim.Render(string(p))
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
