package cli

import (
	"fmt"
	"strings"

	"github.com/Now-Tiger/Flow/internal/cli/formatter"
	"github.com/Now-Tiger/Flow/internal/domain"
	"github.com/Now-Tiger/Flow/internal/service"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// templateTypes are offered in the generate form; any free text is accepted
// on the command line.
var templateTypes = []string{
	domain.DefaultTemplateType,
	"Mobile App",
	"API Service",
	"CLI Tool",
	"Data Pipeline",
}

// flowHuhTheme returns a huh theme built on the Gruvbox palette.
func flowHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func requiredText(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// generateForm asks for the fields of req that are still empty. Fields set
// by flags are not asked again.
func generateForm(req *service.GenerateRequest) *huh.Form {
	var fields []huh.Field
	if strings.TrimSpace(req.FeatureGoal) == "" {
		fields = append(fields, huh.NewText().
			Title("Feature goal").
			Description("What should this feature let people do?").
			Placeholder("Let shoppers save items to a wishlist").
			Value(&req.FeatureGoal).
			Validate(requiredText("feature goal")))
	}
	if strings.TrimSpace(req.TargetUsers) == "" {
		fields = append(fields, huh.NewInput().
			Title("Target users").
			Placeholder("Returning customers on mobile").
			Value(&req.TargetUsers).
			Validate(requiredText("target users")))
	}
	if strings.TrimSpace(req.Constraints) == "" {
		fields = append(fields, huh.NewText().
			Title("Constraints").
			Placeholder("Two weeks, existing Postgres schema, no new vendors").
			Value(&req.Constraints).
			Validate(requiredText("constraints")))
	}
	if strings.TrimSpace(req.TemplateType) == "" {
		options := make([]huh.Option[string], 0, len(templateTypes))
		for _, tt := range templateTypes {
			options = append(options, huh.NewOption(tt, tt))
		}
		req.TemplateType = domain.DefaultTemplateType
		fields = append(fields, huh.NewSelect[string]().
			Title("Template").
			Options(options...).
			Value(&req.TemplateType))
	}
	if len(fields) == 0 {
		return nil
	}
	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(flowHuhTheme()).WithShowHelp(false)
}

// confirmForm returns a themed yes/no form.
func confirmForm(title string, value *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(value),
		),
	).WithTheme(flowHuhTheme()).WithShowHelp(false)
}
