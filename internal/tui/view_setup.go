package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sant0-9/quill/internal/config"
)

func (a *App) renderSetup() string {
	var body string
	switch a.state.setupStep {
	case 0:
		body = a.renderSetupProviders()
	case 1:
		body = a.renderSetupKey()
	}

	step := styleSubtitle.Render(fmt.Sprintf("First run · step %d of 2", a.state.setupStep+1))
	content := lipgloss.JoinVertical(lipgloss.Center,
		styleLogo.Render(logo),
		step,
		"",
		body,
	)
	return a.centerVertically(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, content))
}

func (a *App) renderSetupProviders() string {
	title := styleTitle.Render("Where should quill send your prompts?")

	rows := make([]string, 0, len(config.Providers))
	for i, p := range config.Providers {
		key := "key"
		if !p.NeedsAPIKey {
			key = "no key"
		}
		row := fmt.Sprintf("%-11s %-32s %s", p.Name, truncate(p.Description, 32), key)
		if i == a.state.selectedProvider {
			rows = append(rows, styleFocused.Render("> "+row))
		} else {
			rows = append(rows, styleSubtitle.Render("  "+row))
		}
	}

	selected := config.Providers[a.state.selectedProvider]
	detail := "Model: " + selected.DefaultModel
	if selected.DefaultModel == "" {
		detail = "Set base_url and model in the config file afterwards"
	}

	hints := styleStatusBar.Render("[up/down] Choose  [Enter] Continue  [Esc] Quit")
	return lipgloss.JoinVertical(lipgloss.Center,
		title,
		"",
		styleBox.Width(60).Render(strings.Join(rows, "\n")),
		styleSubtitle.Render(detail),
		"",
		hints,
	)
}

func (a *App) renderSetupKey() string {
	provider := config.GetProvider(a.state.config.Provider)
	name := a.state.config.Provider
	if provider != nil {
		name = provider.Name
	}

	lines := []string{styleTitle.Render(name + " API key")}
	if provider != nil && provider.SignupURL != "" {
		lines = append(lines, styleSubtitle.Render("Create one at "+provider.SignupURL))
	}
	lines = append(lines,
		"",
		styleBox.Width(60).BorderForeground(colorSecondary).Render(a.state.apiKeyInput.View()),
	)
	if a.state.configPath != "" {
		lines = append(lines, styleSubtitle.Render("Stored with mode 0600 in "+truncate(a.state.configPath, 50)))
	}
	lines = append(lines, "", styleStatusBar.Render("[Enter] Save  [Esc] Back"))

	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

// centerVertically pads content so it sits mid-screen.
func (a *App) centerVertically(content string) string {
	lines := strings.Count(content, "\n") + 1
	padding := max(0, (a.height-lines)/2)
	return strings.Repeat("\n", padding) + content
}
