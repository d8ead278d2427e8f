package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sant0-9/quill/internal/config"
)

func (a *App) renderSettings() string {
	switch a.state.settingsMode {
	case "provider":
		return a.renderSettingsProvider()
	case "model":
		return a.renderSettingsModel()
	case "apikey":
		return a.renderSettingsAPIKey()
	default:
		return a.renderSettingsMain()
	}
}

func (a *App) renderSettingsMain() string {
	var b strings.Builder

	// Title
	title := lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		Render("Settings")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	// Current config
	provider := config.GetProvider(a.state.config.Provider)
	providerName := a.state.config.Provider
	if provider != nil {
		providerName = provider.Name
	}

	configLines := []string{
		fmt.Sprintf("  Provider:    %s", providerName),
		fmt.Sprintf("  Model:       %s", a.state.config.Model),
		fmt.Sprintf("  API Key:     %s", a.state.config.MaskedAPIKey()),
		fmt.Sprintf("  Temperature: %.1f", a.state.config.Temperature),
		fmt.Sprintf("  Output dir:  %s", a.state.config.OutputDir),
	}
	if a.state.configPath != "" {
		configLines = append(configLines, "", fmt.Sprintf("  %s", truncate(a.state.configPath, 44)))
	}

	configBox := styleBox.
		Width(50).
		Render(strings.Join(configLines, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, configBox))
	b.WriteString("\n\n")

	// Actions
	actions := []string{
		"  [p] Change provider",
		"  [m] Change model",
		"  [k] Update API key",
	}
	actionsBox := styleBox.
		Width(50).
		Render(strings.Join(actions, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, actionsBox))
	b.WriteString("\n\n")

	// Instructions
	if a.state.warning != "" {
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleWarning.Render(a.state.warning)))
		b.WriteString("\n\n")
	}

	instructions := styleStatusBar.Render("[Esc] Back")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, instructions))

	return a.centerVertically(b.String())
}

func (a *App) renderSettingsProvider() string {
	names := make([]string, len(config.Providers))
	current := ""
	for i, p := range config.Providers {
		names[i] = p.Name
		if p.ID == a.state.config.Provider {
			current = p.Name
		}
	}
	return a.renderSettingsList("Select Provider", "Switching resets the model to the provider default", names, current)
}

func (a *App) renderSettingsModel() string {
	provider := config.GetProvider(a.state.config.Provider)
	if provider == nil || len(provider.Models) == 0 {
		return a.renderSettingsList("Select Model", "Set model in the config file for this provider", nil, "")
	}
	return a.renderSettingsList("Select Model", "Provider: "+provider.Name, provider.Models, a.state.config.Model)
}

// renderSettingsList draws a selectable list with the current value marked.
func (a *App) renderSettingsList(title, subtitle string, items []string, current string) string {
	var lines []string
	for i, item := range items {
		if item == current {
			item += " (current)"
		}
		if i == a.state.settingsSelected {
			lines = append(lines, styleFocused.Render("> "+item))
		} else {
			lines = append(lines, "  "+item)
		}
	}
	if len(lines) == 0 {
		lines = append(lines, styleSubtitle.Render("  nothing to choose"))
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		styleTitle.Render(title),
		styleSubtitle.Render(subtitle),
		"",
		styleBox.Width(50).Render(strings.Join(lines, "\n")),
		"",
		styleStatusBar.Render("[up/down] Navigate  [Enter] Select  [Esc] Cancel"),
	)
	return a.centerVertically(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, content))
}

func (a *App) renderSettingsAPIKey() string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		styleTitle.Render("Update API Key"),
		styleSubtitle.Render("Current: "+a.state.config.MaskedAPIKey()),
		"",
		styleBox.Width(50).BorderForeground(colorPrimary).Render(a.state.apiKeyInput.View()),
		"",
		styleStatusBar.Render("[Enter] Save  [Esc] Cancel"),
	)
	return a.centerVertically(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, content))
}

func (a *App) handleSettingsKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	s := a.state
	switch s.settingsMode {
	case "":
		switch msg.String() {
		case "p":
			s.settingsMode = "provider"
			s.settingsSelected = 0
		case "m":
			s.settingsMode = "model"
			s.settingsSelected = 0
		case "k":
			s.settingsMode = "apikey"
			return s.apiKeyInput.Focus(), true
		case "esc":
			a.view = a.previous
		}
		return nil, true

	case "provider":
		switch msg.String() {
		case "up", "k":
			s.settingsSelected = max(0, s.settingsSelected-1)
		case "down", "j":
			s.settingsSelected = min(len(config.Providers)-1, s.settingsSelected+1)
		case "enter":
			p := config.Providers[s.settingsSelected]
			s.config.Provider = p.ID
			s.config.Model = p.DefaultModel
			s.settingsMode = ""
			return a.persistSettings(), true
		case "esc":
			s.settingsMode = ""
		}
		return nil, true

	case "model":
		provider := config.GetProvider(s.config.Provider)
		var models []string
		if provider != nil {
			models = provider.Models
		}
		switch msg.String() {
		case "up", "k":
			s.settingsSelected = max(0, s.settingsSelected-1)
		case "down", "j":
			s.settingsSelected = max(0, min(len(models)-1, s.settingsSelected+1))
		case "enter":
			if len(models) > 0 {
				s.config.Model = models[s.settingsSelected]
			}
			s.settingsMode = ""
			return a.persistSettings(), true
		case "esc":
			s.settingsMode = ""
		}
		return nil, true

	case "apikey":
		switch msg.String() {
		case "enter":
			s.config.APIKey = strings.TrimSpace(s.apiKeyInput.Value())
			s.apiKeyInput.Reset()
			s.apiKeyInput.Blur()
			s.settingsMode = ""
			return a.persistSettings(), true
		case "esc":
			s.apiKeyInput.Reset()
			s.apiKeyInput.Blur()
			s.settingsMode = ""
			return nil, true
		}
		return nil, false
	}
	return nil, true
}

type settingsSavedMsg struct{}
type settingsErrorMsg struct{ error }

// persistSettings writes the current config in the background. A failed
// write is reported but the in-memory change stays.
func (a *App) persistSettings() tea.Cmd {
	cfg := *a.state.config
	path := a.state.configPath
	a.state.warning = ""
	return func() tea.Msg {
		if err := saveConfig(&cfg, path); err != nil {
			return settingsErrorMsg{err}
		}
		return settingsSavedMsg{}
	}
}
