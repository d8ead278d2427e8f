package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sant0-9/quill/internal/llm"
)

// suggestionsFor maps a failure to hints the user can act on.
func suggestionsFor(err error, provider string) []string {
	if errors.Is(err, llm.ErrMissingAPIKey) {
		return []string{"Set an API key: press [s] to open settings"}
	}

	switch llm.KindOf(err) {
	case llm.KindUnauthorized:
		return []string{
			"Check your API key in ~/.config/quill/config.yaml",
			"Or press [s] to open settings",
		}
	case llm.KindRateLimited:
		return []string{
			"You've hit the API rate limit",
			"Wait a moment and press [r] to retry",
		}
	case llm.KindTimeout:
		return []string{
			"The model took too long to answer",
			"Try a shorter word count or raise completion_timeout",
		}
	case llm.KindUnreachable:
		if provider == "ollama" {
			return []string{
				"Make sure Ollama is running: ollama serve",
				"Or switch to a cloud provider in settings",
			}
		}
		return []string{
			"Check your internet connection",
			"Or try using Ollama for offline mode",
		}
	case llm.KindStatus, llm.KindMalformed:
		return []string{
			"The provider returned an unexpected response",
			"Try again, or pick another model in settings",
		}
	}
	return nil
}

func (a *App) renderError() string {
	var b strings.Builder

	title := lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true).
		Render("Something went wrong")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	errMsg := "Unknown error"
	if a.state.err != nil {
		errMsg = "Error: " + a.state.err.Error()
	}

	errBox := styleBox.
		Width(min(60, max(30, a.width-4))).
		BorderForeground(colorError).
		Render(errMsg)
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, errBox))
	b.WriteString("\n\n")

	if suggestions := suggestionsFor(a.state.err, a.state.config.Provider); len(suggestions) > 0 {
		suggBox := styleBox.
			Width(min(60, max(30, a.width-4))).
			BorderForeground(colorMuted).
			Render("Suggestions:\n" + strings.Join(suggestions, "\n"))
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, suggBox))
		b.WriteString("\n\n")
	}

	status := styleStatusBar.Render("[r] Retry  [s] Settings  [n] New  [Esc] Back")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, status))

	return a.centerVertically(b.String())
}
