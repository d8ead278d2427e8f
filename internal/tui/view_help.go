package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (a *App) renderHelp() string {
	var b strings.Builder

	// Title
	title := lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		Render("Help")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	// Form keys
	formKeys := []string{
		"  Tab / Down     Next field",
		"  Shift+Tab / Up Previous field",
		"  Left / Right   Change option or word count",
		"  Space          Toggle humanize",
		"  Ctrl+G         Generate",
		"  Ctrl+O         Settings",
		"  Esc            Quit",
	}

	formBox := styleBox.
		Width(50).
		Render(strings.Join(formKeys, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, formBox))
	b.WriteString("\n\n")

	// Result keys
	resultKeys := []string{
		"  Up / Down      Scroll",
		"  s              Save to file",
		"  c              Copy to clipboard",
		"  r              Regenerate",
		"  n              New content",
	}

	resultTitle := styleSubtitle.Render("Result view")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, resultTitle))
	b.WriteString("\n\n")

	resultBox := styleBox.
		Width(50).
		Render(strings.Join(resultKeys, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, resultBox))
	b.WriteString("\n\n")

	// Instructions
	instructions := styleStatusBar.Render("[Esc] Back")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, instructions))

	return a.centerVertically(b.String())
}
