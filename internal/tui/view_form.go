package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sant0-9/quill/internal/pipeline"
)

const logo = `
  ██████╗ ██╗   ██╗██╗██╗     ██╗
 ██╔═══██╗██║   ██║██║██║     ██║
 ██║   ██║██║   ██║██║██║     ██║
 ██║▄▄ ██║██║   ██║██║██║     ██║
 ╚██████╔╝╚██████╔╝██║███████╗███████╗
  ╚══▀▀═╝  ╚═════╝ ╚═╝╚══════╝╚══════╝
`

var fieldLabels = map[field]string{
	fieldTopic:       "Topic",
	fieldContentType: "Content type",
	fieldTone:        "Tone",
	fieldWords:       "Word count",
	fieldKeywords:    "SEO keywords",
	fieldGoal:        "Goal",
	fieldURLs:        "Reference URLs",
	fieldHumanize:    "Humanize",
}

func (a *App) renderForm() string {
	var b strings.Builder
	s := a.state

	if a.height >= 30 {
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, styleLogo.Render(logo)))
		b.WriteString("\n")
	}
	subtitle := styleSubtitle.Render("AI content generator")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, subtitle))
	b.WriteString("\n\n")

	var rows []string
	for f := fieldTopic; f < fieldSubmit; f++ {
		rows = append(rows, a.renderFieldRow(f))
	}
	rows = append(rows, "")

	submit := "[ Generate ]"
	if s.focus == fieldSubmit {
		submit = styleFocused.Render("> " + submit)
	} else {
		submit = styleSubtitle.Render("  " + submit)
	}
	rows = append(rows, submit)

	formBox := styleBox.
		Width(min(80, max(40, a.width-4))).
		Render(strings.Join(rows, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, formBox))
	b.WriteString("\n\n")

	if s.warning != "" {
		warn := styleWarning.Render(s.warning)
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, warn))
		b.WriteString("\n\n")
	}

	status := styleStatusBar.Render(fmt.Sprintf("%s  [Tab] Next  [<-/->] Change  [ctrl+g] Generate  [ctrl+o] Settings  [F1] Help  [Esc] Quit",
		a.providerLabel()))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, status))

	return a.centerVertically(b.String())
}

func (a *App) renderFieldRow(f field) string {
	s := a.state
	focused := s.focus == f

	cursor := "  "
	if focused {
		cursor = styleFocused.Render("> ")
	}
	label := styleLabel.Render(fieldLabels[f])

	var value string
	switch f {
	case fieldContentType:
		value = renderChoice(s.contentType, focused)
	case fieldTone:
		value = renderChoice(s.tone, focused)
	case fieldWords:
		value = renderChoice(fmt.Sprintf("%d", s.wordCount), focused) + "  " + wordBar(s.wordCount)
	case fieldHumanize:
		box := "[ ]"
		if s.humanize {
			box = "[x]"
		}
		value = box + styleSubtitle.Render(" rewrite to sound more human")
		if focused {
			value = styleFocused.Render(box) + styleSubtitle.Render(" rewrite to sound more human")
		}
	default:
		value = s.textInput(f).View()
	}

	return cursor + label + value
}

func renderChoice(v string, focused bool) string {
	if focused {
		return styleFocused.Render("< " + v + " >")
	}
	return "  " + v
}

func wordBar(n int) string {
	steps := (pipeline.MaxWords - pipeline.MinWords) / pipeline.WordStep
	filled := (n - pipeline.MinWords) / pipeline.WordStep
	return lipgloss.NewStyle().Foreground(colorSecondary).Render(strings.Repeat("=", filled)) +
		lipgloss.NewStyle().Foreground(colorMuted).Render(strings.Repeat("-", steps-filled))
}

func (a *App) providerLabel() string {
	return fmt.Sprintf("%s/%s", a.state.config.Provider, truncate(a.state.config.Model, 30))
}
