package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/sant0-9/quill/internal/pipeline"
)

func (a *App) processingStages() []pipeline.Stage {
	var stages []pipeline.Stage
	if len(a.buildRequest().URLs) > 0 {
		stages = append(stages, pipeline.StageReferences)
	}
	stages = append(stages, pipeline.StageDrafting)
	if a.state.humanize {
		stages = append(stages, pipeline.StageHumanizing)
	}
	return stages
}

func (a *App) renderProcessing() string {
	var b strings.Builder

	// Title
	title := lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		Render(a.state.spinner.View() + " Generating")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	topic := styleSubtitle.Render("> " + truncate(a.state.topic.Value(), 55))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, topic))
	b.WriteString("\n\n")

	current := pipeline.StageReferences
	if a.state.progress != nil {
		current = a.state.progress.Stage
	}

	var stageLines []string
	for _, stage := range a.processingStages() {
		var icon string
		var style lipgloss.Style

		if stage < current {
			// Completed
			icon = "[x]"
			style = lipgloss.NewStyle().Foreground(colorSuccess)
		} else if stage == current || (a.state.progress == nil && len(stageLines) == 0) {
			// Current
			icon = "[>]"
			style = lipgloss.NewStyle().Foreground(colorSecondary).Bold(true)
		} else {
			// Pending
			icon = "[ ]"
			style = lipgloss.NewStyle().Foreground(colorMuted)
		}

		// Per-URL progress while fetching references
		var progressBar string
		if stage == current && a.state.progress != nil {
			p := a.state.progress
			if p.TotalItems > 0 {
				pct := float64(p.ItemIndex) / float64(p.TotalItems)
				filled := int(pct * 30)
				empty := 30 - filled
				progressBar = "  " +
					lipgloss.NewStyle().Foreground(colorSecondary).Render(strings.Repeat("=", filled)) +
					lipgloss.NewStyle().Foreground(colorMuted).Render(strings.Repeat("-", empty)) +
					fmt.Sprintf("  %d/%d", p.ItemIndex, p.TotalItems)
			}
		}

		line := style.Render(fmt.Sprintf("  %s  %-12s", icon, stage)) + progressBar
		stageLines = append(stageLines, line)
	}

	stagesBox := styleBox.
		Width(min(60, max(30, a.width-4))).
		Render(strings.Join(stageLines, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, stagesBox))
	b.WriteString("\n\n")

	// Message
	if a.state.progress != nil && a.state.progress.Message != "" {
		msg := styleSubtitle.Render(truncate(a.state.progress.Message, 60))
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, msg))
		b.WriteString("\n")
	}

	elapsed := time.Since(a.state.startedAt).Round(time.Second)
	status := styleStatusBar.Render(fmt.Sprintf("%s elapsed  [Esc] Cancel", elapsed))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, status))

	return a.centerVertically(b.String())
}
