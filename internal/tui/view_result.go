package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sant0-9/quill/internal/output"
	"github.com/sant0-9/quill/internal/tokens"
)

func (a *App) renderResult() string {
	var b strings.Builder
	res := a.state.result
	if res == nil {
		return a.renderForm()
	}

	// What was asked
	asked := styleSubtitle.Render(fmt.Sprintf("> %s · %s · %s tone",
		truncate(a.state.topic.Value(), 40), a.state.contentType, a.state.tone))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, asked))
	b.WriteString("\n\n")

	resultBox := styleBox.
		BorderForeground(colorPrimary).
		Render(a.state.viewport.View())
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, resultBox))
	b.WriteString("\n")

	stats := styleSubtitle.Render(resultStats(a))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, stats))
	b.WriteString("\n")

	if a.state.notice != "" {
		notice := styleNotice.Render(a.state.notice)
		b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, notice))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	actions := "[up/down] Scroll  [s] Save  [c] Copy  [r] Regenerate  [n] New  [ctrl+c] Quit"
	if !output.ClipboardAvailable() {
		actions = strings.Replace(actions, "[c] Copy  ", "", 1)
	}
	status := styleStatusBar.Render(actions)
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, status))

	return a.centerVertically(b.String())
}

func resultStats(a *App) string {
	res := a.state.result
	parts := []string{
		fmt.Sprintf("%d words", len(strings.Fields(res.Text))),
		fmt.Sprintf("%d tokens", tokens.Count(res.Text)),
	}
	if res.Model != "" {
		parts = append(parts, modelDisplayName(res.Model))
	}
	if res.Humanized {
		parts = append(parts, "humanized")
	}
	if n := len(res.References); n > 0 {
		ok := 0
		for _, r := range res.References {
			if r.OK() {
				ok++
			}
		}
		parts = append(parts, fmt.Sprintf("%d/%d refs", ok, n))
	}
	if pct := a.state.viewport.ScrollPercent(); a.state.viewport.TotalLineCount() > a.state.viewport.Height {
		parts = append(parts, fmt.Sprintf("%3.0f%%", pct*100))
	}
	return strings.Join(parts, " · ")
}

// modelDisplayName trims the vendor prefix from OpenRouter style model ids.
func modelDisplayName(model string) string {
	if i := strings.LastIndex(model, "/"); i >= 0 {
		model = model[i+1:]
	}
	return truncate(model, 30)
}
