package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/sandeepkv93/taskflow/internal/urgency"
)

type AppData struct {
	Header       string
	LeftPane     string
	RightPane    string
	StatusLine   string
	IsError      bool
	Palette      string
	Footer       string
	Notification string
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	cursorStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	todayStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

// Tier and state colours. States that are not countdowns get their own
// colour so an in-progress task never reads as overdue.
var (
	tierStyles = map[urgency.Tier]lipgloss.Style{
		urgency.TierFar:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		urgency.TierNear:     lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		urgency.TierImminent: lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		urgency.TierPast:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
	stateStyles = map[urgency.State]lipgloss.Style{
		urgency.StateInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		urgency.StateCompleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		urgency.StateStarted:    lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	}
)

func RenderApp(data AppData) string {
	left := panelStyle.Width(58).Render(data.LeftPane)
	right := panelStyle.Width(50).Render(data.RightPane)
	row := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	status := statusStyle.Render(data.StatusLine)
	if data.IsError {
		status = errorStyle.Render(data.StatusLine)
	}

	lines := []string{
		headerStyle.Render(data.Header),
		row,
	}
	if data.Palette != "" {
		lines = append(lines, data.Palette)
	}
	lines = append(lines, status)
	if data.Notification != "" {
		lines = append(lines, panelStyle.Render(data.Notification))
	}
	if data.Footer != "" {
		lines = append(lines, footerStyle.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

// RenderUrgency colours u.Text by state, then by tier.
func RenderUrgency(u urgency.Urgency) string {
	if style, ok := stateStyles[u.State]; ok {
		return style.Render(u.Text)
	}
	if style, ok := tierStyles[u.Tier]; ok {
		return style.Render(u.Text)
	}
	return u.Text
}

func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
