package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	Primary     = lipgloss.Color("#101F38")
	Accent      = lipgloss.Color("#8BC34A")
	Muted       = lipgloss.Color("#8A94A6")
	Border      = lipgloss.Color("#DCE0E5")
	Destructive = lipgloss.Color("#E53935")
	Star        = lipgloss.Color("#FFC107")
)

// Styles holds every style the screen renders with.
type Styles struct {
	Banner   lipgloss.Style
	Card     lipgloss.Style
	Title    lipgloss.Style
	Subtle   lipgloss.Style
	Section  lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Notice   lipgloss.Style
	Stars    lipgloss.Style
	Modal    lipgloss.Style
	Help     lipgloss.Style
}

// DefaultStyles returns the screen styles.
func DefaultStyles() Styles {
	return Styles{
		Banner: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(Primary).
			Padding(0, 2),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1),
		Title:    lipgloss.NewStyle().Bold(true),
		Subtle:   lipgloss.NewStyle().Foreground(Muted),
		Section:  lipgloss.NewStyle().Bold(true).Underline(true).MarginTop(1),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(Accent),
		Error:    lipgloss.NewStyle().Foreground(Destructive),
		Notice:   lipgloss.NewStyle().Foreground(Accent),
		Stars:    lipgloss.NewStyle().Foreground(Star),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(Accent).
			Padding(0, 1).
			MarginTop(1),
		Help: lipgloss.NewStyle().Foreground(Muted).MarginTop(1),
	}
}

// starBar renders k filled stars out of n.
func starBar(k, n int) string {
	k = min(max(k, 0), n)
	return strings.Repeat("★", k) + strings.Repeat("☆", n-k)
}
