package browse

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by the browser
type Styles struct {
	Title     lipgloss.Style
	Input     lipgloss.Style
	Pending   lipgloss.Style
	Name      lipgloss.Style
	Desc      lipgloss.Style
	Selected  lipgloss.Style
	Empty     lipgloss.Style
	Footer    lipgloss.Style
	ImportURL lipgloss.Style
	Help      lipgloss.Style
}

// DefaultStyles returns the default color scheme
func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#1A202C")).Padding(0, 1),
		Input:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#A0AEC0")).Padding(0, 1),
		Pending:   lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#A0AEC0")),
		Name:      lipgloss.NewStyle().Foreground(lipgloss.Color("#3182CE")),
		Desc:      lipgloss.NewStyle().Foreground(lipgloss.Color("#718096")),
		Selected:  lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("#EDF2F7")).Foreground(lipgloss.Color("#1A202C")),
		Empty:     lipgloss.NewStyle().Padding(1, 2),
		Footer:    lipgloss.NewStyle().BorderTop(true).BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("#CBD5E0")),
		ImportURL: lipgloss.NewStyle().Bold(true),
		Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0")),
	}
}
