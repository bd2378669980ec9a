package output

import "github.com/charmbracelet/lipgloss"

// Palette.
const (
	colorPrimary = lipgloss.Color("63")
	colorMuted   = lipgloss.Color("245")
	colorSuccess = lipgloss.Color("42")
	colorWarning = lipgloss.Color("214")
	colorError   = lipgloss.Color("203")
	colorInfo    = lipgloss.Color("39")
	colorTag     = lipgloss.Color("141")
)

// Styles holds the lipgloss styles used by commands.
type Styles struct {
	Header1  lipgloss.Style
	Header2  lipgloss.Style
	Bold     lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style
	UnitPath lipgloss.Style
	Tag      lipgloss.Style
}

// NewStyles creates styles bound to a lipgloss renderer, so color output
// follows that renderer's profile.
func NewStyles(lg *lipgloss.Renderer) *Styles {
	return &Styles{
		Header1:  lg.NewStyle().Bold(true).Foreground(colorPrimary).MarginBottom(1),
		Header2:  lg.NewStyle().Bold(true).Foreground(colorPrimary),
		Bold:     lg.NewStyle().Bold(true),
		Muted:    lg.NewStyle().Foreground(colorMuted),
		Success:  lg.NewStyle().Foreground(colorSuccess),
		Warning:  lg.NewStyle().Foreground(colorWarning),
		Error:    lg.NewStyle().Bold(true).Foreground(colorError),
		Info:     lg.NewStyle().Foreground(colorInfo),
		UnitPath: lg.NewStyle().Foreground(colorInfo),
		Tag:      lg.NewStyle().Foreground(colorTag),
	}
}
