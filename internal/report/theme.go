package report

import "github.com/charmbracelet/lipgloss"

// Theme holds the styles used for terminal output.
type Theme struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Card     lipgloss.Style
	Header   lipgloss.Style
	Cell     lipgloss.Style
	Border   lipgloss.Color
	Palette  []lipgloss.Color
}

// ThemeFor returns the named theme. Anything other than "light" is dark.
func ThemeFor(name string) Theme {
	if name == "light" {
		return newTheme(lipgloss.Color("25"), lipgloss.Color("240"), []lipgloss.Color{"25", "130", "28", "90", "160", "31"})
	}
	return newTheme(lipgloss.Color("63"), lipgloss.Color("245"), []lipgloss.Color{"39", "214", "78", "170", "203", "51"})
}

func newTheme(accent, muted lipgloss.Color, palette []lipgloss.Color) Theme {
	return Theme{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		Subtitle: lipgloss.NewStyle().Faint(true),
		Label:    lipgloss.NewStyle().Bold(true),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Card: lipgloss.NewStyle().
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accent),
		Header:  lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1),
		Cell:    lipgloss.NewStyle().Padding(0, 1).Foreground(muted),
		Border:  accent,
		Palette: palette,
	}
}

// Color returns the palette color for index i, cycling.
func (t Theme) Color(i int) lipgloss.Color {
	return t.Palette[i%len(t.Palette)]
}
