package console

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colour palette of the rendered digest.
type Theme struct {
	// Primary is the heading colour.
	Primary lipgloss.Color

	// Secondary is used for section titles.
	Secondary lipgloss.Color

	// Muted is for metadata lines.
	Muted lipgloss.Color

	// Up marks positive changes.
	Up lipgloss.Color

	// Down marks negative changes and failures.
	Down lipgloss.Color

	// Warning marks caveats and degraded sources.
	Warning lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:   lipgloss.Color("#7C3AED"), // Purple
		Secondary: lipgloss.Color("#06B6D4"), // Cyan
		Muted:     lipgloss.Color("#6C7086"), // Medium gray
		Up:        lipgloss.Color("#A6E3A1"), // Green
		Down:      lipgloss.Color("#F38BA8"), // Red
		Warning:   lipgloss.Color("#F9E2AF"), // Yellow
	}
}

// Styles contains the lipgloss styles used by the renderer.
type Styles struct {
	Title   lipgloss.Style
	Section lipgloss.Style
	Normal  lipgloss.Style
	Muted   lipgloss.Style
	Up      lipgloss.Style
	Down    lipgloss.Style
	Warning lipgloss.Style
}

// NewStyles creates styles from a theme bound to renderer r.
func NewStyles(r *lipgloss.Renderer, theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		Title: r.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Section: r.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Normal: r.NewStyle(),

		Muted: r.NewStyle().
			Foreground(theme.Muted),

		Up: r.NewStyle().
			Foreground(theme.Up),

		Down: r.NewStyle().
			Foreground(theme.Down),

		Warning: r.NewStyle().
			Foreground(theme.Warning),
	}
}

// PlainStyles returns styles that render text unchanged.
func PlainStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Title:   plain,
		Section: plain,
		Normal:  plain,
		Muted:   plain,
		Up:      plain,
		Down:    plain,
		Warning: plain,
	}
}
