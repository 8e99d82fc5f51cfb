// Package styles provides colour themes and styling for terminal output.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/annotate/internal/core/domain"
)

// Theme defines the colour palette.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Secondary is the secondary accent colour.
	Secondary lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Success indicates positive outcomes.
	Success lipgloss.Color

	// Warning indicates caution.
	Warning lipgloss.Color

	// Error indicates problems.
	Error lipgloss.Color

	// Border is the border colour.
	Border lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#7C3AED"), // Purple
		Secondary:  lipgloss.Color("#06B6D4"), // Cyan
		Foreground: lipgloss.Color("#CDD6F4"), // Light gray
		Muted:      lipgloss.Color("#6C7086"), // Medium gray
		Success:    lipgloss.Color("#A6E3A1"), // Green
		Warning:    lipgloss.Color("#F9E2AF"), // Yellow
		Error:      lipgloss.Color("#F38BA8"), // Red
		Border:     lipgloss.Color("#45475A"), // Border gray
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title style for headers.
	Title lipgloss.Style

	// Subtitle style for secondary headers.
	Subtitle lipgloss.Style

	// Header style for table column headings.
	Header lipgloss.Style

	// Normal style for regular text.
	Normal lipgloss.Style

	// Muted style for less important text.
	Muted lipgloss.Style

	// Active marks the active workspace.
	Active lipgloss.Style

	// Error style for error messages.
	Error lipgloss.Style

	// Success style for success messages.
	Success lipgloss.Style

	// Warning style for warning messages.
	Warning lipgloss.Style

	// Local and Remote badge storage kinds.
	Local  lipgloss.Style
	Remote lipgloss.Style

	// Help style for key hints.
	Help lipgloss.Style

	// Border style for bordered containers.
	Border lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Subtitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Muted).
			PaddingRight(2),

		Normal: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Active: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning),

		Local: lipgloss.NewStyle().
			Foreground(theme.Secondary),

		Remote: lipgloss.NewStyle().
			Foreground(theme.Primary),

		Help: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Storage renders a storage kind badge.
func (s *Styles) Storage(kind domain.StorageKind) string {
	switch kind {
	case domain.StorageLocal:
		return s.Local.Render(kind.String())
	case domain.StorageRemote:
		return s.Remote.Render(kind.String())
	default:
		return s.Muted.Render(kind.String())
	}
}

// Outcome renders counts in the colour of the worst outcome.
func (s *Styles) Outcome(c domain.KindCounts, text string) string {
	switch {
	case c.Failed > 0:
		return s.Error.Render(text)
	case c.Skipped > 0:
		return s.Warning.Render(text)
	case c.Succeeded > 0:
		return s.Success.Render(text)
	default:
		return s.Muted.Render(text)
	}
}
