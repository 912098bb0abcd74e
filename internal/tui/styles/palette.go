package styles

import (
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// ThemeName represents a named color theme.
type ThemeName string

// Available theme names.
const (
	ThemeDefault ThemeName = "default" // Purple/green dark theme
	ThemeMono    ThemeName = "mono"    // Grayscale for low-color terminals
)

// BuiltinThemes returns all built-in theme names.
func BuiltinThemes() []string {
	return []string{string(ThemeDefault), string(ThemeMono)}
}

// IsValidTheme checks if a theme name is valid.
func IsValidTheme(name string) bool {
	return slices.Contains(BuiltinThemes(), name)
}

// ColorPalette defines the color scheme for a theme.
type ColorPalette struct {
	// Primary accent color (headers, active step, selection)
	Primary lipgloss.Color
	// Secondary accent color (help keys, success)
	Secondary lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	// Muted color (de-emphasized text, disabled days)
	Muted   lipgloss.Color
	Surface lipgloss.Color
	Text    lipgloss.Color
	Border  lipgloss.Color

	// Booking status colors
	StatusPending    lipgloss.Color
	StatusConfirmed  lipgloss.Color
	StatusInProgress lipgloss.Color
	StatusCompleted  lipgloss.Color
	StatusCancelled  lipgloss.Color
}

// DefaultPalette returns the default purple/green dark theme palette.
// All colors meet WCAG AA contrast on dark backgrounds.
func DefaultPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#A78BFA"), // Purple (violet-400)
		Secondary: lipgloss.Color("#10B981"), // Green
		Warning:   lipgloss.Color("#F59E0B"), // Amber
		Error:     lipgloss.Color("#F87171"), // Red (red-400)
		Muted:     lipgloss.Color("#9CA3AF"), // Gray
		Surface:   lipgloss.Color("#1F2937"), // Dark surface
		Text:      lipgloss.Color("#F9FAFB"), // Light text
		Border:    lipgloss.Color("#6B7280"), // Gray-500

		StatusPending:    lipgloss.Color("#F59E0B"), // Amber
		StatusConfirmed:  lipgloss.Color("#60A5FA"), // Blue
		StatusInProgress: lipgloss.Color("#A78BFA"), // Purple
		StatusCompleted:  lipgloss.Color("#10B981"), // Green
		StatusCancelled:  lipgloss.Color("#F87171"), // Red
	}
}

// MonoPalette returns a grayscale palette.
func MonoPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#FFFFFF"),
		Secondary: lipgloss.Color("#D1D5DB"),
		Warning:   lipgloss.Color("#E5E7EB"),
		Error:     lipgloss.Color("#FFFFFF"),
		Muted:     lipgloss.Color("#9CA3AF"),
		Surface:   lipgloss.Color("#262626"),
		Text:      lipgloss.Color("#F5F5F5"),
		Border:    lipgloss.Color("#737373"),

		StatusPending:    lipgloss.Color("#E5E7EB"),
		StatusConfirmed:  lipgloss.Color("#D1D5DB"),
		StatusInProgress: lipgloss.Color("#D1D5DB"),
		StatusCompleted:  lipgloss.Color("#FFFFFF"),
		StatusCancelled:  lipgloss.Color("#9CA3AF"),
	}
}

// GetPalette returns the palette for name, falling back to the default.
func GetPalette(name ThemeName) *ColorPalette {
	switch name {
	case ThemeMono:
		return MonoPalette()
	default:
		return DefaultPalette()
	}
}
