package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors of the active theme
	PrimaryColor   lipgloss.Color
	SecondaryColor lipgloss.Color
	WarningColor   lipgloss.Color
	ErrorColor     lipgloss.Color
	MutedColor     lipgloss.Color
	SurfaceColor   lipgloss.Color
	TextColor      lipgloss.Color
	BorderColor    lipgloss.Color

	// Convenience styles for colors
	Primary   lipgloss.Style
	Secondary lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Muted     lipgloss.Style
	Text      lipgloss.Style

	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Header      lipgloss.Style
	TabActive   lipgloss.Style
	TabDone     lipgloss.Style
	TabInactive lipgloss.Style
	ContentBox  lipgloss.Style
	HelpBar     lipgloss.Style
	HelpKey     lipgloss.Style
	StatusBar   lipgloss.Style
	ErrorMsg    lipgloss.Style
	SuccessMsg  lipgloss.Style
	WarningMsg  lipgloss.Style

	// List rows
	Item         lipgloss.Style
	ItemSelected lipgloss.Style

	// Calendar cells
	Day         lipgloss.Style
	DayDisabled lipgloss.Style
	DayCursor   lipgloss.Style
	DayChosen   lipgloss.Style
	DayToday    lipgloss.Style

	palette *ColorPalette
)

func init() {
	Apply(DefaultPalette())
}

// SetActiveTheme switches every style to the named theme.
func SetActiveTheme(name ThemeName) {
	Apply(GetPalette(name))
}

// Apply rebuilds every style from p.
func Apply(p *ColorPalette) {
	palette = p

	PrimaryColor = p.Primary
	SecondaryColor = p.Secondary
	WarningColor = p.Warning
	ErrorColor = p.Error
	MutedColor = p.Muted
	SurfaceColor = p.Surface
	TextColor = p.Text
	BorderColor = p.Border

	Primary = lipgloss.NewStyle().Foreground(PrimaryColor)
	Secondary = lipgloss.NewStyle().Foreground(SecondaryColor)
	Warning = lipgloss.NewStyle().Foreground(WarningColor)
	Error = lipgloss.NewStyle().Foreground(ErrorColor)
	Muted = lipgloss.NewStyle().Foreground(MutedColor)
	Text = lipgloss.NewStyle().Foreground(TextColor)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)

	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(BorderColor).
		MarginBottom(1).
		PaddingBottom(1)

	TabActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextColor).
		Background(PrimaryColor).
		Padding(0, 2)

	TabDone = lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Padding(0, 2)

	TabInactive = lipgloss.NewStyle().
		Foreground(MutedColor).
		Padding(0, 2)

	ContentBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(1, 2)

	HelpBar = lipgloss.NewStyle().
		Foreground(MutedColor).
		MarginTop(1)

	HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(SecondaryColor)

	StatusBar = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(SurfaceColor).
		Padding(0, 1)

	ErrorMsg = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)

	SuccessMsg = lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Bold(true)

	WarningMsg = lipgloss.NewStyle().
		Foreground(WarningColor).
		Bold(true)

	Item = lipgloss.NewStyle().
		Foreground(TextColor).
		Padding(0, 1)

	ItemSelected = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(PrimaryColor).
		Bold(true).
		Padding(0, 1)

	Day = lipgloss.NewStyle().Foreground(TextColor)
	DayDisabled = lipgloss.NewStyle().Foreground(MutedColor).Faint(true)
	DayCursor = lipgloss.NewStyle().Foreground(TextColor).Background(BorderColor).Bold(true)
	DayChosen = lipgloss.NewStyle().Foreground(TextColor).Background(PrimaryColor).Bold(true)
	DayToday = lipgloss.NewStyle().Foreground(SecondaryColor).Underline(true)
}

// StatusColor returns the color for a booking status
func StatusColor(status string) lipgloss.Color {
	switch status {
	case "pending":
		return palette.StatusPending
	case "confirmed":
		return palette.StatusConfirmed
	case "in_progress":
		return palette.StatusInProgress
	case "completed":
		return palette.StatusCompleted
	case "cancelled":
		return palette.StatusCancelled
	default:
		return MutedColor
	}
}

// StatusIcon returns an icon for a booking status
func StatusIcon(status string) string {
	switch status {
	case "pending":
		return "○"
	case "confirmed":
		return "●"
	case "in_progress":
		return "◐"
	case "completed":
		return "✓"
	case "cancelled":
		return "✗"
	default:
		return "●"
	}
}

// StatusBadge renders an icon and status in the status color.
func StatusBadge(status string) string {
	return lipgloss.NewStyle().Foreground(StatusColor(status)).Render(StatusIcon(status) + " " + status)
}
