// Package util provides terminal text helpers shared by the CLI renderers
// and the TUI.
package util

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// TruncateANSI truncates s to maxWidth visual columns, adding "..." if
// truncated. Escape sequences and wide characters are measured correctly.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	// ansi.Truncate counts the tail in the final width
	return ansi.Truncate(s, maxWidth, "...")
}

// PadRight pads s with spaces to width visual columns. Longer strings are
// truncated.
func PadRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w > width {
		return TruncateANSI(s, width)
	}
	return s + strings.Repeat(" ", width-w)
}

// Money renders a server decimal as a dollar amount, or "-" when empty.
func Money(amount string) string {
	if amount == "" {
		return "-"
	}
	return "$" + amount
}

// FirstLine returns the first line of s, for one-line previews.
func FirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
