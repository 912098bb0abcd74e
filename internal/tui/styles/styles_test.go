package styles

import (
	"strings"
	"testing"
)

func TestStatusColor(t *testing.T) {
	defer SetActiveTheme(ThemeDefault)
	SetActiveTheme(ThemeDefault)

	tests := []struct {
		status   string
		expected string // Expected color hex value
	}{
		{"pending", "#F59E0B"},
		{"confirmed", "#60A5FA"},
		{"in_progress", "#A78BFA"},
		{"completed", "#10B981"},
		{"cancelled", "#F87171"},
		{"unknown", "#9CA3AF"}, // Should fall back to MutedColor
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			got := StatusColor(tt.status)
			if string(got) != tt.expected {
				t.Errorf("StatusColor(%q) = %q, want %q", tt.status, got, tt.expected)
			}
		})
	}
}

func TestStatusIcon(t *testing.T) {
	tests := []struct {
		status   string
		expected string
	}{
		{"pending", "○"},
		{"confirmed", "●"},
		{"in_progress", "◐"},
		{"completed", "✓"},
		{"cancelled", "✗"},
		{"unknown", "●"}, // Should fall back to default
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			if got := StatusIcon(tt.status); got != tt.expected {
				t.Errorf("StatusIcon(%q) = %q, want %q", tt.status, got, tt.expected)
			}
		})
	}
}

func TestSetActiveTheme(t *testing.T) {
	defer SetActiveTheme(ThemeDefault)

	SetActiveTheme(ThemeMono)
	if PrimaryColor != MonoPalette().Primary {
		t.Errorf("PrimaryColor = %q after switching to mono", PrimaryColor)
	}
	if StatusColor("cancelled") != MonoPalette().StatusCancelled {
		t.Error("status colors should follow the active theme")
	}

	SetActiveTheme("no-such-theme")
	if PrimaryColor != DefaultPalette().Primary {
		t.Errorf("unknown theme should fall back to default, got %q", PrimaryColor)
	}
}

func TestIsValidTheme(t *testing.T) {
	for _, name := range BuiltinThemes() {
		if !IsValidTheme(name) {
			t.Errorf("IsValidTheme(%q) = false", name)
		}
	}
	if IsValidTheme("dracula") {
		t.Error("IsValidTheme(dracula) = true")
	}
}

func TestStatusBadge(t *testing.T) {
	if got := StatusBadge("completed"); !strings.Contains(got, "✓ completed") {
		t.Errorf("StatusBadge() = %q", got)
	}
}
