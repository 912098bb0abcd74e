// Package keymap provides key binding definitions and lookup for the booking
// wizard. Bindings are declared per input mode so the wizard's Update method
// only has to map a command to an action.
package keymap

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Mode represents the current input mode of the wizard.
// Different modes have different key bindings active.
type Mode string

const (
	ModeList     Mode = "list"     // Choosing from a list (type, vehicle, service, time)
	ModeText     Mode = "text"     // Typing into a text field
	ModeCalendar Mode = "calendar" // Moving the day cursor on the calendar grid
	ModeConfirm  Mode = "confirm"  // Reviewing the booking before submission
)

// Command represents a named action that can be triggered by a key binding.
type Command string

// Navigation
const (
	CmdUp    Command = "up"
	CmdDown  Command = "down"
	CmdLeft  Command = "left"
	CmdRight Command = "right"
)

// Wizard flow
const (
	CmdSelect      Command = "select"
	CmdBack        Command = "back"
	CmdPrevMonth   Command = "prev_month"
	CmdNextMonth   Command = "next_month"
	CmdToggleFocus Command = "toggle_focus"
	CmdTradeIn     Command = "cycle_trade_in"
	CmdSubmit      Command = "submit"
)

// Application
const (
	CmdToggleHelp Command = "toggle_help"
	CmdQuit       Command = "quit"
)

// Modifier represents keyboard modifiers (Ctrl, Alt, Shift).
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModCtrl  Modifier = 1 << iota
	ModAlt
	ModShift
)

// String returns a human-readable representation of modifiers.
func (m Modifier) String() string {
	if m == ModNone {
		return ""
	}
	var s string
	if m&ModCtrl != 0 {
		s += "ctrl+"
	}
	if m&ModAlt != 0 {
		s += "alt+"
	}
	if m&ModShift != 0 {
		s += "shift+"
	}
	return s
}

// KeyBinding represents a single key binding configuration.
type KeyBinding struct {
	// KeyType is the primary key for this binding.
	// For rune keys, use tea.KeyRunes and set Rune.
	KeyType tea.KeyType

	// Rune is the character for rune-based keys (when KeyType is tea.KeyRunes).
	Rune rune

	// Modifiers contains the modifier keys that must be pressed.
	Modifiers Modifier

	// Command is the action to execute when this binding is triggered.
	Command Command

	// Description is a short label for the help bar.
	Description string

	// Category groups related bindings together in full help.
	Category string
}

// Matches checks if a tea.KeyMsg matches this binding.
func (kb KeyBinding) Matches(msg tea.KeyMsg) bool {
	wantAlt := kb.Modifiers&ModAlt != 0
	if msg.Alt != wantAlt {
		return false
	}

	if kb.KeyType != tea.KeyRunes {
		return msg.Type == kb.KeyType
	}

	if msg.Type != tea.KeyRunes || len(msg.Runes) == 0 {
		return false
	}
	return msg.Runes[0] == kb.Rune
}

// String returns a human-readable representation of the key binding.
func (kb KeyBinding) String() string {
	prefix := kb.Modifiers.String()

	if kb.KeyType != tea.KeyRunes {
		return prefix + kb.KeyType.String()
	}

	switch kb.Rune {
	case ' ':
		return prefix + "space"
	default:
		return prefix + string(kb.Rune)
	}
}

// ModeBindings holds all key bindings for a specific mode.
type ModeBindings struct {
	Mode     Mode
	Bindings []KeyBinding
}

// GetBinding looks up a command for a key in this mode.
// Returns the command and true if found, or empty command and false if not.
func (mb *ModeBindings) GetBinding(msg tea.KeyMsg) (Command, bool) {
	for _, binding := range mb.Bindings {
		if binding.Matches(msg) {
			return binding.Command, true
		}
	}
	return "", false
}

// Keymap contains all key bindings organized by mode.
type Keymap struct {
	Name        string
	Description string
	Modes       map[Mode]*ModeBindings
}

// GetBinding looks up a command for a key in a specific mode.
func (km *Keymap) GetBinding(msg tea.KeyMsg, mode Mode) (Command, bool) {
	mb, ok := km.Modes[mode]
	if !ok {
		return "", false
	}
	return mb.GetBinding(msg)
}

// GetModeBindings returns all bindings for a specific mode.
func (km *Keymap) GetModeBindings(mode Mode) []KeyBinding {
	mb, ok := km.Modes[mode]
	if !ok {
		return nil
	}
	return mb.Bindings
}

// GetBindingsForCommand returns all bindings that trigger a specific command.
func (km *Keymap) GetBindingsForCommand(cmd Command, mode Mode) []KeyBinding {
	var result []KeyBinding
	for _, binding := range km.GetModeBindings(mode) {
		if binding.Command == cmd {
			result = append(result, binding)
		}
	}
	return result
}

// GetCategories returns all unique categories in a mode's bindings, in
// declaration order.
func (km *Keymap) GetCategories(mode Mode) []string {
	var categories []string
	for _, binding := range km.GetModeBindings(mode) {
		if binding.Category != "" && !slices.Contains(categories, binding.Category) {
			categories = append(categories, binding.Category)
		}
	}
	return categories
}

// HelpKeys converts a mode's bindings into bubbles key bindings, one per
// command, so they can be rendered by the help component. Keys bound to the
// same command are shown together, e.g. "↑/k".
func (km *Keymap) HelpKeys(mode Mode) []key.Binding {
	return helpBindings(km.GetModeBindings(mode))
}

// FullHelpKeys groups a mode's help bindings into one column per category,
// for the expanded help view.
func (km *Keymap) FullHelpKeys(mode Mode) [][]key.Binding {
	var columns [][]key.Binding
	for _, category := range km.GetCategories(mode) {
		var inCategory []KeyBinding
		for _, binding := range km.GetModeBindings(mode) {
			if binding.Category == category {
				inCategory = append(inCategory, binding)
			}
		}
		columns = append(columns, helpBindings(inCategory))
	}
	return columns
}

func helpBindings(bindings []KeyBinding) []key.Binding {
	var (
		order []Command
		keys  = make(map[Command][]string)
		descs = make(map[Command]string)
	)
	for _, binding := range bindings {
		if _, seen := keys[binding.Command]; !seen {
			order = append(order, binding.Command)
			descs[binding.Command] = binding.Description
		}
		keys[binding.Command] = append(keys[binding.Command], binding.String())
	}

	result := make([]key.Binding, 0, len(order))
	for _, cmd := range order {
		names := keys[cmd]
		result = append(result, key.NewBinding(
			key.WithKeys(names...),
			key.WithHelp(joinKeys(names), descs[cmd]),
		))
	}
	return result
}

func joinKeys(names []string) string {
	var s string
	for i, n := range names {
		if i > 0 {
			s += "/"
		}
		s += displayKey(n)
	}
	return s
}

func displayKey(name string) string {
	switch name {
	case "up":
		return "↑"
	case "down":
		return "↓"
	case "left":
		return "←"
	case "right":
		return "→"
	default:
		return name
	}
}
