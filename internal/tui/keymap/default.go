package keymap

import tea "github.com/charmbracelet/bubbletea"

// DefaultKeymap returns the booking wizard key bindings.
func DefaultKeymap() *Keymap {
	return &Keymap{
		Name:        "default",
		Description: "Default booking wizard key bindings",
		Modes: map[Mode]*ModeBindings{
			ModeList:     defaultListBindings(),
			ModeText:     defaultTextBindings(),
			ModeCalendar: defaultCalendarBindings(),
			ModeConfirm:  defaultConfirmBindings(),
		},
	}
}

var appBindings = []KeyBinding{
	{KeyType: tea.KeyEsc, Command: CmdBack, Description: "back", Category: "Wizard"},
	{KeyType: tea.KeyCtrlC, Command: CmdQuit, Description: "quit", Category: "Application"},
}

func defaultListBindings() *ModeBindings {
	return &ModeBindings{
		Mode: ModeList,
		Bindings: append([]KeyBinding{
			{KeyType: tea.KeyUp, Command: CmdUp, Description: "up", Category: "Navigation"},
			{KeyType: tea.KeyRunes, Rune: 'k', Command: CmdUp, Description: "up", Category: "Navigation"},
			{KeyType: tea.KeyDown, Command: CmdDown, Description: "down", Category: "Navigation"},
			{KeyType: tea.KeyRunes, Rune: 'j', Command: CmdDown, Description: "down", Category: "Navigation"},
			{KeyType: tea.KeyEnter, Command: CmdSelect, Description: "select", Category: "Wizard"},
			{KeyType: tea.KeyTab, Command: CmdToggleFocus, Description: "calendar", Category: "Wizard"},
			{KeyType: tea.KeyRunes, Rune: '?', Command: CmdToggleHelp, Description: "help", Category: "Application"},
			{KeyType: tea.KeyRunes, Rune: 'q', Command: CmdQuit, Description: "quit", Category: "Application"},
		}, appBindings...),
	}
}

// Text mode forwards runes to the focused input, so only special keys are bound.
func defaultTextBindings() *ModeBindings {
	return &ModeBindings{
		Mode: ModeText,
		Bindings: append([]KeyBinding{
			{KeyType: tea.KeyEnter, Command: CmdSelect, Description: "continue", Category: "Wizard"},
			{KeyType: tea.KeyCtrlT, Command: CmdTradeIn, Description: "trade-in", Category: "Wizard"},
		}, appBindings...),
	}
}

func defaultCalendarBindings() *ModeBindings {
	return &ModeBindings{
		Mode: ModeCalendar,
		Bindings: append([]KeyBinding{
			{KeyType: tea.KeyUp, Command: CmdUp, Description: "week", Category: "Navigation"},
			{KeyType: tea.KeyRunes, Rune: 'k', Command: CmdUp, Description: "week", Category: "Navigation"},
			{KeyType: tea.KeyDown, Command: CmdDown, Description: "week", Category: "Navigation"},
			{KeyType: tea.KeyRunes, Rune: 'j', Command: CmdDown, Description: "week", Category: "Navigation"},
			{KeyType: tea.KeyLeft, Command: CmdLeft, Description: "day", Category: "Navigation"},
			{KeyType: tea.KeyRunes, Rune: 'h', Command: CmdLeft, Description: "day", Category: "Navigation"},
			{KeyType: tea.KeyRight, Command: CmdRight, Description: "day", Category: "Navigation"},
			{KeyType: tea.KeyRunes, Rune: 'l', Command: CmdRight, Description: "day", Category: "Navigation"},
			{KeyType: tea.KeyRunes, Rune: '[', Command: CmdPrevMonth, Description: "prev month", Category: "Calendar"},
			{KeyType: tea.KeyRunes, Rune: ']', Command: CmdNextMonth, Description: "next month", Category: "Calendar"},
			{KeyType: tea.KeyEnter, Command: CmdSelect, Description: "pick day", Category: "Calendar"},
			{KeyType: tea.KeyTab, Command: CmdToggleFocus, Description: "times", Category: "Calendar"},
			{KeyType: tea.KeyRunes, Rune: '?', Command: CmdToggleHelp, Description: "help", Category: "Application"},
			{KeyType: tea.KeyRunes, Rune: 'q', Command: CmdQuit, Description: "quit", Category: "Application"},
		}, appBindings...),
	}
}

// The confirm step has the notes field focused, so runes are not bound here either.
func defaultConfirmBindings() *ModeBindings {
	return &ModeBindings{
		Mode: ModeConfirm,
		Bindings: append([]KeyBinding{
			{KeyType: tea.KeyEnter, Command: CmdSubmit, Description: "submit", Category: "Wizard"},
		}, appBindings...),
	}
}
