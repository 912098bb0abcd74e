// Package config implements the interactive settings editor opened by
// "autocare config" without a subcommand.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/autocare/autocare/internal/config"
	"github.com/autocare/autocare/internal/tui/keymap"
	"github.com/autocare/autocare/internal/tui/styles"
	"github.com/autocare/autocare/internal/util"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"
)

// labelWidth is the column width of setting labels.
const labelWidth = 25

// Model is the Bubbletea model for the interactive config UI
type Model struct {
	categories     []config.SettingCategory
	categoryIndex  int
	itemIndex      int
	width          int
	height         int
	editing        bool
	textInput      textinput.Model
	selectIndex    int // For select-type options
	errorMsg       string
	infoMsg        string
	quitting       bool
	configModified bool
	path           string
	keymap         *keymap.Keymap
	showHelp       bool
}

// New creates a new config model that saves to the user's config file.
func New() Model {
	return NewWithPath(config.ConfigFile())
}

// NewWithPath creates a config model that saves to path.
func NewWithPath(path string) Model {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 40

	return Model{
		categories: config.SettingCategories(),
		textInput:  ti,
		path:       path,
		keymap:     keymap.DefaultKeymap(),
		showHelp:   true,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.errorMsg = ""
		m.infoMsg = ""

		if m.editing {
			return m.handleEditingKeypress(msg)
		}
		return m.handleKeypress(msg)
	}
	return m, nil
}

// handleKeypress resolves list keys through the shared keymap. A few
// editor-only keys (space, shift+tab, r) are handled directly.
func (m Model) handleKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		return m.edit()
	case "shift+tab":
		m.categoryIndex = (m.categoryIndex + len(m.categories) - 1) % len(m.categories)
		m.itemIndex = 0
		return m, nil
	case "r":
		item := m.currentItem()
		m.apply(item, item.Default)
		if m.errorMsg == "" {
			m.infoMsg = fmt.Sprintf("Reset %s to default", item.Label)
			m.warnOverride(item)
		}
		return m, nil
	}

	cmd, ok := m.keymap.GetBinding(msg, keymap.ModeList)
	if !ok {
		return m, nil
	}
	switch cmd {
	case keymap.CmdQuit, keymap.CmdBack:
		m.quitting = true
		return m, tea.Quit
	case keymap.CmdUp:
		m.itemIndex--
		if m.itemIndex < 0 {
			m.categoryIndex = (m.categoryIndex + len(m.categories) - 1) % len(m.categories)
			m.itemIndex = len(m.categories[m.categoryIndex].Settings) - 1
		}
	case keymap.CmdDown:
		m.itemIndex++
		if m.itemIndex >= len(m.categories[m.categoryIndex].Settings) {
			m.categoryIndex = (m.categoryIndex + 1) % len(m.categories)
			m.itemIndex = 0
		}
	case keymap.CmdToggleFocus:
		m.categoryIndex = (m.categoryIndex + 1) % len(m.categories)
		m.itemIndex = 0
	case keymap.CmdToggleHelp:
		m.showHelp = !m.showHelp
	case keymap.CmdSelect:
		return m.edit()
	}
	return m, nil
}

// edit toggles a bool in place or opens the editor for the current setting.
func (m Model) edit() (tea.Model, tea.Cmd) {
	item := m.currentItem()
	switch item.Type {
	case config.TypeBool:
		m.apply(item, !viper.GetBool(item.Key))
		m.warnOverride(item)
	case config.TypeSelect:
		m.editing = true
		m.selectIndex = m.getCurrentSelectIndex()
	default:
		m.editing = true
		m.textInput.SetValue(m.getDisplayValue(item))
		m.textInput.Focus()
	}
	return m, nil
}

// envOverride returns the environment variable that overrides key, if set.
func envOverride(key string) (string, bool) {
	name := "AUTOCARE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	_, ok := os.LookupEnv(name)
	return name, ok
}

// warnOverride replaces the saved notice when the environment still wins.
func (m *Model) warnOverride(item config.Setting) {
	if name, ok := envOverride(item.Key); ok && m.errorMsg == "" {
		m.infoMsg = fmt.Sprintf("Saved, but $%s overrides it", name)
	}
}

func (m Model) handleEditingKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	item := m.currentItem()

	switch msg.String() {
	case "esc":
		m.editing = false
		m.textInput.SetValue("")
		return m, nil

	case "enter":
		if item.Type == config.TypeSelect {
			m.apply(item, item.Options[m.selectIndex])
			m.warnOverride(item)
			m.editing = false
			return m, nil
		}
		value, err := item.Parse(m.textInput.Value())
		if err != nil {
			m.errorMsg = err.Error()
			return m, nil
		}
		m.apply(item, value)
		m.warnOverride(item)
		m.editing = false
		m.textInput.SetValue("")
		return m, nil

	case "up", "k":
		if item.Type == config.TypeSelect {
			m.selectIndex--
			if m.selectIndex < 0 {
				m.selectIndex = len(item.Options) - 1
			}
			return m, nil
		}

	case "down", "j":
		if item.Type == config.TypeSelect {
			m.selectIndex = (m.selectIndex + 1) % len(item.Options)
			return m, nil
		}
	}

	if item.Type != config.TypeSelect {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// apply sets a value, re-themes on a theme change and saves.
func (m *Model) apply(item config.Setting, value any) {
	viper.Set(item.Key, value)
	if item.Key == "tui.theme" {
		styles.SetActiveTheme(styles.ThemeName(fmt.Sprint(value)))
	}
	m.saveConfig()
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(styles.Header.Width(m.width - 4).Render("Autocare Configuration"))
	b.WriteString("\n\n")

	configPath := viper.ConfigFileUsed()
	if configPath == "" {
		configPath = m.path + " (not created)"
	}
	b.WriteString(styles.Muted.Render(fmt.Sprintf("Config file: %s", configPath)))
	b.WriteString("\n\n")

	for ci, cat := range m.categories {
		isActiveCategory := ci == m.categoryIndex

		catStyle := styles.Muted.Bold(true)
		if isActiveCategory {
			catStyle = styles.Primary.Bold(true)
		}
		b.WriteString(catStyle.Render(fmt.Sprintf("[ %s ]", cat.Name)))
		b.WriteString("\n")

		for ii, item := range cat.Settings {
			b.WriteString(m.renderItem(item, isActiveCategory && ii == m.itemIndex))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.editing {
		b.WriteString(m.renderEditOverlay())
	} else {
		b.WriteString(styles.Muted.Render(m.currentItem().Description))
		b.WriteString("\n")
	}

	if m.errorMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorMsg.Render("Error: " + m.errorMsg))
	}
	if m.infoMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.SuccessMsg.Render(m.infoMsg))
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

func (m Model) renderItem(item config.Setting, selected bool) string {
	value := m.getDisplayValue(item)
	if fmt.Sprint(viper.Get(item.Key)) != fmt.Sprint(item.Default) {
		value += styles.Warning.Render(" *")
	}
	if name, ok := envOverride(item.Key); ok {
		value += styles.Muted.Render(" ($" + name + ")")
	}

	label := util.PadRight(item.Label, labelWidth)
	if selected {
		cursor := styles.Secondary.Render(">")
		return fmt.Sprintf("  %s %s  %s", cursor, styles.Text.Bold(true).Render(label), styles.Primary.Render(value))
	}
	return fmt.Sprintf("    %s  %s", styles.Muted.Render(label), styles.Text.Render(value))
}

func (m Model) renderEditOverlay() string {
	item := m.currentItem()

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.PrimaryColor).
		Padding(1, 2).
		Width(50)

	var content strings.Builder
	if item.Type == config.TypeSelect {
		fmt.Fprintf(&content, "Select %s:\n\n", item.Label)
		for i, opt := range item.Options {
			if i == m.selectIndex {
				content.WriteString(styles.ItemSelected.Render("> "+opt) + "\n")
			} else {
				content.WriteString(styles.Item.Render("  "+opt) + "\n")
			}
		}
		content.WriteString("\n" + styles.Muted.Render("j/k or arrows to select, enter to confirm, esc to cancel"))
	} else {
		fmt.Fprintf(&content, "Edit %s:\n\n", item.Label)
		content.WriteString(m.textInput.View())
		content.WriteString("\n\n" + styles.Muted.Render("enter to save, esc to cancel"))
	}

	return "\n" + borderStyle.Render(content.String())
}

func (m Model) renderHelp() string {
	keyStyle := styles.HelpKey
	if m.editing {
		return styles.HelpBar.Render(
			keyStyle.Render("enter") + " save  " +
				keyStyle.Render("esc") + " cancel",
		)
	}
	if !m.showHelp {
		return ""
	}
	return styles.HelpBar.Render(
		keyStyle.Render("↑/k ↓/j") + " navigate  " +
			keyStyle.Render("tab") + " next category  " +
			keyStyle.Render("enter/space") + " edit  " +
			keyStyle.Render("r") + " reset  " +
			keyStyle.Render("?") + " hide help  " +
			keyStyle.Render("q") + " quit",
	)
}

func (m Model) currentItem() config.Setting {
	return m.categories[m.categoryIndex].Settings[m.itemIndex]
}

func (m Model) getDisplayValue(item config.Setting) string {
	switch item.Type {
	case config.TypeBool:
		return fmt.Sprintf("%v", viper.GetBool(item.Key))
	case config.TypeInt:
		return fmt.Sprintf("%d", viper.GetInt(item.Key))
	case config.TypeFloat:
		return fmt.Sprintf("%.2f", viper.GetFloat64(item.Key))
	default:
		return viper.GetString(item.Key)
	}
}

func (m Model) getCurrentSelectIndex() int {
	item := m.currentItem()
	current := viper.GetString(item.Key)
	for i, opt := range item.Options {
		if opt == current {
			return i
		}
	}
	return 0
}

func (m *Model) saveConfig() {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		m.errorMsg = fmt.Sprintf("Failed to create config directory: %v", err)
		return
	}
	if err := viper.WriteConfigAs(m.path); err != nil {
		m.errorMsg = fmt.Sprintf("Failed to save config: %v", err)
		return
	}

	m.infoMsg = "Saved!"
	m.configModified = true
}

// Run starts the interactive config UI
func Run() error {
	p := tea.NewProgram(New(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
