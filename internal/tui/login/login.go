// Package login is a small form for entering credentials in the terminal.
package login

import (
	"context"
	"strings"

	"github.com/autocare/autocare/internal/errors"
	"github.com/autocare/autocare/internal/tui/styles"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Authenticator performs the login. *auth.Session satisfies it.
type Authenticator interface {
	Login(ctx context.Context, username, password string) error
}

type loginDoneMsg struct {
	err error
}

const (
	fieldUsername = iota
	fieldPassword
)

// Model is the Bubbletea model for the login form
type Model struct {
	ctx      context.Context
	auth     Authenticator
	inputs   []textinput.Model
	focus    int
	loading  bool
	errorMsg string
	success  bool
	quitting bool
}

// New creates a login form, optionally pre-filled with username.
func New(ctx context.Context, a Authenticator, username string) Model {
	user := textinput.New()
	user.Placeholder = "username"
	user.CharLimit = 150
	user.Width = 30
	user.SetValue(username)

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'
	pass.CharLimit = 128
	pass.Width = 30

	m := Model{
		ctx:    ctx,
		auth:   a,
		inputs: []textinput.Model{user, pass},
	}
	if username != "" {
		m.focus = fieldPassword
	}
	m.inputs[m.focus].Focus()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Succeeded reports whether the login completed.
func (m Model) Succeeded() bool {
	return m.success
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.errorMsg = errors.UserMessage(msg.err)
			m.inputs[fieldPassword].SetValue("")
			m.setFocus(fieldPassword)
			return m, nil
		}
		m.success = true
		m.quitting = true
		return m, tea.Quit

	case tea.KeyMsg:
		if m.loading {
			if msg.Type == tea.KeyCtrlC {
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit

		case tea.KeyTab, tea.KeyDown:
			m.setFocus((m.focus + 1) % len(m.inputs))
			return m, nil

		case tea.KeyShiftTab, tea.KeyUp:
			m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs))
			return m, nil

		case tea.KeyEnter:
			if m.focus == fieldUsername {
				m.setFocus(fieldPassword)
				return m, nil
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	username := strings.TrimSpace(m.inputs[fieldUsername].Value())
	password := m.inputs[fieldPassword].Value()
	if username == "" || password == "" {
		m.errorMsg = "Username and password are required"
		return m, nil
	}

	m.loading = true
	m.errorMsg = ""
	ctx, a := m.ctx, m.auth
	return m, func() tea.Msg {
		return loginDoneMsg{err: a.Login(ctx, username, password)}
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render("Sign in"))
	b.WriteString("\n")

	labels := []string{"Username", "Password"}
	for i, in := range m.inputs {
		label := styles.Muted.Render(labels[i])
		if i == m.focus {
			label = styles.Primary.Bold(true).Render(labels[i])
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(in.View())
		b.WriteString("\n\n")
	}

	switch {
	case m.loading:
		b.WriteString(styles.WarningMsg.Render("Signing in..."))
		b.WriteString("\n")
	case m.errorMsg != "":
		b.WriteString(styles.ErrorMsg.Render("✗ " + m.errorMsg))
		b.WriteString("\n")
	}

	b.WriteString(styles.HelpBar.Render(
		styles.HelpKey.Render("tab") + " switch field  " +
			styles.HelpKey.Render("enter") + " sign in  " +
			styles.HelpKey.Render("esc") + " cancel",
	))
	return b.String()
}

// Run shows the form and reports whether the user signed in.
func Run(ctx context.Context, a Authenticator, username string) (bool, error) {
	p := tea.NewProgram(New(ctx, a, username), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	return final.(Model).Succeeded(), nil
}
