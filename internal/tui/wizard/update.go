package wizard

import (
	"fmt"

	"github.com/autocare/autocare/internal/api"
	"github.com/autocare/autocare/internal/booking"
	"github.com/autocare/autocare/internal/errors"
	"github.com/autocare/autocare/internal/tui/keymap"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.errorMessage = ""
			m.infoMessage = ""
		}
		return m, nil

	case submitDoneMsg:
		return m.handleSubmitDone(msg)

	case tea.KeyMsg:
		return m.handleKeypress(msg)
	}

	return m, nil
}

func (m Model) handleKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	mode := m.mode()
	cmd, ok := m.keymap.GetBinding(msg, mode)
	if !ok {
		return m.forwardToInput(msg, mode)
	}

	switch cmd {
	case keymap.CmdQuit:
		m.wizard.Cancel()
		m.quitting = true
		return m, tea.Quit

	case keymap.CmdBack:
		return m.back()

	case keymap.CmdToggleHelp:
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case keymap.CmdUp:
		if mode == keymap.ModeCalendar {
			m.moveDay(-7)
		} else if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case keymap.CmdDown:
		if mode == keymap.ModeCalendar {
			m.moveDay(7)
		} else if m.cursor < m.listLen()-1 {
			m.cursor++
		}
		return m, nil

	case keymap.CmdLeft:
		m.moveDay(-1)
		return m, nil

	case keymap.CmdRight:
		m.moveDay(1)
		return m, nil

	case keymap.CmdPrevMonth:
		m.wizard.PrevMonth()
		m.dayCursor = m.clampDay(m.dayCursor)
		return m, nil

	case keymap.CmdNextMonth:
		m.wizard.NextMonth()
		m.dayCursor = m.clampDay(m.dayCursor)
		return m, nil

	case keymap.CmdToggleFocus:
		if m.wizard.Step() == booking.StepSchedule {
			m.timeFocus = !m.timeFocus
		}
		return m, nil

	case keymap.CmdTradeIn:
		return m.cycleTradeIn()

	case keymap.CmdSelect:
		return m.selectCurrent()

	case keymap.CmdSubmit:
		return m.startSubmit()
	}

	return m, nil
}

// forwardToInput hands unbound keys to the focused text field.
func (m Model) forwardToInput(msg tea.KeyMsg, mode keymap.Mode) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch mode {
	case keymap.ModeText:
		m.details, cmd = m.details.Update(msg)
	case keymap.ModeConfirm:
		m.notes, cmd = m.notes.Update(msg)
	}
	return m, cmd
}

func (m Model) back() (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, m.setError("Submission in progress")
	}
	if m.wizard.Step() == booking.FirstStep {
		m.wizard.Cancel()
		m.quitting = true
		return m, tea.Quit
	}
	if err := m.wizard.Back(); err != nil {
		return m, m.setError(errors.UserMessage(err))
	}
	m.errorMessage = ""
	m.enterStep()
	return m, nil
}

// selectCurrent applies the highlighted choice and advances.
func (m Model) selectCurrent() (tea.Model, tea.Cmd) {
	d := m.wizard.Draft()
	var err error

	switch m.wizard.Step() {
	case booking.StepType:
		err = m.wizard.SelectType(bookingTypes[m.cursor])

	case booking.StepVehicle:
		vehicles := m.catalog.VehiclesFor(d.BookingType)
		if len(vehicles) > 0 {
			err = m.wizard.SelectVehicle(vehicles[m.cursor].ID)
		}

	case booking.StepDetails:
		if d.BookingType == api.BookingTypePurchase {
			err = m.wizard.SetPurchaseDetails(m.details.Value())
		} else if len(m.catalog.Services) > 0 {
			err = m.wizard.SelectService(m.catalog.Services[m.cursor].ID)
		}

	case booking.StepSchedule:
		if !m.timeFocus {
			if err := m.wizard.SelectCalendarDay(m.dayCursor); err != nil {
				return m, m.setError("That day is not available")
			}
			m.timeFocus = true
			return m, nil
		}
		err = m.wizard.SelectTime(booking.TimeSlots[m.cursor])
	}
	if err != nil {
		return m, m.setError(errors.UserMessage(err))
	}
	return m.next()
}

func (m Model) next() (tea.Model, tea.Cmd) {
	if err := m.wizard.Next(); err != nil {
		return m, m.setError(errors.UserMessage(err))
	}
	m.errorMessage = ""
	m.enterStep()
	return m, nil
}

func (m Model) cycleTradeIn() (tea.Model, tea.Cmd) {
	options := m.catalog.TradeInOptions()
	if len(options) == 0 {
		return m, m.setInfo("You have no vehicles to trade in")
	}

	m.tradeIn++
	if m.tradeIn >= len(options) {
		m.tradeIn = -1
	}

	var id api.ID
	if m.tradeIn >= 0 {
		id = options[m.tradeIn].ID
	}
	if err := m.wizard.SetTradeIn(id); err != nil {
		return m, m.setError(errors.UserMessage(err))
	}
	return m, nil
}

func (m Model) startSubmit() (tea.Model, tea.Cmd) {
	if m.submitting || m.wizard.Submitting() {
		return m, m.setError(errors.UserMessage(errors.ErrSubmitInProgress))
	}
	if err := m.wizard.SetNotes(m.notes.Value()); err != nil {
		return m, m.setError(errors.UserMessage(err))
	}
	m.submitting = true
	m.errorMessage = ""
	m.infoMessage = "Submitting booking..."
	return m, submit(m.ctx, m.wizard)
}

func (m Model) handleSubmitDone(msg submitDoneMsg) (tea.Model, tea.Cmd) {
	m.submitting = false
	if msg.err != nil {
		m.logger.Warn("booking submission failed", "error", msg.err)
		m.infoMessage = ""
		return m, m.setError(errors.UserMessage(msg.err))
	}

	m.logger.Info("booking submitted", "booking_id", string(msg.booking.ID))
	m.quitting = true
	return m, tea.Quit
}

func (m *Model) moveDay(delta int) {
	m.dayCursor = m.clampDay(m.dayCursor + delta)
}

func (m Model) clampDay(day int) int {
	last := m.wizard.Calendar().DaysInMonth()
	switch {
	case day < 1:
		return 1
	case day > last:
		return last
	}
	return day
}

func (m *Model) setError(msg string) tea.Cmd {
	m.statusSeq++
	m.errorMessage = msg
	m.infoMessage = ""
	return clearStatusAfter(m.statusDuration, m.statusSeq)
}

func (m *Model) setInfo(msg string) tea.Cmd {
	m.statusSeq++
	m.infoMessage = msg
	m.errorMessage = ""
	return clearStatusAfter(m.statusDuration, m.statusSeq)
}

func (m Model) vehicleName(id api.ID) string {
	if v, ok := m.catalog.Vehicle(id); ok {
		return v.DisplayName()
	}
	return fmt.Sprintf("Vehicle #%s", id)
}

func (m Model) serviceName(id api.ID) string {
	if s, ok := m.catalog.Service(id); ok {
		return s.Name
	}
	return fmt.Sprintf("Service #%s", id)
}
