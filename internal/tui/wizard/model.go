// Package wizard is the terminal front end of booking.Wizard: a five-step
// form for creating a servicing or purchase booking.
package wizard

import (
	"context"
	"time"

	"github.com/autocare/autocare/internal/api"
	"github.com/autocare/autocare/internal/booking"
	"github.com/autocare/autocare/internal/logging"
	"github.com/autocare/autocare/internal/tui/keymap"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// bookingTypes are the choices on the first step, in display order.
var bookingTypes = []api.BookingType{api.BookingTypeServicing, api.BookingTypePurchase}

// Options configures the wizard UI.
type Options struct {
	Keymap         *keymap.Keymap
	ShowHelp       bool
	StatusDuration time.Duration
	Logger         *logging.Logger
}

// Model is the Bubbletea model for the booking wizard
type Model struct {
	ctx     context.Context
	wizard  *booking.Wizard
	catalog *booking.Catalog
	keymap  *keymap.Keymap
	help    help.Model
	logger  *logging.Logger

	width  int
	height int

	cursor     int // list cursor on the current step
	dayCursor  int // day of the displayed month
	timeFocus  bool
	tradeIn    int // index into catalog.TradeInOptions, -1 for none
	details    textinput.Model
	notes      textinput.Model
	submitting bool
	quitting   bool

	errorMessage   string
	infoMessage    string
	statusSeq      int
	statusDuration time.Duration
	showHelp       bool
}

// New creates a wizard model. ctx bounds the submit request.
func New(ctx context.Context, w *booking.Wizard, catalog *booking.Catalog, opts Options) Model {
	if opts.Keymap == nil {
		opts.Keymap = keymap.DefaultKeymap()
	}
	if opts.StatusDuration <= 0 {
		opts.StatusDuration = 4 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}
	if catalog == nil {
		catalog = &booking.Catalog{}
	}

	details := textinput.New()
	details.Placeholder = "What are you interested in?"
	details.CharLimit = 500
	details.Width = 50

	notes := textinput.New()
	notes.Placeholder = "Anything we should know? (optional)"
	notes.CharLimit = 500
	notes.Width = 50

	m := Model{
		ctx:            ctx,
		wizard:         w,
		catalog:        catalog,
		keymap:         opts.Keymap,
		help:           help.New(),
		logger:         opts.Logger.WithComponent("tui"),
		details:        details,
		notes:          notes,
		tradeIn:        -1,
		statusDuration: opts.StatusDuration,
		showHelp:       opts.ShowHelp,
	}
	m.enterStep()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Result returns the created booking, or nil if the wizard was cancelled.
func (m Model) Result() *api.Booking {
	return m.wizard.Result()
}

// mode returns the key binding mode for the current step and focus.
func (m Model) mode() keymap.Mode {
	switch m.wizard.Step() {
	case booking.StepDetails:
		if m.wizard.Draft().BookingType == api.BookingTypePurchase {
			return keymap.ModeText
		}
	case booking.StepSchedule:
		if !m.timeFocus {
			return keymap.ModeCalendar
		}
	case booking.StepConfirm:
		return keymap.ModeConfirm
	}
	return keymap.ModeList
}

// listLen returns the number of rows in the list shown on the current step.
func (m Model) listLen() int {
	d := m.wizard.Draft()
	switch m.wizard.Step() {
	case booking.StepType:
		return len(bookingTypes)
	case booking.StepVehicle:
		return len(m.catalog.VehiclesFor(d.BookingType))
	case booking.StepDetails:
		return len(m.catalog.Services)
	case booking.StepSchedule:
		return len(booking.TimeSlots)
	}
	return 0
}

// enterStep positions cursors and focus on the current selection of the
// step just entered, so going back shows what was picked.
func (m *Model) enterStep() {
	d := m.wizard.Draft()
	m.cursor = 0
	m.details.Blur()
	m.notes.Blur()

	switch m.wizard.Step() {
	case booking.StepType:
		for i, t := range bookingTypes {
			if t == d.BookingType {
				m.cursor = i
			}
		}
	case booking.StepVehicle:
		for i, v := range m.catalog.VehiclesFor(d.BookingType) {
			if v.ID == d.VehicleID {
				m.cursor = i
			}
		}
	case booking.StepDetails:
		if d.BookingType == api.BookingTypePurchase {
			m.details.SetValue(d.PurchaseDetails)
			m.details.Focus()
			m.tradeIn = -1
			for i, v := range m.catalog.TradeInOptions() {
				if v.ID == d.TradeInVehicleID {
					m.tradeIn = i
				}
			}
			return
		}
		for i, s := range m.catalog.Services {
			if s.ID == d.ServiceID {
				m.cursor = i
			}
		}
	case booking.StepSchedule:
		m.timeFocus = false
		m.dayCursor = m.initialDay(d.Date)
		for i, slot := range booking.TimeSlots {
			if slot == d.Time {
				m.cursor = i
			}
		}
	case booking.StepConfirm:
		m.notes.SetValue(d.Notes)
		m.notes.Focus()
	}
}

// initialDay picks the chosen day if it is on the displayed month, then
// today, then the first of the month.
func (m Model) initialDay(chosen booking.Date) int {
	cal := m.wizard.Calendar()
	if !chosen.IsZero() && cal.Contains(chosen) {
		return chosen.Day
	}
	if today := m.wizard.Today(); cal.Contains(today) {
		return today.Day
	}
	return 1
}

// Run shows the wizard until the booking is submitted or the user quits.
// It returns the created booking, or nil if the wizard was cancelled.
func Run(ctx context.Context, w *booking.Wizard, catalog *booking.Catalog, opts Options) (*api.Booking, error) {
	p := tea.NewProgram(New(ctx, w, catalog, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return nil, err
	}
	return w.Result(), nil
}
