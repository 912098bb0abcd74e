package wizard

import (
	"context"
	"time"

	"github.com/autocare/autocare/internal/api"
	"github.com/autocare/autocare/internal/booking"
	tea "github.com/charmbracelet/bubbletea"
)

// submitDoneMsg is sent when the create-booking request returns
type submitDoneMsg struct {
	booking *api.Booking
	err     error
}

// clearStatusMsg clears the status line if nothing newer replaced it
type clearStatusMsg struct {
	seq int
}

// submit runs Wizard.Submit off the UI goroutine.
func submit(ctx context.Context, w *booking.Wizard) tea.Cmd {
	return func() tea.Msg {
		b, err := w.Submit(ctx)
		return submitDoneMsg{booking: b, err: err}
	}
}

func clearStatusAfter(d time.Duration, seq int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}
