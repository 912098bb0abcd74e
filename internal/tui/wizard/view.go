package wizard

import (
	"fmt"
	"strings"

	"github.com/autocare/autocare/internal/api"
	"github.com/autocare/autocare/internal/booking"
	"github.com/autocare/autocare/internal/tui/styles"
	"github.com/autocare/autocare/internal/util"
	"github.com/charmbracelet/lipgloss"
)

var weekdayHeader = []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render("Book an appointment"))
	b.WriteString("\n")
	b.WriteString(m.renderSteps())
	b.WriteString("\n\n")

	var body string
	switch m.wizard.Step() {
	case booking.StepType:
		body = m.renderTypeStep()
	case booking.StepVehicle:
		body = m.renderVehicleStep()
	case booking.StepDetails:
		body = m.renderDetailsStep()
	case booking.StepSchedule:
		body = m.renderScheduleStep()
	case booking.StepConfirm:
		body = m.renderConfirmStep()
	}
	b.WriteString(styles.ContentBox.Render(body))
	b.WriteString("\n")

	if status := m.renderStatus(); status != "" {
		b.WriteString(status)
		b.WriteString("\n")
	}

	switch {
	case m.help.ShowAll:
		b.WriteString(styles.HelpBar.Render(m.help.FullHelpView(m.keymap.FullHelpKeys(m.mode()))))
	case m.showHelp:
		b.WriteString(styles.HelpBar.Render(m.help.ShortHelpView(m.keymap.HelpKeys(m.mode()))))
	}

	return b.String()
}

func (m Model) renderSteps() string {
	current := m.wizard.Step()
	tabs := make([]string, 0, int(booking.LastStep))
	for s := booking.FirstStep; s <= booking.LastStep; s++ {
		label := fmt.Sprintf("%d %s", int(s), s)
		switch {
		case s == current:
			tabs = append(tabs, styles.TabActive.Render(label))
		case s < current:
			tabs = append(tabs, styles.TabDone.Render("✓ "+label))
		default:
			tabs = append(tabs, styles.TabInactive.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderList(heading string, rows []string) string {
	var b strings.Builder
	b.WriteString(styles.Primary.Bold(true).Render(heading))
	b.WriteString("\n\n")
	if len(rows) == 0 {
		b.WriteString(styles.Muted.Render("Nothing available"))
		return b.String()
	}
	for i, row := range rows {
		if m.width > 0 {
			row = util.TruncateANSI(row, m.width-10)
		}
		if i == m.cursor {
			b.WriteString(styles.ItemSelected.Render("> " + row))
		} else {
			b.WriteString(styles.Item.Render("  " + row))
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m Model) renderTypeStep() string {
	return m.renderList("What would you like to book?", []string{
		"Servicing  Maintenance or repair of your vehicle",
		"Purchase   Enquire about a vehicle from our stock",
	})
}

func (m Model) renderVehicleStep() string {
	d := m.wizard.Draft()
	heading := "Which of your vehicles needs servicing?"
	if d.BookingType == api.BookingTypePurchase {
		heading = "Which vehicle are you interested in?"
	}

	vehicles := m.catalog.VehiclesFor(d.BookingType)
	rows := make([]string, len(vehicles))
	for i, v := range vehicles {
		rows[i] = v.DisplayName()
		if v.Price != "" {
			rows[i] += styles.Muted.Render("  $" + string(v.Price))
		}
	}
	return m.renderList(heading, rows)
}

func (m Model) renderDetailsStep() string {
	d := m.wizard.Draft()
	if d.BookingType != api.BookingTypePurchase {
		rows := make([]string, len(m.catalog.Services))
		for i, s := range m.catalog.Services {
			rows[i] = s.Name
			if s.Cost != "" {
				rows[i] += styles.Muted.Render("  $" + string(s.Cost))
			}
		}
		return m.renderList("Which service do you need?", rows)
	}

	var b strings.Builder
	b.WriteString(styles.Primary.Bold(true).Render("Purchase details"))
	b.WriteString("\n\n")
	b.WriteString(m.details.View())
	b.WriteString("\n\n")

	tradeIn := "none"
	if options := m.catalog.TradeInOptions(); m.tradeIn >= 0 && m.tradeIn < len(options) {
		tradeIn = options[m.tradeIn].DisplayName()
	}
	b.WriteString(styles.Muted.Render("Trade-in: "))
	b.WriteString(styles.Text.Render(tradeIn))
	return b.String()
}

func (m Model) renderScheduleStep() string {
	calendar := m.renderCalendar()
	times := m.renderTimes()
	return lipgloss.JoinHorizontal(lipgloss.Top, calendar, "    ", times)
}

func (m Model) renderCalendar() string {
	cal := m.wizard.Calendar()
	today := m.wizard.Today()
	chosen := m.wizard.Draft().Date

	var b strings.Builder
	titleStyle := styles.Muted.Bold(true)
	if !m.timeFocus {
		titleStyle = styles.Primary.Bold(true)
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("‹ %s ›", cal.Title())))
	b.WriteString("\n")
	b.WriteString(styles.Muted.Render(strings.Join(weekdayHeader, " ")))
	b.WriteString("\n")

	for _, week := range cal.Weeks() {
		cells := make([]string, len(week))
		for i, day := range week {
			if day == 0 {
				cells[i] = "  "
				continue
			}
			label := fmt.Sprintf("%2d", day)
			date := cal.Date(day)
			switch {
			case !m.timeFocus && day == m.dayCursor:
				cells[i] = styles.DayCursor.Render(label)
			case date == chosen:
				cells[i] = styles.DayChosen.Render(label)
			case !cal.IsSelectable(day, today):
				cells[i] = styles.DayDisabled.Render(label)
			case date == today:
				cells[i] = styles.DayToday.Render(label)
			default:
				cells[i] = styles.Day.Render(label)
			}
		}
		b.WriteString(strings.Join(cells, " "))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// renderTimes lays the slots out in rows of four.
func (m Model) renderTimes() string {
	const perRow = 4
	chosen := m.wizard.Draft().Time

	var b strings.Builder
	titleStyle := styles.Muted.Bold(true)
	if m.timeFocus {
		titleStyle = styles.Primary.Bold(true)
	}
	b.WriteString(titleStyle.Render("Time"))
	b.WriteString("\n")

	for i, slot := range booking.TimeSlots {
		switch {
		case m.timeFocus && i == m.cursor:
			b.WriteString(styles.ItemSelected.Render(slot))
		case slot == chosen:
			b.WriteString(styles.Secondary.Bold(true).Padding(0, 1).Render(slot))
		default:
			b.WriteString(styles.Item.Render(slot))
		}
		if (i+1)%perRow == 0 {
			b.WriteString("\n")
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m Model) renderConfirmStep() string {
	d := m.wizard.Draft()

	rows := [][2]string{
		{"Type", string(d.BookingType)},
		{"Vehicle", m.vehicleName(d.VehicleID)},
	}
	if d.BookingType == api.BookingTypePurchase {
		rows = append(rows, [2]string{"Details", d.PurchaseDetails})
		if d.TradeInVehicleID != "" {
			rows = append(rows, [2]string{"Trade-in", m.vehicleName(d.TradeInVehicleID)})
		}
	} else {
		rows = append(rows, [2]string{"Service", m.serviceName(d.ServiceID)})
	}
	rows = append(rows,
		[2]string{"Date", d.Date.Time().Format("Monday, 2 January 2006")},
		[2]string{"Time", d.Time},
	)

	var b strings.Builder
	b.WriteString(styles.Primary.Bold(true).Render("Review your booking"))
	b.WriteString("\n\n")
	for _, r := range rows {
		b.WriteString(styles.Muted.Render(fmt.Sprintf("%-10s", r[0])))
		b.WriteString(styles.Text.Render(r[1]))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.Muted.Render("Notes"))
	b.WriteString("\n")
	b.WriteString(m.notes.View())
	return b.String()
}

func (m Model) renderStatus() string {
	if m.submitting {
		return styles.WarningMsg.Render("Submitting booking...")
	}
	if m.errorMessage != "" {
		return styles.ErrorMsg.Render("✗ " + m.errorMessage)
	}
	if m.infoMessage != "" {
		return styles.SuccessMsg.Render(m.infoMessage)
	}
	return ""
}
