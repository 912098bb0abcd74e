package booking

import "time"

// Calendar is the month shown by the date picker. Navigating it never
// changes the draft.
type Calendar struct {
	Year  int
	Month time.Month
}

// NewCalendar returns the calendar for the month containing d.
func NewCalendar(d Date) Calendar {
	return Calendar{Year: d.Year, Month: d.Month}
}

// Title renders the month heading, e.g. "June 2025".
func (c Calendar) Title() string {
	return c.first().Format("January 2006")
}

func (c Calendar) first() time.Time {
	return time.Date(c.Year, c.Month, 1, 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the number of days in the month.
func (c Calendar) DaysInMonth() int {
	return c.first().AddDate(0, 1, -1).Day()
}

// Days returns the month as a Sunday-first grid: one 0 for every weekday
// before the 1st, followed by 1..DaysInMonth.
func (c Calendar) Days() []int {
	lead := int(c.first().Weekday())
	n := c.DaysInMonth()
	days := make([]int, lead, lead+n)
	for d := 1; d <= n; d++ {
		days = append(days, d)
	}
	return days
}

// Weeks splits Days into rows of seven, padding the last row with zeros.
func (c Calendar) Weeks() [][]int {
	days := c.Days()
	for len(days)%7 != 0 {
		days = append(days, 0)
	}
	weeks := make([][]int, 0, len(days)/7)
	for i := 0; i < len(days); i += 7 {
		weeks = append(weeks, days[i:i+7])
	}
	return weeks
}

// Date returns the date of day in this month.
func (c Calendar) Date(day int) Date {
	return Date{Year: c.Year, Month: c.Month, Day: day}
}

// Contains reports whether d falls in this month.
func (c Calendar) Contains(d Date) bool {
	return d.Year == c.Year && d.Month == c.Month
}

// IsSelectable reports whether day exists in this month and is not before today.
func (c Calendar) IsSelectable(day int, today Date) bool {
	if day < 1 || day > c.DaysInMonth() {
		return false
	}
	return !c.Date(day).Before(today)
}

// Next returns the following month.
func (c Calendar) Next() Calendar {
	t := c.first().AddDate(0, 1, 0)
	return Calendar{Year: t.Year(), Month: t.Month()}
}

// Prev returns the preceding month.
func (c Calendar) Prev() Calendar {
	t := c.first().AddDate(0, -1, 0)
	return Calendar{Year: t.Year(), Month: t.Month()}
}
