package booking

import "slices"

// TimeSlots are the appointment start times offered by the dealership.
var TimeSlots = []string{
	"09:00", "09:15", "09:30", "09:45",
	"10:00", "10:15", "10:30", "10:45",
	"11:00", "13:00", "13:15", "13:30",
	"13:45", "14:00", "14:15", "14:30",
	"14:45", "15:00", "16:15", "16:30", "16:45",
}

// IsTimeSlot reports whether s is one of TimeSlots.
func IsTimeSlot(s string) bool {
	return slices.Contains(TimeSlots, s)
}
