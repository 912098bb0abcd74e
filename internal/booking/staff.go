package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/autocare/autocare/internal/api"
	"github.com/autocare/autocare/internal/errors"
)

// StaffAPI is the subset of *api.Endpoints reserved for service managers.
type StaffAPI interface {
	UpdateBookingStatus(ctx context.Context, id api.ID, status api.BookingStatus) (*api.Booking, error)
	ListServiceHistory(ctx context.Context) ([]api.ServiceHistory, error)
	ListReminders(ctx context.Context) ([]api.Reminder, error)
	CreateReminder(ctx context.Context, in api.ReminderRequest) (*api.Reminder, error)
}

// ParseStatus accepts any status in api.StatusOrder.
func ParseStatus(s string) (api.BookingStatus, error) {
	status := api.BookingStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range api.StatusOrder {
		if status == known {
			return status, nil
		}
	}
	names := make([]string, len(api.StatusOrder))
	for i, known := range api.StatusOrder {
		names[i] = string(known)
	}
	return "", fmt.Errorf("%w: unknown status %q (want one of %s)", errors.ErrInvalidInput, s, strings.Join(names, ", "))
}

// IsFinal reports whether a booking in status can no longer change.
func IsFinal(status api.BookingStatus) bool {
	return status == api.StatusCompleted || status == api.StatusCancelled
}

func (m *Manager) requireStaff(op string) error {
	if m.staff == nil || m.role == nil || !api.IsStaffRole(m.role()) {
		return fmt.Errorf("%w: %s is only available to service managers", errors.ErrPermissionDenied, op)
	}
	return nil
}

// SetStatus moves a booking to any status. Completed and cancelled bookings
// are final. Setting the current status again returns the booking unchanged.
func (m *Manager) SetStatus(ctx context.Context, id api.ID, status api.BookingStatus) (*api.Booking, error) {
	if err := m.requireStaff("changing a booking status"); err != nil {
		return nil, err
	}
	if _, err := ParseStatus(string(status)); err != nil {
		return nil, err
	}
	current, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == status {
		return current, nil
	}
	if IsFinal(current.Status) {
		return nil, fmt.Errorf("%w: booking %s is already %s", errors.ErrInvalidInput, id, current.Status)
	}

	updated, err := m.staff.UpdateBookingStatus(ctx, id, status)
	if err != nil {
		m.logger.Warn("failed to update booking status", "booking_id", string(id), "status", string(status), "error", err)
		return nil, err
	}
	if updated == nil || updated.ID == "" {
		b := *current
		b.Status = status
		updated = &b
	}
	m.logger.Info("booking status updated", "booking_id", string(id), "from", string(current.Status), "to", string(status))
	return updated, nil
}

// History returns the service history of every vehicle the manager can see.
func (m *Manager) History(ctx context.Context) ([]api.ServiceHistory, error) {
	if err := m.requireStaff("service history"); err != nil {
		return nil, err
	}
	history, err := m.staff.ListServiceHistory(ctx)
	if err != nil {
		m.logger.Warn("failed to fetch service history", "error", err)
		return nil, err
	}
	return history, nil
}

// Reminders returns the scheduled booking reminders.
func (m *Manager) Reminders(ctx context.Context) ([]api.Reminder, error) {
	if err := m.requireStaff("reminders"); err != nil {
		return nil, err
	}
	reminders, err := m.staff.ListReminders(ctx)
	if err != nil {
		m.logger.Warn("failed to fetch reminders", "error", err)
		return nil, err
	}
	return reminders, nil
}

// ReminderInput is a reminder as entered by the manager.
type ReminderInput struct {
	Booking api.ID
	Message string
	Date    string
	Time    string
}

// CreateReminder validates in and schedules it. The date may not lie before
// today and the time is HH:MM.
func (m *Manager) CreateReminder(ctx context.Context, in ReminderInput) (*api.Reminder, error) {
	if err := m.requireStaff("creating reminders"); err != nil {
		return nil, err
	}

	var problems []string
	if in.Booking == "" {
		problems = append(problems, "booking is required")
	}
	if strings.TrimSpace(in.Message) == "" {
		problems = append(problems, "message is required")
	}
	date, err := ParseDate(in.Date)
	switch {
	case err != nil:
		problems = append(problems, err.Error())
	case date.Before(DateOf(m.now())):
		problems = append(problems, fmt.Sprintf("reminder date %s is in the past", date))
	}
	if _, err := time.Parse("15:04", in.Time); err != nil {
		problems = append(problems, fmt.Sprintf("invalid time %q, want HH:MM", in.Time))
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", errors.ErrInvalidInput, strings.Join(problems, "; "))
	}

	rem, err := m.staff.CreateReminder(ctx, api.ReminderRequest{
		Booking:      in.Booking,
		Message:      strings.TrimSpace(in.Message),
		ReminderDate: date.String(),
		ReminderTime: in.Time,
	})
	if err != nil {
		m.logger.Warn("failed to create reminder", "booking_id", string(in.Booking), "error", err)
		return nil, err
	}
	m.logger.Info("reminder created", "booking_id", string(in.Booking), "reminder_id", string(rem.ID))
	return rem, nil
}
