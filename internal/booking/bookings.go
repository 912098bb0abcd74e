package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/autocare/autocare/internal/api"
	"github.com/autocare/autocare/internal/errors"
	"github.com/autocare/autocare/internal/logging"
)

// BookingsAPI is the subset of *api.Endpoints used to manage existing bookings.
type BookingsAPI interface {
	ListBookings(ctx context.Context) ([]api.Booking, error)
	GetBooking(ctx context.Context, id api.ID) (*api.Booking, error)
	CancelBooking(ctx context.Context, id api.ID) (*api.Booking, error)
	ConfirmBooking(ctx context.Context, id api.ID) (*api.Booking, error)
}

// Manager lists and transitions existing bookings.
type Manager struct {
	api    BookingsAPI
	staff  StaffAPI
	role   func() string
	now    func() time.Time
	logger *logging.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithStaff enables the service-manager operations. role reports the
// signed-in role at call time.
func WithStaff(s StaffAPI, role func() string) ManagerOption {
	return func(m *Manager) {
		m.staff = s
		m.role = role
	}
}

// NewManager returns a Manager backed by b.
func NewManager(b BookingsAPI, logger *logging.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = logging.NopLogger()
	}
	m := &Manager{api: b, now: time.Now, logger: logger.WithComponent("bookings")}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// List returns the user's bookings.
func (m *Manager) List(ctx context.Context) ([]api.Booking, error) {
	bookings, err := m.api.ListBookings(ctx)
	if err != nil {
		m.logger.Warn("failed to fetch bookings", "error", err)
		return nil, err
	}
	return bookings, nil
}

// Get returns one booking.
func (m *Manager) Get(ctx context.Context, id api.ID) (*api.Booking, error) {
	b, err := m.api.GetBooking(ctx, id)
	if err != nil {
		m.logger.Warn("failed to fetch booking", "booking_id", string(id), "error", err)
		return nil, err
	}
	return b, nil
}

// Cancel cancels a pending booking.
func (m *Manager) Cancel(ctx context.Context, id api.ID) (*api.Booking, error) {
	return m.transition(ctx, id, "cancel", api.StatusCancelled, m.api.CancelBooking)
}

// Confirm confirms a pending booking.
func (m *Manager) Confirm(ctx context.Context, id api.ID) (*api.Booking, error) {
	return m.transition(ctx, id, "confirm", api.StatusConfirmed, m.api.ConfirmBooking)
}

// transition checks that the booking is still pending before asking the
// server to move it to next.
func (m *Manager) transition(
	ctx context.Context,
	id api.ID,
	verb string,
	next api.BookingStatus,
	call func(context.Context, api.ID) (*api.Booking, error),
) (*api.Booking, error) {
	current, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != api.StatusPending {
		return nil, fmt.Errorf("%w: only pending bookings can be %sed, booking %s is %s",
			errors.ErrInvalidInput, verb, id, current.Status)
	}

	updated, err := call(ctx, id)
	if err != nil {
		m.logger.Warn("failed to "+verb+" booking", "booking_id", string(id), "error", err)
		return nil, err
	}
	if updated == nil || updated.ID == "" {
		// Some endpoints answer with a bare acknowledgement.
		b := *current
		b.Status = next
		updated = &b
	}
	m.logger.Info("booking "+verb+"ed", "booking_id", string(id))
	return updated, nil
}

// GroupByStatus buckets bookings by status in api.StatusOrder. Bookings with
// an unrecognised status are appended under their own key at the end.
func GroupByStatus(bookings []api.Booking) ([]api.BookingStatus, map[api.BookingStatus][]api.Booking) {
	groups := make(map[api.BookingStatus][]api.Booking)
	for _, b := range bookings {
		groups[b.Status] = append(groups[b.Status], b)
	}

	var order []api.BookingStatus
	known := make(map[api.BookingStatus]bool, len(api.StatusOrder))
	for _, s := range api.StatusOrder {
		known[s] = true
		if len(groups[s]) > 0 {
			order = append(order, s)
		}
	}
	for _, b := range bookings {
		if !known[b.Status] {
			known[b.Status] = true
			order = append(order, b.Status)
		}
	}
	return order, groups
}

// StatusChange is a booking whose status differs between two polls.
type StatusChange struct {
	Booking api.Booking
	From    api.BookingStatus
	To      api.BookingStatus
}

// DiffStatuses compares two snapshots. New bookings are reported with an
// empty From.
func DiffStatuses(prev, curr []api.Booking) []StatusChange {
	before := make(map[api.ID]api.BookingStatus, len(prev))
	for _, b := range prev {
		before[b.ID] = b.Status
	}
	var changes []StatusChange
	for _, b := range curr {
		from, seen := before[b.ID]
		if !seen || from != b.Status {
			changes = append(changes, StatusChange{Booking: b, From: from, To: b.Status})
		}
	}
	return changes
}

// Watch polls the booking list every interval and calls fn with the status
// changes since the previous poll. The first poll only records a baseline.
// Fetch errors are logged and the poll is retried on the next tick. Watch
// returns when ctx is cancelled.
func (m *Manager) Watch(ctx context.Context, interval time.Duration, fn func([]StatusChange)) error {
	prev, err := m.List(ctx)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			curr, err := m.List(ctx)
			if err != nil {
				if errors.Is(err, errors.ErrSessionExpired) {
					return err
				}
				continue
			}
			if changes := DiffStatuses(prev, curr); len(changes) > 0 {
				fn(changes)
			}
			prev = curr
		}
	}
}
