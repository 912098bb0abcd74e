package booking

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/autocare/autocare/internal/api"
	"github.com/autocare/autocare/internal/errors"
)

type fakeBookings struct {
	mu       sync.Mutex
	bookings map[api.ID]api.Booking
	snaps    [][]api.Booking
	listErr  error
	bare     bool
	calls    atomic.Int32
}

func (f *fakeBookings) ListBookings(context.Context) ([]api.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.snaps) == 0 {
		return nil, nil
	}
	snap := f.snaps[0]
	if len(f.snaps) > 1 {
		f.snaps = f.snaps[1:]
	}
	return snap, nil
}

func (f *fakeBookings) GetBooking(_ context.Context, id api.ID) (*api.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, errors.NewNotFoundError("booking")
	}
	return &b, nil
}

func (f *fakeBookings) set(id api.ID, status api.BookingStatus) (*api.Booking, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.bookings[id]
	b.Status = status
	f.bookings[id] = b
	if f.bare {
		return &api.Booking{}, nil
	}
	return &b, nil
}

func (f *fakeBookings) CancelBooking(_ context.Context, id api.ID) (*api.Booking, error) {
	return f.set(id, api.StatusCancelled)
}

func (f *fakeBookings) ConfirmBooking(_ context.Context, id api.ID) (*api.Booking, error) {
	return f.set(id, api.StatusConfirmed)
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{bookings: map[api.ID]api.Booking{
		"b1": {ID: "b1", Status: api.StatusPending, BookingType: api.BookingTypeServicing},
		"b2": {ID: "b2", Status: api.StatusConfirmed, BookingType: api.BookingTypePurchase},
	}}
}

func TestManager_Transitions(t *testing.T) {
	tests := []struct {
		name       string
		id         api.ID
		confirm    bool
		bare       bool
		wantStatus api.BookingStatus
		wantErr    error
	}{
		{"cancel pending", "b1", false, false, api.StatusCancelled, nil},
		{"confirm pending", "b1", true, false, api.StatusConfirmed, nil},
		{"bare acknowledgement", "b1", true, true, api.StatusConfirmed, nil},
		{"cancel confirmed", "b2", false, false, "", errors.ErrInvalidInput},
		{"confirm missing", "b9", true, false, "", errors.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeBookings()
			fake.bare = tt.bare
			m := NewManager(fake, nil)

			op := m.Cancel
			if tt.confirm {
				op = m.Confirm
			}
			got, err := op(context.Background(), tt.id)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				if fake.calls.Load() != 0 {
					t.Error("server must not be asked to transition a non-pending booking")
				}
				return
			}
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if got.ID != tt.id || got.Status != tt.wantStatus {
				t.Errorf("booking = %+v, want %s %s", got, tt.id, tt.wantStatus)
			}
		})
	}
}

func TestGroupByStatus(t *testing.T) {
	bookings := []api.Booking{
		{ID: "1", Status: api.StatusCompleted},
		{ID: "2", Status: api.StatusPending},
		{ID: "3", Status: "on_hold"},
		{ID: "4", Status: api.StatusPending},
		{ID: "5", Status: api.StatusCancelled},
	}

	order, groups := GroupByStatus(bookings)
	want := []api.BookingStatus{api.StatusPending, api.StatusCompleted, api.StatusCancelled, "on_hold"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
	if len(groups[api.StatusPending]) != 2 || groups[api.StatusPending][0].ID != "2" {
		t.Errorf("pending group = %+v", groups[api.StatusPending])
	}
}

func TestDiffStatuses(t *testing.T) {
	prev := []api.Booking{
		{ID: "1", Status: api.StatusPending},
		{ID: "2", Status: api.StatusPending},
		{ID: "3", Status: api.StatusConfirmed},
	}
	curr := []api.Booking{
		{ID: "1", Status: api.StatusConfirmed},
		{ID: "2", Status: api.StatusPending},
		{ID: "4", Status: api.StatusPending},
	}

	changes := DiffStatuses(prev, curr)
	if len(changes) != 2 {
		t.Fatalf("DiffStatuses() = %+v, want 2 changes", changes)
	}
	if c := changes[0]; c.Booking.ID != "1" || c.From != api.StatusPending || c.To != api.StatusConfirmed {
		t.Errorf("changes[0] = %+v", c)
	}
	if c := changes[1]; c.Booking.ID != "4" || c.From != "" || c.To != api.StatusPending {
		t.Errorf("changes[1] = %+v", c)
	}
}

func TestManager_Watch(t *testing.T) {
	fake := newFakeBookings()
	fake.snaps = [][]api.Booking{
		{{ID: "1", Status: api.StatusPending}},
		{{ID: "1", Status: api.StatusConfirmed}},
	}
	m := NewManager(fake, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got := make(chan []StatusChange, 4)
	done := make(chan error, 1)
	go func() {
		done <- m.Watch(ctx, 10*time.Millisecond, func(c []StatusChange) { got <- c })
	}()

	select {
	case changes := <-got:
		if len(changes) != 1 || changes[0].To != api.StatusConfirmed {
			t.Errorf("changes = %+v", changes)
		}
	case <-ctx.Done():
		t.Fatal("no status change reported")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch() error = %v, want nil on cancel", err)
	}
	select {
	case extra := <-got:
		t.Errorf("unchanged polls should not be reported: %+v", extra)
	default:
	}
}

func TestManager_WatchStopsOnExpiredSession(t *testing.T) {
	fake := newFakeBookings()
	m := NewManager(fake, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- m.Watch(ctx, 10*time.Millisecond, func([]StatusChange) {})
	}()

	time.Sleep(30 * time.Millisecond)
	fake.mu.Lock()
	fake.listErr = errors.NewSessionExpiredError(nil)
	fake.mu.Unlock()

	select {
	case err := <-done:
		if !errors.Is(err, errors.ErrSessionExpired) {
			t.Errorf("Watch() error = %v, want ErrSessionExpired", err)
		}
	case <-ctx.Done():
		t.Fatal("Watch() did not stop on an expired session")
	}
}
