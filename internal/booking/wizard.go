package booking

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/autocare/autocare/internal/api"
	"github.com/autocare/autocare/internal/errors"
	"github.com/autocare/autocare/internal/logging"
)

type entryKind int

const (
	entryFresh entryKind = iota
	entryService
	entryVehicle
)

// Entry is how the wizard was opened. Build one with Fresh,
// PreselectedService or PreselectedVehicle.
type Entry struct {
	kind      entryKind
	serviceID api.ID
	vehicle   api.Vehicle
}

// Fresh opens the wizard at the booking type step with an empty draft.
func Fresh() Entry {
	return Entry{kind: entryFresh}
}

// PreselectedService opens a servicing booking for the given service at the
// vehicle step.
func PreselectedService(id api.ID) Entry {
	return Entry{kind: entryService, serviceID: id}
}

// PreselectedVehicle opens a purchase inquiry for the given dealership
// vehicle at the vehicle step.
func PreselectedVehicle(id api.ID) Entry {
	return Entry{kind: entryVehicle, vehicle: api.Vehicle{ID: id}}
}

// WithVehicleDetails attaches the preselected vehicle's make, model and year
// so purchase details can be pre-filled. It has no effect on other entries.
func (e Entry) WithVehicleDetails(v api.Vehicle) Entry {
	if e.kind == entryVehicle {
		v.ID = e.vehicle.ID
		e.vehicle = v
	}
	return e
}

// InitialStep is the step the wizard opens at.
func (e Entry) InitialStep() Step {
	if e.kind == entryFresh {
		return StepType
	}
	return StepVehicle
}

// ImpliedType is the booking type a preselected entry implies, or "".
func (e Entry) ImpliedType() api.BookingType {
	switch e.kind {
	case entryService:
		return api.BookingTypeServicing
	case entryVehicle:
		return api.BookingTypePurchase
	default:
		return ""
	}
}

func (e Entry) String() string {
	switch e.kind {
	case entryService:
		return fmt.Sprintf("preselected service %s", e.serviceID)
	case entryVehicle:
		return fmt.Sprintf("preselected vehicle %s", e.vehicle.ID)
	default:
		return "fresh"
	}
}

func (e Entry) purchaseDetails() string {
	if e.kind != entryVehicle || e.vehicle.Make == "" {
		return ""
	}
	return InterestedIn(e.vehicle)
}

// Submitter creates the booking. *api.Endpoints satisfies it.
type Submitter interface {
	CreateBooking(ctx context.Context, in api.BookingRequest) (*api.Booking, error)
}

// Wizard is the five-step booking form controller. It is safe for concurrent
// use; at most one Submit can be in flight at a time.
type Wizard struct {
	submitter Submitter
	now       func() time.Time
	logger    *logging.Logger
	entry     Entry

	mu         sync.Mutex
	step       Step
	draft      Draft
	err        error
	calendar   Calendar
	submitting bool
	closed     bool
	result     *api.Booking
}

// WizardOption configures a Wizard.
type WizardOption func(*Wizard)

// WithClock sets the function used to decide what "today" is.
func WithClock(now func() time.Time) WizardOption {
	return func(w *Wizard) {
		w.now = now
	}
}

// WithWizardLogger sets the wizard logger.
func WithWizardLogger(logger *logging.Logger) WizardOption {
	return func(w *Wizard) {
		if logger != nil {
			w.logger = logger.WithComponent("wizard")
		}
	}
}

// NewWizard opens a wizard for entry. Bookings are created through submitter.
func NewWizard(entry Entry, submitter Submitter, opts ...WizardOption) *Wizard {
	w := &Wizard{
		submitter: submitter,
		now:       time.Now,
		logger:    logging.NopLogger(),
		entry:     entry,
		step:      entry.InitialStep(),
	}
	for _, opt := range opts {
		opt(w)
	}

	if t := entry.ImpliedType(); t != "" {
		w.draft.BookingType = t
		w.draft.VehicleContext = VehicleContextFor(t)
	}
	switch entry.kind {
	case entryService:
		w.draft.ServiceID = entry.serviceID
	case entryVehicle:
		w.draft.VehicleID = entry.vehicle.ID
		w.draft.PurchaseDetails = entry.purchaseDetails()
	}
	w.calendar = NewCalendar(w.today())

	w.logger.Debug("wizard opened", "entry", entry.String(), "step", int(w.step))
	return w
}

func (w *Wizard) today() Date {
	return DateOf(w.now())
}

// Entry returns how the wizard was opened.
func (w *Wizard) Entry() Entry {
	return w.entry
}

// Step returns the current step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Draft returns a copy of the draft record.
func (w *Wizard) Draft() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// Err returns the error shown on the current step, or nil.
func (w *Wizard) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Submitting reports whether a Submit is in flight.
func (w *Wizard) Submitting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitting
}

// Closed reports whether the wizard was cancelled or submitted successfully.
func (w *Wizard) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// Result returns the created booking after a successful Submit.
func (w *Wizard) Result() *api.Booking {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

// Calendar returns the month shown by the date picker.
func (w *Wizard) Calendar() Calendar {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calendar
}

// Today returns the current calendar day according to the wizard clock.
func (w *Wizard) Today() Date {
	return w.today()
}

// Next advances one step if the current step's gate passes. A failed gate
// leaves the cursor in place and is recorded as the step error. Next on the
// last step is a no-op.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return errors.ErrWizardClosed
	}
	if w.step >= LastStep {
		return nil
	}
	if err := w.draft.Gate(w.step); err != nil {
		w.err = err
		w.logger.Debug("step gate failed", "step", int(w.step), "reason", err.Error())
		return err
	}
	w.err = nil
	w.step++
	return nil
}

// Back moves one step back without validation. Back on the first step is a no-op.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return errors.ErrWizardClosed
	}
	if w.step > FirstStep {
		w.step--
		w.err = nil
	}
	return nil
}

func (w *Wizard) mutate(fn func(d *Draft) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return errors.ErrWizardClosed
	}
	return fn(&w.draft)
}

// SelectType sets the booking type. The vehicle and service selections are
// discarded so they cannot refer to the other flow's entities; the preselected
// service id or purchase details are re-applied when switching back to the
// entry's own type.
func (w *Wizard) SelectType(t api.BookingType) error {
	if _, err := ParseBookingType(string(t)); err != nil {
		return err
	}
	return w.mutate(func(d *Draft) error {
		d.BookingType = t
		d.VehicleContext = VehicleContextFor(t)
		d.VehicleID = ""
		d.ServiceID = ""
		d.PurchaseDetails = ""
		d.TradeInVehicleID = ""

		switch {
		case t == api.BookingTypeServicing && w.entry.kind == entryService:
			d.ServiceID = w.entry.serviceID
		case t == api.BookingTypePurchase && w.entry.kind == entryVehicle:
			d.PurchaseDetails = w.entry.purchaseDetails()
		}
		return nil
	})
}

// SelectVehicle sets the vehicle the booking is for.
func (w *Wizard) SelectVehicle(id api.ID) error {
	return w.mutate(func(d *Draft) error {
		d.VehicleID = id
		return nil
	})
}

// SelectService sets the primary service of a servicing booking.
func (w *Wizard) SelectService(id api.ID) error {
	return w.mutate(func(d *Draft) error {
		d.ServiceID = id
		return nil
	})
}

// SetPurchaseDetails sets the free-text purchase inquiry.
func (w *Wizard) SetPurchaseDetails(s string) error {
	return w.mutate(func(d *Draft) error {
		d.PurchaseDetails = s
		return nil
	})
}

// SetTradeIn sets the optional trade-in vehicle. An empty id clears it.
func (w *Wizard) SetTradeIn(id api.ID) error {
	return w.mutate(func(d *Draft) error {
		d.TradeInVehicleID = id
		return nil
	})
}

// SelectDate sets the booking date. Days that do not exist or lie before
// today are rejected.
func (w *Wizard) SelectDate(date Date) error {
	if !date.Valid() {
		return fmt.Errorf("%w: %04d-%02d-%02d is not a calendar day",
			errors.ErrInvalidInput, date.Year, int(date.Month), date.Day)
	}
	today := w.today()
	return w.mutate(func(d *Draft) error {
		if date.Before(today) {
			return fmt.Errorf("%w: %s is in the past", errors.ErrInvalidInput, date)
		}
		d.Date = date
		w.calendar = NewCalendar(date)
		return nil
	})
}

// SelectCalendarDay selects day of the month currently shown by the calendar.
func (w *Wizard) SelectCalendarDay(day int) error {
	cal := w.Calendar()
	if !cal.IsSelectable(day, w.today()) {
		return fmt.Errorf("%w: %s %d is not selectable", errors.ErrInvalidInput, cal.Title(), day)
	}
	return w.SelectDate(cal.Date(day))
}

// SelectTime sets the booking time, which must be one of TimeSlots.
func (w *Wizard) SelectTime(slot string) error {
	slot = strings.TrimSpace(slot)
	if !IsTimeSlot(slot) {
		return fmt.Errorf("%w: %q is not an available time slot", errors.ErrInvalidInput, slot)
	}
	return w.mutate(func(d *Draft) error {
		d.Time = slot
		return nil
	})
}

// SetNotes sets the optional notes.
func (w *Wizard) SetNotes(s string) error {
	return w.mutate(func(d *Draft) error {
		d.Notes = s
		return nil
	})
}

// NextMonth shows the following month in the date picker.
func (w *Wizard) NextMonth() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calendar = w.calendar.Next()
}

// PrevMonth shows the preceding month in the date picker.
func (w *Wizard) PrevMonth() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calendar = w.calendar.Prev()
}

// Submit sends the draft from the confirm step. A Submit while another is in
// flight returns ErrSubmitInProgress without calling the submitter. On success
// the wizard closes and the created booking is returned; on failure the wizard
// stays on the confirm step with the error recorded.
func (w *Wizard) Submit(ctx context.Context) (*api.Booking, error) {
	w.mu.Lock()
	switch {
	case w.closed:
		w.mu.Unlock()
		return nil, errors.ErrWizardClosed
	case w.submitting:
		w.mu.Unlock()
		return nil, errors.ErrSubmitInProgress
	case w.step != StepConfirm:
		w.mu.Unlock()
		return nil, fmt.Errorf("%w: submit is only available on the %s step", errors.ErrInvalidInput, StepConfirm)
	}
	if err := w.draft.Validate(); err != nil {
		w.err = err
		w.mu.Unlock()
		w.logger.Warn("draft failed validation", "error", err)
		return nil, err
	}
	if date := w.draft.Date; date.Before(w.today()) {
		err := errors.NewGateError(int(StepSchedule), MsgPastDate)
		w.err = err
		w.mu.Unlock()
		w.logger.Warn("draft date is in the past", "date", date.String())
		return nil, err
	}
	w.submitting = true
	w.err = nil
	req := w.draft.Request()
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.submitting = false
		w.mu.Unlock()
	}()

	booking, err := w.submitter.CreateBooking(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err == nil && booking == nil {
		err = errors.New("create booking: empty response")
	}
	if err != nil {
		w.err = err
		w.logger.Warn("create booking failed", "error", err)
		return nil, err
	}
	w.closed = true
	w.result = booking
	w.draft = Draft{}
	w.logger.Info("booking created", "booking_id", string(booking.ID), "status", string(booking.Status))
	return booking, nil
}

// Cancel closes the wizard and discards the draft.
func (w *Wizard) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	w.draft = Draft{}
	w.err = nil
	w.logger.Debug("wizard cancelled", "step", int(w.step))
}
