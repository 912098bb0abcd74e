// Package booking implements the client side of creating and managing
// bookings: the draft record and its validation rules, the five-step wizard
// that fills it in, the reference-data catalog the wizard offers choices
// from, and operations on existing bookings and favorites.
package booking

import (
	"fmt"
	"strings"

	"github.com/autocare/autocare/internal/api"
	"github.com/autocare/autocare/internal/errors"
)

// Step is the wizard cursor position, 1 through 5.
type Step int

const (
	StepType Step = iota + 1
	StepVehicle
	StepDetails
	StepSchedule
	StepConfirm
)

// FirstStep and LastStep bound the cursor.
const (
	FirstStep = StepType
	LastStep  = StepConfirm
)

func (s Step) String() string {
	switch s {
	case StepType:
		return "Type"
	case StepVehicle:
		return "Vehicle"
	case StepDetails:
		return "Details"
	case StepSchedule:
		return "Schedule"
	case StepConfirm:
		return "Confirm"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

// Gate messages shown when a step's requirement is unmet.
const (
	MsgSelectType      = "Please select a booking type"
	MsgSelectVehicle   = "Please select a vehicle"
	MsgSelectService   = "Please select a service"
	MsgPurchaseDetails = "Please enter purchase details"
	MsgDateAndTime     = "Please select both date and time"
	MsgPastDate        = "Date cannot be in the past"
)

// VehicleContextFor returns the vehicle context implied by a booking type,
// or "" for an unknown type.
func VehicleContextFor(t api.BookingType) api.VehicleContext {
	switch t {
	case api.BookingTypeServicing:
		return api.VehicleCustomerOwned
	case api.BookingTypePurchase:
		return api.VehicleDealership
	default:
		return ""
	}
}

// ParseBookingType accepts "servicing" or "purchase".
func ParseBookingType(s string) (api.BookingType, error) {
	switch t := api.BookingType(strings.ToLower(strings.TrimSpace(s))); t {
	case api.BookingTypeServicing, api.BookingTypePurchase:
		return t, nil
	default:
		return "", fmt.Errorf("%w: booking type must be servicing or purchase, got %q", errors.ErrInvalidInput, s)
	}
}

// Draft is the booking being assembled by the wizard.
type Draft struct {
	BookingType      api.BookingType
	VehicleID        api.ID
	VehicleContext   api.VehicleContext
	ServiceID        api.ID
	PurchaseDetails  string
	TradeInVehicleID api.ID
	Date             Date
	Time             string
	Notes            string
}

// Gate checks the requirement of a single wizard step and returns a
// *errors.GateError if it is unmet. StepConfirm has no gate.
func (d Draft) Gate(step Step) error {
	switch step {
	case StepType:
		if d.BookingType == "" {
			return errors.NewGateError(int(step), MsgSelectType)
		}
	case StepVehicle:
		if d.VehicleID == "" {
			return errors.NewGateError(int(step), MsgSelectVehicle)
		}
	case StepDetails:
		if d.BookingType == api.BookingTypeServicing && d.ServiceID == "" {
			return errors.NewGateError(int(step), MsgSelectService)
		}
		if d.BookingType == api.BookingTypePurchase && strings.TrimSpace(d.PurchaseDetails) == "" {
			return errors.NewGateError(int(step), MsgPurchaseDetails)
		}
	case StepSchedule:
		if d.Date.IsZero() || d.Time == "" {
			return errors.NewGateError(int(step), MsgDateAndTime)
		}
	}
	return nil
}

// Validate checks the whole record before submission. It reports every
// missing field required by the booking type and any vehicle context that
// disagrees with it.
func (d Draft) Validate() error {
	var errs []error
	add := func(msg string) {
		errs = append(errs, fmt.Errorf("%w: %s", errors.ErrInvalidInput, msg))
	}

	switch d.BookingType {
	case api.BookingTypeServicing:
		if d.ServiceID == "" {
			add("Primary service is required for servicing bookings")
		}
		if d.VehicleContext != api.VehicleCustomerOwned {
			add("Service bookings must use customer-owned vehicles")
		}
	case api.BookingTypePurchase:
		if strings.TrimSpace(d.PurchaseDetails) == "" {
			add("Purchase details are required for purchase inquiries")
		}
		if d.VehicleContext != api.VehicleDealership {
			add("Purchase inquiries must reference dealership vehicles")
		}
	default:
		add("Booking type is required")
	}

	if d.VehicleID == "" || d.Date.IsZero() || d.Time == "" {
		add("Vehicle, date, and time are required fields")
	}
	if d.Time != "" && !IsTimeSlot(d.Time) {
		add(fmt.Sprintf("%s is not an available time slot", d.Time))
	}
	return errors.Join(errs...)
}

// Request converts the draft into the create-booking payload. Fields that do
// not apply to the booking type are dropped.
func (d Draft) Request() api.BookingRequest {
	req := api.BookingRequest{
		BookingType:    d.BookingType,
		VehicleID:      d.VehicleID,
		VehicleContext: VehicleContextFor(d.BookingType),
		Date:           d.Date.String(),
		Time:           d.Time,
		Notes:          strings.TrimSpace(d.Notes),
	}
	switch d.BookingType {
	case api.BookingTypeServicing:
		req.ServiceID = d.ServiceID
	case api.BookingTypePurchase:
		req.PurchaseDetails = strings.TrimSpace(d.PurchaseDetails)
		req.TradeInVehicleID = d.TradeInVehicleID
	}
	return req
}

// InterestedIn is the purchase details pre-filled for a preselected vehicle.
func InterestedIn(v api.Vehicle) string {
	return fmt.Sprintf("Interested in %s %s (%s)", v.Make, v.Model, v.Year)
}
