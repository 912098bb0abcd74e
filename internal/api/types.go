package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// flexString accepts either a JSON string or a bare number and keeps its text.
// The API serializes primary keys and decimals inconsistently across endpoints.
func flexString(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", fmt.Errorf("expected string or number, got %s", data)
	}
	return n.String(), nil
}

// ID is a server-assigned identifier, numeric or UUID depending on the resource.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	s, err := flexString(data)
	*id = ID(s)
	return err
}

// Decimal is a monetary amount as the server formats it.
type Decimal string

func (d *Decimal) UnmarshalJSON(data []byte) error {
	s, err := flexString(data)
	*d = Decimal(s)
	return err
}

// BookingType selects which of the two booking flows a record belongs to.
type BookingType string

const (
	BookingTypeServicing BookingType = "servicing"
	BookingTypePurchase  BookingType = "purchase"
)

// VehicleContext says whose vehicle a booking refers to.
type VehicleContext string

const (
	VehicleCustomerOwned VehicleContext = "customer_owned"
	VehicleDealership    VehicleContext = "dealership_vehicle"
)

// BookingStatus is the server-side lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
)

// StatusOrder is the display order used when grouping bookings by status.
var StatusOrder = []BookingStatus{StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled}

// User identifies the logged-in account.
type User struct {
	ID       ID     `json:"id" yaml:"id"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Email    string `json:"email,omitempty" yaml:"email,omitempty"`
	Role     string `json:"role,omitempty" yaml:"role,omitempty"`
}

// Vehicle is either a customer's own vehicle or dealership stock.
type Vehicle struct {
	ID              ID      `json:"id" yaml:"id"`
	Make            string  `json:"make" yaml:"make"`
	Model           string  `json:"model" yaml:"model"`
	Year            Decimal `json:"year" yaml:"year"`
	VIN             string  `json:"vin,omitempty" yaml:"vin,omitempty"`
	Price           Decimal `json:"price,omitempty" yaml:"price,omitempty"`
	IsCustomerOwned bool    `json:"is_customer_owned" yaml:"is_customer_owned"`
	Image           string  `json:"image,omitempty" yaml:"image,omitempty"`
}

// DisplayName renders "Make Model (Year)".
func (v Vehicle) DisplayName() string {
	if v.Year == "" {
		return fmt.Sprintf("%s %s", v.Make, v.Model)
	}
	return fmt.Sprintf("%s %s (%s)", v.Make, v.Model, v.Year)
}

// Service is a servicing offer from the catalog.
type Service struct {
	ID          ID      `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Cost        Decimal `json:"cost" yaml:"cost"`
	Image       string  `json:"image,omitempty" yaml:"image,omitempty"`
}

// BookingRequest is the body of POST /bookings/.
type BookingRequest struct {
	BookingType      BookingType    `json:"booking_type"`
	VehicleID        ID             `json:"vehicle_id"`
	VehicleContext   VehicleContext `json:"vehicle_context"`
	ServiceID        ID             `json:"service_id,omitempty"`
	PurchaseDetails  string         `json:"purchase_details,omitempty"`
	TradeInVehicleID ID             `json:"trade_in_vehicle_id,omitempty"`
	Date             string         `json:"date"`
	Time             string         `json:"time"`
	Notes            string         `json:"notes,omitempty"`
}

// Booking is a booking record as returned by the server.
type Booking struct {
	ID               ID             `json:"id" yaml:"id"`
	Status           BookingStatus  `json:"status" yaml:"status"`
	BookingType      BookingType    `json:"booking_type" yaml:"booking_type"`
	VehicleID        ID             `json:"vehicle_id,omitempty" yaml:"vehicle_id,omitempty"`
	VehicleContext   VehicleContext `json:"vehicle_context,omitempty" yaml:"vehicle_context,omitempty"`
	ServiceID        ID             `json:"service_id,omitempty" yaml:"service_id,omitempty"`
	PurchaseDetails  string         `json:"purchase_details,omitempty" yaml:"purchase_details,omitempty"`
	TradeInVehicleID ID             `json:"trade_in_vehicle_id,omitempty" yaml:"trade_in_vehicle_id,omitempty"`
	Date             string         `json:"date" yaml:"date"`
	Time             string         `json:"time" yaml:"time"`
	Notes            string         `json:"notes,omitempty" yaml:"notes,omitempty"`
	FinalCost        Decimal        `json:"final_cost,omitempty" yaml:"final_cost,omitempty"`
	CreatedAt        string         `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	VehicleDetails   *Vehicle       `json:"vehicle_details,omitempty" yaml:"vehicle_details,omitempty"`
	PrimaryService   *Service       `json:"primary_service,omitempty" yaml:"primary_service,omitempty"`
}

// Title is the one-line heading used in booking lists.
func (b Booking) Title() string {
	if b.BookingType == BookingTypeServicing {
		if b.PrimaryService != nil && b.PrimaryService.Name != "" {
			return b.PrimaryService.Name
		}
		return "Vehicle Service"
	}
	return "Purchase Inquiry"
}

// FavoriteType names the kind of entity a favorite points at.
type FavoriteType string

const (
	FavoriteService FavoriteType = "service"
	FavoriteVehicle FavoriteType = "vehicle"
)

// Favorite is a bookmarked service or vehicle.
type Favorite struct {
	ID          ID           `json:"id" yaml:"id"`
	Type        FavoriteType `json:"type" yaml:"type"`
	Name        string       `json:"name,omitempty" yaml:"name,omitempty"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Year        Decimal      `json:"year,omitempty" yaml:"year,omitempty"`
	Model       string       `json:"model,omitempty" yaml:"model,omitempty"`
	User        ID           `json:"user,omitempty" yaml:"user,omitempty"`
	Vehicle     ID           `json:"vehicle,omitempty" yaml:"vehicle,omitempty"`
	Service     ID           `json:"service,omitempty" yaml:"service,omitempty"`
}

// Target returns the id of the service or vehicle this favorite points at.
func (f Favorite) Target() ID {
	if f.Type == FavoriteService {
		return f.Service
	}
	return f.Vehicle
}

// LoginResponse is returned by POST /login.
type LoginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	Role    string `json:"role,omitempty"`
	User    *User  `json:"user,omitempty"`
	UserID  ID     `json:"user_id,omitempty"`
}

// RefreshResponse is returned by POST /token/refresh. Refresh is only set when
// the server rotates refresh tokens.
type RefreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// AuthStatus is returned by GET /authenticated.
type AuthStatus struct {
	Authenticated bool   `json:"authenticated"`
	Role          string `json:"role,omitempty"`
	User          *User  `json:"user,omitempty"`
	UserID        ID     `json:"user_id,omitempty"`
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// Account roles as the server names them.
const (
	RoleCustomer       = "customer"
	RoleServiceManager = "service_manager"
	RoleAdmin          = "admin"
)

// IsStaffRole reports whether role may manage other users' bookings. The
// server and older tokens spell the manager role several ways.
func IsStaffRole(role string) bool {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(role)), " ", "_") {
	case RoleServiceManager, RoleAdmin, "manager":
		return true
	}
	return false
}

// BookingStatusRequest is the body of PATCH /bookings/{id}/.
type BookingStatusRequest struct {
	Status BookingStatus `json:"status"`
}

// ServiceHistory is a completed service on a vehicle.
type ServiceHistory struct {
	ID          ID       `json:"id" yaml:"id"`
	Vehicle     *Vehicle `json:"vehicle,omitempty" yaml:"vehicle,omitempty"`
	ServiceDate string   `json:"service_date" yaml:"service_date"`
	ServiceType string   `json:"service_type" yaml:"service_type"`
	Cost        Decimal  `json:"cost" yaml:"cost"`
	Notes       string   `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Reminder is a scheduled message about a booking.
type Reminder struct {
	ID           ID     `json:"id" yaml:"id"`
	Booking      ID     `json:"booking" yaml:"booking"`
	Message      string `json:"message" yaml:"message"`
	ReminderDate string `json:"reminder_date" yaml:"reminder_date"`
	ReminderTime string `json:"reminder_time" yaml:"reminder_time"`
	IsSent       bool   `json:"is_sent" yaml:"is_sent"`
}

// ReminderRequest is the body of POST /reminders/.
type ReminderRequest struct {
	Booking      ID     `json:"booking"`
	Message      string `json:"message"`
	ReminderDate string `json:"reminder_date"`
	ReminderTime string `json:"reminder_time"`
}

// Notification is a message the server addressed to the user.
type Notification struct {
	ID             ID     `json:"id" yaml:"id"`
	Type           string `json:"notification_type,omitempty" yaml:"notification_type,omitempty"`
	Title          string `json:"title,omitempty" yaml:"title,omitempty"`
	Message        string `json:"message" yaml:"message"`
	IsRead         bool   `json:"is_read" yaml:"is_read"`
	CreatedAt      string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	RelatedBooking ID     `json:"related_booking,omitempty" yaml:"related_booking,omitempty"`
}

// Profile is a customer's account profile.
type Profile struct {
	ID         ID     `json:"id,omitempty" yaml:"id,omitempty"`
	Name       string `json:"name" yaml:"name"`
	Email      string `json:"email" yaml:"email"`
	Phone      string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Address    string `json:"address,omitempty" yaml:"address,omitempty"`
	City       string `json:"city,omitempty" yaml:"city,omitempty"`
	Country    string `json:"country,omitempty" yaml:"country,omitempty"`
	PictureURL string `json:"profile_picture_url,omitempty" yaml:"profile_picture_url,omitempty"`
}

// ProfileUpdate is the body of PUT /profile/. The server reads the phone
// under a different key than it writes it.
type ProfileUpdate struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Country     string `json:"country"`
}

// ManagerProfile is a service manager's service-center profile.
type ManagerProfile struct {
	ServiceCenterName string `json:"service_center_name" yaml:"service_center_name"`
	ExperienceYears   *int   `json:"experience_years" yaml:"experience_years"`
	Location          string `json:"location" yaml:"location"`
	ContactNumber     string `json:"contact_number" yaml:"contact_number"`
}
