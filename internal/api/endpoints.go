package api

import (
	"context"
	"net/http"
	"net/url"
)

// Doer issues a request and returns the successful response or a classified
// error. *Client is an unauthenticated Doer; auth.Session wraps it with bearer
// credentials and refresh-on-401.
type Doer interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Endpoints exposes the typed booking API on top of a Doer.
type Endpoints struct {
	doer Doer
}

// NewEndpoints returns Endpoints that send every call through d.
func NewEndpoints(d Doer) *Endpoints {
	return &Endpoints{doer: d}
}

func (e *Endpoints) call(ctx context.Context, req *Request, out any) error {
	resp, err := e.doer.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}

func escape(id ID) string {
	return url.PathEscape(string(id))
}

// AuthStatus calls GET /authenticated.
func (e *Endpoints) AuthStatus(ctx context.Context) (*AuthStatus, error) {
	var out AuthStatus
	if err := e.call(ctx, NewRequest("authenticated", http.MethodGet, "authenticated", nil), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListVehicles returns every vehicle visible to the user, customer-owned and dealership.
func (e *Endpoints) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	var out []Vehicle
	err := e.call(ctx, NewRequest("list_vehicles", http.MethodGet, "vehicles/", nil), &out)
	return out, err
}

// ListServices returns the servicing catalog.
func (e *Endpoints) ListServices(ctx context.Context) ([]Service, error) {
	var out []Service
	err := e.call(ctx, NewRequest("list_services", http.MethodGet, "servicing/", nil), &out)
	return out, err
}

// ListBookings returns the user's bookings.
func (e *Endpoints) ListBookings(ctx context.Context) ([]Booking, error) {
	var out []Booking
	err := e.call(ctx, NewRequest("list_bookings", http.MethodGet, "bookings/", nil), &out)
	return out, err
}

// GetBooking returns a single booking.
func (e *Endpoints) GetBooking(ctx context.Context, id ID) (*Booking, error) {
	var out Booking
	if err := e.call(ctx, NewRequest("get_booking", http.MethodGet, "bookings/"+escape(id)+"/", nil), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateBooking submits a new booking.
func (e *Endpoints) CreateBooking(ctx context.Context, in BookingRequest) (*Booking, error) {
	var out Booking
	if err := e.call(ctx, NewRequest("create_booking", http.MethodPost, "bookings/", in), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelBooking cancels a pending booking.
func (e *Endpoints) CancelBooking(ctx context.Context, id ID) (*Booking, error) {
	return e.transition(ctx, "cancel_booking", id, "cancel")
}

// ConfirmBooking confirms a pending booking.
func (e *Endpoints) ConfirmBooking(ctx context.Context, id ID) (*Booking, error) {
	return e.transition(ctx, "confirm_booking", id, "confirm")
}

// UpdateBookingStatus sets a booking's status directly. Staff only.
func (e *Endpoints) UpdateBookingStatus(ctx context.Context, id ID, status BookingStatus) (*Booking, error) {
	var out Booking
	req := NewRequest("update_booking_status", http.MethodPatch, "bookings/"+escape(id)+"/", BookingStatusRequest{Status: status})
	if err := e.call(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (e *Endpoints) transition(ctx context.Context, op string, id ID, action string) (*Booking, error) {
	var out Booking
	req := NewRequest(op, http.MethodPost, "bookings/"+escape(id)+"/"+action+"/", struct{}{})
	if err := e.call(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListFavorites returns the user's favorites.
func (e *Endpoints) ListFavorites(ctx context.Context) ([]Favorite, error) {
	var out []Favorite
	err := e.call(ctx, NewRequest("list_favorites", http.MethodGet, "favourites/", nil), &out)
	return out, err
}

// AddFavorite bookmarks the service or vehicle target for user.
func (e *Endpoints) AddFavorite(ctx context.Context, typ FavoriteType, target, user ID) (*Favorite, error) {
	body := map[string]string{
		"type":      string(typ),
		string(typ): string(target),
		"user":      string(user),
	}
	var out Favorite
	if err := e.call(ctx, NewRequest("add_favorite", http.MethodPost, "favourites/", body), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveFavorite deletes a favorite by its own id.
func (e *Endpoints) RemoveFavorite(ctx context.Context, id ID) error {
	return e.call(ctx, NewRequest("remove_favorite", http.MethodDelete, "favourites/"+escape(id)+"/", nil), nil)
}
