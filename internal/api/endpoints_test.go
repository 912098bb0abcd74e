package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/autocare/autocare/internal/errors"
)

func TestClient_Login(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantErr  error
		wantRole string
	}{
		{"success", 200, `{"access":"a","refresh":"r","user":{"id":1,"role":"manager"},"user_id":1}`, nil, "manager"},
		{"wrong password", 401, `{"detail":"No active account found"}`, errors.ErrInvalidCredentials, ""},
		{"server error", 500, ``, errors.ErrServer, ""},
		{"missing token", 200, `{}`, errors.ErrRejected, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/login" {
					t.Errorf("path = %q", r.URL.Path)
				}
				if r.Header.Get("Authorization") != "" {
					t.Error("login must not carry a bearer token")
				}
				var creds map[string]string
				_ = json.NewDecoder(r.Body).Decode(&creds)
				if creds["username"] != "alice" || creds["password"] != "pw" {
					t.Errorf("credentials = %v", creds)
				}
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			resp, err := client.Login(context.Background(), "alice", "pw")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Login() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if resp.User == nil || resp.User.Role != tt.wantRole {
				t.Errorf("Login() user = %+v", resp.User)
			}
		})
	}
}

func TestClient_Register_FieldErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"username":["A user with that username already exists."],"password":["This password is too short."]}`)
	})

	_, err := client.Register(context.Background(), RegisterRequest{Username: "bob", Email: "b@example.com", Password: "x"})
	if !errors.Is(err, errors.ErrValidation) {
		t.Fatalf("Register() error = %v, want ErrValidation", err)
	}
	want := "password: This password is too short.; username: A user with that username already exists."
	if got := errors.UserMessage(err); got != want {
		t.Errorf("UserMessage() = %q, want %q", got, want)
	}
}

func TestClient_Logout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["refresh_token"] != "refresh" {
			t.Errorf("refresh_token = %q", body["refresh_token"])
		}
		w.WriteHeader(http.StatusResetContent)
	})

	if err := client.Logout(context.Background(), "access", "refresh"); err != nil {
		t.Errorf("Logout() error = %v", err)
	}
}

func TestEndpoints_Paths(t *testing.T) {
	type call struct{ method, path string }
	var got []call
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = append(got, call{r.Method, r.URL.Path})
		switch {
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/api/bookings/" || r.URL.Path == "/api/vehicles/" ||
			r.URL.Path == "/api/servicing/" || r.URL.Path == "/api/favourites/" && r.Method == http.MethodGet:
			_, _ = io.WriteString(w, `[]`)
		default:
			_, _ = io.WriteString(w, `{"id":"b1","status":"cancelled"}`)
		}
	})
	e := NewEndpoints(client)
	ctx := context.Background()

	_, _ = e.ListVehicles(ctx)
	_, _ = e.ListServices(ctx)
	_, _ = e.ListBookings(ctx)
	_, _ = e.GetBooking(ctx, "b1")
	_, _ = e.CancelBooking(ctx, "b1")
	_, _ = e.ConfirmBooking(ctx, "b1")
	_, _ = e.ListFavorites(ctx)
	_ = e.RemoveFavorite(ctx, "f1")

	want := []call{
		{"GET", "/api/vehicles/"},
		{"GET", "/api/servicing/"},
		{"GET", "/api/bookings/"},
		{"GET", "/api/bookings/b1/"},
		{"POST", "/api/bookings/b1/cancel/"},
		{"POST", "/api/bookings/b1/confirm/"},
		{"GET", "/api/favourites/"},
		{"DELETE", "/api/favourites/f1/"},
	}
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestEndpoints_AddFavorite(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["type"] != "vehicle" || body["vehicle"] != "7" || body["user"] != "u1" {
			t.Errorf("body = %v", body)
		}
		if _, ok := body["service"]; ok {
			t.Error("vehicle favorite must not send a service key")
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"f9","type":"vehicle","vehicle":7}`)
	})

	fav, err := NewEndpoints(client).AddFavorite(context.Background(), FavoriteVehicle, "7", "u1")
	if err != nil {
		t.Fatalf("AddFavorite() error = %v", err)
	}
	if fav.ID != "f9" || fav.Target() != "7" {
		t.Errorf("favorite = %+v", fav)
	}
}

func TestBooking_Title(t *testing.T) {
	tests := []struct {
		b    Booking
		want string
	}{
		{Booking{BookingType: BookingTypeServicing, PrimaryService: &Service{Name: "Oil Change"}}, "Oil Change"},
		{Booking{BookingType: BookingTypeServicing}, "Vehicle Service"},
		{Booking{BookingType: BookingTypePurchase}, "Purchase Inquiry"},
	}
	for _, tt := range tests {
		if got := tt.b.Title(); got != tt.want {
			t.Errorf("Title() = %q, want %q", got, tt.want)
		}
	}
}

func TestVehicle_DisplayName(t *testing.T) {
	v := Vehicle{Make: "Toyota", Model: "Corolla", Year: "2021"}
	if got := v.DisplayName(); got != "Toyota Corolla (2021)" {
		t.Errorf("DisplayName() = %q", got)
	}
	v.Year = ""
	if got := v.DisplayName(); got != "Toyota Corolla" {
		t.Errorf("DisplayName() = %q", got)
	}
}
