package booking

import (
	"context"
	"testing"

	"github.com/autocare/autocare/internal/api"
	"github.com/autocare/autocare/internal/errors"
)

type fakeCatalog struct {
	vehicles    []api.Vehicle
	services    []api.Service
	vehiclesErr error
}

func (f *fakeCatalog) ListVehicles(context.Context) ([]api.Vehicle, error) {
	return f.vehicles, f.vehiclesErr
}

func (f *fakeCatalog) ListServices(context.Context) ([]api.Service, error) {
	return f.services, nil
}

func testCatalogSource() *fakeCatalog {
	return &fakeCatalog{
		vehicles: []api.Vehicle{
			{ID: "V1", Make: "Honda", Model: "Civic", Year: "2018", IsCustomerOwned: true},
			{ID: "V2", Make: "Toyota", Model: "Supra", Year: "2022"},
			{ID: "V3", Make: "Toyota", Model: "Corolla", Year: "2020", IsCustomerOwned: true, VIN: "JT2AE92E"},
			{ID: "V4", Make: "Ford", Model: "Mustang", Year: "2024"},
		},
		services: []api.Service{
			{ID: "S1", Name: "Oil Change", Cost: "49.99"},
			{ID: "S2", Name: "Brake Inspection"},
			{ID: "S3", Name: "Tyre Rotation"},
		},
	}
}

func vehicleIDs(vs []api.Vehicle) []api.ID {
	ids := make([]api.ID, 0, len(vs))
	for _, v := range vs {
		ids = append(ids, v.ID)
	}
	return ids
}

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog(context.Background(), testCatalogSource())
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	if got := vehicleIDs(c.VehiclesFor(api.BookingTypeServicing)); len(got) != 2 || got[0] != "V1" || got[1] != "V3" {
		t.Errorf("servicing vehicles = %v, want [V1 V3]", got)
	}
	if got := vehicleIDs(c.VehiclesFor(api.BookingTypePurchase)); len(got) != 2 || got[0] != "V2" || got[1] != "V4" {
		t.Errorf("purchase vehicles = %v, want [V2 V4]", got)
	}
	if c.VehiclesFor("") != nil {
		t.Error("no vehicles should be offered before a type is chosen")
	}
	if len(c.TradeInOptions()) != 2 {
		t.Errorf("TradeInOptions() = %v", c.TradeInOptions())
	}

	if v, ok := c.Vehicle("V4"); !ok || v.Model != "Mustang" {
		t.Errorf("Vehicle(V4) = %+v, %v", v, ok)
	}
	if _, ok := c.Vehicle("V9"); ok {
		t.Error("Vehicle(V9) should not be found")
	}
	if s, ok := c.Service("S2"); !ok || s.Name != "Brake Inspection" {
		t.Errorf("Service(S2) = %+v, %v", s, ok)
	}
}

func TestLoadCatalog_Error(t *testing.T) {
	src := testCatalogSource()
	src.vehiclesErr = errors.NewServerError(500)

	if _, err := LoadCatalog(context.Background(), src); !errors.Is(err, errors.ErrServer) {
		t.Errorf("LoadCatalog() error = %v, want ErrServer", err)
	}
}

func TestMatcher(t *testing.T) {
	src := testCatalogSource()

	tests := []struct {
		pattern      string
		wantVehicles int
		wantServices int
	}{
		{"", 4, 3},
		{"toyota*", 2, 0},
		{"*(202?)", 3, 0},
		{"JT2*", 1, 0},
		{"*brake*", 0, 1},
		{"oil change", 0, 1},
		{"*o*", 4, 3},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			m, err := NewMatcher(tt.pattern)
			if err != nil {
				t.Fatalf("NewMatcher() error = %v", err)
			}
			if got := len(m.FilterVehicles(src.vehicles)); got != tt.wantVehicles {
				t.Errorf("FilterVehicles() kept %d, want %d", got, tt.wantVehicles)
			}
			if got := len(m.FilterServices(src.services)); got != tt.wantServices {
				t.Errorf("FilterServices() kept %d, want %d", got, tt.wantServices)
			}
		})
	}
}

func TestNewMatcher_InvalidPattern(t *testing.T) {
	if _, err := NewMatcher("[abc"); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("NewMatcher([abc) error = %v, want ErrInvalidInput", err)
	}
}
