package booking

import (
	"context"
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/autocare/autocare/internal/api"
	"github.com/autocare/autocare/internal/errors"
)

// CatalogSource loads reference data. *api.Endpoints satisfies it.
type CatalogSource interface {
	ListVehicles(ctx context.Context) ([]api.Vehicle, error)
	ListServices(ctx context.Context) ([]api.Service, error)
}

// Catalog is the reference data the wizard offers choices from.
type Catalog struct {
	Customer   []api.Vehicle
	Dealership []api.Vehicle
	Services   []api.Service
}

// LoadCatalog fetches vehicles and services from src.
func LoadCatalog(ctx context.Context, src CatalogSource) (*Catalog, error) {
	vehicles, err := src.ListVehicles(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load vehicles")
	}
	services, err := src.ListServices(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load services")
	}
	customer, dealership := SplitVehicles(vehicles)
	return &Catalog{Customer: customer, Dealership: dealership, Services: services}, nil
}

// SplitVehicles separates customer-owned vehicles from dealership stock.
func SplitVehicles(vs []api.Vehicle) (customer, dealership []api.Vehicle) {
	for _, v := range vs {
		if v.IsCustomerOwned {
			customer = append(customer, v)
		} else {
			dealership = append(dealership, v)
		}
	}
	return customer, dealership
}

// VehiclesFor returns the vehicles selectable for a booking type: the
// customer's own for servicing, dealership stock for purchase.
func (c *Catalog) VehiclesFor(t api.BookingType) []api.Vehicle {
	switch t {
	case api.BookingTypeServicing:
		return c.Customer
	case api.BookingTypePurchase:
		return c.Dealership
	default:
		return nil
	}
}

// TradeInOptions returns the vehicles that can be offered as a trade-in.
func (c *Catalog) TradeInOptions() []api.Vehicle {
	return c.Customer
}

// Vehicle looks up a vehicle by id in either list.
func (c *Catalog) Vehicle(id api.ID) (api.Vehicle, bool) {
	for _, list := range [][]api.Vehicle{c.Customer, c.Dealership} {
		for _, v := range list {
			if v.ID == id {
				return v, true
			}
		}
	}
	return api.Vehicle{}, false
}

// Service looks up a service by id.
func (c *Catalog) Service(id api.ID) (api.Service, bool) {
	for _, s := range c.Services {
		if s.ID == id {
			return s, true
		}
	}
	return api.Service{}, false
}

// Matcher filters catalog entries by a case-insensitive glob pattern.
// An empty pattern matches everything.
type Matcher struct {
	g glob.Glob
}

// NewMatcher compiles pattern.
func NewMatcher(pattern string) (*Matcher, error) {
	if pattern == "" {
		return &Matcher{}, nil
	}
	g, err := glob.Compile(strings.ToLower(pattern))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid pattern %q: %v", errors.ErrInvalidInput, pattern, err)
	}
	return &Matcher{g: g}, nil
}

// Match reports whether any of the candidate strings matches.
func (m *Matcher) Match(candidates ...string) bool {
	if m == nil || m.g == nil {
		return true
	}
	for _, c := range candidates {
		if m.g.Match(strings.ToLower(c)) {
			return true
		}
	}
	return false
}

// FilterVehicles keeps vehicles whose "make model (year)" or VIN matches.
func (m *Matcher) FilterVehicles(vs []api.Vehicle) []api.Vehicle {
	var out []api.Vehicle
	for _, v := range vs {
		if m.Match(v.DisplayName(), v.Make, v.Model, v.VIN) {
			out = append(out, v)
		}
	}
	return out
}

// FilterServices keeps services whose name matches.
func (m *Matcher) FilterServices(ss []api.Service) []api.Service {
	var out []api.Service
	for _, s := range ss {
		if m.Match(s.Name) {
			out = append(out, s)
		}
	}
	return out
}
