// Package account covers the signed-in user's own records: the customer or
// service-center profile and the server-side notification inbox.
package account

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/autocare/autocare/internal/api"
	"github.com/autocare/autocare/internal/errors"
	"github.com/autocare/autocare/internal/logging"
)

// ProfileAPI is the subset of *api.Endpoints used for profiles.
type ProfileAPI interface {
	GetProfile(ctx context.Context) (*api.Profile, error)
	UpdateProfile(ctx context.Context, in api.ProfileUpdate) (*api.Profile, error)
	GetManagerProfile(ctx context.Context) (*api.ManagerProfile, error)
	UpdateManagerProfile(ctx context.Context, in api.ManagerProfile) (*api.ManagerProfile, error)
}

// Profiles reads and edits the profile that matches the signed-in role.
type Profiles struct {
	api    ProfileAPI
	role   func() string
	logger *logging.Logger
}

// NewProfiles returns Profiles backed by p. role is consulted on every call.
func NewProfiles(p ProfileAPI, role func() string, logger *logging.Logger) *Profiles {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Profiles{api: p, role: role, logger: logger.WithComponent("profile")}
}

// IsManager reports whether the signed-in user has a service-center profile.
func (p *Profiles) IsManager() bool {
	return api.IsStaffRole(p.role())
}

// Customer returns the customer profile.
func (p *Profiles) Customer(ctx context.Context) (*api.Profile, error) {
	prof, err := p.api.GetProfile(ctx)
	if err != nil {
		p.logger.Warn("failed to fetch profile", "error", err)
		return nil, err
	}
	return prof, nil
}

// Manager returns the service-center profile. Only service managers have one.
func (p *Profiles) Manager(ctx context.Context) (*api.ManagerProfile, error) {
	if !p.IsManager() {
		return nil, fmt.Errorf("%w: only service managers have a service-center profile", errors.ErrPermissionDenied)
	}
	prof, err := p.api.GetManagerProfile(ctx)
	if err != nil {
		p.logger.Warn("failed to fetch manager profile", "error", err)
		return nil, err
	}
	return prof, nil
}

// CustomerChanges lists the customer fields to change. Nil fields keep their
// current value.
type CustomerChanges struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
	City    *string
	Country *string
}

// UpdateCustomer fetches the current profile, applies c and writes the
// result back in full.
func (p *Profiles) UpdateCustomer(ctx context.Context, c CustomerChanges) (*api.Profile, error) {
	current, err := p.Customer(ctx)
	if err != nil {
		return nil, err
	}
	in := api.ProfileUpdate{
		Name:        current.Name,
		Email:       current.Email,
		PhoneNumber: current.Phone,
		Address:     current.Address,
		City:        current.City,
		Country:     current.Country,
	}
	apply(&in.Name, c.Name)
	apply(&in.Email, c.Email)
	apply(&in.PhoneNumber, c.Phone)
	apply(&in.Address, c.Address)
	apply(&in.City, c.City)
	apply(&in.Country, c.Country)

	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			return nil, fmt.Errorf("%w: invalid email %q", errors.ErrInvalidInput, in.Email)
		}
	}

	updated, err := p.api.UpdateProfile(ctx, in)
	if err != nil {
		p.logger.Warn("failed to update profile", "error", err)
		return nil, err
	}
	p.logger.Info("profile updated")
	return updated, nil
}

// ManagerChanges lists the service-center fields to change.
type ManagerChanges struct {
	ServiceCenterName *string
	ExperienceYears   *int
	Location          *string
	ContactNumber     *string
}

// UpdateManager fetches the service-center profile, applies c and writes it back.
func (p *Profiles) UpdateManager(ctx context.Context, c ManagerChanges) (*api.ManagerProfile, error) {
	current, err := p.Manager(ctx)
	if err != nil {
		return nil, err
	}
	in := *current
	apply(&in.ServiceCenterName, c.ServiceCenterName)
	apply(&in.Location, c.Location)
	apply(&in.ContactNumber, c.ContactNumber)
	if c.ExperienceYears != nil {
		if *c.ExperienceYears < 0 {
			return nil, fmt.Errorf("%w: experience years cannot be negative", errors.ErrInvalidInput)
		}
		years := *c.ExperienceYears
		in.ExperienceYears = &years
	}

	updated, err := p.api.UpdateManagerProfile(ctx, in)
	if err != nil {
		p.logger.Warn("failed to update manager profile", "error", err)
		return nil, err
	}
	p.logger.Info("manager profile updated")
	return updated, nil
}

func apply(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
