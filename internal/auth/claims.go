package auth

import (
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/autocare/autocare/internal/api"
)

// Claims is the subset of access-token claims the client reads. Tokens are
// parsed without signature verification, so claims are only used as fallbacks
// for identity fields the server did not return.
type Claims struct {
	UserID   api.ID `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// ParseClaims decodes the claims of a JWT access token without verifying it.
func ParseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	return claims, nil
}

// Expiry returns the token expiry, or the zero time if the token has none.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// ResolveRole picks the session role from a login response: user.role first,
// then the top-level role, then the token's role claim, and finally "user".
func ResolveRole(resp *api.LoginResponse, claims *Claims) string {
	if resp != nil {
		if resp.User != nil && resp.User.Role != "" {
			return resp.User.Role
		}
		if resp.Role != "" {
			return resp.Role
		}
	}
	if claims != nil && claims.Role != "" {
		return claims.Role
	}
	return DefaultRole
}

// ResolveUser builds the user identity from a login response, falling back to
// user_id and then to the token claims.
func ResolveUser(resp *api.LoginResponse, claims *Claims, role string) *api.User {
	var u api.User
	if resp != nil && resp.User != nil {
		u = *resp.User
	}
	if u.ID == "" && resp != nil {
		u.ID = resp.UserID
	}
	if claims != nil {
		if u.ID == "" {
			u.ID = claims.UserID
		}
		if u.ID == "" {
			u.ID = api.ID(claims.Subject)
		}
		if u.Username == "" {
			u.Username = claims.Username
		}
	}
	u.Role = role
	return &u
}
