package api

import (
	"context"
	"net/http"

	"github.com/autocare/autocare/internal/errors"
)

// Login exchanges credentials for a token pair. A 401 is reported as invalid
// credentials rather than an expired session.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	req := NewRequest("login", http.MethodPost, "login", map[string]string{
		"username": username,
		"password": password,
	})
	res := c.Send(ctx, req)
	switch res.Outcome {
	case OutcomeAuthExpired:
		return nil, errors.NewInvalidCredentialsError().WithOperation("login")
	case OutcomeFailure:
		return nil, res.Err
	}

	var out LoginResponse
	if err := res.Response.Decode(&out); err != nil {
		return nil, err
	}
	if out.Access == "" {
		return nil, errors.NewRejectedError(res.Response.StatusCode, "login response did not include an access token").WithOperation("login")
	}
	return &out, nil
}

// Refresh exchanges a refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	req := NewRequest("refresh", http.MethodPost, "token/refresh", map[string]string{"refresh": refreshToken})
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	var out RefreshResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	if out.Access == "" {
		return nil, errors.NewRejectedError(resp.StatusCode, "refresh response did not include an access token").WithOperation("refresh")
	}
	return &out, nil
}

// Logout asks the server to invalidate refreshToken.
func (c *Client) Logout(ctx context.Context, accessToken, refreshToken string) error {
	req := NewRequest("logout", http.MethodPost, "logout", map[string]string{"refresh_token": refreshToken})
	req.Token = accessToken
	_, err := c.Do(ctx, req)
	return err
}

// Register creates a new account. Field errors from a 400 are joined into the
// error's user message.
func (c *Client) Register(ctx context.Context, in RegisterRequest) (*User, error) {
	resp, err := c.Do(ctx, NewRequest("register", http.MethodPost, "register", in))
	if err != nil {
		return nil, err
	}
	var out User
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	if out.Username == "" {
		out.Username = in.Username
	}
	return &out, nil
}
