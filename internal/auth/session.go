// Package auth owns the client's bearer-token session: login, logout, token
// refresh, and the authenticated request contract that re-issues a request
// at most once after a successful refresh.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/autocare/autocare/internal/api"
	apperrors "github.com/autocare/autocare/internal/errors"
	"github.com/autocare/autocare/internal/logging"
	"github.com/autocare/autocare/internal/storage"
)

// DefaultRole is assigned when neither the server nor the token names a role.
const DefaultRole = "user"

// ErrLoginInProgress is returned when Login is called while another login is running.
var ErrLoginInProgress = errors.New("login already in progress")

// Transport is the part of *api.Client the session depends on.
type Transport interface {
	Send(ctx context.Context, req *api.Request) api.Result
	Login(ctx context.Context, username, password string) (*api.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*api.RefreshResponse, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
}

// Session holds the credentials of the logged-in user. It is created once per
// process and passed explicitly to everything that talks to the API.
// It is safe for concurrent use.
type Session struct {
	transport Transport
	store     storage.Store
	logger    *logging.Logger

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	role         string
	user         *api.User
	loading      bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger.WithComponent("auth")
		}
	}
}

// NewSession creates a logged-out Session. Call Init to restore persisted credentials.
func NewSession(transport Transport, store storage.Store, opts ...Option) *Session {
	s := &Session{
		transport: transport,
		store:     store,
		logger:    logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init restores persisted credentials and, if a token was found, confirms it
// with GET /authenticated. The check goes through Do, so an expired access
// token is refreshed once. A token that is still rejected after the refresh
// clears the session like an expired one. A network failure leaves the restored credentials
// in place and is returned to the caller.
func (s *Session) Init(ctx context.Context) error {
	if err := s.Reload(ctx); err != nil {
		return err
	}
	if !s.IsAuthenticated() {
		return nil
	}

	status, err := api.NewEndpoints(s).AuthStatus(ctx)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrSessionExpired) {
			s.logger.Info("persisted session expired")
			return nil
		}
		var apiErr *apperrors.APIError
		if apperrors.As(err, &apiErr) && apiErr.Kind == apperrors.KindRejected &&
			apiErr.StatusCode == http.StatusUnauthorized {
			s.logger.Info("refreshed token rejected, clearing persisted session")
			return s.clear(ctx)
		}
		s.logger.Warn("failed to confirm persisted session", "error", err)
		return err
	}
	if !status.Authenticated {
		s.logger.Info("server reports session not authenticated")
		return s.clear(ctx)
	}

	s.mu.Lock()
	if status.Role != "" {
		s.role = status.Role
	}
	switch {
	case status.User != nil:
		s.user = status.User
	case status.UserID != "" && s.user == nil:
		s.user = &api.User{ID: status.UserID}
	}
	if s.user != nil {
		s.user.Role = s.role
	}
	role, user := s.role, s.user
	s.mu.Unlock()

	return s.persistIdentity(ctx, role, user)
}

// Reload replaces the in-memory credentials with what the store holds,
// without contacting the server.
func (s *Session) Reload(ctx context.Context) error {
	access, err := storage.LoadString(ctx, s.store, storage.KeyAccessToken)
	if err != nil {
		return apperrors.Wrap(err, "load access token")
	}
	refresh, err := storage.LoadString(ctx, s.store, storage.KeyRefreshToken)
	if err != nil {
		return apperrors.Wrap(err, "load refresh token")
	}
	role, err := storage.LoadString(ctx, s.store, storage.KeyRole)
	if err != nil {
		return apperrors.Wrap(err, "load role")
	}
	rawUser, err := storage.LoadString(ctx, s.store, storage.KeyUser)
	if err != nil {
		return apperrors.Wrap(err, "load user")
	}

	var user *api.User
	if rawUser != "" {
		user = &api.User{}
		if err := json.Unmarshal([]byte(rawUser), user); err != nil {
			s.logger.Warn("ignoring corrupt persisted user", "error", err)
			user = nil
		}
	}
	if access != "" && role == "" {
		role = DefaultRole
	}

	s.mu.Lock()
	s.accessToken = access
	s.refreshToken = refresh
	s.role = role
	s.user = user
	s.mu.Unlock()
	return nil
}

// Login exchanges credentials for tokens and persists them with the derived
// role and user. On any failure nothing is persisted and the session stays
// logged out.
func (s *Session) Login(ctx context.Context, username, password string) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return ErrLoginInProgress
	}
	s.loading = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	resp, err := s.transport.Login(ctx, username, password)
	if err != nil {
		s.logger.Warn("login failed", "username", username, "error", err)
		return err
	}

	claims, err := ParseClaims(resp.Access)
	if err != nil {
		s.logger.Debug("access token claims unavailable", "error", err)
		claims = nil
	}
	role := ResolveRole(resp, claims)
	user := ResolveUser(resp, claims, role)
	if user.Username == "" {
		user.Username = username
	}

	if err := s.persist(ctx, resp.Access, resp.Refresh, role, user); err != nil {
		s.logger.Error("failed to persist credentials", "error", err)
		_ = storage.Clear(context.WithoutCancel(ctx), s.store, storage.CredentialKeys...)
		return err
	}

	s.mu.Lock()
	s.accessToken = resp.Access
	s.refreshToken = resp.Refresh
	s.role = role
	s.user = user
	s.mu.Unlock()

	s.logger.WithUser(string(user.ID)).Info("logged in", "role", role)
	return nil
}

// Refresh exchanges the refresh token for a new access token. It never
// returns an error: on failure the stored credentials are cleared and false
// is returned. A cancelled ctx returns false without clearing anything.
func (s *Session) Refresh(ctx context.Context) bool {
	s.mu.RLock()
	refresh := s.refreshToken
	s.mu.RUnlock()

	if refresh == "" {
		s.logger.Info("no refresh token, clearing session")
		_ = s.clear(ctx)
		return false
	}

	resp, err := s.transport.Refresh(ctx, refresh)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		s.logger.Warn("token refresh failed, clearing session", "error", err)
		_ = s.clear(ctx)
		return false
	}

	s.mu.Lock()
	s.accessToken = resp.Access
	if resp.Refresh != "" {
		s.refreshToken = resp.Refresh
	}
	newRefresh := s.refreshToken
	s.mu.Unlock()

	if err := s.store.Save(ctx, storage.KeyAccessToken, []byte(resp.Access)); err != nil {
		s.logger.Warn("failed to persist refreshed access token", "error", err)
	}
	if resp.Refresh != "" {
		if err := s.store.Save(ctx, storage.KeyRefreshToken, []byte(newRefresh)); err != nil {
			s.logger.Warn("failed to persist rotated refresh token", "error", err)
		}
	}
	s.logger.Debug("access token refreshed")
	return true
}

// Logout asks the server to invalidate the refresh token, then clears local
// credentials whatever the server answered. The returned error only reports
// a failure to clear local storage.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.RLock()
	access, refresh := s.accessToken, s.refreshToken
	s.mu.RUnlock()

	if refresh != "" {
		if err := s.transport.Logout(ctx, access, refresh); err != nil {
			s.logger.Warn("server logout failed, clearing local session anyway", "error", err)
		}
	}
	if err := s.clear(ctx); err != nil {
		return err
	}
	s.logger.Info("logged out")
	return nil
}

// Do sends req with the current access token. If the server answers 401 and
// req has not been retried yet, the session refreshes and re-issues req once
// with the new token. A failed refresh clears the session and yields
// ErrSessionExpired. Other failures are returned as classified, without retry.
func (s *Session) Do(ctx context.Context, req *api.Request) (*api.Response, error) {
	req.Token = s.AccessToken()
	res := s.transport.Send(ctx, req)

	switch res.Outcome {
	case api.OutcomeOK:
		return res.Response, nil
	case api.OutcomeFailure:
		return nil, res.Err
	}

	if req.Retried {
		s.logger.WithRequest(req.RequestID).Warn("retried request rejected again", "op", req.Operation)
		return nil, res.Err
	}

	if !s.Refresh(ctx) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.NewSessionExpiredError(res.Err).WithOperation(req.Operation)
	}

	req.Retried = true
	req.Token = s.AccessToken()
	res = s.transport.Send(ctx, req)
	if res.Outcome == api.OutcomeOK {
		return res.Response, nil
	}
	return nil, res.Err
}

// IsAuthenticated reports whether an access token is held.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken != ""
}

// IsLoading reports whether a Login call is in flight.
func (s *Session) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Role returns the current role, or "" when logged out.
func (s *Session) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

// User returns a copy of the current user, or nil when logged out.
func (s *Session) User() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// UserID returns the current user's id, or "" when unknown.
func (s *Session) UserID() api.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.ID
}

// AccessToken returns the current access token.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// ExpiresAt returns the access token expiry from its claims, or the zero time.
func (s *Session) ExpiresAt() time.Time {
	claims, err := ParseClaims(s.AccessToken())
	if err != nil {
		return time.Time{}
	}
	return claims.Expiry()
}

// Watcher reports which storage keys changed outside this process.
type Watcher interface {
	Watch(ctx context.Context, fn func(keys []string)) error
}

// Watch reloads the session whenever another process changes the persisted
// credentials, for example a login or logout in a second terminal. It blocks
// until ctx is cancelled.
func (s *Session) Watch(ctx context.Context, w Watcher) error {
	return w.Watch(ctx, func(keys []string) {
		before := s.IsAuthenticated()
		if err := s.Reload(ctx); err != nil {
			s.logger.Warn("failed to reload credentials", "keys", keys, "error", err)
			return
		}
		if after := s.IsAuthenticated(); after != before {
			s.logger.Info("credentials changed externally", "authenticated", after)
		}
	})
}

func (s *Session) persist(ctx context.Context, access, refresh, role string, user *api.User) error {
	if err := s.store.Save(ctx, storage.KeyAccessToken, []byte(access)); err != nil {
		return apperrors.Wrap(err, "save access token")
	}
	if err := s.store.Save(ctx, storage.KeyRefreshToken, []byte(refresh)); err != nil {
		return apperrors.Wrap(err, "save refresh token")
	}
	return s.persistIdentity(ctx, role, user)
}

func (s *Session) persistIdentity(ctx context.Context, role string, user *api.User) error {
	if err := s.store.Save(ctx, storage.KeyRole, []byte(role)); err != nil {
		return apperrors.Wrap(err, "save role")
	}
	if user == nil {
		return nil
	}
	data, err := json.Marshal(user)
	if err != nil {
		return apperrors.Wrap(err, "encode user")
	}
	if err := s.store.Save(ctx, storage.KeyUser, data); err != nil {
		return apperrors.Wrap(err, "save user")
	}
	return nil
}

// clear drops in-memory and persisted credentials. Storage is cleared even if
// ctx is already cancelled.
func (s *Session) clear(ctx context.Context) error {
	s.mu.Lock()
	s.accessToken = ""
	s.refreshToken = ""
	s.role = ""
	s.user = nil
	s.mu.Unlock()

	if err := storage.Clear(context.WithoutCancel(ctx), s.store, storage.CredentialKeys...); err != nil {
		s.logger.Error("failed to clear persisted credentials", "error", err)
		return err
	}
	return nil
}
