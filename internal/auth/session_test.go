package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/autocare/autocare/internal/api"
	"github.com/autocare/autocare/internal/errors"
	"github.com/autocare/autocare/internal/storage"
)

// fakeAPI is a minimal booking API. Bearer tokens listed in valid are
// accepted; anything else gets a 401.
type fakeAPI struct {
	mu            sync.Mutex
	valid         map[string]bool
	nextAccess    string
	refreshOK     bool
	logoutStatus  int
	loginStatus   int
	loginBody     string
	refreshCalls  atomic.Int32
	bookingsCalls atomic.Int32
	logoutCalls   atomic.Int32
	bookingsFail  int
	rejectAll     bool
	authStatus    string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		valid:        map[string]bool{},
		nextAccess:   "access-2",
		refreshOK:    true,
		logoutStatus: http.StatusOK,
		loginStatus:  http.StatusOK,
	}
}

func (f *fakeAPI) authorized(r *http.Request) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.valid[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")]
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/login":
		w.WriteHeader(f.loginStatus)
		_, _ = io.WriteString(w, f.loginBody)

	case "/token/refresh":
		f.refreshCalls.Add(1)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if !f.refreshOK || body["refresh"] == "" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"Token is invalid or expired"}`)
			return
		}
		f.mu.Lock()
		f.valid[f.nextAccess] = true
		access := f.nextAccess
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{"access": access})

	case "/logout":
		f.logoutCalls.Add(1)
		w.WriteHeader(f.logoutStatus)

	case "/authenticated":
		if f.rejectAll || !f.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body := f.authStatus
		if body == "" {
			body = `{"authenticated":true,"role":"manager","user":{"id":5,"username":"alice"}}`
		}
		_, _ = io.WriteString(w, body)

	case "/bookings/":
		f.bookingsCalls.Add(1)
		if f.bookingsFail != 0 {
			w.WriteHeader(f.bookingsFail)
			return
		}
		if f.rejectAll || !f.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"Given token not valid"}`)
			return
		}
		_, _ = io.WriteString(w, `[{"id":1,"status":"pending","booking_type":"servicing"}]`)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func setup(t *testing.T, f *fakeAPI) (*Session, *storage.MemoryStore) {
	t.Helper()
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)

	client, err := api.NewClient(server.URL, api.WithTimeout(2*time.Second))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	store := storage.NewMemoryStore()
	return NewSession(client, store), store
}

func seed(t *testing.T, store storage.Store, access, refresh string) {
	t.Helper()
	ctx := context.Background()
	_ = store.Save(ctx, storage.KeyAccessToken, []byte(access))
	_ = store.Save(ctx, storage.KeyRefreshToken, []byte(refresh))
	_ = store.Save(ctx, storage.KeyRole, []byte("user"))
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func listBookings(s *Session) ([]api.Booking, error) {
	return api.NewEndpoints(s).ListBookings(context.Background())
}

// -----------------------------------------------------------------------------
// Login
// -----------------------------------------------------------------------------

func TestLogin_WrongPassword(t *testing.T) {
	f := newFakeAPI()
	f.loginStatus = http.StatusUnauthorized
	f.loginBody = `{"detail":"No active account found with the given credentials"}`
	s, store := setup(t, f)

	err := s.Login(context.Background(), "alice", "wrong")
	if !errors.Is(err, errors.ErrInvalidCredentials) {
		t.Fatalf("Login() error = %v, want ErrInvalidCredentials", err)
	}
	if errors.UserMessage(err) != "Invalid credentials" {
		t.Errorf("UserMessage() = %q", errors.UserMessage(err))
	}
	if s.IsAuthenticated() {
		t.Error("session must not be authenticated after a failed login")
	}
	if s.IsLoading() {
		t.Error("loading flag must be cleared after a failed login")
	}
	if store.Len() != 0 {
		t.Errorf("store has %d keys, want none persisted", store.Len())
	}
}

func TestLogin_ServerAndNetworkErrors(t *testing.T) {
	f := newFakeAPI()
	f.loginStatus = http.StatusInternalServerError
	s, store := setup(t, f)

	err := s.Login(context.Background(), "alice", "pw")
	if !errors.Is(err, errors.ErrServer) {
		t.Errorf("Login() error = %v, want ErrServer", err)
	}

	client, _ := api.NewClient("http://127.0.0.1:1", api.WithTimeout(time.Second))
	offline := NewSession(client, store)
	err = offline.Login(context.Background(), "alice", "pw")
	if !errors.Is(err, errors.ErrNetwork) {
		t.Errorf("Login() error = %v, want ErrNetwork", err)
	}
	if store.Len() != 0 {
		t.Errorf("store has %d keys, want none persisted", store.Len())
	}
}

func TestLogin_RoleResolution(t *testing.T) {
	tests := []struct {
		name     string
		body     func(t *testing.T) string
		wantRole string
		wantID   api.ID
	}{
		{
			name: "user.role wins",
			body: func(t *testing.T) string {
				return `{"access":"a","refresh":"r","role":"user","user":{"id":3,"role":"manager"}}`
			},
			wantRole: "manager",
			wantID:   "3",
		},
		{
			name: "top level role",
			body: func(t *testing.T) string {
				return `{"access":"a","refresh":"r","role":"manager","user_id":4}`
			},
			wantRole: "manager",
			wantID:   "4",
		},
		{
			name: "token claims",
			body: func(t *testing.T) string {
				tok := signedToken(t, jwt.MapClaims{"user_id": 9, "role": "manager", "username": "alice"})
				return `{"access":"` + tok + `","refresh":"r"}`
			},
			wantRole: "manager",
			wantID:   "9",
		},
		{
			name: "default role",
			body: func(t *testing.T) string {
				return `{"access":"opaque","refresh":"r"}`
			},
			wantRole: DefaultRole,
			wantID:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeAPI()
			f.loginBody = tt.body(t)
			s, store := setup(t, f)

			if err := s.Login(context.Background(), "alice", "pw"); err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if !s.IsAuthenticated() {
				t.Error("session should be authenticated")
			}
			if s.Role() != tt.wantRole {
				t.Errorf("Role() = %q, want %q", s.Role(), tt.wantRole)
			}
			if s.UserID() != tt.wantID {
				t.Errorf("UserID() = %q, want %q", s.UserID(), tt.wantID)
			}
			if s.User().Username != "alice" {
				t.Errorf("User().Username = %q, want alice", s.User().Username)
			}

			ctx := context.Background()
			role, _ := storage.LoadString(ctx, store, storage.KeyRole)
			refresh, _ := storage.LoadString(ctx, store, storage.KeyRefreshToken)
			rawUser, _ := storage.LoadString(ctx, store, storage.KeyUser)
			if role != tt.wantRole || refresh != "r" || rawUser == "" {
				t.Errorf("persisted role=%q refresh=%q user=%q", role, refresh, rawUser)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// Authenticated requests
// -----------------------------------------------------------------------------

func TestDo_RefreshesAndRetriesOnce(t *testing.T) {
	f := newFakeAPI()
	s, store := setup(t, f)
	seed(t, store, "access-1", "refresh-1")
	if err := s.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	bookings, err := listBookings(s)
	if err != nil {
		t.Fatalf("ListBookings() error = %v", err)
	}
	if len(bookings) != 1 || bookings[0].Status != api.StatusPending {
		t.Errorf("bookings = %+v", bookings)
	}
	if got := f.refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1", got)
	}
	if got := f.bookingsCalls.Load(); got != 2 {
		t.Errorf("bookings calls = %d, want 2 (original + one retry)", got)
	}
	if s.AccessToken() != "access-2" {
		t.Errorf("AccessToken() = %q, want access-2", s.AccessToken())
	}
	persisted, _ := storage.LoadString(context.Background(), store, storage.KeyAccessToken)
	if persisted != "access-2" {
		t.Errorf("persisted access token = %q, want access-2", persisted)
	}
}

func TestDo_SecondUnauthorizedIsNotRetried(t *testing.T) {
	f := newFakeAPI()
	f.rejectAll = true
	s, store := setup(t, f)
	seed(t, store, "access-1", "refresh-1")
	_ = s.Reload(context.Background())

	_, err := listBookings(s)
	if err == nil {
		t.Fatal("ListBookings() should fail when the retried request is rejected")
	}
	if errors.Is(err, errors.ErrSessionExpired) {
		t.Error("a rejected retry is propagated as-is, not as a refresh failure")
	}
	if got := f.refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1", got)
	}
	if got := f.bookingsCalls.Load(); got != 2 {
		t.Errorf("bookings calls = %d, want 2", got)
	}
}

func TestDo_RefreshFailureExpiresSession(t *testing.T) {
	f := newFakeAPI()
	f.refreshOK = false
	s, store := setup(t, f)
	seed(t, store, "access-1", "refresh-1")
	_ = s.Reload(context.Background())

	_, err := listBookings(s)
	if !errors.Is(err, errors.ErrSessionExpired) {
		t.Fatalf("ListBookings() error = %v, want ErrSessionExpired", err)
	}
	if errors.UserMessage(err) != "Session expired. Please login again." {
		t.Errorf("UserMessage() = %q", errors.UserMessage(err))
	}
	if s.IsAuthenticated() {
		t.Error("session must be cleared after a failed refresh")
	}
	if store.Len() != 0 {
		t.Errorf("store has %d keys after failed refresh, want 0", store.Len())
	}
	if got := f.bookingsCalls.Load(); got != 1 {
		t.Errorf("bookings calls = %d, want 1", got)
	}
}

func TestDo_NonAuthFailuresAreNotRetried(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusInternalServerError, errors.ErrServer},
		{http.StatusBadRequest, errors.ErrValidation},
		{http.StatusNotFound, errors.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			f := newFakeAPI()
			f.bookingsFail = tt.status
			s, store := setup(t, f)
			seed(t, store, "access-1", "refresh-1")
			_ = s.Reload(context.Background())

			_, err := listBookings(s)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if got := f.bookingsCalls.Load(); got != 1 {
				t.Errorf("bookings calls = %d, want 1", got)
			}
			if got := f.refreshCalls.Load(); got != 0 {
				t.Errorf("refresh calls = %d, want 0", got)
			}
		})
	}
}

func TestDo_ConcurrentRequestsRetryIndependently(t *testing.T) {
	f := newFakeAPI()
	s, store := setup(t, f)
	seed(t, store, "access-1", "refresh-1")
	_ = s.Reload(context.Background())

	const n = 4
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := listBookings(s)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("ListBookings() error = %v", err)
		}
	}
	// Each request is sent at most twice; refreshes may overlap but are bounded by n.
	if got := f.bookingsCalls.Load(); got > 2*n {
		t.Errorf("bookings calls = %d, want at most %d", got, 2*n)
	}
	if got := f.refreshCalls.Load(); got < 1 || got > n {
		t.Errorf("refresh calls = %d, want between 1 and %d", got, n)
	}
}

// -----------------------------------------------------------------------------
// Refresh, logout, init
// -----------------------------------------------------------------------------

func TestRefresh_WithoutRefreshToken(t *testing.T) {
	f := newFakeAPI()
	s, _ := setup(t, f)

	if s.Refresh(context.Background()) {
		t.Error("Refresh() = true without a refresh token")
	}
	if got := f.refreshCalls.Load(); got != 0 {
		t.Errorf("refresh calls = %d, want 0", got)
	}
}

func TestLogout_ClearsEvenWhenServerFails(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"server ok", http.StatusOK},
		{"server error", http.StatusInternalServerError},
		{"unauthorized", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeAPI()
			f.logoutStatus = tt.status
			s, store := setup(t, f)
			seed(t, store, "access-1", "refresh-1")
			_ = s.Reload(context.Background())

			if err := s.Logout(context.Background()); err != nil {
				t.Fatalf("Logout() error = %v", err)
			}
			if f.logoutCalls.Load() != 1 {
				t.Errorf("logout calls = %d, want 1", f.logoutCalls.Load())
			}
			if s.IsAuthenticated() || s.Role() != "" || s.User() != nil {
				t.Error("session state must be cleared")
			}
			if store.Len() != 0 {
				t.Errorf("store has %d keys, want 0", store.Len())
			}
		})
	}
}

func TestLogout_ClearsWhenServerUnreachable(t *testing.T) {
	client, _ := api.NewClient("http://127.0.0.1:1", api.WithTimeout(time.Second))
	store := storage.NewMemoryStore()
	seed(t, store, "access-1", "refresh-1")
	s := NewSession(client, store)
	_ = s.Reload(context.Background())

	if err := s.Logout(context.Background()); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if s.IsAuthenticated() || store.Len() != 0 {
		t.Error("local credentials must be cleared when the server is unreachable")
	}
}

func TestInit(t *testing.T) {
	t.Run("no persisted tokens", func(t *testing.T) {
		s, _ := setup(t, newFakeAPI())
		if err := s.Init(context.Background()); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if s.IsAuthenticated() {
			t.Error("session should not be authenticated")
		}
	})

	t.Run("valid token", func(t *testing.T) {
		f := newFakeAPI()
		f.valid["access-1"] = true
		s, store := setup(t, f)
		seed(t, store, "access-1", "refresh-1")

		if err := s.Init(context.Background()); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if !s.IsAuthenticated() || s.Role() != "manager" || s.UserID() != "5" {
			t.Errorf("authenticated=%v role=%q user=%q", s.IsAuthenticated(), s.Role(), s.UserID())
		}
		role, _ := storage.LoadString(context.Background(), store, storage.KeyRole)
		if role != "manager" {
			t.Errorf("persisted role = %q, want manager", role)
		}
		if f.refreshCalls.Load() != 0 {
			t.Error("a valid token should not be refreshed")
		}
	})

	t.Run("expired token refreshed", func(t *testing.T) {
		f := newFakeAPI()
		s, store := setup(t, f)
		seed(t, store, "access-1", "refresh-1")

		if err := s.Init(context.Background()); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if !s.IsAuthenticated() || s.AccessToken() != "access-2" {
			t.Errorf("authenticated=%v token=%q", s.IsAuthenticated(), s.AccessToken())
		}
	})

	t.Run("expired token and refresh", func(t *testing.T) {
		f := newFakeAPI()
		f.refreshOK = false
		s, store := setup(t, f)
		seed(t, store, "access-1", "refresh-1")

		if err := s.Init(context.Background()); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if s.IsAuthenticated() || store.Len() != 0 {
			t.Error("unrecoverable session should be cleared")
		}
	})

	t.Run("refreshed token rejected again", func(t *testing.T) {
		f := newFakeAPI()
		f.rejectAll = true
		s, store := setup(t, f)
		seed(t, store, "access-1", "refresh-1")

		if err := s.Init(context.Background()); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if f.refreshCalls.Load() != 1 {
			t.Errorf("refresh calls = %d, want 1", f.refreshCalls.Load())
		}
		if s.IsAuthenticated() || store.Len() != 0 {
			t.Error("a token rejected after refresh should clear the session")
		}
	})

	t.Run("server says not authenticated", func(t *testing.T) {
		f := newFakeAPI()
		f.valid["access-1"] = true
		f.authStatus = `{"authenticated":false}`
		s, store := setup(t, f)
		seed(t, store, "access-1", "refresh-1")

		if err := s.Init(context.Background()); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if s.IsAuthenticated() {
			t.Error("session should be cleared")
		}
	})
}

func TestSession_Watch(t *testing.T) {
	dir := t.TempDir()
	fs, err := storage.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	s, _ := setup(t, newFakeAPI())
	s.store = fs

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Watch(ctx, fs) }()
	time.Sleep(100 * time.Millisecond)

	other, _ := storage.NewFileStore(dir)
	seed(t, other, "external-access", "external-refresh")

	deadline := time.Now().Add(2 * time.Second)
	for !s.IsAuthenticated() {
		if time.Now().After(deadline) {
			t.Fatal("session did not pick up external login")
		}
		time.Sleep(20 * time.Millisecond)
	}
	if s.AccessToken() != "external-access" {
		t.Errorf("AccessToken() = %q", s.AccessToken())
	}
}
