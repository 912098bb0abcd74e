package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/autocare/autocare/internal/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL + "/api", WithTimeout(2*time.Second))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    string
		wantErr bool
	}{
		{"adds trailing slash", "http://localhost:8000/api", "http://localhost:8000/api/", false},
		{"keeps trailing slash", "https://example.com/", "https://example.com/", false},
		{"rejects ws", "ws://localhost:8000/", "", true},
		{"rejects relative", "/api/", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.baseURL)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewClient() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && c.BaseURL() != tt.want {
				t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), tt.want)
			}
		})
	}
}

func TestClient_Send_OK(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/bookings/" {
			t.Errorf("path = %q, want /api/bookings/", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		if r.Header.Get(RequestIDHeader) == "" {
			t.Error("missing request id header")
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["date"] != "2025-06-10" {
			t.Errorf("body date = %q", body["date"])
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": 17, "status": "pending"}`)
	})

	req := NewRequest("create_booking", http.MethodPost, "/bookings/", map[string]string{"date": "2025-06-10"})
	req.Token = "tok"
	res := client.Send(context.Background(), req)
	if res.Outcome != OutcomeOK {
		t.Fatalf("Outcome = %v, want ok (err: %v)", res.Outcome, res.Err)
	}
	if req.RequestID == "" {
		t.Error("Send should assign a request id to the request")
	}

	var b Booking
	if err := res.Response.Decode(&b); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if b.ID != "17" || b.Status != StatusPending {
		t.Errorf("decoded booking = %+v", b)
	}
}

func TestClient_Send_KeepsRequestID(t *testing.T) {
	var seen []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get(RequestIDHeader))
		w.WriteHeader(http.StatusNoContent)
	})

	req := NewRequest("ping", http.MethodGet, "ping", nil)
	client.Send(context.Background(), req)
	req.Retried = true
	client.Send(context.Background(), req)

	if len(seen) != 2 || seen[0] == "" || seen[0] != seen[1] {
		t.Errorf("request ids = %v, want the same id twice", seen)
	}
}

func TestClient_Send_Classification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantOutcome Outcome
		wantKind    errors.Kind
		wantMessage string
	}{
		{"unauthorized", 401, `{"detail":"Token expired"}`, OutcomeAuthExpired, errors.KindRejected, "Token expired"},
		{"validation", 400, `{"date":["Date cannot be in the past."]}`, OutcomeFailure, errors.KindValidation, "date: Date cannot be in the past."},
		{"not found", 404, `{"detail":"Not found."}`, OutcomeFailure, errors.KindNotFound, "Not found."},
		{"not found no body", 404, ``, OutcomeFailure, errors.KindNotFound, "resource not found"},
		{"server", 502, `<html>bad gateway</html>`, OutcomeFailure, errors.KindServer, "Server error, please try again later"},
		{"forbidden", 403, `{"error":"Only pending bookings can be cancelled"}`, OutcomeFailure, errors.KindRejected, "Only pending bookings can be cancelled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			res := client.Send(context.Background(), NewRequest("op", http.MethodGet, "x/", nil))
			if res.Outcome != tt.wantOutcome {
				t.Fatalf("Outcome = %v, want %v", res.Outcome, tt.wantOutcome)
			}
			kind, ok := errors.KindOf(res.Err)
			if !ok || kind != tt.wantKind {
				t.Errorf("KindOf() = (%v, %v), want %v", kind, ok, tt.wantKind)
			}
			if got := errors.UserMessage(res.Err); got != tt.wantMessage {
				t.Errorf("UserMessage() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestClient_Send_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := NewClient(url)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	res := client.Send(context.Background(), NewRequest("op", http.MethodGet, "x/", nil))
	if res.Outcome != OutcomeFailure {
		t.Fatalf("Outcome = %v, want failure", res.Outcome)
	}
	if !errors.Is(res.Err, errors.ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork", res.Err)
	}
	if !errors.IsRetryable(res.Err) {
		t.Error("network errors should be retryable")
	}
}

func TestClient_Send_ContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := client.Send(ctx, NewRequest("op", http.MethodGet, "x/", nil))
	if res.Outcome != OutcomeFailure {
		t.Fatalf("Outcome = %v, want failure", res.Outcome)
	}
	if !errors.Is(res.Err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", res.Err)
	}
}

func TestClient_RateLimit(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNoContent)
	})
	WithRateLimit(1000, 1)(client)

	for i := 0; i < 3; i++ {
		if res := client.Send(context.Background(), NewRequest("op", http.MethodGet, "x/", nil)); res.Outcome != OutcomeOK {
			t.Fatalf("Send %d failed: %v", i, res.Err)
		}
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}

	WithRateLimit(0, 0)(client)
	if client.limiter != nil {
		t.Error("non-positive rate should disable the limiter")
	}
}

func TestFieldErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want map[string][]string
	}{
		{"list values", `{"username":["taken"]}`, map[string][]string{"username": {"taken"}}},
		{"scalar value", `{"email":"invalid"}`, map[string][]string{"email": {"invalid"}}},
		{"nested", `{"user":{"email":["bad"]}}`, map[string][]string{"user": {"email: bad"}}},
		{"top level list", `["Passwords do not match"]`, map[string][]string{"non_field_errors": {"Passwords do not match"}}},
		{"not json", `oops`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FieldErrors([]byte(tt.body))
			if len(got) != len(tt.want) {
				t.Fatalf("FieldErrors() = %v, want %v", got, tt.want)
			}
			for k, want := range tt.want {
				if len(got[k]) != len(want) || got[k][0] != want[0] {
					t.Errorf("FieldErrors()[%q] = %v, want %v", k, got[k], want)
				}
			}
		})
	}
}

func TestIDUnmarshal(t *testing.T) {
	var v struct {
		A ID      `json:"a"`
		B ID      `json:"b"`
		C ID      `json:"c"`
		D Decimal `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"a": 12, "b": "f3a1-uuid", "c": null, "d": "49.99"}`), &v); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if v.A != "12" || v.B != "f3a1-uuid" || v.C != "" || v.D != "49.99" {
		t.Errorf("decoded = %+v", v)
	}

	var bad ID
	if err := json.Unmarshal([]byte(`{"x":1}`), &bad); err == nil {
		t.Error("object should not decode into ID")
	}
}
