// Package api is the HTTP transport for the booking API. Client sends single
// requests and classifies each outcome into a Result; retrying after a token
// refresh is left to the caller (see internal/auth).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/autocare/autocare/internal/errors"
	"github.com/autocare/autocare/internal/logging"
)

const (
	// defaultTimeout is the per-request HTTP timeout.
	defaultTimeout = 10 * time.Second

	// maxBodySize caps how much of a response body is read.
	maxBodySize = 4 << 20

	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-ID"
)

// Request describes one logical API call. The same Request value is reused
// when a call is re-issued after a token refresh, so RequestID and Retried
// survive the retry.
type Request struct {
	Method    string
	Path      string
	Body      any
	Token     string
	Operation string
	RequestID string

	// Retried marks a request that has already been re-issued once after a refresh.
	Retried bool
}

// NewRequest creates a Request for the given operation name.
func NewRequest(op, method, path string, body any) *Request {
	return &Request{Operation: op, Method: method, Path: path, Body: body}
}

// Outcome is the first stage of a Result.
type Outcome int

const (
	// OutcomeOK means the server answered with a 2xx status.
	OutcomeOK Outcome = iota
	// OutcomeAuthExpired means the server answered 401.
	OutcomeAuthExpired
	// OutcomeFailure covers every other failure, already classified in Result.Err.
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeAuthExpired:
		return "auth_expired"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Response is a successful answer from the server.
type Response struct {
	StatusCode int
	Body       []byte
	RequestID  string
}

// Decode unmarshals the response body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if r == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Result is the two-stage outcome of Client.Send.
type Result struct {
	Outcome  Outcome
	Response *Response
	// Err is set for OutcomeAuthExpired (the raw 401 classified as rejected)
	// and OutcomeFailure.
	Err error
}

// Client sends requests to the booking API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	logger     *logging.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit throttles outgoing requests. A non-positive perSecond disables throttling.
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger.WithComponent("api")
		}
	}
}

// NewClient creates a Client rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must use http or https", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Send issues req once and classifies the outcome. It never retries.
func (c *Client) Send(ctx context.Context, req *Request) Result {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	log := c.logger.WithRequest(req.RequestID).With("op", req.Operation, "retried", req.Retried)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Result{Outcome: OutcomeFailure, Err: errors.Wrap(err, "rate limiter")}
		}
	}

	httpReq, err := c.build(ctx, req)
	if err != nil {
		log.Error("failed to build request", "error", err)
		return Result{Outcome: OutcomeFailure, Err: err}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return Result{Outcome: OutcomeFailure, Err: ctx.Err()}
		}
		log.Warn("request failed", "method", req.Method, "path", req.Path, "error", err)
		return Result{Outcome: OutcomeFailure, Err: errors.NewNetworkError(err).WithOperation(req.Operation)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		log.Warn("failed to read response", "status", resp.StatusCode, "error", err)
		return Result{Outcome: OutcomeFailure, Err: errors.NewNetworkError(err).WithOperation(req.Operation)}
	}

	log.Debug("request completed",
		"method", req.Method,
		"path", req.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return Result{
			Outcome:  OutcomeOK,
			Response: &Response{StatusCode: resp.StatusCode, Body: body, RequestID: req.RequestID},
		}
	}

	apiErr := Classify(resp.StatusCode, body).WithOperation(req.Operation)
	if resp.StatusCode == http.StatusUnauthorized {
		return Result{Outcome: OutcomeAuthExpired, Err: apiErr}
	}
	log.Warn("request rejected", "status", resp.StatusCode, "kind", apiErr.Kind.String(), "message", apiErr.Message())
	return Result{Outcome: OutcomeFailure, Err: apiErr}
}

func (c *Client) build(ctx context.Context, req *Request) (*http.Request, error) {
	ref, err := url.Parse(strings.TrimPrefix(req.Path, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", req.Path, err)
	}
	target := c.baseURL.ResolveReference(ref)

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	httpReq.Header.Set(RequestIDHeader, req.RequestID)
	return httpReq, nil
}

// Do sends an unauthenticated request and returns the response or the
// classified error. A 401 is returned as a rejected API error.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	res := c.Send(ctx, req)
	if res.Outcome != OutcomeOK {
		return nil, res.Err
	}
	return res.Response, nil
}
