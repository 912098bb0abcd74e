// Package errors provides centralized error definitions and error handling utilities
// for the autocare client. It defines the failure taxonomy surfaced by the remote
// booking API, the client-side validation gate error raised by the booking wizard,
// and classification helpers used to turn any error into a single user message.
//
// # Error Types
//
// API errors are normalized at the request-client boundary into an *APIError with
// one of these kinds:
//   - KindInvalidCredentials: 401 on login
//   - KindSessionExpired: 401 on an authenticated request after a failed refresh
//   - KindValidation: 400 with field-keyed messages
//   - KindNotFound: 404
//   - KindServer: any status >= 500
//   - KindNetwork: the transport could not reach the server
//   - KindRejected: any other non-2xx status
//
// Client-side step validation failures are *GateError values. They never leave the
// wizard and are never sent to the server.
//
// # Usage
//
//	if errors.Is(err, errors.ErrSessionExpired) { ... }
//
//	var apiErr *errors.APIError
//	if errors.As(err, &apiErr) && apiErr.Kind == errors.KindValidation { ... }
//
//	fmt.Fprintln(os.Stderr, errors.UserMessage(err))
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// API sentinel errors. An *APIError matches the sentinel for its Kind.
var (
	// ErrInvalidCredentials indicates the login was rejected.
	ErrInvalidCredentials = New("invalid credentials")
	// ErrSessionExpired indicates the session could not be renewed.
	ErrSessionExpired = New("session expired")
	// ErrValidation indicates the server rejected the request payload.
	ErrValidation = New("validation failed")
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = New("not found")
	// ErrServer indicates the server failed to handle the request.
	ErrServer = New("server error")
	// ErrNetwork indicates the server could not be reached.
	ErrNetwork = New("network error")
	// ErrRejected indicates any other non-successful response.
	ErrRejected = New("request rejected")
)

// Client-side sentinel errors.
var (
	// ErrValidationGate indicates a wizard step precondition is unmet.
	ErrValidationGate = New("step validation failed")
	// ErrSubmitInProgress indicates a booking submission is already in flight.
	ErrSubmitInProgress = New("submission already in progress")
	// ErrWizardClosed indicates the wizard was already submitted or cancelled.
	ErrWizardClosed = New("wizard is closed")
	// ErrNotAuthenticated indicates no access token is stored.
	ErrNotAuthenticated = New("not authenticated")
	// ErrNoRefreshToken indicates no refresh token is stored.
	ErrNoRefreshToken = New("no refresh token available")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
	// ErrPermissionDenied indicates the signed-in role may not perform the operation.
	ErrPermissionDenied = New("permission denied")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// AutocareError is the base interface for all autocare errors.
type AutocareError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// API Errors
// -----------------------------------------------------------------------------

// Kind classifies an API failure.
type Kind int

const (
	KindRejected Kind = iota
	KindInvalidCredentials
	KindSessionExpired
	KindValidation
	KindNotFound
	KindServer
	KindNetwork
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindSessionExpired:
		return "session_expired"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	default:
		return "rejected"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidCredentials:
		return ErrInvalidCredentials
	case KindSessionExpired:
		return ErrSessionExpired
	case KindValidation:
		return ErrValidation
	case KindNotFound:
		return ErrNotFound
	case KindServer:
		return ErrServer
	case KindNetwork:
		return ErrNetwork
	default:
		return ErrRejected
	}
}

// APIError is the single typed failure produced by the request client.
//
// Example:
//
//	err := errors.NewValidationError(map[string][]string{"date": {"Date cannot be in the past."}})
//	fmt.Println(errors.UserMessage(err)) // "date: Date cannot be in the past."
type APIError struct {
	baseError
	Kind       Kind
	StatusCode int
	Operation  string
	Fields     map[string][]string
}

func newAPIError(kind Kind, status int, message string, cause error) *APIError {
	e := &APIError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
		Kind:       kind,
		StatusCode: status,
	}
	switch kind {
	case KindServer, KindNetwork:
		e.retryable = true
	case KindValidation, KindNotFound, KindInvalidCredentials:
		e.severity = SeverityWarning
	}
	return e
}

// NewInvalidCredentialsError creates the error returned for a rejected login.
func NewInvalidCredentialsError() *APIError {
	return newAPIError(KindInvalidCredentials, 401, "Invalid credentials", nil)
}

// NewSessionExpiredError creates the error returned when a 401 could not be
// recovered by refreshing the access token.
func NewSessionExpiredError(cause error) *APIError {
	return newAPIError(KindSessionExpired, 401, "Session expired. Please login again.", cause)
}

// NewValidationError creates a 400 error carrying field-keyed messages.
func NewValidationError(fields map[string][]string) *APIError {
	e := newAPIError(KindValidation, 400, joinFieldMessages(fields), nil)
	e.Fields = fields
	return e
}

// NewNotFoundError creates a 404 error for the named resource.
func NewNotFoundError(resource string) *APIError {
	return newAPIError(KindNotFound, 404, fmt.Sprintf("%s not found", resource), nil)
}

// NewServerError creates an error for a response with status >= 500.
func NewServerError(status int) *APIError {
	return newAPIError(KindServer, status, "Server error, please try again later", nil)
}

// NewNetworkError creates an error for an unreachable server.
func NewNetworkError(cause error) *APIError {
	return newAPIError(KindNetwork, 0, "Network error, please check your connection", cause)
}

// NewRejectedError creates an error for any other non-2xx status.
func NewRejectedError(status int, detail string) *APIError {
	if detail == "" {
		detail = fmt.Sprintf("request failed with status %d", status)
	}
	return newAPIError(KindRejected, status, detail, nil)
}

// WithOperation records which API operation failed.
func (e *APIError) WithOperation(op string) *APIError {
	e.Operation = op
	return e
}

// WithMessage replaces the user-facing message when msg is non-empty.
func (e *APIError) WithMessage(msg string) *APIError {
	if msg != "" {
		e.message = msg
	}
	return e
}

// WithCause adds a cause to the error.
func (e *APIError) WithCause(cause error) *APIError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *APIError) Error() string {
	prefix := "api error"
	if e.Operation != "" {
		prefix = fmt.Sprintf("api error [op=%s]", e.Operation)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Message returns the user-facing message without prefix or cause.
func (e *APIError) Message() string {
	return e.message
}

// Is reports whether target is *APIError or the sentinel for this kind.
func (e *APIError) Is(target error) bool {
	if _, ok := target.(*APIError); ok {
		return true
	}
	if target == e.Kind.sentinel() {
		return true
	}
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// joinFieldMessages flattens a field error map into one message. Keys are
// sorted for stable output; non_field_errors and detail are emitted without a
// field prefix.
func joinFieldMessages(fields map[string][]string) string {
	if len(fields) == 0 {
		return "Validation failed"
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		msg := strings.Join(fields[k], ", ")
		if msg == "" {
			continue
		}
		if k == "non_field_errors" || k == "detail" || k == "error" {
			parts = append(parts, msg)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", k, msg))
	}
	if len(parts) == 0 {
		return "Validation failed"
	}
	return strings.Join(parts, "; ")
}

// -----------------------------------------------------------------------------
// Client-side Errors
// -----------------------------------------------------------------------------

// GateError is a wizard step-validation failure. It is never sent to the server.
type GateError struct {
	baseError
	Step int
}

// NewGateError creates a GateError for the given wizard step.
func NewGateError(step int, message string) *GateError {
	return &GateError{
		baseError: baseError{
			message:    message,
			severity:   SeverityInfo,
			userFacing: true,
		},
		Step: step,
	}
}

// Error returns the gate message.
func (e *GateError) Error() string {
	return e.message
}

// Is checks if this error matches the target.
func (e *GateError) Is(target error) bool {
	if _, ok := target.(*GateError); ok {
		return true
	}
	return target == ErrValidationGate
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var ae AutocareError
	if As(err, &ae) {
		return ae.IsRetryable()
	}
	return false
}

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	var ae AutocareError
	if As(err, &ae) {
		return ae.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement AutocareError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}
	var ae AutocareError
	if As(err, &ae) {
		return ae.Severity()
	}
	return SeverityError
}

// KindOf returns the API failure kind of err, and false if err is not an API error.
func KindOf(err error) (Kind, bool) {
	var apiErr *APIError
	if As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return KindRejected, false
}

// UserMessage returns the single string shown to the user for err.
// Internal errors collapse to a generic message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if As(err, &apiErr) {
		return apiErr.message
	}
	var gateErr *GateError
	if As(err, &gateErr) {
		return gateErr.message
	}
	if IsUserFacing(err) {
		return err.Error()
	}
	switch {
	case Is(err, ErrSubmitInProgress), Is(err, ErrWizardClosed),
		Is(err, ErrNotAuthenticated), Is(err, ErrInvalidInput),
		Is(err, ErrPermissionDenied):
		return err.Error()
	}
	return "Something went wrong. Check the log for details."
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
