package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "api.base_url")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidOutputFormats returns the list of valid CLI output formats
func ValidOutputFormats() []string {
	return []string{"table", "json", "yaml"}
}

// ValidThemes returns the list of built-in TUI themes
func ValidThemes() []string {
	return []string{"default", "mono"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateAPI()...)
	errors = append(errors, c.validateTUI()...)
	errors = append(errors, c.validateChat()...)
	errors = append(errors, c.validateBookings()...)
	errors = append(errors, c.validateOutput()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateAPI() []ValidationError {
	var errors []ValidationError

	u, err := url.Parse(c.API.BaseURL)
	if c.API.BaseURL == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "api.base_url",
			Value:   c.API.BaseURL,
			Message: "must be an absolute http or https URL",
		})
	}

	if c.API.TimeoutSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "api.timeout_seconds",
			Value:   c.API.TimeoutSeconds,
			Message: "must be positive",
		})
	}

	if c.API.RateLimitPerSec < 0 {
		errors = append(errors, ValidationError{
			Field:   "api.rate_limit_per_sec",
			Value:   c.API.RateLimitPerSec,
			Message: "must be non-negative",
		})
	}

	if c.API.RateLimitPerSec > 0 && c.API.RateBurst < 1 {
		errors = append(errors, ValidationError{
			Field:   "api.rate_burst",
			Value:   c.API.RateBurst,
			Message: "must be at least 1 when rate limiting is enabled",
		})
	}

	return errors
}

func (c *Config) validateTUI() []ValidationError {
	var errors []ValidationError

	if c.TUI.Theme != "" && !slices.Contains(ValidThemes(), c.TUI.Theme) {
		errors = append(errors, ValidationError{
			Field:   "tui.theme",
			Value:   c.TUI.Theme,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidThemes(), ", ")),
		})
	}

	if c.TUI.StatusSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "tui.status_seconds",
			Value:   c.TUI.StatusSeconds,
			Message: "must be non-negative",
		})
	}

	return errors
}

func (c *Config) validateChat() []ValidationError {
	if c.Chat.WSURL == "" {
		return nil
	}
	u, err := url.Parse(c.Chat.WSURL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		return []ValidationError{{
			Field:   "chat.ws_url",
			Value:   c.Chat.WSURL,
			Message: "must be a ws or wss URL",
		}}
	}
	return nil
}

func (c *Config) validateBookings() []ValidationError {
	const minWatchInterval = 5
	if c.Bookings.WatchIntervalSeconds < minWatchInterval {
		return []ValidationError{{
			Field:   "bookings.watch_interval_seconds",
			Value:   c.Bookings.WatchIntervalSeconds,
			Message: fmt.Sprintf("must be at least %d", minWatchInterval),
		}}
	}
	return nil
}

func (c *Config) validateOutput() []ValidationError {
	if !slices.Contains(ValidOutputFormats(), c.Output.Format) {
		return []ValidationError{{
			Field:   "output.format",
			Value:   c.Output.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidOutputFormats(), ", ")),
		}}
	}
	return nil
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	const maxLogSizeMB = 1000
	if c.Logging.MaxSizeMB <= 0 || c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("must be between 1 and %d", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
