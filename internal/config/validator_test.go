package config

import (
	"strings"
	"testing"
)

func hasFieldError(errs []ValidationError, field string) bool {
	for _, err := range errs {
		if err.Field == field {
			return true
		}
	}
	return false
}

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "api.timeout_seconds",
		Value:   0,
		Message: "must be positive",
	}

	expected := "api.timeout_seconds: must be positive (got: 0)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var errs ValidationErrors
		if errs.Error() != "" {
			t.Errorf("Error() = %q, want empty", errs.Error())
		}
	})

	t.Run("single", func(t *testing.T) {
		errs := ValidationErrors{{Field: "a", Value: 1, Message: "bad"}}
		if errs.Error() != "a: bad (got: 1)" {
			t.Errorf("Error() = %q", errs.Error())
		}
	})

	t.Run("multiple", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "a", Value: 1, Message: "bad"},
			{Field: "b", Value: 2, Message: "worse"},
		}
		got := errs.Error()
		if !strings.HasPrefix(got, "2 validation errors:") {
			t.Errorf("Error() = %q, want count prefix", got)
		}
		if !strings.Contains(got, "1. a: bad") || !strings.Contains(got, "2. b: worse") {
			t.Errorf("Error() = %q, want numbered entries", got)
		}
	})
}

func TestConfig_Validate_DefaultConfig(t *testing.T) {
	cfg := Default()
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("default config should be valid, got: %v", errs)
	}
}

func TestConfig_Validate_API(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		field   string
		wantErr bool
	}{
		{"https base url", func(c *Config) { c.API.BaseURL = "https://api.example.com/" }, "api.base_url", false},
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }, "api.base_url", true},
		{"relative base url", func(c *Config) { c.API.BaseURL = "/api/" }, "api.base_url", true},
		{"ftp base url", func(c *Config) { c.API.BaseURL = "ftp://example.com/" }, "api.base_url", true},
		{"zero timeout", func(c *Config) { c.API.TimeoutSeconds = 0 }, "api.timeout_seconds", true},
		{"negative rate", func(c *Config) { c.API.RateLimitPerSec = -1 }, "api.rate_limit_per_sec", true},
		{"unlimited rate", func(c *Config) { c.API.RateLimitPerSec = 0; c.API.RateBurst = 0 }, "api.rate_burst", false},
		{"zero burst with limit", func(c *Config) { c.API.RateBurst = 0 }, "api.rate_burst", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if got := hasFieldError(cfg.Validate(), tt.field); got != tt.wantErr {
				t.Errorf("error for %s = %v, want %v", tt.field, got, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_TUI(t *testing.T) {
	for _, theme := range []string{"default", "mono", ""} {
		cfg := Default()
		cfg.TUI.Theme = theme
		if hasFieldError(cfg.Validate(), "tui.theme") {
			t.Errorf("theme %q should be valid", theme)
		}
	}

	cfg := Default()
	cfg.TUI.Theme = "neon"
	if !hasFieldError(cfg.Validate(), "tui.theme") {
		t.Error("expected error for unknown theme")
	}

	cfg = Default()
	cfg.TUI.StatusSeconds = -1
	if !hasFieldError(cfg.Validate(), "tui.status_seconds") {
		t.Error("expected error for negative status seconds")
	}
}

func TestConfig_Validate_Chat(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"", false},
		{"ws://localhost:8000/ws/chat/", false},
		{"wss://chat.example.com/ws/chat/", false},
		{"http://localhost:8000/ws/chat/", true},
	}

	for _, tt := range tests {
		cfg := Default()
		cfg.Chat.WSURL = tt.url
		if got := hasFieldError(cfg.Validate(), "chat.ws_url"); got != tt.wantErr {
			t.Errorf("ws_url %q: error = %v, want %v", tt.url, got, tt.wantErr)
		}
	}
}

func TestConfig_Validate_Bookings(t *testing.T) {
	cfg := Default()
	cfg.Bookings.WatchIntervalSeconds = 1
	if !hasFieldError(cfg.Validate(), "bookings.watch_interval_seconds") {
		t.Error("expected error for too-short watch interval")
	}
}

func TestConfig_Validate_Output(t *testing.T) {
	for _, format := range ValidOutputFormats() {
		cfg := Default()
		cfg.Output.Format = format
		if hasFieldError(cfg.Validate(), "output.format") {
			t.Errorf("format %q should be valid", format)
		}
	}

	cfg := Default()
	cfg.Output.Format = "xml"
	if !hasFieldError(cfg.Validate(), "output.format") {
		t.Error("expected error for xml output format")
	}
}

func TestConfig_Validate_Logging(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", ""} {
			cfg := Default()
			cfg.Logging.Level = level
			if hasFieldError(cfg.Validate(), "logging.level") {
				t.Errorf("level %q should be valid", level)
			}
		}
	})

	t.Run("case sensitive log level", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Level = "INFO"
		if !hasFieldError(cfg.Validate(), "logging.level") {
			t.Error("expected error for uppercase log level")
		}
	})

	t.Run("max size bounds", func(t *testing.T) {
		for _, size := range []int{0, -1, 1001} {
			cfg := Default()
			cfg.Logging.MaxSizeMB = size
			if !hasFieldError(cfg.Validate(), "logging.max_size_mb") {
				t.Errorf("max_size_mb %d should be invalid", size)
			}
		}
	})

	t.Run("negative backups", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.MaxBackups = -1
		if !hasFieldError(cfg.Validate(), "logging.max_backups") {
			t.Error("expected error for negative max_backups")
		}
	})
}

func TestConfig_Validate_MultipleErrors(t *testing.T) {
	cfg := Default()
	cfg.API.BaseURL = ""
	cfg.API.TimeoutSeconds = 0
	cfg.Logging.Level = "invalid"
	cfg.Output.Format = "csv"

	errs := cfg.Validate()
	if len(errs) < 4 {
		t.Errorf("expected at least 4 errors, got %d: %v", len(errs), errs)
	}
}
