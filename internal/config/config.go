package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete autocare configuration
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Auth     AuthConfig     `mapstructure:"auth"`
	TUI      TUIConfig      `mapstructure:"tui"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Bookings BookingsConfig `mapstructure:"bookings"`
	Output   OutputConfig   `mapstructure:"output"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// APIConfig controls how the client talks to the booking API
type APIConfig struct {
	// BaseURL is the root of the booking API (default: "http://127.0.0.1:8000/")
	BaseURL string `mapstructure:"base_url"`
	// TimeoutSeconds bounds every HTTP round trip (default: 10)
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	// RateLimitPerSec caps outgoing requests per second, 0 = unlimited (default: 10)
	RateLimitPerSec float64 `mapstructure:"rate_limit_per_sec"`
	// RateBurst is the token bucket burst size (default: 5)
	RateBurst int `mapstructure:"rate_burst"`
	// UserAgent is sent with every request
	UserAgent string `mapstructure:"user_agent"`
}

// AuthConfig controls credential persistence
type AuthConfig struct {
	// StoreDir is where tokens are persisted. Empty means {config dir}/credentials.
	// Supports ~ for home directory expansion.
	StoreDir string `mapstructure:"store_dir"`
	// WatchStore reloads credentials when another process logs in or out (default: true)
	WatchStore bool `mapstructure:"watch_store"`
}

// TUIConfig controls the booking wizard UI
type TUIConfig struct {
	// Theme is the color theme: "default" or "mono"
	Theme string `mapstructure:"theme"`
	// ShowHelp shows the key binding help bar (default: true)
	ShowHelp bool `mapstructure:"show_help"`
	// StatusSeconds is how long a notification stays in the status line (default: 4)
	StatusSeconds int `mapstructure:"status_seconds"`
}

// ChatConfig controls the websocket chat feed
type ChatConfig struct {
	// WSURL overrides the websocket root. Empty derives it from api.base_url.
	WSURL string `mapstructure:"ws_url"`
}

// BookingsConfig controls booking list behavior
type BookingsConfig struct {
	// WatchIntervalSeconds is the poll interval for `bookings watch` (default: 30)
	WatchIntervalSeconds int `mapstructure:"watch_interval_seconds"`
}

// OutputConfig controls CLI output rendering
type OutputConfig struct {
	// Format is the default output format: "table", "json" or "yaml" (default: "table")
	Format string `mapstructure:"format"`
}

// LoggingConfig controls client logging
type LoggingConfig struct {
	// Enabled controls whether logs are written to the log file (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:         "http://127.0.0.1:8000/",
			TimeoutSeconds:  10,
			RateLimitPerSec: 10,
			RateBurst:       5,
			UserAgent:       "autocare-cli",
		},
		Auth: AuthConfig{
			StoreDir:   "",
			WatchStore: true,
		},
		TUI: TUIConfig{
			Theme:         "default",
			ShowHelp:      true,
			StatusSeconds: 4,
		},
		Chat: ChatConfig{
			WSURL: "",
		},
		Bookings: BookingsConfig{
			WatchIntervalSeconds: 30,
		},
		Output: OutputConfig{
			Format: "table",
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Timeout returns the API timeout as a time.Duration
func (c *APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StatusDuration returns how long a status notification is shown
func (c *TUIConfig) StatusDuration() time.Duration {
	return time.Duration(c.StatusSeconds) * time.Second
}

// WatchInterval returns the bookings poll interval
func (c *BookingsConfig) WatchInterval() time.Duration {
	return time.Duration(c.WatchIntervalSeconds) * time.Second
}

// ResolveStoreDir returns the credential directory, expanding ~ and falling
// back to {config dir}/credentials.
func (a *AuthConfig) ResolveStoreDir() string {
	if a.StoreDir == "" {
		return filepath.Join(ConfigDir(), "credentials")
	}
	path := a.StoreDir
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}

// ResolveWSURL returns the websocket root used by the chat feed. When unset,
// it is derived from the API base URL by swapping http(s) for ws(s).
func (c *Config) ResolveWSURL() string {
	if c.Chat.WSURL != "" {
		return c.Chat.WSURL
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws/chat/"
	return u.String()
}

// LogDir returns the directory holding the client log file
func LogDir() string {
	return filepath.Join(ConfigDir(), "logs")
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// API defaults
	viper.SetDefault("api.base_url", defaults.API.BaseURL)
	viper.SetDefault("api.timeout_seconds", defaults.API.TimeoutSeconds)
	viper.SetDefault("api.rate_limit_per_sec", defaults.API.RateLimitPerSec)
	viper.SetDefault("api.rate_burst", defaults.API.RateBurst)
	viper.SetDefault("api.user_agent", defaults.API.UserAgent)

	// Auth defaults
	viper.SetDefault("auth.store_dir", defaults.Auth.StoreDir)
	viper.SetDefault("auth.watch_store", defaults.Auth.WatchStore)

	// TUI defaults
	viper.SetDefault("tui.theme", defaults.TUI.Theme)
	viper.SetDefault("tui.show_help", defaults.TUI.ShowHelp)
	viper.SetDefault("tui.status_seconds", defaults.TUI.StatusSeconds)

	// Chat defaults
	viper.SetDefault("chat.ws_url", defaults.Chat.WSURL)

	// Bookings defaults
	viper.SetDefault("bookings.watch_interval_seconds", defaults.Bookings.WatchIntervalSeconds)

	// Output defaults
	viper.SetDefault("output.format", defaults.Output.Format)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults when the
// loaded configuration is invalid.
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "autocare")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".autocare"
	}
	return filepath.Join(home, ".config", "autocare")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
