package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// SettingType is how a setting's value is parsed and edited.
type SettingType string

const (
	TypeString SettingType = "string"
	TypeBool   SettingType = "bool"
	TypeInt    SettingType = "int"
	TypeFloat  SettingType = "float"
	TypeSelect SettingType = "select"
)

// Setting describes one user-editable configuration key.
type Setting struct {
	Key         string
	Label       string
	Description string
	Type        SettingType
	Options     []string // for TypeSelect
	Category    string
	Default     any
}

// Settings returns every user-editable key in display order.
func Settings() []Setting {
	d := Default()
	return []Setting{
		{Key: "api.base_url", Label: "API URL", Description: "Root URL of the booking API", Type: TypeString, Category: "API", Default: d.API.BaseURL},
		{Key: "api.timeout_seconds", Label: "Timeout (s)", Description: "Per-request timeout in seconds", Type: TypeInt, Category: "API", Default: d.API.TimeoutSeconds},
		{Key: "api.rate_limit_per_sec", Label: "Rate Limit (req/s)", Description: "Maximum requests per second (0 = unlimited)", Type: TypeFloat, Category: "API", Default: d.API.RateLimitPerSec},
		{Key: "api.rate_burst", Label: "Rate Burst", Description: "Requests allowed in a burst", Type: TypeInt, Category: "API", Default: d.API.RateBurst},
		{Key: "api.user_agent", Label: "User Agent", Description: "User-Agent header sent with every request", Type: TypeString, Category: "API", Default: d.API.UserAgent},

		{Key: "auth.store_dir", Label: "Credential Dir", Description: "Where tokens are stored (empty = config dir)", Type: TypeString, Category: "Auth", Default: d.Auth.StoreDir},
		{Key: "auth.watch_store", Label: "Watch Credentials", Description: "Pick up logins and logouts from other terminals", Type: TypeBool, Category: "Auth", Default: d.Auth.WatchStore},

		{Key: "tui.theme", Label: "Theme", Description: "Color theme of the booking wizard", Type: TypeSelect, Options: ValidThemes(), Category: "TUI", Default: d.TUI.Theme},
		{Key: "tui.show_help", Label: "Show Help", Description: "Show the key binding help bar", Type: TypeBool, Category: "TUI", Default: d.TUI.ShowHelp},
		{Key: "tui.status_seconds", Label: "Status Duration (s)", Description: "How long notifications stay in the status line", Type: TypeInt, Category: "TUI", Default: d.TUI.StatusSeconds},

		{Key: "chat.ws_url", Label: "Chat URL", Description: "Websocket root (empty = derived from API URL)", Type: TypeString, Category: "Chat", Default: d.Chat.WSURL},

		{Key: "bookings.watch_interval_seconds", Label: "Watch Interval (s)", Description: "Poll interval of 'bookings watch'", Type: TypeInt, Category: "Bookings", Default: d.Bookings.WatchIntervalSeconds},
		{Key: "output.format", Label: "Output Format", Description: "Default output of list commands", Type: TypeSelect, Options: ValidOutputFormats(), Category: "Bookings", Default: d.Output.Format},

		{Key: "logging.enabled", Label: "Logging", Description: "Write a debug log to the config directory", Type: TypeBool, Category: "Logging", Default: d.Logging.Enabled},
		{Key: "logging.level", Label: "Log Level", Description: "Minimum level written to the log", Type: TypeSelect, Options: ValidLogLevels(), Category: "Logging", Default: d.Logging.Level},
		{Key: "logging.max_size_mb", Label: "Max Log Size (MB)", Description: "Rotate the log file at this size", Type: TypeInt, Category: "Logging", Default: d.Logging.MaxSizeMB},
		{Key: "logging.max_backups", Label: "Log Backups", Description: "Rotated log files to keep", Type: TypeInt, Category: "Logging", Default: d.Logging.MaxBackups},
	}
}

// LookupSetting finds the setting for key.
func LookupSetting(key string) (Setting, bool) {
	for _, s := range Settings() {
		if s.Key == key {
			return s, true
		}
	}
	return Setting{}, false
}

// SettingKeys returns all editable keys.
func SettingKeys() []string {
	settings := Settings()
	keys := make([]string, len(settings))
	for i, s := range settings {
		keys[i] = s.Key
	}
	return keys
}

// Parse converts raw into the setting's typed value.
func (s Setting) Parse(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch s.Type {
	case TypeBool:
		if raw != "true" && raw != "false" {
			return nil, fmt.Errorf("invalid value for %s: expected true or false", s.Key)
		}
		return raw == "true", nil
	case TypeInt:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", s.Key)
		}
		if v < 0 {
			return nil, fmt.Errorf("invalid value for %s: must be non-negative", s.Key)
		}
		return v, nil
	case TypeFloat:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected decimal value", s.Key)
		}
		if v < 0 {
			return nil, fmt.Errorf("invalid value for %s: must be non-negative", s.Key)
		}
		return v, nil
	case TypeSelect:
		if !slices.Contains(s.Options, raw) {
			return nil, fmt.Errorf("invalid value for %s: %s\nValid options: %s",
				s.Key, raw, strings.Join(s.Options, ", "))
		}
		return raw, nil
	default:
		return raw, nil
	}
}

// SettingCategories groups Settings by category, preserving order.
func SettingCategories() []SettingCategory {
	var cats []SettingCategory
	for _, s := range Settings() {
		if n := len(cats); n > 0 && cats[n-1].Name == s.Category {
			cats[n-1].Settings = append(cats[n-1].Settings, s)
			continue
		}
		cats = append(cats, SettingCategory{Name: s.Category, Settings: []Setting{s}})
	}
	return cats
}

// SettingCategory is a named group of settings.
type SettingCategory struct {
	Name     string
	Settings []Setting
}
