package config

import (
	"bytes"
	"os"
	"os/exec"
	"strings"
	"testing"

	appconfig "github.com/autocare/autocare/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// setup isolates viper and the config directory for one test and returns a
// command whose output is captured.
func setup(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	viper.Reset()
	appconfig.SetDefaults()
	t.Cleanup(viper.Reset)

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	return cmd, &out
}

func readConfig(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigFile(appconfig.ConfigFile())
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("reading written config: %v", err)
	}
	return v
}

func TestRunConfigSet(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  any
	}{
		{"string", "api.base_url", "https://dealer.example.com/api", "https://dealer.example.com/api"},
		{"bool", "tui.show_help", "false", false},
		{"int", "bookings.watch_interval_seconds", "90", 90},
		{"select", "tui.theme", "mono", "mono"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, out := setup(t)

			if err := runConfigSet(cmd, []string{tt.key, tt.value}); err != nil {
				t.Fatalf("runConfigSet() error = %v", err)
			}
			if !strings.Contains(out.String(), "Set "+tt.key) {
				t.Errorf("output = %q, want confirmation", out.String())
			}
			if got := readConfig(t).Get(tt.key); got != tt.want {
				t.Errorf("saved %s = %v (%T), want %v", tt.key, got, got, tt.want)
			}
		})
	}
}

func TestRunConfigSet_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"unknown key", "api.nope", "x", "unknown configuration key"},
		{"bad bool", "auth.watch_store", "yes", "expected true or false"},
		{"negative int", "api.timeout_seconds", "-1", "must be non-negative"},
		{"bad option", "output.format", "xml", "Valid options"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := setup(t)

			err := runConfigSet(cmd, []string{tt.key, tt.value})
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("runConfigSet() error = %v, want containing %q", err, tt.wantErr)
			}
			if _, statErr := os.Stat(appconfig.ConfigFile()); !os.IsNotExist(statErr) {
				t.Error("config file should not be written on invalid input")
			}
		})
	}
}

func TestRunConfigReset(t *testing.T) {
	cmd, out := setup(t)

	if err := runConfigSet(cmd, []string{"tui.theme", "mono"}); err != nil {
		t.Fatal(err)
	}
	if err := runConfigSet(cmd, []string{"output.format", "json"}); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := runConfigReset(cmd, []string{"tui.theme"}); err != nil {
		t.Fatalf("runConfigReset() error = %v", err)
	}
	if !strings.Contains(out.String(), "Reset tui.theme to default: default") {
		t.Errorf("output = %q", out.String())
	}
	v := readConfig(t)
	if v.GetString("tui.theme") != "default" {
		t.Errorf("tui.theme = %q, want default", v.GetString("tui.theme"))
	}
	if v.GetString("output.format") != "json" {
		t.Errorf("output.format = %q, reset of one key must leave others", v.GetString("output.format"))
	}

	if err := runConfigReset(cmd, nil); err != nil {
		t.Fatalf("runConfigReset(all) error = %v", err)
	}
	if got := readConfig(t).GetString("output.format"); got != "table" {
		t.Errorf("output.format after full reset = %q, want table", got)
	}

	if err := runConfigReset(cmd, []string{"nope"}); err == nil {
		t.Error("reset of unknown key should fail")
	}
}

func TestRunConfigInit(t *testing.T) {
	cmd, out := setup(t)

	if err := runConfigInit(cmd, nil); err != nil {
		t.Fatalf("runConfigInit() error = %v", err)
	}
	if !strings.Contains(out.String(), appconfig.ConfigFile()) {
		t.Errorf("output = %q, want path", out.String())
	}

	v := readConfig(t)
	for _, s := range appconfig.Settings() {
		if !v.IsSet(s.Key) {
			t.Errorf("generated config is missing %s", s.Key)
		}
	}
	if got := v.GetString("api.base_url"); got != appconfig.Default().API.BaseURL {
		t.Errorf("api.base_url = %q, want default", got)
	}

	if err := runConfigInit(cmd, nil); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second init error = %v, want already exists", err)
	}
}

func TestRunConfigShow(t *testing.T) {
	cmd, out := setup(t)
	viper.Set("tui.theme", "mono")

	if err := runConfigShow(cmd, nil); err != nil {
		t.Fatalf("runConfigShow() error = %v", err)
	}
	got := out.String()
	for _, want := range []string{"(none - using defaults)", "api:\n", "  base_url: ", "tui:\n", "  theme: mono", "logging:\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("show output missing %q:\n%s", want, got)
		}
	}
}

func TestRunConfigPath(t *testing.T) {
	cmd, out := setup(t)

	if err := runConfigPath(cmd, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "(not created)") || !strings.Contains(out.String(), "AUTOCARE_") {
		t.Errorf("path output = %q", out.String())
	}
}

func TestRunConfigEdit(t *testing.T) {
	cmd, _ := setup(t)
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "")

	origLook, origCommand := execLookPath, execCommand
	t.Cleanup(func() { execLookPath, execCommand = origLook, origCommand })

	var ranEditor, ranWith string
	execLookPath = func(file string) (string, error) {
		if file == "nano" {
			return "/usr/bin/nano", nil
		}
		return "", exec.ErrNotFound
	}
	execCommand = func(name string, args ...string) *exec.Cmd {
		ranEditor, ranWith = name, args[0]
		return exec.Command("true")
	}

	if err := runConfigEdit(cmd, nil); err != nil {
		t.Fatalf("runConfigEdit() error = %v", err)
	}
	if ranEditor != "nano" {
		t.Errorf("editor = %q, want first available fallback nano", ranEditor)
	}
	if ranWith != appconfig.ConfigFile() {
		t.Errorf("edited %q, want %q", ranWith, appconfig.ConfigFile())
	}
	if _, err := os.Stat(appconfig.ConfigFile()); err != nil {
		t.Errorf("edit should create the config file first: %v", err)
	}
}

func TestRunConfigEdit_NoEditor(t *testing.T) {
	cmd, _ := setup(t)
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "")

	origLook := execLookPath
	t.Cleanup(func() { execLookPath = origLook })
	execLookPath = func(string) (string, error) { return "", exec.ErrNotFound }

	err := runConfigEdit(cmd, nil)
	if err == nil || !strings.Contains(err.Error(), "no editor found") {
		t.Errorf("runConfigEdit() error = %v, want no editor found", err)
	}
}

func TestKeyHelp_ListsEverySetting(t *testing.T) {
	help := keyHelp()
	for _, key := range appconfig.SettingKeys() {
		if !strings.Contains(help, key) {
			t.Errorf("key help missing %s", key)
		}
	}
	if !strings.Contains(help, "Options: default, mono") {
		t.Error("key help should list theme options")
	}
}

func TestRunThemeList(t *testing.T) {
	cmd, out := setup(t)
	viper.Set("tui.theme", "mono")

	if err := runThemeList(cmd, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "* mono") || !strings.Contains(out.String(), "  default") {
		t.Errorf("theme list = %q", out.String())
	}
}

func TestRunThemeInfo(t *testing.T) {
	cmd, out := setup(t)

	if err := runThemeInfo(cmd, []string{"default"}); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Theme: default", "#A78BFA", "Confirmed:"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("theme info missing %q", want)
		}
	}

	if err := runThemeInfo(cmd, []string{"dracula"}); err == nil {
		t.Error("unknown theme should fail")
	}
}

func TestRegister(t *testing.T) {
	parent := &cobra.Command{Use: "autocare"}
	Register(parent)

	found, _, err := parent.Find([]string{"config", "theme", "info"})
	if err != nil || found.Name() != "info" {
		t.Errorf("config theme info not registered: %v", err)
	}
}

