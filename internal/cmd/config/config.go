// Package config provides CLI commands for managing autocare configuration.
package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	appconfig "github.com/autocare/autocare/internal/config"
	tuiconfig "github.com/autocare/autocare/internal/tui/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Wrapper functions for exec to allow testing
var execLookPath = exec.LookPath
var execCommand = exec.Command

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify autocare configuration",
	Long: `View or modify autocare configuration.

Without arguments, opens an interactive configuration UI.
Use 'config show' to display configuration non-interactively.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigInteractive,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in your editor",
	Long: `Open the config file in your preferred editor.

Uses $EDITOR environment variable, or falls back to common editors (vim, nano, vi).
If no config file exists, creates one with default values first.`,
	Args: cobra.NoArgs,
	RunE: runConfigEdit,
}

var configResetCmd = &cobra.Command{
	Use:   "reset [key]",
	Short: "Reset configuration to defaults",
	Long: `Reset configuration values to their defaults.

Without arguments, resets all configuration to defaults.
With a key argument, resets only that specific key.

Examples:
  autocare config reset              # Reset all to defaults
  autocare config reset tui.theme    # Reset only tui.theme to default`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigReset,
}

func init() {
	configSetCmd.Long = "Set a configuration value in the user's config file.\n\n" +
		"Keys use dot notation, e.g.:\n" +
		"  autocare config set api.base_url https://dealer.example.com/api\n" +
		"  autocare config set tui.theme mono\n\n" +
		"Valid keys:\n" + keyHelp()

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configResetCmd)
}

// Register adds all config-related commands to the given parent command.
func Register(parent *cobra.Command) {
	parent.AddCommand(configCmd)
}

// keyHelp lists every settable key with its description and options.
func keyHelp() string {
	settings := appconfig.Settings()
	width := 0
	for _, s := range settings {
		width = max(width, len(s.Key))
	}
	var b strings.Builder
	for _, s := range settings {
		fmt.Fprintf(&b, "  %-*s  %s\n", width, s.Key, s.Description)
		if len(s.Options) > 0 {
			fmt.Fprintf(&b, "  %-*s  Options: %s\n", width, "", strings.Join(s.Options, ", "))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func runConfigInteractive(cmd *cobra.Command, args []string) error {
	return tuiconfig.Run()
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w, "Current configuration:")
	fmt.Fprintln(w)
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(w, "Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintln(w, "Config file: (none - using defaults)")
	}
	fmt.Fprintln(w)

	section := ""
	for _, s := range appconfig.Settings() {
		sec, name, _ := strings.Cut(s.Key, ".")
		if sec != section {
			section = sec
			fmt.Fprintf(w, "%s:\n", sec)
		}
		fmt.Fprintf(w, "  %s: %v\n", name, viper.Get(s.Key))
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]

	setting, ok := appconfig.LookupSetting(key)
	if !ok {
		return fmt.Errorf("unknown configuration key: %s\nRun 'autocare config set --help' to see valid keys", key)
	}
	value, err := setting.Parse(raw)
	if err != nil {
		return err
	}

	viper.Set(key, value)
	if err := writeConfig(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", key, value)
	fmt.Fprintf(cmd.OutOrStdout(), "Config saved to %s\n", configFile())
	return nil
}

// defaultConfigYAML renders every setting at its default value, with its
// description as a comment.
func defaultConfigYAML() string {
	var b strings.Builder
	b.WriteString("# autocare configuration\n")
	b.WriteString("# Environment variables override these values: AUTOCARE_<SECTION>_<KEY>\n")

	section := ""
	for _, s := range appconfig.Settings() {
		sec, name, _ := strings.Cut(s.Key, ".")
		if sec != section {
			section = sec
			fmt.Fprintf(&b, "\n%s:\n", sec)
		}
		fmt.Fprintf(&b, "  # %s\n", s.Description)
		if len(s.Options) > 0 {
			fmt.Fprintf(&b, "  # Options: %s\n", strings.Join(s.Options, ", "))
		}
		if str, ok := s.Default.(string); ok {
			fmt.Fprintf(&b, "  %s: %q\n", name, str)
		} else {
			fmt.Fprintf(&b, "  %s: %v\n", name, s.Default)
		}
	}
	return b.String()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'autocare config set' to modify values", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", path)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(w, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(w, "Default path: %s (not created)\n", appconfig.ConfigFile())
	}

	fmt.Fprintln(w, "\nSearch paths:")
	fmt.Fprintf(w, "  1. %s\n", appconfig.ConfigFile())
	fmt.Fprintln(w, "  2. ./config.yaml (current directory)")
	fmt.Fprintln(w, "\nEnvironment variables: AUTOCARE_* (e.g., AUTOCARE_API_BASE_URL), also read from .env")
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	path := configFile()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(cmd.OutOrStdout(), "Config file doesn't exist, creating with defaults...")
		if err := runConfigInit(cmd, args); err != nil {
			return err
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"vim", "nano", "vi"} {
			if _, err := execLookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found. Set $EDITOR environment variable")
	}

	editorCmd := execCommand(editor, path)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr
	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor exited with error: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Config file saved: %s\n", path)
	return nil
}

func runConfigReset(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	if len(args) == 0 {
		for _, s := range appconfig.Settings() {
			viper.Set(s.Key, s.Default)
		}
		fmt.Fprintln(w, "Reset all configuration to defaults.")
	} else {
		setting, ok := appconfig.LookupSetting(args[0])
		if !ok {
			return fmt.Errorf("unknown configuration key: %s\nRun 'autocare config set --help' to see valid keys", args[0])
		}
		viper.Set(setting.Key, setting.Default)
		fmt.Fprintf(w, "Reset %s to default: %v\n", setting.Key, setting.Default)
	}

	if err := writeConfig(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Config saved to %s\n", configFile())
	return nil
}

// configFile is the file settings are written to: the one in use if any,
// else the default location.
func configFile() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return appconfig.ConfigFile()
}

func writeConfig() error {
	path := configFile()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

