package config

import (
	"fmt"
	"strings"

	"github.com/autocare/autocare/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Inspect color themes",
	Long: `Inspect the color themes of the booking wizard.

Use 'theme list' to see all available themes.
Use 'theme info' to view the palette of a specific theme.
Select a theme with 'autocare config set tui.theme <name>'.`,
}

var themeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available themes",
	Args:  cobra.NoArgs,
	RunE:  runThemeList,
}

var themeInfoCmd = &cobra.Command{
	Use:   "info <theme-name>",
	Short: "Show the palette of a theme",
	Args:  cobra.ExactArgs(1),
	RunE:  runThemeInfo,
}

func init() {
	themeCmd.AddCommand(themeListCmd)
	themeCmd.AddCommand(themeInfoCmd)
	configCmd.AddCommand(themeCmd)
}

func runThemeList(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	active := viper.GetString("tui.theme")

	fmt.Fprintln(w, "Available themes:")
	for _, name := range styles.BuiltinThemes() {
		marker := " "
		if name == active {
			marker = "*"
		}
		fmt.Fprintf(w, "  %s %s\n", marker, name)
	}
	return nil
}

func runThemeInfo(cmd *cobra.Command, args []string) error {
	name := args[0]
	if !styles.IsValidTheme(name) {
		return fmt.Errorf("unknown theme: %s\nValid options: %s", name, strings.Join(styles.BuiltinThemes(), ", "))
	}

	p := styles.GetPalette(styles.ThemeName(name))
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Theme: %s\n\n", name)

	swatch := func(label string, c lipgloss.Color) {
		fmt.Fprintf(w, "  %-12s %s %s\n", label+":", lipgloss.NewStyle().Foreground(c).Render("██"), c)
	}
	fmt.Fprintln(w, "Base Colors:")
	swatch("Primary", p.Primary)
	swatch("Secondary", p.Secondary)
	swatch("Warning", p.Warning)
	swatch("Error", p.Error)
	swatch("Muted", p.Muted)
	swatch("Surface", p.Surface)
	swatch("Text", p.Text)
	swatch("Border", p.Border)

	fmt.Fprintln(w, "\nBooking Status:")
	swatch("Pending", p.StatusPending)
	swatch("Confirmed", p.StatusConfirmed)
	swatch("In progress", p.StatusInProgress)
	swatch("Completed", p.StatusCompleted)
	swatch("Cancelled", p.StatusCancelled)
	return nil
}
