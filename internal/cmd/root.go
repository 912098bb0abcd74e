package cmd

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	appconfig "github.com/autocare/autocare/internal/cmd/config"
	"github.com/autocare/autocare/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "autocare",
	Short: "Book servicing and vehicle viewings from your terminal",
	Long: `Autocare is a terminal client for the dealership booking service.

Sign in with 'autocare login', then use 'autocare book' to walk through
the booking wizard, or 'autocare bookings' to manage what you have booked.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		rootCmd.PrintErrln("Error:", errorText(err))
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/autocare/config.yaml)")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format: table, json or yaml (default from config)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	appconfig.Register(rootCmd)
	registerAuthCmds(rootCmd)
	registerBookCmd(rootCmd)
	registerBookingsCmd(rootCmd)
	registerCatalogCmds(rootCmd)
	registerFavoritesCmd(rootCmd)
	registerRemindersCmd(rootCmd)
	registerProfileCmd(rootCmd)
	registerNotificationsCmd(rootCmd)
	registerChatCmd(rootCmd)
	registerLogsCmd(rootCmd)
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	// Values already in the environment take precedence over the dotenv file
	envFile, _ := rootCmd.PersistentFlags().GetString("env-file")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		rootCmd.PrintErrf("Warning: could not load %s: %v\n", envFile, err)
	}

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("AUTOCARE")
	// Replace dots with underscores for nested keys in env vars
	// e.g., AUTOCARE_API_BASE_URL for api.base_url
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
