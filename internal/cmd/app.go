package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/autocare/autocare/internal/account"
	"github.com/autocare/autocare/internal/api"
	"github.com/autocare/autocare/internal/auth"
	"github.com/autocare/autocare/internal/booking"
	"github.com/autocare/autocare/internal/config"
	"github.com/autocare/autocare/internal/errors"
	"github.com/autocare/autocare/internal/logging"
	"github.com/autocare/autocare/internal/storage"
	"github.com/autocare/autocare/internal/tui/styles"
	"github.com/spf13/cobra"
)

// app holds the dependencies shared by every command that talks to the API.
type app struct {
	cfg       *config.Config
	logger    *logging.Logger
	client    *api.Client
	store     *storage.FileStore
	session   *auth.Session
	endpoints *api.Endpoints

	stopWatch context.CancelFunc
}

// newApp loads config and restores the persisted session. A network failure
// while confirming the session is logged and otherwise ignored so offline
// commands keep working.
func newApp(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	styles.SetActiveTheme(styles.ThemeName(cfg.TUI.Theme))

	logger := logging.NopLogger()
	if cfg.Logging.Enabled {
		logger, err = logging.NewLogger(config.LogDir(), cfg.Logging.Level, logging.RotationConfig{
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
		})
		if err != nil {
			return nil, err
		}
	}
	logger = logger.With("command", cmd.CommandPath())

	client, err := api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout()),
		api.WithRateLimit(cfg.API.RateLimitPerSec, cfg.API.RateBurst),
		api.WithUserAgent(cfg.API.UserAgent),
		api.WithLogger(logger),
	)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	store, err := storage.NewFileStore(cfg.Auth.ResolveStoreDir())
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	session := auth.NewSession(client, store, auth.WithLogger(logger))
	if err := session.Init(ctx); err != nil {
		logger.Warn("could not confirm saved session", "error", err)
	}
	if u := session.User(); u != nil {
		logger = logger.WithUser(string(u.ID))
	}

	a := &app{
		cfg:       cfg,
		logger:    logger,
		client:    client,
		store:     store,
		session:   session,
		endpoints: api.NewEndpoints(session),
		stopWatch: func() {},
	}
	return a, nil
}

// watchCredentials keeps the session in sync with logins and logouts made
// from other terminals while a long-running command is open.
func (a *app) watchCredentials(ctx context.Context) {
	if !a.cfg.Auth.WatchStore {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	a.stopWatch = cancel
	go func() {
		if err := a.session.Watch(ctx, a.store); err != nil && ctx.Err() == nil {
			a.logger.Warn("credential watch stopped", "error", err)
		}
	}()
}

func (a *app) Close() {
	a.stopWatch()
	_ = a.logger.Close()
}

// requireLogin fails fast when there are no credentials.
func (a *app) requireLogin() error {
	if !a.session.IsAuthenticated() {
		return fmt.Errorf("%w: run 'autocare login' first", errors.ErrNotAuthenticated)
	}
	return nil
}

func (a *app) catalog(ctx context.Context) (*booking.Catalog, error) {
	return booking.LoadCatalog(ctx, a.endpoints)
}

func (a *app) bookings() *booking.Manager {
	return booking.NewManager(a.endpoints, a.logger, booking.WithStaff(a.endpoints, a.session.Role))
}

func (a *app) profiles() *account.Profiles {
	return account.NewProfiles(a.endpoints, a.session.Role, a.logger)
}

func (a *app) inbox() *account.Inbox {
	return account.NewInbox(a.endpoints, a.logger)
}

func (a *app) favorites() *booking.Favorites {
	return booking.NewFavorites(a.endpoints, a.session.UserID, a.logger)
}

// withApp wraps a RunE that needs the shared dependencies.
func withApp(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := fn(cmd, a, args); err != nil {
			a.logger.Error("command failed", "error", err)
			return err
		}
		return nil
	}
}

// errorText is the message printed for a failed command. API and wizard
// errors use their user-facing text; anything else is printed as is.
func errorText(err error) string {
	if _, ok := errors.KindOf(err); ok {
		return errors.UserMessage(err)
	}
	var gate *errors.GateError
	if errors.As(err, &gate) {
		return errors.UserMessage(err)
	}
	return err.Error()
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
