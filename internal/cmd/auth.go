package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/autocare/autocare/internal/api"
	"github.com/autocare/autocare/internal/auth"
	tuilogin "github.com/autocare/autocare/internal/tui/login"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the booking service",
	Long: `Sign in and store the access and refresh tokens for later commands.

The password is read without echo. Use --tui for a small sign-in form.`,
	Args: cobra.NoArgs,
	RunE: withApp(runLogin),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored tokens",
	Args:  cobra.NoArgs,
	RunE:  withApp(runLogout),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	Args:  cobra.NoArgs,
	RunE:  withApp(runWhoami),
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	Long: `Create a new account. The password is asked for twice.

Examples:
  autocare register --username alice --email alice@example.com`,
	Args: cobra.NoArgs,
	RunE: withApp(runRegister),
}

func registerAuthCmds(parent *cobra.Command) {
	loginCmd.Flags().StringP("username", "u", "", "account username (prompted if empty)")
	loginCmd.Flags().Bool("tui", false, "use the interactive sign-in form")

	registerCmd.Flags().StringP("username", "u", "", "account username (prompted if empty)")
	registerCmd.Flags().String("email", "", "email address (prompted if empty)")
	registerCmd.Flags().String("role", auth.DefaultRole, "account role")

	parent.AddCommand(loginCmd, logoutCmd, whoamiCmd, registerCmd)
}

func runLogin(cmd *cobra.Command, a *app, _ []string) error {
	ctx := cmd.Context()
	username, _ := cmd.Flags().GetString("username")

	if useTUI, _ := cmd.Flags().GetBool("tui"); useTUI {
		ok, err := tuilogin.Run(ctx, a.session, username)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out(cmd), "Login cancelled.")
			return nil
		}
		return printSignedIn(cmd, a)
	}

	p := newPrompter(cmd)
	if username == "" {
		var err error
		if username, err = p.line("Username: "); err != nil {
			return err
		}
	}
	username = strings.TrimSpace(username)
	password, err := p.secret("Password: ")
	if err != nil {
		return err
	}
	if username == "" || password == "" {
		return fmt.Errorf("username and password are required")
	}

	if err := a.session.Login(ctx, username, password); err != nil {
		return err
	}
	return printSignedIn(cmd, a)
}

func printSignedIn(cmd *cobra.Command, a *app) error {
	name := "unknown user"
	if u := a.session.User(); u != nil && u.Username != "" {
		name = u.Username
	}
	_, err := fmt.Fprintf(out(cmd), "Logged in as %s (%s)\n", name, a.session.Role())
	return err
}

func runLogout(cmd *cobra.Command, a *app, _ []string) error {
	if !a.session.IsAuthenticated() {
		fmt.Fprintln(out(cmd), "Not logged in.")
		return nil
	}
	if err := a.session.Logout(cmd.Context()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out(cmd), "Logged out.")
	return err
}

type whoami struct {
	ID        api.ID `json:"id" yaml:"id"`
	Username  string `json:"username" yaml:"username"`
	Email     string `json:"email,omitempty" yaml:"email,omitempty"`
	Role      string `json:"role" yaml:"role"`
	ExpiresAt string `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`
}

func runWhoami(cmd *cobra.Command, a *app, _ []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	info := whoami{Role: a.session.Role(), ID: a.session.UserID()}
	if u := a.session.User(); u != nil {
		info.Username = u.Username
		info.Email = u.Email
	}
	if exp := a.session.ExpiresAt(); !exp.IsZero() {
		info.ExpiresAt = exp.Format(time.RFC3339)
	}

	return render(cmd, a.cfg, info, func() *table {
		t := newTable("FIELD", "VALUE")
		t.add("id", string(info.ID))
		t.add("username", info.Username)
		if info.Email != "" {
			t.add("email", info.Email)
		}
		t.add("role", info.Role)
		if info.ExpiresAt != "" {
			t.add("token expires", info.ExpiresAt)
		}
		return t
	})
}

func runRegister(cmd *cobra.Command, a *app, _ []string) error {
	p := newPrompter(cmd)
	username, _ := cmd.Flags().GetString("username")
	email, _ := cmd.Flags().GetString("email")
	role, _ := cmd.Flags().GetString("role")

	var err error
	if username == "" {
		if username, err = p.line("Username: "); err != nil {
			return err
		}
	}
	if email == "" {
		if email, err = p.line("Email: "); err != nil {
			return err
		}
	}
	password, err := p.secret("Password: ")
	if err != nil {
		return err
	}
	confirm, err := p.secret("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	user, err := a.client.Register(cmd.Context(), api.RegisterRequest{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
		Password: password,
		Role:     role,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out(cmd), "Account created for %s. Run 'autocare login' to sign in.\n", user.Username)
	return err
}
