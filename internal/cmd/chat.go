package cmd

import (
	"fmt"
	"io"

	"github.com/autocare/autocare/internal/api"
	"github.com/autocare/autocare/internal/chat"
	"github.com/autocare/autocare/internal/tui/styles"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Follow your message and notification feed",
	Long: `Connect to the live feed and print messages as they arrive.

With --to the conversation room with that user is joined instead of your
own notification room. --send posts one message to --to and exits.

Examples:
  autocare chat
  autocare chat --to 7
  autocare chat --to 7 --send "Is the car ready?"`,
	Args: cobra.NoArgs,
	RunE: withApp(runChat),
}

func registerChatCmd(parent *cobra.Command) {
	chatCmd.Flags().String("to", "", "user id of the other participant")
	chatCmd.Flags().String("send", "", "send one message to --to and exit")
	parent.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, a *app, _ []string) error {
	ctx := cmd.Context()
	if err := a.requireLogin(); err != nil {
		return err
	}
	me := a.session.UserID()
	if me == "" {
		return fmt.Errorf("no user id stored for this session, log in again")
	}

	to, _ := cmd.Flags().GetString("to")
	text, _ := cmd.Flags().GetString("send")
	if text != "" && to == "" {
		return fmt.Errorf("--send requires --to")
	}

	room := string(me)
	if to != "" {
		room = chat.Room(me, api.ID(to))
	}

	dialer, err := chat.NewDialer(a.cfg.ResolveWSURL(), chat.WithLogger(a.logger))
	if err != nil {
		return err
	}

	if text != "" {
		conn, err := dialer.Dial(ctx, room, me, a.session.AccessToken())
		if err != nil {
			return err
		}
		defer conn.Close()
		if err := conn.Send(text, api.ID(to)); err != nil {
			return err
		}
		_, err = fmt.Fprintln(out(cmd), styles.SuccessMsg.Render("Sent."))
		return err
	}

	a.watchCredentials(ctx)
	fmt.Fprintln(out(cmd), styles.Muted.Render("Connected to room "+room+" (ctrl+c to leave)"))
	return dialer.Stream(ctx, room, me, a.session.AccessToken, func(m chat.Message) {
		printChatMessage(out(cmd), me, m)
	})
}

func printChatMessage(w io.Writer, me api.ID, m chat.Message) {
	if m.Error != "" {
		fmt.Fprintln(w, styles.ErrorMsg.Render("! "+m.Error))
		return
	}
	who := string(m.SenderID)
	if m.SenderID == me {
		who = "you"
	}
	stamp := ""
	if m.Timestamp != "" {
		stamp = styles.Muted.Render(m.Timestamp) + " "
	}
	fmt.Fprintf(w, "%s%s: %s\n", stamp, styles.Primary.Render(who), m.Message)
}
