package cmd

import (
	"fmt"
	"strings"

	"github.com/autocare/autocare/internal/api"
	"github.com/autocare/autocare/internal/booking"
	"github.com/autocare/autocare/internal/tui/styles"
	"github.com/autocare/autocare/internal/util"
	"github.com/spf13/cobra"
)

func statusNames() string {
	names := make([]string, len(api.StatusOrder))
	for i, s := range api.StatusOrder {
		names[i] = string(s)
	}
	return strings.Join(names, "|")
}

var bookingsStatusCmd = &cobra.Command{
	Use:   "status ID " + statusNames(),
	Short: "Set a booking's status (service managers)",
	Long: `Move a booking to any status. Completed and cancelled bookings cannot be
changed. Only service managers and admins may use this command.`,
	Args: cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		status, err := booking.ParseStatus(args[1])
		if err != nil {
			return err
		}
		b, err := a.bookings().SetStatus(cmd.Context(), api.ID(args[0]), status)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out(cmd), "Booking %s is now %s.\n", b.ID, b.Status)
		return err
	}),
}

var bookingsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List completed services (service managers)",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		list, err := a.bookings().History(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd, a.cfg, list, func() *table {
			t := newTable("ID", "DATE", "SERVICE", "VEHICLE", "COST", "NOTES")
			for _, h := range list {
				vehicle := ""
				if h.Vehicle != nil {
					vehicle = h.Vehicle.DisplayName()
				}
				t.add(string(h.ID), h.ServiceDate, h.ServiceType, vehicle,
					util.Money(string(h.Cost)), util.FirstLine(h.Notes))
			}
			return t
		})
	}),
}

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Schedule booking reminders (service managers)",
}

var remindersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled reminders",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		list, err := a.bookings().Reminders(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd, a.cfg, list, func() *table {
			t := newTable("ID", "BOOKING", "DATE", "TIME", "SENT", "MESSAGE")
			for _, r := range list {
				sent := styles.Muted.Render("no")
				if r.IsSent {
					sent = "yes"
				}
				t.add(string(r.ID), string(r.Booking), r.ReminderDate, r.ReminderTime, sent, util.FirstLine(r.Message))
			}
			return t
		})
	}),
}

var remindersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Schedule a reminder for a booking",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		var in booking.ReminderInput
		bookingID, _ := cmd.Flags().GetString("booking")
		in.Booking = api.ID(bookingID)
		in.Message, _ = cmd.Flags().GetString("message")
		in.Date, _ = cmd.Flags().GetString("date")
		in.Time, _ = cmd.Flags().GetString("time")

		rem, err := a.bookings().CreateReminder(cmd.Context(), in)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out(cmd), "Reminder %s scheduled for booking %s on %s at %s.\n",
			rem.ID, in.Booking, in.Date, in.Time)
		return err
	}),
}

func registerRemindersCmd(parent *cobra.Command) {
	remindersCreateCmd.Flags().String("booking", "", "booking id")
	remindersCreateCmd.Flags().String("message", "", "reminder text")
	remindersCreateCmd.Flags().String("date", "", "reminder date, YYYY-MM-DD")
	remindersCreateCmd.Flags().String("time", "", "reminder time, HH:MM")
	_ = remindersCreateCmd.MarkFlagRequired("booking")
	_ = remindersCreateCmd.MarkFlagRequired("message")
	_ = remindersCreateCmd.MarkFlagRequired("date")
	_ = remindersCreateCmd.MarkFlagRequired("time")

	remindersCmd.AddCommand(remindersListCmd)
	remindersCmd.AddCommand(remindersCreateCmd)
	parent.AddCommand(remindersCmd)
}
