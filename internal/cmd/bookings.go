package cmd

import (
	"fmt"

	"github.com/autocare/autocare/internal/api"
	"github.com/autocare/autocare/internal/booking"
	"github.com/autocare/autocare/internal/tui/styles"
	"github.com/autocare/autocare/internal/util"
	"github.com/spf13/cobra"
)

var bookingsCmd = &cobra.Command{
	Use:     "bookings",
	Aliases: []string{"booking"},
	Short:   "List and manage your bookings",
}

var bookingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bookings grouped by status",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		list, err := a.bookings().List(cmd.Context())
		if err != nil {
			return err
		}
		return renderBookings(cmd, a, list)
	}),
}

var bookingsShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one booking",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		b, err := a.bookings().Get(cmd.Context(), api.ID(args[0]))
		if err != nil {
			return err
		}
		return render(cmd, a.cfg, b, func() *table { return bookingDetail(b) })
	}),
}

var bookingsCancelCmd = &cobra.Command{
	Use:   "cancel ID",
	Short: "Cancel a pending booking",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		b, err := a.bookings().Cancel(cmd.Context(), api.ID(args[0]))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out(cmd), "Booking %s is now %s.\n", b.ID, b.Status)
		return err
	}),
}

var bookingsConfirmCmd = &cobra.Command{
	Use:   "confirm ID",
	Short: "Confirm a pending booking",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		b, err := a.bookings().Confirm(cmd.Context(), api.ID(args[0]))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out(cmd), "Booking %s is now %s.\n", b.ID, b.Status)
		return err
	}),
}

var bookingsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Report booking status changes as they happen",
	Long: `Poll the booking list and print a line whenever a booking changes status
or a new booking appears. Runs until interrupted.

The poll interval comes from bookings.watch_interval_seconds and can be
overridden with --interval.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		interval := a.cfg.Bookings.WatchInterval()
		if d, _ := cmd.Flags().GetDuration("interval"); d > 0 {
			interval = d
		}

		a.watchCredentials(cmd.Context())
		fmt.Fprintf(out(cmd), "Watching bookings every %s (ctrl+c to stop)\n", interval)
		return a.bookings().Watch(cmd.Context(), interval, func(changes []booking.StatusChange) {
			for _, c := range changes {
				fmt.Fprintln(out(cmd), describeChange(c))
			}
		})
	}),
}

func registerBookingsCmd(parent *cobra.Command) {
	bookingsWatchCmd.Flags().Duration("interval", 0, "poll interval, e.g. 30s")

	bookingsCmd.AddCommand(bookingsListCmd)
	bookingsCmd.AddCommand(bookingsShowCmd)
	bookingsCmd.AddCommand(bookingsCancelCmd)
	bookingsCmd.AddCommand(bookingsConfirmCmd)
	bookingsCmd.AddCommand(bookingsWatchCmd)
	bookingsCmd.AddCommand(bookingsStatusCmd)
	bookingsCmd.AddCommand(bookingsHistoryCmd)
	parent.AddCommand(bookingsCmd)
}

func renderBookings(cmd *cobra.Command, a *app, list []api.Booking) error {
	return render(cmd, a.cfg, list, func() *table { return bookingTable(list) })
}

func bookingTable(list []api.Booking) *table {
	t := newTable("STATUS", "ID", "BOOKING", "VEHICLE", "DATE", "TIME", "COST")
	order, groups := booking.GroupByStatus(list)
	for _, status := range order {
		for _, b := range groups[status] {
			vehicle := string(b.VehicleID)
			if b.VehicleDetails != nil {
				vehicle = b.VehicleDetails.DisplayName()
			}
			t.add(
				styles.StatusBadge(string(b.Status)),
				string(b.ID),
				b.Title(),
				vehicle,
				b.Date,
				b.Time,
				util.Money(string(b.FinalCost)),
			)
		}
	}
	return t
}

func bookingDetail(b *api.Booking) *table {
	t := newTable("FIELD", "VALUE")
	t.add("id", string(b.ID))
	t.add("status", styles.StatusBadge(string(b.Status)))
	t.add("type", string(b.BookingType))
	t.add("title", b.Title())
	if b.VehicleDetails != nil {
		t.add("vehicle", b.VehicleDetails.DisplayName())
	} else if b.VehicleID != "" {
		t.add("vehicle", string(b.VehicleID))
	}
	if b.PurchaseDetails != "" {
		t.add("details", util.FirstLine(b.PurchaseDetails))
	}
	if b.TradeInVehicleID != "" {
		t.add("trade-in", string(b.TradeInVehicleID))
	}
	t.add("date", b.Date)
	t.add("time", b.Time)
	if b.Notes != "" {
		t.add("notes", util.FirstLine(b.Notes))
	}
	t.add("cost", util.Money(string(b.FinalCost)))
	return t
}

func describeChange(c booking.StatusChange) string {
	if c.From == "" {
		return fmt.Sprintf("%s new booking %s (%s) is %s",
			styles.StatusIcon(string(c.To)), c.Booking.ID, c.Booking.Title(), c.To)
	}
	return fmt.Sprintf("%s booking %s (%s): %s -> %s",
		styles.StatusIcon(string(c.To)), c.Booking.ID, c.Booking.Title(), c.From, c.To)
}
