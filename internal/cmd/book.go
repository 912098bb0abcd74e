package cmd

import (
	"fmt"

	"github.com/autocare/autocare/internal/api"
	"github.com/autocare/autocare/internal/booking"
	"github.com/autocare/autocare/internal/errors"
	"github.com/autocare/autocare/internal/tui/wizard"
	"github.com/spf13/cobra"
)

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Book a servicing appointment or a purchase enquiry",
	Long: `Book a servicing appointment or a purchase enquiry.

Without scheduling flags the interactive booking wizard opens. Passing
--date and --time drives the same five steps without a UI, which is handy
for scripts.

Examples:
  autocare book
  autocare book --service 3
  autocare book --vehicle 12
  autocare book --type servicing --vehicle-id 4 --service-id 3 --date 2025-07-01 --time 09:30`,
	Args: cobra.NoArgs,
	RunE: withApp(runBook),
}

func registerBookCmd(parent *cobra.Command) {
	f := bookCmd.Flags()
	f.String("service", "", "start from this service (servicing booking)")
	f.String("vehicle", "", "start from this dealership vehicle (purchase enquiry)")
	f.String("type", "", "booking type: servicing or purchase")
	f.String("vehicle-id", "", "vehicle the booking is for")
	f.String("service-id", "", "service to book (servicing)")
	f.String("details", "", "purchase enquiry text (purchase)")
	f.String("trade-in", "", "vehicle offered as trade-in (purchase)")
	f.String("date", "", "appointment date, YYYY-MM-DD")
	f.String("time", "", "appointment time, one of the offered slots")
	f.String("notes", "", "notes for the dealership")
	bookCmd.MarkFlagsMutuallyExclusive("service", "vehicle")

	parent.AddCommand(bookCmd)
}

func runBook(cmd *cobra.Command, a *app, _ []string) error {
	ctx := cmd.Context()
	if err := a.requireLogin(); err != nil {
		return err
	}

	catalog, err := a.catalog(ctx)
	if err != nil {
		return err
	}
	entry, err := bookEntry(cmd, catalog)
	if err != nil {
		return err
	}
	w := booking.NewWizard(entry, a.endpoints, booking.WithWizardLogger(a.logger))

	var created *api.Booking
	if cmd.Flags().Changed("date") || cmd.Flags().Changed("time") {
		created, err = bookHeadless(cmd, w)
	} else {
		a.watchCredentials(ctx)
		created, err = wizard.Run(ctx, w, catalog, wizard.Options{
			ShowHelp:       a.cfg.TUI.ShowHelp,
			StatusDuration: a.cfg.TUI.StatusDuration(),
			Logger:         a.logger,
		})
	}
	if err != nil {
		return err
	}
	if created == nil {
		_, err := fmt.Fprintln(out(cmd), "Booking cancelled.")
		return err
	}

	fmt.Fprintf(out(cmd), "Booking %s created, status %s.\n", created.ID, created.Status)
	return renderBookings(cmd, a, []api.Booking{*created})
}

func bookEntry(cmd *cobra.Command, catalog *booking.Catalog) (booking.Entry, error) {
	if id, _ := cmd.Flags().GetString("service"); id != "" {
		if _, ok := catalog.Service(api.ID(id)); !ok {
			return booking.Entry{}, errors.NewNotFoundError("service " + id)
		}
		return booking.PreselectedService(api.ID(id)), nil
	}
	if id, _ := cmd.Flags().GetString("vehicle"); id != "" {
		v, ok := catalog.Vehicle(api.ID(id))
		if !ok {
			return booking.Entry{}, errors.NewNotFoundError("vehicle " + id)
		}
		return booking.PreselectedVehicle(v.ID).WithVehicleDetails(v), nil
	}
	return booking.Fresh(), nil
}

// bookHeadless fills every step from flags, advancing through the same gates
// the interactive wizard uses, then submits.
func bookHeadless(cmd *cobra.Command, w *booking.Wizard) (*api.Booking, error) {
	flag := func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return v
	}

	if t := flag("type"); t != "" {
		bt, err := booking.ParseBookingType(t)
		if err != nil {
			return nil, err
		}
		if implied := w.Entry().ImpliedType(); implied != "" && implied != bt {
			return nil, fmt.Errorf("%w: --type %s conflicts with %s", errors.ErrInvalidInput, bt, w.Entry())
		}
		if w.Draft().BookingType != bt {
			if err := w.SelectType(bt); err != nil {
				return nil, err
			}
		}
	}
	if w.Step() == booking.StepType {
		if err := w.Next(); err != nil {
			return nil, err
		}
	}

	if id := flag("vehicle-id"); id != "" {
		if err := w.SelectVehicle(api.ID(id)); err != nil {
			return nil, err
		}
	}
	if err := w.Next(); err != nil {
		return nil, err
	}

	if w.Draft().BookingType == api.BookingTypePurchase {
		if d := flag("details"); d != "" {
			if err := w.SetPurchaseDetails(d); err != nil {
				return nil, err
			}
		}
		if err := w.SetTradeIn(api.ID(flag("trade-in"))); err != nil {
			return nil, err
		}
	} else if id := flag("service-id"); id != "" {
		if err := w.SelectService(api.ID(id)); err != nil {
			return nil, err
		}
	}
	if err := w.Next(); err != nil {
		return nil, err
	}

	if d := flag("date"); d != "" {
		date, err := booking.ParseDate(d)
		if err != nil {
			return nil, err
		}
		if err := w.SelectDate(date); err != nil {
			return nil, err
		}
	}
	if t := flag("time"); t != "" {
		if err := w.SelectTime(t); err != nil {
			return nil, err
		}
	}
	if err := w.Next(); err != nil {
		return nil, err
	}

	if err := w.SetNotes(flag("notes")); err != nil {
		return nil, err
	}
	return w.Submit(cmd.Context())
}
