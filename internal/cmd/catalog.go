package cmd

import (
	"github.com/autocare/autocare/internal/api"
	"github.com/autocare/autocare/internal/booking"
	"github.com/autocare/autocare/internal/util"
	"github.com/spf13/cobra"
)

var vehiclesCmd = &cobra.Command{
	Use:   "vehicles",
	Short: "Browse vehicles",
}

var vehiclesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your vehicles and dealership stock",
	Long: `List vehicles known to the dealership.

Customer vehicles can be booked in for servicing; dealership vehicles can be
enquired about for purchase. --match takes a case-insensitive glob matched
against "make model (year)" and the VIN.

Examples:
  autocare vehicles list --customer
  autocare vehicles list --dealership --match 'toyota*'`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		pattern, _ := cmd.Flags().GetString("match")
		m, err := booking.NewMatcher(pattern)
		if err != nil {
			return err
		}
		catalog, err := a.catalog(cmd.Context())
		if err != nil {
			return err
		}

		customerOnly, _ := cmd.Flags().GetBool("customer")
		dealershipOnly, _ := cmd.Flags().GetBool("dealership")
		var list []api.Vehicle
		if !dealershipOnly {
			list = append(list, catalog.Customer...)
		}
		if !customerOnly {
			list = append(list, catalog.Dealership...)
		}
		list = m.FilterVehicles(list)

		return render(cmd, a.cfg, list, func() *table {
			t := newTable("ID", "VEHICLE", "OWNER", "VIN", "PRICE")
			for _, v := range list {
				owner := "dealership"
				if v.IsCustomerOwned {
					owner = "customer"
				}
				t.add(string(v.ID), v.DisplayName(), owner, v.VIN, util.Money(string(v.Price)))
			}
			return t
		})
	}),
}

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "Browse servicing options",
}

var servicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available services",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		pattern, _ := cmd.Flags().GetString("match")
		m, err := booking.NewMatcher(pattern)
		if err != nil {
			return err
		}
		services, err := a.endpoints.ListServices(cmd.Context())
		if err != nil {
			return err
		}
		services = m.FilterServices(services)

		return render(cmd, a.cfg, services, func() *table {
			t := newTable("ID", "SERVICE", "COST", "DESCRIPTION")
			for _, s := range services {
				t.add(string(s.ID), s.Name, util.Money(string(s.Cost)), util.FirstLine(s.Description))
			}
			return t
		})
	}),
}

func registerCatalogCmds(parent *cobra.Command) {
	vf := vehiclesListCmd.Flags()
	vf.Bool("customer", false, "only customer-owned vehicles")
	vf.Bool("dealership", false, "only dealership vehicles")
	vf.String("match", "", "glob filter on make, model, year or VIN")
	vehiclesListCmd.MarkFlagsMutuallyExclusive("customer", "dealership")
	servicesListCmd.Flags().String("match", "", "glob filter on service name")

	vehiclesCmd.AddCommand(vehiclesListCmd)
	servicesCmd.AddCommand(servicesListCmd)
	parent.AddCommand(vehiclesCmd)
	parent.AddCommand(servicesCmd)
}
