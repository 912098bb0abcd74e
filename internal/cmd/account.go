package cmd

import (
	"fmt"

	"github.com/autocare/autocare/internal/account"
	"github.com/autocare/autocare/internal/api"
	"github.com/autocare/autocare/internal/tui/styles"
	"github.com/autocare/autocare/internal/util"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit your profile",
	Long: `Customers see their personal profile. Service managers see the profile of
their service center.`,
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		profiles := a.profiles()
		if profiles.IsManager() {
			p, err := profiles.Manager(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd, a.cfg, p, func() *table { return managerProfileTable(p) })
		}
		p, err := profiles.Customer(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd, a.cfg, p, func() *table { return profileTable(p) })
	}),
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change profile fields",
	Long: `Change only the fields given as flags; everything else keeps its current
value. Customers use --name, --email, --phone, --address, --city and --country.
Service managers use --center, --experience, --location and --contact.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		profiles := a.profiles()
		if profiles.IsManager() {
			changes := account.ManagerChanges{
				ServiceCenterName: changedString(cmd, "center"),
				Location:          changedString(cmd, "location"),
				ContactNumber:     changedString(cmd, "contact"),
			}
			if cmd.Flags().Changed("experience") {
				years, _ := cmd.Flags().GetInt("experience")
				changes.ExperienceYears = &years
			}
			p, err := profiles.UpdateManager(cmd.Context(), changes)
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), "Profile updated.")
			return render(cmd, a.cfg, p, func() *table { return managerProfileTable(p) })
		}

		p, err := profiles.UpdateCustomer(cmd.Context(), account.CustomerChanges{
			Name:    changedString(cmd, "name"),
			Email:   changedString(cmd, "email"),
			Phone:   changedString(cmd, "phone"),
			Address: changedString(cmd, "address"),
			City:    changedString(cmd, "city"),
			Country: changedString(cmd, "country"),
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(out(cmd), "Profile updated.")
		return render(cmd, a.cfg, p, func() *table { return profileTable(p) })
	}),
}

// changedString returns the flag value only when the user set it.
func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func profileTable(p *api.Profile) *table {
	t := newTable("FIELD", "VALUE")
	t.add("name", p.Name)
	t.add("email", p.Email)
	t.add("phone", p.Phone)
	t.add("address", util.FirstLine(p.Address))
	t.add("city", p.City)
	t.add("country", p.Country)
	return t
}

func managerProfileTable(p *api.ManagerProfile) *table {
	t := newTable("FIELD", "VALUE")
	t.add("service center", p.ServiceCenterName)
	years := ""
	if p.ExperienceYears != nil {
		years = fmt.Sprint(*p.ExperienceYears)
	}
	t.add("experience (years)", years)
	t.add("location", p.Location)
	t.add("contact", p.ContactNumber)
	return t
}

func registerProfileCmd(parent *cobra.Command) {
	f := profileUpdateCmd.Flags()
	f.String("name", "", "full name")
	f.String("email", "", "email address")
	f.String("phone", "", "phone number")
	f.String("address", "", "street address")
	f.String("city", "", "city")
	f.String("country", "", "country")
	f.String("center", "", "service center name")
	f.Int("experience", 0, "years of experience")
	f.String("location", "", "service center location")
	f.String("contact", "", "service center contact number")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileUpdateCmd)
	parent.AddCommand(profileCmd)
}

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"inbox"},
	Short:   "Read notifications from the service center",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		unread, _ := cmd.Flags().GetBool("unread")
		list, err := a.inbox().List(cmd.Context(), unread)
		if err != nil {
			return err
		}
		return render(cmd, a.cfg, list, func() *table {
			t := newTable("", "ID", "TITLE", "MESSAGE", "BOOKING", "RECEIVED")
			for _, n := range list {
				mark := styles.Primary.Render("●")
				if n.IsRead {
					mark = " "
				}
				t.add(mark, string(n.ID), n.Title, util.FirstLine(n.Message), string(n.RelatedBooking), n.CreatedAt)
			}
			return t
		})
	}),
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read [ID]",
	Short: "Mark a notification, or all of them with --all, as read",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		all, _ := cmd.Flags().GetBool("all")
		switch {
		case all && len(args) > 0:
			return fmt.Errorf("give a notification ID or --all, not both")
		case all:
			n, err := a.inbox().MarkAllRead(cmd.Context())
			fmt.Fprintf(out(cmd), "Marked %d notifications as read.\n", n)
			return err
		case len(args) == 0:
			return fmt.Errorf("a notification ID or --all is required")
		}
		if err := a.inbox().MarkRead(cmd.Context(), api.ID(args[0])); err != nil {
			return err
		}
		_, err := fmt.Fprintf(out(cmd), "Notification %s marked as read.\n", args[0])
		return err
	}),
}

func registerNotificationsCmd(parent *cobra.Command) {
	notificationsListCmd.Flags().Bool("unread", false, "only unread notifications")
	notificationsReadCmd.Flags().Bool("all", false, "mark every unread notification")

	notificationsCmd.AddCommand(notificationsListCmd)
	notificationsCmd.AddCommand(notificationsReadCmd)
	parent.AddCommand(notificationsCmd)
}
