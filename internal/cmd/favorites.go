package cmd

import (
	"fmt"

	"github.com/autocare/autocare/internal/api"
	"github.com/autocare/autocare/internal/booking"
	"github.com/spf13/cobra"
)

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"favourites", "fav"},
	Short:   "Manage favorite services and vehicles",
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorites",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		favs, err := a.favorites().List(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd, a.cfg, favs, func() *table {
			t := newTable("ID", "TYPE", "TARGET", "NAME")
			for _, f := range favs {
				name := f.Name
				if f.Type == api.FavoriteVehicle && f.Model != "" {
					name = fmt.Sprintf("%s %s", f.Name, f.Model)
					if f.Year != "" {
						name += fmt.Sprintf(" (%s)", f.Year)
					}
				}
				t.add(string(f.ID), string(f.Type), string(f.Target()), name)
			}
			return t
		})
	}),
}

var favoritesToggleCmd = &cobra.Command{
	Use:   "toggle service|vehicle ID",
	Short: "Add or remove a favorite",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		typ, err := booking.ParseFavoriteType(args[0])
		if err != nil {
			return err
		}
		on, err := a.favorites().Toggle(cmd.Context(), typ, api.ID(args[1]))
		if err != nil {
			return err
		}
		msg := fmt.Sprintf("Removed %s %s from favorites.", typ, args[1])
		if on {
			msg = fmt.Sprintf("Added %s %s to favorites.", typ, args[1])
		}
		_, err = fmt.Fprintln(out(cmd), msg)
		return err
	}),
}

var favoritesCheckCmd = &cobra.Command{
	Use:   "check service|vehicle ID",
	Short: "Report whether something is a favorite",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		typ, err := booking.ParseFavoriteType(args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out(cmd), a.favorites().Check(cmd.Context(), typ, api.ID(args[1])))
		return err
	}),
}

func registerFavoritesCmd(parent *cobra.Command) {
	favoritesCmd.AddCommand(favoritesListCmd)
	favoritesCmd.AddCommand(favoritesToggleCmd)
	favoritesCmd.AddCommand(favoritesCheckCmd)
	parent.AddCommand(favoritesCmd)
}
