package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/erazemk/menjava/internal/model"
	"github.com/erazemk/menjava/internal/store"
)

func newLocationsCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locations",
		Short: "Sub-counties and pickup addresses",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List sub-counties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			writeOut(cmd, strings.Join(model.Locations, "\n"))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "addresses <location>",
		Short: "List suggested and saved pickup addresses for a sub-county",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addresses, err := store.ListAddresses(cmd.Context(), a.db, args[0])
			if err != nil {
				return err
			}
			if len(addresses) == 0 {
				writeOut(cmd, "No addresses saved for "+args[0]+".")
				return nil
			}
			writeOut(cmd, strings.Join(addresses, "\n"))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add-address <location> <address>",
		Short: "Save a pickup address",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !model.KnownLocation(args[0]) {
				a.notifier.Error("Unknown location " + args[0])
				return reported(model.ValidationErrors{"location": "Unknown location"})
			}
			if err := store.AddAddress(cmd.Context(), a.db, args[0], args[1]); err != nil {
				return a.fail(err, "Failed to save address")
			}
			a.notifier.Success("Address saved")
			return nil
		},
	})

	return cmd
}
