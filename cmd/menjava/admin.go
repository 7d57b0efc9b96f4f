package main

import (
	"github.com/spf13/cobra"

	"github.com/erazemk/menjava/internal/render"
)

func newAdminCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Moderate items and users (admin login required)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "items",
		Short: "List every item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.admin().Items(cmd.Context())
			if err != nil {
				return reported(err)
			}
			writeOut(cmd, render.ItemList(items, a.session.Admin(), render.CardOptions{}))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete-item <item-id>",
		Short: "Delete any item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return reported(a.admin().DeleteItem(cmd.Context(), args[0]))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "users",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := a.admin().Users(cmd.Context())
			if err != nil {
				return reported(err)
			}
			writeOut(cmd, render.Users(users))
			return nil
		},
	})

	var reason string
	suspend := &cobra.Command{
		Use:   "suspend <user-id>",
		Short: "Suspend a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return reported(a.admin().Suspend(cmd.Context(), args[0], reason))
		},
	}
	suspend.Flags().StringVar(&reason, "reason", "", "why the account is suspended (required)")
	cmd.AddCommand(suspend)

	cmd.AddCommand(&cobra.Command{
		Use:   "unsuspend <user-id>",
		Short: "Lift a suspension",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return reported(a.admin().Unsuspend(cmd.Context(), args[0]))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete-user <user-id>",
		Short: "Delete a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return reported(a.admin().DeleteUser(cmd.Context(), args[0]))
		},
	})

	return cmd
}
