package main

import (
	"github.com/spf13/cobra"

	"github.com/erazemk/menjava/internal/render"
)

func newDashboardCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show your stats, posted items and claimed items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := a.dashboard().Load(cmd.Context())
			if view == nil {
				return reported(err)
			}

			viewer := a.session.CurrentIdentity()
			opts := render.CardOptions{}
			if view.Stats != nil {
				writeOut(cmd, render.Dashboard(view.Stats))
			}
			if view.PostedErr == nil {
				writeOut(cmd, "\nYour posted items")
				writeOut(cmd, render.ItemList(view.Posted, viewer, opts))
			}
			if view.ClaimedErr == nil {
				writeOut(cmd, "\nItems you claimed")
				writeOut(cmd, render.ItemList(view.Claimed, viewer, opts))
			}
			return reported(err)
		},
	}
}
