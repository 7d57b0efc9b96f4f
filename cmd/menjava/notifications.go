package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/menjava/internal/model"
	"github.com/erazemk/menjava/internal/notify"
	"github.com/erazemk/menjava/internal/render"
)

func newNotificationsCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Read your notifications",
	}

	feed := func() *notify.Feed {
		return notify.NewFeed(a.client.Notifications(), a.session, a.logger)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.session.User() == nil {
				a.notifier.Error("Please login to see your notifications")
				return reported(model.ErrNotAuthenticated)
			}
			f := feed()
			if _, err := f.Load(cmd.Context()); err != nil {
				return a.fail(err, "Failed to load notifications")
			}
			writeOut(cmd, render.Notifications(f.Items(), time.Now()))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "read <notification-id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := feed().MarkRead(cmd.Context(), args[0]); err != nil {
				return a.fail(err, "Failed to mark notification as read")
			}
			a.notifier.Success("Notification marked as read")
			return nil
		},
	})

	var interval time.Duration
	watch := &cobra.Command{
		Use:   "watch",
		Short: "Print notifications as they arrive, until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.session.User() == nil {
				a.notifier.Error("Please login to see your notifications")
				return reported(model.ErrNotAuthenticated)
			}
			if interval <= 0 {
				interval = a.cfg.PollInterval
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			f := feed()
			f.Poll(ctx, interval, func(items []model.Notification) {
				writeOut(cmd, render.Notifications(items, time.Now()))
				writeOut(cmd, "")
			})
			return nil
		},
	}
	watch.Flags().DurationVar(&interval, "interval", 0, "poll interval (default: poll_interval setting)")
	cmd.AddCommand(watch)

	return cmd
}
