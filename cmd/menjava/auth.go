package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erazemk/menjava/internal/api"
	"github.com/erazemk/menjava/internal/model"
	"github.com/erazemk/menjava/internal/store"
)

func newSignupCmd(a *App) *cobra.Command {
	var req model.SignupRequest
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if req.ConfirmPassword == "" {
				req.ConfirmPassword = req.Password
			}
			user, err := a.client.Auth().Signup(ctx, &req)
			if err != nil {
				return a.fail(err, "Signup failed")
			}

			// Remember a pickup address that is not one of the defaults.
			if err := store.AddAddress(ctx, a.db, req.Location, req.Address); err != nil {
				a.logger.Warn("saving address", "error", err)
			}

			if user == nil || a.session.User() == nil {
				a.notifier.Success("Account created. Please log in.")
				return nil
			}
			a.notifier.Success(fmt.Sprintf("Welcome, %s!", nonEmpty(user.Name, user.Email)))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Name, "name", "", "full name")
	f.StringVar(&req.Email, "email", "", "email address")
	f.StringVar(&req.Password, "password", "", "password (8+ characters with a special character)")
	f.StringVar(&req.ConfirmPassword, "confirm", "", "repeat the password (default: same as --password)")
	f.StringVar(&req.Location, "location", "", "sub-county, see 'menjava locations list'")
	f.StringVar(&req.Phone, "phone", "", "Kenyan phone number, e.g. 0712345678")
	f.StringVar(&req.Address, "address", "", "pickup address, see 'menjava locations addresses'")
	return cmd
}

func newLoginCmd(a *App) *cobra.Command {
	var creds api.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.client.Auth().Login(cmd.Context(), creds)
			if err != nil {
				var suspended *model.SuspendedError
				if errors.As(err, &suspended) {
					a.notifier.Error(suspended.Message)
					if suspended.Reason != "" {
						a.notifier.Error("Reason: " + suspended.Reason)
					}
					return reported(err)
				}
				return a.fail(err, "Login failed")
			}
			a.notifier.Success(fmt.Sprintf("Logged in as %s", nonEmpty(user.Name, user.Email)))
			return nil
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "email address")
	cmd.Flags().StringVar(&creds.Password, "password", "", "password")
	return cmd
}

func newAdminLoginCmd(a *App) *cobra.Command {
	var creds api.Credentials
	cmd := &cobra.Command{
		Use:   "admin-login",
		Short: "Log in to the admin console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, err := a.client.Auth().AdminLogin(cmd.Context(), creds)
			if err != nil {
				return a.fail(err, "Admin login failed")
			}
			a.notifier.Success("Admin logged in as " + admin.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "admin email address")
	cmd.Flags().StringVar(&creds.Password, "password", "", "password")
	return cmd
}

func newLogoutCmd(a *App) *cobra.Command {
	var admin bool
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if admin {
				if err := a.client.Auth().AdminLogout(cmd.Context()); err != nil {
					return err
				}
				a.notifier.Success("Admin logged out")
				return nil
			}
			if err := a.client.Auth().Logout(cmd.Context()); err != nil {
				return err
			}
			a.notifier.Success("Logged out")
			return nil
		},
	}
	cmd.Flags().BoolVar(&admin, "admin", false, "log out of the admin console instead")
	return cmd
}

func newWhoamiCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show who is logged in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var lines []string
			if u := a.session.User(); u != nil {
				lines = append(lines, fmt.Sprintf("user  %s <%s> (id %s, %s)", u.Name, u.Email, u.ID, nonEmpty(u.Location, "no location")))
			}
			if ad := a.session.Admin(); ad != nil {
				lines = append(lines, fmt.Sprintf("admin %s", ad.Email))
			}
			if len(lines) == 0 {
				lines = append(lines, "Not logged in.")
			}
			writeOut(cmd, strings.Join(lines, "\n"))
			return nil
		},
	}
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
