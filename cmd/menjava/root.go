package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/erazemk/menjava/internal/api"
	"github.com/erazemk/menjava/internal/app"
	"github.com/erazemk/menjava/internal/claim"
	"github.com/erazemk/menjava/internal/config"
	"github.com/erazemk/menjava/internal/db"
	"github.com/erazemk/menjava/internal/model"
	"github.com/erazemk/menjava/internal/notify"
	"github.com/erazemk/menjava/internal/session"
	"github.com/erazemk/menjava/internal/store"
)

const msgSessionExpired = "Your session has expired. Please log in again."

// App is the state shared by every command. It is filled in by the root
// command's PersistentPreRunE.
type App struct {
	v *viper.Viper

	cfg      *config.Config
	logger   *slog.Logger
	db       *sql.DB
	session  *session.Session
	client   *api.Client
	notifier *notify.Console
	cache    *app.ItemCache
	cleanup  []func()
}

// newRootCmd builds the menjava command tree. The caller closes the App once
// the command has finished, whether or not it failed.
func newRootCmd() (*cobra.Command, *App) {
	a := &App{v: config.New()}

	cmd := &cobra.Command{
		Use:           "menjava",
		Short:         "Give away and claim items in your community",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  menjava --api http://localhost:8080/api login --email you@example.co.ke --password 'secret!pw'
  menjava items list --available --location Bobasi
  menjava items claim 42
  menjava items contact 42
`),
	}

	flags := cmd.PersistentFlags()
	flags.String("api", "", "backend base URL (env MENJAVA_API_URL)")
	flags.String("state", "", "local state database path (env MENJAVA_STATE_PATH)")
	flags.String("log", "", "log file path (default: no file)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	for key, name := range map[string]string{
		config.APIURL:    "api",
		config.StatePath: "state",
		config.LogFile:   "log",
		config.LogLevel:  "log-level",
	} {
		a.v.BindPFlag(key, flags.Lookup(name))
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.setup(cmd)
	}

	cmd.AddCommand(newSignupCmd(a))
	cmd.AddCommand(newLoginCmd(a))
	cmd.AddCommand(newAdminLoginCmd(a))
	cmd.AddCommand(newLogoutCmd(a))
	cmd.AddCommand(newWhoamiCmd(a))
	cmd.AddCommand(newItemsCmd(a))
	cmd.AddCommand(newDashboardCmd(a))
	cmd.AddCommand(newAdminCmd(a))
	cmd.AddCommand(newNotificationsCmd(a))
	cmd.AddCommand(newLocationsCmd(a))

	return cmd, a
}

func (a *App) setup(cmd *cobra.Command) (err error) {
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, _ := cfg.Level()
	logger, closeLog, err := setupLogger(cmd.OutOrStdout(), cmd.ErrOrStderr(), level, cfg.LogFile)
	if err != nil {
		return err
	}
	a.cleanup = append(a.cleanup, closeLog)
	a.logger = logger
	prev := slog.Default()
	slog.SetDefault(logger)
	a.cleanup = append(a.cleanup, func() { slog.SetDefault(prev) })

	conn, err := db.Open(cfg.StatePath)
	if err != nil {
		return err
	}
	a.cleanup = append(a.cleanup, func() { conn.Close() })
	if err := db.EnsureSchema(conn); err != nil {
		return err
	}
	a.db = conn
	a.cache = app.NewItemCache(conn)

	a.session, err = session.Load(cmd.Context(), store.NewStateStore(conn), logger)
	if err != nil {
		return err
	}

	a.notifier = notify.NewConsole(cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
	a.client, err = api.New(cfg.APIURL, a.session,
		api.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		api.WithLogger(logger),
		api.WithUnauthorizedHandler(func() { a.notifier.Error(msgSessionExpired) }),
	)
	return err
}

func (a *App) close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	a.cleanup = nil
}

// claims builds a coordinator that calls refresh after each successful
// transition.
func (a *App) claims(refresh func()) *claim.Coordinator {
	return claim.New(claim.Params{
		Items:    a.client.Items(),
		Session:  a.session,
		Notifier: a.notifier,
		Refresh:  refresh,
		Logger:   a.logger,
	})
}

func (a *App) browse() *app.Browse {
	return app.NewBrowse(app.BrowseParams{Items: a.client.Items(), Cache: a.cache, Notifier: a.notifier, Logger: a.logger})
}

func (a *App) dashboard() *app.Dashboard {
	return app.NewDashboard(app.DashboardParams{
		Data:     a.client.Users(),
		Items:    a.client.Items(),
		Session:  a.session,
		Cache:    a.cache,
		Notifier: a.notifier,
		Logger:   a.logger,
	})
}

func (a *App) admin() *app.Admin {
	return app.NewAdmin(app.AdminParams{
		Backend:  a.client.Admin(),
		Session:  a.session,
		Cache:    a.cache,
		Notifier: a.notifier,
		Logger:   a.logger,
	})
}

func (a *App) poster() *app.Poster {
	return app.NewPoster(app.PosterParams{
		Items:    a.client.Items(),
		Session:  a.session,
		Cache:    a.cache,
		Notifier: a.notifier,
		Logger:   a.logger,
	})
}

// fail tells the user what went wrong and marks err as reported.
func (a *App) fail(err error, fallback string) error {
	a.notifier.Error(failureMessage(err, fallback))
	return reported(err)
}

func failureMessage(err error, fallback string) string {
	var verrs model.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, msg := range verrs {
			msgs = append(msgs, msg)
		}
		sort.Strings(msgs)
		return strings.Join(msgs, "; ")
	}
	var pre *claim.PreconditionError
	if errors.As(err, &pre) {
		return pre.Message
	}
	return model.MessageOr(err, fallback)
}

func writeOut(cmd *cobra.Command, s string) {
	fmt.Fprintln(cmd.OutOrStdout(), s)
}
