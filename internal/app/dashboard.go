package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/menjava/internal/claim"
	"github.com/erazemk/menjava/internal/model"
)

// UserData is the signed-in user's side of the backend.
type UserData interface {
	Dashboard(ctx context.Context) (*model.DashboardStats, error)
	PostedItems(ctx context.Context) ([]model.Item, error)
	ClaimedItems(ctx context.Context) ([]model.Item, error)
}

// ItemDeleter removes an item.
type ItemDeleter interface {
	Delete(ctx context.Context, id string) error
}

// DashboardView is what the dashboard shows. A section that failed to load
// is nil and its error is set.
type DashboardView struct {
	Stats      *model.DashboardStats
	StatsErr   error
	Posted     []model.Item
	PostedErr  error
	Claimed    []model.Item
	ClaimedErr error
}

// Dashboard is the signed-in user's personal page.
type Dashboard struct {
	data     UserData
	items    ItemDeleter
	session  Identities
	cache    *ItemCache
	notifier Notifier
	logger   *slog.Logger
}

// DashboardParams configure a Dashboard.
type DashboardParams struct {
	Data     UserData
	Items    ItemDeleter
	Session  Identities
	Cache    *ItemCache
	Notifier Notifier
	Logger   *slog.Logger
}

// NewDashboard creates a Dashboard.
func NewDashboard(p DashboardParams) *Dashboard {
	return &Dashboard{
		data:     p.Data,
		items:    p.Items,
		session:  p.Session,
		cache:    p.Cache,
		notifier: p.Notifier,
		logger:   defaultLogger(p.Logger),
	}
}

// Load fetches the stats and both item lists concurrently. Each failure is
// reported on its own; the returned error joins them.
func (d *Dashboard) Load(ctx context.Context) (*DashboardView, error) {
	if d.session.User() == nil {
		d.notifier.Error(msgLoginRequired)
		return nil, claim.ErrorFor(model.ErrNotAuthenticated, msgLoginRequired)
	}

	var view DashboardView
	var g errgroup.Group
	g.Go(func() error {
		view.Stats, view.StatsErr = d.data.Dashboard(ctx)
		return nil
	})
	g.Go(func() error {
		view.Posted, view.PostedErr = d.data.PostedItems(ctx)
		return nil
	})
	g.Go(func() error {
		view.Claimed, view.ClaimedErr = d.data.ClaimedItems(ctx)
		return nil
	})
	g.Wait()

	sections := []struct {
		err error
		msg string
	}{
		{view.StatsErr, msgDashboardFailed},
		{view.PostedErr, msgPostedFailed},
		{view.ClaimedErr, msgClaimedFailed},
	}
	var errs []error
	for _, s := range sections {
		if s.err != nil {
			d.logger.Warn(s.msg, "error", s.err)
			d.notifier.Error(s.msg)
			errs = append(errs, s.err)
		}
	}
	return &view, errors.Join(errs...)
}

// Delete removes one of the user's posted items and drops it from view.
func (d *Dashboard) Delete(ctx context.Context, view *DashboardView, item *model.Item) error {
	user := d.session.User()
	if user == nil {
		d.notifier.Error(msgLoginRequired)
		return claim.ErrorFor(model.ErrNotAuthenticated, msgLoginRequired)
	}
	if !model.IsOwner(item, user) {
		d.notifier.Error(msgDeleteOwnOnly)
		return claim.ErrorFor(model.ErrUnauthorized, msgDeleteOwnOnly)
	}

	if err := d.items.Delete(ctx, item.ID); err != nil {
		d.notifier.Error(model.MessageOr(err, msgDeleteFailed))
		return fmt.Errorf("deleting item %s: %w", item.ID, err)
	}
	if err := d.cache.Forget(ctx, item.ID); err != nil {
		d.logger.Warn("dropping cached item", "item", item.ID, "error", err)
	}

	if view != nil {
		view.Posted = slices.DeleteFunc(view.Posted, func(it model.Item) bool { return it.ID == item.ID })
		if view.Stats != nil {
			view.Stats.TotalPostedItems--
			if item.Available() {
				view.Stats.AvailableItems--
			} else {
				view.Stats.ClaimedItemsCount--
			}
		}
	}
	d.notifier.Success(msgDeleted)
	return nil
}
