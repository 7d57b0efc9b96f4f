package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/erazemk/menjava/internal/claim"
	"github.com/erazemk/menjava/internal/model"
)

// AdminBackend is the moderation side of the backend.
type AdminBackend interface {
	Items(ctx context.Context) ([]model.Item, error)
	DeleteItem(ctx context.Context, id string) error
	Users(ctx context.Context) ([]model.Identity, error)
	Suspend(ctx context.Context, id, reason string) error
	Unsuspend(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, id string) error
}

// Admin is the moderation console. Every operation needs an admin identity.
type Admin struct {
	backend  AdminBackend
	session  Identities
	cache    *ItemCache
	notifier Notifier
	logger   *slog.Logger
}

// AdminParams configure an Admin.
type AdminParams struct {
	Backend  AdminBackend
	Session  Identities
	Cache    *ItemCache
	Notifier Notifier
	Logger   *slog.Logger
}

// NewAdmin creates an Admin.
func NewAdmin(p AdminParams) *Admin {
	return &Admin{
		backend:  p.Backend,
		session:  p.Session,
		cache:    p.Cache,
		notifier: p.Notifier,
		logger:   defaultLogger(p.Logger),
	}
}

func (a *Admin) require() error {
	if !a.session.Admin().IsAdmin() {
		a.notifier.Error(msgAdminRequired)
		return claim.ErrorFor(model.ErrNotAuthenticated, msgAdminRequired)
	}
	return nil
}

// Items lists every item.
func (a *Admin) Items(ctx context.Context) ([]model.Item, error) {
	if err := a.require(); err != nil {
		return nil, err
	}
	items, err := a.backend.Items(ctx)
	if err != nil {
		a.notifier.Error(model.MessageOr(err, msgItemsFailed))
		return nil, err
	}
	return items, nil
}

// Users lists every regular user.
func (a *Admin) Users(ctx context.Context) ([]model.Identity, error) {
	if err := a.require(); err != nil {
		return nil, err
	}
	users, err := a.backend.Users(ctx)
	if err != nil {
		a.notifier.Error(model.MessageOr(err, msgUsersFailed))
		return nil, err
	}
	return users, nil
}

// DeleteItem removes any item.
func (a *Admin) DeleteItem(ctx context.Context, id string) error {
	if err := a.require(); err != nil {
		return err
	}
	if err := a.backend.DeleteItem(ctx, id); err != nil {
		a.notifier.Error(model.MessageOr(err, msgDeleteFailed))
		return fmt.Errorf("deleting item %s: %w", id, err)
	}
	if err := a.cache.Forget(ctx, id); err != nil {
		a.logger.Warn("dropping cached item", "item", id, "error", err)
	}
	a.logger.Info("admin deleted item", "item", id)
	a.notifier.Success(msgDeleted)
	return nil
}

// Suspend blocks a user. A reason is required.
func (a *Admin) Suspend(ctx context.Context, id, reason string) error {
	if err := a.require(); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		a.notifier.Error(msgReasonRequired)
		return model.ValidationErrors{"reason": msgReasonRequired}
	}
	return a.run("suspend", id, func() error { return a.backend.Suspend(ctx, id, reason) }, msgSuspended, msgSuspendFailed)
}

// Unsuspend lifts a suspension.
func (a *Admin) Unsuspend(ctx context.Context, id string) error {
	if err := a.require(); err != nil {
		return err
	}
	return a.run("unsuspend", id, func() error { return a.backend.Unsuspend(ctx, id) }, msgUnsuspended, msgUnsuspendFailed)
}

// DeleteUser removes a user account.
func (a *Admin) DeleteUser(ctx context.Context, id string) error {
	if err := a.require(); err != nil {
		return err
	}
	return a.run("delete", id, func() error { return a.backend.DeleteUser(ctx, id) }, msgUserDeleted, msgUserDeleteFailed)
}

func (a *Admin) run(action, id string, call func() error, success, fallback string) error {
	if err := call(); err != nil {
		a.notifier.Error(model.MessageOr(err, fallback))
		return fmt.Errorf("%s user %s: %w", action, id, err)
	}
	a.logger.Info("admin updated user", "action", action, "user", id)
	a.notifier.Success(success)
	return nil
}
