package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/erazemk/menjava/internal/claim"
	"github.com/erazemk/menjava/internal/model"
	"github.com/erazemk/menjava/internal/policy"
)

// ItemWriter creates and edits items.
type ItemWriter interface {
	Create(ctx context.Context, d *model.Draft) (*model.Item, error)
	Update(ctx context.Context, id string, u *model.ItemUpdate) (*model.Item, error)
}

// Poster posts new items and applies owners' edits.
type Poster struct {
	items    ItemWriter
	session  Identities
	cache    *ItemCache
	notifier Notifier
	logger   *slog.Logger
}

// PosterParams configure a Poster.
type PosterParams struct {
	Items    ItemWriter
	Session  Identities
	Cache    *ItemCache
	Notifier Notifier
	Logger   *slog.Logger
}

// NewPoster creates a Poster.
func NewPoster(p PosterParams) *Poster {
	return &Poster{
		items:    p.Items,
		session:  p.Session,
		cache:    p.Cache,
		notifier: p.Notifier,
		logger:   defaultLogger(p.Logger),
	}
}

// Post validates and uploads a draft.
func (p *Poster) Post(ctx context.Context, d *model.Draft) (*model.Item, error) {
	if p.session.User() == nil {
		p.notifier.Error(msgLoginRequired)
		return nil, claim.ErrorFor(model.ErrNotAuthenticated, msgLoginRequired)
	}
	if err := d.Validate(); err != nil {
		msg, _ := validationMessage(err)
		p.notifier.Error(msg)
		return nil, err
	}

	item, err := p.items.Create(ctx, d)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			p.notifier.Error(msg)
		} else {
			p.notifier.Error(model.MessageOr(err, msgPostFailed))
		}
		return nil, fmt.Errorf("posting item: %w", err)
	}

	if item != nil {
		if err := p.cache.Put(ctx, item); err != nil {
			p.logger.Warn("caching item", "item", item.ID, "error", err)
		}
		p.logger.Info("item posted", "item", item.ID)
	}
	p.notifier.Success(msgPosted)
	return item, nil
}

// Edit applies an owner's changes to item. On success item holds the
// backend's copy.
func (p *Poster) Edit(ctx context.Context, item *model.Item, u *model.ItemUpdate) error {
	user := p.session.User()
	if user == nil {
		p.notifier.Error(msgLoginRequired)
		return claim.ErrorFor(model.ErrNotAuthenticated, msgLoginRequired)
	}
	if !policy.CanEdit(item, user) {
		p.notifier.Error(msgEditOwnOnly)
		return claim.ErrorFor(model.ErrUnauthorized, msgEditOwnOnly)
	}
	if err := u.Validate(item); err != nil {
		msg, _ := validationMessage(err)
		p.notifier.Error(msg)
		return err
	}

	updated, err := p.items.Update(ctx, item.ID, u)
	if err != nil {
		p.notifier.Error(model.MessageOr(err, msgUpdateFailed))
		return fmt.Errorf("updating item %s: %w", item.ID, err)
	}
	if updated != nil {
		*item = *updated
		if err := p.cache.Put(ctx, item); err != nil {
			p.logger.Warn("caching item", "item", item.ID, "error", err)
		}
	}
	p.notifier.Success(msgUpdated)
	return nil
}
