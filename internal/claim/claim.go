// Package claim coordinates claim and unclaim transitions between the local
// view of an item and the backend's authoritative decision.
package claim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/erazemk/menjava/internal/model"
)

// ItemService is the backend surface the coordinator talks to.
// Claim and Unclaim may return a nil item on success when the backend sends no body.
type ItemService interface {
	Claim(ctx context.Context, id string) (*model.Item, error)
	Unclaim(ctx context.Context, id string) (*model.Item, error)
	Get(ctx context.Context, id string) (*model.Item, error)
}

// IdentitySource supplies the acting identity.
type IdentitySource interface {
	CurrentIdentity() *model.Identity
}

// Notifier shows user-visible feedback.
type Notifier interface {
	Error(msg string)
	Success(msg string)
}

// User-visible messages.
const (
	msgLoginToClaim   = "Please login to claim items"
	msgLoginToUnclaim = "Please login to unclaim items"
	msgAdminClaim     = "Admins cannot claim items"
	msgOwnClaim       = "You cannot claim your own item"
	msgAlreadyClaimed = "Item is already claimed"
	msgOnlyClaimer    = "Only the claimer can unclaim this item"
	msgClaimed        = "Item claimed successfully! Contact the owner to arrange pickup."
	msgUnclaimed      = "Item unclaimed successfully."
	msgClaimFailed    = "Failed to claim item"
	msgUnclaimFailed  = "Failed to unclaim item"
)

// Params configures a Coordinator.
type Params struct {
	Items    ItemService
	Session  IdentitySource
	Notifier Notifier
	// Refresh is called once after every successful transition.
	Refresh  func()
	Logger   *slog.Logger
}

// Coordinator runs claim and unclaim for a single actor.
type Coordinator struct {
	items    ItemService
	session  IdentitySource
	notifier Notifier
	refresh  func()
	logger   *slog.Logger

	mu   sync.Mutex
	busy map[string]bool
}

// New creates a Coordinator.
func New(p Params) *Coordinator {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	refresh := p.Refresh
	if refresh == nil {
		refresh = func() {}
	}
	return &Coordinator{
		items:    p.Items,
		session:  p.Session,
		notifier: p.Notifier,
		refresh:  refresh,
		logger:   logger,
		busy:     make(map[string]bool),
	}
}

// Busy reports whether a request for the item is outstanding.
func (c *Coordinator) Busy(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy[id]
}

func (c *Coordinator) acquire(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy[id] {
		return false
	}
	c.busy[id] = true
	return true
}

func (c *Coordinator) release(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.busy, id)
}

// transition is a validated request waiting for the backend's answer.
type transition struct {
	action   string
	call     func(ctx context.Context, id string) (*model.Item, error)
	apply    func(item *model.Item)
	// done reports whether the backend's copy shows the transition.
	done     func(item *model.Item) bool
	success  string
	fallback string
}

// Claim moves an available item to claimed by the current identity.
// On success item holds the backend's copy.
func (c *Coordinator) Claim(ctx context.Context, item *model.Item) error {
	actor := c.session.CurrentIdentity()

	switch {
	case actor == nil:
		return c.reject(ErrorFor(model.ErrNotAuthenticated, msgLoginToClaim))
	case actor.IsAdmin():
		return c.reject(ErrorFor(model.ErrUnauthorized, msgAdminClaim))
	case model.IsOwner(item, actor):
		return c.reject(ErrorFor(model.ErrUnauthorized, msgOwnClaim))
	case item.Status != model.StatusAvailable:
		return c.reject(ErrorFor(model.ErrInvalidState, msgAlreadyClaimed))
	}

	ref := actor.Ref()
	return c.run(ctx, item, transition{
		action: "claim",
		call:   c.items.Claim,
		apply: func(it *model.Item) {
			it.Status = model.StatusClaimed
			it.ClaimedBy = &ref
		},
		done: func(it *model.Item) bool {
			return it.Status == model.StatusClaimed && model.IsClaimer(it, actor)
		},
		success:  msgClaimed,
		fallback: msgClaimFailed,
	})
}

// Unclaim releases an item held by the current identity.
func (c *Coordinator) Unclaim(ctx context.Context, item *model.Item) error {
	actor := c.session.CurrentIdentity()

	switch {
	case actor == nil:
		return c.reject(ErrorFor(model.ErrNotAuthenticated, msgLoginToUnclaim))
	case item.Status != model.StatusClaimed || !model.IsClaimer(item, actor):
		return c.reject(ErrorFor(model.ErrUnauthorized, msgOnlyClaimer))
	}

	return c.run(ctx, item, transition{
		action: "unclaim",
		call:   c.items.Unclaim,
		apply: func(it *model.Item) {
			it.Status = model.StatusAvailable
			it.ClaimedBy = nil
		},
		done: func(it *model.Item) bool {
			return it.Status == model.StatusAvailable
		},
		success:  msgUnclaimed,
		fallback: msgUnclaimFailed,
	})
}

func (c *Coordinator) reject(err *PreconditionError) error {
	c.notifier.Error(err.Message)
	return err
}

// run awaits the backend and then commits or rolls back.
func (c *Coordinator) run(ctx context.Context, item *model.Item, t transition) error {
	if !c.acquire(item.ID) {
		return model.ErrBusy
	}
	defer c.release(item.ID)

	confirmed, err := t.call(ctx, item.ID)
	if err != nil {
		if !unreadableReply(err) {
			c.rollback(ctx, item, t, err)
			return fmt.Errorf("%s item %s: %w", t.action, item.ID, err)
		}
		// The call went through; only the reply body was unusable.
		c.logger.Warn("unreadable reply, re-fetching item", "action", t.action, "item", item.ID, "error", err)
		fetched, ferr := c.items.Get(ctx, item.ID)
		if ferr != nil || fetched == nil {
			c.notifier.Error(t.fallback)
			if ferr != nil {
				err = ferr
			}
			return fmt.Errorf("%s item %s: re-fetching after unreadable reply: %w", t.action, item.ID, err)
		}
		confirmed = fetched
	}

	next := *item
	if confirmed != nil {
		next = *confirmed
	} else {
		t.apply(&next)
	}
	if err := model.CheckInvariants(&next); err != nil {
		c.logger.Error("backend returned inconsistent item", "action", t.action, "item", item.ID, "error", err)
		c.notifier.Error(t.fallback)
		return fmt.Errorf("%s item %s: %w", t.action, item.ID, err)
	}
	if next.ID != item.ID || !t.done(&next) {
		c.logger.Error("backend reply does not show the transition",
			"action", t.action, "item", item.ID, "reply_item", next.ID, "status", next.Status)
		c.resync(ctx, item, &next)
		c.notifier.Error(t.fallback)
		return fmt.Errorf("%s item %s: backend reply shows item %s %s: %w",
			t.action, item.ID, next.ID, next.Status, model.ErrInvalidState)
	}

	*item = next
	c.logger.Info("item updated", "action", t.action, "item", item.ID, "status", item.Status)
	c.notifier.Success(t.success)
	c.refresh()
	return nil
}

// unreadableReply reports whether err is a 2xx reply whose body did not
// decode, as opposed to a rejection.
func unreadableReply(err error) bool {
	var remote *model.RemoteError
	return !errors.As(err, &remote) && errors.Is(err, model.ErrMalformedRecord)
}

// rollback surfaces the failure. Local state stays as it was unless the
// backend refused the call on its merits, in which case its copy replaces ours.
func (c *Coordinator) rollback(ctx context.Context, item *model.Item, t transition, err error) {
	c.logger.Warn("item update rejected", "action", t.action, "item", item.ID, "error", err)
	c.notifier.Error(model.MessageOr(err, t.fallback))

	var remote *model.RemoteError
	if !errors.As(err, &remote) || !remote.Rejected() {
		return
	}
	c.resync(ctx, item, remote.Item)
}

// resync replaces item with the backend's current copy. current is used when
// it is the same item, otherwise the item is fetched again.
func (c *Coordinator) resync(ctx context.Context, item, current *model.Item) {
	if current != nil && current.ID == "" {
		bare := *current
		bare.ID = item.ID
		current = &bare
	}
	if current == nil || current.ID != item.ID {
		fetched, err := c.items.Get(ctx, item.ID)
		if err != nil || fetched == nil {
			c.logger.Warn("re-sync failed", "item", item.ID, "error", err)
			return
		}
		current = fetched
	}

	if err := model.CheckInvariants(current); err != nil {
		c.logger.Warn("backend copy is inconsistent", "item", item.ID, "error", err)
		return
	}
	*item = *current
	c.logger.Info("item re-synced", "item", item.ID, "status", item.Status)
}
