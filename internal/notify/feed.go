package notify

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/erazemk/menjava/internal/model"
)

// Source fetches and acknowledges notifications.
type Source interface {
	List(ctx context.Context) ([]model.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

// Signer tells whether a regular user is signed in.
type Signer interface {
	User() *model.Identity
}

// Feed holds the signed-in user's notifications.
type Feed struct {
	source  Source
	session Signer
	logger  *slog.Logger

	mu    sync.Mutex
	items []model.Notification
}

// NewFeed creates an empty feed. A nil logger uses slog.Default().
func NewFeed(source Source, session Signer, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{source: source, session: session, logger: logger}
}

// Load refreshes the feed and reports whether it changed. Without a signed-in
// user the feed is emptied and nothing is fetched.
func (f *Feed) Load(ctx context.Context) (bool, error) {
	if f.session.User() == nil {
		return f.replace(nil), nil
	}

	items, err := f.source.List(ctx)
	if err != nil {
		return false, fmt.Errorf("loading notifications: %w", err)
	}
	return f.replace(items), nil
}

func (f *Feed) replace(items []model.Notification) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	changed := !slices.EqualFunc(f.items, items, func(a, b model.Notification) bool {
		return a.ID == b.ID && a.IsRead == b.IsRead && a.Message == b.Message
	})
	f.items = items
	return changed
}

// Items returns a copy of the feed, in the order the backend sent it.
func (f *Feed) Items() []model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.items)
}

// Unread counts notifications not yet read.
func (f *Feed) Unread() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, item := range f.items {
		if !item.IsRead {
			n++
		}
	}
	return n
}

// MarkRead acknowledges a notification on the backend and in the feed.
func (f *Feed) MarkRead(ctx context.Context, id string) error {
	if err := f.source.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("marking notification %s read: %w", id, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].IsRead = true
		}
	}
	return nil
}

// Poll loads the feed now and then every interval until ctx is done, calling
// onChange with the new items whenever they differ. Load failures are logged
// and retried on the next tick.
func (f *Feed) Poll(ctx context.Context, interval time.Duration, onChange func([]model.Notification)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		changed, err := f.Load(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			f.logger.Warn("polling notifications", "error", err)
		case changed && onChange != nil:
			onChange(f.Items())
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
