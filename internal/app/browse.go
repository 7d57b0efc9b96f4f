package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/erazemk/menjava/internal/api"
	"github.com/erazemk/menjava/internal/model"
)

// ItemReader lists and fetches items.
type ItemReader interface {
	List(ctx context.Context, f api.Filter) ([]model.Item, error)
	Get(ctx context.Context, id string) (*model.Item, error)
}

// Listing is one browse result.
type Listing struct {
	All       []model.Item
	Available []model.Item
	Claimed   []model.Item
	// Stale is set when the backend was unreachable and the items come from
	// the local cache, fetched at FetchedAt.
	Stale     bool
	FetchedAt time.Time
}

func newListing(items []model.Item) *Listing {
	available, claimed := model.SplitByStatus(items)
	return &Listing{All: items, Available: available, Claimed: claimed}
}

// Browse loads item listings.
type Browse struct {
	items    ItemReader
	cache    *ItemCache
	notifier Notifier
	logger   *slog.Logger
}

// BrowseParams configure a Browse.
type BrowseParams struct {
	Items    ItemReader
	Cache    *ItemCache
	Notifier Notifier
	Logger   *slog.Logger
}

// NewBrowse creates a Browse.
func NewBrowse(p BrowseParams) *Browse {
	return &Browse{items: p.Items, cache: p.Cache, notifier: p.Notifier, logger: defaultLogger(p.Logger)}
}

// Load fetches the items matching f and caches them. When the backend cannot
// be reached the cached items matching f are returned with Stale set.
func (b *Browse) Load(ctx context.Context, f api.Filter) (*Listing, error) {
	items, err := b.items.List(ctx, f)
	if err == nil {
		if err := b.cache.Replace(ctx, items); err != nil {
			b.logger.Warn("caching items", "error", err)
		}
		return newListing(items), nil
	}

	if !unreachable(err) {
		b.notifier.Error(model.MessageOr(err, msgLoadItemsFailed))
		return nil, err
	}

	cached, fetchedAt, cacheErr := b.cache.List(ctx)
	if cacheErr != nil || len(cached) == 0 {
		if cacheErr != nil {
			b.logger.Warn("reading item cache", "error", cacheErr)
		}
		b.notifier.Error(msgLoadItemsFailed)
		return nil, err
	}

	b.logger.Warn("backend unreachable, using cached items", "error", err, "fetched_at", fetchedAt)
	b.notifier.Error(msgShowingCachedItems)
	listing := newListing(filterLocal(cached, f))
	listing.Stale = true
	listing.FetchedAt = fetchedAt
	return listing, nil
}

// Show fetches one item, falling back to the cache when the backend cannot be
// reached.
func (b *Browse) Show(ctx context.Context, id string) (*model.Item, bool, error) {
	item, err := b.items.Get(ctx, id)
	if err == nil {
		if err := b.cache.Put(ctx, item); err != nil {
			b.logger.Warn("caching item", "item", id, "error", err)
		}
		return item, false, nil
	}
	if unreachable(err) {
		if cached, cacheErr := b.cache.Get(ctx, id); cacheErr == nil && cached != nil {
			return cached, true, nil
		}
	}
	return nil, false, err
}

// Remember updates the cached copy of an item after a claim or edit.
func (b *Browse) Remember(ctx context.Context, item *model.Item) {
	if err := b.cache.Put(ctx, item); err != nil {
		b.logger.Warn("caching item", "item", item.ID, "error", err)
	}
}

// filterLocal applies a filter to cached items with the backend's precedence.
func filterLocal(items []model.Item, f api.Filter) []model.Item {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	location := strings.TrimSpace(f.Location)

	keep := func(it *model.Item) bool {
		switch {
		case search != "":
			if location != "" && !strings.EqualFold(it.Location, location) {
				return false
			}
			return strings.Contains(strings.ToLower(it.Title), search) ||
				strings.Contains(strings.ToLower(it.Description), search)
		case f.Category != "":
			return strings.EqualFold(string(it.Category), string(f.Category))
		case location != "":
			return strings.EqualFold(it.Location, location)
		case f.AvailableOnly:
			return it.Available()
		default:
			return true
		}
	}

	var out []model.Item
	for i := range items {
		if keep(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}

// Describe names the filter for headings, e.g. `matching "desk"`.
func Describe(f api.Filter) string {
	switch {
	case strings.TrimSpace(f.Search) != "":
		return fmt.Sprintf("matching %q", strings.TrimSpace(f.Search))
	case f.Category != "":
		return "in " + strings.ToLower(string(f.Category))
	case strings.TrimSpace(f.Location) != "":
		return "in " + strings.TrimSpace(f.Location)
	case f.AvailableOnly:
		return "available"
	default:
		return "all"
	}
}
