package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/erazemk/menjava/internal/model"
	"github.com/erazemk/menjava/internal/store"
)

// ItemCache keeps the last browsed listing in the local database.
// A nil *ItemCache caches nothing.
type ItemCache struct {
	db *sql.DB
}

// NewItemCache wraps db.
func NewItemCache(db *sql.DB) *ItemCache {
	return &ItemCache{db: db}
}

// Replace stores items as the current listing.
func (c *ItemCache) Replace(ctx context.Context, items []model.Item) error {
	if c == nil {
		return nil
	}
	return store.CacheItems(ctx, c.db, items)
}

// Put stores one item, keeping its place in the listing.
func (c *ItemCache) Put(ctx context.Context, item *model.Item) error {
	if c == nil {
		return nil
	}
	return store.PutCachedItem(ctx, c.db, item)
}

// Get returns a cached item, or nil.
func (c *ItemCache) Get(ctx context.Context, id string) (*model.Item, error) {
	if c == nil {
		return nil, nil
	}
	return store.GetCachedItem(ctx, c.db, id)
}

// List returns the cached listing and when its oldest entry was fetched.
func (c *ItemCache) List(ctx context.Context) ([]model.Item, time.Time, error) {
	if c == nil {
		return nil, time.Time{}, nil
	}
	return store.ListCachedItems(ctx, c.db, "")
}

// Forget drops an item.
func (c *ItemCache) Forget(ctx context.Context, id string) error {
	if c == nil {
		return nil
	}
	return store.DeleteCachedItem(ctx, c.db, id)
}
