package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/erazemk/menjava/internal/model"
)

// CacheItems replaces the whole item cache with items, keeping their order.
func CacheItems(ctx context.Context, db *sql.DB, items []model.Item) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM item_cache`); err != nil {
		return fmt.Errorf("clearing item cache: %w", err)
	}

	now := time.Now().UTC()
	for i := range items {
		if err := putItem(ctx, tx, &items[i], i, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing item cache: %w", err)
	}
	return nil
}

// PutCachedItem inserts or replaces one cached item, keeping its list position.
func PutCachedItem(ctx context.Context, db *sql.DB, item *model.Item) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encoding item %s: %w", item.ID, err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO item_cache (id, payload, status, position, fetched_at)
		 VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM item_cache), ?)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, status = excluded.status,
		     fetched_at = excluded.fetched_at`,
		item.ID, string(payload), string(item.Status), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("caching item %s: %w", item.ID, err)
	}
	return nil
}

func putItem(ctx context.Context, tx *sql.Tx, item *model.Item, position int, fetchedAt time.Time) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encoding item %s: %w", item.ID, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO item_cache (id, payload, status, position, fetched_at) VALUES (?, ?, ?, ?, ?)`,
		item.ID, string(payload), string(item.Status), position, fetchedAt,
	)
	if err != nil {
		return fmt.Errorf("caching item %s: %w", item.ID, err)
	}
	return nil
}

// GetCachedItem returns a cached item by ID, or nil if it is not cached.
func GetCachedItem(ctx context.Context, db *sql.DB, id string) (*model.Item, error) {
	var payload string
	err := db.QueryRowContext(ctx,
		`SELECT payload FROM item_cache WHERE id = ?`, id,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting cached item: %w", err)
	}

	item := &model.Item{}
	if err := json.Unmarshal([]byte(payload), item); err != nil {
		return nil, fmt.Errorf("decoding cached item %s: %w", id, err)
	}
	return item, nil
}

// ListCachedItems returns cached items in list order, optionally filtered by status.
// It also returns when the oldest entry was fetched.
func ListCachedItems(ctx context.Context, db *sql.DB, status model.Status) ([]model.Item, time.Time, error) {
	var rows *sql.Rows
	var err error

	if status != "" {
		rows, err = db.QueryContext(ctx,
			`SELECT payload, fetched_at FROM item_cache WHERE status = ? ORDER BY position`, string(status),
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT payload, fetched_at FROM item_cache ORDER BY position`,
		)
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("listing cached items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	var oldest time.Time
	for rows.Next() {
		var payload string
		var fetchedAt time.Time
		if err := rows.Scan(&payload, &fetchedAt); err != nil {
			return nil, time.Time{}, fmt.Errorf("scanning cached item: %w", err)
		}

		var item model.Item
		if err := json.Unmarshal([]byte(payload), &item); err != nil {
			return nil, time.Time{}, fmt.Errorf("decoding cached item: %w", err)
		}
		items = append(items, item)

		if oldest.IsZero() || fetchedAt.Before(oldest) {
			oldest = fetchedAt
		}
	}
	return items, oldest, rows.Err()
}

// DeleteCachedItem drops an item from the cache.
func DeleteCachedItem(ctx context.Context, db *sql.DB, id string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM item_cache WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting cached item: %w", err)
	}
	return nil
}
