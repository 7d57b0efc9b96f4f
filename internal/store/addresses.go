package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/menjava/internal/model"
)

// ListAddresses returns the pickup addresses for a location: the built-in
// defaults first, then the ones the user saved, without duplicates.
func ListAddresses(ctx context.Context, db *sql.DB, location string) ([]string, error) {
	addresses := append([]string(nil), model.DefaultAddresses[location]...)
	seen := make(map[string]bool, len(addresses))
	for _, a := range addresses {
		seen[strings.ToLower(a)] = true
	}

	rows, err := db.QueryContext(ctx,
		`SELECT address FROM address_book WHERE location = ? ORDER BY created_at, address`, location,
	)
	if err != nil {
		return nil, fmt.Errorf("listing addresses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("scanning address: %w", err)
		}
		if !seen[strings.ToLower(a)] {
			seen[strings.ToLower(a)] = true
			addresses = append(addresses, a)
		}
	}
	return addresses, rows.Err()
}

// AddAddress saves a custom pickup address for a location.
func AddAddress(ctx context.Context, db *sql.DB, location, address string) error {
	location = strings.TrimSpace(location)
	address = strings.TrimSpace(address)
	if location == "" || address == "" {
		return fmt.Errorf("location and address are required")
	}

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO address_book (location, address) VALUES (?, ?)`,
		location, address,
	)
	if err != nil {
		return fmt.Errorf("saving address: %w", err)
	}
	return nil
}
