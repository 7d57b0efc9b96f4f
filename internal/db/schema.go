package db

import (
	"database/sql"
	"fmt"
)

// schema is the local client state: session slots, the last browsed item list
// and the saved pickup addresses.
const schema = `
CREATE TABLE IF NOT EXISTS local_state (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS item_cache (
    id         TEXT PRIMARY KEY,
    payload    TEXT NOT NULL,
    status     TEXT NOT NULL CHECK (status IN ('AVAILABLE', 'CLAIMED')),
    position   INTEGER NOT NULL DEFAULT 0,
    fetched_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS address_book (
    location   TEXT NOT NULL,
    address    TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (location, address)
);
`

// EnsureSchema creates all tables and indexes if they don't already exist,
// then applies migrations.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return Migrate(db)
}
