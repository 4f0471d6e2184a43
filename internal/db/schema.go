package db

import (
	"database/sql"
	"fmt"
)

// Schema is a set of idempotent statements plus ordered migrations.
type Schema struct {
	Name       string
	Statements string
	// Migrations are applied in order after Statements. Each must be
	// idempotent. Append new migrations at the end.
	Migrations []string
}

// SessionSchema backs the client's durable session storage.
var SessionSchema = Schema{
	Name: "session",
	Statements: `
CREATE TABLE IF NOT EXISTS settings (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`,
}

// BackendSchema backs the development backend.
var BackendSchema = Schema{
	Name: "backend",
	Statements: `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT,
    email         TEXT,
    netid         TEXT,
    password_hash TEXT,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users(username) WHERE username IS NOT NULL;
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_netid ON users(netid) WHERE netid IS NOT NULL;

CREATE TABLE IF NOT EXISTS listings (
    id          INTEGER PRIMARY KEY,
    title       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    price_cents INTEGER NOT NULL CHECK (price_cents >= 0),
    category    TEXT NOT NULL DEFAULT 'other',
    condition   TEXT NOT NULL DEFAULT 'good',
    status      TEXT NOT NULL DEFAULT 'available' CHECK (status IN ('available', 'pending', 'sold')),
    user_id     INTEGER NOT NULL REFERENCES users(id),
    buyer_id    INTEGER REFERENCES users(id),
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS listing_images (
    listing_id INTEGER NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
    position   INTEGER NOT NULL,
    url        TEXT NOT NULL,
    PRIMARY KEY (listing_id, position)
);

CREATE TABLE IF NOT EXISTS hearted_listings (
    user_id    INTEGER NOT NULL REFERENCES users(id),
    listing_id INTEGER NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (user_id, listing_id)
);

CREATE TABLE IF NOT EXISTS purchase_requests (
    id              INTEGER PRIMARY KEY,
    listing_id      INTEGER NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
    buyer_id        INTEGER NOT NULL REFERENCES users(id),
    message         TEXT NOT NULL DEFAULT '',
    contact_info    TEXT NOT NULL DEFAULT '',
    idempotency_key TEXT,
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`,
	Migrations: []string{
		// Migration 1: a repeated request-to-buy with the same key is recorded once.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_purchase_requests_key
		     ON purchase_requests(idempotency_key) WHERE idempotency_key IS NOT NULL`,
	},
}

// EnsureSchema creates all tables and indexes of s if they don't already
// exist, then applies its migrations.
func EnsureSchema(db *sql.DB, s Schema) error {
	if _, err := db.Exec(s.Statements); err != nil {
		return fmt.Errorf("creating %s schema: %w", s.Name, err)
	}

	for i, m := range s.Migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running %s migration %d: %w", s.Name, i+1, err)
		}
	}

	return nil
}
