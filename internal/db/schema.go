package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    first_name    TEXT,
    last_name     TEXT,
    shop          TEXT,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS warehouses (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL REFERENCES users(id),
    name       TEXT NOT NULL,
    is_default INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS items (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL REFERENCES users(id),
    name       TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS item_versions (
    id                  TEXT PRIMARY KEY,
    item_id             TEXT NOT NULL REFERENCES items(id),
    version             INTEGER NOT NULL,
    unit_price          TEXT NOT NULL DEFAULT '0',
    service_cost        TEXT NOT NULL DEFAULT '0',
    tax_cost            TEXT NOT NULL DEFAULT '0',
    deductible_tax_cost TEXT NOT NULL DEFAULT '0',
    volume              TEXT NOT NULL DEFAULT '0',
    weight              TEXT NOT NULL DEFAULT '0',
    currency            TEXT NOT NULL DEFAULT 'USD',
    supplier            TEXT,
    note                TEXT,
    created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (item_id, version)
);

CREATE TABLE IF NOT EXISTS inventory_items (
    id              TEXT PRIMARY KEY,
    item_id         TEXT NOT NULL REFERENCES items(id),
    item_version_id TEXT NOT NULL REFERENCES item_versions(id),
    warehouse_id    TEXT NOT NULL REFERENCES warehouses(id),
    quantity        INTEGER NOT NULL CHECK (quantity >= 0),
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (item_id, item_version_id, warehouse_id)
);

CREATE TABLE IF NOT EXISTS inventory_history (
    id                TEXT PRIMARY KEY,
    inventory_item_id TEXT NOT NULL REFERENCES inventory_items(id),
    quantity          INTEGER NOT NULL CHECK (quantity >= 0),
    action            TEXT NOT NULL CHECK (action IN ('ARRIVED', 'MANUAL_ADD', 'MANUAL_DEDUCT', 'WAREHOUSE_MOVE')),
    from_warehouse_id TEXT REFERENCES warehouses(id),
    to_warehouse_id   TEXT REFERENCES warehouses(id),
    created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_inventory_history_item
    ON inventory_history(inventory_item_id);

CREATE TABLE IF NOT EXISTS sessions (
    id           TEXT PRIMARY KEY,
    shop         TEXT NOT NULL,
    state        TEXT,
    access_token TEXT,
    scope        TEXT,
    expires      DATETIME,
    user_id      TEXT NOT NULL REFERENCES users(id),
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
