// internal/store/schema.go
package store

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS messages (
	id         BIGSERIAL PRIMARY KEY,
	user_id    TEXT        NOT NULL,
	role       TEXT        NOT NULL,
	content    TEXT        NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);
CREATE INDEX IF NOT EXISTS idx_messages_user_created ON messages (user_id, created_at);

CREATE TABLE IF NOT EXISTS warranties (
	id              BIGSERIAL PRIMARY KEY,
	duration_months INTEGER NOT NULL CHECK (duration_months > 0),
	terms           TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
	id          TEXT PRIMARY KEY,
	seq         BIGSERIAL,
	name        TEXT NOT NULL,
	description TEXT NOT NULL,
	pros        TEXT,
	cons        TEXT,
	warranty_id BIGINT REFERENCES warranties (id)
);

CREATE TABLE IF NOT EXISTS orders (
	id         BIGSERIAL PRIMARY KEY,
	order_id   TEXT        NOT NULL UNIQUE,
	user_id    TEXT        NOT NULL,
	status     TEXT        NOT NULL,
	tracking   TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp(),
	product_id TEXT        NOT NULL REFERENCES products (id)
);
CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders (user_id, created_at);
`

// EnsureSchema creates the tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
