package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied on boot. Statements are idempotent so repeated
// startups (and multiple replicas racing at deploy time) are safe.
//
// messages.status is the delivery lifecycle: sent -> delivered -> read.
// is_read duplicates status='read' so unread counts stay a cheap
// boolean filter; the two are always flipped together.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS messages (
		id          BIGSERIAL PRIMARY KEY,
		sender_id   TEXT NOT NULL,
		receiver_id TEXT NOT NULL,
		content     TEXT NOT NULL,
		status      TEXT NOT NULL DEFAULT 'sent',
		is_read     BOOLEAN NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT messages_no_self CHECK (sender_id <> receiver_id),
		CONSTRAINT messages_status CHECK (status IN ('sent', 'delivered', 'read'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_pair_created
		ON messages (sender_id, receiver_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_unread
		ON messages (receiver_id, sender_id) WHERE is_read = FALSE`,
}

// Migrate applies the messaging schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: migrate: %w", err)
		}
	}
	return nil
}
