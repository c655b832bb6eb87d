package infra

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func OpenDB(dbURL string) (*sqlx.DB, error) {
	return sqlx.Open("postgres", dbURL)
}

func PingDB(db *sqlx.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

// Reset empties every table the event service owns or reads.
func Reset(db *sqlx.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err := db.ExecContext(ctx, `
TRUNCATE TABLE compilation_events, compilations, comments, requests, event_outbox, events, categories, users RESTART IDENTITY CASCADE`)
	return err
}

// SeedRefs inserts users 1..3 and categories 1..2.
func SeedRefs(db *sqlx.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, `
INSERT INTO users (id, name, email) VALUES
  (1, 'Initiator', 'initiator@example.com'),
  (2, 'Participant', 'participant@example.com'),
  (3, 'Stranger', 'stranger@example.com')`); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx, `INSERT INTO categories (id, name) VALUES (1, 'Concerts'), (2, 'Talks')`)
	return err
}

// Confirm stores a CONFIRMED participation request.
func Confirm(db *sqlx.DB, eventID, userID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err := db.ExecContext(ctx,
		`INSERT INTO requests (event_id, requester_id, status) VALUES ($1, $2, 'CONFIRMED')`,
		eventID, userID)
	return err
}

// OutboxKeys returns routing keys in insertion order.
func OutboxKeys(db *sqlx.DB) ([]string, error) {
	var keys []string
	err := db.Select(&keys, `SELECT routing_key FROM event_outbox ORDER BY id`)
	return keys, err
}
