package postgres

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/explore-with-me/services/event-service/internal/application/event"
	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
)

var outboxMessagesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "event_service",
		Name:      "outbox_messages_total",
		Help:      "Outbox rows processed by the publisher worker",
	},
	[]string{"outcome"}, // sent, retry, dead
)

type txRepo struct {
	tx *sqlx.Tx
}

const insertOutboxSQL = `
INSERT INTO event_outbox (
  message_id, routing_key, body, created_at, status, next_retry_at
) VALUES ($1, $2, $3::jsonb, $4, 'pending', $4)
`

func (r *txRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Event, error) {
	var row eventRow
	if err := r.tx.GetContext(ctx, &row, selectEventForUpdateSQL, id); err != nil {
		return nil, mapErr(err, fmt.Sprintf("event with id=%d", id))
	}
	return row.toDomain()
}

func (r *txRepo) Update(ctx context.Context, e *domain.Event) error {
	if _, err := r.tx.NamedExecContext(ctx, updateEventSQL, toEventRow(e)); err != nil {
		return mapErr(err, "update event")
	}
	return nil
}

func (r *txRepo) InsertOutbox(ctx context.Context, msg event.OutboxMessage) error {
	// Store JSON as text cast to jsonb for lib/pq compatibility.
	// next_retry_at = created_at makes the row immediately eligible for polling.
	_, err := r.tx.ExecContext(ctx, insertOutboxSQL,
		msg.MessageID,
		msg.RoutingKey,
		string(msg.Body),
		msg.CreatedAt.UTC(),
	)
	return err
}

// --- outbox worker helpers (non-tx) ---

type outboxRow struct {
	ID         int64  `db:"id"`
	MessageID  string `db:"message_id"`
	RoutingKey string `db:"routing_key"`
	Body       []byte `db:"body"`
	Attempts   int    `db:"attempts"`
}

// SKIP LOCKED lets several instances poll the same table.
const selectOutboxClaimsSQL = `
SELECT id, message_id, routing_key, body, attempts
FROM event_outbox
WHERE status = 'pending'
  AND (next_retry_at IS NULL OR next_retry_at <= NOW())
ORDER BY next_retry_at ASC, created_at ASC
LIMIT $1
FOR UPDATE SKIP LOCKED
`

const updateOutboxClaimSQL = `
UPDATE event_outbox
SET next_retry_at = $2,
    status = 'processing'
WHERE id = $1
`

const markOutboxSentSQL = `
UPDATE event_outbox
SET status = 'sent',
    sent_at = $2,
    last_error = NULL
WHERE id = $1
`

const markOutboxFailedSQL = `
UPDATE event_outbox
SET status = 'pending',
    attempts = attempts + 1,
    next_retry_at = $2,
    last_error = $3
WHERE id = $1
`

const markOutboxDeadSQL = `
UPDATE event_outbox
SET status = 'dead',
    attempts = attempts + 1,
    last_error = $2
WHERE id = $1
`

const (
	maxAttempts       = 10
	outboxBatchSize   = 20
	outboxPollEvery   = 500 * time.Millisecond
	outboxReservation = 30 * time.Second
)

// StartOutboxWorker polls pending outbox rows and publishes them.
// Rows are claimed in a short transaction, published without holding locks,
// then marked sent or scheduled for retry with exponential backoff.
func (r *Repo) StartOutboxWorker(ctx context.Context, pub event.EventPublisher) {
	go func() {
		// Jitter so instances started together do not poll in lockstep
		time.Sleep(time.Duration(rand.Intn(1000)) * time.Millisecond)
		ticker := time.NewTicker(outboxPollEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := r.processOutboxBatch(ctx, pub, outboxBatchSize); err != nil {
					zlog.Warn().Err(err).Msg("outbox_batch_failed")
				}
			}
		}
	}()
}

func (r *Repo) processOutboxBatch(ctx context.Context, pub event.EventPublisher, limit int) error {
	if limit <= 0 {
		limit = 50
	}

	batch, err := r.claimOutbox(ctx, limit)
	if err != nil {
		return err
	}
	for _, item := range batch {
		r.processSingleItem(ctx, pub, item)
	}
	return nil
}

func (r *Repo) claimOutbox(ctx context.Context, limit int) ([]outboxRow, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var batch []outboxRow
	err := inTx(claimCtx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.SelectContext(claimCtx, &batch, selectOutboxClaimsSQL, limit); err != nil {
			return err
		}
		// Push next_retry_at forward so a crashed worker's claims become visible again later.
		reservation := time.Now().UTC().Add(outboxReservation)
		for _, item := range batch {
			if _, err := tx.ExecContext(claimCtx, updateOutboxClaimSQL, item.ID, reservation); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (r *Repo) processSingleItem(ctx context.Context, pub event.EventPublisher, item outboxRow) {
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := pub.PublishEvent(pubCtx, item.RoutingKey, item.MessageID, item.Body)

	resCtx, cancelRes := context.WithTimeout(ctx, 3*time.Second)
	defer cancelRes()

	if err == nil {
		outboxMessagesTotal.WithLabelValues("sent").Inc()
		if _, err := r.db.ExecContext(resCtx, markOutboxSentSQL, item.ID, time.Now().UTC()); err != nil {
			zlog.Warn().Err(err).Int64("outbox_id", item.ID).Msg("outbox_mark_sent_failed")
		}
		return
	}

	log := zlog.Warn().
		Err(err).
		Str("message_id", item.MessageID).
		Str("routing_key", item.RoutingKey).
		Int("attempts", item.Attempts)

	if item.Attempts >= maxAttempts {
		outboxMessagesTotal.WithLabelValues("dead").Inc()
		log.Msg("outbox_message_dead")
		_, _ = r.db.ExecContext(resCtx, markOutboxDeadSQL, item.ID, err.Error())
		return
	}

	outboxMessagesTotal.WithLabelValues("retry").Inc()
	log.Msg("outbox_publish_failed")
	_, _ = r.db.ExecContext(resCtx, markOutboxFailedSQL, item.ID, nextRetryAt(item.Attempts, time.Now().UTC()), err.Error())
}

// nextRetryAt is exponential backoff with up to one second of jitter.
func nextRetryAt(attempts int, now time.Time) time.Time {
	backoff := time.Duration(math.Pow(2, float64(attempts))) * time.Second
	backoff += time.Duration(rand.Intn(1000)) * time.Millisecond
	return now.Add(backoff)
}
