package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/baechuer/explore-with-me/services/event-service/internal/application/event"
)

var readCommitted = &sql.TxOptions{Isolation: sql.LevelReadCommitted}

// inTx runs fn inside one read-committed transaction. fn's error or panic
// rolls back; a nil return commits.
func inTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, readCommitted)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// WithTx gives fn a repo whose reads lock rows (SELECT ... FOR UPDATE) and
// whose writes, including outbox rows, land in the same transaction.
func (r *Repo) WithTx(ctx context.Context, fn func(tr event.TxEventRepo) error) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(&txRepo{tx: tx})
	})
}
