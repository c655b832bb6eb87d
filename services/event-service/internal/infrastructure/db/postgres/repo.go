package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/baechuer/explore-with-me/services/event-service/internal/application/event"
	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
)

type Repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Create(ctx context.Context, e *domain.Event) error {
	rows, err := r.db.NamedQueryContext(ctx, insertEventSQL, toEventRow(e))
	if err != nil {
		return mapErr(err, "insert event")
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return mapErr(err, "insert event")
		}
		return fmt.Errorf("insert event: no id returned")
	}
	return rows.Scan(&e.ID)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	var row eventRow
	if err := r.db.GetContext(ctx, &row, getEventSQL, id); err != nil {
		return nil, mapErr(err, fmt.Sprintf("event with id=%d", id))
	}
	return row.toDomain()
}

// List runs the compiled predicate as a single query.
func (r *Repo) List(ctx context.Context, q event.ListQuery) ([]*domain.Event, error) {
	query, args, err := buildListQuery(q)
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, mapErr(err, "list events")
	}

	out := make([]*domain.Event, 0, len(rows))
	for _, row := range rows {
		e, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
