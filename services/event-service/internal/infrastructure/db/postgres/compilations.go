package postgres

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
)

const (
	tableCompilations = "compilations"
	colPinned         = "pinned"
)

type compilationRow struct {
	ID     int64  `db:"id"`
	Title  string `db:"title"`
	Pinned bool   `db:"pinned"`
}

type CompilationRepo struct {
	db *sqlx.DB
}

func NewCompilationRepo(db *sqlx.DB) *CompilationRepo { return &CompilationRepo{db: db} }

// Create stores the compilation and its event links in one transaction.
func (r *CompilationRepo) Create(ctx context.Context, c *domain.Compilation) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &c.ID, insertCompilationSQL, c.Title, c.Pinned); err != nil {
			return mapErr(err, "insert compilation")
		}
		return linkEvents(ctx, tx, c)
	})
}

func (r *CompilationRepo) GetByID(ctx context.Context, id int64) (*domain.Compilation, error) {
	var row compilationRow
	if err := r.db.GetContext(ctx, &row, getCompilationSQL, id); err != nil {
		return nil, mapErr(err, fmt.Sprintf("compilation with id=%d", id))
	}
	out, err := r.withEvents(ctx, []compilationRow{row})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// List pages compilations by id, optionally filtered by pinned. Links for the
// whole page are read with one extra query.
func (r *CompilationRepo) List(ctx context.Context, pinned *bool, page domain.Page) ([]*domain.Compilation, error) {
	query, args, err := buildCompilationListQuery(pinned, page)
	if err != nil {
		return nil, fmt.Errorf("build compilation query: %w", err)
	}
	var rows []compilationRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, mapErr(err, "list compilations")
	}
	return r.withEvents(ctx, rows)
}

// Update rewrites title and pinned and replaces the event links.
func (r *CompilationRepo) Update(ctx context.Context, c *domain.Compilation) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, updateCompilationSQL, c.ID, c.Title, c.Pinned)
		if err != nil {
			return mapErr(err, "update compilation")
		}
		if err := requireAffected(res, fmt.Sprintf("compilation with id=%d", c.ID)); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, deleteCompilationEventsSQL, c.ID); err != nil {
			return mapErr(err, "unlink compilation events")
		}
		return linkEvents(ctx, tx, c)
	})
}

func (r *CompilationRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteCompilationSQL, id)
	if err != nil {
		return mapErr(err, "delete compilation")
	}
	return requireAffected(res, fmt.Sprintf("compilation with id=%d", id))
}

func linkEvents(ctx context.Context, tx *sqlx.Tx, c *domain.Compilation) error {
	if len(c.EventIDs) == 0 {
		return nil
	}
	if _, err := tx.ExecContext(ctx, insertCompilationEventsSQL, c.ID, pq.Array(c.EventIDs)); err != nil {
		return mapErr(err, "link compilation events")
	}
	return nil
}

func (r *CompilationRepo) withEvents(ctx context.Context, rows []compilationRow) ([]*domain.Compilation, error) {
	out := make([]*domain.Compilation, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	byID := make(map[int64]*domain.Compilation, len(rows))
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		c := &domain.Compilation{ID: row.ID, Title: row.Title, Pinned: row.Pinned, EventIDs: []int64{}}
		byID[row.ID] = c
		ids = append(ids, row.ID)
		out = append(out, c)
	}

	var links []struct {
		CompilationID int64 `db:"compilation_id"`
		EventID       int64 `db:"event_id"`
	}
	if err := r.db.SelectContext(ctx, &links, listCompilationEventsSQL, pq.Array(ids)); err != nil {
		return nil, mapErr(err, "list compilation events")
	}
	for _, l := range links {
		if c, ok := byID[l.CompilationID]; ok {
			c.EventIDs = append(c.EventIDs, l.EventID)
		}
	}
	return out, nil
}

func buildCompilationListQuery(pinned *bool, page domain.Page) (string, []any, error) {
	ds := goqu.Dialect(dialectPostgres).
		From(tableCompilations).
		Select(colID, "title", colPinned).
		Order(goqu.C(colID).Asc()).
		Prepared(true)
	if pinned != nil {
		ds = ds.Where(goqu.C(colPinned).Eq(*pinned))
	}
	if page.Size > 0 {
		ds = ds.Limit(uint(page.Size))
	}
	if page.From > 0 {
		ds = ds.Offset(uint(page.From))
	}
	return ds.ToSQL()
}
