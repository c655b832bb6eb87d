package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baechuer/explore-with-me/services/stats-service/internal/domain"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const insertHitSQL = `
INSERT INTO hits (app, uri, ip, created)
VALUES ($1, $2, $3, $4)
RETURNING id
`

func (r *Repository) InsertHit(ctx context.Context, h *domain.Hit) error {
	if err := r.pool.QueryRow(ctx, insertHitSQL, h.App, h.URI, h.IP, h.Timestamp).Scan(&h.ID); err != nil {
		return fmt.Errorf("insert hit: %w", err)
	}
	return nil
}

func (r *Repository) Stats(ctx context.Context, q domain.StatsQuery) ([]domain.ViewStats, error) {
	sql, args := buildStatsQuery(q)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ViewStats, error) {
		var v domain.ViewStats
		err := row.Scan(&v.App, &v.URI, &v.Hits)
		return v, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan stats: %w", err)
	}
	return out, nil
}

// buildStatsQuery bounds created inclusively on both ends. The uri filter is
// only added when uris were given.
func buildStatsQuery(q domain.StatsQuery) (string, []any) {
	count := "COUNT(ip)"
	if q.Unique {
		count = "COUNT(DISTINCT ip)"
	}

	sql := `SELECT app, uri, ` + count + ` AS hits
FROM hits
WHERE created BETWEEN $1 AND $2`
	args := []any{q.Start, q.End}

	if len(q.URIs) > 0 {
		sql += `
  AND uri = ANY($3)`
		args = append(args, q.URIs)
	}

	sql += `
GROUP BY app, uri
ORDER BY hits DESC, app ASC, uri ASC`
	return sql, args
}
