package postgres

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/baechuer/explore-with-me/services/stats-service/internal/domain"
)

func TestBuildStatsQuery(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	t.Run("all_uris", func(t *testing.T) {
		sql, args := buildStatsQuery(domain.StatsQuery{Start: start, End: end})
		assert.Contains(t, sql, "COUNT(ip)")
		assert.NotContains(t, sql, "ANY(")
		assert.Equal(t, []any{start, end}, args)
	})

	t.Run("unique_with_uris", func(t *testing.T) {
		sql, args := buildStatsQuery(domain.StatsQuery{Start: start, End: end, URIs: []string{"/events/1"}, Unique: true})
		assert.Contains(t, sql, "COUNT(DISTINCT ip)")
		assert.Contains(t, sql, "uri = ANY($3)")
		assert.True(t, strings.Index(sql, "GROUP BY") < strings.Index(sql, "ORDER BY hits DESC"))
		assert.Equal(t, []any{start, end, []string{"/events/1"}}, args)
	})
}

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()

	pgC, err := tcpostgres.Run(ctx, "postgres:17",
		tcpostgres.WithDatabase("stats"),
		tcpostgres.WithUsername("stats"),
		tcpostgres.WithPassword("stats"),
		tcpostgres.WithInitScripts("../../../migrations/001_init.sql"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestRepository_Integration(t *testing.T) {
	pool := startPostgres(t)
	repo := New(pool)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	record := func(app, uri, ip string, at time.Time) {
		h := &domain.Hit{App: app, URI: uri, IP: ip, Timestamp: at}
		require.NoError(t, repo.InsertHit(ctx, h))
		require.NotZero(t, h.ID)
	}
	record("ewm-main-service", "/events/1", "10.0.0.1", base)
	record("ewm-main-service", "/events/1", "10.0.0.1", base.Add(time.Minute))
	record("ewm-main-service", "/events/1", "10.0.0.2", base.Add(2*time.Minute))
	record("ewm-main-service", "/events/2", "10.0.0.1", base.Add(3*time.Minute))
	record("ewm-main-service", "/events", "10.0.0.3", base.Add(4*time.Minute))
	record("ewm-main-service", "/events/1", "10.0.0.9", base.Add(48*time.Hour)) // out of range

	window := domain.StatsQuery{Start: base, End: base.Add(time.Hour)}

	t.Run("all_hits_ordered", func(t *testing.T) {
		got, err := repo.Stats(ctx, window)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, domain.ViewStats{App: "ewm-main-service", URI: "/events/1", Hits: 3}, got[0])
	})

	t.Run("unique_ips", func(t *testing.T) {
		q := window
		q.Unique = true
		q.URIs = []string{"/events/1", "/events/2"}
		got, err := repo.Stats(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, []domain.ViewStats{
			{App: "ewm-main-service", URI: "/events/1", Hits: 2},
			{App: "ewm-main-service", URI: "/events/2", Hits: 1},
		}, got)
	})

	t.Run("bounds_are_inclusive", func(t *testing.T) {
		got, err := repo.Stats(ctx, domain.StatsQuery{Start: base, End: base, URIs: []string{"/events/1"}})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(1), got[0].Hits)
	})

	t.Run("unknown_uri_is_empty", func(t *testing.T) {
		q := window
		q.URIs = []string{"/events/404"}
		got, err := repo.Stats(ctx, q)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
