package event

import (
	"context"
	"fmt"
	"time"

	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
)

const defaultStatsTimeout = 800 * time.Millisecond

// EventURI is the path the statistics service counts views under.
func EventURI(id int64) string {
	return fmt.Sprintf("/events/%d", id)
}

// Enrichment holds the externally computed numbers for a batch of events.
type Enrichment struct {
	Confirmed map[int64]int64
	Views     map[int64]int64
	// Partial is set when view counts could not be fetched and were zeroed.
	Partial bool
}

type Enricher struct {
	requests RequestRepo
	stats    StatsClient
	clock    Clock
	timeout  time.Duration
}

func NewEnricher(requests RequestRepo, stats StatsClient, clock Clock, timeout time.Duration) *Enricher {
	if timeout <= 0 {
		timeout = defaultStatsTimeout
	}
	return &Enricher{requests: requests, stats: stats, clock: clock, timeout: timeout}
}

// Enrich fetches confirmed-request counts and unique view counts for events.
// It issues at most one storage query and one stats call, in parallel.
// A stats failure degrades views to zero; a storage failure is returned.
func (en *Enricher) Enrich(ctx context.Context, events []*domain.Event) (Enrichment, error) {
	out := Enrichment{
		Confirmed: map[int64]int64{},
		Views:     map[int64]int64{},
	}
	if len(events) == 0 {
		return out, nil
	}

	ids := make([]int64, 0, len(events))
	uris := make([]string, 0, len(events))
	idByURI := make(map[string]int64, len(events))
	start := events[0].CreatedOn
	for _, e := range events {
		uri := EventURI(e.ID)
		if _, dup := idByURI[uri]; dup {
			continue
		}
		idByURI[uri] = e.ID
		ids = append(ids, e.ID)
		uris = append(uris, uri)
		if e.CreatedOn.Before(start) {
			start = e.CreatedOn
		}
	}

	var (
		counts   map[int64]int64
		stats    []ViewStats
		statsErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := en.requests.CountConfirmed(gctx, ids)
		if err != nil {
			return fmt.Errorf("count confirmed requests: %w", err)
		}
		counts = c
		return nil
	})
	g.Go(func() error {
		sctx, cancel := context.WithTimeout(gctx, en.timeout)
		defer cancel()
		stats, statsErr = en.stats.Views(sctx, ViewsQuery{
			Start:  start,
			End:    en.clock.Now().UTC(),
			URIs:   uris,
			Unique: true,
		})
		return nil
	})
	if err := g.Wait(); err != nil {
		return Enrichment{}, err
	}

	for _, id := range ids {
		out.Confirmed[id] = counts[id]
		out.Views[id] = 0
	}

	if statsErr != nil {
		zlog.Warn().
			Err(statsErr).
			Int("batch", len(ids)).
			Msg("stats_unavailable")
		out.Partial = true
		return out, nil
	}

	for _, s := range stats {
		if id, ok := idByURI[s.URI]; ok {
			out.Views[id] += s.Hits
		}
	}
	return out, nil
}
