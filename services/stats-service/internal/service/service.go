package service

import (
	"context"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/baechuer/explore-with-me/services/stats-service/internal/domain"
)

var hitsRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "stats_service",
		Name:      "hits_recorded_total",
		Help:      "Hits stored, by reporting app",
	},
	[]string{"app"},
)

type Repository interface {
	InsertHit(ctx context.Context, h *domain.Hit) error
	Stats(ctx context.Context, q domain.StatsQuery) ([]domain.ViewStats, error)
}

type Service struct {
	repo Repository
}

func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// RecordHit stores h and assigns h.ID.
func (s *Service) RecordHit(ctx context.Context, h domain.Hit) (*domain.Hit, error) {
	h.App = strings.TrimSpace(h.App)
	h.URI = strings.TrimSpace(h.URI)
	h.IP = strings.TrimSpace(h.IP)

	fields := map[string]string{}
	if h.App == "" {
		fields["app"] = "must not be blank"
	}
	if h.URI == "" {
		fields["uri"] = "must not be blank"
	}
	if h.IP == "" {
		fields["ip"] = "must not be blank"
	}
	if h.Timestamp.IsZero() {
		fields["timestamp"] = "is required"
	}
	if len(fields) > 0 {
		return nil, domain.NewValidationError("invalid hit", fields)
	}

	h.Timestamp = h.Timestamp.UTC()
	if err := s.repo.InsertHit(ctx, &h); err != nil {
		return nil, err
	}
	hitsRecordedTotal.WithLabelValues(h.App).Inc()
	return &h, nil
}

// Stats aggregates hits per (app, uri), most viewed first.
func (s *Service) Stats(ctx context.Context, q domain.StatsQuery) ([]domain.ViewStats, error) {
	if q.Start.After(q.End) {
		return nil, domain.NewValidationError("start must not be after end", map[string]string{
			"start": "must not be after end",
		})
	}

	uris := q.URIs[:0:0]
	for _, u := range q.URIs {
		if u = strings.TrimSpace(u); u != "" {
			uris = append(uris, u)
		}
	}
	q.URIs = uris
	q.Start, q.End = q.Start.UTC(), q.End.UTC()

	return s.repo.Stats(ctx, q)
}
