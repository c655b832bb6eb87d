package event

import (
	"context"

	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
)

func (s *Service) Create(ctx context.Context, actorID int64, d domain.Draft) (*EventView, error) {
	now := s.clock.Now().UTC()

	ev, err := domain.NewEvent(actorID, d, now)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	cat, err := s.categories.GetByID(ctx, d.CategoryID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, ev); err != nil {
		return nil, err
	}

	zlog.Info().
		Int64("event_id", ev.ID).
		Int64("initiator_id", actorID).
		Msg("event created")

	// A new event has no requests and no hits yet.
	return &EventView{Event: ev, Category: *cat, Initiator: *user}, nil
}
