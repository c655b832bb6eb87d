package event

import (
	"context"
	"fmt"

	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
)

// GetPublic returns a published event. Any other state reads as not found.
func (s *Service) GetPublic(ctx context.Context, id int64) (*EventView, error) {
	key := cacheKeyEventDetails(id)

	gen, cacheable := int64(0), false
	if s.cache != nil {
		var cached domain.Event
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			zlog.Warn().Err(err).Str("key", key).Msg("cache get failed")
		} else if found && cached.IsPublished() {
			zlog.Debug().Str("key", key).Msg("cache hit")
			return s.view(ctx, &cached)
		}

		// read before the row so an edit committed in between is detected
		if gen, err = s.cache.Generation(ctx, key); err != nil {
			zlog.Warn().Err(err).Str("key", key).Msg("cache generation failed")
		} else {
			cacheable = true
		}
	}

	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.IsPublished() {
		return nil, domain.ErrNotFound(fmt.Sprintf("event with id=%d was not found", id))
	}

	if cacheable {
		stored, err := s.cache.SetIfGeneration(ctx, key, gen, e, s.ttlDetails)
		switch {
		case err != nil:
			zlog.Warn().Err(err).Str("key", key).Msg("cache set failed")
		case !stored:
			zlog.Debug().Str("key", key).Int64("generation", gen).Msg("cache fill skipped, key invalidated during read")
		}
	}

	return s.view(ctx, e)
}

// GetForOwner returns the event in any state to its initiator.
func (s *Service) GetForOwner(ctx context.Context, actorID, id int64) (*EventView, error) {
	// No caching for the owner view (needs strict consistency)
	if _, err := s.users.GetByID(ctx, actorID); err != nil {
		return nil, err
	}
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.InitiatorID != actorID {
		return nil, domain.ErrForbidden(fmt.Sprintf("user %d is not the initiator of event %d", actorID, id))
	}
	return s.view(ctx, e)
}
