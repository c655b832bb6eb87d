package event

import (
	"context"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
)

// UpdateAsOwner applies the initiator's partial edit and optional review action.
func (s *Service) UpdateAsOwner(ctx context.Context, actorID, eventID int64, d domain.EventDelta, action *domain.UserStateAction) (*EventView, error) {
	if _, err := s.users.GetByID(ctx, actorID); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, d.CategoryID); err != nil {
		return nil, err
	}

	return s.mutate(ctx, eventID, "user", func(ev *domain.Event, now time.Time) error {
		return ev.UpdateAsOwner(actorID, d, action, now)
	})
}

// UpdateAsAdmin applies a moderator's partial edit and optional publish/reject.
func (s *Service) UpdateAsAdmin(ctx context.Context, eventID int64, d domain.EventDelta, action *domain.AdminStateAction) (*EventView, error) {
	if err := s.checkCategory(ctx, d.CategoryID); err != nil {
		return nil, err
	}

	return s.mutate(ctx, eventID, "admin", func(ev *domain.Event, now time.Time) error {
		return ev.UpdateAsAdmin(d, action, now)
	})
}

// mutate runs apply against the row-locked event and persists the result,
// together with an outbox row when the state changed, in one transaction.
func (s *Service) mutate(ctx context.Context, eventID int64, actor string, apply func(ev *domain.Event, now time.Time) error) (*EventView, error) {
	var out *domain.Event

	err := s.repo.WithTx(ctx, func(r TxEventRepo) error {
		ev, err := r.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}

		now := s.clock.Now().UTC()
		from := ev.State
		if err := apply(ev, now); err != nil {
			return err
		}

		if err := r.Update(ctx, ev); err != nil {
			return err
		}

		msg, ok, err := stateChangedOutbox(ctx, ev, from, actor, now)
		if err != nil {
			return err
		}
		if ok {
			if err := r.InsertOutbox(ctx, msg); err != nil {
				return err
			}
			zlog.Info().
				Int64("event_id", ev.ID).
				Str("from", string(from)).
				Str("to", string(ev.State)).
				Str("actor", actor).
				Msg("event state changed")
		}

		out = ev
		return nil
	})
	if err != nil {
		return nil, err
	}

	// --- Cache Invalidation (best-effort, after commit) ---
	s.invalidate(ctx, out.ID)

	return s.view(ctx, out)
}

func (s *Service) checkCategory(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	_, err := s.categories.GetByID(ctx, *id)
	return err
}

func (s *Service) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	key := cacheKeyEventDetails(id)
	if err := s.cache.Invalidate(ctx, key); err != nil {
		zlog.Warn().Err(err).Str("key", key).Msg("cache invalidate failed")
	}
}
