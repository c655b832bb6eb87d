package event

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
)

func (s *Service) ListForOwner(ctx context.Context, actorID int64, page domain.Page) (Listing, error) {
	if _, err := s.users.GetByID(ctx, actorID); err != nil {
		return Listing{}, err
	}
	events, err := s.repo.List(ctx, ListQuery{
		Where: Where(InitiatorIn{actorID}),
		Page:  page,
	})
	if err != nil {
		return Listing{}, err
	}
	return s.assemble(ctx, events)
}

func (s *Service) ListForAdmin(ctx context.Context, f AdminFilter) (Listing, error) {
	pred, err := f.Predicate()
	if err != nil {
		return Listing{}, err
	}
	events, err := s.repo.List(ctx, ListQuery{Where: pred, Page: f.Page})
	if err != nil {
		return Listing{}, err
	}
	return s.assemble(ctx, events)
}

// Lookup returns the events with the given ids in any state, enriched in one
// batch and ordered by id. Unknown ids are reported as not found.
func (s *Service) Lookup(ctx context.Context, ids []int64) (Listing, error) {
	if len(ids) == 0 {
		return Listing{Items: []EventView{}}, nil
	}
	want := slices.Clone(ids)
	slices.Sort(want)
	want = slices.Compact(want)

	events, err := s.repo.List(ctx, ListQuery{
		Where: Where(IDIn(want)),
		Page:  domain.Page{Size: len(want)},
	})
	if err != nil {
		return Listing{}, err
	}
	if len(events) != len(want) {
		found := make(map[int64]bool, len(events))
		for _, e := range events {
			found[e.ID] = true
		}
		for _, id := range want {
			if !found[id] {
				return Listing{}, domain.ErrNotFound(fmt.Sprintf("event with id=%d was not found", id))
			}
		}
	}
	return s.assemble(ctx, events)
}

// ListPublic runs the public search. The availability filter and the sort
// both need enriched numbers, so they run after enrichment.
func (s *Service) ListPublic(ctx context.Context, f PublicFilter) (Listing, error) {
	pred, err := f.Predicate(s.clock.Now().UTC())
	if err != nil {
		return Listing{}, err
	}
	events, err := s.repo.List(ctx, ListQuery{Where: pred, OrderBy: f.order(), Page: f.Page})
	if err != nil {
		return Listing{}, err
	}

	l, err := s.assemble(ctx, events)
	if err != nil {
		return Listing{}, err
	}

	if f.OnlyAvailable {
		kept := l.Items[:0]
		for _, v := range l.Items {
			if v.Event.HasFreeSlots(v.ConfirmedRequests) {
				kept = append(kept, v)
			}
		}
		l.Items = kept
	}

	switch f.Sort {
	case SortEventDate:
		sort.SliceStable(l.Items, func(i, j int) bool {
			return l.Items[i].Event.EventDate.Before(l.Items[j].Event.EventDate)
		})
	case SortViews:
		sort.SliceStable(l.Items, func(i, j int) bool {
			return l.Items[i].Views < l.Items[j].Views
		})
	}
	return l, nil
}
