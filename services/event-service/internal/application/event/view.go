package event

import (
	"context"
	"fmt"
	"slices"

	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
)

// EventView is an event with its references resolved and its derived numbers merged in.
type EventView struct {
	Event             *domain.Event
	Category          domain.Category
	Initiator         domain.User
	ConfirmedRequests int64
	Views             int64
	// Partial marks Views as unreliable because the stats service was unavailable.
	Partial bool
}

// Listing is an ordered page of views.
type Listing struct {
	Items   []EventView
	Partial bool
}

// assemble enriches events and resolves their category and initiator, keeping input order.
func (s *Service) assemble(ctx context.Context, events []*domain.Event) (Listing, error) {
	if len(events) == 0 {
		return Listing{Items: []EventView{}}, nil
	}

	en, err := s.enricher.Enrich(ctx, events)
	if err != nil {
		return Listing{}, err
	}

	catIDs := make([]int64, 0, len(events))
	userIDs := make([]int64, 0, len(events))
	for _, e := range events {
		catIDs = append(catIDs, e.CategoryID)
		userIDs = append(userIDs, e.InitiatorID)
	}
	slices.Sort(catIDs)
	slices.Sort(userIDs)

	cats, err := s.categories.GetByIDs(ctx, slices.Compact(catIDs))
	if err != nil {
		return Listing{}, fmt.Errorf("resolve categories: %w", err)
	}
	users, err := s.users.GetByIDs(ctx, slices.Compact(userIDs))
	if err != nil {
		return Listing{}, fmt.Errorf("resolve initiators: %w", err)
	}

	out := Listing{Items: make([]EventView, 0, len(events)), Partial: en.Partial}
	for _, e := range events {
		out.Items = append(out.Items, EventView{
			Event:             e,
			Category:          cats[e.CategoryID],
			Initiator:         users[e.InitiatorID],
			ConfirmedRequests: en.Confirmed[e.ID],
			Views:             en.Views[e.ID],
			Partial:           en.Partial,
		})
	}
	return out, nil
}

func (s *Service) view(ctx context.Context, e *domain.Event) (*EventView, error) {
	l, err := s.assemble(ctx, []*domain.Event{e})
	if err != nil {
		return nil, err
	}
	return &l.Items[0], nil
}
