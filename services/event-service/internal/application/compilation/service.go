// Package compilation manages admin-curated event collections. Events inside
// a compilation are rendered through the same enrichment as event listings.
package compilation

import (
	"context"

	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/explore-with-me/services/event-service/internal/application/event"
	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
)

type Repo interface {
	Create(ctx context.Context, c *domain.Compilation) error
	GetByID(ctx context.Context, id int64) (*domain.Compilation, error)
	List(ctx context.Context, pinned *bool, page domain.Page) ([]*domain.Compilation, error)
	Update(ctx context.Context, c *domain.Compilation) error
	Delete(ctx context.Context, id int64) error
}

// EventLookup resolves event ids to enriched views in one batch.
type EventLookup interface {
	Lookup(ctx context.Context, ids []int64) (event.Listing, error)
}

// View is a compilation with its events in id order.
type View struct {
	Compilation *domain.Compilation
	Events      []event.EventView
	Partial     bool
}

type Service struct {
	repo   Repo
	events EventLookup
}

func New(repo Repo, events EventLookup) *Service {
	return &Service{repo: repo, events: events}
}

// Create checks every referenced event exists before anything is stored.
func (s *Service) Create(ctx context.Context, title string, pinned bool, eventIDs []int64) (*View, error) {
	c, err := domain.NewCompilation(title, pinned, eventIDs)
	if err != nil {
		return nil, err
	}
	l, err := s.events.Lookup(ctx, c.EventIDs)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	zlog.Info().Int64("compilation_id", c.ID).Int("events", len(c.EventIDs)).Msg("compilation created")
	return &View{Compilation: c, Events: l.Items, Partial: l.Partial}, nil
}

func (s *Service) Update(ctx context.Context, id int64, d domain.CompilationDelta) (*View, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Apply(d); err != nil {
		return nil, err
	}
	l, err := s.events.Lookup(ctx, c.EventIDs)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return &View{Compilation: c, Events: l.Items, Partial: l.Partial}, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*View, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, partial, err := s.render(ctx, []*domain.Compilation{c})
	if err != nil {
		return nil, err
	}
	v := views[0]
	v.Partial = partial
	return &v, nil
}

// List returns a page of compilations, filtered by pinned when set. The
// events of the whole page are enriched together.
func (s *Service) List(ctx context.Context, pinned *bool, page domain.Page) ([]View, bool, error) {
	cs, err := s.repo.List(ctx, pinned, page)
	if err != nil {
		return nil, false, err
	}
	return s.render(ctx, cs)
}

func (s *Service) render(ctx context.Context, cs []*domain.Compilation) ([]View, bool, error) {
	var ids []int64
	for _, c := range cs {
		ids = append(ids, c.EventIDs...)
	}
	l, err := s.events.Lookup(ctx, ids)
	if err != nil {
		return nil, false, err
	}
	byID := make(map[int64]event.EventView, len(l.Items))
	for _, v := range l.Items {
		byID[v.Event.ID] = v
	}

	out := make([]View, 0, len(cs))
	for _, c := range cs {
		v := View{Compilation: c, Events: make([]event.EventView, 0, len(c.EventIDs)), Partial: l.Partial}
		for _, id := range c.EventIDs {
			if ev, ok := byID[id]; ok {
				v.Events = append(v.Events, ev)
			}
		}
		out = append(out, v)
	}
	return out, l.Partial, nil
}
