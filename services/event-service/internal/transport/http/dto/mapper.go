package dto

import (
	"github.com/baechuer/explore-with-me/services/event-service/internal/application/compilation"
	"github.com/baechuer/explore-with-me/services/event-service/internal/application/event"
	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
)

func (d NewEventDto) ToDraft() domain.Draft {
	draft := domain.Draft{
		Annotation:        d.Annotation,
		Description:       d.Description,
		Title:             d.Title,
		CategoryID:        d.Category,
		Paid:              d.Paid,
		RequestModeration: true,
	}
	if d.EventDate != nil {
		draft.EventDate = d.EventDate.Time
	}
	if d.Location != nil {
		draft.Location = d.Location.toDomain()
	}
	if d.ParticipantLimit != nil {
		draft.ParticipantLimit = *d.ParticipantLimit
	}
	if d.RequestModeration != nil {
		draft.RequestModeration = *d.RequestModeration
	}
	return draft
}

func (l *LocationDto) toDomain() domain.Location {
	var out domain.Location
	if l.Lat != nil {
		out.Lat = *l.Lat
	}
	if l.Lon != nil {
		out.Lon = *l.Lon
	}
	return out
}

func (f UpdateEventFields) delta() domain.EventDelta {
	d := domain.EventDelta{
		Annotation:        f.Annotation,
		Description:       f.Description,
		Title:             f.Title,
		CategoryID:        f.Category,
		Paid:              f.Paid,
		ParticipantLimit:  f.ParticipantLimit,
		RequestModeration: f.RequestModeration,
	}
	if f.EventDate != nil {
		t := f.EventDate.Time
		d.EventDate = &t
	}
	if f.Location != nil {
		d.Location = &domain.LocationDelta{Lat: f.Location.Lat, Lon: f.Location.Lon}
	}
	return d
}

// ToDelta returns the field changes and the parsed state action, if any.
func (r UpdateEventUserRequest) ToDelta() (domain.EventDelta, *domain.UserStateAction, error) {
	if r.StateAction == nil {
		return r.delta(), nil, nil
	}
	a, err := domain.ParseUserStateAction(*r.StateAction)
	if err != nil {
		return domain.EventDelta{}, nil, err
	}
	return r.delta(), &a, nil
}

func (r UpdateEventAdminRequest) ToDelta() (domain.EventDelta, *domain.AdminStateAction, error) {
	if r.StateAction == nil {
		return r.delta(), nil, nil
	}
	a, err := domain.ParseAdminStateAction(*r.StateAction)
	if err != nil {
		return domain.EventDelta{}, nil, err
	}
	return r.delta(), &a, nil
}

func ToEventFull(v *event.EventView) EventFullDto {
	e := v.Event
	return EventFullDto{
		ID:                e.ID,
		Annotation:        e.Annotation,
		Category:          CategoryDto{ID: v.Category.ID, Name: v.Category.Name},
		ConfirmedRequests: v.ConfirmedRequests,
		CreatedOn:         NewTime(e.CreatedOn),
		Description:       e.Description,
		EventDate:         NewTime(e.EventDate),
		Initiator:         UserShortDto{ID: v.Initiator.ID, Name: v.Initiator.Name},
		Location:          Location{Lat: e.Location.Lat, Lon: e.Location.Lon},
		Paid:              e.Paid,
		ParticipantLimit:  e.ParticipantLimit,
		PublishedOn:       NewTimePtr(e.PublishedOn),
		RequestModeration: e.RequestModeration,
		State:             string(e.State),
		Title:             e.Title,
		Views:             v.Views,
	}
}

func ToEventShort(v *event.EventView) EventShortDto {
	e := v.Event
	return EventShortDto{
		ID:                e.ID,
		Annotation:        e.Annotation,
		Category:          CategoryDto{ID: v.Category.ID, Name: v.Category.Name},
		ConfirmedRequests: v.ConfirmedRequests,
		EventDate:         NewTime(e.EventDate),
		Initiator:         UserShortDto{ID: v.Initiator.ID, Name: v.Initiator.Name},
		Paid:              e.Paid,
		Title:             e.Title,
		Views:             v.Views,
	}
}

func ToEventFullList(l event.Listing) []EventFullDto {
	out := make([]EventFullDto, 0, len(l.Items))
	for i := range l.Items {
		out = append(out, ToEventFull(&l.Items[i]))
	}
	return out
}

func ToEventShortList(l event.Listing) []EventShortDto {
	out := make([]EventShortDto, 0, len(l.Items))
	for i := range l.Items {
		out = append(out, ToEventShort(&l.Items[i]))
	}
	return out
}

func ToComment(c *domain.Comment) CommentDto {
	return CommentDto{
		ID:         c.ID,
		Text:       c.Text,
		EventID:    c.EventID,
		AuthorID:   c.AuthorID,
		Created:    NewTime(c.Created),
		LastUpdate: NewTime(c.LastUpdate),
	}
}

func ToComments(cs []*domain.Comment) []CommentDto {
	out := make([]CommentDto, 0, len(cs))
	for _, c := range cs {
		out = append(out, ToComment(c))
	}
	return out
}

func (d UpdateCompilationRequest) ToDelta() domain.CompilationDelta {
	return domain.CompilationDelta{Title: d.Title, Pinned: d.Pinned, EventIDs: d.Events}
}

func ToCompilation(v *compilation.View) CompilationDto {
	events := make([]EventShortDto, 0, len(v.Events))
	for i := range v.Events {
		events = append(events, ToEventShort(&v.Events[i]))
	}
	return CompilationDto{
		ID:     v.Compilation.ID,
		Events: events,
		Pinned: v.Compilation.Pinned,
		Title:  v.Compilation.Title,
	}
}

func ToCompilations(vs []compilation.View) []CompilationDto {
	out := make([]CompilationDto, 0, len(vs))
	for i := range vs {
		out = append(out, ToCompilation(&vs[i]))
	}
	return out
}
