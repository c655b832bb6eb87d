package postgres

import (
	"time"

	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
)

type eventRow struct {
	ID                int64      `db:"id"`
	Annotation        string     `db:"annotation"`
	Description       string     `db:"description"`
	Title             string     `db:"title"`
	CategoryID        int64      `db:"category_id"`
	InitiatorID       int64      `db:"initiator_id"`
	Lat               float64    `db:"lat"`
	Lon               float64    `db:"lon"`
	EventDate         time.Time  `db:"event_date"`
	CreatedOn         time.Time  `db:"created_on"`
	PublishedOn       *time.Time `db:"published_on"`
	Paid              bool       `db:"paid"`
	ParticipantLimit  int        `db:"participant_limit"`
	RequestModeration bool       `db:"request_moderation"`
	State             string     `db:"state"`
}

func toEventRow(e *domain.Event) eventRow {
	return eventRow{
		ID:                e.ID,
		Annotation:        e.Annotation,
		Description:       e.Description,
		Title:             e.Title,
		CategoryID:        e.CategoryID,
		InitiatorID:       e.InitiatorID,
		Lat:               e.Location.Lat,
		Lon:               e.Location.Lon,
		EventDate:         e.EventDate.UTC(),
		CreatedOn:         e.CreatedOn.UTC(),
		PublishedOn:       e.PublishedOn,
		Paid:              e.Paid,
		ParticipantLimit:  e.ParticipantLimit,
		RequestModeration: e.RequestModeration,
		State:             string(e.State),
	}
}

func (r eventRow) toDomain() (*domain.Event, error) {
	st := domain.EventState(r.State)
	if !st.Valid() {
		return nil, domain.ErrConflict("invalid state in db")
	}
	var published *time.Time
	if r.PublishedOn != nil {
		t := r.PublishedOn.UTC()
		published = &t
	}
	return &domain.Event{
		ID:                r.ID,
		Annotation:        r.Annotation,
		Description:       r.Description,
		Title:             r.Title,
		CategoryID:        r.CategoryID,
		InitiatorID:       r.InitiatorID,
		Location:          domain.Location{Lat: r.Lat, Lon: r.Lon},
		EventDate:         r.EventDate.UTC(),
		CreatedOn:         r.CreatedOn.UTC(),
		PublishedOn:       published,
		Paid:              r.Paid,
		ParticipantLimit:  r.ParticipantLimit,
		RequestModeration: r.RequestModeration,
		State:             st,
	}, nil
}

type categoryRow struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type userRow struct {
	ID    int64  `db:"id"`
	Name  string `db:"name"`
	Email string `db:"email"`
}

type commentRow struct {
	ID         int64     `db:"id"`
	Text       string    `db:"text"`
	EventID    int64     `db:"event_id"`
	AuthorID   int64     `db:"author_id"`
	Created    time.Time `db:"created"`
	LastUpdate time.Time `db:"last_update"`
}

func (r commentRow) toDomain() *domain.Comment {
	return &domain.Comment{
		ID:         r.ID,
		Text:       r.Text,
		EventID:    r.EventID,
		AuthorID:   r.AuthorID,
		Created:    r.Created.UTC(),
		LastUpdate: r.LastUpdate.UTC(),
	}
}
