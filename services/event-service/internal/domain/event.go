package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MinLeadTime is how far ahead of "now" an owner-set eventDate must be.
	MinLeadTime = 2 * time.Hour
	// MinAdminLeadTime is how far after createdOn an admin-set eventDate must be.
	MinAdminLeadTime = time.Hour
)

type Location struct {
	Lat float64
	Lon float64
}

type Event struct {
	ID                int64
	Annotation        string
	Description       string
	Title             string
	CategoryID        int64
	InitiatorID       int64
	Location          Location
	EventDate         time.Time
	CreatedOn         time.Time
	PublishedOn       *time.Time
	Paid              bool
	ParticipantLimit  int // 0 = unlimited
	RequestModeration bool
	State             EventState
}

// Draft is the caller-supplied part of a new event.
type Draft struct {
	Annotation        string
	Description       string
	Title             string
	CategoryID        int64
	Location          Location
	EventDate         time.Time
	Paid              bool
	ParticipantLimit  int
	RequestModeration bool
}

// LocationDelta patches one or both coordinates.
type LocationDelta struct {
	Lat *float64
	Lon *float64
}

// EventDelta carries a partial update. Nil fields are left untouched.
type EventDelta struct {
	Annotation        *string
	Description       *string
	Title             *string
	CategoryID        *int64
	Location          *LocationDelta
	EventDate         *time.Time
	Paid              *bool
	ParticipantLimit  *int
	RequestModeration *bool
}

func NewEvent(initiatorID int64, d Draft, now time.Time) (*Event, error) {
	if initiatorID <= 0 {
		return nil, ErrValidation("initiator is required")
	}
	if err := checkOwnerEventDate(d.EventDate, now); err != nil {
		return nil, err
	}

	e := &Event{
		InitiatorID:       initiatorID,
		CreatedOn:         now.UTC(),
		State:             StatePending,
		Annotation:        d.Annotation,
		Description:       d.Description,
		Title:             d.Title,
		CategoryID:        d.CategoryID,
		Location:          d.Location,
		EventDate:         d.EventDate.UTC(),
		Paid:              d.Paid,
		ParticipantLimit:  d.ParticipantLimit,
		RequestModeration: d.RequestModeration,
	}
	if err := e.validateFields(); err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateAsOwner applies an initiator's edit. Edits are blocked once the
// event is published.
func (e *Event) UpdateAsOwner(actorID int64, d EventDelta, action *UserStateAction, now time.Time) error {
	if e.InitiatorID != actorID {
		return ErrForbidden(fmt.Sprintf("user %d is not the initiator of event %d", actorID, e.ID))
	}
	if e.State == StatePublished {
		return ErrConflict("only pending or canceled events can be changed")
	}
	if d.EventDate != nil {
		if err := checkOwnerEventDate(*d.EventDate, now); err != nil {
			return err
		}
	}

	next := e.State
	if action != nil {
		s, err := e.State.Apply(*action)
		if err != nil {
			return err
		}
		next = s
	}

	updated, err := e.withDelta(d)
	if err != nil {
		return err
	}
	updated.State = next
	*e = updated
	return nil
}

// UpdateAsAdmin applies a moderator's edit and optional publish/reject.
func (e *Event) UpdateAsAdmin(d EventDelta, action *AdminStateAction, now time.Time) error {
	if d.EventDate != nil && d.EventDate.Before(e.CreatedOn.Add(MinAdminLeadTime)) {
		return ErrValidationMeta("event date too early", map[string]string{
			"eventDate": "must be at least 1 hour after the event was created",
		})
	}

	next := e.State
	if action != nil {
		s, err := e.State.Apply(*action)
		if err != nil {
			return err
		}
		next = s
	}

	updated, err := e.withDelta(d)
	if err != nil {
		return err
	}
	if next == StatePublished && e.State != StatePublished {
		t := now.UTC()
		updated.PublishedOn = &t
	}
	updated.State = next
	*e = updated
	return nil
}

func (e *Event) IsPublished() bool { return e.State == StatePublished }

// HasFreeSlots reports whether another participant fits under the limit.
func (e *Event) HasFreeSlots(confirmed int64) bool {
	return e.ParticipantLimit == 0 || confirmed < int64(e.ParticipantLimit)
}

func (e *Event) withDelta(d EventDelta) (Event, error) {
	u := *e
	if d.Annotation != nil {
		u.Annotation = *d.Annotation
	}
	if d.Description != nil {
		u.Description = *d.Description
	}
	if d.Title != nil {
		u.Title = *d.Title
	}
	if d.CategoryID != nil {
		u.CategoryID = *d.CategoryID
	}
	if d.Location != nil {
		if d.Location.Lat != nil {
			u.Location.Lat = *d.Location.Lat
		}
		if d.Location.Lon != nil {
			u.Location.Lon = *d.Location.Lon
		}
	}
	if d.EventDate != nil {
		u.EventDate = d.EventDate.UTC()
	}
	if d.Paid != nil {
		u.Paid = *d.Paid
	}
	if d.ParticipantLimit != nil {
		u.ParticipantLimit = *d.ParticipantLimit
	}
	if d.RequestModeration != nil {
		u.RequestModeration = *d.RequestModeration
	}
	if err := u.validateFields(); err != nil {
		return Event{}, err
	}
	return u, nil
}

func (e *Event) validateFields() error {
	meta := map[string]string{}
	checkLen(meta, "annotation", e.Annotation, 20, 2000)
	checkLen(meta, "description", e.Description, 20, 7000)
	checkLen(meta, "title", e.Title, 3, 120)
	if e.CategoryID <= 0 {
		meta["category"] = "is required"
	}
	if e.ParticipantLimit < 0 {
		meta["participantLimit"] = "must be >= 0 (0 means unlimited)"
	}
	if e.Location.Lat < 0 || e.Location.Lon < 0 {
		meta["location"] = "lat and lon must be >= 0"
	}
	if len(meta) > 0 {
		return ErrValidationMeta("invalid event", meta)
	}
	return nil
}

func checkOwnerEventDate(eventDate, now time.Time) error {
	if eventDate.Before(now.Add(MinLeadTime)) {
		return ErrValidationMeta("event date too early", map[string]string{
			"eventDate": "must be at least 2 hours in the future",
		})
	}
	return nil
}

func checkLen(meta map[string]string, field, v string, min, max int) {
	n := utf8.RuneCountInString(strings.TrimSpace(v))
	if n < min || n > max {
		meta[field] = fmt.Sprintf("length must be between %d and %d", min, max)
	}
}
