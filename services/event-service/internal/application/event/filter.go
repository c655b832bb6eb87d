package event

import (
	"time"

	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
)

type SortKey string

const (
	SortNone      SortKey = ""
	SortEventDate SortKey = "EVENT_DATE"
	SortViews     SortKey = "VIEWS"
)

func ParseSortKey(v string) (SortKey, error) {
	switch s := SortKey(v); s {
	case SortNone, SortEventDate, SortViews:
		return s, nil
	}
	return "", domain.ErrValidationMeta("invalid query param", map[string]string{
		"sort": "must be one of: EVENT_DATE, VIEWS",
	})
}

type AdminFilter struct {
	Users      []int64
	States     []domain.EventState
	Categories []int64
	RangeStart *time.Time
	RangeEnd   *time.Time
	Page       domain.Page
}

// Predicate builds the admin search predicate. No dimension is implied.
func (f AdminFilter) Predicate() (Predicate, error) {
	if err := checkRange(f.RangeStart, f.RangeEnd); err != nil {
		return Predicate{}, err
	}
	p := Where(
		InitiatorIn(f.Users),
		StateIn(f.States),
		CategoryIn(f.Categories),
	)
	return withRange(p, f.RangeStart, f.RangeEnd), nil
}

type PublicFilter struct {
	Text          string
	Categories    []int64
	Paid          *bool
	RangeStart    *time.Time
	RangeEnd      *time.Time
	OnlyAvailable bool
	Sort          SortKey
	Page          domain.Page
}

// Predicate builds the public search predicate. Only published events are
// visible, and without any range bound only future events are returned.
func (f PublicFilter) Predicate(now time.Time) (Predicate, error) {
	if err := checkRange(f.RangeStart, f.RangeEnd); err != nil {
		return Predicate{}, err
	}
	p := Where(
		StateIn{domain.StatePublished},
		TextContains(f.Text),
		CategoryIn(f.Categories),
	)
	if f.Paid != nil {
		p = p.And(PaidEquals(*f.Paid))
	}
	if f.RangeStart == nil && f.RangeEnd == nil {
		return p.And(EventDateAfter{At: now}), nil
	}
	return withRange(p, f.RangeStart, f.RangeEnd), nil
}

func (f PublicFilter) order() OrderKey {
	if f.Sort == SortEventDate {
		return OrderByEventDate
	}
	return OrderByID
}

func checkRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return domain.ErrValidationMeta("invalid time window", map[string]string{
			"rangeEnd": "must not be before rangeStart",
		})
	}
	return nil
}

func withRange(p Predicate, start, end *time.Time) Predicate {
	if start != nil {
		p = p.And(EventDateAfter{At: *start})
	}
	if end != nil {
		p = p.And(EventDateBefore{At: *end})
	}
	return p
}
