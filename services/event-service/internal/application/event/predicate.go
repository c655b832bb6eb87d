package event

import (
	"slices"
	"strings"
	"time"

	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
)

// Clause is one optional search dimension. The set of clauses is closed:
// storage adapters switch over the exported types below.
type Clause interface {
	matches(e *domain.Event) bool
}

type InitiatorIn []int64

// IDIn restricts to the listed ids. Unlike the other set clauses an empty
// IDIn is kept, and it matches nothing.
type IDIn []int64

type StateIn []domain.EventState

type CategoryIn []int64

// EventDateAfter keeps events strictly after the instant.
type EventDateAfter struct{ At time.Time }

// EventDateBefore keeps events strictly before the instant.
type EventDateBefore struct{ At time.Time }

// TextContains is a case-insensitive substring match on annotation or description.
type TextContains string

type PaidEquals bool

func (c IDIn) matches(e *domain.Event) bool        { return slices.Contains(c, e.ID) }
func (c InitiatorIn) matches(e *domain.Event) bool { return slices.Contains(c, e.InitiatorID) }
func (c StateIn) matches(e *domain.Event) bool     { return slices.Contains(c, e.State) }
func (c CategoryIn) matches(e *domain.Event) bool  { return slices.Contains(c, e.CategoryID) }
func (c EventDateAfter) matches(e *domain.Event) bool {
	return e.EventDate.After(c.At)
}
func (c EventDateBefore) matches(e *domain.Event) bool {
	return e.EventDate.Before(c.At)
}
func (c PaidEquals) matches(e *domain.Event) bool { return e.Paid == bool(c) }
func (c TextContains) matches(e *domain.Event) bool {
	needle := domain.NormalizeSearchText(string(c))
	return strings.Contains(strings.ToLower(e.Annotation), needle) ||
		strings.Contains(strings.ToLower(e.Description), needle)
}

// Predicate is a conjunction of clauses. The zero value matches everything.
type Predicate struct {
	clauses []Clause
}

func Where(clauses ...Clause) Predicate {
	var p Predicate
	for _, c := range clauses {
		p = p.And(c)
	}
	return p
}

// And returns a new predicate with c appended. Empty set clauses and blank
// text are dropped since they do not restrict anything.
func (p Predicate) And(c Clause) Predicate {
	switch v := c.(type) {
	case InitiatorIn:
		if len(v) == 0 {
			return p
		}
	case StateIn:
		if len(v) == 0 {
			return p
		}
	case CategoryIn:
		if len(v) == 0 {
			return p
		}
	case TextContains:
		if strings.TrimSpace(string(v)) == "" {
			return p
		}
	}
	out := make([]Clause, 0, len(p.clauses)+1)
	out = append(out, p.clauses...)
	return Predicate{clauses: append(out, c)}
}

func (p Predicate) Clauses() []Clause { return slices.Clone(p.clauses) }

func (p Predicate) Matches(e *domain.Event) bool {
	for _, c := range p.clauses {
		if !c.matches(e) {
			return false
		}
	}
	return true
}

type OrderKey int

const (
	OrderByID OrderKey = iota
	OrderByEventDate
)

// ListQuery is what the event store executes: one predicate, one order, one window.
type ListQuery struct {
	Where   Predicate
	OrderBy OrderKey
	Page    domain.Page
}
