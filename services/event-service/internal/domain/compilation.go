package domain

import (
	"slices"
	"strings"
	"unicode/utf8"
)

const MaxCompilationTitle = 50

// Compilation is an admin-curated, optionally pinned set of events.
type Compilation struct {
	ID       int64
	Title    string
	Pinned   bool
	EventIDs []int64 // ascending, no duplicates
}

// CompilationDelta patches a compilation. A non-nil EventIDs replaces the
// whole set; an empty slice clears it.
type CompilationDelta struct {
	Title    *string
	Pinned   *bool
	EventIDs *[]int64
}

func NewCompilation(title string, pinned bool, eventIDs []int64) (*Compilation, error) {
	c := &Compilation{Title: strings.TrimSpace(title), Pinned: pinned, EventIDs: normalizeIDs(eventIDs)}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Apply merges d into c. On error c is unchanged.
func (c *Compilation) Apply(d CompilationDelta) error {
	u := *c
	if d.Title != nil {
		u.Title = strings.TrimSpace(*d.Title)
	}
	if d.Pinned != nil {
		u.Pinned = *d.Pinned
	}
	if d.EventIDs != nil {
		u.EventIDs = normalizeIDs(*d.EventIDs)
	}
	if err := u.validate(); err != nil {
		return err
	}
	*c = u
	return nil
}

func (c *Compilation) validate() error {
	meta := map[string]string{}
	if n := utf8.RuneCountInString(c.Title); n < 1 || n > MaxCompilationTitle {
		meta["title"] = "length must be between 1 and 50"
	}
	for _, id := range c.EventIDs {
		if id <= 0 {
			meta["events"] = "ids must be positive"
			break
		}
	}
	if len(meta) > 0 {
		return ErrValidationMeta("invalid compilation", meta)
	}
	return nil
}

func normalizeIDs(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
