package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const maxCommentLen = 2000

type Comment struct {
	ID         int64
	Text       string
	EventID    int64
	AuthorID   int64
	Created    time.Time
	LastUpdate time.Time
}

func NewComment(eventID, authorID int64, text string, now time.Time) (*Comment, error) {
	text = strings.TrimSpace(text)
	if err := checkCommentText(text); err != nil {
		return nil, err
	}
	t := now.UTC()
	return &Comment{
		Text:       text,
		EventID:    eventID,
		AuthorID:   authorID,
		Created:    t,
		LastUpdate: t,
	}, nil
}

// Edit replaces the text. A blank text leaves the comment untouched and
// reports false.
func (c *Comment) Edit(text string, now time.Time) (bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return false, nil
	}
	if err := checkCommentText(text); err != nil {
		return false, err
	}
	c.Text = text
	c.LastUpdate = now.UTC()
	return true, nil
}

// CanOperateComments is the moderation gate for non-admin comment writes.
// The event must be published, and the actor must be its initiator or hold
// a confirmed participation request.
func CanOperateComments(e *Event, actorID int64, confirmed bool) error {
	if e.State != StatePublished {
		return ErrValidation(fmt.Sprintf("event %d is not published", e.ID))
	}
	if e.InitiatorID != actorID && !confirmed {
		return ErrForbidden(fmt.Sprintf("user %d may not comment on event %d", actorID, e.ID))
	}
	return nil
}

func checkCommentText(text string) error {
	if n := utf8.RuneCountInString(text); n == 0 || n > maxCommentLen {
		return ErrValidationMeta("invalid comment", map[string]string{
			"text": fmt.Sprintf("length must be between 1 and %d", maxCommentLen),
		})
	}
	return nil
}
