package comment

import (
	"context"
	"fmt"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
)

type Clock interface{ Now() time.Time }

type Repo interface {
	Create(ctx context.Context, c *domain.Comment) error
	GetByID(ctx context.Context, id int64) (*domain.Comment, error)
	Update(ctx context.Context, c *domain.Comment) error
	Delete(ctx context.Context, id int64) error
	DeleteByEvent(ctx context.Context, eventID int64) (int64, error)
	ListByEvent(ctx context.Context, eventID int64, page domain.Page) ([]*domain.Comment, error)
}

type EventReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type RequestReader interface {
	HasConfirmed(ctx context.Context, eventID, userID int64) (bool, error)
}

type Service struct {
	comments Repo
	events   EventReader
	users    UserReader
	requests RequestReader
	clock    Clock
}

func New(comments Repo, events EventReader, users UserReader, requests RequestReader, clock Clock) *Service {
	return &Service{comments: comments, events: events, users: users, requests: requests, clock: clock}
}

func (s *Service) Create(ctx context.Context, actorID, eventID int64, text string) (*domain.Comment, error) {
	if _, err := s.gate(ctx, actorID, eventID); err != nil {
		return nil, err
	}
	c, err := domain.NewComment(eventID, actorID, text, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	zlog.Info().Int64("comment_id", c.ID).Int64("event_id", eventID).Msg("comment created")
	return c, nil
}

func (s *Service) Update(ctx context.Context, actorID, eventID, commentID int64, text string) (*domain.Comment, error) {
	c, err := s.commentOf(ctx, eventID, commentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.gate(ctx, actorID, eventID); err != nil {
		return nil, err
	}
	return s.edit(ctx, c, text)
}

func (s *Service) Delete(ctx context.Context, actorID, eventID, commentID int64) error {
	if _, err := s.commentOf(ctx, eventID, commentID); err != nil {
		return err
	}
	if _, err := s.gate(ctx, actorID, eventID); err != nil {
		return err
	}
	return s.comments.Delete(ctx, commentID)
}

// AdminUpdate edits any comment without the moderation gate.
func (s *Service) AdminUpdate(ctx context.Context, commentID int64, text string) (*domain.Comment, error) {
	c, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	return s.edit(ctx, c, text)
}

// AdminDelete removes any comment without the moderation gate.
func (s *Service) AdminDelete(ctx context.Context, commentID int64) error {
	if _, err := s.comments.GetByID(ctx, commentID); err != nil {
		return err
	}
	return s.comments.Delete(ctx, commentID)
}

func (s *Service) AdminDeleteAllForEvent(ctx context.Context, eventID int64) error {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return err
	}
	n, err := s.comments.DeleteByEvent(ctx, eventID)
	if err != nil {
		return err
	}
	zlog.Info().Int64("event_id", eventID).Int64("deleted", n).Msg("event comments purged")
	return nil
}

func (s *Service) Get(ctx context.Context, commentID int64) (*domain.Comment, error) {
	return s.comments.GetByID(ctx, commentID)
}

func (s *Service) ListByEvent(ctx context.Context, eventID int64, page domain.Page) ([]*domain.Comment, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.comments.ListByEvent(ctx, eventID, page)
}

// gate resolves actor and event and applies domain.CanOperateComments.
func (s *Service) gate(ctx context.Context, actorID, eventID int64) (*domain.Event, error) {
	if _, err := s.users.GetByID(ctx, actorID); err != nil {
		return nil, err
	}
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	confirmed := false
	if ev.InitiatorID != actorID && ev.IsPublished() {
		confirmed, err = s.requests.HasConfirmed(ctx, eventID, actorID)
		if err != nil {
			return nil, err
		}
	}
	if err := domain.CanOperateComments(ev, actorID, confirmed); err != nil {
		return nil, err
	}
	return ev, nil
}

func (s *Service) commentOf(ctx context.Context, eventID, commentID int64) (*domain.Comment, error) {
	c, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if c.EventID != eventID {
		return nil, domain.ErrNotFound(fmt.Sprintf("comment with id=%d was not found for event %d", commentID, eventID))
	}
	return c, nil
}

func (s *Service) edit(ctx context.Context, c *domain.Comment, text string) (*domain.Comment, error) {
	changed, err := c.Edit(text, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if !changed {
		return c, nil
	}
	if err := s.comments.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
