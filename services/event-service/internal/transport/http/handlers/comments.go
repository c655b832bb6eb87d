package handlers

import (
	"context"
	"net/http"

	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
	"github.com/baechuer/explore-with-me/services/event-service/internal/transport/http/dto"
	"github.com/baechuer/explore-with-me/services/event-service/internal/transport/http/response"
	"github.com/baechuer/explore-with-me/services/event-service/internal/transport/http/validate"
)

type CommentService interface {
	Create(ctx context.Context, actorID, eventID int64, text string) (*domain.Comment, error)
	Update(ctx context.Context, actorID, eventID, commentID int64, text string) (*domain.Comment, error)
	Delete(ctx context.Context, actorID, eventID, commentID int64) error
	AdminUpdate(ctx context.Context, commentID int64, text string) (*domain.Comment, error)
	AdminDelete(ctx context.Context, commentID int64) error
	AdminDeleteAllForEvent(ctx context.Context, eventID int64) error
	Get(ctx context.Context, commentID int64) (*domain.Comment, error)
	ListByEvent(ctx context.Context, eventID int64, page domain.Page) ([]*domain.Comment, error)
}

type CommentsHandler struct {
	svc CommentService
}

func NewCommentsHandler(svc CommentService) *CommentsHandler {
	return &CommentsHandler{svc: svc}
}

// ids reads the named path parameters in order.
func ids(r *http.Request, names ...string) ([]int64, error) {
	out := make([]int64, 0, len(names))
	for _, n := range names {
		id, err := pathID(r, n)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func (h *CommentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := ids(r, "userId", "eventId")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	var req dto.NewCommentDto
	if err := validate.DecodeAndValidate(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	c, err := h.svc.Create(r.Context(), p[0], p[1], req.Text)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, dto.ToComment(c))
}

func (h *CommentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, err := ids(r, "userId", "eventId", "commentId")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	var req dto.UpdateCommentDto
	if err := validate.DecodeAndValidate(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	c, err := h.svc.Update(r.Context(), p[0], p[1], p[2], req.Text)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToComment(c))
}

func (h *CommentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, err := ids(r, "userId", "eventId", "commentId")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), p[0], p[1], p[2]); err != nil {
		response.Err(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *CommentsHandler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "eventId")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	page, err := queryPage(r.URL.Query())
	if err != nil {
		response.Err(w, r, err)
		return
	}

	cs, err := h.svc.ListByEvent(r.Context(), eventID, page)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToComments(cs))
}

func (h *CommentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "commentId")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToComment(c))
}

// Admin

func (h *CommentsHandler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "commentId")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	var req dto.UpdateCommentDto
	if err := validate.DecodeAndValidate(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	c, err := h.svc.AdminUpdate(r.Context(), id, req.Text)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToComment(c))
}

func (h *CommentsHandler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "commentId")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	if err := h.svc.AdminDelete(r.Context(), id); err != nil {
		response.Err(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *CommentsHandler) AdminDeleteAllForEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "eventId")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	if err := h.svc.AdminDeleteAllForEvent(r.Context(), eventID); err != nil {
		response.Err(w, r, err)
		return
	}
	response.NoContent(w)
}
