package handlers

import (
	"context"
	"net/http"

	"github.com/baechuer/explore-with-me/services/event-service/internal/application/compilation"
	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
	"github.com/baechuer/explore-with-me/services/event-service/internal/transport/http/dto"
	"github.com/baechuer/explore-with-me/services/event-service/internal/transport/http/response"
	"github.com/baechuer/explore-with-me/services/event-service/internal/transport/http/validate"
)

type CompilationService interface {
	Create(ctx context.Context, title string, pinned bool, eventIDs []int64) (*compilation.View, error)
	Update(ctx context.Context, id int64, d domain.CompilationDelta) (*compilation.View, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*compilation.View, error)
	List(ctx context.Context, pinned *bool, page domain.Page) ([]compilation.View, bool, error)
}

type CompilationsHandler struct {
	svc CompilationService
}

func NewCompilationsHandler(svc CompilationService) *CompilationsHandler {
	return &CompilationsHandler{svc: svc}
}

func (h *CompilationsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pinned, err := queryBool(q, "pinned")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	page, err := queryPage(q)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	vs, partial, err := h.svc.List(r.Context(), pinned, page)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	markPartial(w, partial)
	response.Data(w, http.StatusOK, dto.ToCompilations(vs))
}

func (h *CompilationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "compId")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	v, err := h.svc.Get(r.Context(), id)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	markPartial(w, v.Partial)
	response.Data(w, http.StatusOK, dto.ToCompilation(v))
}

// Admin

func (h *CompilationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.NewCompilationDto
	if err := validate.DecodeAndValidate(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	v, err := h.svc.Create(r.Context(), req.Title, req.Pinned, req.Events)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	markPartial(w, v.Partial)
	response.Data(w, http.StatusCreated, dto.ToCompilation(v))
}

func (h *CompilationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "compId")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	var req dto.UpdateCompilationRequest
	if err := validate.DecodeAndValidate(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	v, err := h.svc.Update(r.Context(), id, req.ToDelta())
	if err != nil {
		response.Err(w, r, err)
		return
	}
	markPartial(w, v.Partial)
	response.Data(w, http.StatusOK, dto.ToCompilation(v))
}

func (h *CompilationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "compId")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		response.Err(w, r, err)
		return
	}
	response.NoContent(w)
}
