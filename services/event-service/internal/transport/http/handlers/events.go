package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/baechuer/explore-with-me/services/event-service/internal/application/event"
	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
	"github.com/baechuer/explore-with-me/services/event-service/internal/transport/http/dto"
	"github.com/baechuer/explore-with-me/services/event-service/internal/transport/http/response"
	"github.com/baechuer/explore-with-me/services/event-service/internal/transport/http/validate"
)

type EventService interface {
	Create(ctx context.Context, actorID int64, d domain.Draft) (*event.EventView, error)
	GetPublic(ctx context.Context, id int64) (*event.EventView, error)
	GetForOwner(ctx context.Context, actorID, id int64) (*event.EventView, error)
	ListPublic(ctx context.Context, f event.PublicFilter) (event.Listing, error)
	ListForOwner(ctx context.Context, actorID int64, page domain.Page) (event.Listing, error)
	ListForAdmin(ctx context.Context, f event.AdminFilter) (event.Listing, error)
	UpdateAsOwner(ctx context.Context, actorID, eventID int64, d domain.EventDelta, action *domain.UserStateAction) (*event.EventView, error)
	UpdateAsAdmin(ctx context.Context, eventID int64, d domain.EventDelta, action *domain.AdminStateAction) (*event.EventView, error)
	RecordHit(uri, ip string)
}

type EventsHandler struct {
	svc EventService
}

func NewEventsHandler(svc EventService) *EventsHandler {
	return &EventsHandler{svc: svc}
}

// Public

func (h *EventsHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := event.PublicFilter{Text: strings.TrimSpace(q.Get("text"))}
	var err error
	if f.Categories, err = queryIDs(q, "categories"); err != nil {
		response.Err(w, r, err)
		return
	}
	if f.Paid, err = queryBool(q, "paid"); err != nil {
		response.Err(w, r, err)
		return
	}
	if f.RangeStart, err = queryTime(q, "rangeStart"); err != nil {
		response.Err(w, r, err)
		return
	}
	if f.RangeEnd, err = queryTime(q, "rangeEnd"); err != nil {
		response.Err(w, r, err)
		return
	}
	onlyAvailable, err := queryBool(q, "onlyAvailable")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	f.OnlyAvailable = onlyAvailable != nil && *onlyAvailable
	if f.Sort, err = event.ParseSortKey(strings.ToUpper(strings.TrimSpace(q.Get("sort")))); err != nil {
		response.Err(w, r, err)
		return
	}
	if f.Page, err = queryPage(q); err != nil {
		response.Err(w, r, err)
		return
	}

	list, err := h.svc.ListPublic(r.Context(), f)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	h.svc.RecordHit(r.URL.Path, clientIP(r))

	markPartial(w, list.Partial)
	response.Data(w, http.StatusOK, dto.ToEventShortList(list))
}

func (h *EventsHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "eventId")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	v, err := h.svc.GetPublic(r.Context(), id)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	h.svc.RecordHit(r.URL.Path, clientIP(r))

	markPartial(w, v.Partial)
	response.Data(w, http.StatusOK, dto.ToEventFull(v))
}

// Owner

func (h *EventsHandler) CreateForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	var req dto.NewEventDto
	if err := validate.DecodeAndValidate(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}

	v, err := h.svc.Create(r.Context(), userID, req.ToDraft())
	if err != nil {
		response.Err(w, r, err)
		return
	}
	markPartial(w, v.Partial)
	response.Data(w, http.StatusCreated, dto.ToEventFull(v))
}

func (h *EventsHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	page, err := queryPage(r.URL.Query())
	if err != nil {
		response.Err(w, r, err)
		return
	}

	list, err := h.svc.ListForOwner(r.Context(), userID, page)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	markPartial(w, list.Partial)
	response.Data(w, http.StatusOK, dto.ToEventShortList(list))
}

func (h *EventsHandler) GetForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	eventID, err := pathID(r, "eventId")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	v, err := h.svc.GetForOwner(r.Context(), userID, eventID)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	markPartial(w, v.Partial)
	response.Data(w, http.StatusOK, dto.ToEventFull(v))
}

func (h *EventsHandler) UpdateForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	eventID, err := pathID(r, "eventId")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	var req dto.UpdateEventUserRequest
	if err := validate.DecodeAndValidate(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}
	delta, action, err := req.ToDelta()
	if err != nil {
		response.Err(w, r, err)
		return
	}

	v, err := h.svc.UpdateAsOwner(r.Context(), userID, eventID, delta, action)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	markPartial(w, v.Partial)
	response.Data(w, http.StatusOK, dto.ToEventFull(v))
}

// Admin

func (h *EventsHandler) ListForAdmin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var f event.AdminFilter
	var err error
	if f.Users, err = queryIDs(q, "users"); err != nil {
		response.Err(w, r, err)
		return
	}
	if f.States, err = queryStates(q, "states"); err != nil {
		response.Err(w, r, err)
		return
	}
	if f.Categories, err = queryIDs(q, "categories"); err != nil {
		response.Err(w, r, err)
		return
	}
	if f.RangeStart, err = queryTime(q, "rangeStart"); err != nil {
		response.Err(w, r, err)
		return
	}
	if f.RangeEnd, err = queryTime(q, "rangeEnd"); err != nil {
		response.Err(w, r, err)
		return
	}
	if f.Page, err = queryPage(q); err != nil {
		response.Err(w, r, err)
		return
	}

	list, err := h.svc.ListForAdmin(r.Context(), f)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	markPartial(w, list.Partial)
	response.Data(w, http.StatusOK, dto.ToEventFullList(list))
}

func (h *EventsHandler) UpdateForAdmin(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "eventId")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	var req dto.UpdateEventAdminRequest
	if err := validate.DecodeAndValidate(r, &req); err != nil {
		response.Err(w, r, err)
		return
	}
	delta, action, err := req.ToDelta()
	if err != nil {
		response.Err(w, r, err)
		return
	}

	v, err := h.svc.UpdateAsAdmin(r.Context(), eventID, delta, action)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	markPartial(w, v.Partial)
	response.Data(w, http.StatusOK, dto.ToEventFull(v))
}
