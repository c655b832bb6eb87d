package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/baechuer/explore-with-me/services/event-service/internal/application/compilation"
	"github.com/baechuer/explore-with-me/services/event-service/internal/application/event"
	"github.com/baechuer/explore-with-me/services/event-service/internal/config"
	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
	"github.com/baechuer/explore-with-me/services/event-service/internal/transport/http/handlers"
)

// stubEvents answers every read with an empty result and every write with a
// not-found, which is enough to prove a route reached its handler.
type stubEvents struct{ handlers.EventService }

func (stubEvents) ListPublic(context.Context, event.PublicFilter) (event.Listing, error) {
	return event.Listing{}, nil
}
func (stubEvents) ListForOwner(context.Context, int64, domain.Page) (event.Listing, error) {
	return event.Listing{}, nil
}
func (stubEvents) ListForAdmin(context.Context, event.AdminFilter) (event.Listing, error) {
	return event.Listing{}, nil
}
func (stubEvents) GetPublic(context.Context, int64) (*event.EventView, error) {
	return nil, domain.ErrNotFound("missing")
}
func (stubEvents) GetForOwner(context.Context, int64, int64) (*event.EventView, error) {
	return nil, domain.ErrNotFound("missing")
}
func (stubEvents) UpdateAsAdmin(context.Context, int64, domain.EventDelta, *domain.AdminStateAction) (*event.EventView, error) {
	return nil, domain.ErrNotFound("missing")
}
func (stubEvents) RecordHit(string, string) {}

type stubComments struct{ handlers.CommentService }

func (stubComments) ListByEvent(context.Context, int64, domain.Page) ([]*domain.Comment, error) {
	return nil, nil
}
func (stubComments) AdminDelete(context.Context, int64) error           { return nil }
func (stubComments) AdminDeleteAllForEvent(context.Context, int64) error { return nil }

type stubCompilations struct{ handlers.CompilationService }

func (stubCompilations) List(context.Context, *bool, domain.Page) ([]compilation.View, bool, error) {
	return nil, false, nil
}
func (stubCompilations) Get(context.Context, int64) (*compilation.View, error) {
	return nil, domain.ErrNotFound("missing")
}
func (stubCompilations) Delete(context.Context, int64) error { return nil }

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func newRouter(cfg *config.Config, dbErr error) http.Handler {
	return New(
		handlers.NewEventsHandler(stubEvents{}),
		handlers.NewCommentsHandler(stubComments{}),
		handlers.NewCompilationsHandler(stubCompilations{}),
		handlers.NewHealthHandler(pinger{err: dbErr}),
		cfg,
	)
}

func TestRouter_Routing(t *testing.T) {
	r := newRouter(&config.Config{}, nil)

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/events", http.StatusOK},
		{http.MethodGet, "/events/1", http.StatusNotFound},
		{http.MethodGet, "/events/1/comments", http.StatusOK},
		{http.MethodGet, "/users/7/events", http.StatusOK},
		{http.MethodGet, "/users/7/events/1", http.StatusNotFound},
		{http.MethodGet, "/admin/events", http.StatusOK},
		{http.MethodPatch, "/admin/events/1", http.StatusNotFound},
		{http.MethodDelete, "/admin/comments/1", http.StatusNoContent},
		{http.MethodDelete, "/admin/events/1/comments", http.StatusNoContent},
		{http.MethodGet, "/compilations", http.StatusOK},
		{http.MethodGet, "/compilations/1", http.StatusNotFound},
		{http.MethodDelete, "/admin/compilations/1", http.StatusNoContent},
		{http.MethodGet, "/nope", http.StatusNotFound},
		{http.MethodPut, "/events", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			var body *strings.Reader
			if tt.method == http.MethodPatch {
				body = strings.NewReader(`{}`)
			} else {
				body = strings.NewReader("")
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, body))
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
			assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
		})
	}
}

func TestRouter_HealthDown(t *testing.T) {
	r := newRouter(&config.Config{}, errors.New("db down"))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestRouter_RateLimit(t *testing.T) {
	r := newRouter(&config.Config{RLEnabled: true, RLLimit: 2, RLWindow: time.Minute}, nil)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req.RemoteAddr = "192.0.2.10:1234"
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// health checks are never limited
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "192.0.2.10:1234"
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}
