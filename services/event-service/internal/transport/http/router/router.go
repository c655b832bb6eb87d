package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/baechuer/explore-with-me/services/event-service/internal/config"
	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
	appCtx "github.com/baechuer/explore-with-me/services/event-service/internal/pkg/context"
	"github.com/baechuer/explore-with-me/services/event-service/internal/transport/http/handlers"
	mw "github.com/baechuer/explore-with-me/services/event-service/internal/transport/http/middleware"
	"github.com/baechuer/explore-with-me/services/event-service/internal/transport/http/response"
)

func New(
	events *handlers.EventsHandler,
	comments *handlers.CommentsHandler,
	compilations *handlers.CompilationsHandler,
	z *handlers.HealthHandler,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(middleware.RealIP)
	r.Use(mw.Recover)
	r.Use(mw.Metrics)
	r.Use(mw.AccessLog)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Err(w, r, domain.ErrNotFound("route "+r.URL.Path+" was not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Fail(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed.", r.Method+" is not supported here", nil, appCtx.RequestID(r.Context()))
	})

	r.Get("/healthz", z.Healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if cfg.RLEnabled {
			r.Use(httprate.LimitByIP(cfg.RLLimit, cfg.RLWindow))
		}

		// public
		r.Get("/events", events.ListPublic)
		r.Get("/events/{eventId}", events.GetPublic)
		r.Get("/events/{eventId}/comments", comments.ListByEvent)
		r.Get("/comments/{commentId}", comments.Get)
		r.Get("/compilations", compilations.List)
		r.Get("/compilations/{compId}", compilations.Get)

		// private, the caller is the {userId} path segment
		r.Route("/users/{userId}/events", func(r chi.Router) {
			r.Post("/", events.CreateForUser)
			r.Get("/", events.ListForUser)
			r.Get("/{eventId}", events.GetForUser)
			r.Patch("/{eventId}", events.UpdateForUser)

			r.Post("/{eventId}/comments", comments.Create)
			r.Patch("/{eventId}/comments/{commentId}", comments.Update)
			r.Delete("/{eventId}/comments/{commentId}", comments.Delete)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/events", events.ListForAdmin)
			r.Patch("/events/{eventId}", events.UpdateForAdmin)
			r.Delete("/events/{eventId}/comments", comments.AdminDeleteAllForEvent)
			r.Patch("/comments/{commentId}", comments.AdminUpdate)
			r.Delete("/comments/{commentId}", comments.AdminDelete)

			r.Post("/compilations", compilations.Create)
			r.Patch("/compilations/{compId}", compilations.Update)
			r.Delete("/compilations/{compId}", compilations.Delete)
		})
	})

	return r
}
