package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/baechuer/explore-with-me/services/event-service/internal/logger"
	appCtx "github.com/baechuer/explore-with-me/services/event-service/internal/pkg/context"
	"github.com/baechuer/explore-with-me/services/event-service/internal/transport/http/response"
)

// Recover turns a handler panic into the standard 500 error body.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.Ctx(r.Context()).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("path", r.URL.Path).
				Msg("handler_panic")
			response.Fail(w, http.StatusInternalServerError, "internal_error", "Internal server error.",
				"internal error", nil, appCtx.RequestID(r.Context()))
		}()
		next.ServeHTTP(w, r)
	})
}
