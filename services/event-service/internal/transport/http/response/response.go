package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
	"github.com/baechuer/explore-with-me/services/event-service/internal/logger"
	appCtx "github.com/baechuer/explore-with-me/services/event-service/internal/pkg/context"
)

const TimeLayout = "2006-01-02 15:04:05"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Envelope is the success envelope:
// {"data": ...}
type Envelope struct {
	Data any `json:"data"`
}

// ErrorBody is {"error":{"status":"404 NOT_FOUND","code":"not_found",...}}.
type ErrorBody struct {
	Error ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Status    string            `json:"status"`
	Code      string            `json:"code"`
	Reason    string            `json:"reason"`
	Message   string            `json:"message"`
	Meta      map[string]string `json:"meta,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Timestamp string            `json:"timestamp"`
}

var reasons = map[domain.ErrCode]string{
	domain.CodeValidation:  "Incorrectly made request.",
	domain.CodeNotFound:    "The required object was not found.",
	domain.CodeForbidden:   "Access to the requested object is denied.",
	domain.CodeConflict:    "For the requested operation the conditions are not met.",
	domain.CodeUnavailable: "A dependent service is unavailable.",
}

// JSON writes raw JSON with Content-Type.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Data wraps payload with {"data": ...}
func Data(w http.ResponseWriter, status int, payload any) {
	JSON(w, status, Envelope{Data: payload})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Fail writes the error body. An empty reason is filled from code.
func Fail(w http.ResponseWriter, status int, code, reason, message string, meta map[string]string, requestID string) {
	if reason == "" {
		reason = reasons[domain.ErrCode(code)]
	}
	JSON(w, status, ErrorBody{
		Error: ErrorPayload{
			Status:    statusText(status),
			Code:      code,
			Reason:    reason,
			Message:   message,
			Meta:      meta,
			RequestID: requestID,
			Timestamp: time.Now().UTC().Format(TimeLayout),
		},
	})
}

// Err maps err onto the error body. Unknown errors become 500 and are logged.
func Err(w http.ResponseWriter, r *http.Request, err error) {
	requestID := appCtx.RequestID(r.Context())

	if err == nil {
		Fail(w, http.StatusInternalServerError, "internal_error", "Internal server error.", "unknown error", nil, requestID)
		return
	}

	var ae *domain.AppError
	if errors.As(err, &ae) {
		status := statusFromCode(ae.Code)
		reason := reasons[ae.Code]
		if ae.Code == domain.CodeConflict && ae.Meta["constraint"] != "" {
			reason = "Integrity constraint has been violated."
		}
		if ae.Code == domain.CodeUnavailable {
			logger.Ctx(r.Context()).Warn().Err(err).Msg("collaborator_unavailable")
		}
		Fail(w, status, string(ae.Code), reason, ae.Message, ae.Meta, requestID)
		return
	}

	// keep details in logs only
	zlog.Error().Err(err).Str("request_id", requestID).Str("path", r.URL.Path).Msg("unhandled error")
	Fail(w, http.StatusInternalServerError, "internal_error", "Internal server error.", "internal error", nil, requestID)
}

func statusFromCode(code domain.ErrCode) int {
	switch code {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeConflict:
		return http.StatusConflict
	case domain.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// statusText renders 404 as "404 NOT_FOUND".
func statusText(status int) string {
	text := strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	return fmt.Sprintf("%d %s", status, text)
}
