package response

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const TimeLayout = "2006-01-02 15:04:05"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrorBody is {"error":{"status":"400 BAD_REQUEST","code":"validation_error",...}}.
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

// JSON writes v as is. The stats endpoints have no {"data": ...} envelope.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Fail(w http.ResponseWriter, status int, code, reason, message string, meta map[string]string, requestID string) {
	JSON(w, status, ErrorBody{
		Error: ErrorPayload{
			Status:    fmt.Sprintf("%d %s", status, strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))),
			Code:      code,
			Reason:    reason,
			Message:   message,
			Meta:      meta,
			RequestID: requestID,
			Timestamp: time.Now().UTC().Format(TimeLayout),
		},
	})
}
