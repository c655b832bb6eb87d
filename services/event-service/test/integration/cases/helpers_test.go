//go:build integration
// +build integration

package cases

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/explore-with-me/services/event-service/test/integration/infra"
	"github.com/baechuer/explore-with-me/services/event-service/test/integration/infra/wait"
)

// Env points at an event service and a stats service that are already running
// against DATABASE_URL, e.g. from docker compose.
type Env struct {
	BaseURL string
	DB      *sqlx.DB
}

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Skipf("missing env %s", k)
	}
	return v
}

func setup(t *testing.T) Env {
	t.Helper()

	e := Env{BaseURL: mustEnv(t, "EVENT_BASE_URL")}
	dbURL := mustEnv(t, "DATABASE_URL")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, wait.Healthy(ctx, e.BaseURL), "event-service not ready")

	db, err := infra.OpenDB(dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, infra.PingDB(db))
	require.NoError(t, infra.Reset(db))
	require.NoError(t, infra.SeedRefs(db))

	e.DB = db
	return e
}

type Envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Status  string            `json:"status"`
		Code    string            `json:"code"`
		Reason  string            `json:"reason"`
		Message string            `json:"message"`
		Meta    map[string]string `json:"meta"`
	} `json:"error,omitempty"`
}

type Response struct {
	Code    int
	Header  http.Header
	Payload Envelope
}

func doJSON(t *testing.T, method, url string, body any) Response {
	t.Helper()

	var b []byte
	if body != nil {
		var err error
		b, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(b))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env Envelope
	_ = json.NewDecoder(resp.Body).Decode(&env)
	return Response{Code: resp.StatusCode, Header: resp.Header, Payload: env}
}

func decode[T any](t *testing.T, r Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(r.Payload.Data, &out))
	return out
}

type EventResp struct {
	ID                int64  `json:"id"`
	State             string `json:"state"`
	Views             int64  `json:"views"`
	ConfirmedRequests int64  `json:"confirmedRequests"`
	PublishedOn       string `json:"publishedOn"`
}

func newEventBody(title string, in time.Duration) map[string]any {
	return map[string]any{
		"annotation":  "An annotation that is long enough for " + title,
		"category":    1,
		"description": "A description that is long enough for " + title,
		"eventDate":   time.Now().UTC().Add(in).Format("2006-01-02 15:04:05"),
		"location":    map[string]float64{"lat": 55.75, "lon": 37.61},
		"paid":        false,
		"title":       title,
	}
}

// createPublished creates an event as user 1 and publishes it as admin.
func createPublished(t *testing.T, e Env, title string) EventResp {
	t.Helper()
	r := doJSON(t, http.MethodPost, e.BaseURL+"/users/1/events", newEventBody(title, 48*time.Hour))
	require.Equal(t, http.StatusCreated, r.Code, r.Payload.Error)
	created := decode[EventResp](t, r)

	r = doJSON(t, http.MethodPatch, e.BaseURL+"/admin/events/"+itoa(created.ID), map[string]any{"stateAction": "PUBLISH_EVENT"})
	require.Equal(t, http.StatusOK, r.Code, r.Payload.Error)
	return decode[EventResp](t, r)
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
