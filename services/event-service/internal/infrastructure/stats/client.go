// Package stats is the HTTP client for the statistics service.
package stats

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/explore-with-me/services/event-service/internal/application/event"
	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
	appCtx "github.com/baechuer/explore-with-me/services/event-service/internal/pkg/context"
)

// TimeLayout is the wire format for timestamps on both endpoints.
const TimeLayout = "2006-01-02 15:04:05"

var json = jsoniter.ConfigFastest

var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "event_service",
		Name:      "stats_requests_total",
		Help:      "Calls to the statistics service by operation and outcome",
	},
	[]string{"op", "outcome"}, // ok, unavailable
)

type hitRequest struct {
	App       string `json:"app"`
	URI       string `json:"uri"`
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
}

type viewStatsResponse struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

// Client calls POST /hit and GET /stats. Every call is bounded by timeout
// on top of whatever deadline the caller's context carries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 800 * time.Millisecond
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// No global timeout - per-request timeouts are set from ctx
		httpClient: &http.Client{},
		timeout:    timeout,
	}
}

func (c *Client) Hit(ctx context.Context, h event.Hit) error {
	body, err := json.Marshal(hitRequest{
		App:       h.App,
		URI:       h.URI,
		IP:        h.IP,
		Timestamp: h.Timestamp.UTC().Format(TimeLayout),
	})
	if err != nil {
		return err
	}

	return c.do(ctx, "hit", http.MethodPost, c.baseURL+"/hit", bytes.NewReader(body), nil)
}

func (c *Client) Views(ctx context.Context, q event.ViewsQuery) ([]event.ViewStats, error) {
	params := url.Values{}
	params.Set("start", q.Start.UTC().Format(TimeLayout))
	params.Set("end", q.End.UTC().Format(TimeLayout))
	for _, u := range q.URIs {
		params.Add("uris", u)
	}
	params.Set("unique", strconv.FormatBool(q.Unique))

	var resp []viewStatsResponse
	if err := c.do(ctx, "stats", http.MethodGet, c.baseURL+"/stats?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	out := make([]event.ViewStats, 0, len(resp))
	for _, r := range resp {
		out = append(out, event.ViewStats{App: r.App, URI: r.URI, Hits: r.Hits})
	}
	return out, nil
}

// do runs one request and decodes a 2xx body into dest when dest is non-nil.
// Every failure comes back as domain.CodeUnavailable.
func (c *Client) do(ctx context.Context, op, method, target string, body io.Reader, dest any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if reqID := appCtx.RequestID(ctx); reqID != "" {
		req.Header.Set("X-Request-ID", reqID)
	}

	log := zlog.With().
		Str("op", op).
		Str("method", method).
		Str("request_id", appCtx.RequestID(ctx)).
		Logger()

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Dur("duration", time.Since(start)).Msg("stats_request_failed")
		return c.fail(op, mapError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return c.fail(op, fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}

	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return c.fail(op, fmt.Errorf("decode response: %w", err))
		}
	}

	log.Debug().Int("status", resp.StatusCode).Dur("duration", time.Since(start)).Msg("stats_request_completed")
	requestsTotal.WithLabelValues(op, "ok").Inc()
	return nil
}

func (c *Client) fail(op string, cause error) error {
	requestsTotal.WithLabelValues(op, "unavailable").Inc()
	return domain.ErrCollaboratorUnavailable(fmt.Sprintf("stats %s: %v", op, cause))
}

func mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errors.New("timeout")
	}
	// Connection refused, DNS errors, etc.
	return err
}
