package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/baechuer/explore-with-me/services/stats-service/internal/domain"
	appCtx "github.com/baechuer/explore-with-me/services/stats-service/internal/pkg/context"
	"github.com/baechuer/explore-with-me/services/stats-service/internal/pkg/logger"
	"github.com/baechuer/explore-with-me/services/stats-service/internal/transport/rest/response"
)

var (
	json     = jsoniter.ConfigCompatibleWithStandardLibrary
	validate = validator.New(validator.WithRequiredStructEnabled())
)

type StatsService interface {
	RecordHit(ctx context.Context, h domain.Hit) (*domain.Hit, error)
	Stats(ctx context.Context, q domain.StatsQuery) ([]domain.ViewStats, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	svc StatsService
	db  Pinger
}

func NewHandler(svc StatsService, db Pinger) *Handler {
	return &Handler{svc: svc, db: db}
}

type hitDto struct {
	ID        int64  `json:"id,omitempty"`
	App       string `json:"app" validate:"required,max=255"`
	URI       string `json:"uri" validate:"required,max=2048"`
	IP        string `json:"ip" validate:"required,ip"`
	Timestamp string `json:"timestamp" validate:"required,datetime=2006-01-02 15:04:05"`
}

type viewStatsDto struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

// Hit handles POST /hit.
func (h *Handler) Hit(w http.ResponseWriter, r *http.Request) {
	var req hitDto
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, domain.NewValidationError("malformed JSON body", nil))
		return
	}
	if err := validate.Struct(req); err != nil {
		h.fail(w, r, toValidationError(err))
		return
	}
	ts, _ := time.ParseInLocation(response.TimeLayout, req.Timestamp, time.UTC)

	saved, err := h.svc.RecordHit(r.Context(), domain.Hit{App: req.App, URI: req.URI, IP: req.IP, Timestamp: ts})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, hitDto{
		ID:        saved.ID,
		App:       saved.App,
		URI:       saved.URI,
		IP:        saved.IP,
		Timestamp: saved.Timestamp.Format(response.TimeLayout),
	})
}

// Stats handles GET /stats?start=&end=&uris=&unique=.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	qv := r.URL.Query()
	fields := map[string]string{}

	parse := func(name string) time.Time {
		v := strings.TrimSpace(qv.Get(name))
		if v == "" {
			fields[name] = "is required"
			return time.Time{}
		}
		t, err := time.ParseInLocation(response.TimeLayout, v, time.UTC)
		if err != nil {
			fields[name] = "must match " + response.TimeLayout
		}
		return t
	}
	q := domain.StatsQuery{Start: parse("start"), End: parse("end")}

	for _, raw := range qv["uris"] {
		q.URIs = append(q.URIs, strings.Split(raw, ",")...)
	}
	if v := qv.Get("unique"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			fields["unique"] = "must be true or false"
		}
		q.Unique = b
	}
	if len(fields) > 0 {
		h.fail(w, r, domain.NewValidationError("invalid request parameter", fields))
		return
	}

	stats, err := h.svc.Stats(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]viewStatsDto, 0, len(stats))
	for _, s := range stats {
		out = append(out, viewStatsDto{App: s.App, URI: s.URI, Hits: s.Hits})
	}
	response.JSON(w, http.StatusOK, out)
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		response.Fail(w, http.StatusServiceUnavailable, "unavailable", "Database is unreachable.", err.Error(), nil, appCtx.RequestID(r.Context()))
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	rid := appCtx.RequestID(r.Context())

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		response.Fail(w, http.StatusBadRequest, "validation_error", "Incorrectly made request.", ve.Message, ve.Fields, rid)
		return
	}
	logger.WithCtx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
	response.Fail(w, http.StatusInternalServerError, "internal_error", "Internal server error.", "internal error", nil, rid)
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.NewValidationError("invalid hit", nil)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			fields[name] = "is required"
		case "datetime":
			fields[name] = "must match " + response.TimeLayout
		case "ip":
			fields[name] = "must be an IP address"
		default:
			fields[name] = "failed " + fe.Tag()
		}
	}
	return domain.NewValidationError("invalid hit", fields)
}
