package handlers

import (
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
	"github.com/baechuer/explore-with-me/services/event-service/internal/transport/http/dto"
)

func invalidParam(name, rule string) error {
	return domain.ErrValidationMeta("invalid request parameter", map[string]string{name: rule})
}

// pathID reads a positive int64 path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, invalidParam(name, "must be a positive integer")
	}
	return id, nil
}

// splitList accepts both ?k=1,2 and ?k=1&k=2.
func splitList(q url.Values, name string) []string {
	var out []string
	for _, raw := range q[name] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func queryIDs(q url.Values, name string) ([]int64, error) {
	parts := splitList(q, name)
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, invalidParam(name, "must be a list of integers")
		}
		out = append(out, id)
	}
	return out, nil
}

func queryStates(q url.Values, name string) ([]domain.EventState, error) {
	parts := splitList(q, name)
	out := make([]domain.EventState, 0, len(parts))
	for _, p := range parts {
		s, err := domain.ParseEventState(p)
		if err != nil {
			return nil, invalidParam(name, "must be a list of PENDING, PUBLISHED, CANCELED")
		}
		out = append(out, s)
	}
	return out, nil
}

func queryTime(q url.Values, name string) (*time.Time, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return nil, nil
	}
	t, err := dto.ParseTime(v)
	if err != nil {
		return nil, invalidParam(name, "must match "+dto.TimeLayout)
	}
	return &t, nil
}

func queryBool(q url.Values, name string) (*bool, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, invalidParam(name, "must be true or false")
	}
	return &b, nil
}

func queryInt(q url.Values, name string, def int) (int, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, invalidParam(name, "must be an integer")
	}
	return i, nil
}

func queryPage(q url.Values) (domain.Page, error) {
	from, err := queryInt(q, "from", 0)
	if err != nil {
		return domain.Page{}, err
	}
	size, err := queryInt(q, "size", domain.DefaultPageSize)
	if err != nil {
		return domain.Page{}, err
	}
	if size == 0 {
		return domain.Page{}, invalidParam("size", "must be between 1 and 1000")
	}
	return domain.NewPage(from, size)
}

// clientIP strips the port that RemoteAddr carries when no proxy header was set.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func markPartial(w http.ResponseWriter, partial bool) {
	if partial {
		w.Header().Set("X-Partial-Result", "true")
	}
}
