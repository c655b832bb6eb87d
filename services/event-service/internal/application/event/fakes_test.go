package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
)

// --- Mocks & Helpers ---

type fakeClock struct{ t time.Time }

func (c fakeClock) Now() time.Time { return c.t }

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	tt, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("bad time %q: %v", s, err)
	}
	return tt.UTC()
}

// memRepo holds one lock for the whole transaction, which is what a row lock
// gives a single-event read-modify-write.
type memRepo struct {
	mu     sync.Mutex
	byID   map[int64]*domain.Event
	nextID int64
	outbox []OutboxMessage
	lists  []ListQuery

	// afterGet runs once GetByID has taken its copy, outside the lock.
	afterGet func(id int64)
}

func newMemRepo() *memRepo { return &memRepo{byID: map[int64]*domain.Event{}, nextID: 1} }

func (m *memRepo) put(e *domain.Event) *domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == 0 {
		e.ID = m.nextID
		m.nextID++
	}
	cp := *e
	m.byID[e.ID] = &cp
	return e
}

func (m *memRepo) Create(ctx context.Context, e *domain.Event) error {
	m.put(e)
	return nil
}

func (m *memRepo) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	m.mu.Lock()
	e, ok := m.byID[id]
	var cp domain.Event
	if ok {
		cp = *e
	}
	hook := m.afterGet
	m.mu.Unlock()

	if !ok {
		return nil, domain.ErrNotFound(fmt.Sprintf("event with id=%d was not found", id))
	}
	if hook != nil {
		hook(id)
	}
	return &cp, nil
}

func (m *memRepo) List(ctx context.Context, q ListQuery) ([]*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists = append(m.lists, q)

	var all []*domain.Event
	for _, e := range m.byID {
		if q.Where.Matches(e) {
			cp := *e
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if q.OrderBy == OrderByEventDate {
			return all[i].EventDate.Before(all[j].EventDate)
		}
		return all[i].ID < all[j].ID
	})
	if q.Page.From >= len(all) {
		return []*domain.Event{}, nil
	}
	all = all[q.Page.From:]
	if q.Page.Size > 0 && len(all) > q.Page.Size {
		all = all[:q.Page.Size]
	}
	return all, nil
}

func (m *memRepo) WithTx(ctx context.Context, fn func(r TxEventRepo) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{repo: m, pending: map[int64]*domain.Event{}}
	if err := fn(tx); err != nil {
		return err
	}
	for id, e := range tx.pending {
		m.byID[id] = e
	}
	m.outbox = append(m.outbox, tx.outbox...)
	return nil
}

type memTx struct {
	repo    *memRepo
	pending map[int64]*domain.Event
	outbox  []OutboxMessage
}

func (t *memTx) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Event, error) {
	e, ok := t.repo.byID[id]
	if !ok {
		return nil, domain.ErrNotFound(fmt.Sprintf("event with id=%d was not found", id))
	}
	cp := *e
	return &cp, nil
}

func (t *memTx) Update(ctx context.Context, e *domain.Event) error {
	cp := *e
	t.pending[e.ID] = &cp
	return nil
}

func (t *memTx) InsertOutbox(ctx context.Context, msg OutboxMessage) error {
	t.outbox = append(t.outbox, msg)
	return nil
}

type memCategories map[int64]domain.Category

func (m memCategories) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	c, ok := m[id]
	if !ok {
		return nil, domain.ErrNotFound(fmt.Sprintf("category with id=%d was not found", id))
	}
	return &c, nil
}

func (m memCategories) GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.Category, error) {
	out := map[int64]domain.Category{}
	for _, id := range ids {
		if c, ok := m[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

type memUsers map[int64]domain.User

func (m memUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, ok := m[id]
	if !ok {
		return nil, domain.ErrNotFound(fmt.Sprintf("user with id=%d was not found", id))
	}
	return &u, nil
}

func (m memUsers) GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.User, error) {
	out := map[int64]domain.User{}
	for _, id := range ids {
		if u, ok := m[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

type fakeRequests struct {
	mu        sync.Mutex
	confirmed map[int64]int64
	err       error
	calls     int
	lastIDs   []int64
}

func (f *fakeRequests) CountConfirmed(ctx context.Context, ids []int64) (map[int64]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastIDs = ids
	if f.err != nil {
		return nil, f.err
	}
	out := map[int64]int64{}
	for _, id := range ids {
		if n, ok := f.confirmed[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

func (f *fakeRequests) HasConfirmed(ctx context.Context, eventID, userID int64) (bool, error) {
	return false, nil
}

type fakeStats struct {
	mu        sync.Mutex
	views     []ViewStats
	err       error
	delay     time.Duration
	viewCalls int
	lastQuery ViewsQuery
	hits      []Hit
}

func (f *fakeStats) Hit(ctx context.Context, h Hit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits = append(f.hits, h)
	return f.err
}

func (f *fakeStats) Views(ctx context.Context, q ViewsQuery) ([]ViewStats, error) {
	f.mu.Lock()
	f.viewCalls++
	f.lastQuery = q
	delay, views, err := f.delay, f.views, f.err
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, domain.ErrCollaboratorUnavailable("stats request timed out")
		}
	}
	return views, err
}

func (f *fakeStats) hitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.hits)
}

// mockCache round-trips through JSON like the redis adapter does and keeps
// the same generation rule.
type mockCache struct {
	mu    sync.Mutex
	store map[string][]byte
	gens  map[string]int64
}

func newMockCache() *mockCache {
	return &mockCache{store: map[string][]byte{}, gens: map[string]int64{}}
}

func (m *mockCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (m *mockCache) Generation(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gens[key], nil
}

func (m *mockCache) SetIfGeneration(ctx context.Context, key string, gen int64, val any, ttl time.Duration) (bool, error) {
	b, err := json.Marshal(val)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gens[key] != gen {
		return false, nil
	}
	m.store[key] = b
	return true, nil
}

func (m *mockCache) Invalidate(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gens[key]++
	delete(m.store, key)
	return nil
}

func (m *mockCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.store[key]
	return ok
}

type fixture struct {
	now      time.Time
	repo     *memRepo
	requests *fakeRequests
	stats    *fakeStats
	cache    *mockCache
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		now:      mustTime(t, "2025-12-25T10:00:00Z"),
		repo:     newMemRepo(),
		requests: &fakeRequests{confirmed: map[int64]int64{}},
		stats:    &fakeStats{},
		cache:    newMockCache(),
	}
	f.svc = New(Deps{
		Events:     f.repo,
		Categories: memCategories{1: {ID: 1, Name: "Concerts"}, 2: {ID: 2, Name: "Talks"}},
		Users: memUsers{
			7: {ID: 7, Name: "Ann", Email: "ann@example.com"},
			8: {ID: 8, Name: "Bob", Email: "bob@example.com"},
		},
		Requests: f.requests,
		Stats:    f.stats,
		Cache:    f.cache,
		Clock:    fakeClock{t: f.now},
	}, Options{StatsTimeout: 50 * time.Millisecond})
	return f
}

func draftAt(when time.Time) domain.Draft {
	return domain.Draft{
		Annotation:        strings.Repeat("a", 30),
		Description:       strings.Repeat("d", 60),
		Title:             "Open air cinema",
		CategoryID:        1,
		Location:          domain.Location{Lat: 59.93, Lon: 30.31},
		EventDate:         when,
		ParticipantLimit:  20,
		RequestModeration: true,
	}
}

// seed stores an event directly, bypassing creation rules.
func (f *fixture) seed(mut func(e *domain.Event)) *domain.Event {
	e := &domain.Event{
		Annotation:  strings.Repeat("a", 30),
		Description: strings.Repeat("d", 60),
		Title:       "Seeded event",
		CategoryID:  1,
		InitiatorID: 7,
		EventDate:   f.now.Add(72 * time.Hour),
		CreatedOn:   f.now.Add(-24 * time.Hour),
		State:       domain.StatePending,
	}
	if mut != nil {
		mut(e)
	}
	return f.repo.put(e)
}
