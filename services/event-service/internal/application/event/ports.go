package event

import (
	"context"
	"time"

	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
)

type Clock interface {
	Now() time.Time
}

type EventRepo interface {
	// Create persists e and assigns e.ID.
	Create(ctx context.Context, e *domain.Event) error
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
	List(ctx context.Context, q ListQuery) ([]*domain.Event, error)

	WithTx(ctx context.Context, fn func(r TxEventRepo) error) error
}

type TxEventRepo interface {
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Event, error)
	Update(ctx context.Context, e *domain.Event) error
	InsertOutbox(ctx context.Context, msg OutboxMessage) error
}

type CategoryRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.Category, error)
}

type UserRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.User, error)
}

// RequestRepo is a read-only view over participation requests.
type RequestRepo interface {
	// CountConfirmed returns CONFIRMED request counts keyed by event id.
	// Events without confirmed requests may be absent from the map.
	CountConfirmed(ctx context.Context, eventIDs []int64) (map[int64]int64, error)
	HasConfirmed(ctx context.Context, eventID, userID int64) (bool, error)
}

type Hit struct {
	App       string
	URI       string
	IP        string
	Timestamp time.Time
}

type ViewsQuery struct {
	Start  time.Time
	End    time.Time
	URIs   []string
	Unique bool
}

type ViewStats struct {
	App  string
	URI  string
	Hits int64
}

// StatsClient talks to the statistics service. Both calls cross the network
// and fail with domain.CodeUnavailable when it cannot be reached.
type StatsClient interface {
	Hit(ctx context.Context, h Hit) error
	Views(ctx context.Context, q ViewsQuery) ([]ViewStats, error)
}

// Cache holds raw event rows. Every key carries an invalidation generation:
// a fill only lands when the generation read before the store lookup is
// still current, so a slow reader cannot put back a row an edit replaced.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Generation(ctx context.Context, key string) (int64, error)
	SetIfGeneration(ctx context.Context, key string, gen int64, val any, ttl time.Duration) (bool, error)
	Invalidate(ctx context.Context, key string) error
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, routingKey, messageID string, body []byte) error
}

type OutboxMessage struct {
	MessageID  string
	RoutingKey string
	Body       []byte
	CreatedAt  time.Time
}
