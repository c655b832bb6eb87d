package event

import (
	"context"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
	appCtx "github.com/baechuer/explore-with-me/services/event-service/internal/pkg/context"
)

const (
	EventVersion  = 1
	EventProducer = "event-service"

	RoutingKeyPublished = "event.published"
	RoutingKeyRejected  = "event.rejected"
	RoutingKeyCanceled  = "event.canceled"
)

// DomainEventEnvelope is the stable contract for all domain events emitted by event-service.
// Consumers should rely on: version/producer/message_id/occurred_at + payload.
type DomainEventEnvelope[T any] struct {
	Version    int       `json:"version"`
	Producer   string    `json:"producer"`
	MessageID  string    `json:"message_id"`
	TraceID    string    `json:"trace_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    T         `json:"payload"`
}

// EventStateChangedPayload is the body for event.published, event.rejected and event.canceled.
type EventStateChangedPayload struct {
	EventID     int64      `json:"event_id"`
	InitiatorID int64      `json:"initiator_id"`
	CategoryID  int64      `json:"category_id"`
	Title       string     `json:"title"`
	EventDate   time.Time  `json:"event_date"`
	PublishedOn *time.Time `json:"published_on,omitempty"`
	From        string     `json:"from_state"`
	To          string     `json:"to_state"`
	Actor       string     `json:"actor"`
}

func routingKeyFor(to domain.EventState, actor string) string {
	switch {
	case to == domain.StatePublished:
		return RoutingKeyPublished
	case to == domain.StateCanceled && actor == "admin":
		return RoutingKeyRejected
	case to == domain.StateCanceled:
		return RoutingKeyCanceled
	}
	return ""
}

// stateChangedOutbox builds the outbox row for a committed state change, or
// returns ok=false when the transition does not emit anything.
func stateChangedOutbox(ctx context.Context, ev *domain.Event, from domain.EventState, actor string, now time.Time) (OutboxMessage, bool, error) {
	if from == ev.State {
		return OutboxMessage{}, false, nil
	}
	key := routingKeyFor(ev.State, actor)
	if key == "" {
		return OutboxMessage{}, false, nil
	}

	messageID := uuid.NewString()
	env := DomainEventEnvelope[EventStateChangedPayload]{
		Version:    EventVersion,
		Producer:   EventProducer,
		MessageID:  messageID,
		TraceID:    appCtx.RequestID(ctx),
		OccurredAt: now,
		Payload: EventStateChangedPayload{
			EventID:     ev.ID,
			InitiatorID: ev.InitiatorID,
			CategoryID:  ev.CategoryID,
			Title:       ev.Title,
			EventDate:   ev.EventDate,
			PublishedOn: ev.PublishedOn,
			From:        string(from),
			To:          string(ev.State),
			Actor:       actor,
		},
	}
	body, err := jsoniter.ConfigFastest.Marshal(env)
	if err != nil {
		return OutboxMessage{}, false, err
	}
	return OutboxMessage{
		MessageID:  messageID,
		RoutingKey: key,
		Body:       body,
		CreatedAt:  now,
	}, true, nil
}
