package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const (
	DefaultExchange = "ewm.events"
	// DefaultQueue retains every lifecycle event for consumers that attach later.
	DefaultQueue = "ewm.events.lifecycle"
	lifecycleKey = "event.#"

	// Wait window for Return / Confirm
	publishWait = 150 * time.Millisecond
)

// Publisher sends outbox rows to a durable topic exchange with publisher
// confirms. It is safe for concurrent use and reconnects lazily.
type Publisher struct {
	url      string
	exchange string
	queue    string

	mu sync.Mutex

	conn *amqp.Connection
	ch   *amqp.Channel

	confirmCh <-chan amqp.Confirmation
	returnCh  <-chan amqp.Return
}

// NewPublisher declares exchange and, unless queue is "-", a durable queue
// bound to every event.* routing key. Empty names take the defaults.
func NewPublisher(url, exchange, queue string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	switch queue {
	case "":
		queue = DefaultQueue
	case "-":
		queue = ""
	}

	p := &Publisher{
		url:      url,
		exchange: exchange,
		queue:    queue,
	}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) Exchange() string { return p.exchange }
func (p *Publisher) Queue() string    { return p.queue }

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}

	// mandatory publishes need at least one binding or every row comes back NO_ROUTE
	if p.queue != "" {
		if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return fmt.Errorf("declare queue %s: %w", p.queue, err)
		}
		if err := ch.QueueBind(p.queue, lifecycleKey, p.exchange, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return fmt.Errorf("bind queue %s: %w", p.queue, err)
		}
	}

	// enable publisher confirms
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}

	p.conn = conn
	p.ch = ch

	p.confirmCh = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	p.returnCh = ch.NotifyReturn(make(chan amqp.Return, 1))

	return nil
}

// ensure reopens the connection after the broker dropped it. Caller holds mu.
func (p *Publisher) ensure() error {
	if p.ch != nil && !p.ch.IsClosed() {
		return nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil

	if err := p.connect(); err != nil {
		return err
	}
	log.Info().Str("exchange", p.exchange).Msg("rabbitmq publisher reconnected")
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
	return nil
}

// PublishEvent publishes a JSON envelope with mandatory + confirms.
// messageID must be stable across retries (event_outbox.message_id) so
// consumers can deduplicate.
func (p *Publisher) PublishEvent(ctx context.Context, routingKey, messageID string, body []byte) error {
	if routingKey == "" {
		return errors.New("missing routingKey")
	}
	if strings.TrimSpace(messageID) == "" {
		return errors.New("missing messageID")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(); err != nil {
		return err
	}

	err := p.ch.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		true,  // mandatory
		false, // immediate
		amqp.Publishing{
			MessageId:    messageID,
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return err
	}

	// Wait for either Return (NO_ROUTE) or Confirm
	select {
	case ret := <-p.returnCh:
		// the confirm for a returned message still arrives; drain it
		select {
		case <-p.confirmCh:
		case <-time.After(publishWait):
		}
		return errors.New("NO_ROUTE: " + ret.RoutingKey)
	case conf := <-p.confirmCh:
		if !conf.Ack {
			return errors.New("publish nack")
		}
		return nil
	case <-time.After(publishWait):
		// no answer inside the window; the outbox row is already marked claimed
		// and consumers deduplicate on message id
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
