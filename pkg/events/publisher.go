package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

// Publisher sends JSON messages to a topic exchange
type Publisher interface {
	PublishJSON(ctx context.Context, routingKey string, v any) error
	Close() error
}

var ErrClosed = errors.New("events: publisher closed")

type amqpChannel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes over one RabbitMQ connection, opening a channel per message
type AMQPPublisher struct {
	conn        *amqp.Connection
	exchange    string
	openChannel func() (amqpChannel, error)

	mu     sync.RWMutex
	closed bool
}

var _ Publisher = (*AMQPPublisher)(nil)

// NewAMQPPublisher dials url and declares exchange as a durable topic exchange
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("events: dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: declare exchange %s: %w", exchange, err)
	}

	p := &AMQPPublisher{conn: conn, exchange: exchange}
	p.openChannel = func() (amqpChannel, error) { return conn.Channel() }
	return p, nil
}

func (p *AMQPPublisher) PublishJSON(ctx context.Context, routingKey string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("events: marshal %s: %w", routingKey, err)
	}

	ch, err := p.openChannel()
	if err != nil {
		return fmt.Errorf("events: open channel: %w", err)
	}
	defer ch.Close()

	return ch.Publish(p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NoopPublisher drops every message. Used when RABBITMQ_URL is unset.
type NoopPublisher struct{}

var _ Publisher = NoopPublisher{}

func (NoopPublisher) PublishJSON(ctx context.Context, routingKey string, v any) error { return nil }
func (NoopPublisher) Close() error                                                    { return nil }
