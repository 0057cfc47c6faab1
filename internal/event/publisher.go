package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

type Publisher interface {
	Publish(ctx context.Context, eventType EventType, payload any) error
	Close()
}

// NewPublisher connects to the broker and declares the topic exchange.
// Publishing is disabled when uri is empty.
func NewPublisher(uri, exchange string) (Publisher, error) {
	if uri == "" {
		logrus.Warn("RabbitMQ URI is empty, event publishing is disabled")
		return NopPublisher{}, nil
	}

	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return &EventPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

type EventPublisher struct {
	conn     *amqp.Connection
	exchange string

	// channels are not safe for concurrent publishing
	mu      sync.Mutex
	channel *amqp.Channel
}

func encode(eventType EventType, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{
		Type:      eventType,
		Timestamp: time.Now().UnixMilli(),
		Payload:   raw,
	})
}

func (p *EventPublisher) Publish(ctx context.Context, eventType EventType, payload any) error {
	body, err := encode(eventType, payload)
	if err != nil {
		return err
	}

	logrus.WithField("event", eventType).Debug("Publishing event")

	p.mu.Lock()
	defer p.mu.Unlock()
	// the event type is the routing key on the topic exchange
	return p.channel.PublishWithContext(ctx,
		p.exchange,
		string(eventType),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func (p *EventPublisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, EventType, any) error { return nil }

func (NopPublisher) Close() {}
