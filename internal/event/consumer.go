package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// ImageDeleter removes one stored image.
type ImageDeleter func(ctx context.Context, imageID string) error

// Consumer removes the images of deleted tests.
type Consumer struct {
	conn        *amqp.Connection
	channel     *amqp.Channel
	queueName   string
	exchange    string
	deleteImage ImageDeleter
	timeout     time.Duration
	shutdown    chan struct{}
	wg          sync.WaitGroup
	enabled     bool
}

func NewConsumer(uri, exchange, queueName string, deleteImage ImageDeleter) (*Consumer, error) {
	c := &Consumer{
		queueName:   queueName,
		exchange:    exchange,
		deleteImage: deleteImage,
		timeout:     30 * time.Second,
		shutdown:    make(chan struct{}),
	}
	if uri == "" {
		logrus.Warn("RabbitMQ URI is empty, event consumption is disabled")
		return c, nil
	}

	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	if err := channel.Qos(10, 0, false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}
	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	if _, err := channel.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	c.conn = conn
	c.channel = channel
	c.enabled = true
	return c, nil
}

func (c *Consumer) Start() error {
	if !c.enabled {
		logrus.Info("Event consumption is disabled, not starting consumer")
		return nil
	}

	if err := c.channel.QueueBind(c.queueName, string(EventTypeTestDeleted), c.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue to exchange: %w", err)
	}

	msgs, err := c.channel.Consume(c.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.consume(msgs)
	}()

	logrus.Info("Event consumer started")
	return nil
}

func (c *Consumer) consume(msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-c.shutdown:
			logrus.Info("Stopping event consumer")
			return
		case msg, ok := <-msgs:
			if !ok {
				logrus.Warn("Event delivery channel closed")
				return
			}

			if err := c.processMessage(msg.RoutingKey, msg.Body); err != nil {
				logrus.WithError(err).WithField("routing_key", msg.RoutingKey).Error("Error processing message")
				if err := msg.Nack(false, !msg.Redelivered); err != nil {
					logrus.WithError(err).Error("Error NACKing message")
				}
				continue
			}
			if err := msg.Ack(false); err != nil {
				logrus.WithError(err).Error("Error ACKing message")
			}
		}
	}
}

func (c *Consumer) processMessage(routingKey string, body []byte) error {
	switch EventType(routingKey) {
	case EventTypeTestDeleted:
		return c.handleTestDeleted(body)
	default:
		logrus.WithField("routing_key", routingKey).Debug("Ignoring event")
		return nil
	}
}

func (c *Consumer) handleTestDeleted(body []byte) error {
	var envelope Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	var e TestEvent
	if err := json.Unmarshal(envelope.Payload, &e); err != nil {
		return fmt.Errorf("failed to unmarshal test deleted event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	var errs []error
	for _, id := range e.ImageIDs {
		if err := c.deleteImage(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("image %s: %w", id, err))
		}
	}
	logrus.WithFields(logrus.Fields{
		"test_id": e.TestID,
		"images":  len(e.ImageIDs),
		"failed":  len(errs),
	}).Info("Cleaned up images of deleted test")
	return errors.Join(errs...)
}

func (c *Consumer) Close() error {
	close(c.shutdown)
	c.wg.Wait()

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			return err
		}
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
