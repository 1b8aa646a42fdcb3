package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"storefront/internal/events"
	"storefront/internal/models"

	"github.com/rs/zerolog/log"
	amqp "github.com/streadway/amqp"
)

const (
	OrderEventsQueue      = "order_events"
	PaymentEventsQueue    = "payment_events"
	PaymentCallbacksQueue = "payment_callbacks"
)

// channel is the subset of *amqp.Channel the client uses.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel channel
	mu      sync.Mutex // amqp channels are not safe for concurrent publishing
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares the queues
// the service publishes to and consumes from.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	client, err := newClient(ch)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	client.conn = conn

	log.Info().Msg("RabbitMQ client connected and queues declared")
	return client, nil
}

func newClient(ch channel) (*Client, error) {
	for _, queue := range []string{OrderEventsQueue, PaymentEventsQueue, PaymentCallbacksQueue} {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("failed to declare %s: %w", queue, err)
		}
	}
	return &Client{channel: ch}, nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// PublishJSON marshals payload and publishes it as a persistent message on queue.
func (c *Client) PublishJSON(queue, eventType string, payload interface{}) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s to JSON: %w", eventType, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.Publish(
		"",    // default exchange
		queue, // routing key: the queue name
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         eventType,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}

	log.Debug().Str("queue", queue).Str("type", eventType).Msg("message published")
	return nil
}

type orderCreatedMessage struct {
	OrderID     string `json:"order_id"`
	UserID      string `json:"user_id"`
	Status      string `json:"status"`
	TotalAmount string `json:"total_amount"`
	ItemCount   int    `json:"item_count"`
}

// PublishOrderCreated publishes an order.created event to the order_events queue.
func (c *Client) PublishOrderCreated(_ context.Context, order *models.Order) error {
	return c.PublishJSON(OrderEventsQueue, "order.created", orderCreatedMessage{
		OrderID:     order.ID,
		UserID:      order.UserID,
		Status:      order.Status.String(),
		TotalAmount: order.TotalAmount.StringFixed(2),
		ItemCount:   len(order.Items),
	})
}

// PaymentEventReactor forwards every payment event to the payment_events
// queue for consumers outside this process.
type PaymentEventReactor struct {
	client *Client
}

// NewPaymentEventReactor wraps client as a payment bus reactor.
func NewPaymentEventReactor(client *Client) *PaymentEventReactor {
	return &PaymentEventReactor{client: client}
}

func (r *PaymentEventReactor) Name() string { return "rabbitmq" }

func (r *PaymentEventReactor) OnPaymentEvent(_ context.Context, event events.PaymentEvent) error {
	return r.client.PublishJSON(PaymentEventsQueue, string(event.Type), event)
}

// ConsumePaymentCallbacks starts a goroutine that hands every message on the
// payment_callbacks queue to messageHandler. A failed message is requeued
// once; a second failure drops it.
func (c *Client) ConsumePaymentCallbacks(messageHandler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		PaymentCallbacksQueue,
		"",    // consumer tag
		false, // auto-ack off: ack after processing
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Info().Str("queue", PaymentCallbacksQueue).Msg("waiting for payment callbacks")
	go consume(msgs, messageHandler)
	return nil
}

func consume(msgs <-chan amqp.Delivery, messageHandler func(msg amqp.Delivery) error) {
	for msg := range msgs {
		if err := messageHandler(msg); err != nil {
			requeue := !msg.Redelivered
			log.Error().Err(err).Uint64("tag", msg.DeliveryTag).Bool("requeue", requeue).Msg("error processing message")
			if nackErr := msg.Nack(false, requeue); nackErr != nil {
				log.Error().Err(nackErr).Uint64("tag", msg.DeliveryTag).Msg("error nacking message")
			}
			continue
		}
		if ackErr := msg.Ack(false); ackErr != nil {
			log.Error().Err(ackErr).Uint64("tag", msg.DeliveryTag).Msg("error acking message")
		}
	}
}
