// Package rabbitmq publishes transaction status changes to a durable topic exchange.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/async_payments_app/internal/core/domain"
	portsrepo "github.com/SscSPs/async_payments_app/internal/core/ports/repositories"
	"github.com/SscSPs/async_payments_app/internal/middleware"
	"github.com/rabbitmq/amqp091-go"
)

// DefaultExchange receives every status change event.
const DefaultExchange = "transaction_events"

// Publisher is an EventPublisher that can be shut down.
type Publisher interface {
	portsrepo.EventPublisher
	Close()
}

// EventProducer holds the RabbitMQ connection and channel for publishing messages.
type EventProducer struct {
	mu       sync.Mutex
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
}

var _ Publisher = (*EventProducer)(nil)

// RoutingKey returns the routing key of a status change, e.g. transaction.status.settled.
func RoutingKey(status domain.TransactionStatus) string {
	return "transaction.status." + strings.ToLower(string(status))
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewEventProducer dials RabbitMQ and opens a channel. The exchange defaults to DefaultExchange.
func NewEventProducer(amqpURL, exchange string) (*EventProducer, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp091.DialConfig(cleanURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	return &EventProducer{conn: conn, channel: ch, exchange: exchange}, nil
}

// PublishStatusChanged publishes event as JSON, routed by its status.
func (p *EventProducer) PublishStatusChanged(ctx context.Context, event domain.StatusChangedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal status event: %w", err)
	}
	return p.publish(ctx, RoutingKey(event.Status), body)
}

func (p *EventProducer) publish(ctx context.Context, routingKey string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	msg := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	}

	err := p.declareAndPublish(ctx, routingKey, msg)
	if err == nil {
		return nil
	}

	// One retry on a fresh channel; the old one is closed by the broker after an error.
	middleware.GetLoggerFromCtx(ctx).Warn("Publish failed, reopening channel",
		slog.String("exchange", p.exchange), slog.String("routing_key", routingKey), slog.String("error", err.Error()))
	ch, chErr := p.conn.Channel()
	if chErr != nil {
		return fmt.Errorf("failed to reopen rabbitmq channel: %w", errors.Join(err, chErr))
	}
	p.channel = ch
	if err := p.declareAndPublish(ctx, routingKey, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}
	return nil
}

func (p *EventProducer) declareAndPublish(ctx context.Context, routingKey string, msg amqp091.Publishing) error {
	if err := p.channel.ExchangeDeclare(
		p.exchange, // name
		"topic",    // type
		true,       // durable
		false,      // autoDelete
		false,      // internal
		false,      // noWait
		nil,        // args
	); err != nil {
		return err
	}
	return p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg)
}

// Close closes the channel and the connection.
func (p *EventProducer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// EventProducerFallback is a no-op publisher used when RabbitMQ is not configured or unreachable at startup.
type EventProducerFallback struct {
	Logger *slog.Logger
}

var _ Publisher = (*EventProducerFallback)(nil)

func (p *EventProducerFallback) PublishStatusChanged(ctx context.Context, event domain.StatusChangedEvent) error {
	logger := p.Logger
	if logger == nil {
		logger = middleware.GetLoggerFromCtx(ctx)
	}
	logger.Debug("Event publish skipped, no broker",
		slog.String("routing_key", RoutingKey(event.Status)),
		slog.String("transaction_id", event.TransactionID))
	return nil
}

func (p *EventProducerFallback) Close() {}
