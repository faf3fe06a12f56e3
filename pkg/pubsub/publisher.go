package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/roboricindustries/maxwire/pkg/schemas/common"
)

// Publisher sends envelopes under a routing key. *Client, *KafkaPublisher
// and *FallbackPublisher implement it.
type Publisher interface {
	Publish(ctx context.Context, key string, msg common.Envelope) error
	Close() error
}

var errNoID = errors.New("envelope.Meta.ID is required")

// prepare fills the metadata defaults and encodes env.
func prepare(env common.Envelope) (common.Envelope, []byte, error) {
	if env.Meta.ID == "" {
		return env, nil, errNoID
	}
	if env.Meta.CorrelationID == nil {
		id := env.Meta.ID // fallback to ID if no correlation
		env.Meta.CorrelationID = &id
	}
	if env.Meta.Time.IsZero() {
		env.Meta.Time = time.Now().UTC()
	}
	body, err := json.Marshal(env)
	if err != nil {
		return env, nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return env, body, nil
}

// Publish sends env to the configured exchange.
func (c *Client) Publish(ctx context.Context, key string, env common.Envelope) error {
	return c.PublishJSON(ctx, "", key, env)
}

// PublishJSON publishes an Envelope as JSON with proper AMQP headers.
func (c *Client) PublishJSON(ctx context.Context, exchange, routingKey string, env common.Envelope) error {
	exchange = FirstNonEmpty(exchange, c.config.exchange())

	env, body, err := prepare(env)
	if err != nil {
		return err
	}

	ch, err := c.pool.Borrow(ctx, c.config.PoolRetryDelayMs)
	if err != nil {
		return fmt.Errorf("borrow channel: %w", err)
	}
	defer c.pool.Return(ch)

	producer := c.config.Producer
	if env.Meta.Producer != nil {
		producer = FirstNonEmpty(*env.Meta.Producer, producer)
	}
	err = ch.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType:   "application/json",
		Body:          body,
		DeliveryMode:  amqp.Persistent,
		MessageId:     env.Meta.ID,
		CorrelationId: *env.Meta.CorrelationID,
		Type:          env.Meta.Type,
		Timestamp:     env.Meta.Time,
		AppId:         producer,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	c.logger.Debug("published", slog.String("key", routingKey), slog.String("exchange", exchange))
	return nil
}

// NewPublisher picks a backend from cfg: RabbitMQ when a URL is set,
// Kafka when brokers are listed, and otherwise a FallbackPublisher that
// drops everything.
func NewPublisher(ctx context.Context, cfg Config, logger *slog.Logger) (Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch {
	case cfg.URL != "":
		c, err := NewClient(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	case len(cfg.KafkaBrokers) > 0:
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger), nil
	default:
		logger.Warn("no broker configured, packets will be dropped")
		return NewFallback(logger), nil
	}
}
