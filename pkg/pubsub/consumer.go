package pubsub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/roboricindustries/maxwire/pkg/schemas/common"
)

// DeliveryHandler consumes one delivery. Returning an error wrapping
// ErrPoison drops the delivery; any other error retries it.
type DeliveryHandler func(ctx context.Context, d amqp.Delivery) error

// ConsumerSpec defines a single consumer.
type ConsumerSpec struct {
	Name         string
	Exchange     string // main exchange to bind, default Config.Exchange
	ExchangeKind string // default topic
	Queue        string
	BindingKeys  []string // default common.PacketEvent.RoutingKey
	Prefetch     int      // 0 => use global default
	Retry        *RetrySpec

	// If true, poison messages are published to final DLQ then Acked.
	// If false, poison messages are just Acked (no copy kept).
	PoisonToFinal bool

	Consume DeliveryHandler
}

func (s ConsumerSpec) bindingKeys() []string {
	if len(s.BindingKeys) == 0 {
		return []string{common.PacketEvent.RoutingKey}
	}
	return s.BindingKeys
}

// outcome is how a delivery is settled.
type outcome int

const (
	outcomeAck       outcome = iota
	outcomePoison            // ack, copy to final when configured
	outcomeRetry             // nack to the dead-letter stage
	outcomeRequeue           // nack with requeue
	outcomeExhausted         // copy to final, ack
)

func (o outcome) String() string {
	switch o {
	case outcomeAck:
		return "ack"
	case outcomePoison:
		return "poison"
	case outcomeRetry:
		return "retry"
	case outcomeRequeue:
		return "requeue"
	case outcomeExhausted:
		return "exhausted"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// exhausted reports whether a delivery used up its retries before being
// handled again.
func (s ConsumerSpec) exhausted(deaths int) bool {
	return s.retrying() && s.Retry.MaxAttempts > 0 && deaths >= s.Retry.MaxAttempts
}

// settle maps a handler result to an outcome.
func (s ConsumerSpec) settle(err error) outcome {
	switch {
	case err == nil:
		return outcomeAck
	case errors.Is(err, ErrPoison):
		return outcomePoison
	case s.retrying():
		return outcomeRetry
	default:
		return outcomeRequeue
	}
}

func (c *Client) RunWithConsumers(ctx context.Context, specs ...ConsumerSpec) error {
	c.consumerClosed = make(chan string, len(specs)*2)
	c.consumerSpecs = make(map[string]ConsumerSpec, len(specs))

	for _, s := range specs {
		if s.Consume == nil {
			return fmt.Errorf("start %s: no handler", s.Name)
		}
		c.consumerSpecs[s.Name] = s
		if err := c.startConsumer(ctx, s); err != nil {
			return fmt.Errorf("start %s: %w", s.Name, err)
		}
	}

	errCh := c.conn.NotifyClose(make(chan *amqp.Error, 1))
	base := Dsec(c.config.ReconnectBackoffBaseSeconds, 1)
	capd := Dsec(c.config.ReconnectBackoffCapSeconds, 30)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case name := <-c.consumerClosed:
			if s, ok := c.consumerSpecs[name]; ok {
				if err := c.startConsumer(ctx, s); err != nil {
					c.logger.Error("restart consumer failed", slog.String("name", name), slog.Any("error", err))
				}
			}

		case err, ok := <-errCh:
			if !ok {
				err = &amqp.Error{Reason: "connection closed"}
			}
			c.logger.Error("amqp connection closed, reconnecting", slog.Any("error", err))

			backoff := base
			for {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				rerr := c.reconnect(ctx)
				if rerr == nil {
					break
				}
				wait := JitteredDelay(backoff, capd, c.config.ReconnectJitterPercent)
				c.logger.Error("reconnect failed", slog.Any("error", rerr), slog.Duration("retry_in", wait))
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(wait):
				}
				if backoff*2 < capd {
					backoff *= 2
				}
			}

			for _, s := range c.consumerSpecs {
				if err := c.startConsumer(ctx, s); err != nil {
					c.logger.Error("restart consumer after reconnect failed", slog.String("name", s.Name), slog.Any("error", err))
				}
			}
			errCh = c.conn.NotifyClose(make(chan *amqp.Error, 1))
		}
	}
}

// startConsumer declares the per-consumer topology and runs the loop.
func (c *Client) startConsumer(ctx context.Context, spec ConsumerSpec) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}

	pf := spec.Prefetch
	if pf <= 0 {
		pf = max(c.config.ConsumerPrefetch, 1)
	}
	if err := ch.Qos(pf, 0, false); err != nil {
		_ = SafeClose(ch)
		return err
	}
	if err := spec.declareTopology(ch, c.config.exchange()); err != nil {
		_ = SafeClose(ch)
		return err
	}
	msgs, err := ch.Consume(spec.Queue, "", false, false, false, false, nil)
	if err != nil {
		_ = SafeClose(ch)
		return err
	}
	closeCh := ch.NotifyClose(make(chan *amqp.Error, 1))

	c.consumerWG.Add(1)
	go func() {
		defer c.consumerWG.Done()
		for {
			select {
			case <-ctx.Done():
				_ = SafeClose(ch)
				return

			case <-closeCh:
				c.drain(msgs)
				select {
				case c.consumerClosed <- spec.Name:
				default:
				}
				_ = SafeClose(ch)
				return

			case d, ok := <-msgs:
				if !ok {
					_ = SafeClose(ch)
					return
				}
				c.handle(ctx, ch, spec, d)
			}
		}
	}()

	c.logger.Info("consumer started", slog.String("name", spec.Name), slog.String("queue", spec.Queue), slog.Int("prefetch", pf))
	return nil
}

// drain requeues pending deliveries of a closing channel, best effort.
func (c *Client) drain(msgs <-chan amqp.Delivery) {
	for {
		select {
		case d, ok := <-msgs:
			if !ok {
				return
			}
			_ = d.Nack(false, true)
		default:
			return
		}
	}
}

func (c *Client) handle(ctx context.Context, ch *amqp.Channel, spec ConsumerSpec, d amqp.Delivery) {
	var o outcome
	var err error
	if spec.exhausted(DeathCount(d, spec.Queue)) {
		o = outcomeExhausted
	} else {
		err = spec.Consume(ctx, d)
		o = spec.settle(err)
	}
	c.config.Metrics.consumed(spec.Name, o)

	switch o {
	case outcomeAck:
		_ = d.Ack(false)
	case outcomeExhausted:
		c.logger.Warn("retries exhausted", slog.String("name", spec.Name), slog.String("message_id", d.MessageId))
		_ = PublishFinal(ch, spec.finalExchange(), d)
		_ = d.Ack(false)
	case outcomePoison:
		c.logger.Warn("poison message", slog.String("name", spec.Name), slog.String("message_id", d.MessageId), slog.Any("error", err))
		if spec.PoisonToFinal {
			_ = PublishFinal(ch, spec.finalExchange(), d)
		}
		_ = d.Ack(false)
	case outcomeRetry:
		c.logger.Warn("handler failed, retrying", slog.String("name", spec.Name), slog.Any("error", err))
		_ = d.Nack(false, false)
	case outcomeRequeue:
		c.logger.Warn("handler failed, requeueing", slog.String("name", spec.Name), slog.Any("error", err))
		_ = d.Nack(false, true)
	}
}
