package pubsub

import (
	"context"
	"math/rand/v2"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Dsec converts seconds to a duration, using def when v is not positive.
func Dsec(v, def int) time.Duration {
	if v <= 0 {
		return time.Duration(def) * time.Second
	}
	return time.Duration(v) * time.Second
}

// JitteredDelay spreads base by ±jitterPct percent and caps it.
func JitteredDelay(base, cap time.Duration, jitterPct int) time.Duration {
	if jitterPct <= 0 {
		jitterPct = 25
	}
	delta := (rand.Float64()*2 - 1) * float64(jitterPct) / 100.0
	wait := time.Duration(float64(base) * (1 + delta))
	if wait < 0 {
		wait = base
	}
	return min(wait, cap)
}

func FirstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// xDeath returns the x-death entries RabbitMQ stamps on dead-lettered
// messages, most recent first.
func xDeath(d amqp.Delivery) []amqp.Table {
	list, _ := d.Headers["x-death"].([]any)
	out := make([]amqp.Table, 0, len(list))
	for _, it := range list {
		if m, ok := it.(amqp.Table); ok {
			out = append(out, m)
		}
	}
	return out
}

// DeathCount reports how many times d was dead-lettered from queue.
func DeathCount(d amqp.Delivery, queue string) int {
	for _, m := range xDeath(d) {
		if q, _ := m["queue"].(string); q == queue {
			if n, ok := m["count"].(int64); ok {
				return int(n)
			}
		}
	}
	return 0
}

// OriginalRoutingKey returns the key d was first published with. Retried
// deliveries come back addressed to their queue; the oldest x-death entry
// still holds the original key.
func OriginalRoutingKey(d amqp.Delivery) string {
	deaths := xDeath(d)
	for i := len(deaths) - 1; i >= 0; i-- {
		keys, _ := deaths[i]["routing-keys"].([]any)
		for _, k := range keys {
			if s, ok := k.(string); ok && s != "" {
				return s
			}
		}
	}
	return d.RoutingKey
}

// PublishFinal copies d to the fanout exchange of the final queue.
func PublishFinal(ch *amqp.Channel, exchange string, d amqp.Delivery) error {
	return ch.PublishWithContext(context.Background(), exchange, "", false, false, amqp.Publishing{
		ContentType:   FirstNonEmpty(d.ContentType, "application/json"),
		Body:          d.Body,
		Headers:       d.Headers,
		MessageId:     d.MessageId,
		CorrelationId: d.CorrelationId,
		DeliveryMode:  amqp.Persistent,
		Timestamp:     time.Now(),
		Type:          d.Type,
		AppId:         d.AppId,
	})
}

func SafeClose(ch *amqp.Channel) error {
	if ch == nil {
		return nil
	}
	defer func() { _ = recover() }()
	return ch.Close()
}
