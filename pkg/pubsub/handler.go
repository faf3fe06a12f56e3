package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/roboricindustries/maxwire/pkg/schemas/common"
	maxapi "github.com/roboricindustries/maxwire/pkg/schemas/max/v1"
)

// ErrPoison indicates non-retriable "bad content" (e.g., JSON decode fail).
var ErrPoison = errors.New("poison message")

func poison(err error) error { return fmt.Errorf("%w: %w", ErrPoison, err) }

// JSONHandler wraps a typed handler and turns JSON decode failure into ErrPoison.
func JSONHandler[T any](h func(context.Context, T) error) DeliveryHandler {
	return func(ctx context.Context, d amqp.Delivery) error {
		var v T
		if err := json.Unmarshal(d.Body, &v); err != nil {
			return poison(err)
		}
		return h(ctx, v)
	}
}

// PacketHandler unwraps a packet envelope and hands the decoded packet to
// h. Envelopes of another type and packets that fail to decode are
// poison.
func PacketHandler(h func(ctx context.Context, meta common.Meta, p maxapi.Packet) error) DeliveryHandler {
	return JSONHandler(func(ctx context.Context, env common.RawEnvelope) error {
		if env.Meta.Type != common.PacketEvent.EventType {
			return poison(fmt.Errorf("unexpected event type %q", env.Meta.Type))
		}
		p, err := maxapi.DecodePacket(env.Data)
		if err != nil {
			return poison(err)
		}
		return h(ctx, env.Meta, p)
	})
}
