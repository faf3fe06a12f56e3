package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/roboricindustries/maxwire/pkg/schemas/common"
	maxapi "github.com/roboricindustries/maxwire/pkg/schemas/max/v1"
)

// RoutingKey addresses a packet as maxapi.<opcode>.<payload kind>, for
// example maxapi.128.normal.
func RoutingKey(p maxapi.Packet) string {
	return fmt.Sprintf("maxapi.%d.%s", p.Opcode, kindOf(p))
}

func kindOf(p maxapi.Packet) string {
	if p.Payload == nil {
		return "none"
	}
	return p.Payload.Kind().String()
}

// PacketPublisher forwards decoded packets to a broker.
type PacketPublisher struct {
	pub      Publisher
	producer string
	metrics  *Metrics
	log      *slog.Logger
}

func NewPacketPublisher(pub Publisher, producer string, metrics *Metrics, logger *slog.Logger) *PacketPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &PacketPublisher{pub: pub, producer: producer, metrics: metrics, log: logger}
}

// PublishPacket validates and encodes p, wraps it in a packet envelope and
// publishes it under RoutingKey(p). It returns the envelope id.
func (pp *PacketPublisher) PublishPacket(ctx context.Context, p maxapi.Packet) (string, error) {
	const op = "pubsub.PublishPacket"
	kind := kindOf(p)

	body, err := maxapi.EncodePacket(p)
	if err != nil {
		pp.metrics.publishResult(kind, err)
		return "", fmt.Errorf("%s: encode: %w", op, err)
	}
	env := common.NewEnvelope(common.PacketEvent.EventType, pp.producer, json.RawMessage(body))
	key := RoutingKey(p)

	err = pp.pub.Publish(ctx, key, env)
	pp.metrics.publishResult(kind, err)
	if err != nil {
		pp.log.With("op", op).Error("publish failed", slog.String("key", key), slog.Any("error", err))
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return env.Meta.ID, nil
}

func (pp *PacketPublisher) Close() error { return pp.pub.Close() }
