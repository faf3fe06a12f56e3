package pubsub

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/roboricindustries/maxwire/pkg/schemas/common"
)

// DefaultKafkaTopic receives packets when no topic is configured.
const DefaultKafkaTopic = "maxapi.packets"

// KafkaPublisher writes envelopes to one topic, keyed by routing key so
// packets of one opcode and kind keep their order within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
	log    *slog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	topic = FirstNonEmpty(topic, DefaultKafkaTopic)
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
		Logger: kafka.LoggerFunc(func(msg string, args ...any) {
			logger.Debug(fmt.Sprintf(msg, args...))
		}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			logger.Error(fmt.Sprintf(msg, args...))
		}),
	}
	return &KafkaPublisher{writer: writer, topic: topic, log: logger}
}

// kafkaMessage encodes env the way PublishJSON does and carries the
// metadata in headers.
func (p *KafkaPublisher) kafkaMessage(key string, env common.Envelope) (kafka.Message, error) {
	env, body, err := prepare(env)
	if err != nil {
		return kafka.Message{}, err
	}
	headers := []kafka.Header{
		{Key: "id", Value: []byte(env.Meta.ID)},
		{Key: "type", Value: []byte(env.Meta.Type)},
		{Key: "correlation_id", Value: []byte(*env.Meta.CorrelationID)},
	}
	if env.Meta.Producer != nil {
		headers = append(headers, kafka.Header{Key: "producer", Value: []byte(*env.Meta.Producer)})
	}
	return kafka.Message{
		Topic:   p.topic,
		Key:     []byte(key),
		Value:   body,
		Headers: headers,
		Time:    env.Meta.Time,
	}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, key string, env common.Envelope) error {
	msg, err := p.kafkaMessage(key, env)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	p.log.Debug("published", slog.String("key", key), slog.String("topic", p.topic))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
