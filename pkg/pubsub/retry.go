package pubsub

import (
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RetrySpec configures the DLX-based retry pipeline. A failed delivery is
// dead-lettered to DeadQueue, waits TTL there and goes back to the main
// queue. After MaxAttempts it lands in FinalQueue.
type RetrySpec struct {
	Enabled     bool
	TTL         time.Duration
	MaxAttempts int

	DeadExchange  string
	DeadQueue     string
	FinalExchange string
	FinalQueue    string
}

func (s ConsumerSpec) retrying() bool { return s.Retry != nil && s.Retry.Enabled }

func (s ConsumerSpec) deadExchange() string {
	if s.Retry != nil {
		return FirstNonEmpty(s.Retry.DeadExchange, s.Queue+".dead")
	}
	return s.Queue + ".dead"
}

func (s ConsumerSpec) deadQueue() string {
	if s.Retry != nil {
		return FirstNonEmpty(s.Retry.DeadQueue, s.Queue+".dead")
	}
	return s.Queue + ".dead"
}

func (s ConsumerSpec) finalExchange() string {
	if s.Retry != nil {
		return FirstNonEmpty(s.Retry.FinalExchange, s.Queue+".final")
	}
	return s.Queue + ".final"
}

func (s ConsumerSpec) finalQueue() string {
	if s.Retry != nil {
		return FirstNonEmpty(s.Retry.FinalQueue, s.Queue+".final")
	}
	return s.Queue + ".final"
}

// queueArgs returns the arguments of the main queue.
func (s ConsumerSpec) queueArgs() amqp.Table {
	args := amqp.Table{}
	if s.retrying() {
		args["x-dead-letter-exchange"] = s.deadExchange()
	}
	return args
}

// deadQueueArgs sends expired messages straight back to the main queue
// through the default exchange, so other queues bound to the same keys do
// not see the retry.
func (s ConsumerSpec) deadQueueArgs() amqp.Table {
	return amqp.Table{
		"x-message-ttl":             int32(s.Retry.TTL / time.Millisecond),
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": s.Queue,
	}
}

// declareTopology declares the exchange, the main queue with its bindings,
// the retry stage and the final queue.
func (s ConsumerSpec) declareTopology(ch *amqp.Channel, defaultExchange string) error {
	exchange := FirstNonEmpty(s.Exchange, defaultExchange)
	if err := ch.ExchangeDeclare(exchange, FirstNonEmpty(s.ExchangeKind, "topic"), true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(s.Queue, true, false, false, false, s.queueArgs()); err != nil {
		return err
	}
	for _, key := range s.bindingKeys() {
		if err := ch.QueueBind(s.Queue, key, exchange, false, nil); err != nil {
			return err
		}
	}

	if s.retrying() {
		if err := ch.ExchangeDeclare(s.deadExchange(), "fanout", true, false, false, false, nil); err != nil {
			return err
		}
		if _, err := ch.QueueDeclare(s.deadQueue(), true, false, false, false, s.deadQueueArgs()); err != nil {
			return err
		}
		if err := ch.QueueBind(s.deadQueue(), "", s.deadExchange(), false, nil); err != nil {
			return err
		}
	}

	if s.retrying() || s.PoisonToFinal {
		if err := ch.ExchangeDeclare(s.finalExchange(), "fanout", true, false, false, false, nil); err != nil {
			return err
		}
		if _, err := ch.QueueDeclare(s.finalQueue(), true, false, false, false, nil); err != nil {
			return err
		}
		if err := ch.QueueBind(s.finalQueue(), "", s.finalExchange(), false, nil); err != nil {
			return err
		}
	}
	return nil
}
