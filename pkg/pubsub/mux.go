package pubsub

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Mux dispatches deliveries by routing key to the first handler whose
// topic pattern matches. Use Mux.Consume as a ConsumerSpec handler and
// Mux.Patterns as its binding keys.
type Mux struct {
	logger *slog.Logger

	mu     sync.RWMutex
	routes []muxRoute
}

type muxRoute struct {
	pattern string
	handler DeliveryHandler
}

func NewMux(logger *slog.Logger) *Mux {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mux{logger: logger}
}

func (m *Mux) Handle(pattern string, h DeliveryHandler) {
	m.mu.Lock()
	m.routes = append(m.routes, muxRoute{pattern: pattern, handler: h})
	m.mu.Unlock()
}

func (m *Mux) Patterns() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.routes))
	for _, r := range m.routes {
		out = append(out, r.pattern)
	}
	return out
}

// Consume runs the matching handler. A delivery nobody handles is poison.
func (m *Mux) Consume(ctx context.Context, d amqp.Delivery) error {
	key := OriginalRoutingKey(d)
	m.mu.RLock()
	routes := m.routes
	m.mu.RUnlock()
	for _, r := range routes {
		if MatchTopic(r.pattern, key) {
			return r.handler(ctx, d)
		}
	}
	m.logger.Warn("no handler", slog.String("key", key))
	return fmt.Errorf("%w: no handler for %q", ErrPoison, key)
}

// MatchTopic reports whether key matches an AMQP topic pattern: words are
// separated by dots, * matches one word and # matches zero or more.
func MatchTopic(pattern, key string) bool {
	return matchWords(strings.Split(pattern, "."), strings.Split(key, "."))
}

func matchWords(pat, key []string) bool {
	for len(pat) > 0 {
		switch pat[0] {
		case "#":
			if len(pat) == 1 {
				return true
			}
			for i := 0; i <= len(key); i++ {
				if matchWords(pat[1:], key[i:]) {
					return true
				}
			}
			return false
		case "*":
			if len(key) == 0 {
				return false
			}
		default:
			if len(key) == 0 || key[0] != pat[0] {
				return false
			}
		}
		pat, key = pat[1:], key[1:]
	}
	return len(key) == 0
}
