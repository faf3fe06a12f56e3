// Package routing dispatches decoded packets to handlers. A router first
// checks its own filter, then tries its handlers in registration order and
// runs the first one whose filter matches.
package routing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roboricindustries/maxwire/pkg/client"
	maxapi "github.com/roboricindustries/maxwire/pkg/schemas/max/v1"
)

// Filter decides whether a packet concerns a router or a handler.
type Filter func(c *client.Client, p maxapi.Packet) bool

// Handler receives the payload of a matched packet. Most handlers only need
// the payload; filters see the whole packet.
type Handler func(ctx context.Context, c *client.Client, payload maxapi.Payload) error

type route struct {
	filter  Filter
	handler Handler
}

type Router struct {
	filter Filter
	logger *slog.Logger

	mu     sync.RWMutex
	routes []route
}

// NewRouter returns a router guarded by filter. A nil filter passes every
// packet.
func NewRouter(filter Filter, logger *slog.Logger) *Router {
	if filter == nil {
		filter = PassAll
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{filter: filter, logger: logger}
}

// Handle registers h behind filter. A nil filter matches every packet.
func (r *Router) Handle(filter Filter, h Handler) {
	if filter == nil {
		filter = PassAll
	}
	r.mu.Lock()
	r.routes = append(r.routes, route{filter: filter, handler: h})
	r.mu.Unlock()
}

// Process runs the first matching handler and reports whether one ran.
func (r *Router) Process(ctx context.Context, c *client.Client, p maxapi.Packet) (bool, error) {
	if !r.filter(c, p) {
		return false, nil
	}
	r.mu.RLock()
	routes := r.routes
	r.mu.RUnlock()

	for i, rt := range routes {
		if !rt.filter(c, p) {
			continue
		}
		if err := rt.handler(ctx, c, p.Payload); err != nil {
			r.logger.With("op", "routing.Process").Warn("handler failed",
				slog.Int("opcode", p.Opcode),
				slog.Int("handler", i),
				slog.Any("error", err),
			)
			return true, fmt.Errorf("handler %d for opcode %d: %w", i, p.Opcode, err)
		}
		return true, nil
	}
	return false, nil
}
