package routing

import (
	"slices"

	"github.com/roboricindustries/maxwire/pkg/client"
	maxapi "github.com/roboricindustries/maxwire/pkg/schemas/max/v1"
)

func PassAll(*client.Client, maxapi.Packet) bool { return true }

// Opcode matches packets carrying any of the given opcodes.
func Opcode(opcodes ...int) Filter {
	return func(_ *client.Client, p maxapi.Packet) bool {
		return slices.Contains(opcodes, p.Opcode)
	}
}

// Kind matches packets whose payload is one of the given arms.
func Kind(kinds ...maxapi.PayloadKind) Filter {
	return func(_ *client.Client, p maxapi.Packet) bool {
		return p.Payload != nil && slices.Contains(kinds, p.Payload.Kind())
	}
}

// Text matches packets carrying a message whose text equals one of texts.
func Text(texts ...string) Filter {
	return func(_ *client.Client, p maxapi.Packet) bool {
		m := MessageOf(p.Payload)
		return m != nil && slices.Contains(texts, m.Base().Text)
	}
}

// TextFunc matches packets carrying a message whose text satisfies fn.
func TextFunc(fn func(string) bool) Filter {
	return func(_ *client.Client, p maxapi.Packet) bool {
		m := MessageOf(p.Payload)
		return m != nil && fn(m.Base().Text)
	}
}

// All matches when every filter does. All() matches everything.
func All(filters ...Filter) Filter {
	return func(c *client.Client, p maxapi.Packet) bool {
		for _, f := range filters {
			if !f(c, p) {
				return false
			}
		}
		return true
	}
}

// Any matches when at least one filter does. Any() matches nothing.
func Any(filters ...Filter) Filter {
	return func(c *client.Client, p maxapi.Packet) bool {
		for _, f := range filters {
			if f(c, p) {
				return true
			}
		}
		return false
	}
}

func Not(f Filter) Filter {
	return func(c *client.Client, p maxapi.Packet) bool { return !f(c, p) }
}

// MessageOf returns the message a payload carries, or nil.
func MessageOf(payload maxapi.Payload) maxapi.Message {
	switch pl := payload.(type) {
	case maxapi.NormalPayload:
		return pl.Message
	case maxapi.ChatPayload:
		return pl.Message
	case maxapi.EditedPayload:
		return pl.Message
	}
	return nil
}
