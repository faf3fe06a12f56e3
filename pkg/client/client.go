// Package client builds the requests a MAX account sends to the service
// and hands them to a transport through the Invoker interface.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
)

// Opcodes used by the request builders.
const (
	OpProfileUpdate   = 16
	OpSettingsUpdate  = 22
	OpContactsResolve = 32
	OpContactUpdate   = 34
	OpChatsResolve    = 48
	OpChatHistory     = 49
	OpChatUpdate      = 55
	OpChatJoin        = 57
	OpChatMembers     = 59
	OpMessageSend     = 64
	OpMessageDelete   = 66
	OpMessageEdit     = 67
	OpChatSubscribe   = 75
	OpMembersUpdate   = 77
	OpLinkResolve     = 89
	OpReactionAdd     = 178
	OpReactionsGet    = 181
)

// MaxMembersPage is the largest member page the service returns.
const MaxMembersPage = 500

var (
	ErrPageTooLarge  = errors.New("member page exceeds 500")
	ErrEmptyResponse = errors.New("empty response")
)

// Invoker sends one request and returns the payload of the response.
// Implementations own the socket, sequencing and response matching.
type Invoker interface {
	Invoke(ctx context.Context, opcode int, payload any) (json.RawMessage, error)
}

// InvokerFunc adapts a function to Invoker.
type InvokerFunc func(ctx context.Context, opcode int, payload any) (json.RawMessage, error)

func (f InvokerFunc) Invoke(ctx context.Context, opcode int, payload any) (json.RawMessage, error) {
	return f(ctx, opcode, payload)
}

type Client struct {
	inv    Invoker
	logger *slog.Logger
	cid    func() int64
}

func New(inv Invoker, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{inv: inv, logger: logger, cid: randomCID}
}

// randomCID draws a client message id from the range the official
// clients use.
func randomCID() int64 {
	const lo, hi = 1_750_000_000_000, 2_000_000_000_000
	return lo + rand.Int64N(hi-lo+1)
}

func (c *Client) invoke(ctx context.Context, op string, opcode int, payload any) (json.RawMessage, error) {
	log := c.logger.With("op", op)
	log.Debug("invoke", slog.Int("opcode", opcode))
	resp, err := c.inv.Invoke(ctx, opcode, payload)
	if err != nil {
		log.Error("invoke failed", slog.Int("opcode", opcode), slog.Any("error", err))
		return nil, fmt.Errorf("%s: opcode %d: %w", op, opcode, err)
	}
	return resp, nil
}
