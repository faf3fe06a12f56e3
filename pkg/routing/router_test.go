package routing

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roboricindustries/maxwire/pkg/client"
	maxapi "github.com/roboricindustries/maxwire/pkg/schemas/max/v1"
)

func textPacket(opcode int, text string) maxapi.Packet {
	return maxapi.Packet{
		ProtocolVersion: 11,
		Opcode:          opcode,
		Payload: maxapi.NormalPayload{
			ChatID: 5,
			Message: maxapi.UserMessage{
				Sender:      1,
				MessageBase: maxapi.MessageBase{MessageID: "m1", Text: text},
			},
		},
	}
}

func deletedPacket() maxapi.Packet {
	return maxapi.Packet{Opcode: 128, Payload: maxapi.DeletedPayload{ChatID: 5, MessageIDs: []string{"m1"}}}
}

func TestRouterFirstMatchWins(t *testing.T) {
	r := NewRouter(Opcode(128), nil)
	var ran []string
	r.Handle(Text("/start"), func(context.Context, *client.Client, maxapi.Payload) error {
		ran = append(ran, "start")
		return nil
	})
	r.Handle(Kind(maxapi.KindNormal), func(context.Context, *client.Client, maxapi.Payload) error {
		ran = append(ran, "normal")
		return nil
	})
	r.Handle(nil, func(context.Context, *client.Client, maxapi.Payload) error {
		ran = append(ran, "fallback")
		return nil
	})

	ctx := context.Background()
	tests := []struct {
		name    string
		packet  maxapi.Packet
		handled bool
		want    []string
	}{
		{"command", textPacket(128, "/start"), true, []string{"start"}},
		{"other text", textPacket(128, "hello"), true, []string{"normal"}},
		{"other kind", deletedPacket(), true, []string{"fallback"}},
		{"router filter rejects", textPacket(64, "/start"), false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ran = nil
			handled, err := r.Process(ctx, nil, tt.packet)
			require.NoError(t, err)
			assert.Equal(t, tt.handled, handled)
			assert.Equal(t, tt.want, ran)
		})
	}
}

func TestRouterNoHandlerMatches(t *testing.T) {
	r := NewRouter(nil, nil)
	r.Handle(Text("/stop"), func(context.Context, *client.Client, maxapi.Payload) error {
		t.Fatal("must not run")
		return nil
	})
	handled, err := r.Process(context.Background(), nil, textPacket(128, "/start"))
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestRouterHandlerGetsPayloadAndClient(t *testing.T) {
	var sent string
	c := client.New(client.InvokerFunc(func(_ context.Context, opcode int, payload any) (json.RawMessage, error) {
		body, err := json.Marshal(payload)
		sent = string(body)
		return nil, err
	}), nil)

	r := NewRouter(nil, nil)
	r.Handle(Text("/start"), func(ctx context.Context, c *client.Client, payload maxapi.Payload) error {
		pl := payload.(maxapi.NormalPayload)
		_, err := c.Reply(ctx, pl.ChatID, pl.Message.Base().MessageID, "Hello!", nil)
		return err
	})

	handled, err := r.Process(context.Background(), c, textPacket(128, "/start"))
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Contains(t, sent, `"chatId":5`)
	assert.Contains(t, sent, `"messageId":"m1"`)
}

func TestRouterHandlerError(t *testing.T) {
	boom := errors.New("boom")
	r := NewRouter(nil, nil)
	r.Handle(nil, func(context.Context, *client.Client, maxapi.Payload) error { return boom })

	handled, err := r.Process(context.Background(), nil, deletedPacket())
	assert.True(t, handled)
	assert.ErrorIs(t, err, boom)
}

func TestFilters(t *testing.T) {
	normal := textPacket(128, "Hello there")
	deleted := deletedPacket()
	edited := maxapi.Packet{Opcode: 128, Payload: maxapi.EditedPayload{
		Message: maxapi.ChannelMessage{MessageBase: maxapi.MessageBase{Text: "edited"}},
	}}
	chatOnly := maxapi.Packet{Opcode: 135, Payload: maxapi.ChatPayload{}}

	tests := []struct {
		name   string
		filter Filter
		packet maxapi.Packet
		want   bool
	}{
		{"opcode match", Opcode(64, 128), normal, true},
		{"opcode miss", Opcode(64), normal, false},
		{"kind match", Kind(maxapi.KindDeleted), deleted, true},
		{"kind miss", Kind(maxapi.KindChat), deleted, false},
		{"kind nil payload", Kind(maxapi.KindNormal), maxapi.Packet{}, false},
		{"text match", Text("Hello there"), normal, true},
		{"text on edited", Text("edited"), edited, true},
		{"text without message", Text(""), deleted, false},
		{"text on chat without message", Text(""), chatOnly, false},
		{"text func", TextFunc(func(s string) bool { return strings.HasPrefix(s, "Hello") }), normal, true},
		{"all", All(Opcode(128), Kind(maxapi.KindNormal)), normal, true},
		{"all one fails", All(Opcode(128), Kind(maxapi.KindEdited)), normal, false},
		{"all empty", All(), normal, true},
		{"any", Any(Opcode(1), Kind(maxapi.KindNormal)), normal, true},
		{"any none", Any(Opcode(1), Kind(maxapi.KindEdited)), normal, false},
		{"any empty", Any(), normal, false},
		{"not", Not(Opcode(1)), normal, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter(nil, tt.packet))
		})
	}
}
