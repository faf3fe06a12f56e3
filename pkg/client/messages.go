package client

import (
	"context"
	"encoding/json"

	"github.com/roboricindustries/maxwire/pkg/markup"
	maxapi "github.com/roboricindustries/maxwire/pkg/schemas/max/v1"
)

// SendOptions tunes SendMessage. The zero value sends a plain message with
// a notification.
type SendOptions struct {
	Silent   bool
	ReplyTo  string
	Elements []maxapi.Element
	Attaches []maxapi.Attachment
}

type replyLink struct {
	Type      maxapi.LinkType `json:"type"`
	MessageID string          `json:"messageId"`
}

type outgoingMessage struct {
	Text     string              `json:"text"`
	CID      int64               `json:"cid"`
	Elements []maxapi.Element    `json:"elements"`
	Link     *replyLink          `json:"link,omitempty"`
	Attaches []maxapi.Attachment `json:"attaches"`
}

type sendRequest struct {
	ChatID  int64           `json:"chatId"`
	Message outgoingMessage `json:"message"`
	Notify  bool            `json:"notify"`
}

type editRequest struct {
	ChatID      int64               `json:"chatId"`
	MessageID   string              `json:"messageId"`
	Text        string              `json:"text"`
	Elements    []maxapi.Element    `json:"elements"`
	Attachments []maxapi.Attachment `json:"attachments"`
}

type deleteRequest struct {
	ChatID     int64    `json:"chatId"`
	MessageIDs []string `json:"messageIds"`
	ForMe      bool     `json:"forMe"`
}

type pinRequest struct {
	ChatID    int64  `json:"chatId"`
	NotifyPin bool   `json:"notifyPin"`
	MessageID string `json:"messageId"`
}

type reaction struct {
	ReactionType string `json:"reactionType"`
	ID           string `json:"id"`
}

type reactRequest struct {
	ChatID    int64    `json:"chatId"`
	MessageID string   `json:"messageId"`
	Reaction  reaction `json:"reaction"`
}

type reactionsRequest struct {
	ChatID    int64  `json:"chatId"`
	MessageID string `json:"messageId"`
	Count     int    `json:"count"`
}

// emptied keeps lists the service expects as arrays from encoding as null.
func emptied[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// SendMessage posts text to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, opts SendOptions) (json.RawMessage, error) {
	msg := outgoingMessage{
		Text:     text,
		CID:      c.cid(),
		Elements: emptied(opts.Elements),
		Attaches: emptied(opts.Attaches),
	}
	if opts.ReplyTo != "" {
		msg.Link = &replyLink{Type: maxapi.LinkReply, MessageID: opts.ReplyTo}
	}
	return c.invoke(ctx, "client.SendMessage", OpMessageSend, sendRequest{
		ChatID:  chatID,
		Message: msg,
		Notify:  !opts.Silent,
	})
}

// SendMarkup posts a message written in markup. Elements in opts are
// replaced by the spans parsed from the markup.
func (c *Client) SendMarkup(ctx context.Context, chatID int64, source string, opts SendOptions) (json.RawMessage, error) {
	text, spans := markup.Parse(source)
	opts.Elements = spans
	return c.SendMessage(ctx, chatID, text, opts)
}

// Reply posts text as a reply to messageID.
func (c *Client) Reply(ctx context.Context, chatID int64, messageID, text string, elements []maxapi.Element) (json.RawMessage, error) {
	return c.SendMessage(ctx, chatID, text, SendOptions{ReplyTo: messageID, Elements: elements})
}

func (c *Client) EditMessage(ctx context.Context, chatID int64, messageID, text string, elements []maxapi.Element, attaches []maxapi.Attachment) (json.RawMessage, error) {
	return c.invoke(ctx, "client.EditMessage", OpMessageEdit, editRequest{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		Elements:    emptied(elements),
		Attachments: emptied(attaches),
	})
}

// DeleteMessages removes messages for everyone, or only for the caller
// when forMe is set.
func (c *Client) DeleteMessages(ctx context.Context, chatID int64, messageIDs []string, forMe bool) (json.RawMessage, error) {
	return c.invoke(ctx, "client.DeleteMessages", OpMessageDelete, deleteRequest{
		ChatID:     chatID,
		MessageIDs: emptied(messageIDs),
		ForMe:      forMe,
	})
}

func (c *Client) PinMessage(ctx context.Context, chatID int64, messageID string, notify bool) (json.RawMessage, error) {
	return c.invoke(ctx, "client.PinMessage", OpChatUpdate, pinRequest{
		ChatID:    chatID,
		NotifyPin: notify,
		MessageID: messageID,
	})
}

// React puts an emoji reaction on a message and returns the refreshed
// reaction counters.
func (c *Client) React(ctx context.Context, chatID int64, messageID, emoji string) (json.RawMessage, error) {
	const op = "client.React"
	_, err := c.invoke(ctx, op, OpReactionAdd, reactRequest{
		ChatID:    chatID,
		MessageID: messageID,
		Reaction:  reaction{ReactionType: "EMOJI", ID: emoji},
	})
	if err != nil {
		return nil, err
	}
	return c.invoke(ctx, op, OpReactionsGet, reactionsRequest{
		ChatID:    chatID,
		MessageID: messageID,
		Count:     100,
	})
}
