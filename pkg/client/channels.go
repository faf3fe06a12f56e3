package client

import (
	"context"
	"encoding/json"
	"strconv"

	maxapi "github.com/roboricindustries/maxwire/pkg/schemas/max/v1"
)

const publicLinkBase = "https://max.ru/"

type linkRequest struct {
	Link string `json:"link"`
}

type chatsRequest struct {
	ChatIDs []int64 `json:"chatIds"`
}

// controlMessage carries the CONTROL attachment that creates a chat.
type controlMessage struct {
	CID      int64               `json:"cid"`
	Attaches []maxapi.Attachment `json:"attaches"`
	Text     *string             `json:"text,omitempty"`
}

type createRequest struct {
	Message controlMessage `json:"message"`
	Notify  *bool          `json:"notify,omitempty"`
}

func (c *Client) ResolveChannel(ctx context.Context, username string) (json.RawMessage, error) {
	return c.invoke(ctx, "client.ResolveChannel", OpLinkResolve, linkRequest{Link: publicLinkBase + username})
}

func (c *Client) ResolveChannelID(ctx context.Context, channelID int64) (json.RawMessage, error) {
	return c.invoke(ctx, "client.ResolveChannelID", OpChatsResolve, chatsRequest{ChatIDs: []int64{channelID}})
}

func (c *Client) JoinChannel(ctx context.Context, username string) (json.RawMessage, error) {
	return c.invoke(ctx, "client.JoinChannel", OpChatJoin, linkRequest{Link: publicLinkBase + username})
}

func (c *Client) CreateChannel(ctx context.Context, title string) (json.RawMessage, error) {
	kind := maxapi.ChatChannel
	empty := ""
	return c.invoke(ctx, "client.CreateChannel", OpMessageSend, createRequest{
		Message: controlMessage{
			CID: c.cid(),
			Attaches: []maxapi.Attachment{maxapi.ControlAttachment{
				Event:    "new",
				Title:    &title,
				ChatType: &kind,
			}},
			Text: &empty,
		},
	})
}

// MuteChannel silences a channel until it is unmuted.
func (c *Client) MuteChannel(ctx context.Context, channelID int64, mute bool) (json.RawMessage, error) {
	var until int64
	if mute {
		until = -1
	}
	return c.invoke(ctx, "client.MuteChannel", OpSettingsUpdate, settingsRequest{Settings: settings{
		Chats: map[string]chatSettings{strconv.FormatInt(channelID, 10): {DontDisturbUntil: until}},
	}})
}
