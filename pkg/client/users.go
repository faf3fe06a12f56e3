package client

import (
	"context"
	"encoding/json"
)

type ContactAction string

const (
	ContactAdd   ContactAction = "ADD"
	ContactBlock ContactAction = "BLOCK"
)

type resolveUsersRequest struct {
	ContactIDs []int64 `json:"contactIds"`
}

type contactRequest struct {
	ContactID int64         `json:"contactId"`
	Action    ContactAction `json:"action"`
}

func (c *Client) ResolveUsers(ctx context.Context, userIDs ...int64) (json.RawMessage, error) {
	return c.invoke(ctx, "client.ResolveUsers", OpContactsResolve, resolveUsersRequest{ContactIDs: emptied(userIDs)})
}

func (c *Client) AddContact(ctx context.Context, userID int64) (json.RawMessage, error) {
	return c.invoke(ctx, "client.AddContact", OpContactUpdate, contactRequest{ContactID: userID, Action: ContactAdd})
}

func (c *Client) Block(ctx context.Context, userID int64) (json.RawMessage, error) {
	return c.invoke(ctx, "client.Block", OpContactUpdate, contactRequest{ContactID: userID, Action: ContactBlock})
}
