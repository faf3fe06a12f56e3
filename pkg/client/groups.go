package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	maxapi "github.com/roboricindustries/maxwire/pkg/schemas/max/v1"
)

var ErrNoChanges = errors.New("nothing to change")

const inviteLinkPrefix = "join/"

// AdminRights are the optional powers granted on top of the base admin
// permissions.
type AdminRights struct {
	DeleteMessages bool
	ManageMembers  bool
	ManageAdmins   bool
}

// Mask returns the permission bits the service expects: 120 for a bare
// admin, 255 with every right.
func (r AdminRights) Mask() int {
	mask := 120
	if r.DeleteMessages {
		mask |= 1
	}
	if r.ManageAdmins {
		mask |= 4
	}
	if r.ManageMembers {
		mask |= 130
	}
	return mask
}

type membersOperation string

const (
	opAdd    membersOperation = "add"
	opRemove membersOperation = "remove"
)

type membersRequest struct {
	ChatID         int64            `json:"chatId"`
	UserIDs        []int64          `json:"userIds"`
	Type           string           `json:"type,omitempty"`
	Operation      membersOperation `json:"operation"`
	ShowHistory    *bool            `json:"showHistory,omitempty"`
	CleanMsgPeriod *int             `json:"cleanMsgPeriod,omitempty"`
	Permissions    *int             `json:"permissions,omitempty"`
}

type ownerRequest struct {
	ChatID        int64 `json:"chatId"`
	ChangeOwnerID int64 `json:"changeOwnerId"`
}

// GroupSettings is sent whole; every flag is written.
type GroupSettings struct {
	OnlyOwnerCanChangeIconTitle bool `json:"ONLY_OWNER_CAN_CHANGE_ICON_TITLE"`
	AllCanPinMessage            bool `json:"ALL_CAN_PIN_MESSAGE"`
	OnlyAdminCanAddMember       bool `json:"ONLY_ADMIN_CAN_ADD_MEMBER"`
}

// DefaultGroupSettings matches a freshly created group.
var DefaultGroupSettings = GroupSettings{
	OnlyOwnerCanChangeIconTitle: true,
	OnlyAdminCanAddMember:       true,
}

type groupOptionsRequest struct {
	ChatID  int64         `json:"chatId"`
	Options GroupSettings `json:"options"`
}

type groupProfileRequest struct {
	ChatID      int64   `json:"chatId"`
	Theme       *string `json:"theme,omitempty"`
	Description *string `json:"description,omitempty"`
}

type listMembersRequest struct {
	Type   string `json:"type"`
	Marker int64  `json:"marker"`
	ChatID int64  `json:"chatId"`
	Count  int    `json:"count"`
}

type subscribeRequest struct {
	ChatID    int64 `json:"chatId"`
	Subscribe bool  `json:"subscribe"`
}

type historyRequest struct {
	ChatID      int64 `json:"chatId"`
	From        int64 `json:"from"`
	Forward     int   `json:"forward"`
	Backward    int   `json:"backward"`
	GetMessages bool  `json:"getMessages"`
}

func (c *Client) CreateGroup(ctx context.Context, title string, userIDs []int64) (json.RawMessage, error) {
	kind := maxapi.ChatGroup
	notify := true
	return c.invoke(ctx, "client.CreateGroup", OpMessageSend, createRequest{
		Message: controlMessage{
			CID: c.cid(),
			Attaches: []maxapi.Attachment{maxapi.ControlAttachment{
				Event:    "new",
				Title:    &title,
				ChatType: &kind,
				UserIDs:  userIDs,
			}},
		},
		Notify: &notify,
	})
}

func (c *Client) InviteUsers(ctx context.Context, groupID int64, userIDs []int64, showHistory bool) (json.RawMessage, error) {
	return c.invoke(ctx, "client.InviteUsers", OpMembersUpdate, membersRequest{
		ChatID:      groupID,
		UserIDs:     emptied(userIDs),
		Operation:   opAdd,
		ShowHistory: &showHistory,
	})
}

// RemoveUsers removes members, wiping their messages when deleteMessages
// is set.
func (c *Client) RemoveUsers(ctx context.Context, groupID int64, userIDs []int64, deleteMessages bool) (json.RawMessage, error) {
	period := 0
	if deleteMessages {
		period = -1
	}
	return c.invoke(ctx, "client.RemoveUsers", OpMembersUpdate, membersRequest{
		ChatID:         groupID,
		UserIDs:        emptied(userIDs),
		Operation:      opRemove,
		CleanMsgPeriod: &period,
	})
}

func (c *Client) AddAdmins(ctx context.Context, groupID int64, userIDs []int64, rights AdminRights) (json.RawMessage, error) {
	mask := rights.Mask()
	return c.invoke(ctx, "client.AddAdmins", OpMembersUpdate, membersRequest{
		ChatID:      groupID,
		UserIDs:     emptied(userIDs),
		Type:        "ADMIN",
		Operation:   opAdd,
		Permissions: &mask,
	})
}

func (c *Client) RemoveAdmins(ctx context.Context, groupID int64, userIDs []int64) (json.RawMessage, error) {
	return c.invoke(ctx, "client.RemoveAdmins", OpMembersUpdate, membersRequest{
		ChatID:    groupID,
		UserIDs:   emptied(userIDs),
		Type:      "ADMIN",
		Operation: opRemove,
	})
}

func (c *Client) TransferOwnership(ctx context.Context, groupID, newOwnerID int64) (json.RawMessage, error) {
	return c.invoke(ctx, "client.TransferOwnership", OpChatUpdate, ownerRequest{ChatID: groupID, ChangeOwnerID: newOwnerID})
}

func (c *Client) ChangeGroupSettings(ctx context.Context, groupID int64, s GroupSettings) (json.RawMessage, error) {
	return c.invoke(ctx, "client.ChangeGroupSettings", OpChatUpdate, groupOptionsRequest{ChatID: groupID, Options: s})
}

// ChangeGroupProfile renames the group, rewrites its description, or both.
// Nil arguments are left unchanged.
func (c *Client) ChangeGroupProfile(ctx context.Context, groupID int64, title, description *string) (json.RawMessage, error) {
	if title == nil && description == nil {
		return nil, fmt.Errorf("client.ChangeGroupProfile: %w", ErrNoChanges)
	}
	return c.invoke(ctx, "client.ChangeGroupProfile", OpChatUpdate, groupProfileRequest{
		ChatID:      groupID,
		Theme:       title,
		Description: description,
	})
}

// GroupMembers lists one page of members starting after the marker user
// id. A count of zero asks for a full page.
func (c *Client) GroupMembers(ctx context.Context, groupID, marker int64, count int) (json.RawMessage, error) {
	const op = "client.GroupMembers"
	if count > MaxMembersPage {
		return nil, fmt.Errorf("%s: %d: %w", op, count, ErrPageTooLarge)
	}
	if count <= 0 {
		count = MaxMembersPage
	}
	return c.invoke(ctx, op, OpChatMembers, listMembersRequest{
		Type:   "MEMBER",
		Marker: marker,
		ChatID: groupID,
		Count:  count,
	})
}

func (c *Client) ResolveGroupLink(ctx context.Context, hash string) (json.RawMessage, error) {
	return c.invoke(ctx, "client.ResolveGroupLink", OpLinkResolve, linkRequest{Link: inviteLinkPrefix + hash})
}

type joinedChat struct {
	Chat *struct {
		ID  int64 `json:"id"`
		CID int64 `json:"cid"`
	} `json:"chat"`
}

// JoinGroupLink joins a group by its invite hash, subscribes to its
// updates and loads the latest history. It returns the join response.
func (c *Client) JoinGroupLink(ctx context.Context, hash string) (json.RawMessage, error) {
	const op = "client.JoinGroupLink"
	resp, err := c.invoke(ctx, op, OpChatJoin, linkRequest{Link: inviteLinkPrefix + hash})
	if err != nil {
		return nil, err
	}
	var joined joinedChat
	if len(resp) > 0 {
		if err := json.Unmarshal(resp, &joined); err != nil {
			return nil, fmt.Errorf("%s: decode join response: %w", op, err)
		}
	}
	if joined.Chat == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}

	if _, err := c.invoke(ctx, op, OpChatSubscribe, subscribeRequest{ChatID: joined.Chat.ID, Subscribe: true}); err != nil {
		return nil, err
	}
	if _, err := c.invoke(ctx, op, OpChatHistory, historyRequest{
		ChatID:      joined.Chat.ID,
		From:        joined.Chat.CID,
		Backward:    30,
		GetMessages: true,
	}); err != nil {
		return nil, err
	}
	return resp, nil
}
