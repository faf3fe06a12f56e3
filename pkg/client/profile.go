package client

import (
	"context"
	"encoding/json"
)

// Audience answers who may do something to the account.
type Audience string

const (
	AudienceAll      Audience = "ALL"
	AudienceContacts Audience = "CONTACTS"
)

func audience(everyone bool) Audience {
	if everyone {
		return AudienceAll
	}
	return AudienceContacts
}

// UserSettings is a partial update of the account privacy settings.
// Nil fields are left unchanged.
type UserSettings struct {
	Hidden        *bool     `json:"HIDDEN,omitempty"`
	SearchByPhone *Audience `json:"SEARCH_BY_PHONE,omitempty"`
	IncomingCall  *Audience `json:"INCOMING_CALL,omitempty"`
	ChatsInvite   *Audience `json:"CHATS_INVITE,omitempty"`
}

type chatSettings struct {
	DontDisturbUntil int64 `json:"dontDisturbUntil"`
}

type settings struct {
	User  *UserSettings           `json:"user,omitempty"`
	Chats map[string]chatSettings `json:"chats,omitempty"`
}

type settingsRequest struct {
	Settings settings `json:"settings"`
}

// profileRequest is sent whole: a nil field is written as null.
type profileRequest struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Description *string `json:"description"`
}

func (c *Client) UpdateSettings(ctx context.Context, s UserSettings) (json.RawMessage, error) {
	return c.invoke(ctx, "client.UpdateSettings", OpSettingsUpdate, settingsRequest{Settings: settings{User: &s}})
}

// SetOnlineHidden hides or shows the last-online status.
func (c *Client) SetOnlineHidden(ctx context.Context, hidden bool) (json.RawMessage, error) {
	return c.UpdateSettings(ctx, UserSettings{Hidden: &hidden})
}

func (c *Client) SetFindableByPhone(ctx context.Context, everyone bool) (json.RawMessage, error) {
	a := audience(everyone)
	return c.UpdateSettings(ctx, UserSettings{SearchByPhone: &a})
}

func (c *Client) SetCallsPrivacy(ctx context.Context, everyone bool) (json.RawMessage, error) {
	a := audience(everyone)
	return c.UpdateSettings(ctx, UserSettings{IncomingCall: &a})
}

func (c *Client) SetInvitePrivacy(ctx context.Context, everyone bool) (json.RawMessage, error) {
	a := audience(everyone)
	return c.UpdateSettings(ctx, UserSettings{ChatsInvite: &a})
}

// ChangeProfile replaces the public profile. The service clears every
// field passed as nil.
func (c *Client) ChangeProfile(ctx context.Context, firstName, lastName, description *string) (json.RawMessage, error) {
	return c.invoke(ctx, "client.ChangeProfile", OpProfileUpdate, profileRequest{
		FirstName:   firstName,
		LastName:    lastName,
		Description: description,
	})
}
