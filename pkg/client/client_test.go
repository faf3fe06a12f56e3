package client

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	opcode  int
	payload string
}

// recorder answers every request with the queued responses in order and
// keeps the encoded payloads.
type recorder struct {
	calls     []call
	responses []json.RawMessage
	err       error
}

func (r *recorder) Invoke(_ context.Context, opcode int, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	r.calls = append(r.calls, call{opcode: opcode, payload: string(body)})
	if r.err != nil {
		return nil, r.err
	}
	if len(r.responses) == 0 {
		return json.RawMessage(`{}`), nil
	}
	resp := r.responses[0]
	r.responses = r.responses[1:]
	return resp, nil
}

func newTestClient(r *recorder) *Client {
	c := New(r, nil)
	c.cid = func() int64 { return 1800000000000 }
	return c
}

func str(s string) *string { return &s }

func TestRequests(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		do      func(c *Client) (json.RawMessage, error)
		opcodes []int
		want    []string
	}{
		{
			name: "send",
			do: func(c *Client) (json.RawMessage, error) {
				return c.SendMessage(ctx, 7, "hi", SendOptions{})
			},
			opcodes: []int{64},
			want:    []string{`{"chatId":7,"message":{"text":"hi","cid":1800000000000,"elements":[],"attaches":[]},"notify":true}`},
		},
		{
			name: "reply silently",
			do: func(c *Client) (json.RawMessage, error) {
				return c.SendMessage(ctx, 7, "hi", SendOptions{ReplyTo: "42", Silent: true})
			},
			opcodes: []int{64},
			want:    []string{`{"chatId":7,"message":{"text":"hi","cid":1800000000000,"elements":[],"link":{"type":"REPLY","messageId":"42"},"attaches":[]},"notify":false}`},
		},
		{
			name: "markup",
			do: func(c *Client) (json.RawMessage, error) {
				return c.SendMarkup(ctx, 7, "<b>Hi</b> <a href=\"https://x\">there</a>", SendOptions{})
			},
			opcodes: []int{64},
			want: []string{`{"chatId":7,"message":{"text":"Hi there","cid":1800000000000,"elements":[
				{"type":"STRONG","length":2},
				{"type":"LINK","from":3,"length":5,"attributes":{"url":"https://x"}}],"attaches":[]},"notify":true}`},
		},
		{
			name: "edit",
			do: func(c *Client) (json.RawMessage, error) {
				return c.EditMessage(ctx, 7, "42", "new", nil, nil)
			},
			opcodes: []int{67},
			want:    []string{`{"chatId":7,"messageId":"42","text":"new","elements":[],"attachments":[]}`},
		},
		{
			name: "delete",
			do: func(c *Client) (json.RawMessage, error) {
				return c.DeleteMessages(ctx, 7, []string{"1", "2"}, true)
			},
			opcodes: []int{66},
			want:    []string{`{"chatId":7,"messageIds":["1","2"],"forMe":true}`},
		},
		{
			name: "pin",
			do: func(c *Client) (json.RawMessage, error) {
				return c.PinMessage(ctx, 7, "42", false)
			},
			opcodes: []int{55},
			want:    []string{`{"chatId":7,"notifyPin":false,"messageId":"42"}`},
		},
		{
			name: "react",
			do: func(c *Client) (json.RawMessage, error) {
				return c.React(ctx, 7, "42", "👍")
			},
			opcodes: []int{178, 181},
			want: []string{
				`{"chatId":7,"messageId":"42","reaction":{"reactionType":"EMOJI","id":"👍"}}`,
				`{"chatId":7,"messageId":"42","count":100}`,
			},
		},
		{
			name: "resolve users",
			do: func(c *Client) (json.RawMessage, error) {
				return c.ResolveUsers(ctx, 1, 2)
			},
			opcodes: []int{32},
			want:    []string{`{"contactIds":[1,2]}`},
		},
		{
			name: "block",
			do: func(c *Client) (json.RawMessage, error) {
				return c.Block(ctx, 5)
			},
			opcodes: []int{34},
			want:    []string{`{"contactId":5,"action":"BLOCK"}`},
		},
		{
			name: "add contact",
			do: func(c *Client) (json.RawMessage, error) {
				return c.AddContact(ctx, 5)
			},
			opcodes: []int{34},
			want:    []string{`{"contactId":5,"action":"ADD"}`},
		},
		{
			name: "resolve channel",
			do: func(c *Client) (json.RawMessage, error) {
				return c.ResolveChannel(ctx, "news")
			},
			opcodes: []int{89},
			want:    []string{`{"link":"https://max.ru/news"}`},
		},
		{
			name: "resolve channel id",
			do: func(c *Client) (json.RawMessage, error) {
				return c.ResolveChannelID(ctx, -99)
			},
			opcodes: []int{48},
			want:    []string{`{"chatIds":[-99]}`},
		},
		{
			name: "join channel",
			do: func(c *Client) (json.RawMessage, error) {
				return c.JoinChannel(ctx, "news")
			},
			opcodes: []int{57},
			want:    []string{`{"link":"https://max.ru/news"}`},
		},
		{
			name: "create channel",
			do: func(c *Client) (json.RawMessage, error) {
				return c.CreateChannel(ctx, "News")
			},
			opcodes: []int{64},
			want:    []string{`{"message":{"cid":1800000000000,"attaches":[{"_type":"CONTROL","event":"new","title":"News","chatType":"CHANNEL"}],"text":""}}`},
		},
		{
			name: "mute channel",
			do: func(c *Client) (json.RawMessage, error) {
				return c.MuteChannel(ctx, -99, true)
			},
			opcodes: []int{22},
			want:    []string{`{"settings":{"chats":{"-99":{"dontDisturbUntil":-1}}}}`},
		},
		{
			name: "unmute channel",
			do: func(c *Client) (json.RawMessage, error) {
				return c.MuteChannel(ctx, -99, false)
			},
			opcodes: []int{22},
			want:    []string{`{"settings":{"chats":{"-99":{"dontDisturbUntil":0}}}}`},
		},
		{
			name: "create group",
			do: func(c *Client) (json.RawMessage, error) {
				return c.CreateGroup(ctx, "Team", []int64{1, 2})
			},
			opcodes: []int{64},
			want:    []string{`{"message":{"cid":1800000000000,"attaches":[{"_type":"CONTROL","event":"new","title":"Team","chatType":"CHAT","userIds":[1,2]}]},"notify":true}`},
		},
		{
			name: "invite",
			do: func(c *Client) (json.RawMessage, error) {
				return c.InviteUsers(ctx, 3, []int64{1}, true)
			},
			opcodes: []int{77},
			want:    []string{`{"chatId":3,"userIds":[1],"operation":"add","showHistory":true}`},
		},
		{
			name: "remove wiping messages",
			do: func(c *Client) (json.RawMessage, error) {
				return c.RemoveUsers(ctx, 3, []int64{1}, true)
			},
			opcodes: []int{77},
			want:    []string{`{"chatId":3,"userIds":[1],"operation":"remove","cleanMsgPeriod":-1}`},
		},
		{
			name: "remove keeping messages",
			do: func(c *Client) (json.RawMessage, error) {
				return c.RemoveUsers(ctx, 3, []int64{1}, false)
			},
			opcodes: []int{77},
			want:    []string{`{"chatId":3,"userIds":[1],"operation":"remove","cleanMsgPeriod":0}`},
		},
		{
			name: "add admins",
			do: func(c *Client) (json.RawMessage, error) {
				return c.AddAdmins(ctx, 3, []int64{1}, AdminRights{DeleteMessages: true})
			},
			opcodes: []int{77},
			want:    []string{`{"chatId":3,"userIds":[1],"type":"ADMIN","operation":"add","permissions":121}`},
		},
		{
			name: "remove admins",
			do: func(c *Client) (json.RawMessage, error) {
				return c.RemoveAdmins(ctx, 3, []int64{1})
			},
			opcodes: []int{77},
			want:    []string{`{"chatId":3,"userIds":[1],"type":"ADMIN","operation":"remove"}`},
		},
		{
			name: "transfer ownership",
			do: func(c *Client) (json.RawMessage, error) {
				return c.TransferOwnership(ctx, 3, 9)
			},
			opcodes: []int{55},
			want:    []string{`{"chatId":3,"changeOwnerId":9}`},
		},
		{
			name: "group settings",
			do: func(c *Client) (json.RawMessage, error) {
				return c.ChangeGroupSettings(ctx, 3, DefaultGroupSettings)
			},
			opcodes: []int{55},
			want:    []string{`{"chatId":3,"options":{"ONLY_OWNER_CAN_CHANGE_ICON_TITLE":true,"ALL_CAN_PIN_MESSAGE":false,"ONLY_ADMIN_CAN_ADD_MEMBER":true}}`},
		},
		{
			name: "group profile",
			do: func(c *Client) (json.RawMessage, error) {
				return c.ChangeGroupProfile(ctx, 3, str("Team"), nil)
			},
			opcodes: []int{55},
			want:    []string{`{"chatId":3,"theme":"Team"}`},
		},
		{
			name: "members default page",
			do: func(c *Client) (json.RawMessage, error) {
				return c.GroupMembers(ctx, 3, 0, 0)
			},
			opcodes: []int{59},
			want:    []string{`{"type":"MEMBER","marker":0,"chatId":3,"count":500}`},
		},
		{
			name: "resolve group link",
			do: func(c *Client) (json.RawMessage, error) {
				return c.ResolveGroupLink(ctx, "abc")
			},
			opcodes: []int{89},
			want:    []string{`{"link":"join/abc"}`},
		},
		{
			name: "online hidden",
			do: func(c *Client) (json.RawMessage, error) {
				return c.SetOnlineHidden(ctx, true)
			},
			opcodes: []int{22},
			want:    []string{`{"settings":{"user":{"HIDDEN":true}}}`},
		},
		{
			name: "findable by contacts only",
			do: func(c *Client) (json.RawMessage, error) {
				return c.SetFindableByPhone(ctx, false)
			},
			opcodes: []int{22},
			want:    []string{`{"settings":{"user":{"SEARCH_BY_PHONE":"CONTACTS"}}}`},
		},
		{
			name: "calls from everyone",
			do: func(c *Client) (json.RawMessage, error) {
				return c.SetCallsPrivacy(ctx, true)
			},
			opcodes: []int{22},
			want:    []string{`{"settings":{"user":{"INCOMING_CALL":"ALL"}}}`},
		},
		{
			name: "invites from contacts",
			do: func(c *Client) (json.RawMessage, error) {
				return c.SetInvitePrivacy(ctx, false)
			},
			opcodes: []int{22},
			want:    []string{`{"settings":{"user":{"CHATS_INVITE":"CONTACTS"}}}`},
		},
		{
			name: "profile keeps nulls",
			do: func(c *Client) (json.RawMessage, error) {
				return c.ChangeProfile(ctx, str("Ann"), nil, nil)
			},
			opcodes: []int{16},
			want:    []string{`{"firstName":"Ann","lastName":null,"description":null}`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			_, err := tt.do(newTestClient(r))
			require.NoError(t, err)
			require.Len(t, r.calls, len(tt.want))
			for i, want := range tt.want {
				assert.Equal(t, tt.opcodes[i], r.calls[i].opcode)
				assert.JSONEq(t, want, r.calls[i].payload)
			}
		})
	}
}

func TestAdminRightsMask(t *testing.T) {
	tests := []struct {
		rights AdminRights
		want   int
	}{
		{AdminRights{}, 120},
		{AdminRights{DeleteMessages: true}, 121},
		{AdminRights{ManageAdmins: true}, 124},
		{AdminRights{DeleteMessages: true, ManageAdmins: true}, 125},
		{AdminRights{ManageMembers: true}, 250},
		{AdminRights{DeleteMessages: true, ManageMembers: true}, 251},
		{AdminRights{ManageMembers: true, ManageAdmins: true}, 254},
		{AdminRights{DeleteMessages: true, ManageMembers: true, ManageAdmins: true}, 255},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.rights.Mask(), "%+v", tt.rights)
	}
}

func TestGroupMembersPageCap(t *testing.T) {
	r := &recorder{}
	_, err := newTestClient(r).GroupMembers(context.Background(), 3, 0, 501)
	require.ErrorIs(t, err, ErrPageTooLarge)
	assert.Empty(t, r.calls)
}

func TestChangeGroupProfileNeedsAField(t *testing.T) {
	r := &recorder{}
	_, err := newTestClient(r).ChangeGroupProfile(context.Background(), 3, nil, nil)
	require.ErrorIs(t, err, ErrNoChanges)
	assert.Empty(t, r.calls)
}

func TestJoinGroupLink(t *testing.T) {
	joined := json.RawMessage(`{"chat":{"id":12,"cid":345,"title":"Team"}}`)
	r := &recorder{responses: []json.RawMessage{joined}}

	resp, err := newTestClient(r).JoinGroupLink(context.Background(), "abc")
	require.NoError(t, err)
	assert.JSONEq(t, string(joined), string(resp))

	require.Len(t, r.calls, 3)
	assert.Equal(t, OpChatJoin, r.calls[0].opcode)
	assert.JSONEq(t, `{"link":"join/abc"}`, r.calls[0].payload)
	assert.Equal(t, OpChatSubscribe, r.calls[1].opcode)
	assert.JSONEq(t, `{"chatId":12,"subscribe":true}`, r.calls[1].payload)
	assert.Equal(t, OpChatHistory, r.calls[2].opcode)
	assert.JSONEq(t, `{"chatId":12,"from":345,"forward":0,"backward":30,"getMessages":true}`, r.calls[2].payload)
}

func TestJoinGroupLinkEmptyResponse(t *testing.T) {
	for _, resp := range []string{`null`, `{}`} {
		r := &recorder{responses: []json.RawMessage{json.RawMessage(resp)}}
		_, err := newTestClient(r).JoinGroupLink(context.Background(), "abc")
		require.ErrorIs(t, err, ErrEmptyResponse, resp)
		assert.Len(t, r.calls, 1)
	}
}

func TestInvokeErrorsAreWrapped(t *testing.T) {
	boom := errors.New("socket closed")
	r := &recorder{err: boom}
	_, err := newTestClient(r).React(context.Background(), 1, "2", "🔥")
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "client.React: opcode 178")
	assert.Len(t, r.calls, 1)
}

func TestRandomCID(t *testing.T) {
	for range 100 {
		cid := randomCID()
		assert.GreaterOrEqual(t, cid, int64(1_750_000_000_000))
		assert.LessOrEqual(t, cid, int64(2_000_000_000_000))
	}
}

func TestInvokerFunc(t *testing.T) {
	var got int
	c := New(InvokerFunc(func(_ context.Context, opcode int, _ any) (json.RawMessage, error) {
		got = opcode
		return json.RawMessage(`{"ok":true}`), nil
	}), nil)
	resp, err := c.ResolveChannelID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, OpChatsResolve, got)
	assert.JSONEq(t, `{"ok":true}`, string(resp))
}
