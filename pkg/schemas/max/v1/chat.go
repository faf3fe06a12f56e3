package maxapi

import "encoding/json"

// Chat is a snapshot of a dialog, group or channel. Participants and
// AdminParticipants are keyed by user id in decimal.
type Chat struct {
	ID           int64            `json:"id"`
	CID          int64            `json:"cid"`
	Type         ChatType         `json:"type"`
	Status       string           `json:"status"`
	Owner        int64            `json:"owner"`
	Participants map[string]int64 `json:"participants"` // user id -> join time
	Created      int64            `json:"created"`
	Modified     int64            `json:"modified"`

	Title                    *string                     `json:"title,omitempty"`
	ParticipantsCount        *int                        `json:"participantsCount,omitempty"`
	Access                   *ChatAccess                 `json:"access,omitempty"`
	AdminParticipants        map[string]AdminParticipant `json:"adminParticipants,omitempty"`
	Admins                   []int64                     `json:"admins,omitempty"`
	Options                  *ChatOptions                `json:"options,omitempty"`
	LastMessage              Message                     `json:"lastMessage,omitempty"`
	PinnedMessage            Message                     `json:"pinnedMessage,omitempty"`
	LastEventTime            *int64                      `json:"lastEventTime,omitempty"`
	JoinTime                 *int64                      `json:"joinTime,omitempty"`
	Reactions                *ChatReactions              `json:"reactions,omitempty"`
	MessagesCount            *int                        `json:"messagesCount,omitempty"`
	LastFireDelayedErrorTime *int64                      `json:"lastFireDelayedErrorTime,omitempty"`
	LastDelayedUpdateTime    *int64                      `json:"lastDelayedUpdateTime,omitempty"`
}

// AdminParticipant carries the permission bitmask of one admin.
type AdminParticipant struct {
	Permissions int   `json:"permissions"`
	ID          int64 `json:"id"`
}

type ChatReactions struct {
	IsActive   bool  `json:"isActive"`
	UpdateTime int64 `json:"updateTime"`
}

// ChatOptions are the chat flags. The wire spells them in upper snake
// case and leaves out the ones that are off.
type ChatOptions struct {
	SignAdmin                   bool `json:"SIGN_ADMIN,omitempty"`
	Official                    bool `json:"OFFICIAL,omitempty"`
	MessageCopyNotAllowed       bool `json:"MESSAGE_COPY_NOT_ALLOWED,omitempty"`
	OnlyOwnerCanChangeIconTitle bool `json:"ONLY_OWNER_CAN_CHANGE_ICON_TITLE,omitempty"`
	OnlyAdminCanAddMember       bool `json:"ONLY_ADMIN_CAN_ADD_MEMBER,omitempty"`
	OnlyAdminCanCall            bool `json:"ONLY_ADMIN_CAN_CALL,omitempty"`
	MembersCanSeePrivateLink    bool `json:"MEMBERS_CAN_SEE_PRIVATE_LINK,omitempty"`
	SentByPhone                 bool `json:"SENT_BY_PHONE,omitempty"`
	APlusChannel                bool `json:"A_PLUS_CHANNEL,omitempty"`
	AllCanPinMessage            bool `json:"ALL_CAN_PIN_MESSAGE,omitempty"`
}

var (
	chatShape          = shapeOf[Chat]("Chat", camelCase)
	adminShape         = shapeOf[AdminParticipant]("AdminParticipant", camelCase)
	chatReactionsShape = shapeOf[ChatReactions]("ChatReactions", camelCase)
	chatOptionsShape   = shapeOf[ChatOptions]("ChatOptions", screamingSnake)
)

func (c *Chat) UnmarshalJSON(data []byte) error {
	type wire Chat
	var aux struct {
		*wire
		LastMessage   json.RawMessage `json:"lastMessage"`
		PinnedMessage json.RawMessage `json:"pinnedMessage"`
	}
	aux.wire = (*wire)(c)
	if err := chatShape.decode(data, &aux); err != nil {
		return err
	}
	last, err := decodeMessage(aux.LastMessage)
	if err != nil {
		return err
	}
	pinned, err := decodeMessage(aux.PinnedMessage)
	if err != nil {
		return err
	}
	c.LastMessage, c.PinnedMessage = last, pinned
	return nil
}

func (a *AdminParticipant) UnmarshalJSON(data []byte) error {
	type wire AdminParticipant
	return adminShape.decode(data, (*wire)(a))
}

func (r *ChatReactions) UnmarshalJSON(data []byte) error {
	type wire ChatReactions
	return chatReactionsShape.decode(data, (*wire)(r))
}

func (o *ChatOptions) UnmarshalJSON(data []byte) error {
	type wire ChatOptions
	return chatOptionsShape.decode(data, (*wire)(o))
}
