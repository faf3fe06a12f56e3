package maxapi

import (
	"encoding/json"
	"fmt"
)

// Message is a UserMessage or a ChannelMessage, tagged on the wire by type.
type Message interface {
	Type() MessageType
	Base() MessageBase
	isMessage()
}

// MessageBase holds the fields both message kinds share.
type MessageBase struct {
	MessageID         string             `json:"id"`
	Timestamp         int64              `json:"time"`
	Text              string             `json:"text"`
	Attaches          Attachments        `json:"attaches"`
	Elements          Elements           `json:"elements,omitempty"`
	Link              *Link              `json:"link,omitempty"`
	ReactionInfo      *ReactionInfo      `json:"reactionInfo,omitempty"`
	Status            *MessageStatus     `json:"status,omitempty"`
	Stats             *Stats             `json:"stats,omitempty"`
	UpdateTime        *int64             `json:"updateTime,omitempty"`
	Options           *int               `json:"options,omitempty"`
	CID               *int64             `json:"cid,omitempty"`
	DelayedAttributes *DelayedAttributes `json:"delayedAttributes,omitempty"`
}

type UserMessage struct {
	Sender int64 `json:"sender"`
	MessageBase
}

// ChannelMessage has no sender when posted on behalf of the channel.
type ChannelMessage struct {
	Sender *int64 `json:"sender,omitempty"`
	MessageBase
}

func (UserMessage) Type() MessageType    { return MessageTypeUser }
func (ChannelMessage) Type() MessageType { return MessageTypeChannel }

func (m UserMessage) Base() MessageBase    { return m.MessageBase }
func (m ChannelMessage) Base() MessageBase { return m.MessageBase }

func (UserMessage) isMessage()    {}
func (ChannelMessage) isMessage() {}

// Link points at a replied or forwarded message. Message is a copy.
type Link struct {
	LinkType       LinkType    `json:"type"`
	Message        Message     `json:"message"`
	ChatID         int64       `json:"chatId"`
	ChatAccessType *ChatAccess `json:"chatAccessType,omitempty"` // forwards from channels
	ChatIconURL    *string     `json:"chatIconUrl,omitempty"`
	ChatLink       *string     `json:"chatLink,omitempty"`
	ChatName       *string     `json:"chatName,omitempty"`
	ContentLevel   *bool       `json:"contentLevel,omitempty"`
}

type Stats struct {
	Views int `json:"views"`
}

type ReactionInfo struct {
	TotalCount   int               `json:"totalCount"`
	Counters     []ReactionCounter `json:"counters,omitempty"`
	YourReaction *string           `json:"yourReaction,omitempty"`
}

type ReactionCounter struct {
	Reaction string `json:"reaction"`
	Count    int    `json:"count"`
}

// DelayedAttributes marks a scheduled message.
type DelayedAttributes struct {
	TimeToFire int64 `json:"timeToFire"`
	Notify     *bool `json:"notify,omitempty"`
}

var (
	messageShape         = unionShape("Message")
	userMessageShape     = shapeOf[UserMessage]("UserMessage", camelCase)
	channelMessageShape  = shapeOf[ChannelMessage]("ChannelMessage", camelCase)
	linkShape            = shapeOf[Link]("Link", camelCase)
	statsShape           = shapeOf[Stats]("Stats", camelCase)
	reactionInfoShape    = shapeOf[ReactionInfo]("ReactionInfo", camelCase)
	reactionCounterShape = shapeOf[ReactionCounter]("ReactionCounter", camelCase)
	delayedShape         = shapeOf[DelayedAttributes]("DelayedAttributes", camelCase)
)

// decodeMessage decodes a tagged message. A null or missing message is nil;
// callers that require one check presence first.
func decodeMessage(raw json.RawMessage) (Message, error) {
	if isNull(raw) {
		return nil, nil
	}
	obj, err := messageShape.object(raw)
	if err != nil {
		return nil, err
	}
	kind, err := messageShape.key(obj, "type")
	if err != nil {
		return nil, err
	}
	switch MessageType(kind) {
	case MessageTypeUser:
		var m UserMessage
		err = m.UnmarshalJSON(raw)
		return m, err
	case MessageTypeChannel:
		var m ChannelMessage
		err = m.UnmarshalJSON(raw)
		return m, err
	}
	return nil, &DecodeError{
		Kind:  ShapeMismatch,
		Type:  messageShape.name,
		Field: "type",
		Err:   fmt.Errorf("unknown message type %q", kind),
	}
}

func (m UserMessage) MarshalJSON() ([]byte, error) {
	type wire UserMessage
	return marshalTagged("type", string(MessageTypeUser), wire(m))
}

func (m *UserMessage) UnmarshalJSON(data []byte) error {
	type wire UserMessage
	return userMessageShape.decode(data, (*wire)(m))
}

func (m ChannelMessage) MarshalJSON() ([]byte, error) {
	type wire ChannelMessage
	return marshalTagged("type", string(MessageTypeChannel), wire(m))
}

func (m *ChannelMessage) UnmarshalJSON(data []byte) error {
	type wire ChannelMessage
	return channelMessageShape.decode(data, (*wire)(m))
}

func (l *Link) UnmarshalJSON(data []byte) error {
	type wire Link
	var aux struct {
		*wire
		Message json.RawMessage `json:"message"`
	}
	aux.wire = (*wire)(l)
	if err := linkShape.decode(data, &aux); err != nil {
		return err
	}
	msg, err := decodeMessage(aux.Message)
	if err != nil {
		return err
	}
	l.Message = msg
	return nil
}

func (s *Stats) UnmarshalJSON(data []byte) error {
	type wire Stats
	return statsShape.decode(data, (*wire)(s))
}

func (r *ReactionInfo) UnmarshalJSON(data []byte) error {
	type wire ReactionInfo
	return reactionInfoShape.decode(data, (*wire)(r))
}

func (r *ReactionCounter) UnmarshalJSON(data []byte) error {
	type wire ReactionCounter
	return reactionCounterShape.decode(data, (*wire)(r))
}

func (d *DelayedAttributes) UnmarshalJSON(data []byte) error {
	type wire DelayedAttributes
	return delayedShape.decode(data, (*wire)(d))
}
