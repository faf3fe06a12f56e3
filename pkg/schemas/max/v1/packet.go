package maxapi

import "encoding/json"

// Packet is one frame exchanged with the service.
type Packet struct {
	ProtocolVersion int     `json:"ver"`
	CommandKind     int     `json:"cmd"`
	Sequence        int     `json:"seq"`
	Opcode          int     `json:"opcode"`
	Payload         Payload `json:"payload"`
}

// Payload is one of NormalPayload, DeletedPayload, ChatPayload or
// EditedPayload. The wire carries no tag for it; see Discriminate.
type Payload interface {
	Kind() PayloadKind
	isPayload()
}

// NormalPayload carries a new message. Chat is set for pin events.
type NormalPayload struct {
	Message               Message `json:"message"`
	ChatID                int64   `json:"chatId"`
	Unread                *int    `json:"unread,omitempty"`
	Mark                  *int64  `json:"mark,omitempty"`
	TTL                   *bool   `json:"ttl,omitempty"`
	PrevMessageID         *string `json:"prevMessageId,omitempty"` // dialogs only
	LastDelayedUpdateTime *int64  `json:"lastDelayedUpdateTime,omitempty"`
	UpdateTypeID          *int    `json:"updateTypeId,omitempty"`
	UserID                *int64  `json:"userId,omitempty"`
	Chat                  *Chat   `json:"chat,omitempty"`
}

type DeletedPayload struct {
	ChatID     int64    `json:"chatId"`
	MessageIDs []string `json:"messageIds"`
}

// ChatPayload carries a full chat snapshot, optionally with the message
// that caused it.
type ChatPayload struct {
	Chat          Chat    `json:"chat"`
	Message       Message `json:"message,omitempty"`
	ChatID        *int64  `json:"chatId,omitempty"`
	Mark          *int64  `json:"mark,omitempty"`
	PrevMessageID *string `json:"prevMessageId,omitempty"`
	TTL           *bool   `json:"ttl,omitempty"`
	Unread        *int    `json:"unread,omitempty"`
}

type EditedPayload struct {
	Message Message `json:"message"`
}

func (NormalPayload) Kind() PayloadKind  { return KindNormal }
func (DeletedPayload) Kind() PayloadKind { return KindDeleted }
func (ChatPayload) Kind() PayloadKind    { return KindChat }
func (EditedPayload) Kind() PayloadKind  { return KindEdited }

func (NormalPayload) isPayload()  {}
func (DeletedPayload) isPayload() {}
func (ChatPayload) isPayload()    {}
func (EditedPayload) isPayload()  {}

var (
	packetShape        = shapeOf[Packet]("Packet", camelCase).mismatchAs(ShapeMismatch)
	payloadShape       = unionShape("Payload")
	normalPayloadShape = shapeOf[NormalPayload]("NormalPayload", camelCase)
	deletedShape       = shapeOf[DeletedPayload]("DeletedPayload", camelCase)
	chatPayloadShape   = shapeOf[ChatPayload]("ChatPayload", camelCase)
	editedShape        = shapeOf[EditedPayload]("EditedPayload", camelCase)
)

func (p *Packet) UnmarshalJSON(data []byte) error {
	type wire Packet
	var aux struct {
		*wire
		Payload json.RawMessage `json:"payload"`
	}
	aux.wire = (*wire)(p)
	if err := packetShape.decode(data, &aux); err != nil {
		return err
	}
	payload, err := decodePayload(aux.Payload)
	if err != nil {
		return err
	}
	p.Payload = payload
	return nil
}

// decodePayload picks the arm by key presence and decodes into it.
func decodePayload(raw json.RawMessage) (Payload, error) {
	obj, err := payloadShape.object(raw)
	if err != nil {
		return nil, err
	}
	switch Discriminate(obj) {
	case KindEdited:
		var p EditedPayload
		err = p.decode(raw)
		return p, err
	case KindDeleted:
		var p DeletedPayload
		err = p.decode(raw)
		return p, err
	case KindChat:
		var p ChatPayload
		err = p.decode(raw)
		return p, err
	default:
		var p NormalPayload
		err = p.decode(raw)
		return p, err
	}
}

func (p *NormalPayload) UnmarshalJSON(data []byte) error { return p.decode(data) }

func (p *NormalPayload) decode(data []byte) error {
	type wire NormalPayload
	var aux struct {
		*wire
		Message json.RawMessage `json:"message"`
	}
	aux.wire = (*wire)(p)
	if err := normalPayloadShape.decode(data, &aux); err != nil {
		return err
	}
	msg, err := decodeMessage(aux.Message)
	if err != nil {
		return err
	}
	p.Message = msg
	return nil
}

func (p *DeletedPayload) UnmarshalJSON(data []byte) error { return p.decode(data) }

func (p *DeletedPayload) decode(data []byte) error {
	type wire DeletedPayload
	return deletedShape.decode(data, (*wire)(p))
}

func (p *ChatPayload) UnmarshalJSON(data []byte) error { return p.decode(data) }

func (p *ChatPayload) decode(data []byte) error {
	type wire ChatPayload
	var aux struct {
		*wire
		Message json.RawMessage `json:"message"`
	}
	aux.wire = (*wire)(p)
	if err := chatPayloadShape.decode(data, &aux); err != nil {
		return err
	}
	msg, err := decodeMessage(aux.Message)
	if err != nil {
		return err
	}
	p.Message = msg
	return nil
}

func (p *EditedPayload) UnmarshalJSON(data []byte) error { return p.decode(data) }

func (p *EditedPayload) decode(data []byte) error {
	type wire EditedPayload
	var aux struct {
		*wire
		Message json.RawMessage `json:"message"`
	}
	aux.wire = (*wire)(p)
	if err := editedShape.decode(data, &aux); err != nil {
		return err
	}
	msg, err := decodeMessage(aux.Message)
	if err != nil {
		return err
	}
	p.Message = msg
	return nil
}
