package maxapi

import (
	"encoding/json"
	"fmt"
)

// PayloadKind names the arm of a Payload.
type PayloadKind int

const (
	KindNormal PayloadKind = iota + 1
	KindDeleted
	KindChat
	KindEdited
)

func (k PayloadKind) String() string {
	switch k {
	case KindNormal:
		return "normal"
	case KindDeleted:
		return "deleted"
	case KindChat:
		return "chat"
	case KindEdited:
		return "edited"
	}
	return fmt.Sprintf("PayloadKind(%d)", int(k))
}

// Discriminate picks the payload arm from the keys present in obj. The
// rules are tried in order and the last one always matches:
//
//  1. no chatId and a message: edited
//  2. messageIds: deleted
//  3. chat and no message: chat
//  4. anything else: normal
//
// Presence means the key exists, whatever its value.
func Discriminate(obj map[string]json.RawMessage) PayloadKind {
	_, hasChatID := obj["chatId"]
	_, hasMessage := obj["message"]
	_, hasMessageIDs := obj["messageIds"]
	_, hasChat := obj["chat"]

	switch {
	case !hasChatID && hasMessage:
		return KindEdited
	case hasMessageIDs:
		return KindDeleted
	case hasChat && !hasMessage:
		return KindChat
	default:
		return KindNormal
	}
}

// DiscriminatePayload is Discriminate over a raw payload. A payload that is
// not a JSON object fails with ErrShapeMismatch.
func DiscriminatePayload(raw []byte) (PayloadKind, error) {
	obj, err := payloadShape.object(raw)
	if err != nil {
		return 0, err
	}
	return Discriminate(obj), nil
}
