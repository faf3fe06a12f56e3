package maxapi

import (
	"encoding/json"
	"errors"
)

// DecodePacket decodes one raw packet. Errors are *DecodeError.
func DecodePacket(raw []byte) (Packet, error) {
	var p Packet
	if err := p.UnmarshalJSON(raw); err != nil {
		return Packet{}, err
	}
	return p, nil
}

// DecodePacketObject decodes a packet a transport has already parsed into
// generic JSON values.
func DecodePacketObject(obj map[string]any) (Packet, error) {
	if obj == nil {
		return Packet{}, &DecodeError{Kind: ShapeMismatch, Type: packetShape.name, Err: errors.New("nil object")}
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return Packet{}, &DecodeError{Kind: TypeMismatch, Type: packetShape.name, Err: err}
	}
	return DecodePacket(raw)
}

// EncodePacket validates p and encodes it with wire key names, leaving out
// absent optional fields.
func EncodePacket(p Packet) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(p)
}

// DecodeMessage decodes one tagged message, as found in responses to send
// and edit requests. A JSON null yields a nil Message.
func DecodeMessage(raw []byte) (Message, error) {
	return decodeMessage(raw)
}

// DecodePayload decodes a payload without its packet, choosing the arm the
// way DecodePacket does.
func DecodePayload(raw []byte) (Payload, error) {
	p, err := decodePayload(raw)
	if err != nil {
		return nil, err
	}
	return p, nil
}
