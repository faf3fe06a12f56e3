package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	maxapi "github.com/roboricindustries/maxwire/pkg/schemas/max/v1"
)

const wirePacket = `{
	"ver": 11, "cmd": 0, "seq": 7, "opcode": 128,
	"payload": {
		"chatId": -42,
		"mark": 1700000000000,
		"message": {
			"type": "USER", "sender": 1001, "id": "116", "time": 1700000000001,
			"text": "Hello world 🙂",
			"attaches": [
				{"_type": "PHOTO", "baseUrl": "https://i.example/p", "photoToken": "tok", "width": 640, "photoId": 9, "height": 480},
				{"_type": "AUDIO", "duration": 3, "url": "https://x"}
			],
			"elements": [
				{"type": "STRONG", "length": 5},
				{"type": "LINK", "from": 6, "length": 5, "attributes": {"url": "https://example.com"}}
			],
			"link": {"type": "REPLY", "chatId": -42, "message": {"type": "CHANNEL", "id": "100", "time": 1, "text": "orig", "attaches": []}}
		}
	}
}`

func samplePacket(t *testing.T) maxapi.Packet {
	t.Helper()
	p, err := maxapi.DecodePacket([]byte(wirePacket))
	require.NoError(t, err)
	return p
}

func TestPacketRoundTrip(t *testing.T) {
	p := samplePacket(t)
	data, err := MarshalPacket(p)
	require.NoError(t, err)

	back, err := UnmarshalPacket(data)
	require.NoError(t, err)
	assert.Equal(t, p, back)
}

func TestMarshalDeterministic(t *testing.T) {
	p := samplePacket(t)
	first, err := MarshalPacket(p)
	require.NoError(t, err)
	second, err := MarshalPacket(p)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	back, err := UnmarshalPacket(first)
	require.NoError(t, err)
	third, err := MarshalPacket(back)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestSameKeysAsJSON(t *testing.T) {
	p := samplePacket(t)
	data, err := MarshalPacket(p)
	require.NoError(t, err)

	var fromCBOR map[string]any
	require.NoError(t, decMode.Unmarshal(data, &fromCBOR))
	asJSON, err := json.Marshal(fromCBOR)
	require.NoError(t, err)

	want, err := maxapi.EncodePacket(p)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(asJSON))
}

func TestIntegersStayIntegers(t *testing.T) {
	data, err := MarshalPacket(samplePacket(t))
	require.NoError(t, err)
	diag, err := Diagnose(data)
	require.NoError(t, err)
	assert.Contains(t, diag, `"opcode"`)
	assert.NotContains(t, diag, "128.0")
	assert.NotContains(t, diag, "-42.0")
}

func TestStream(t *testing.T) {
	first := samplePacket(t)
	second := maxapi.Packet{Opcode: 66, Payload: maxapi.DeletedPayload{ChatID: 1, MessageIDs: []string{"5"}}}

	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	require.NoError(t, enc.Encode(first))
	require.NoError(t, enc.Encode(second))

	dec := NewDecoder(&buf)
	got, err := dec.Decode()
	require.NoError(t, err)
	assert.Equal(t, first, got)
	got, err = dec.Decode()
	require.NoError(t, err)
	assert.Equal(t, second, got)
	_, err = dec.Decode()
	assert.ErrorIs(t, err, io.EOF)
}

func TestUnmarshalErrors(t *testing.T) {
	missing, err := cbor.Marshal(map[string]any{"ver": 1, "cmd": 0, "seq": 1, "opcode": 1})
	require.NoError(t, err)
	notObject, err := cbor.Marshal([]int{1, 2})
	require.NoError(t, err)
	badPayload, err := cbor.Marshal(map[string]any{"ver": 1, "cmd": 0, "seq": 1, "opcode": 1, "payload": "x"})
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"truncated", []byte{0xa1, 0x63}, maxapi.ErrShapeMismatch},
		{"empty", nil, maxapi.ErrShapeMismatch},
		{"not a map", notObject, maxapi.ErrShapeMismatch},
		{"missing payload", missing, maxapi.ErrMissingField},
		{"payload not an object", badPayload, maxapi.ErrShapeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalPacket(tt.data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestMarshalValidates(t *testing.T) {
	_, err := MarshalPacket(maxapi.Packet{Opcode: 64})
	assert.ErrorIs(t, err, maxapi.ErrInvalidValue)

	var buf bytes.Buffer
	err = NewEncoder(&buf).Encode(maxapi.Packet{})
	assert.ErrorIs(t, err, maxapi.ErrInvalidValue)
	assert.Zero(t, buf.Len())
}
