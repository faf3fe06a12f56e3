package maxapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscriminate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want PayloadKind
	}{
		{"chat id and message", `{"chatId": 1, "message": {}}`, KindNormal},
		{"chat only", `{"chat": {}}`, KindChat},
		{"message ids", `{"messageIds": ["5"]}`, KindDeleted},
		{"message without chat id", `{"message": {}}`, KindEdited},
		{"message ids with chat id", `{"chatId": 1, "messageIds": []}`, KindDeleted},
		{"chat with chat id", `{"chatId": 1, "chat": {}}`, KindChat},
		{"pin event", `{"chatId": 1, "message": {}, "chat": {}}`, KindNormal},
		// chat and message without chatId: the message rule comes first.
		{"chat and message", `{"chat": {}, "message": {}}`, KindEdited},
		{"message and ids", `{"message": {}, "messageIds": []}`, KindEdited},
		{"null message counts as present", `{"message": null}`, KindEdited},
		{"empty", `{}`, KindNormal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var obj map[string]json.RawMessage
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &obj))
			assert.Equal(t, tt.want, Discriminate(obj))

			kind, err := DiscriminatePayload([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestDiscriminatePayloadRejectsNonObjects(t *testing.T) {
	for _, raw := range []string{`[]`, `"x"`, `1`, `null`, `{`} {
		t.Run(raw, func(t *testing.T) {
			_, err := DiscriminatePayload([]byte(raw))
			assert.ErrorIs(t, err, ErrShapeMismatch)
		})
	}
}

func TestPayloadKindString(t *testing.T) {
	assert.Equal(t, "edited", KindEdited.String())
	assert.Equal(t, "PayloadKind(9)", PayloadKind(9).String())
}
