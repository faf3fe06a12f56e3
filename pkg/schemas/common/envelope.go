package common

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Envelope is what travels on the broker: metadata plus the event body.
type Envelope struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

type GenericEnvelope[T any] struct {
	Meta Meta `json:"meta"`
	Data T    `json:"data"`
}

// RawEnvelope keeps the body undecoded so consumers can pick its type
// from Meta.Type first.
type RawEnvelope = GenericEnvelope[json.RawMessage]

// NewEnvelope stamps data with a fresh id and the current time.
func NewEnvelope(eventType, producer string, data any) Envelope {
	meta := Meta{
		ID:   uuid.NewString(),
		Time: time.Now().UTC(),
		Type: eventType,
	}
	if producer != "" {
		meta.Producer = &producer
	}
	return Envelope{Meta: meta, Data: data}
}

// WithCorrelation returns a copy of e correlated to id.
func (e Envelope) WithCorrelation(id string) Envelope {
	if id != "" {
		e.Meta.CorrelationID = &id
	}
	return e
}
