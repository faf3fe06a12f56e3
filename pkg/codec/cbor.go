// Package codec frames packets as CBOR for binary transports and storage.
//
// Field names come from the JSON mapping in maxapi: a packet is encoded to
// its JSON wire form first and that tree is written as CBOR, so both
// encodings always carry the same keys. Encoding is Core Deterministic
// (RFC 8949 §4.2): the same packet always produces the same bytes.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	maxapi "github.com/roboricindustries/maxwire/pkg/schemas/max/v1"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		// Packets only have string keys; any-typed targets must come out
		// as maps encoding/json can re-encode.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// toTree turns a packet into the generic value of its JSON form. Numbers
// become int64 where they are integral so they encode as CBOR integers.
func toTree(p maxapi.Packet) (any, error) {
	raw, err := maxapi.EncodePacket(p)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("codec: reread packet: %w", err)
	}
	return normalize(tree), nil
}

func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		f, _ := x.Float64()
		return f
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = normalize(e)
		}
		return x
	}
	return v
}

// fromTree decodes a generic CBOR value through the JSON mapping.
func fromTree(tree any) (maxapi.Packet, error) {
	raw, err := json.Marshal(tree)
	if err != nil {
		return maxapi.Packet{}, &maxapi.DecodeError{Kind: maxapi.ShapeMismatch, Type: "Packet", Err: err}
	}
	return maxapi.DecodePacket(raw)
}

// MarshalPacket validates p and encodes it as CBOR.
func MarshalPacket(p maxapi.Packet) ([]byte, error) {
	tree, err := toTree(p)
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(tree)
}

// UnmarshalPacket decodes a CBOR packet. Malformed CBOR is a
// ShapeMismatch; everything else fails as DecodePacket does.
func UnmarshalPacket(data []byte) (maxapi.Packet, error) {
	var tree any
	if err := decMode.Unmarshal(data, &tree); err != nil {
		return maxapi.Packet{}, &maxapi.DecodeError{Kind: maxapi.ShapeMismatch, Type: "Packet", Err: err}
	}
	return fromTree(tree)
}

// Encoder writes a stream of CBOR packets.
type Encoder struct {
	enc *cbor.Encoder
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{enc: encMode.NewEncoder(w)}
}

func (e *Encoder) Encode(p maxapi.Packet) error {
	tree, err := toTree(p)
	if err != nil {
		return err
	}
	return e.enc.Encode(tree)
}

// Decoder reads a stream of CBOR packets.
type Decoder struct {
	dec *cbor.Decoder
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: decMode.NewDecoder(r)}
}

// Decode reads the next packet. It returns io.EOF at the end of the
// stream.
func (d *Decoder) Decode() (maxapi.Packet, error) {
	var tree any
	if err := d.dec.Decode(&tree); err != nil {
		if err == io.EOF {
			return maxapi.Packet{}, err
		}
		return maxapi.Packet{}, &maxapi.DecodeError{Kind: maxapi.ShapeMismatch, Type: "Packet", Err: err}
	}
	return fromTree(tree)
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) of data.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
