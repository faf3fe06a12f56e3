package maxapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// shape is the decode-side description of one wire type: the name used in
// error reports and the keys that must be present. Required keys are the
// json tags without omitempty, so the struct tags stay the single rename
// table for both directions.
type shape struct {
	name     string
	required []string
	// notObject is reported for well-formed JSON that is not an object.
	// Plain records use TypeMismatch; unions and the packet itself use
	// ShapeMismatch since no variant can accept the value.
	notObject DecodeErrorKind
}

func unionShape(name string) shape {
	return shape{name: name, notObject: ShapeMismatch}
}

// shapeOf builds the shape of T and panics if a json tag on T disagrees with
// the naming convention. Shapes are package-level vars, so a drifted tag
// fails every test and every program that imports the package.
func shapeOf[T any](name string, style naming) shape {
	t := reflect.TypeOf((*T)(nil)).Elem()
	s := shape{name: name, notObject: TypeMismatch}
	if err := collectKeys(t, style, &s.required); err != nil {
		panic("maxapi: " + name + ": " + err.Error())
	}
	return s
}

func collectKeys(t reflect.Type, style naming, required *[]string) error {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			if err := collectKeys(f.Type, style, required); err != nil {
				return err
			}
			continue
		}
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		key, opts, _ := strings.Cut(tag, ",")
		if want := style.wireKey(f.Name); key != want {
			return fmt.Errorf("field %s has wire key %q, want %q", f.Name, key, want)
		}
		if !hasOption(opts, "omitempty") {
			*required = append(*required, key)
		}
	}
	return nil
}

func hasOption(opts, name string) bool {
	for _, o := range strings.Split(opts, ",") {
		if o == name {
			return true
		}
	}
	return false
}

func (s shape) mismatchAs(kind DecodeErrorKind) shape {
	s.notObject = kind
	return s
}

// object parses data as a JSON object. Malformed input is a shape mismatch;
// null, arrays and scalars are reported as s.notObject.
func (s shape) object(data []byte) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		var se *json.SyntaxError
		if errors.As(err, &se) {
			return nil, &DecodeError{Kind: ShapeMismatch, Type: s.name, Err: err}
		}
		return nil, &DecodeError{Kind: s.notObject, Type: s.name, Err: err}
	}
	if obj == nil {
		return nil, &DecodeError{Kind: s.notObject, Type: s.name, Err: errors.New("null")}
	}
	return obj, nil
}

// decode checks the required keys of data and unmarshals it into v, which
// is a method-less alias of the domain type (or a struct embedding one).
func (s shape) decode(data []byte, v any) error {
	obj, err := s.object(data)
	if err != nil {
		return err
	}
	for _, key := range s.required {
		if raw, ok := obj[key]; !ok || isNull(raw) {
			return &DecodeError{Kind: MissingRequiredField, Type: s.name, Field: key}
		}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return s.wrap(err)
	}
	return nil
}

// wrap turns an encoding/json failure into a DecodeError. Errors already
// produced by a nested type pass through untouched.
func (s shape) wrap(err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) {
		return &DecodeError{Kind: TypeMismatch, Type: s.name, Field: wireField(te.Field), Err: err}
	}
	var se *json.SyntaxError
	if errors.As(err, &se) {
		return &DecodeError{Kind: ShapeMismatch, Type: s.name, Err: err}
	}
	return &DecodeError{Kind: TypeMismatch, Type: s.name, Err: err}
}

// embeddedNames are the embedded struct names encoding/json puts into a
// field path. They never appear on the wire.
var embeddedNames = map[string]bool{"wire": true, "MessageBase": true}

// wireField reduces a decoder field path to wire keys, so "wire.seq"
// reports as "seq".
func wireField(path string) string {
	parts := strings.Split(path, ".")
	kept := parts[:0]
	for _, p := range parts {
		if !embeddedNames[p] {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ".")
}

// key reads one discriminating string key of an already parsed object.
func (s shape) key(obj map[string]json.RawMessage, key string) (string, error) {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return "", &DecodeError{Kind: MissingRequiredField, Type: s.name, Field: key}
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", &DecodeError{Kind: TypeMismatch, Type: s.name, Field: key, Err: err}
	}
	return v, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// marshalTagged encodes v and prepends the discriminating key, which the
// domain arms carry in their Go type rather than in a field.
func marshalTagged(key, tag string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	head, err := json.Marshal(tag)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(len(key) + len(head) + len(body) + 4)
	buf.WriteString(`{"`)
	buf.WriteString(key)
	buf.WriteString(`":`)
	buf.Write(head)
	if len(body) > 2 {
		buf.WriteByte(',')
		buf.Write(body[1:])
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}
