package maxapi

import (
	"errors"
	"fmt"
)

// DecodeErrorKind classifies why a wire object could not be decoded.
type DecodeErrorKind int

const (
	// ShapeMismatch: the value is not an object of a shape any variant accepts.
	ShapeMismatch DecodeErrorKind = iota + 1
	// MissingRequiredField: a required key is absent or null.
	MissingRequiredField
	// TypeMismatch: a key holds a JSON value of the wrong type.
	TypeMismatch
)

var (
	ErrShapeMismatch = errors.New("shape mismatch")
	ErrMissingField  = errors.New("missing required field")
	ErrTypeMismatch  = errors.New("type mismatch")
)

func (k DecodeErrorKind) String() string {
	switch k {
	case ShapeMismatch:
		return "shape_mismatch"
	case MissingRequiredField:
		return "missing_required_field"
	case TypeMismatch:
		return "type_mismatch"
	}
	return fmt.Sprintf("DecodeErrorKind(%d)", int(k))
}

func (k DecodeErrorKind) sentinel() error {
	switch k {
	case ShapeMismatch:
		return ErrShapeMismatch
	case MissingRequiredField:
		return ErrMissingField
	case TypeMismatch:
		return ErrTypeMismatch
	}
	return nil
}

// DecodeError reports a wire object that could not become a domain value.
// Type is the domain type being decoded and Field the wire key at fault,
// when one is known. Callers match kinds with errors.Is:
//
//	if errors.Is(err, maxapi.ErrMissingField) { ... }
type DecodeError struct {
	Kind  DecodeErrorKind
	Type  string
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	reason := e.Kind.String()
	if s := e.Kind.sentinel(); s != nil {
		reason = s.Error()
	}
	msg := "decode " + e.Type + ": " + reason
	if e.Field != "" {
		msg += fmt.Sprintf(" %q", e.Field)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}
