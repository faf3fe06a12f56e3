package maxapi

import (
	"errors"
	"fmt"
	"strings"
)

type ValidationIssue struct{ Field, Reason string }

// ValidationError collects the contract violations found in a value built
// outside the decoder. Encoding refuses such values.
type ValidationError struct{ Issues []ValidationIssue }

var ErrInvalidValue = errors.New("invalid value")

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Field+": "+issue.Reason)
	}
	return ErrInvalidValue.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidValue }

func (e *ValidationError) add(f, r string) {
	e.Issues = append(e.Issues, ValidationIssue{Field: f, Reason: r})
}

func (e *ValidationError) orNil() error {
	if len(e.Issues) > 0 {
		return e
	}
	return nil
}

// Validate reports whether p can be encoded.
func (p Packet) Validate() error {
	ve := &ValidationError{}
	validatePayload(ve, "payload", p.Payload)
	return ve.orNil()
}

// Validate reports whether e is a well-formed span.
func (e Element) Validate() error {
	ve := &ValidationError{}
	validateSpan(ve, "element", e.From, e.Length)
	return ve.orNil()
}

func validatePayload(ve *ValidationError, path string, payload Payload) {
	switch p := payload.(type) {
	case nil:
		ve.add(path, "required")
	case NormalPayload:
		validateMessage(ve, path+".message", p.Message, true)
		if p.Chat != nil {
			validateChat(ve, path+".chat", *p.Chat)
		}
	case DeletedPayload:
		if p.MessageIDs == nil {
			ve.add(path+".messageIds", "required")
		}
	case ChatPayload:
		validateChat(ve, path+".chat", p.Chat)
		// A chat payload carrying a message decodes as Edited or Normal.
		if p.Message != nil {
			ve.add(path+".message", "must be empty on a chat payload")
		}
	case EditedPayload:
		validateMessage(ve, path+".message", p.Message, true)
	default:
		ve.add(path, fmt.Sprintf("unsupported payload %T", payload))
	}
}

func validateChat(ve *ValidationError, path string, c Chat) {
	validateMessage(ve, path+".lastMessage", c.LastMessage, false)
	validateMessage(ve, path+".pinnedMessage", c.PinnedMessage, false)
}

func validateMessage(ve *ValidationError, path string, m Message, required bool) {
	if m == nil {
		if required {
			ve.add(path, "required")
		}
		return
	}
	var base MessageBase
	switch msg := m.(type) {
	case UserMessage:
		base = msg.MessageBase
	case ChannelMessage:
		base = msg.MessageBase
	default:
		ve.add(path, fmt.Sprintf("unsupported message %T", m))
		return
	}
	for i, att := range base.Attaches {
		at := fmt.Sprintf("%s.attaches[%d]", path, i)
		switch a := att.(type) {
		case nil:
			ve.add(at, "nil attachment")
		case ControlAttachment:
			validateMessage(ve, at+".message", a.Message, false)
		}
	}
	for i, el := range base.Elements {
		at := fmt.Sprintf("%s.elements[%d]", path, i)
		if el == nil {
			ve.add(at, "nil element")
			continue
		}
		flat := el.Element()
		validateSpan(ve, at, flat.From, flat.Length)
	}
	if base.Link != nil {
		validateMessage(ve, path+".link.message", base.Link.Message, true)
	}
}

func validateSpan(ve *ValidationError, path string, from, length int) {
	if from < 0 {
		ve.add(path+".from", "negative offset")
	}
	if length < 0 {
		ve.add(path+".length", "negative length")
	}
}
