package maxapi

import "encoding/json"

// MessageElement is a formatting span of a decoded message: UrlElement,
// AnimojiElement or TextElement. Offsets count UTF-16 code units.
type MessageElement interface {
	// Element flattens the span into the shape request builders accept.
	Element() Element
	isElement()
}

type UrlElement struct {
	StartFrom  int           `json:"from,omitempty"`
	Length     int           `json:"length"`
	Attributes UrlAttributes `json:"attributes"`
}

type UrlAttributes struct {
	URL string `json:"url"`
}

type AnimojiElement struct {
	StartFrom  int               `json:"from,omitempty"`
	Length     int               `json:"length"`
	EntityID   int64             `json:"entityId"`
	Attributes AnimojiAttributes `json:"attributes"`
}

type AnimojiAttributes struct {
	AnimojiSetID     string `json:"animojiSetId"`
	AnimojiLottieURL string `json:"animojiLottieUrl"`
}

// TextElement is every span kind without attributes: STRONG, QUOTE,
// USER_MENTION and the rest.
type TextElement struct {
	ElementType ElementType `json:"type"`
	StartFrom   int         `json:"from,omitempty"`
	Length      int         `json:"length"`
	EntityID    *int64      `json:"entityId,omitempty"`
	EntityName  *string     `json:"entityName,omitempty"`
}

// Element is the flat span shape: what markup.Parse produces and what
// outgoing messages carry.
type Element struct {
	Type       ElementType        `json:"type"`
	From       int                `json:"from,omitempty"`
	Length     int                `json:"length"`
	Attributes *ElementAttributes `json:"attributes,omitempty"`
	EntityID   *int64             `json:"entityId,omitempty"`
	EntityName *string            `json:"entityName,omitempty"`
}

type ElementAttributes struct {
	URL              string `json:"url,omitempty"`
	AnimojiSetID     string `json:"animojiSetId,omitempty"`
	AnimojiLottieURL string `json:"animojiLottieUrl,omitempty"`
}

func (e UrlElement) Element() Element {
	return Element{
		Type:       ElementLink,
		From:       e.StartFrom,
		Length:     e.Length,
		Attributes: &ElementAttributes{URL: e.Attributes.URL},
	}
}

func (e AnimojiElement) Element() Element {
	id := e.EntityID
	return Element{
		Type:   ElementAnimoji,
		From:   e.StartFrom,
		Length: e.Length,
		Attributes: &ElementAttributes{
			AnimojiSetID:     e.Attributes.AnimojiSetID,
			AnimojiLottieURL: e.Attributes.AnimojiLottieURL,
		},
		EntityID: &id,
	}
}

func (e TextElement) Element() Element {
	return Element{
		Type:       e.ElementType,
		From:       e.StartFrom,
		Length:     e.Length,
		EntityID:   e.EntityID,
		EntityName: e.EntityName,
	}
}

// MessageElement converts the flat span back into its typed arm.
func (e Element) MessageElement() MessageElement {
	var attrs ElementAttributes
	if e.Attributes != nil {
		attrs = *e.Attributes
	}
	switch e.Type {
	case ElementLink:
		return UrlElement{
			StartFrom:  e.From,
			Length:     e.Length,
			Attributes: UrlAttributes{URL: attrs.URL},
		}
	case ElementAnimoji:
		var id int64
		if e.EntityID != nil {
			id = *e.EntityID
		}
		return AnimojiElement{
			StartFrom: e.From,
			Length:    e.Length,
			EntityID:  id,
			Attributes: AnimojiAttributes{
				AnimojiSetID:     attrs.AnimojiSetID,
				AnimojiLottieURL: attrs.AnimojiLottieURL,
			},
		}
	}
	return TextElement{
		ElementType: e.Type,
		StartFrom:   e.From,
		Length:      e.Length,
		EntityID:    e.EntityID,
		EntityName:  e.EntityName,
	}
}

func (UrlElement) isElement()     {}
func (AnimojiElement) isElement() {}
func (TextElement) isElement()    {}

// Elements decodes each span by its type. LINK and ANIMOJI have their own
// arms; any other type, known or not, is a TextElement.
type Elements []MessageElement

// Flat returns the spans as Elements in their original order.
func (es Elements) Flat() []Element {
	if es == nil {
		return nil
	}
	out := make([]Element, 0, len(es))
	for _, e := range es {
		out = append(out, e.Element())
	}
	return out
}

// NewElements converts flat spans into typed ones.
func NewElements(flat []Element) Elements {
	if flat == nil {
		return nil
	}
	out := make(Elements, 0, len(flat))
	for _, e := range flat {
		out = append(out, e.MessageElement())
	}
	return out
}

var (
	elementUnionShape = unionShape("MessageElement")
	urlElementShape   = shapeOf[UrlElement]("UrlElement", camelCase)
	urlAttrsShape     = shapeOf[UrlAttributes]("UrlAttributes", camelCase)
	animojiShape      = shapeOf[AnimojiElement]("AnimojiElement", camelCase)
	animojiAttrsShape = shapeOf[AnimojiAttributes]("AnimojiAttributes", camelCase)
	textElementShape  = shapeOf[TextElement]("TextElement", camelCase)
	elementShape      = shapeOf[Element]("Element", camelCase)
	elementAttrsShape = shapeOf[ElementAttributes]("ElementAttributes", camelCase)
)

func (es *Elements) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*es = nil
		return nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return &DecodeError{Kind: TypeMismatch, Type: "Elements", Err: err}
	}
	out := make(Elements, 0, len(raws))
	for _, raw := range raws {
		el, err := decodeElement(raw)
		if err != nil {
			return err
		}
		out = append(out, el)
	}
	*es = out
	return nil
}

func decodeElement(raw json.RawMessage) (MessageElement, error) {
	obj, err := elementUnionShape.object(raw)
	if err != nil {
		return nil, err
	}
	tag, err := elementUnionShape.key(obj, "type")
	if err != nil {
		return nil, err
	}
	switch ElementType(tag) {
	case ElementLink:
		var e UrlElement
		err = e.UnmarshalJSON(raw)
		return e, err
	case ElementAnimoji:
		var e AnimojiElement
		err = e.UnmarshalJSON(raw)
		return e, err
	default:
		var e TextElement
		err = e.UnmarshalJSON(raw)
		return e, err
	}
}

func (e UrlElement) MarshalJSON() ([]byte, error) {
	type wire UrlElement
	return marshalTagged("type", string(ElementLink), wire(e))
}

func (e *UrlElement) UnmarshalJSON(data []byte) error {
	type wire UrlElement
	return urlElementShape.decode(data, (*wire)(e))
}

func (a *UrlAttributes) UnmarshalJSON(data []byte) error {
	type wire UrlAttributes
	return urlAttrsShape.decode(data, (*wire)(a))
}

func (e AnimojiElement) MarshalJSON() ([]byte, error) {
	type wire AnimojiElement
	return marshalTagged("type", string(ElementAnimoji), wire(e))
}

func (e *AnimojiElement) UnmarshalJSON(data []byte) error {
	type wire AnimojiElement
	return animojiShape.decode(data, (*wire)(e))
}

func (a *AnimojiAttributes) UnmarshalJSON(data []byte) error {
	type wire AnimojiAttributes
	return animojiAttrsShape.decode(data, (*wire)(a))
}

func (e *TextElement) UnmarshalJSON(data []byte) error {
	type wire TextElement
	return textElementShape.decode(data, (*wire)(e))
}

func (e *Element) UnmarshalJSON(data []byte) error {
	type wire Element
	return elementShape.decode(data, (*wire)(e))
}

func (a *ElementAttributes) UnmarshalJSON(data []byte) error {
	type wire ElementAttributes
	return elementAttrsShape.decode(data, (*wire)(a))
}
