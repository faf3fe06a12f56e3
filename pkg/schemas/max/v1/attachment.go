package maxapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Attachment is one item of Message.Attaches, tagged on the wire by _type.
// Kinds this package does not model decode to UnknownAttachment.
type Attachment interface {
	AttachmentType() AttachmentType
	isAttachment()
}

type PhotoAttachment struct {
	BaseURL     string  `json:"baseUrl"`
	PhotoToken  string  `json:"photoToken"`
	Width       int     `json:"width"`
	PhotoID     int64   `json:"photoId"`
	Height      int     `json:"height"`
	PreviewData *string `json:"previewData,omitempty"`
}

type StickerAttachment struct {
	AuthorType  string `json:"authorType"`
	Width       int    `json:"width"`
	SetID       int64  `json:"setId"`
	Time        int64  `json:"time"`
	StickerType string `json:"stickerType"`
	Audio       bool   `json:"audio"`
	LottieURL   string `json:"lottieUrl"`
	URL         string `json:"url"`
	StickerID   int64  `json:"stickerId"`
	Height      int    `json:"height"`
}

type VideoAttachment struct {
	PreviewData string `json:"previewData"`
	Duration    int    `json:"duration"`
	Thumbnail   string `json:"thumbnail"`
	VideoType   int    `json:"videoType"`
	Width       int    `json:"width"`
	VideoID     int64  `json:"videoId"`
	Token       string `json:"token"`
	Height      int    `json:"height"`
}

type FileAttachment struct {
	Size    int64   `json:"size"`
	Name    string  `json:"name"`
	FileID  int64   `json:"fileId"`
	Token   string  `json:"token"`
	Preview Preview `json:"preview,omitempty"`
}

type KeyboardAttachment struct {
	Keyboard   Keyboard `json:"keyboard"`
	CallbackID string   `json:"callbackId"`
}

type Keyboard struct {
	Buttons [][]Button `json:"buttons"`
}

// Button is one inline keyboard button. URL is set for LINK buttons;
// Payload and Intent for CALLBACK buttons.
type Button struct {
	ButtonType ButtonType `json:"type"`
	Text       string     `json:"text"`
	URL        *string    `json:"url,omitempty"`
	Payload    *string    `json:"payload,omitempty"`
	Intent     *string    `json:"intent,omitempty"`
}

// ControlAttachment is a service event: chat created, members added,
// message pinned. Message is the pinned message, when there is one.
type ControlAttachment struct {
	Event    string    `json:"event"`
	Title    *string   `json:"title,omitempty"`
	ChatType *ChatType `json:"chatType,omitempty"`
	UserIDs  []int64   `json:"userIds,omitempty"`
	UserID   *int64    `json:"userId,omitempty"`
	Message  Message   `json:"message,omitempty"`
}

type ShareAttachment struct {
	URL          string       `json:"url"`
	ShareID      *int64       `json:"shareId,omitempty"`
	Title        *string      `json:"title,omitempty"`
	Description  *string      `json:"description,omitempty"`
	Host         *string      `json:"host,omitempty"`
	Image        *SimpleImage `json:"image,omitempty"`
	ContentLevel *bool        `json:"contentLevel,omitempty"`
}

type SimpleImage struct {
	URL    string `json:"url"`
	Width  *int   `json:"width,omitempty"`
	Height *int   `json:"height,omitempty"`
}

// UnknownAttachment keeps the raw object of an attachment kind added to the
// service after this package. It encodes back unchanged.
type UnknownAttachment struct {
	Type AttachmentType
	Raw  json.RawMessage
}

func (PhotoAttachment) AttachmentType() AttachmentType    { return AttachmentPhoto }
func (StickerAttachment) AttachmentType() AttachmentType  { return AttachmentSticker }
func (VideoAttachment) AttachmentType() AttachmentType    { return AttachmentVideo }
func (FileAttachment) AttachmentType() AttachmentType     { return AttachmentFile }
func (KeyboardAttachment) AttachmentType() AttachmentType { return AttachmentInlineKeyboard }
func (ControlAttachment) AttachmentType() AttachmentType  { return AttachmentControl }
func (ShareAttachment) AttachmentType() AttachmentType    { return AttachmentShare }
func (a UnknownAttachment) AttachmentType() AttachmentType {
	return a.Type
}

func (PhotoAttachment) isAttachment()    {}
func (StickerAttachment) isAttachment()  {}
func (VideoAttachment) isAttachment()    {}
func (FileAttachment) isAttachment()     {}
func (KeyboardAttachment) isAttachment() {}
func (ControlAttachment) isAttachment()  {}
func (ShareAttachment) isAttachment()    {}
func (UnknownAttachment) isAttachment()  {}

// Preview is the rich preview of a file: AudioPreview, VideoPreview or
// PhotoPreview, tagged on the wire by _type.
type Preview interface {
	PreviewType() PreviewType
	isPreview()
}

type AudioPreview struct {
	Duration    int    `json:"duration"`
	PreviewData string `json:"previewData"`
	AlbumName   string `json:"albumName"`
	BaseURL     string `json:"baseUrl"`
	TrackID     int64  `json:"trackId"`
	ArtistName  string `json:"artistName"`
	Title       string `json:"title"`
}

type VideoPreview struct {
	Duration    int    `json:"duration"`
	PreviewData string `json:"previewData"`
	Thumbnail   string `json:"thumbnail"`
	Width       int    `json:"width"`
	VideoID     int64  `json:"videoId"`
	Height      int    `json:"height"`
}

type PhotoPreview struct {
	PreviewData string `json:"previewData"`
	BaseURL     string `json:"baseUrl"`
	Width       int    `json:"width"`
	PhotoID     int64  `json:"photoId"`
	Height      int    `json:"height"`
}

func (AudioPreview) PreviewType() PreviewType { return PreviewMusic }
func (VideoPreview) PreviewType() PreviewType { return PreviewVideo }
func (PhotoPreview) PreviewType() PreviewType { return PreviewPhoto }

func (AudioPreview) isPreview() {}
func (VideoPreview) isPreview() {}
func (PhotoPreview) isPreview() {}

// Attachments decodes each item by its _type. It always encodes as an
// array, since the wire requires the key.
type Attachments []Attachment

var (
	attachmentShape   = unionShape("Attachment")
	previewShape      = unionShape("Preview")
	photoShape        = shapeOf[PhotoAttachment]("PhotoAttachment", camelCase)
	stickerShape      = shapeOf[StickerAttachment]("StickerAttachment", camelCase)
	videoShape        = shapeOf[VideoAttachment]("VideoAttachment", camelCase)
	fileShape         = shapeOf[FileAttachment]("FileAttachment", camelCase)
	keyboardAttShape  = shapeOf[KeyboardAttachment]("KeyboardAttachment", camelCase)
	keyboardShape     = shapeOf[Keyboard]("Keyboard", camelCase)
	buttonShape       = shapeOf[Button]("Button", camelCase)
	controlShape      = shapeOf[ControlAttachment]("ControlAttachment", camelCase)
	shareShape        = shapeOf[ShareAttachment]("ShareAttachment", camelCase)
	simpleImageShape  = shapeOf[SimpleImage]("SimpleImage", camelCase)
	audioPreviewShape = shapeOf[AudioPreview]("AudioPreview", camelCase)
	videoPreviewShape = shapeOf[VideoPreview]("VideoPreview", camelCase)
	photoPreviewShape = shapeOf[PhotoPreview]("PhotoPreview", camelCase)
)

func (a *Attachments) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*a = nil
		return nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return &DecodeError{Kind: TypeMismatch, Type: "Attachments", Err: err}
	}
	out := make(Attachments, 0, len(raws))
	for _, raw := range raws {
		att, err := decodeAttachment(raw)
		if err != nil {
			return err
		}
		out = append(out, att)
	}
	*a = out
	return nil
}

func (a Attachments) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Attachment(a))
}

func decodeAttachment(raw json.RawMessage) (Attachment, error) {
	obj, err := attachmentShape.object(raw)
	if err != nil {
		return nil, err
	}
	tag, err := attachmentShape.key(obj, "_type")
	if err != nil {
		return nil, err
	}
	var att interface {
		Attachment
		json.Unmarshaler
	}
	switch AttachmentType(tag) {
	case AttachmentPhoto:
		att = &PhotoAttachment{}
	case AttachmentSticker:
		att = &StickerAttachment{}
	case AttachmentVideo:
		att = &VideoAttachment{}
	case AttachmentFile:
		att = &FileAttachment{}
	case AttachmentInlineKeyboard:
		att = &KeyboardAttachment{}
	case AttachmentControl:
		att = &ControlAttachment{}
	case AttachmentShare:
		att = &ShareAttachment{}
	default:
		var kept bytes.Buffer
		if err := json.Compact(&kept, raw); err != nil {
			return nil, attachmentShape.wrap(err)
		}
		return UnknownAttachment{Type: AttachmentType(tag), Raw: kept.Bytes()}, nil
	}
	if err := att.UnmarshalJSON(raw); err != nil {
		return nil, err
	}
	return deref(att), nil
}

// deref turns the pointer used for decoding back into the value arm.
func deref(att Attachment) Attachment {
	switch a := att.(type) {
	case *PhotoAttachment:
		return *a
	case *StickerAttachment:
		return *a
	case *VideoAttachment:
		return *a
	case *FileAttachment:
		return *a
	case *KeyboardAttachment:
		return *a
	case *ControlAttachment:
		return *a
	case *ShareAttachment:
		return *a
	}
	return att
}

func decodePreview(raw json.RawMessage) (Preview, error) {
	if isNull(raw) {
		return nil, nil
	}
	obj, err := previewShape.object(raw)
	if err != nil {
		return nil, err
	}
	tag, err := previewShape.key(obj, "_type")
	if err != nil {
		return nil, err
	}
	switch PreviewType(tag) {
	case PreviewMusic:
		var p AudioPreview
		err = p.UnmarshalJSON(raw)
		return p, err
	case PreviewVideo:
		var p VideoPreview
		err = p.UnmarshalJSON(raw)
		return p, err
	case PreviewPhoto:
		var p PhotoPreview
		err = p.UnmarshalJSON(raw)
		return p, err
	}
	return nil, &DecodeError{
		Kind:  ShapeMismatch,
		Type:  previewShape.name,
		Field: "_type",
		Err:   fmt.Errorf("unknown preview type %q", tag),
	}
}

func (a PhotoAttachment) MarshalJSON() ([]byte, error) {
	type wire PhotoAttachment
	return marshalTagged("_type", string(AttachmentPhoto), wire(a))
}

func (a *PhotoAttachment) UnmarshalJSON(data []byte) error {
	type wire PhotoAttachment
	return photoShape.decode(data, (*wire)(a))
}

func (a StickerAttachment) MarshalJSON() ([]byte, error) {
	type wire StickerAttachment
	return marshalTagged("_type", string(AttachmentSticker), wire(a))
}

func (a *StickerAttachment) UnmarshalJSON(data []byte) error {
	type wire StickerAttachment
	return stickerShape.decode(data, (*wire)(a))
}

func (a VideoAttachment) MarshalJSON() ([]byte, error) {
	type wire VideoAttachment
	return marshalTagged("_type", string(AttachmentVideo), wire(a))
}

func (a *VideoAttachment) UnmarshalJSON(data []byte) error {
	type wire VideoAttachment
	return videoShape.decode(data, (*wire)(a))
}

func (a FileAttachment) MarshalJSON() ([]byte, error) {
	type wire FileAttachment
	return marshalTagged("_type", string(AttachmentFile), wire(a))
}

func (a *FileAttachment) UnmarshalJSON(data []byte) error {
	type wire FileAttachment
	var aux struct {
		*wire
		Preview json.RawMessage `json:"preview"`
	}
	aux.wire = (*wire)(a)
	if err := fileShape.decode(data, &aux); err != nil {
		return err
	}
	preview, err := decodePreview(aux.Preview)
	if err != nil {
		return err
	}
	a.Preview = preview
	return nil
}

func (a KeyboardAttachment) MarshalJSON() ([]byte, error) {
	type wire KeyboardAttachment
	return marshalTagged("_type", string(AttachmentInlineKeyboard), wire(a))
}

func (a *KeyboardAttachment) UnmarshalJSON(data []byte) error {
	type wire KeyboardAttachment
	return keyboardAttShape.decode(data, (*wire)(a))
}

func (k *Keyboard) UnmarshalJSON(data []byte) error {
	type wire Keyboard
	return keyboardShape.decode(data, (*wire)(k))
}

func (b *Button) UnmarshalJSON(data []byte) error {
	type wire Button
	return buttonShape.decode(data, (*wire)(b))
}

func (a ControlAttachment) MarshalJSON() ([]byte, error) {
	type wire ControlAttachment
	return marshalTagged("_type", string(AttachmentControl), wire(a))
}

func (a *ControlAttachment) UnmarshalJSON(data []byte) error {
	type wire ControlAttachment
	var aux struct {
		*wire
		Message json.RawMessage `json:"message"`
	}
	aux.wire = (*wire)(a)
	if err := controlShape.decode(data, &aux); err != nil {
		return err
	}
	msg, err := decodeMessage(aux.Message)
	if err != nil {
		return err
	}
	a.Message = msg
	return nil
}

func (a ShareAttachment) MarshalJSON() ([]byte, error) {
	type wire ShareAttachment
	return marshalTagged("_type", string(AttachmentShare), wire(a))
}

func (a *ShareAttachment) UnmarshalJSON(data []byte) error {
	type wire ShareAttachment
	return shareShape.decode(data, (*wire)(a))
}

func (i *SimpleImage) UnmarshalJSON(data []byte) error {
	type wire SimpleImage
	return simpleImageShape.decode(data, (*wire)(i))
}

func (a UnknownAttachment) MarshalJSON() ([]byte, error) {
	if len(a.Raw) == 0 {
		return marshalTagged("_type", string(a.Type), struct{}{})
	}
	return a.Raw, nil
}

func (p AudioPreview) MarshalJSON() ([]byte, error) {
	type wire AudioPreview
	return marshalTagged("_type", string(PreviewMusic), wire(p))
}

func (p *AudioPreview) UnmarshalJSON(data []byte) error {
	type wire AudioPreview
	return audioPreviewShape.decode(data, (*wire)(p))
}

func (p VideoPreview) MarshalJSON() ([]byte, error) {
	type wire VideoPreview
	return marshalTagged("_type", string(PreviewVideo), wire(p))
}

func (p *VideoPreview) UnmarshalJSON(data []byte) error {
	type wire VideoPreview
	return videoPreviewShape.decode(data, (*wire)(p))
}

func (p PhotoPreview) MarshalJSON() ([]byte, error) {
	type wire PhotoPreview
	return marshalTagged("_type", string(PreviewPhoto), wire(p))
}

func (p *PhotoPreview) UnmarshalJSON(data []byte) error {
	type wire PhotoPreview
	return photoPreviewShape.decode(data, (*wire)(p))
}
