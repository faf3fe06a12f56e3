package maxapi

type MessageType string

const (
	MessageTypeUser    MessageType = "USER"
	MessageTypeChannel MessageType = "CHANNEL"
)

type LinkType string

const (
	LinkForward LinkType = "FORWARD"
	LinkReply   LinkType = "REPLY"
)

// ElementType names a formatting span kind. LINK and ANIMOJI carry
// attributes; every other kind is a plain style.
type ElementType string

const (
	ElementStrong        ElementType = "STRONG"
	ElementEmphasized    ElementType = "EMPHASIZED"
	ElementUnderline     ElementType = "UNDERLINE"
	ElementStrikethrough ElementType = "STRIKETHROUGH"
	ElementQuote         ElementType = "QUOTE"
	ElementHeading       ElementType = "HEADING"
	ElementMonospaced    ElementType = "MONOSPACED"
	ElementUserMention   ElementType = "USER_MENTION"
	ElementLink          ElementType = "LINK"
	ElementAnimoji       ElementType = "ANIMOJI"
)

type AttachmentType string

const (
	AttachmentPhoto          AttachmentType = "PHOTO"
	AttachmentSticker        AttachmentType = "STICKER"
	AttachmentVideo          AttachmentType = "VIDEO"
	AttachmentFile           AttachmentType = "FILE"
	AttachmentInlineKeyboard AttachmentType = "INLINE_KEYBOARD"
	AttachmentControl        AttachmentType = "CONTROL"
	AttachmentShare          AttachmentType = "SHARE"
)

type ButtonType string

const (
	ButtonMessage  ButtonType = "MESSAGE"
	ButtonLink     ButtonType = "LINK"
	ButtonCallback ButtonType = "CALLBACK"
)

type PreviewType string

const (
	PreviewMusic PreviewType = "MUSIC"
	PreviewVideo PreviewType = "VIDEO"
	PreviewPhoto PreviewType = "PHOTO"
)

type MessageStatus string

const (
	StatusEdited  MessageStatus = "EDITED"
	StatusRemoved MessageStatus = "REMOVED"
)

type ChatAccess string

const (
	AccessPrivate ChatAccess = "PRIVATE"
	AccessPublic  ChatAccess = "PUBLIC"
)

type ChatType string

const (
	ChatDialog  ChatType = "DIALOG"
	ChatGroup   ChatType = "CHAT"
	ChatChannel ChatType = "CHANNEL"
)
