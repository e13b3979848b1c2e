// Package outbound holds the transport-neutral shapes of messages the relay sends.
package outbound

// Button is an inline action attached to a message. Exactly one of URL or
// CallbackData is expected to be set.
type Button struct {
	Text         string
	URL          string
	CallbackData string
}

// Text is an HTML-formatted message sent to a chat.
type Text struct {
	Body           string
	DisablePreview bool
	Buttons        []Button
}

// Copy duplicates an existing message into another chat, replacing its caption.
type Copy struct {
	FromChatID string
	MessageID  int
	ToChatID   string
	Caption    string
	Buttons    []Button
}

// MessageRef points at a message the relay has sent.
type MessageRef struct {
	ChatID    string
	MessageID int
}
