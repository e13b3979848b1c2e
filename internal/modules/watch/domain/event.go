package domain

import "time"

// Event is one incoming group message, reduced to what routing and filtering need.
type Event struct {
	MessageID      int
	SourceStreamID string
	SourceTitle    string
	AuthorID       int64
	AuthorName     string
	Text           string
	Caption        string
	HasPhoto       bool
	HasVideo       bool
	HasEntities    bool
	HasLinkEntity  bool
	Date           time.Time
}

// Body returns the text, or the caption when the message has no text.
func (e *Event) Body() string {
	if e.Text != "" {
		return e.Text
	}
	return e.Caption
}

// IsTextOnly reports a plain text message without any formatting entities.
func (e *Event) IsTextOnly() bool {
	return e.Text != "" && !e.HasEntities
}
