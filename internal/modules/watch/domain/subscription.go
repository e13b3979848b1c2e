package domain

import "time"

// Subscription is one (watcher, source stream, author) triple whose messages
// are forwarded to the watcher's destination.
type Subscription struct {
	ID                int64     `json:"id"`
	WatcherID         int64     `json:"watcher_id"`
	SourceStreamID    string    `json:"source_stream_id"`
	TargetAuthorID    int64     `json:"target_author_id"`
	TargetDisplayName string    `json:"target_display_name"`
	CreatedAt         time.Time `json:"created_at"`
}

// Destination is the chat a watcher's forwarded content is delivered to.
type Destination struct {
	WatcherID int64     `json:"watcher_id"`
	StreamID  string    `json:"stream_id"`
	UpdatedAt time.Time `json:"updated_at"`
}
