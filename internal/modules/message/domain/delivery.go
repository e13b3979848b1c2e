package domain

import "time"

// Delivery records one message forwarded to a watcher's destination
type Delivery struct {
	ID              int64     `json:"id"`
	WatcherID       int64     `json:"watcher_id"`
	SubscriptionID  int64     `json:"subscription_id"`
	SourceStreamID  string    `json:"source_stream_id"`
	SourceTitle     string    `json:"source_title"`
	SourceMessageID int       `json:"source_message_id"`
	DestinationID   string    `json:"destination_id"`
	Author          string    `json:"author"`
	Text            string    `json:"text"`
	Media           MediaType `json:"media"`
	// Identifier is the token address handed to enrichment, if any.
	Identifier  string    `json:"identifier,omitempty"`
	DeliveredAt time.Time `json:"delivered_at"`
}
