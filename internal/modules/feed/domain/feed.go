package domain

import "time"

// FeedConfig represents the header of a watcher's RSS feed
type FeedConfig struct {
	WatcherID int64     `json:"watcher_id"`
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Updated   time.Time `json:"updated"`
}
