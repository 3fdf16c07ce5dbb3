// internal/domain/models/feed.go
package models

import "time"

// FeedItem is one entry from the external announcements feed.
type FeedItem struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Category    string     `json:"category,omitempty"`
}

// FeedSnapshot is what gets cached: the items and when they were fetched.
type FeedSnapshot struct {
	Items     []FeedItem `json:"items"`
	FetchedAt time.Time  `json:"fetched_at"`
}
