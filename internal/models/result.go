package models

import "time"

// Result records that a listing has been processed for a search, so it is
// never notified twice. Unique on (search_id, listing_id).
type Result struct {
	ID          int64     `json:"id"`
	SearchID    int64     `json:"search_id"`
	ListingID   string    `json:"listing_id"`
	Title       string    `json:"title"`
	Price       *int64    `json:"price"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	SentAt      time.Time `json:"sent_at"`
}
