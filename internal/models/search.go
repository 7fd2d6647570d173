package models

import "time"

// Search is a saved Kijiji search that gets scanned on its own interval.
// MinPrice/MaxPrice are in whole currency units; listing prices are in cents.
type Search struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Keyword         string     `json:"keyword"`
	RegionID        int64      `json:"region_id"`
	WebhookID       int64      `json:"webhook_id"`
	IntervalMinutes int        `json:"interval_minutes"`
	MinPrice        *int64     `json:"min_price"`
	MaxPrice        *int64     `json:"max_price"`
	Category        string     `json:"category"`
	NoDuplicates    bool       `json:"no_duplicates"`
	Radius          int        `json:"radius"`
	IsActive        bool       `json:"is_active"`
	LastScan        *time.Time `json:"last_scan"`
	CreatedAt       time.Time  `json:"created_at"`

	// Joined from regions/webhooks when loaded via SearchRepo.
	RegionName  string `json:"region_name"`
	RegionURL   string `json:"region_url"`
	WebhookName string `json:"webhook_name"`
	WebhookURL  string `json:"webhook_url"`
}
