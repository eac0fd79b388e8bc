package model

import "time"

// PlatformAnalyticsRecord is one day of normalized metrics for an account.
// Keyed by (account_id, date); re-sync overwrites the row for the day.
type PlatformAnalyticsRecord struct {
	ID          int64     `json:"id"`
	AccountID   int64     `json:"account_id"`
	Date        string    `json:"date"` // YYYY-MM-DD
	Followers   int64     `json:"followers"`
	Impressions int64     `json:"impressions"`
	Engagements int64     `json:"engagements"`
	Clicks      int64     `json:"clicks"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
