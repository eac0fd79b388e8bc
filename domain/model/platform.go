package model

import "time"

// Normalized shapes exchanged with the platform client collaborator. The
// wire-level API of each platform stays behind the client.

// TokenSet is the result of an OAuth code exchange.
type TokenSet struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// AccountProfile identifies the external account the tokens belong to.
type AccountProfile struct {
	ExternalAccountID string `json:"external_account_id"`
	DisplayName       string `json:"display_name"`
}

// DailyMetrics is one normalized day of analytics from a platform.
type DailyMetrics struct {
	Date        string `json:"date"` // YYYY-MM-DD
	Followers   int64  `json:"followers"`
	Impressions int64  `json:"impressions"`
	Engagements int64  `json:"engagements"`
	Clicks      int64  `json:"clicks"`
}

// PlatformComment is one normalized comment or nested reply.
type PlatformComment struct {
	ExternalID       string    `json:"external_id"`
	ParentExternalID *string   `json:"parent_external_id,omitempty"`
	Author           string    `json:"author"`
	Body             string    `json:"body"`
	PublishedAt      time.Time `json:"published_at"`
}

// CommentPage is one page of comments newer than the requested cursor.
type CommentPage struct {
	Comments   []PlatformComment `json:"comments"`
	NextCursor string            `json:"next_cursor"`
	HasMore    bool              `json:"has_more"`
}

// ShopItem is the platform-side view of a catalog item, keyed by SKU.
type ShopItem struct {
	ExternalID string `json:"external_id"`
	SKU        string `json:"sku"`
	Title      string `json:"title"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int    `json:"quantity"`
}
