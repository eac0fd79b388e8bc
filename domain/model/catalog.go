package model

import "time"

// CatalogItem is a product in the workspace catalog. ExternalItemID is set
// once the item has been pushed to a platform shop.
type CatalogItem struct {
	ID             int64     `json:"id"`
	WorkspaceID    string    `json:"workspace_id"`
	SKU            string    `json:"sku"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	PriceCents     int64     `json:"price_cents"`
	Currency       string    `json:"currency"`
	Quantity       int       `json:"quantity"`
	ExternalItemID *string   `json:"external_item_id,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}
