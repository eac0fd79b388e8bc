package dto

// SyncErrorCode classifies a per-item or per-account sync failure.
const (
	SyncErrAuthentication = "authentication"
	SyncErrTransient      = "transient"
	SyncErrIntegrity      = "integrity"
	SyncErrInternal       = "internal"
)

// SyncError is a single isolated failure inside a sync run.
type SyncError struct {
	Code    string `json:"code"`
	ItemRef string `json:"item_ref,omitempty"`
	Message string `json:"message"`
}

// SyncResult is the structured report of an analytics or comment sync run.
// Per-item failures live in Errors; the call itself only errors on
// preconditions (unknown account, lock held).
type SyncResult struct {
	RecordsUpserted int         `json:"records_upserted"`
	Partial         bool        `json:"partial,omitempty"`
	Errors          []SyncError `json:"errors,omitempty"`
}

// CatalogSyncResult aggregates one catalog push run. Not persisted. Partial
// marks a run cut short by the deadline; pushed items are kept.
type CatalogSyncResult struct {
	Created    int         `json:"created"`
	Updated    int         `json:"updated"`
	Failed     int         `json:"failed"`
	Partial    bool        `json:"partial,omitempty"`
	ItemErrors []SyncError `json:"item_errors,omitempty"`
}

// OAuthInitiation is returned when a connection flow starts.
type OAuthInitiation struct {
	AuthURL string `json:"auth_url"`
	State   string `json:"state"`
}

// AccountView is the listing shape for a connected account. The access token
// is never returned; only a masked tail for display.
type AccountView struct {
	ID                int64   `json:"id"`
	Platform          string  `json:"platform"`
	ExternalAccountID string  `json:"external_account_id"`
	DisplayName       string  `json:"display_name"`
	Status            string  `json:"status"`
	MaskedAccessToken string  `json:"masked_access_token"`
	TokenExpiresAt    *string `json:"token_expires_at,omitempty"`
}
