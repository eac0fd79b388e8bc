package model

import "time"

// SocialAccount statuses
const (
	AccountStatusActive  = "active"
	AccountStatusExpired = "expired"
	AccountStatusRevoked = "revoked"
)

// SocialAccount is a connected third-party account inside a workspace.
// AccessToken and RefreshToken are stored encrypted (vault ciphertext).
type SocialAccount struct {
	ID                int64      `json:"id"`
	WorkspaceID       string     `json:"workspace_id"`
	Platform          string     `json:"platform"`
	ExternalAccountID string     `json:"external_account_id"`
	DisplayName       string     `json:"display_name"`
	AccessToken       string     `json:"-"`
	RefreshToken      string     `json:"-"`
	TokenExpiresAt    *time.Time `json:"token_expires_at,omitempty"`
	Status            string     `json:"status"` // active | expired | revoked
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// WorkspaceCredential holds the encrypted OAuth app credentials registered for
// a (workspace, platform) pair. Unique per pair.
type WorkspaceCredential struct {
	ID           int64     `json:"id"`
	WorkspaceID  string    `json:"workspace_id"`
	Platform     string    `json:"platform"`
	ClientID     string    `json:"-"`
	ClientSecret string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
