package repository

import (
	"context"

	"social-hub/domain/model"
)

// IPlatformClient is the injected collaborator that talks to third-party
// platforms. It receives decrypted tokens and returns normalized shapes;
// wire-level details stay behind the implementation. Failed calls are
// classified with errs.ErrAuthentication / errs.ErrTransientPlatform.
type IPlatformClient interface {
	// BuildAuthURL returns the platform authorization URL for the given app
	// client id, callback and CSRF state.
	BuildAuthURL(platform, clientID, redirectURI, state string) (string, error)
	// ExchangeCode trades an authorization code for tokens using the decrypted
	// app credentials of the workspace.
	ExchangeCode(ctx context.Context, platform, clientID, clientSecret, redirectURI, code string) (*model.TokenSet, error)
	// FetchProfile resolves which external account the access token belongs to.
	FetchProfile(ctx context.Context, platform, accessToken string) (*model.AccountProfile, error)
	// FetchDailyMetrics returns normalized per-day analytics for the account.
	FetchDailyMetrics(ctx context.Context, platform, accessToken, externalAccountID string, days int) ([]model.DailyMetrics, error)
	// FetchCommentsPage returns comments newer than cursor, oldest first.
	FetchCommentsPage(ctx context.Context, platform, accessToken, postPlatformID, cursor string) (*model.CommentPage, error)
	// FetchShopItems returns the platform shop state keyed by SKU.
	FetchShopItems(ctx context.Context, platform, accessToken string) (map[string]model.ShopItem, error)
	// CreateShopItem pushes a new item and returns its external id.
	CreateShopItem(ctx context.Context, platform, accessToken string, item *model.CatalogItem) (string, error)
	// UpdateShopItem pushes changed fields for an existing item.
	UpdateShopItem(ctx context.Context, platform, accessToken, externalItemID string, item *model.CatalogItem) error
}
