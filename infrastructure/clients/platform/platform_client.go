package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"golang.org/x/oauth2"

	"social-hub/domain/errs"
	"social-hub/domain/model"
	"social-hub/domain/repository"
	"social-hub/infrastructure/logger"
)

// endpoints describes one supported platform. API responses are already
// normalized by a gateway-style aggregation API, so every platform shares the
// same resource paths under its base URL.
type endpoints struct {
	AuthURL  string
	TokenURL string
	APIBase  string
	Scopes   []string
}

var registry = map[string]endpoints{
	"facebook": {
		AuthURL:  "https://www.facebook.com/v19.0/dialog/oauth",
		TokenURL: "https://graph.facebook.com/v19.0/oauth/access_token",
		APIBase:  "https://graph.facebook.com/v19.0",
		Scopes:   []string{"pages_show_list", "pages_read_engagement", "read_insights"},
	},
	"instagram": {
		AuthURL:  "https://api.instagram.com/oauth/authorize",
		TokenURL: "https://api.instagram.com/oauth/access_token",
		APIBase:  "https://graph.instagram.com",
		Scopes:   []string{"user_profile", "user_media"},
	},
	"tiktok": {
		AuthURL:  "https://www.tiktok.com/v2/auth/authorize",
		TokenURL: "https://open.tiktokapis.com/v2/oauth/token",
		APIBase:  "https://open.tiktokapis.com/v2",
		Scopes:   []string{"user.info.basic", "video.list"},
	},
	"etsy": {
		AuthURL:  "https://www.etsy.com/oauth/connect",
		TokenURL: "https://api.etsy.com/v3/public/oauth/token",
		APIBase:  "https://api.etsy.com/v3/application",
		Scopes:   []string{"listings_r", "listings_w", "shops_r"},
	},
}

// Client is the HTTP implementation of the platform collaborator.
type Client struct {
	httpClient *http.Client
	// overrideBase points every platform at one host; used by tests.
	overrideBase string
}

func NewClient() repository.IPlatformClient {
	return &Client{httpClient: &http.Client{Timeout: 30 * time.Second}}
}

// NewClientWithBase points all API calls at base (test servers).
func NewClientWithBase(base string) repository.IPlatformClient {
	return &Client{httpClient: &http.Client{Timeout: 30 * time.Second}, overrideBase: base}
}

func (c *Client) lookup(platform string) (endpoints, error) {
	ep, ok := registry[strings.ToLower(platform)]
	if !ok {
		return endpoints{}, fmt.Errorf("%w: unsupported platform %q", errs.ErrConfiguration, platform)
	}
	if c.overrideBase != "" {
		ep.APIBase = c.overrideBase
		ep.TokenURL = c.overrideBase + "/oauth/token"
	}
	return ep, nil
}

func (c *Client) BuildAuthURL(platform, clientID, redirectURI, state string) (string, error) {
	ep, err := c.lookup(platform)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(ep.AuthURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("client_id", clientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("response_type", "code")
	q.Set("scope", strings.Join(ep.Scopes, ","))
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) ExchangeCode(ctx context.Context, platform, clientID, clientSecret, redirectURI, code string) (*model.TokenSet, error) {
	ep, err := c.lookup(platform)
	if err != nil {
		return nil, err
	}
	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       ep.Scopes,
		Endpoint:     oauth2.Endpoint{AuthURL: ep.AuthURL, TokenURL: ep.TokenURL},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, classifyExchangeError(err)
	}
	set := &model.TokenSet{AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken}
	if !tok.Expiry.IsZero() {
		exp := tok.Expiry.UTC()
		set.ExpiresAt = &exp
	}
	return set, nil
}

func (c *Client) FetchProfile(ctx context.Context, platform, accessToken string) (*model.AccountProfile, error) {
	var out model.AccountProfile
	if err := c.get(ctx, platform, accessToken, "/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type metricsQuery struct {
	Days int `url:"days"`
}

func (c *Client) FetchDailyMetrics(ctx context.Context, platform, accessToken, externalAccountID string, days int) ([]model.DailyMetrics, error) {
	if days <= 0 {
		days = 7
	}
	var out struct {
		Data []model.DailyMetrics `json:"data"`
	}
	path := fmt.Sprintf("/accounts/%s/insights", url.PathEscape(externalAccountID))
	if err := c.get(ctx, platform, accessToken, path, metricsQuery{Days: days}, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

type commentsQuery struct {
	After string `url:"after,omitempty"`
	Limit int    `url:"limit"`
}

func (c *Client) FetchCommentsPage(ctx context.Context, platform, accessToken, postPlatformID, cursor string) (*model.CommentPage, error) {
	var out model.CommentPage
	path := fmt.Sprintf("/posts/%s/comments", url.PathEscape(postPlatformID))
	if err := c.get(ctx, platform, accessToken, path, commentsQuery{After: cursor, Limit: 100}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FetchShopItems(ctx context.Context, platform, accessToken string) (map[string]model.ShopItem, error) {
	var out struct {
		Items []model.ShopItem `json:"items"`
	}
	if err := c.get(ctx, platform, accessToken, "/shop/items", nil, &out); err != nil {
		return nil, err
	}
	items := make(map[string]model.ShopItem, len(out.Items))
	for _, item := range out.Items {
		items[item.SKU] = item
	}
	return items, nil
}

func (c *Client) CreateShopItem(ctx context.Context, platform, accessToken string, item *model.CatalogItem) (string, error) {
	var out struct {
		ExternalID string `json:"external_id"`
	}
	if err := c.send(ctx, http.MethodPost, platform, accessToken, "/shop/items", item, &out); err != nil {
		return "", err
	}
	return out.ExternalID, nil
}

func (c *Client) UpdateShopItem(ctx context.Context, platform, accessToken, externalItemID string, item *model.CatalogItem) error {
	path := fmt.Sprintf("/shop/items/%s", url.PathEscape(externalItemID))
	return c.send(ctx, http.MethodPut, platform, accessToken, path, item, nil)
}

func (c *Client) get(ctx context.Context, platform, accessToken, path string, params interface{}, out interface{}) error {
	ep, err := c.lookup(platform)
	if err != nil {
		return err
	}
	target := ep.APIBase + path
	if params != nil {
		v, err := query.Values(params)
		if err != nil {
			return err
		}
		target += "?" + v.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	return c.do(req, accessToken, out)
}

func (c *Client) send(ctx context.Context, method, platform, accessToken, path string, body interface{}, out interface{}) error {
	ep, err := c.lookup(platform)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, ep.APIBase+path, strings.NewReader(string(payload)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, accessToken, out)
}

func (c *Client) do(req *http.Request, accessToken string, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if err := classifyStatus(resp.StatusCode, raw); err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode platform response: %v", errs.ErrTransientPlatform, err)
	}
	return nil
}

func classifyStatus(status int, body []byte) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: platform rejected token (status %d)", errs.ErrAuthentication, status)
	case status == http.StatusTooManyRequests || status == http.StatusRequestTimeout || status >= 500:
		return fmt.Errorf("%w: platform returned status %d", errs.ErrTransientPlatform, status)
	case status >= 400:
		logger.GetLogger().WithField("body", string(body)).Warn("platform request failed")
		return fmt.Errorf("platform request failed with status %d", status)
	}
	return nil
}

// Network-level failures (timeouts, refused connections, DNS) are all retried
// upstream, so they share the transient classification.
func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: timeout: %v", errs.ErrTransientPlatform, err)
	}
	return fmt.Errorf("%w: %v", errs.ErrTransientPlatform, err)
}

func classifyExchangeError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return classifyStatus(retrieveErr.Response.StatusCode, retrieveErr.Body)
	}
	return classifyTransportError(err)
}
