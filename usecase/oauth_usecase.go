package usecase

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"social-hub/domain/dto"
	"social-hub/domain/errs"
	"social-hub/domain/model"
	"social-hub/domain/repository"
	"social-hub/infrastructure/logger"
	"social-hub/infrastructure/vault"
)

// stateToken is the round-tripped OAuth state payload. Timestamp is epoch
// milliseconds; the token is a CSRF nonce, not a bearer credential.
type stateToken struct {
	WorkspaceID string `json:"workspaceId"`
	Platform    string `json:"platform"`
	Timestamp   int64  `json:"timestamp"`
}

type IOAuthUsecase interface {
	// RegisterCredential stores platform app credentials for a workspace,
	// encrypted at rest.
	RegisterCredential(ctx context.Context, workspaceID, platform, clientID, clientSecret string) error
	// Initiate starts a connection flow and returns the authorization URL plus
	// the state token embedded in it.
	Initiate(ctx context.Context, workspaceID, platform string) (*dto.OAuthInitiation, error)
	// CompleteCallback validates state, exchanges the code and upserts the
	// connected account with encrypted tokens. The provider redirect carries
	// no session, so the workspace is read from the state token.
	CompleteCallback(ctx context.Context, platform, code, state string) (*model.SocialAccount, error)
	// Disconnect deletes the account and its stored tokens.
	Disconnect(ctx context.Context, workspaceID string, accountID int64) error
	// ListAccounts returns the workspace's connected accounts with masked
	// token display.
	ListAccounts(ctx context.Context, workspaceID string) ([]dto.AccountView, error)
	// ListActivity returns the recent audit trail for a workspace.
	ListActivity(ctx context.Context, workspaceID string, limit int) ([]model.ActivityEntry, error)
}

type oauthUsecase struct {
	credRepo     repository.ICredential
	accountRepo  repository.ISocialAccount
	activityRepo repository.IActivity
	client       repository.IPlatformClient
	vault        *vault.CredentialVault
	baseURL      string
	stateTTL     time.Duration
	now          func() time.Time
}

func NewOAuthUsecase(
	credRepo repository.ICredential,
	accountRepo repository.ISocialAccount,
	activityRepo repository.IActivity,
	client repository.IPlatformClient,
	credVault *vault.CredentialVault,
	baseURL string,
	stateTTL time.Duration,
) IOAuthUsecase {
	return &oauthUsecase{
		credRepo:     credRepo,
		accountRepo:  accountRepo,
		activityRepo: activityRepo,
		client:       client,
		vault:        credVault,
		baseURL:      strings.TrimRight(baseURL, "/"),
		stateTTL:     stateTTL,
		now:          time.Now,
	}
}

func (u *oauthUsecase) redirectURI(platform string) string {
	return fmt.Sprintf("%s/api/accounts/callback/%s", u.baseURL, platform)
}

func (u *oauthUsecase) RegisterCredential(ctx context.Context, workspaceID, platform, clientID, clientSecret string) error {
	if workspaceID == "" || platform == "" || clientID == "" || clientSecret == "" {
		return fmt.Errorf("%w: workspace, platform and app credentials are required", errs.ErrConfiguration)
	}
	encID, err := u.vault.Encrypt(clientID)
	if err != nil {
		return err
	}
	encSecret, err := u.vault.Encrypt(clientSecret)
	if err != nil {
		return err
	}
	cred := &model.WorkspaceCredential{
		WorkspaceID:  workspaceID,
		Platform:     strings.ToLower(platform),
		ClientID:     encID,
		ClientSecret: encSecret,
	}
	if err := u.credRepo.UpsertCredential(ctx, cred); err != nil {
		return err
	}
	logger.GetLogger().
		WithField("workspaceId", workspaceID).
		WithField("platform", platform).
		WithField("clientId", vault.MaskSecret(clientID)).
		Info("Workspace app credential registered")
	return nil
}

// appCredential loads and decrypts the workspace app credential.
func (u *oauthUsecase) appCredential(ctx context.Context, workspaceID, platform string) (clientID, clientSecret string, err error) {
	cred, err := u.credRepo.GetCredential(ctx, workspaceID, platform)
	if err != nil {
		// a workspace without registered app credentials is a setup problem,
		// not a lookup miss
		if errors.Is(err, errs.ErrNotFound) {
			return "", "", fmt.Errorf("%w: no app credential for workspace %s on %s", errs.ErrConfiguration, workspaceID, platform)
		}
		return "", "", err
	}
	if cred == nil {
		return "", "", fmt.Errorf("%w: no app credential for workspace %s on %s", errs.ErrConfiguration, workspaceID, platform)
	}
	clientID, err = u.vault.Decrypt(cred.ClientID)
	if err != nil {
		return "", "", err
	}
	clientSecret, err = u.vault.Decrypt(cred.ClientSecret)
	if err != nil {
		return "", "", err
	}
	return clientID, clientSecret, nil
}

func (u *oauthUsecase) encodeState(workspaceID, platform string) string {
	tok := stateToken{
		WorkspaceID: workspaceID,
		Platform:    platform,
		Timestamp:   u.now().UnixMilli(),
	}
	raw, _ := json.Marshal(tok)
	return base64.URLEncoding.EncodeToString(raw)
}

// decodeState decodes the round-tripped token and checks platform binding and
// freshness. The workspace comes from the token itself since the provider
// redirect arrives with no session attached.
func (u *oauthUsecase) decodeState(platform, state string) (*stateToken, error) {
	raw, err := base64.URLEncoding.DecodeString(state)
	if err != nil {
		return nil, fmt.Errorf("%w: state is not valid base64", errs.ErrStateInvalid)
	}
	var tok stateToken
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("%w: state payload malformed", errs.ErrStateInvalid)
	}
	if tok.WorkspaceID == "" || !strings.EqualFold(tok.Platform, platform) {
		return nil, fmt.Errorf("%w: state does not match this platform", errs.ErrStateInvalid)
	}
	issued := time.UnixMilli(tok.Timestamp)
	if u.now().Sub(issued) > u.stateTTL {
		return nil, fmt.Errorf("%w: state issued at %s", errs.ErrStateExpired, issued.UTC().Format(time.RFC3339))
	}
	return &tok, nil
}

func (u *oauthUsecase) Initiate(ctx context.Context, workspaceID, platform string) (*dto.OAuthInitiation, error) {
	platform = strings.ToLower(platform)
	clientID, _, err := u.appCredential(ctx, workspaceID, platform)
	if err != nil {
		return nil, err
	}
	state := u.encodeState(workspaceID, platform)
	authURL, err := u.client.BuildAuthURL(platform, clientID, u.redirectURI(platform), state)
	if err != nil {
		return nil, err
	}
	return &dto.OAuthInitiation{AuthURL: authURL, State: state}, nil
}

func (u *oauthUsecase) CompleteCallback(ctx context.Context, platform, code, state string) (*model.SocialAccount, error) {
	platform = strings.ToLower(platform)
	tok, err := u.decodeState(platform, state)
	if err != nil {
		return nil, err
	}
	workspaceID := tok.WorkspaceID
	clientID, clientSecret, err := u.appCredential(ctx, workspaceID, platform)
	if err != nil {
		return nil, err
	}
	tokens, err := u.client.ExchangeCode(ctx, platform, clientID, clientSecret, u.redirectURI(platform), code)
	if err != nil {
		return nil, err
	}
	profile, err := u.client.FetchProfile(ctx, platform, tokens.AccessToken)
	if err != nil {
		return nil, err
	}

	encAccess, err := u.vault.Encrypt(tokens.AccessToken)
	if err != nil {
		return nil, err
	}
	encRefresh := ""
	if tokens.RefreshToken != "" {
		if encRefresh, err = u.vault.Encrypt(tokens.RefreshToken); err != nil {
			return nil, err
		}
	}

	account := &model.SocialAccount{
		WorkspaceID:       workspaceID,
		Platform:          platform,
		ExternalAccountID: profile.ExternalAccountID,
		DisplayName:       profile.DisplayName,
		AccessToken:       encAccess,
		RefreshToken:      encRefresh,
		TokenExpiresAt:    tokens.ExpiresAt,
		Status:            model.AccountStatusActive,
	}
	if err := u.accountRepo.Upsert(ctx, account); err != nil {
		return nil, err
	}

	if u.activityRepo != nil {
		_ = u.activityRepo.Record(ctx, &model.ActivityEntry{
			WorkspaceID: workspaceID,
			Platform:    platform,
			Kind:        "connected",
			Detail:      fmt.Sprintf("account %s (%s) connected", profile.DisplayName, profile.ExternalAccountID),
			CreatedAt:   u.now(),
		})
	}
	logger.GetLogger().
		WithField("workspaceId", workspaceID).
		WithField("platform", platform).
		WithField("externalAccountId", profile.ExternalAccountID).
		Info("Account connected")
	return account, nil
}

// Disconnect removes the account and its encrypted tokens. Revocation is a
// hard delete; sync failures use the expired status instead.
func (u *oauthUsecase) Disconnect(ctx context.Context, workspaceID string, accountID int64) error {
	account, err := u.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account == nil || account.WorkspaceID != workspaceID {
		return fmt.Errorf("%w: account %d", errs.ErrNotFound, accountID)
	}
	if err := u.accountRepo.Delete(ctx, accountID); err != nil {
		return err
	}
	if u.activityRepo != nil {
		_ = u.activityRepo.Record(ctx, &model.ActivityEntry{
			WorkspaceID: workspaceID,
			Platform:    account.Platform,
			Kind:        "disconnected",
			Detail:      fmt.Sprintf("account %s disconnected", account.DisplayName),
			CreatedAt:   u.now(),
		})
	}
	return nil
}

func (u *oauthUsecase) ListAccounts(ctx context.Context, workspaceID string) ([]dto.AccountView, error) {
	accounts, err := u.accountRepo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	views := make([]dto.AccountView, 0, len(accounts))
	for _, account := range accounts {
		view := dto.AccountView{
			ID:                account.ID,
			Platform:          account.Platform,
			ExternalAccountID: account.ExternalAccountID,
			DisplayName:       account.DisplayName,
			Status:            account.Status,
		}
		if token, err := u.vault.Decrypt(account.AccessToken); err == nil {
			view.MaskedAccessToken = vault.MaskSecret(token)
		}
		if account.TokenExpiresAt != nil {
			exp := account.TokenExpiresAt.UTC().Format(time.RFC3339)
			view.TokenExpiresAt = &exp
		}
		views = append(views, view)
	}
	return views, nil
}

func (u *oauthUsecase) ListActivity(ctx context.Context, workspaceID string, limit int) ([]model.ActivityEntry, error) {
	if u.activityRepo == nil {
		return nil, nil
	}
	return u.activityRepo.ListRecent(ctx, workspaceID, limit)
}
