package usecase_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"social-hub/domain/errs"
	"social-hub/domain/model"
	"social-hub/infrastructure/vault"
	"social-hub/usecase"
)

// Mock implementations

type MockCredentialRepo struct {
	mock.Mock
}

func (m *MockCredentialRepo) GetCredential(ctx context.Context, workspaceID, platform string) (*model.WorkspaceCredential, error) {
	args := m.Called(ctx, workspaceID, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WorkspaceCredential), args.Error(1)
}

func (m *MockCredentialRepo) UpsertCredential(ctx context.Context, cred *model.WorkspaceCredential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

func (m *MockCredentialRepo) DeleteCredential(ctx context.Context, workspaceID, platform string) error {
	args := m.Called(ctx, workspaceID, platform)
	return args.Error(0)
}

type MockAccountRepo struct {
	mock.Mock
}

func (m *MockAccountRepo) GetByID(ctx context.Context, id int64) (*model.SocialAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SocialAccount), args.Error(1)
}

func (m *MockAccountRepo) GetByExternalID(ctx context.Context, workspaceID, platform, externalAccountID string) (*model.SocialAccount, error) {
	args := m.Called(ctx, workspaceID, platform, externalAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SocialAccount), args.Error(1)
}

func (m *MockAccountRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]*model.SocialAccount, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.SocialAccount), args.Error(1)
}

func (m *MockAccountRepo) ListActiveByWorkspace(ctx context.Context, workspaceID string) ([]*model.SocialAccount, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.SocialAccount), args.Error(1)
}

func (m *MockAccountRepo) Upsert(ctx context.Context, account *model.SocialAccount) error {
	args := m.Called(ctx, account)
	account.ID = 42
	return args.Error(0)
}

func (m *MockAccountRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockAccountRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPlatformClient struct {
	mock.Mock
}

func (m *MockPlatformClient) BuildAuthURL(platform, clientID, redirectURI, state string) (string, error) {
	args := m.Called(platform, clientID, redirectURI, state)
	return args.String(0), args.Error(1)
}

func (m *MockPlatformClient) ExchangeCode(ctx context.Context, platform, clientID, clientSecret, redirectURI, code string) (*model.TokenSet, error) {
	args := m.Called(ctx, platform, clientID, clientSecret, redirectURI, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TokenSet), args.Error(1)
}

func (m *MockPlatformClient) FetchProfile(ctx context.Context, platform, accessToken string) (*model.AccountProfile, error) {
	args := m.Called(ctx, platform, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AccountProfile), args.Error(1)
}

func (m *MockPlatformClient) FetchDailyMetrics(ctx context.Context, platform, accessToken, externalAccountID string, days int) ([]model.DailyMetrics, error) {
	args := m.Called(ctx, platform, accessToken, externalAccountID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DailyMetrics), args.Error(1)
}

func (m *MockPlatformClient) FetchCommentsPage(ctx context.Context, platform, accessToken, postPlatformID, cursor string) (*model.CommentPage, error) {
	args := m.Called(ctx, platform, accessToken, postPlatformID, cursor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CommentPage), args.Error(1)
}

func (m *MockPlatformClient) FetchShopItems(ctx context.Context, platform, accessToken string) (map[string]model.ShopItem, error) {
	args := m.Called(ctx, platform, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]model.ShopItem), args.Error(1)
}

func (m *MockPlatformClient) CreateShopItem(ctx context.Context, platform, accessToken string, item *model.CatalogItem) (string, error) {
	args := m.Called(ctx, platform, accessToken, item)
	return args.String(0), args.Error(1)
}

func (m *MockPlatformClient) UpdateShopItem(ctx context.Context, platform, accessToken, externalItemID string, item *model.CatalogItem) error {
	args := m.Called(ctx, platform, accessToken, externalItemID, item)
	return args.Error(0)
}

var testVaultKey = []byte("0123456789abcdef0123456789abcdef")

func newTestVault(t *testing.T) *vault.CredentialVault {
	t.Helper()
	v, err := vault.New(testVaultKey)
	require.NoError(t, err)
	return v
}

func encrypted(t *testing.T, v *vault.CredentialVault, plaintext string) string {
	t.Helper()
	ct, err := v.Encrypt(plaintext)
	require.NoError(t, err)
	return ct
}

func storedCredential(t *testing.T, v *vault.CredentialVault, workspaceID, platform string) *model.WorkspaceCredential {
	t.Helper()
	return &model.WorkspaceCredential{
		ID:           1,
		WorkspaceID:  workspaceID,
		Platform:     platform,
		ClientID:     encrypted(t, v, "app-client-id"),
		ClientSecret: encrypted(t, v, "app-client-secret"),
	}
}

func TestOAuthUsecase_Initiate(t *testing.T) {
	v := newTestVault(t)
	credRepo := new(MockCredentialRepo)
	accountRepo := new(MockAccountRepo)
	client := new(MockPlatformClient)

	credRepo.On("GetCredential", mock.Anything, "ws-1", "facebook").
		Return(storedCredential(t, v, "ws-1", "facebook"), nil)
	client.On("BuildAuthURL", "facebook", "app-client-id", "https://hub.example.com/api/accounts/callback/facebook", mock.Anything).
		Return("https://www.facebook.com/dialog/oauth?client_id=app-client-id", nil)

	uc := usecase.NewOAuthUsecase(credRepo, accountRepo, nil, client, v, "https://hub.example.com", 10*time.Minute)

	initiation, err := uc.Initiate(context.Background(), "ws-1", "facebook")
	require.NoError(t, err)
	assert.NotEmpty(t, initiation.AuthURL)
	assert.NotEmpty(t, initiation.State)

	// the state round-trips as base64 JSON bound to workspace and platform
	raw, err := base64.URLEncoding.DecodeString(initiation.State)
	require.NoError(t, err)
	var payload struct {
		WorkspaceID string `json:"workspaceId"`
		Platform    string `json:"platform"`
		Timestamp   int64  `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "ws-1", payload.WorkspaceID)
	assert.Equal(t, "facebook", payload.Platform)
	assert.InDelta(t, time.Now().UnixMilli(), payload.Timestamp, float64(5*time.Second.Milliseconds()))
	client.AssertExpectations(t)
}

func TestOAuthUsecase_Initiate_MissingCredential(t *testing.T) {
	v := newTestVault(t)
	credRepo := new(MockCredentialRepo)
	credRepo.On("GetCredential", mock.Anything, "ws-1", "tiktok").Return(nil, nil)

	uc := usecase.NewOAuthUsecase(credRepo, new(MockAccountRepo), nil, new(MockPlatformClient), v, "http://localhost:10001", 10*time.Minute)

	_, err := uc.Initiate(context.Background(), "ws-1", "tiktok")
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

func makeState(workspaceID, platform string, issuedAt time.Time) string {
	raw, _ := json.Marshal(map[string]interface{}{
		"workspaceId": workspaceID,
		"platform":    platform,
		"timestamp":   issuedAt.UnixMilli(),
	})
	return base64.URLEncoding.EncodeToString(raw)
}

func TestOAuthUsecase_CompleteCallback(t *testing.T) {
	v := newTestVault(t)
	credRepo := new(MockCredentialRepo)
	accountRepo := new(MockAccountRepo)
	client := new(MockPlatformClient)

	expiry := time.Now().Add(time.Hour).UTC()
	credRepo.On("GetCredential", mock.Anything, "ws-1", "etsy").
		Return(storedCredential(t, v, "ws-1", "etsy"), nil)
	client.On("ExchangeCode", mock.Anything, "etsy", "app-client-id", "app-client-secret", mock.Anything, "auth-code").
		Return(&model.TokenSet{AccessToken: "access-tok", RefreshToken: "refresh-tok", ExpiresAt: &expiry}, nil)
	client.On("FetchProfile", mock.Anything, "etsy", "access-tok").
		Return(&model.AccountProfile{ExternalAccountID: "shop-777", DisplayName: "My Shop"}, nil)
	accountRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	uc := usecase.NewOAuthUsecase(credRepo, accountRepo, nil, client, v, "http://localhost:10001", 10*time.Minute)

	// a provider redirect supplies only platform, code and state; the
	// workspace is recovered from the state token
	state := makeState("ws-1", "etsy", time.Now())
	account, err := uc.CompleteCallback(context.Background(), "etsy", "auth-code", state)
	require.NoError(t, err)

	assert.Equal(t, "ws-1", account.WorkspaceID)
	assert.Equal(t, "shop-777", account.ExternalAccountID)
	assert.Equal(t, model.AccountStatusActive, account.Status)

	// tokens are stored as vault ciphertext, never plaintext
	assert.NotEqual(t, "access-tok", account.AccessToken)
	plain, err := v.Decrypt(account.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "access-tok", plain)
	plain, err = v.Decrypt(account.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh-tok", plain)
	accountRepo.AssertExpectations(t)
}

func TestOAuthUsecase_CompleteCallback_StateMismatch(t *testing.T) {
	v := newTestVault(t)
	uc := usecase.NewOAuthUsecase(new(MockCredentialRepo), new(MockAccountRepo), nil, new(MockPlatformClient), v, "http://localhost:10001", 10*time.Minute)

	// state issued for another platform
	state := makeState("ws-1", "facebook", time.Now())
	_, err := uc.CompleteCallback(context.Background(), "etsy", "code", state)
	assert.ErrorIs(t, err, errs.ErrStateInvalid)

	// state without a workspace binding
	state = makeState("", "etsy", time.Now())
	_, err = uc.CompleteCallback(context.Background(), "etsy", "code", state)
	assert.ErrorIs(t, err, errs.ErrStateInvalid)
}

func TestOAuthUsecase_CompleteCallback_StateExpired(t *testing.T) {
	v := newTestVault(t)
	uc := usecase.NewOAuthUsecase(new(MockCredentialRepo), new(MockAccountRepo), nil, new(MockPlatformClient), v, "http://localhost:10001", 10*time.Minute)

	state := makeState("ws-1", "etsy", time.Now().Add(-11*time.Minute))
	_, err := uc.CompleteCallback(context.Background(), "etsy", "code", state)
	assert.ErrorIs(t, err, errs.ErrStateExpired)
}

func TestOAuthUsecase_CompleteCallback_GarbageState(t *testing.T) {
	v := newTestVault(t)
	uc := usecase.NewOAuthUsecase(new(MockCredentialRepo), new(MockAccountRepo), nil, new(MockPlatformClient), v, "http://localhost:10001", 10*time.Minute)

	_, err := uc.CompleteCallback(context.Background(), "etsy", "code", "!!!not-base64!!!")
	assert.ErrorIs(t, err, errs.ErrStateInvalid)

	garbage := base64.URLEncoding.EncodeToString([]byte("not json"))
	_, err = uc.CompleteCallback(context.Background(), "etsy", "code", garbage)
	assert.ErrorIs(t, err, errs.ErrStateInvalid)
}

func TestOAuthUsecase_Disconnect(t *testing.T) {
	v := newTestVault(t)
	accountRepo := new(MockAccountRepo)
	accountRepo.On("GetByID", mock.Anything, int64(7)).
		Return(&model.SocialAccount{ID: 7, WorkspaceID: "ws-1", Platform: "facebook", DisplayName: "Page"}, nil)
	accountRepo.On("Delete", mock.Anything, int64(7)).Return(nil)

	uc := usecase.NewOAuthUsecase(new(MockCredentialRepo), accountRepo, nil, new(MockPlatformClient), v, "http://localhost:10001", 10*time.Minute)

	require.NoError(t, uc.Disconnect(context.Background(), "ws-1", 7))
	accountRepo.AssertExpectations(t)
}

func TestOAuthUsecase_Disconnect_WrongWorkspace(t *testing.T) {
	v := newTestVault(t)
	accountRepo := new(MockAccountRepo)
	accountRepo.On("GetByID", mock.Anything, int64(7)).
		Return(&model.SocialAccount{ID: 7, WorkspaceID: "ws-other"}, nil)

	uc := usecase.NewOAuthUsecase(new(MockCredentialRepo), accountRepo, nil, new(MockPlatformClient), v, "http://localhost:10001", 10*time.Minute)

	err := uc.Disconnect(context.Background(), "ws-1", 7)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestOAuthUsecase_RegisterCredential_EncryptsAtRest(t *testing.T) {
	v := newTestVault(t)
	credRepo := new(MockCredentialRepo)
	var stored *model.WorkspaceCredential
	credRepo.On("UpsertCredential", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*model.WorkspaceCredential) }).
		Return(nil)

	uc := usecase.NewOAuthUsecase(credRepo, new(MockAccountRepo), nil, new(MockPlatformClient), v, "http://localhost:10001", 10*time.Minute)

	require.NoError(t, uc.RegisterCredential(context.Background(), "ws-1", "Instagram", "cid-123", "secret-456"))
	require.NotNil(t, stored)
	assert.Equal(t, "instagram", stored.Platform)
	assert.NotEqual(t, "cid-123", stored.ClientID)
	plain, err := v.Decrypt(stored.ClientSecret)
	require.NoError(t, err)
	assert.Equal(t, "secret-456", plain)
}

func TestOAuthUsecase_ListAccounts_MasksTokens(t *testing.T) {
	v := newTestVault(t)
	accountRepo := new(MockAccountRepo)
	accountRepo.On("ListByWorkspace", mock.Anything, "ws-1").
		Return([]*model.SocialAccount{
			{ID: 1, Platform: "facebook", DisplayName: "Page", Status: model.AccountStatusActive, AccessToken: encrypted(t, v, "secret-token-1234")},
		}, nil)

	uc := usecase.NewOAuthUsecase(new(MockCredentialRepo), accountRepo, nil, new(MockPlatformClient), v, "http://localhost:10001", 10*time.Minute)

	views, err := uc.ListAccounts(context.Background(), "ws-1")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "****1234", views[0].MaskedAccessToken)
}

func TestOAuthUsecase_RedirectURIWellFormed(t *testing.T) {
	v := newTestVault(t)
	credRepo := new(MockCredentialRepo)
	client := new(MockPlatformClient)
	credRepo.On("GetCredential", mock.Anything, "ws-1", "facebook").
		Return(storedCredential(t, v, "ws-1", "facebook"), nil)

	var gotRedirect string
	client.On("BuildAuthURL", "facebook", "app-client-id", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { gotRedirect = args.String(2) }).
		Return("https://example.com/auth", nil)

	uc := usecase.NewOAuthUsecase(credRepo, new(MockAccountRepo), nil, client, v, "https://hub.example.com/", 10*time.Minute)
	_, err := uc.Initiate(context.Background(), "ws-1", "facebook")
	require.NoError(t, err)

	parsed, err := url.Parse(gotRedirect)
	require.NoError(t, err)
	assert.Equal(t, "/api/accounts/callback/facebook", parsed.Path)
	assert.Equal(t, fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host), "https://hub.example.com")
}
