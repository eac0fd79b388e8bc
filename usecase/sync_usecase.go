package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"social-hub/domain/dto"
	"social-hub/domain/errs"
	"social-hub/domain/model"
	"social-hub/domain/repository"
	"social-hub/infrastructure/logger"
	"social-hub/infrastructure/pubsub"
	"social-hub/infrastructure/realtime"
	"social-hub/infrastructure/servicebus"
	"social-hub/infrastructure/vault"
)

type ISyncUsecase interface {
	// SyncAccountAnalytics pulls the last `days` of metrics for one account and
	// upserts one row per day. Re-running for the same day overwrites, never
	// duplicates.
	SyncAccountAnalytics(ctx context.Context, accountID int64, days int) (*dto.SyncResult, error)
	// SyncWorkspaceAnalytics fans out over every active account in the
	// workspace. One account failing never aborts the others; the returned map
	// has an entry for every account attempted.
	SyncWorkspaceAnalytics(ctx context.Context, workspaceID string, days int) (map[int64]*dto.SyncResult, error)
	// SyncPostComments pulls comment pages newer than the stored cursor. The
	// cursor advances only after a page is committed, so interrupted runs
	// re-fetch at most one committed page (at-least-once, deduped on upsert).
	SyncPostComments(ctx context.Context, accountID int64, postPlatformID string) (*dto.SyncResult, error)
	// SyncCatalogToPlatform diffs the local catalog against the platform shop
	// and pushes creates/updates item by item.
	SyncCatalogToPlatform(ctx context.Context, workspaceID string, accountID int64) (*dto.CatalogSyncResult, error)
	// SyncWorkspaceCatalog resolves the workspace's active account on the
	// platform and runs a catalog sync against it.
	SyncWorkspaceCatalog(ctx context.Context, workspaceID, platform string) (*dto.CatalogSyncResult, error)
}

type syncUsecase struct {
	accountRepo   repository.ISocialAccount
	analyticsRepo repository.IAnalytics
	commentRepo   repository.IComment
	catalogRepo   repository.ICatalog
	activityRepo  repository.IActivity
	lock          repository.ISyncLock
	client        repository.IPlatformClient
	vault         *vault.CredentialVault

	publisher pubsub.ISyncEventPublisher
	bus       servicebus.ISyncEventBus
	hub       *realtime.Hub
	topic     string

	parallelism int
	deadline    time.Duration
}

func NewSyncUsecase(
	accountRepo repository.ISocialAccount,
	analyticsRepo repository.IAnalytics,
	commentRepo repository.IComment,
	catalogRepo repository.ICatalog,
	activityRepo repository.IActivity,
	lock repository.ISyncLock,
	client repository.IPlatformClient,
	credVault *vault.CredentialVault,
	publisher pubsub.ISyncEventPublisher,
	bus servicebus.ISyncEventBus,
	hub *realtime.Hub,
	topic string,
	parallelism int,
	deadline time.Duration,
) ISyncUsecase {
	if parallelism <= 0 {
		parallelism = 4
	}
	if deadline <= 0 {
		deadline = 5 * time.Minute
	}
	return &syncUsecase{
		accountRepo:   accountRepo,
		analyticsRepo: analyticsRepo,
		commentRepo:   commentRepo,
		catalogRepo:   catalogRepo,
		activityRepo:  activityRepo,
		lock:          lock,
		client:        client,
		vault:         credVault,
		publisher:     publisher,
		bus:           bus,
		hub:           hub,
		topic:         topic,
		parallelism:   parallelism,
		deadline:      deadline,
	}
}

// classify maps a platform failure onto the sync error taxonomy.
func classify(err error) string {
	switch {
	case errors.Is(err, errs.ErrAuthentication):
		return dto.SyncErrAuthentication
	case errors.Is(err, errs.ErrTransientPlatform), errors.Is(err, context.DeadlineExceeded):
		return dto.SyncErrTransient
	case errors.Is(err, errs.ErrDataIntegrity):
		return dto.SyncErrIntegrity
	default:
		return dto.SyncErrInternal
	}
}

// accessToken loads the account and decrypts its access token. Non-active
// accounts fail with ErrAuthentication so callers prompt a reconnect.
func (u *syncUsecase) accessToken(ctx context.Context, accountID int64) (*model.SocialAccount, string, error) {
	account, err := u.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, "", err
	}
	if account == nil {
		return nil, "", fmt.Errorf("%w: account %d", errs.ErrNotFound, accountID)
	}
	if account.Status != model.AccountStatusActive {
		return nil, "", fmt.Errorf("%w: account %d is %s", errs.ErrAuthentication, accountID, account.Status)
	}
	token, err := u.vault.Decrypt(account.AccessToken)
	if err != nil {
		return nil, "", err
	}
	return account, token, nil
}

// handleAuthFailure flips the account to expired so later runs skip it until
// the user reconnects.
func (u *syncUsecase) handleAuthFailure(ctx context.Context, account *model.SocialAccount, err error) {
	if !errors.Is(err, errs.ErrAuthentication) || account.Status != model.AccountStatusActive {
		return
	}
	if updErr := u.accountRepo.UpdateStatus(ctx, account.ID, model.AccountStatusExpired); updErr != nil {
		logger.GetLogger().WithField("error", updErr).Error("Error while marking account expired.")
	}
}

func (u *syncUsecase) notify(ctx context.Context, evt realtime.SyncStatusEvent) {
	if u.hub != nil {
		u.hub.BroadcastSyncStatus(evt)
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return
	}
	if u.publisher != nil {
		if _, err := u.publisher.Publish(ctx, u.topic, payload); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Sync event publish failed")
		}
	}
	if u.bus != nil {
		if err := u.bus.SendMessage(payload); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Sync event send failed")
		}
	}
}

func (u *syncUsecase) recordActivity(ctx context.Context, account *model.SocialAccount, detail string) {
	if u.activityRepo == nil {
		return
	}
	_ = u.activityRepo.Record(ctx, &model.ActivityEntry{
		WorkspaceID: account.WorkspaceID,
		Platform:    account.Platform,
		Kind:        "sync_run",
		Detail:      detail,
		CreatedAt:   time.Now(),
	})
}

func (u *syncUsecase) SyncAccountAnalytics(ctx context.Context, accountID int64, days int) (*dto.SyncResult, error) {
	key := fmt.Sprintf("analytics:%d", accountID)
	ok, err := u.lock.Acquire(ctx, key, u.deadline+30*time.Second)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: account %d", errs.ErrAlreadyInProgress, accountID)
	}
	defer func() {
		if relErr := u.lock.Release(context.Background(), key); relErr != nil {
			logger.GetLogger().WithField("error", relErr).Warn("Sync lock release failed")
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, u.deadline)
	defer cancel()
	return u.syncAccountAnalyticsLocked(ctx, accountID, days)
}

func (u *syncUsecase) syncAccountAnalyticsLocked(ctx context.Context, accountID int64, days int) (*dto.SyncResult, error) {
	account, token, err := u.accessToken(ctx, accountID)
	if err != nil {
		return nil, err
	}

	metrics, err := u.client.FetchDailyMetrics(ctx, account.Platform, token, account.ExternalAccountID, days)
	if err != nil {
		u.handleAuthFailure(ctx, account, err)
		return nil, err
	}

	result := &dto.SyncResult{}
	for _, day := range metrics {
		if ctx.Err() != nil {
			// deadline hit: committed rows stay, report partial
			result.Partial = true
			break
		}
		rec := &model.PlatformAnalyticsRecord{
			AccountID:   account.ID,
			Date:        day.Date,
			Followers:   day.Followers,
			Impressions: day.Impressions,
			Engagements: day.Engagements,
			Clicks:      day.Clicks,
		}
		if err := u.analyticsRepo.UpsertDailyRecord(ctx, rec); err != nil {
			result.Errors = append(result.Errors, dto.SyncError{
				Code:    classify(err),
				ItemRef: day.Date,
				Message: err.Error(),
			})
			continue
		}
		result.RecordsUpserted++
	}

	u.recordActivity(ctx, account, fmt.Sprintf("analytics sync upserted %d day(s)", result.RecordsUpserted))
	u.notify(ctx, realtime.SyncStatusEvent{
		Type:        "analytics_sync",
		WorkspaceID: account.WorkspaceID,
		Platform:    account.Platform,
		AccountID:   fmt.Sprintf("%d", account.ID),
		Status:      "completed",
		Records:     result.RecordsUpserted,
	})
	return result, nil
}

func (u *syncUsecase) SyncWorkspaceAnalytics(ctx context.Context, workspaceID string, days int) (map[int64]*dto.SyncResult, error) {
	accounts, err := u.accountRepo.ListActiveByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	results := make(map[int64]*dto.SyncResult, len(accounts))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.parallelism)
	for _, account := range accounts {
		account := account
		g.Go(func() error {
			res, runErr := u.SyncAccountAnalytics(gctx, account.ID, days)
			if runErr != nil {
				// failure is isolated into the per-account entry
				res = &dto.SyncResult{Errors: []dto.SyncError{{
					Code:    classify(runErr),
					ItemRef: fmt.Sprintf("account:%d", account.ID),
					Message: runErr.Error(),
				}}}
				logger.GetLogger().
					WithField("workspaceId", workspaceID).
					WithField("accountId", account.ID).
					WithField("error", runErr).
					Warn("Account analytics sync failed")
			}
			mu.Lock()
			results[account.ID] = res
			mu.Unlock()
			return nil
		})
	}
	// goroutines never return errors, Wait only joins them
	_ = g.Wait()
	return results, nil
}

func (u *syncUsecase) SyncPostComments(ctx context.Context, accountID int64, postPlatformID string) (*dto.SyncResult, error) {
	key := "comments:" + postPlatformID
	ok, err := u.lock.Acquire(ctx, key, u.deadline+30*time.Second)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: post %s", errs.ErrAlreadyInProgress, postPlatformID)
	}
	defer func() {
		if relErr := u.lock.Release(context.Background(), key); relErr != nil {
			logger.GetLogger().WithField("error", relErr).Warn("Sync lock release failed")
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, u.deadline)
	defer cancel()

	account, token, err := u.accessToken(ctx, accountID)
	if err != nil {
		return nil, err
	}

	cursor, err := u.commentRepo.GetCursor(ctx, postPlatformID)
	if err != nil {
		return nil, err
	}
	position := ""
	if cursor != nil {
		position = cursor.LastExternalID
	}

	result := &dto.SyncResult{}
	for {
		if ctx.Err() != nil {
			// committed pages already advanced the cursor
			result.Partial = true
			break
		}
		page, err := u.client.FetchCommentsPage(ctx, account.Platform, token, postPlatformID, position)
		if err != nil {
			u.handleAuthFailure(ctx, account, err)
			if result.RecordsUpserted > 0 {
				result.Partial = true
				result.Errors = append(result.Errors, dto.SyncError{
					Code:    classify(err),
					ItemRef: postPlatformID,
					Message: err.Error(),
				})
				break
			}
			return nil, err
		}
		if len(page.Comments) == 0 {
			break
		}

		written, err := u.commentRepo.UpsertComments(ctx, postPlatformID, page.Comments)
		if err != nil {
			return nil, err
		}
		result.RecordsUpserted += written

		// commit first, then advance; the repository enforces monotonicity
		last := page.Comments[len(page.Comments)-1]
		if err := u.commentRepo.AdvanceCursor(ctx, &model.SyncCursor{
			PostPlatformID: postPlatformID,
			LastExternalID: last.ExternalID,
			LastTimestamp:  last.PublishedAt,
		}); err != nil {
			return nil, err
		}
		position = page.NextCursor
		if !page.HasMore {
			break
		}
	}

	u.recordActivity(ctx, account, fmt.Sprintf("comment sync wrote %d comment(s) for post %s", result.RecordsUpserted, postPlatformID))
	u.notify(ctx, realtime.SyncStatusEvent{
		Type:        "comment_sync",
		WorkspaceID: account.WorkspaceID,
		Platform:    account.Platform,
		AccountID:   fmt.Sprintf("%d", account.ID),
		Status:      "completed",
		Records:     result.RecordsUpserted,
	})
	return result, nil
}

func (u *syncUsecase) SyncWorkspaceCatalog(ctx context.Context, workspaceID, platform string) (*dto.CatalogSyncResult, error) {
	accounts, err := u.accountRepo.ListActiveByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	for _, account := range accounts {
		if account.Platform == platform {
			return u.SyncCatalogToPlatform(ctx, workspaceID, account.ID)
		}
	}
	return nil, fmt.Errorf("%w: no active %s account in workspace %s", errs.ErrNotFound, platform, workspaceID)
}

// shopItemDiffers reports whether the platform copy is stale.
func shopItemDiffers(local *model.CatalogItem, remote model.ShopItem) bool {
	return remote.Title != local.Title ||
		remote.PriceCents != local.PriceCents ||
		remote.Quantity != local.Quantity
}

func (u *syncUsecase) SyncCatalogToPlatform(ctx context.Context, workspaceID string, accountID int64) (*dto.CatalogSyncResult, error) {
	key := fmt.Sprintf("catalog:%d", accountID)
	ok, err := u.lock.Acquire(ctx, key, u.deadline+30*time.Second)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: account %d", errs.ErrAlreadyInProgress, accountID)
	}
	defer func() {
		if relErr := u.lock.Release(context.Background(), key); relErr != nil {
			logger.GetLogger().WithField("error", relErr).Warn("Sync lock release failed")
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, u.deadline)
	defer cancel()

	account, token, err := u.accessToken(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.WorkspaceID != workspaceID {
		return nil, fmt.Errorf("%w: account %d", errs.ErrNotFound, accountID)
	}

	remote, err := u.client.FetchShopItems(ctx, account.Platform, token)
	if err != nil {
		u.handleAuthFailure(ctx, account, err)
		return nil, err
	}
	items, err := u.catalogRepo.ListItems(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	result := &dto.CatalogSyncResult{}
	for _, item := range items {
		if ctx.Err() != nil {
			// deadline hit: pushed items stay, report partial
			result.Partial = true
			break
		}
		shopItem, exists := remote[item.SKU]
		switch {
		case !exists && item.ExternalItemID == nil:
			externalID, err := u.client.CreateShopItem(ctx, account.Platform, token, item)
			if err != nil {
				result.Failed++
				result.ItemErrors = append(result.ItemErrors, dto.SyncError{
					Code:    classify(err),
					ItemRef: item.SKU,
					Message: err.Error(),
				})
				continue
			}
			if err := u.catalogRepo.SetExternalRef(ctx, item.ID, externalID); err != nil {
				logger.GetLogger().WithField("error", err).Error("Error while saving external item ref.")
			}
			result.Created++
		case exists && shopItemDiffers(item, shopItem):
			if err := u.client.UpdateShopItem(ctx, account.Platform, token, shopItem.ExternalID, item); err != nil {
				result.Failed++
				result.ItemErrors = append(result.ItemErrors, dto.SyncError{
					Code:    classify(err),
					ItemRef: item.SKU,
					Message: err.Error(),
				})
				continue
			}
			if item.ExternalItemID == nil {
				if err := u.catalogRepo.SetExternalRef(ctx, item.ID, shopItem.ExternalID); err != nil {
					logger.GetLogger().WithField("error", err).Error("Error while saving external item ref.")
				}
			}
			result.Updated++
		}
	}

	u.recordActivity(ctx, account, fmt.Sprintf("catalog sync created %d, updated %d, failed %d", result.Created, result.Updated, result.Failed))
	u.notify(ctx, realtime.SyncStatusEvent{
		Type:        "catalog_sync",
		WorkspaceID: account.WorkspaceID,
		Platform:    account.Platform,
		AccountID:   fmt.Sprintf("%d", account.ID),
		Status:      "completed",
		Records:     result.Created + result.Updated,
	})
	return result, nil
}
