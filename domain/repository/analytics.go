package repository

import (
	"context"

	"social-hub/domain/model"
)

// IAnalytics persists daily analytics mirrors, one row per (account, date).
type IAnalytics interface {
	// UpsertDailyRecord overwrites the row for (rec.AccountID, rec.Date).
	UpsertDailyRecord(ctx context.Context, rec *model.PlatformAnalyticsRecord) error
	ListByAccount(ctx context.Context, accountID int64, limit int) ([]*model.PlatformAnalyticsRecord, error)
}
