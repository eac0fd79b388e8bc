package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"social-hub/domain/model"
)

func TestAnalyticsRepository_UpsertDailyRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAnalyticsRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (account_id, date) DO UPDATE SET`)).
		WithArgs(int64(1), "2026-08-29", int64(100), int64(1000), int64(50), int64(7), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := &model.PlatformAnalyticsRecord{
		AccountID:   1,
		Date:        "2026-08-29",
		Followers:   100,
		Impressions: 1000,
		Engagements: 50,
		Clicks:      7,
	}
	require.NoError(t, repo.UpsertDailyRecord(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepository_ListByAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAnalyticsRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM platform_analytics_records WHERE account_id=$1 ORDER BY date DESC LIMIT $2`)).
		WithArgs(int64(1), 30).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "account_id", "date", "followers", "impressions", "engagements", "clicks", "created_at", "updated_at",
		}).
			AddRow(int64(2), int64(1), "2026-08-29", int64(101), int64(900), int64(40), int64(4), now, now).
			AddRow(int64(1), int64(1), "2026-08-28", int64(100), int64(1000), int64(50), int64(7), now, now))

	records, err := repo.ListByAccount(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "2026-08-29", records[0].Date)
	require.NoError(t, mock.ExpectationsWereMet())
}
