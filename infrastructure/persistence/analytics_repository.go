package persistence

import (
	"context"
	"database/sql"
	"time"

	"social-hub/domain/model"
)

// AnalyticsRepository persists daily analytics mirrors (PostgreSQL).
type AnalyticsRepository struct{ db *sql.DB }

func NewAnalyticsRepository(db *sql.DB) *AnalyticsRepository { return &AnalyticsRepository{db: db} }

// UpsertDailyRecord overwrites the row for (account_id, date); re-running a
// sync for the same day never duplicates.
func (r *AnalyticsRepository) UpsertDailyRecord(ctx context.Context, rec *model.PlatformAnalyticsRecord) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	q := `INSERT INTO platform_analytics_records (account_id, date, followers, impressions, engagements, clicks, created_at, updated_at)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		  ON CONFLICT (account_id, date) DO UPDATE SET
			followers=EXCLUDED.followers,
			impressions=EXCLUDED.impressions,
			engagements=EXCLUDED.engagements,
			clicks=EXCLUDED.clicks,
			updated_at=EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, q, rec.AccountID, rec.Date, rec.Followers, rec.Impressions, rec.Engagements, rec.Clicks, rec.CreatedAt, rec.UpdatedAt)
	return err
}

func (r *AnalyticsRepository) ListByAccount(ctx context.Context, accountID int64, limit int) ([]*model.PlatformAnalyticsRecord, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id, account_id, date, followers, impressions, engagements, clicks, created_at, updated_at
		FROM platform_analytics_records WHERE account_id=$1 ORDER BY date DESC LIMIT $2`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*model.PlatformAnalyticsRecord
	for rows.Next() {
		rec := &model.PlatformAnalyticsRecord{}
		if err := rows.Scan(&rec.ID, &rec.AccountID, &rec.Date, &rec.Followers, &rec.Impressions, &rec.Engagements, &rec.Clicks, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}
