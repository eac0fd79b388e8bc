package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"social-hub/domain/model"
)

// CommentRepository persists mirrored comments and sync cursors (PostgreSQL).
type CommentRepository struct{ db *sql.DB }

func NewCommentRepository(db *sql.DB) *CommentRepository { return &CommentRepository{db: db} }

// UpsertComments writes one page inside a transaction so a retried page is
// either fully applied or not at all. Dedupes on (post, external id).
func (r *CommentRepository) UpsertComments(ctx context.Context, postPlatformID string, comments []model.PlatformComment) (int, error) {
	if len(comments) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	now := time.Now().UTC()
	q := `INSERT INTO comment_records (post_platform_id, external_comment_id, parent_external_id, author, body, published_at, created_at, updated_at)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,$7)
		  ON CONFLICT (post_platform_id, external_comment_id) DO UPDATE SET
			body=EXCLUDED.body,
			author=EXCLUDED.author,
			updated_at=EXCLUDED.updated_at`
	count := 0
	for _, c := range comments {
		if _, err = tx.ExecContext(ctx, q, postPlatformID, c.ExternalID, c.ParentExternalID, c.Author, c.Body, c.PublishedAt, now); err != nil {
			return 0, err
		}
		count++
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CommentRepository) GetCursor(ctx context.Context, postPlatformID string) (*model.SyncCursor, error) {
	row := r.db.QueryRowContext(ctx, `SELECT post_platform_id, last_external_id, last_timestamp, updated_at
		FROM comment_sync_cursors WHERE post_platform_id=$1`, postPlatformID)
	cur := &model.SyncCursor{}
	if err := row.Scan(&cur.PostPlatformID, &cur.LastExternalID, &cur.LastTimestamp, &cur.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return cur, nil
}

// AdvanceCursor persists the new position. The WHERE guard keeps the cursor
// monotonically non-decreasing even when runs race.
func (r *CommentRepository) AdvanceCursor(ctx context.Context, cursor *model.SyncCursor) error {
	cursor.UpdatedAt = time.Now().UTC()
	q := `INSERT INTO comment_sync_cursors (post_platform_id, last_external_id, last_timestamp, updated_at)
		  VALUES ($1,$2,$3,$4)
		  ON CONFLICT (post_platform_id) DO UPDATE SET
			last_external_id=EXCLUDED.last_external_id,
			last_timestamp=EXCLUDED.last_timestamp,
			updated_at=EXCLUDED.updated_at
		  WHERE comment_sync_cursors.last_timestamp <= EXCLUDED.last_timestamp`
	_, err := r.db.ExecContext(ctx, q, cursor.PostPlatformID, cursor.LastExternalID, cursor.LastTimestamp, cursor.UpdatedAt)
	return err
}
