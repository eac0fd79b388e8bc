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

func TestCommentRepository_UpsertComments_SinglePageTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCommentRepository(db)
	now := time.Now().UTC()
	parent := "c-1"
	comments := []model.PlatformComment{
		{ExternalID: "c-1", Author: "alice", Body: "hello", PublishedAt: now},
		{ExternalID: "c-2", ParentExternalID: &parent, Author: "bob", Body: "reply", PublishedAt: now.Add(time.Minute)},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO comment_records`)).
		WithArgs("post-9", "c-1", nil, "alice", "hello", comments[0].PublishedAt, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO comment_records`)).
		WithArgs("post-9", "c-2", "c-1", "bob", "reply", comments[1].PublishedAt, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	count, err := repo.UpsertComments(context.Background(), "post-9", comments)
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_UpsertComments_RollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCommentRepository(db)
	comments := []model.PlatformComment{{ExternalID: "c-1", PublishedAt: time.Now().UTC()}}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO comment_records`)).
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	_, err = repo.UpsertComments(context.Background(), "post-9", comments)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_GetCursor_MissingReturnsNil(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCommentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM comment_sync_cursors WHERE post_platform_id=$1`)).
		WithArgs("post-9").
		WillReturnRows(sqlmock.NewRows([]string{"post_platform_id"}))

	cursor, err := repo.GetCursor(context.Background(), "post-9")
	require.NoError(t, err)
	require.Nil(t, cursor)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_AdvanceCursor_HasMonotonicGuard(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCommentRepository(db)

	// the upsert must refuse to move the cursor backwards
	mock.ExpectExec(regexp.QuoteMeta(`WHERE comment_sync_cursors.last_timestamp <= EXCLUDED.last_timestamp`)).
		WithArgs("post-9", "c-5", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	cursor := &model.SyncCursor{
		PostPlatformID: "post-9",
		LastExternalID: "c-5",
		LastTimestamp:  time.Now().UTC(),
	}
	require.NoError(t, repo.AdvanceCursor(context.Background(), cursor))
	require.NoError(t, mock.ExpectationsWereMet())
}
