package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"social-hub/domain/errs"
	"social-hub/domain/model"
)

func accountRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "workspace_id", "platform", "external_account_id", "display_name",
		"access_token", "refresh_token", "token_expires_at", "status", "created_at", "updated_at",
	}).AddRow(
		int64(1), "ws-1", "facebook", "ext-1", "Main Page",
		"enc-access", "enc-refresh", now.Add(time.Hour), "active", now, now,
	)
}

func TestSocialAccountRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSocialAccountRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT `+accountColumns+` FROM social_accounts WHERE id=$1`)).
		WithArgs(int64(1)).
		WillReturnRows(accountRows(now))

	account, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "ws-1", account.WorkspaceID)
	require.Equal(t, "enc-access", account.AccessToken)
	require.NotNil(t, account.TokenExpiresAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSocialAccountRepository_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSocialAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT `+accountColumns+` FROM social_accounts WHERE id=$1`)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.GetByID(context.Background(), 99)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSocialAccountRepository_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSocialAccountRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO social_accounts`)).
		WithArgs("ws-1", "facebook", "ext-1", "Main Page", "enc-access", "enc-refresh",
			sqlmock.AnyArg(), "active", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now))

	account := &model.SocialAccount{
		WorkspaceID:       "ws-1",
		Platform:          "facebook",
		ExternalAccountID: "ext-1",
		DisplayName:       "Main Page",
		AccessToken:       "enc-access",
		RefreshToken:      "enc-refresh",
		Status:            "active",
	}
	require.NoError(t, repo.Upsert(context.Background(), account))
	require.Equal(t, int64(7), account.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSocialAccountRepository_ListActiveByWorkspace(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSocialAccountRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM social_accounts WHERE workspace_id=$1 AND status='active'`)).
		WithArgs("ws-1").
		WillReturnRows(accountRows(now))

	accounts, err := repo.ListActiveByWorkspace(context.Background(), "ws-1")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.Equal(t, "active", accounts[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSocialAccountRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSocialAccountRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE social_accounts SET status=$1, updated_at=$2 WHERE id=$3`)).
		WithArgs("expired", sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), 1, "expired"))
	require.NoError(t, mock.ExpectationsWereMet())
}
