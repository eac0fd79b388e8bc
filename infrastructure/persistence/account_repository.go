package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"social-hub/domain/errs"
	"social-hub/domain/model"
)

const accountColumns = `id, workspace_id, platform, external_account_id, display_name, access_token, refresh_token, token_expires_at, status, created_at, updated_at`

// SocialAccountRepository persists connected accounts (PostgreSQL).
type SocialAccountRepository struct{ db *sql.DB }

func NewSocialAccountRepository(db *sql.DB) *SocialAccountRepository {
	return &SocialAccountRepository{db: db}
}

func scanAccount(row interface{ Scan(...interface{}) error }) (*model.SocialAccount, error) {
	acc := &model.SocialAccount{}
	var exp sql.NullTime
	if err := row.Scan(&acc.ID, &acc.WorkspaceID, &acc.Platform, &acc.ExternalAccountID, &acc.DisplayName,
		&acc.AccessToken, &acc.RefreshToken, &exp, &acc.Status, &acc.CreatedAt, &acc.UpdatedAt); err != nil {
		return nil, err
	}
	if exp.Valid {
		t := exp.Time
		acc.TokenExpiresAt = &t
	}
	return acc, nil
}

func (r *SocialAccountRepository) GetByID(ctx context.Context, id int64) (*model.SocialAccount, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM social_accounts WHERE id=$1`, id)
	acc, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: account %d", errs.ErrNotFound, id)
	}
	return acc, err
}

func (r *SocialAccountRepository) GetByExternalID(ctx context.Context, workspaceID, platform, externalAccountID string) (*model.SocialAccount, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM social_accounts
		WHERE workspace_id=$1 AND platform=$2 AND external_account_id=$3`, workspaceID, platform, externalAccountID)
	acc, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: account %s/%s/%s", errs.ErrNotFound, workspaceID, platform, externalAccountID)
	}
	return acc, err
}

func (r *SocialAccountRepository) listByWorkspace(ctx context.Context, workspaceID string, activeOnly bool) ([]*model.SocialAccount, error) {
	q := `SELECT ` + accountColumns + ` FROM social_accounts WHERE workspace_id=$1`
	if activeOnly {
		q += ` AND status='active'`
	}
	q += ` ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*model.SocialAccount
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, acc)
	}
	return list, rows.Err()
}

func (r *SocialAccountRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*model.SocialAccount, error) {
	return r.listByWorkspace(ctx, workspaceID, false)
}

func (r *SocialAccountRepository) ListActiveByWorkspace(ctx context.Context, workspaceID string) ([]*model.SocialAccount, error) {
	return r.listByWorkspace(ctx, workspaceID, true)
}

// Upsert creates the account or refreshes tokens/status when the same
// external account reconnects.
func (r *SocialAccountRepository) Upsert(ctx context.Context, account *model.SocialAccount) error {
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now
	q := `INSERT INTO social_accounts (workspace_id, platform, external_account_id, display_name, access_token, refresh_token, token_expires_at, status, created_at, updated_at)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		  ON CONFLICT (workspace_id, platform, external_account_id) DO UPDATE SET
			display_name=EXCLUDED.display_name,
			access_token=EXCLUDED.access_token,
			refresh_token=EXCLUDED.refresh_token,
			token_expires_at=EXCLUDED.token_expires_at,
			status=EXCLUDED.status,
			updated_at=EXCLUDED.updated_at
		  RETURNING id, created_at`
	row := r.db.QueryRowContext(ctx, q, account.WorkspaceID, account.Platform, account.ExternalAccountID,
		account.DisplayName, account.AccessToken, account.RefreshToken, account.TokenExpiresAt,
		account.Status, account.CreatedAt, account.UpdatedAt)
	return row.Scan(&account.ID, &account.CreatedAt)
}

func (r *SocialAccountRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE social_accounts SET status=$1, updated_at=$2 WHERE id=$3`,
		status, time.Now().UTC(), id)
	return err
}

func (r *SocialAccountRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM social_accounts WHERE id=$1`, id)
	return err
}
