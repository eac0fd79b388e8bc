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

// CredentialRepository stores encrypted OAuth app credentials (PostgreSQL).
type CredentialRepository struct{ db *sql.DB }

func NewCredentialRepository(db *sql.DB) *CredentialRepository { return &CredentialRepository{db: db} }

func (r *CredentialRepository) GetCredential(ctx context.Context, workspaceID, platform string) (*model.WorkspaceCredential, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, workspace_id, platform, client_id, client_secret, created_at, updated_at
		FROM workspace_credentials WHERE workspace_id=$1 AND platform=$2`, workspaceID, platform)
	cred := &model.WorkspaceCredential{}
	if err := row.Scan(&cred.ID, &cred.WorkspaceID, &cred.Platform, &cred.ClientID, &cred.ClientSecret, &cred.CreatedAt, &cred.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: credential for %s/%s", errs.ErrNotFound, workspaceID, platform)
		}
		return nil, err
	}
	return cred, nil
}

func (r *CredentialRepository) UpsertCredential(ctx context.Context, cred *model.WorkspaceCredential) error {
	now := time.Now().UTC()
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = now
	}
	cred.UpdatedAt = now
	q := `INSERT INTO workspace_credentials (workspace_id, platform, client_id, client_secret, created_at, updated_at)
		  VALUES ($1,$2,$3,$4,$5,$6)
		  ON CONFLICT (workspace_id, platform) DO UPDATE SET
			client_id=EXCLUDED.client_id,
			client_secret=EXCLUDED.client_secret,
			updated_at=EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, q, cred.WorkspaceID, cred.Platform, cred.ClientID, cred.ClientSecret, cred.CreatedAt, cred.UpdatedAt)
	return err
}

func (r *CredentialRepository) DeleteCredential(ctx context.Context, workspaceID, platform string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM workspace_credentials WHERE workspace_id=$1 AND platform=$2`, workspaceID, platform)
	return err
}
