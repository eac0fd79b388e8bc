package repository

import (
	"context"

	"social-hub/domain/model"
)

// ISocialAccount persists connected platform accounts.
type ISocialAccount interface {
	GetByID(ctx context.Context, id int64) (*model.SocialAccount, error)
	GetByExternalID(ctx context.Context, workspaceID, platform, externalAccountID string) (*model.SocialAccount, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*model.SocialAccount, error)
	ListActiveByWorkspace(ctx context.Context, workspaceID string) ([]*model.SocialAccount, error)
	// Upsert creates the account or refreshes tokens when the same external
	// account reconnects. The stored record's ID is written back.
	Upsert(ctx context.Context, account *model.SocialAccount) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
}
