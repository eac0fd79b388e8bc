package repository

import (
	"context"

	"social-hub/domain/model"
)

// ICredential persists encrypted OAuth app credentials per (workspace, platform).
type ICredential interface {
	GetCredential(ctx context.Context, workspaceID, platform string) (*model.WorkspaceCredential, error)
	UpsertCredential(ctx context.Context, cred *model.WorkspaceCredential) error
	DeleteCredential(ctx context.Context, workspaceID, platform string) error
}
