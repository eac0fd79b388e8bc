package repository

import (
	"context"

	"social-hub/domain/model"
)

// IActivity appends audit-trail entries. Implementations are best-effort.
type IActivity interface {
	Record(ctx context.Context, entry *model.ActivityEntry) error
	ListRecent(ctx context.Context, workspaceID string, limit int) ([]model.ActivityEntry, error)
}
