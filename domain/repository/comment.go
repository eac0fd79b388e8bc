package repository

import (
	"context"

	"social-hub/domain/model"
)

// IComment persists mirrored comments and the per-post sync cursor.
type IComment interface {
	// UpsertComments dedupes on (post, external id) and returns the number of
	// rows written.
	UpsertComments(ctx context.Context, postPlatformID string, comments []model.PlatformComment) (int, error)
	GetCursor(ctx context.Context, postPlatformID string) (*model.SyncCursor, error)
	// AdvanceCursor persists the new position. Implementations must keep the
	// cursor monotonically non-decreasing.
	AdvanceCursor(ctx context.Context, cursor *model.SyncCursor) error
}
