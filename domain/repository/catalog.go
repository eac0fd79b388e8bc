package repository

import (
	"context"

	"social-hub/domain/model"
)

// ICatalog reads local catalog state and records platform references.
type ICatalog interface {
	ListItems(ctx context.Context, workspaceID string) ([]*model.CatalogItem, error)
	SetExternalRef(ctx context.Context, itemID int64, externalItemID string) error
}
