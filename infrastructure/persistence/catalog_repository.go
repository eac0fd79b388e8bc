package persistence

import (
	"context"
	"database/sql"
	"time"

	"social-hub/domain/model"
)

// CatalogRepository reads workspace catalog state (PostgreSQL).
type CatalogRepository struct{ db *sql.DB }

func NewCatalogRepository(db *sql.DB) *CatalogRepository { return &CatalogRepository{db: db} }

func (r *CatalogRepository) ListItems(ctx context.Context, workspaceID string) ([]*model.CatalogItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, workspace_id, sku, title, description, price_cents, currency, quantity, external_item_id, updated_at
		FROM catalog_items WHERE workspace_id=$1 ORDER BY sku ASC`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*model.CatalogItem
	for rows.Next() {
		item := &model.CatalogItem{}
		var ext sql.NullString
		if err := rows.Scan(&item.ID, &item.WorkspaceID, &item.SKU, &item.Title, &item.Description, &item.PriceCents, &item.Currency, &item.Quantity, &ext, &item.UpdatedAt); err != nil {
			return nil, err
		}
		if ext.Valid {
			v := ext.String
			item.ExternalItemID = &v
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

func (r *CatalogRepository) SetExternalRef(ctx context.Context, itemID int64, externalItemID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE catalog_items SET external_item_id=$1, updated_at=$2 WHERE id=$3`,
		externalItemID, time.Now().UTC(), itemID)
	return err
}
