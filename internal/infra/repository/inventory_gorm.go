package repository

import (
	"context"
	"errors"
	"fmt"

	"inventory-service/internal/domain/model"
	repo "inventory-service/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

var _ repo.InventoryRepository = (*InventoryGormRepository)(nil)

// DI
func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 在庫を1件取得
func (r *InventoryGormRepository) FindByProductID(ctx context.Context, productID int64) (model.Inventory, error) {
	var item model.Inventory
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Take(&item).Error

	if isNotFound(err) {
		return model.Inventory{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Inventory{}, wrapPgError("find inventory", err)
	}
	return item, nil
}

// 在庫の現在値を設定。
// INSERT ... ON CONFLICT (product_id) DO UPDATE SET stock = EXCLUDED.stock RETURNING *
// の1文で行うので、同じproduct_idへの同時更新はDB側で直列化される（最後にcommitした方が残る）。
func (r *InventoryGormRepository) UpsertStock(ctx context.Context, productID int64, stock int64) (model.Inventory, error) {
	item := model.Inventory{ProductID: productID, Stock: stock}

	res := upsertStock(r.db.WithContext(ctx), &item)

	if res.Error != nil {
		return model.Inventory{}, wrapPgError("upsert inventory", res.Error)
	}
	if res.RowsAffected == 0 {
		return model.Inventory{}, fmt.Errorf("upsert inventory: no row returned for product_id=%d", productID)
	}
	return item, nil
}

// 実行はしない。tx上にupsert文を組み立ててCreateする
func upsertStock(tx *gorm.DB, item *model.Inventory) *gorm.DB {
	return tx.
		Clauses(
			clause.OnConflict{
				Columns:   []clause.Column{{Name: "product_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"stock"}),
			},
			clause.Returning{},
		).
		Create(item)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// SQLSTATEをログで追えるように付けておく（呼び出し側には出さない）
func wrapPgError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s (sqlstate %s): %w", op, pgErr.Code, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
