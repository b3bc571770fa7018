package repository

import (
	"context"
	"errors"
	"time"

	"inventory-service/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

type InventoryRepository interface {
	// 在庫を1件取得。無ければErrNotFound
	FindByProductID(ctx context.Context, productID int64) (model.Inventory, error)

	// 在庫の現在値を設定（INSERT ... ON CONFLICT で1文）。書き込み後の行を返す
	UpsertStock(ctx context.Context, productID int64, stock int64) (model.Inventory, error)
}

// 読み取り用キャッシュ。ミスは ok=false
// genはGet時点の世代。書き戻しは世代が進んでいないときだけ成功する
type StockCache interface {
	Get(ctx context.Context, productID int64) (item model.Inventory, ok bool, gen int64, err error)

	// genから世代が進んでいれば書かずにfalse
	Fill(ctx context.Context, item model.Inventory, gen int64, ttl time.Duration) (bool, error)

	// 書き込みcommit後に呼ぶ。世代を進めて値を消す
	Invalidate(ctx context.Context, productID int64) error
}
