package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"inventory-service/internal/domain/model"
	repo "inventory-service/internal/repository"

	"github.com/go-playground/validator/v10"
)

// SetStockの入力
type SetStockInput struct {
	ProductID int64
	Stock     int64 `validate:"gte=0"`
}

type InventoryUsecase struct {
	inventoryRepo repo.InventoryRepository
	cache         repo.StockCache // nilならキャッシュ無し
	cacheTTL      time.Duration
	validate      *validator.Validate
	logger        *slog.Logger
}

// 任意の依存を差し込む
type InventoryOption func(*InventoryUsecase)

// GetStockの前段にキャッシュを置く
func WithStockCache(c repo.StockCache, ttl time.Duration) InventoryOption {
	return func(u *InventoryUsecase) {
		u.cache = c
		u.cacheTTL = ttl
	}
}

// DI
func NewInventoryUsecase(inventoryRepo repo.InventoryRepository, logger *slog.Logger, opts ...InventoryOption) *InventoryUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	u := &InventoryUsecase{
		inventoryRepo: inventoryRepo,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		logger:        logger,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// GetStockは在庫を返す。無ければ404、DBエラーは500（404と混ぜない）。
func (u *InventoryUsecase) GetStock(ctx context.Context, productID int64) (model.Inventory, error) {
	var gen int64
	cacheUsable := u.cache != nil
	if cacheUsable {
		item, ok, g, err := u.cache.Get(ctx, productID)
		switch {
		case err != nil:
			//世代が分からないので書き戻さない
			cacheUsable = false
			u.logger.WarnContext(ctx, "stock cache get failed", "product_id", productID, "error", err)
		case ok:
			return item, nil
		default:
			gen = g
		}
	}

	item, err := u.inventoryRepo.FindByProductID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Inventory{}, ErrNotFound
	}
	if err != nil {
		u.logger.ErrorContext(ctx, "read stock failed", "product_id", productID, "error", err)
		return model.Inventory{}, ErrInternal
	}

	//読んでいる間に書き込みがあれば世代が進んでいるので書き戻さない
	if cacheUsable {
		filled, err := u.cache.Fill(ctx, item, gen, u.cacheTTL)
		if err != nil {
			u.logger.WarnContext(ctx, "stock cache fill failed", "product_id", productID, "error", err)
		} else if !filled {
			u.logger.DebugContext(ctx, "stock cache fill skipped", "product_id", productID)
		}
	}
	return item, nil
}

// SetStockは在庫を上書きする（無ければ作る）。マイナスはDBに行く前に400。
func (u *InventoryUsecase) SetStock(ctx context.Context, in SetStockInput) (model.Inventory, error) {
	if err := u.validate.StructCtx(ctx, in); err != nil {
		u.logger.WarnContext(ctx, "rejected negative stock", "product_id", in.ProductID, "stock", in.Stock)
		return model.Inventory{}, ErrInvalidInput
	}

	item, err := u.inventoryRepo.UpsertStock(ctx, in.ProductID, in.Stock)
	if err != nil {
		u.logger.ErrorContext(ctx, "set stock failed", "product_id", in.ProductID, "error", err)
		return model.Inventory{}, ErrInternal
	}

	//commit後に世代を進める。これより前に読んだ値はもうキャッシュに入らない
	if u.cache != nil {
		if err := u.cache.Invalidate(ctx, item.ProductID); err != nil {
			u.logger.WarnContext(ctx, "stock cache invalidate failed", "product_id", item.ProductID, "error", err)
		}
	}
	return item, nil
}
