package repository_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"inventory-service/internal/domain/model"
	"inventory-service/internal/infra/db"
	infraRepo "inventory-service/internal/infra/repository"
	repo "inventory-service/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 実DBが無ければskip
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.Ping(ctx, gormDB); err != nil {
		t.Skipf("postgres not available: %v", err)
	}

	require.NoError(t, db.Migrate(gormDB))
	t.Cleanup(func() { _ = db.Close(gormDB) })
	return gormDB
}

// テストごとに重ならないproduct_id
func uniqueProductID(t *testing.T, gormDB *gorm.DB) int64 {
	t.Helper()

	id := time.Now().UnixNano() % 1_000_000_000_000
	t.Cleanup(func() {
		gormDB.Where("product_id = ?", id).Delete(&model.Inventory{})
	})
	return id
}

func countRows(t *testing.T, gormDB *gorm.DB, productID int64) int64 {
	t.Helper()

	var n int64
	require.NoError(t, gormDB.Model(&model.Inventory{}).Where("product_id = ?", productID).Count(&n).Error)
	return n
}

func TestInventoryGorm_FindByProductID_NotFound(t *testing.T) {
	gormDB := openTestDB(t)
	r := infraRepo.NewInventoryGormRepository(gormDB)
	pid := uniqueProductID(t, gormDB)

	_, err := r.FindByProductID(context.Background(), pid)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestInventoryGorm_UpsertStock_InsertThenRead(t *testing.T) {
	gormDB := openTestDB(t)
	r := infraRepo.NewInventoryGormRepository(gormDB)
	pid := uniqueProductID(t, gormDB)
	ctx := context.Background()

	got, err := r.UpsertStock(ctx, pid, 5)
	require.NoError(t, err)
	assert.Equal(t, model.Inventory{ProductID: pid, Stock: 5}, got)

	read, err := r.FindByProductID(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, model.Inventory{ProductID: pid, Stock: 5}, read)
}

func TestInventoryGorm_UpsertStock_OverwritesAndIsIdempotent(t *testing.T) {
	gormDB := openTestDB(t)
	r := infraRepo.NewInventoryGormRepository(gormDB)
	pid := uniqueProductID(t, gormDB)
	ctx := context.Background()

	_, err := r.UpsertStock(ctx, pid, 10)
	require.NoError(t, err)

	first, err := r.UpsertStock(ctx, pid, 3)
	require.NoError(t, err)
	second, err := r.UpsertStock(ctx, pid, 3)
	require.NoError(t, err)

	assert.Equal(t, int64(3), first.Stock)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), countRows(t, gormDB, pid))
}

func TestInventoryGorm_UpsertStock_ZeroStock(t *testing.T) {
	gormDB := openTestDB(t)
	r := infraRepo.NewInventoryGormRepository(gormDB)
	pid := uniqueProductID(t, gormDB)

	got, err := r.UpsertStock(context.Background(), pid, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Stock)
}

// CHECK制約でマイナスはDB側でも弾かれる
func TestInventoryGorm_UpsertStock_CheckConstraint(t *testing.T) {
	gormDB := openTestDB(t)
	r := infraRepo.NewInventoryGormRepository(gormDB)
	pid := uniqueProductID(t, gormDB)

	_, err := r.UpsertStock(context.Background(), pid, -1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlstate 23514")
	assert.Equal(t, int64(0), countRows(t, gormDB, pid))
}

// 同じproduct_idへの同時初回書き込みでも1行だけ、値はどちらか
func TestInventoryGorm_UpsertStock_ConcurrentLastWriteWins(t *testing.T) {
	gormDB := openTestDB(t)
	r := infraRepo.NewInventoryGormRepository(gormDB)
	pid := uniqueProductID(t, gormDB)
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(stock int64) {
			defer wg.Done()
			if _, err := r.UpsertStock(ctx, pid, stock); err != nil {
				errs <- err
			}
		}(int64(100 + i%2))
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("UpsertStock failed: %v", err)
	}

	assert.Equal(t, int64(1), countRows(t, gormDB, pid))

	got, err := r.FindByProductID(ctx, pid)
	require.NoError(t, err)
	assert.Contains(t, []int64{100, 101}, got.Stock)
}
