package repository

import (
	"testing"

	"inventory-service/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 接続せずにSQLだけ組み立てる
func openDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=postgres dbname=inventory sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gormDB
}

// upsertは1文（INSERT ... ON CONFLICT ... RETURNING）で、読んでから書くことはしない
func TestUpsertStock_SingleStatement(t *testing.T) {
	gormDB := openDryRunDB(t)

	sql := gormDB.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return upsertStock(tx, &model.Inventory{ProductID: 7, Stock: 0})
	})

	assert.Equal(t,
		`INSERT INTO "inventory" ("product_id","stock") VALUES (7,0) ON CONFLICT ("product_id") DO UPDATE SET "stock"="excluded"."stock" RETURNING *`,
		sql,
	)
}

// product_idは自動採番されず、負の値も渡したまま入る
func TestUpsertStock_UsesGivenProductID(t *testing.T) {
	gormDB := openDryRunDB(t)

	sql := gormDB.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return upsertStock(tx, &model.Inventory{ProductID: -3, Stock: 42})
	})

	assert.Contains(t, sql, `VALUES (-3,42)`)
}
