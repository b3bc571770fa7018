package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"inventory-service/internal/domain/model"
	repo "inventory-service/internal/repository"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "inventory:stock"

// 世代が読んだときのままなら値を書く
// KEYS[1]=世代キー KEYS[2]=値キー ARGV[1]=読んだ世代 ARGV[2]=stock ARGV[3]=TTL(ms)
var fillScript = redis.NewScript(`
local g = redis.call('GET', KEYS[1]) or '0'
if g ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// RedisStockCache は在庫の読み取りキャッシュ。正はPostgres。
// 値キーと世代キーを持ち、書き込みのたびに世代を進める
type RedisStockCache struct {
	client    redis.UniversalClient
	keyPrefix string
}

var _ repo.StockCache = (*RedisStockCache)(nil)

// Redis接続設定
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// 接続してpingまで通す
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// DI
func NewRedisStockCache(client redis.UniversalClient, keyPrefix string) *RedisStockCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisStockCache{client: client, keyPrefix: keyPrefix}
}

func (c *RedisStockCache) valueKey(productID int64) string {
	return c.keyPrefix + ":" + strconv.FormatInt(productID, 10)
}

func (c *RedisStockCache) genKey(productID int64) string {
	return c.keyPrefix + ":gen:" + strconv.FormatInt(productID, 10)
}

// 値と世代を1往復で読む
func (c *RedisStockCache) Get(ctx context.Context, productID int64) (model.Inventory, bool, int64, error) {
	vals, err := c.client.MGet(ctx, c.valueKey(productID), c.genKey(productID)).Result()
	if err != nil {
		return model.Inventory{}, false, 0, fmt.Errorf("redis mget: %w", err)
	}

	gen, err := parseInt(vals[1])
	if err != nil {
		return model.Inventory{}, false, 0, fmt.Errorf("redis gen for product %d: %w", productID, err)
	}
	if vals[0] == nil {
		return model.Inventory{}, false, gen, nil
	}

	stock, err := parseInt(vals[0])
	if err != nil {
		return model.Inventory{}, false, 0, fmt.Errorf("redis value for product %d: %w", productID, err)
	}
	return model.Inventory{ProductID: productID, Stock: stock}, true, gen, nil
}

func (c *RedisStockCache) Fill(ctx context.Context, item model.Inventory, gen int64, ttl time.Duration) (bool, error) {
	ms := ttl.Milliseconds()
	if ms < 1 {
		ms = 1
	}

	n, err := fillScript.Run(ctx, c.client,
		[]string{c.genKey(item.ProductID), c.valueKey(item.ProductID)},
		strconv.FormatInt(gen, 10), item.Stock, ms,
	).Int()
	if err != nil {
		return false, fmt.Errorf("redis fill: %w", err)
	}
	return n == 1, nil
}

func (c *RedisStockCache) Invalidate(ctx context.Context, productID int64) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey(productID))
		pipe.Del(ctx, c.valueKey(productID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate: %w", err)
	}
	return nil
}

// Ping はreadiness用
func (c *RedisStockCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// MGETの要素（nilかstring）を数値にする。nilは0
func parseInt(v any) (int64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case string:
		return strconv.ParseInt(x, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
