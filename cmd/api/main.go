package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"inventory-service/internal/config"
	"inventory-service/internal/handler"
	"inventory-service/internal/infra/cache"
	"inventory-service/internal/infra/db"
	infraRepo "inventory-service/internal/infra/repository"
	"inventory-service/internal/server"
	"inventory-service/internal/usecase"
)

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func main() {
	if err := run(); err != nil {
		slog.Error("inventory service stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(gormDB) }()

	if err := db.Migrate(gormDB); err != nil {
		return err
	}
	logger.Info("postgres connected", "max_open_conns", cfg.DBMaxOpenConns)

	//Repository（GORM実装）生成
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)

	deps := map[string]handler.Pinger{
		"postgres": handler.PingFunc(func(ctx context.Context) error { return db.Ping(ctx, gormDB) }),
	}

	//Redisは任意。落ちていてもDBだけで動かす
	var opts []usecase.InventoryOption
	if cfg.CacheEnabled() {
		client, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.Warn("redis unavailable, stock cache disabled", "error", err)
		} else {
			defer func() { _ = client.Close() }()
			stockCache := cache.NewRedisStockCache(client, "")
			opts = append(opts, usecase.WithStockCache(stockCache, cfg.CacheTTL))
			deps["redis"] = stockCache
			logger.Info("stock cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
		}
	}

	//Usecase / Handler生成
	inventoryUC := usecase.NewInventoryUsecase(inventoryRepo, logger, opts...)
	invH := handler.NewInventoryHandler(inventoryUC)
	healthH := handler.NewHealthHandler(deps)

	if len(cfg.AuthWriteRoles) > 0 {
		logger.Info("write role policy enabled", "roles", cfg.AuthWriteRoles)
	}

	//Server起動
	e := server.NewRouter(cfg, logger, invH, healthH)
	return server.Start(ctx, cfg, e, logger)
}
