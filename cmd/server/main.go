package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/config"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/database"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/enrich"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/gateway"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/ledger"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/logger"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/product"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/repository"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/spapi"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/spapi/catalog"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/spapi/pricing"
)

func main() {
	// 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	zapLogger, err := logger.New(cfg.Logger)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	zapLogger.Info("server starting",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Env),
	)

	// 初始化数据库连接
	dbs, err := database.New(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize databases", zap.Error(err))
	}
	database.SetGlobal(dbs)

	// 上游 API 客户端和服务
	apiClient := spapi.NewClient(spapi.Config{
		BaseURL:     cfg.Upstream.Endpoint,
		AccessToken: cfg.Upstream.AccessToken,
		Timeout:     cfg.GetUpstreamTimeout(),
		Logger:      zapLogger,
	})
	catalogSvc := catalog.NewService(apiClient, zapLogger)
	pricingSvc := pricing.NewService(apiClient, zapLogger)

	// 产品缓存（MongoDB 可选）
	var cache *repository.ProductCache
	if dbs.MongoDB != nil {
		cache = repository.NewProductCache(dbs.MongoDB, zapLogger, cfg.Cache.FreshForDuration)

		indexCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := cache.EnsureIndexes(indexCtx); err != nil {
			zapLogger.Warn("failed to ensure cache indexes", zap.Error(err))
		}
		cancel()
	} else {
		zapLogger.Warn("MongoDB disabled, product cache unavailable")
	}

	// 积分账本（SQL 后端可选）
	var creditLedger *ledger.Service
	if db, dialect, err := dbs.LedgerDB(); err == nil {
		creditLedger = ledger.New(db, dialect, zapLogger)
	} else {
		zapLogger.Warn("credit ledger disabled", zap.Error(err))
	}

	// 富化组装器：cache 为 nil 时禁用异步回写
	var assemblerCache enrich.Cache
	if cache != nil {
		assemblerCache = cache
	}
	assembler := enrich.New(nil, assemblerCache, zapLogger)

	// 商品查询服务
	productCfg := product.Config{
		Catalog:            catalogSvc,
		Pricing:            pricingSvc,
		Assembler:          assembler,
		Logger:             zapLogger,
		DefaultMarketplace: cfg.Upstream.DefaultMarketplace,
		LookupCost:         cfg.Credits.LookupCost,
	}
	if cache != nil {
		productCfg.Cache = cache
	}
	if creditLedger != nil {
		productCfg.Ledger = creditLedger
	}
	productSvc := product.NewService(productCfg)

	// HTTP 服务器
	deps := &gateway.Dependencies{
		Config:  cfg,
		Logger:  zapLogger,
		Product: productSvc,
	}
	if creditLedger != nil {
		deps.Ledger = creditLedger
	}

	server := gateway.NewServer(&cfg.Server, deps)
	if err := server.Start(); err != nil {
		zapLogger.Fatal("failed to start server", zap.Error(err))
	}

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	zapLogger.Info("received signal, shutting down...",
		zap.String("signal", sig.String()),
	)

	// 优雅关闭
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		zapLogger.Error("error stopping server", zap.Error(err))
	}

	if err := dbs.Close(); err != nil {
		zapLogger.Error("error closing databases", zap.Error(err))
	}

	zapLogger.Info("server stopped")
}
