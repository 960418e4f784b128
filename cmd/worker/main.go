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
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/logger"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/product"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/repository"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/scheduler"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/spapi"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/spapi/catalog"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/spapi/pricing"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/task"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/tasks"
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

	zapLogger.Info("worker starting",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Env),
	)

	// 初始化数据库连接；后台任务都依赖 MongoDB 缓存
	dbs, err := database.New(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize databases", zap.Error(err))
	}
	database.SetGlobal(dbs)

	if dbs.MongoDB == nil {
		zapLogger.Fatal("worker requires MongoDB, enable database.mongodb in config")
	}

	cache := repository.NewProductCache(dbs.MongoDB, zapLogger, cfg.Cache.FreshForDuration)

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 10*time.Second)
	if err := cache.EnsureIndexes(indexCtx); err != nil {
		zapLogger.Warn("failed to ensure cache indexes", zap.Error(err))
	}
	cancelIndex()

	// 上游客户端 + 富化管线（后台刷新不计费，不接账本）
	apiClient := spapi.NewClient(spapi.Config{
		BaseURL:     cfg.Upstream.Endpoint,
		AccessToken: cfg.Upstream.AccessToken,
		Timeout:     cfg.GetUpstreamTimeout(),
		Logger:      zapLogger,
	})
	assembler := enrich.New(nil, cache, zapLogger)
	productSvc := product.NewService(product.Config{
		Catalog:            catalog.NewService(apiClient, zapLogger),
		Pricing:            pricing.NewService(apiClient, zapLogger),
		Assembler:          assembler,
		Logger:             zapLogger,
		DefaultMarketplace: cfg.Upstream.DefaultMarketplace,
	})

	// 注册后台任务
	registry := task.NewRegistry()
	if err := registerTasks(registry, cfg, cache, productSvc, zapLogger); err != nil {
		zapLogger.Fatal("failed to register tasks", zap.Error(err))
	}

	// 时区和默认超时
	location, err := cfg.GetLocation()
	if err != nil {
		zapLogger.Warn("failed to load location, using local time", zap.Error(err))
		location = time.Local
	}

	defaultTimeout, err := cfg.GetDefaultTimeout()
	if err != nil {
		zapLogger.Warn("failed to parse default timeout, using 30m", zap.Error(err))
		defaultTimeout = 30 * time.Minute
	}

	// 启动调度器
	sched := scheduler.New(scheduler.Config{
		Logger:         zapLogger,
		Registry:       registry,
		DefaultTimeout: defaultTimeout,
		Location:       location,
	})
	if err := sched.Start(); err != nil {
		zapLogger.Fatal("failed to start scheduler", zap.Error(err))
	}

	zapLogger.Info("scheduler started successfully",
		zap.Int("task_count", sched.TaskCount()),
	)

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

	if err := sched.Stop(shutdownCtx); err != nil {
		zapLogger.Error("error stopping scheduler", zap.Error(err))
	}

	if err := dbs.Close(); err != nil {
		zapLogger.Error("error closing databases", zap.Error(err))
	}

	zapLogger.Info("worker stopped")
}

// registerTasks 注册所有后台任务
func registerTasks(
	registry *task.Registry,
	cfg *config.Config,
	cache *repository.ProductCache,
	productSvc *product.Service,
	zapLogger *zap.Logger,
) error {
	refreshTask := tasks.NewCacheRefreshTask(cache, productSvc, cfg.Tasks.CacheRefresh, zapLogger)
	if err := registry.Register(refreshTask); err != nil {
		return fmt.Errorf("failed to register cache refresh task: %w", err)
	}

	cleanupTask := tasks.NewCacheCleanupTask(cache, cfg.Tasks.CacheCleanup, cfg.Cache.MaxAgeDuration, zapLogger)
	if err := registry.Register(cleanupTask); err != nil {
		return fmt.Errorf("failed to register cache cleanup task: %w", err)
	}

	return nil
}
