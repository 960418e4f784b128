package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/config"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/model"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/task"
)

// StaleLister 过期缓存记录查询接口
type StaleLister interface {
	ListStale(ctx context.Context, limit int) ([]*model.CachedProductRecord, error)
}

// Refresher 单个商品的重新富化接口
type Refresher interface {
	Refresh(ctx context.Context, asin, marketplaceID string) error
}

// CacheRefreshTask 缓存刷新任务
//
// 每轮取一批最旧的过期记录，逐个重新拉取上游并回写缓存。
// 单个 ASIN 失败不中断整批，只记日志。
type CacheRefreshTask struct {
	lister    StaleLister
	refresher Refresher
	logger    *zap.Logger

	schedule  string
	enabled   bool
	batchSize int
}

// NewCacheRefreshTask 创建缓存刷新任务
func NewCacheRefreshTask(lister StaleLister, refresher Refresher, cfg config.TaskConfig, logger *zap.Logger) task.Task {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}
	return &CacheRefreshTask{
		lister:    lister,
		refresher: refresher,
		logger:    logger,
		schedule:  cfg.Schedule,
		enabled:   cfg.Enabled,
		batchSize: batchSize,
	}
}

func (t *CacheRefreshTask) Name() string {
	return "cache_refresh"
}

func (t *CacheRefreshTask) Schedule() string {
	return t.schedule
}

func (t *CacheRefreshTask) Timeout() time.Duration {
	return 20 * time.Minute
}

func (t *CacheRefreshTask) Enabled() bool {
	return t.enabled
}

func (t *CacheRefreshTask) Run(ctx context.Context) error {
	// 1. 取一批过期记录
	stale, err := t.lister.ListStale(ctx, t.batchSize)
	if err != nil {
		return err
	}

	if len(stale) == 0 {
		if t.logger != nil {
			t.logger.Debug("no stale cache records to refresh")
		}
		return nil
	}

	// 2. 逐个刷新
	refreshed := 0
	failed := 0
	for _, record := range stale {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := t.refresher.Refresh(ctx, record.ASIN, record.MarketplaceID); err != nil {
			failed++
			if t.logger != nil {
				t.logger.Warn("failed to refresh cached product",
					zap.String("asin", record.ASIN),
					zap.String("marketplace_id", record.MarketplaceID),
					zap.Error(err),
				)
			}
			continue
		}
		refreshed++
	}

	if t.logger != nil {
		t.logger.Info("cache refresh round completed",
			zap.Int("stale", len(stale)),
			zap.Int("refreshed", refreshed),
			zap.Int("failed", failed),
		)
	}

	return nil
}
