package tasks

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/config"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/task"
)

// ExpiredDeleter 过期缓存记录删除接口
type ExpiredDeleter interface {
	DeleteOlderThan(ctx context.Context, maxAge time.Duration) (int64, error)
}

// CacheCleanupTask 缓存清理任务，删除超过保留上限的记录
type CacheCleanupTask struct {
	deleter ExpiredDeleter
	logger  *zap.Logger

	schedule string
	enabled  bool
	maxAge   time.Duration
}

// NewCacheCleanupTask 创建缓存清理任务
func NewCacheCleanupTask(deleter ExpiredDeleter, cfg config.TaskConfig, maxAge time.Duration, logger *zap.Logger) task.Task {
	if maxAge <= 0 {
		maxAge = 30 * 24 * time.Hour // 默认保留30天
	}
	return &CacheCleanupTask{
		deleter:  deleter,
		logger:   logger,
		schedule: cfg.Schedule,
		enabled:  cfg.Enabled,
		maxAge:   maxAge,
	}
}

func (t *CacheCleanupTask) Name() string {
	return "cache_cleanup"
}

func (t *CacheCleanupTask) Schedule() string {
	return t.schedule
}

func (t *CacheCleanupTask) Timeout() time.Duration {
	return 10 * time.Minute
}

func (t *CacheCleanupTask) Enabled() bool {
	return t.enabled
}

func (t *CacheCleanupTask) Run(ctx context.Context) error {
	deleted, err := t.deleter.DeleteOlderThan(ctx, t.maxAge)
	if err != nil {
		return fmt.Errorf("cache cleanup failed: %w", err)
	}

	if t.logger != nil {
		t.logger.Info("cache cleanup completed",
			zap.Int64("deleted", deleted),
			zap.Duration("max_age", t.maxAge),
		)
	}

	return nil
}
