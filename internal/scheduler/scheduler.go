package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/task"
)

// Scheduler 后台任务调度器，robfig/cron 的薄封装
type Scheduler struct {
	cron           *cron.Cron
	registry       *task.Registry
	logger         *zap.Logger
	running        bool
	mu             sync.RWMutex
	ctx            context.Context
	cancel         context.CancelFunc
	jobEntries     map[string]cron.EntryID
	defaultTimeout time.Duration
}

// Config 调度器配置
type Config struct {
	Logger         *zap.Logger
	Registry       *task.Registry
	DefaultTimeout time.Duration
	Location       *time.Location
}

// New 创建调度器
func New(cfg Config) *Scheduler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Registry == nil {
		cfg.Registry = task.NewRegistry()
	}
	if cfg.DefaultTimeout == 0 {
		cfg.DefaultTimeout = 30 * time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	c := cron.New(
		cron.WithLocation(cfg.Location),
		cron.WithSeconds(), // 秒级精度
		cron.WithChain(
			cron.Recover(cron.DefaultLogger),
		),
	)

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:           c,
		registry:       cfg.Registry,
		logger:         cfg.Logger,
		ctx:            ctx,
		cancel:         cancel,
		jobEntries:     make(map[string]cron.EntryID),
		defaultTimeout: cfg.DefaultTimeout,
	}
}

// Start 注册所有启用的任务并启动调度
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	tasks := s.registry.Enabled()
	for name, t := range tasks {
		if err := s.addTask(name, t); err != nil {
			s.logger.Error("failed to add task",
				zap.String("task", name),
				zap.Error(err),
			)
			continue
		}
		s.logger.Info("task registered",
			zap.String("task", name),
			zap.String("schedule", t.Schedule()),
		)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("scheduler started",
		zap.Int("total_tasks", len(tasks)),
	)

	return nil
}

// Stop 停止调度器，等待在途任务完成或上下文取消
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.logger.Info("stopping scheduler...")

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		s.logger.Info("scheduler stopped gracefully")
	case <-ctx.Done():
		s.logger.Warn("context cancelled while stopping scheduler")
		return ctx.Err()
	}

	s.cancel()
	s.running = false

	return nil
}

// addTask 添加任务到 cron
func (s *Scheduler) addTask(name string, t task.Task) error {
	schedule := t.Schedule()
	if schedule == "" {
		return fmt.Errorf("task schedule cannot be empty")
	}

	entryID, err := s.cron.AddFunc(schedule, s.wrapTask(name, t))
	if err != nil {
		return fmt.Errorf("failed to parse schedule: %w", err)
	}

	s.jobEntries[name] = entryID
	return nil
}

// wrapTask 包装任务执行：超时控制 + 结果日志
func (s *Scheduler) wrapTask(name string, t task.Task) func() {
	return func() {
		startTime := time.Now()
		s.logger.Info("task started",
			zap.String("task", name),
		)

		timeout := t.Timeout()
		if timeout == 0 {
			timeout = s.defaultTimeout
		}

		ctx, cancel := context.WithTimeout(s.ctx, timeout)
		defer cancel()

		err := t.Run(ctx)

		result := task.Result{
			TaskName:  name,
			StartTime: startTime,
			EndTime:   time.Now(),
			Duration:  time.Since(startTime),
			Success:   err == nil,
			Error:     err,
		}
		s.logResult(result)
	}
}

// logResult 记录任务执行结果
func (s *Scheduler) logResult(result task.Result) {
	fields := []zap.Field{
		zap.String("task", result.TaskName),
		zap.Duration("duration", result.Duration),
		zap.Bool("success", result.Success),
	}

	if result.Error != nil {
		fields = append(fields, zap.Error(result.Error))
		s.logger.Error("task completed with error", fields...)
	} else {
		s.logger.Info("task completed successfully", fields...)
	}
}

// IsRunning 检查调度器是否运行中
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// TaskCount 获取已调度的任务数量
func (s *Scheduler) TaskCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobEntries)
}
