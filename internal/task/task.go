package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrEmptyTaskName 任务名称为空
	ErrEmptyTaskName = errors.New("task name cannot be empty")

	// ErrTaskAlreadyRegistered 任务已注册
	ErrTaskAlreadyRegistered = errors.New("task already registered")

	// ErrTaskNotFound 任务未找到
	ErrTaskNotFound = errors.New("task not found")
)

// Task 定义了所有后台任务必须实现的接口
type Task interface {
	// Name 返回任务名称，用于标识和日志记录
	Name() string

	// Schedule 返回 cron 表达式（秒级精度）
	// 例如: "0 0 */4 * * *" 表示每4小时执行一次
	Schedule() string

	// Run 执行任务逻辑
	Run(ctx context.Context) error

	// Timeout 返回任务执行的超时时间，0 表示使用调度器默认值
	Timeout() time.Duration

	// Enabled 返回任务是否启用
	Enabled() bool
}

// Result 任务执行结果
type Result struct {
	TaskName  string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Success   bool
	Error     error
}

// Registry 任务注册表
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]Task
}

// NewRegistry 创建任务注册表
func NewRegistry() *Registry {
	return &Registry{
		tasks: make(map[string]Task),
	}
}

// Register 注册任务
func (r *Registry) Register(t Task) error {
	name := t.Name()
	if name == "" {
		return ErrEmptyTaskName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[name]; exists {
		return fmt.Errorf("%s: %w", name, ErrTaskAlreadyRegistered)
	}

	r.tasks[name] = t
	return nil
}

// Get 获取任务
func (r *Registry) Get(name string) (Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, exists := r.tasks[name]
	return t, exists
}

// All 获取所有任务
func (r *Registry) All() map[string]Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]Task, len(r.tasks))
	for k, v := range r.tasks {
		result[k] = v
	}
	return result
}

// Enabled 获取所有启用的任务
func (r *Registry) Enabled() map[string]Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]Task)
	for name, t := range r.tasks {
		if t.Enabled() {
			result[name] = t
		}
	}
	return result
}

// RunOnce 立即执行指定任务一次，绕过调度
// 供 worker 的命令行手动触发使用
func (r *Registry) RunOnce(ctx context.Context, name string) error {
	t, exists := r.Get(name)
	if !exists {
		return fmt.Errorf("%s: %w", name, ErrTaskNotFound)
	}

	timeout := t.Timeout()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return t.Run(ctx)
}
