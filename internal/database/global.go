package database

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	globalManager *Manager
	mu            sync.RWMutex
)

// SetGlobal 设置全局数据库管理器
func SetGlobal(m *Manager) {
	mu.Lock()
	defer mu.Unlock()
	globalManager = m
}

// GetGlobal 获取全局数据库管理器
func GetGlobal() *Manager {
	mu.RLock()
	defer mu.RUnlock()
	return globalManager
}

// GetMongoDB 获取 MongoDB 数据库连接
// 如果未启用或未初始化，返回错误
func GetMongoDB() (*mongo.Database, error) {
	m := GetGlobal()
	if m == nil {
		return nil, fmt.Errorf("database manager not initialized")
	}
	if m.MongoDB == nil {
		return nil, fmt.Errorf("MongoDB is not enabled or not connected")
	}
	return m.MongoDB, nil
}

// PingAll 检查所有已启用数据库的连接状态
func PingAll(ctx context.Context) error {
	m := GetGlobal()
	if m == nil {
		return fmt.Errorf("database manager not initialized")
	}
	return m.Ping(ctx)
}
