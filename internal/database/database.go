package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/config"
)

// SQL 账本后端使用的方言标识
const (
	DialectMySQL    = "mysql"
	DialectPostgres = "postgres"
)

// Manager 数据库连接管理器
//
// MongoDB 承载产品缓存，MySQL 或 PostgreSQL 承载积分账本。
// 两个 SQL 后端互斥，同时启用时 MySQL 优先。
type Manager struct {
	MySQL      *sql.DB
	PostgreSQL *sql.DB
	MongoDB    *mongo.Database
	logger     *zap.Logger
}

// New 根据应用配置建立所有启用的数据库连接
func New(cfg *config.Config, logger *zap.Logger) (*Manager, error) {
	m := &Manager{logger: logger}

	if cfg.Database.MySQL.Enabled {
		if err := m.connectMySQL(cfg.Database.MySQL); err != nil {
			return nil, fmt.Errorf("failed to connect MySQL: %w", err)
		}
		if logger != nil {
			logger.Info("MySQL connected successfully")
		}
	}

	if cfg.Database.PostgreSQL.Enabled {
		if err := m.connectPostgreSQL(cfg.Database.PostgreSQL); err != nil {
			return nil, fmt.Errorf("failed to connect PostgreSQL: %w", err)
		}
		if logger != nil {
			logger.Info("PostgreSQL connected successfully")
		}
	}

	if cfg.Database.MongoDB.Enabled {
		if err := m.connectMongoDB(cfg.Database.MongoDB); err != nil {
			return nil, fmt.Errorf("failed to connect MongoDB: %w", err)
		}
		if logger != nil {
			logger.Info("MongoDB connected successfully")
		}
	}

	return m, nil
}

// connectMySQL 连接 MySQL
func (m *Manager) connectMySQL(cfg config.MySQLConfig) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.Charset,
	)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	// 设置连接池参数
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping MySQL: %w", err)
	}

	m.MySQL = db
	return nil
}

// connectPostgreSQL 连接 PostgreSQL
func (m *Manager) connectPostgreSQL(cfg config.PostgreSQLConfig) error {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
		cfg.Database,
		cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open PostgreSQL connection: %w", err)
	}

	// 设置连接池参数
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	m.PostgreSQL = db
	return nil
}

// connectMongoDB 连接 MongoDB
func (m *Manager) connectMongoDB(cfg config.MongoDBConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(cfg.URI)

	// 如果提供了用户名和密码，设置认证
	if cfg.Username != "" && cfg.Password != "" {
		opts.SetAuth(options.Credential{
			AuthSource: cfg.AuthSource,
			Username:   cfg.Username,
			Password:   cfg.Password,
		})
	}

	// 设置连接池参数
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	if cfg.MinPoolSize > 0 {
		opts.SetMinPoolSize(cfg.MinPoolSize)
	}
	if cfg.MaxIdleTime != "" {
		if maxIdleTime, err := time.ParseDuration(cfg.MaxIdleTime); err == nil {
			opts.SetMaxConnIdleTime(maxIdleTime)
		}
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to connect MongoDB: %w", err)
	}

	// 测试连接
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	m.MongoDB = client.Database(cfg.Database)
	return nil
}

// LedgerDB 返回积分账本使用的 SQL 连接及其方言
//
// 同时启用 MySQL 和 PostgreSQL 时 MySQL 优先。
func (m *Manager) LedgerDB() (*sql.DB, string, error) {
	if m.MySQL != nil {
		return m.MySQL, DialectMySQL, nil
	}
	if m.PostgreSQL != nil {
		return m.PostgreSQL, DialectPostgres, nil
	}
	return nil, "", fmt.Errorf("no SQL backend enabled for credit ledger")
}

// Close 关闭所有数据库连接
func (m *Manager) Close() error {
	var errs []error

	if m.MySQL != nil {
		if err := m.MySQL.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close MySQL: %w", err))
		} else if m.logger != nil {
			m.logger.Info("MySQL connection closed")
		}
	}

	if m.PostgreSQL != nil {
		if err := m.PostgreSQL.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close PostgreSQL: %w", err))
		} else if m.logger != nil {
			m.logger.Info("PostgreSQL connection closed")
		}
	}

	if m.MongoDB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := m.MongoDB.Client().Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to close MongoDB: %w", err))
		} else if m.logger != nil {
			m.logger.Info("MongoDB connection closed")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing databases: %v", errs)
	}

	return nil
}

// Ping 检查所有已启用数据库的连接状态
func (m *Manager) Ping(ctx context.Context) error {
	if m.MySQL != nil {
		if err := m.MySQL.PingContext(ctx); err != nil {
			return fmt.Errorf("MySQL ping failed: %w", err)
		}
	}

	if m.PostgreSQL != nil {
		if err := m.PostgreSQL.PingContext(ctx); err != nil {
			return fmt.Errorf("PostgreSQL ping failed: %w", err)
		}
	}

	if m.MongoDB != nil {
		if err := m.MongoDB.Client().Ping(ctx, nil); err != nil {
			return fmt.Errorf("MongoDB ping failed: %w", err)
		}
	}

	return nil
}
