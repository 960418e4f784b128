package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config 应用程序配置
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Credits   CreditsConfig   `mapstructure:"credits"`
	Server    ServerConfig    `mapstructure:"server"`
	Tasks     TasksConfig     `mapstructure:"tasks"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env"` // development, production
}

// SchedulerConfig 调度器配置
type SchedulerConfig struct {
	DefaultTimeout string `mapstructure:"default_timeout"` // 例如: "30m"
	Location       string `mapstructure:"location"`        // 例如: "America/Sao_Paulo"
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // 日志输出路径
	MaxSize    int    `mapstructure:"max_size"`    // 日志文件最大大小(MB)
	MaxBackups int    `mapstructure:"max_backups"` // 保留的日志文件数量
	MaxAge     int    `mapstructure:"max_age"`     // 日志保留天数
	Compress   bool   `mapstructure:"compress"`    // 是否压缩旧日志
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	MySQL      MySQLConfig      `mapstructure:"mysql"`
	PostgreSQL PostgreSQLConfig `mapstructure:"postgresql"`
	MongoDB    MongoDBConfig    `mapstructure:"mongodb"`
}

// MySQLConfig MySQL 配置（积分账本的默认后端）
type MySQLConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	Charset  string `mapstructure:"charset"`
	// 连接池配置
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeStr string `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTimeStr string `mapstructure:"conn_max_idle_time"`

	// 解析后的时间，由 Load 函数填充
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// PostgreSQLConfig PostgreSQL 配置（积分账本的替代后端）
type PostgreSQLConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
	// 连接池配置
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeStr string `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTimeStr string `mapstructure:"conn_max_idle_time"`

	// 解析后的时间，由 Load 函数填充
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// MongoDBConfig MongoDB 配置（产品缓存）
type MongoDBConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	URI         string `mapstructure:"uri"`
	Database    string `mapstructure:"database"`
	AuthSource  string `mapstructure:"auth_source"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	ReplicaSet  string `mapstructure:"replica_set"`
	MaxPoolSize uint64 `mapstructure:"max_pool_size"`
	MinPoolSize uint64 `mapstructure:"min_pool_size"`
	MaxIdleTime string `mapstructure:"max_idle_time"`
}

// UpstreamConfig 上游目录/定价 API 配置
type UpstreamConfig struct {
	Endpoint           string `mapstructure:"endpoint"`
	AccessToken        string `mapstructure:"access_token"`
	Timeout            string `mapstructure:"timeout"`             // 例如: "30s"
	DefaultMarketplace string `mapstructure:"default_marketplace"` // 未显式指定站点时使用
	PrintResponseBody  bool   `mapstructure:"print_response_body"` // 是否打印 API 响应体（用于调试）
}

// CacheConfig 产品缓存配置
type CacheConfig struct {
	FreshFor string `mapstructure:"fresh_for"` // 新鲜度窗口，例如: "6h"
	MaxAge   string `mapstructure:"max_age"`   // 清理任务的保留上限，例如: "720h"

	// 解析后的时间，由 Load 函数填充
	FreshForDuration time.Duration
	MaxAgeDuration   time.Duration
}

// CreditsConfig 积分账本配置
type CreditsConfig struct {
	LookupCost int `mapstructure:"lookup_cost"` // 每次计费目录查询扣除的积分数
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled"` // 是否启用服务器
	Host    string `mapstructure:"host"`    // 监听地址
	Port    int    `mapstructure:"port"`    // 监听端口
	Mode    string `mapstructure:"mode"`    // gin 模式: debug, release, test
}

// TasksConfig 后台任务配置
type TasksConfig struct {
	CacheRefresh TaskConfig `mapstructure:"cache_refresh"`
	CacheCleanup TaskConfig `mapstructure:"cache_cleanup"`
}

// TaskConfig 单个后台任务配置
type TaskConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Schedule  string `mapstructure:"schedule"`   // cron 表达式（秒级精度）
	BatchSize int    `mapstructure:"batch_size"` // 每轮处理的记录数
}

// Load 加载配置
func Load(configPath string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(configPath)

	// 设置环境变量
	viper.SetEnvPrefix("AMZSS")
	viper.AutomaticEnv()

	// 设置默认值
	setDefaults()

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 解析时间字符串
	if err := config.parseDurations(); err != nil {
		return nil, fmt.Errorf("failed to parse durations: %w", err)
	}

	return &config, nil
}

// parseDurations 解析时间字符串
func (c *Config) parseDurations() error {
	parse := func(field, value string, out *time.Duration) error {
		if value == "" {
			return nil
		}
		duration, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", field, err)
		}
		*out = duration
		return nil
	}

	if err := parse("mysql conn_max_lifetime", c.Database.MySQL.ConnMaxLifetimeStr, &c.Database.MySQL.ConnMaxLifetime); err != nil {
		return err
	}
	if err := parse("mysql conn_max_idle_time", c.Database.MySQL.ConnMaxIdleTimeStr, &c.Database.MySQL.ConnMaxIdleTime); err != nil {
		return err
	}
	if err := parse("postgresql conn_max_lifetime", c.Database.PostgreSQL.ConnMaxLifetimeStr, &c.Database.PostgreSQL.ConnMaxLifetime); err != nil {
		return err
	}
	if err := parse("postgresql conn_max_idle_time", c.Database.PostgreSQL.ConnMaxIdleTimeStr, &c.Database.PostgreSQL.ConnMaxIdleTime); err != nil {
		return err
	}
	if err := parse("cache.fresh_for", c.Cache.FreshFor, &c.Cache.FreshForDuration); err != nil {
		return err
	}
	if err := parse("cache.max_age", c.Cache.MaxAge, &c.Cache.MaxAgeDuration); err != nil {
		return err
	}

	return nil
}

// setDefaults 设置默认配置值
func setDefaults() {
	// App 默认值
	viper.SetDefault("app.name", "amazon-sem-segredos")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.env", "development")

	// Scheduler 默认值
	viper.SetDefault("scheduler.default_timeout", "30m")
	viper.SetDefault("scheduler.location", "America/Sao_Paulo")

	// Logger 默认值
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "logs/app.log")
	viper.SetDefault("logger.max_size", 100)
	viper.SetDefault("logger.max_backups", 3)
	viper.SetDefault("logger.max_age", 7)
	viper.SetDefault("logger.compress", true)

	// Database 默认值
	// MySQL
	viper.SetDefault("database.mysql.enabled", false)
	viper.SetDefault("database.mysql.host", "localhost")
	viper.SetDefault("database.mysql.port", 3306)
	viper.SetDefault("database.mysql.charset", "utf8mb4")
	viper.SetDefault("database.mysql.max_open_conns", 25)
	viper.SetDefault("database.mysql.max_idle_conns", 5)
	viper.SetDefault("database.mysql.conn_max_lifetime", "5m")
	viper.SetDefault("database.mysql.conn_max_idle_time", "10m")

	// PostgreSQL
	viper.SetDefault("database.postgresql.enabled", false)
	viper.SetDefault("database.postgresql.host", "localhost")
	viper.SetDefault("database.postgresql.port", 5432)
	viper.SetDefault("database.postgresql.sslmode", "disable")
	viper.SetDefault("database.postgresql.max_open_conns", 25)
	viper.SetDefault("database.postgresql.max_idle_conns", 5)
	viper.SetDefault("database.postgresql.conn_max_lifetime", "5m")
	viper.SetDefault("database.postgresql.conn_max_idle_time", "10m")

	// MongoDB
	viper.SetDefault("database.mongodb.enabled", false)
	viper.SetDefault("database.mongodb.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.mongodb.auth_source", "admin")
	viper.SetDefault("database.mongodb.max_pool_size", 100)
	viper.SetDefault("database.mongodb.min_pool_size", 10)
	viper.SetDefault("database.mongodb.max_idle_time", "30m")

	// 上游 API 默认值
	viper.SetDefault("upstream.endpoint", "https://sellingpartnerapi-na.amazon.com/")
	viper.SetDefault("upstream.timeout", "30s")
	viper.SetDefault("upstream.default_marketplace", "A2Q3Y263D00KWC")
	viper.SetDefault("upstream.print_response_body", false)

	// 缓存默认值
	viper.SetDefault("cache.fresh_for", "6h")
	viper.SetDefault("cache.max_age", "720h")

	// 积分默认值
	viper.SetDefault("credits.lookup_cost", 1)

	// Server 默认值
	viper.SetDefault("server.enabled", true)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// 后台任务默认值
	viper.SetDefault("tasks.cache_refresh.enabled", true)
	viper.SetDefault("tasks.cache_refresh.schedule", "0 0 */4 * * *")
	viper.SetDefault("tasks.cache_refresh.batch_size", 50)
	viper.SetDefault("tasks.cache_cleanup.enabled", true)
	viper.SetDefault("tasks.cache_cleanup.schedule", "0 0 3 * * *")
	viper.SetDefault("tasks.cache_cleanup.batch_size", 0)
}

// GetDefaultTimeout 获取默认超时时间
func (c *Config) GetDefaultTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Scheduler.DefaultTimeout)
}

// GetLocation 获取时区
func (c *Config) GetLocation() (*time.Location, error) {
	return time.LoadLocation(c.Scheduler.Location)
}

// GetUpstreamTimeout 获取上游 API 超时时间，非法时退回 30s
func (c *Config) GetUpstreamTimeout() time.Duration {
	timeout, err := time.ParseDuration(c.Upstream.Timeout)
	if err != nil || timeout <= 0 {
		return 30 * time.Second
	}
	return timeout
}
