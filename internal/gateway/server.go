package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/config"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/gateway/handlers"
)

// Dependencies 服务器依赖
type Dependencies struct {
	Config  *config.Config
	Logger  *zap.Logger
	Product handlers.ProductService
	Ledger  handlers.BalanceReader
}

// Server HTTP 服务器
type Server struct {
	config     *config.ServerConfig
	router     *gin.Engine
	logger     *zap.Logger
	httpServer *http.Server
}

// NewServer 创建 HTTP 服务器
func NewServer(cfg *config.ServerConfig, deps *Dependencies) *Server {
	// 设置 gin 模式
	gin.SetMode(cfg.Mode)

	router := gin.New()

	// 添加中间件
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	router.Use(ginLogger(logger))
	router.Use(gin.Recovery())

	server := &Server{
		config: cfg,
		router: router,
		logger: logger,
	}

	// 设置路由
	NewRouter(router, logger, deps).SetupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server
}

// Start 启动服务器
func (s *Server) Start() error {
	if !s.config.Enabled {
		s.logger.Info("HTTP server is disabled, skipping startup")
		return nil
	}

	s.logger.Info("starting HTTP server",
		zap.String("host", s.config.Host),
		zap.Int("port", s.config.Port),
		zap.String("mode", s.config.Mode),
	)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	return nil
}

// Stop 停止服务器
func (s *Server) Stop(ctx context.Context) error {
	if !s.config.Enabled {
		return nil
	}

	s.logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("error shutting down HTTP server", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// ginLogger 自定义 gin 日志中间件
func ginLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		if raw != "" {
			path = path + "?" + raw
		}

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", statusCode),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", latency),
			zap.String("error", errorMessage),
		)
	}
}
