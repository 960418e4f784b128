package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/database"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	logger *zap.Logger
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(logger *zap.Logger) *HealthHandler {
	return &HealthHandler{logger: logger}
}

// Check 健康检查
// GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	status := "ok"
	httpStatus := http.StatusOK

	// 已初始化数据库管理器时顺带检查连接
	if database.GetGlobal() != nil {
		ctx := c.Request.Context()
		if err := database.PingAll(ctx); err != nil {
			if h.logger != nil {
				h.logger.Warn("health check: database ping failed", zap.Error(err))
			}
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}
	}

	c.JSON(httpStatus, gin.H{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
