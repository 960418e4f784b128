package gateway

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/gateway/handlers"
)

// Router 路由管理器
type Router struct {
	router       *gin.Engine
	logger       *zap.Logger
	dependencies *Dependencies
}

// NewRouter 创建路由管理器
func NewRouter(router *gin.Engine, logger *zap.Logger, deps *Dependencies) *Router {
	return &Router{
		router:       router,
		logger:       logger,
		dependencies: deps,
	}
}

// SetupRoutes 设置所有路由
func (r *Router) SetupRoutes() {
	// 健康检查
	healthHandler := handlers.NewHealthHandler(r.logger)
	r.router.GET("/health", healthHandler.Check)

	// API v1 路由组
	api := r.router.Group("/api/v1")
	{
		if r.dependencies != nil && r.dependencies.Product != nil {
			productHandler := handlers.NewProductHandler(r.dependencies.Product, r.logger)

			products := api.Group("/products")
			{
				products.GET("/search", productHandler.Search)
				products.GET("/:asin", productHandler.Lookup)
				products.POST("/batch", productHandler.Batch)
			}

			api.GET("/pricing/:asin", productHandler.OfferPrice)
		}

		if r.dependencies != nil && r.dependencies.Ledger != nil {
			creditsHandler := handlers.NewCreditsHandler(r.dependencies.Ledger, r.logger)
			api.GET("/credits/balance", creditsHandler.Balance)
		}
	}
}
