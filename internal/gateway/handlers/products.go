package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/ledger"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/model"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/product"
)

// HeaderUserID 调用方身份请求头，计费以此为准
const HeaderUserID = "X-User-ID"

// ProductService 商品查询服务接口
type ProductService interface {
	Lookup(ctx context.Context, userID, asin, marketplaceID string) (*model.EnrichedProduct, bool, error)
	Batch(ctx context.Context, userID string, asins []string, marketplaceID string) (*product.BatchResult, error)
	Search(ctx context.Context, userID, keywords, marketplaceID string, pageSize int) ([]*model.EnrichedProduct, error)
	ResolveOfferPrice(ctx context.Context, userID, asin, marketplaceID string) (*model.OfferPriceResult, error)
}

// SuccessResponse 成功响应
type SuccessResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// ProductHandler 商品查询处理器
type ProductHandler struct {
	service ProductService
	logger  *zap.Logger
}

// NewProductHandler 创建商品查询处理器
func NewProductHandler(service ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// jsonSuccess 返回成功响应
func jsonSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// jsonError 返回错误响应
func (h *ProductHandler) jsonError(c *gin.Context, status int, message string, err error) {
	response := ErrorResponse{
		Code:    status,
		Message: message,
	}
	if err != nil {
		response.Error = err.Error()
		if h.logger != nil {
			h.logger.Error(message, zap.Error(err))
		}
	}
	c.JSON(status, response)
}

// statusForError 把领域错误映射为 HTTP 状态码
func statusForError(err error) int {
	switch {
	case errors.Is(err, ledger.ErrInsufficientCredits):
		return http.StatusPaymentRequired
	case errors.Is(err, ledger.ErrAccountNotFound):
		return http.StatusForbidden
	default:
		return http.StatusBadGateway
	}
}

// Lookup 查询单个商品
// GET /api/v1/products/:asin?marketplace=A2Q3Y263D00KWC
func (h *ProductHandler) Lookup(c *gin.Context) {
	asin := strings.TrimSpace(c.Param("asin"))
	if len(asin) != 10 {
		h.jsonError(c, http.StatusBadRequest, "invalid asin", nil)
		return
	}

	userID := c.GetHeader(HeaderUserID)
	marketplaceID := c.Query("marketplace")

	enriched, cacheHit, err := h.service.Lookup(c.Request.Context(), userID, asin, marketplaceID)
	if err != nil {
		h.jsonError(c, statusForError(err), "product lookup failed", err)
		return
	}

	c.Header("X-Cache", cacheStatus(cacheHit))
	jsonSuccess(c, enriched)
}

// Batch 批量查询商品
// POST /api/v1/products/batch
func (h *ProductHandler) Batch(c *gin.Context) {
	var req struct {
		ASINs         []string `json:"asins" binding:"required"`
		MarketplaceID string   `json:"marketplaceId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.jsonError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if len(req.ASINs) == 0 || len(req.ASINs) > 20 {
		h.jsonError(c, http.StatusBadRequest, "asins must contain between 1 and 20 entries", nil)
		return
	}

	userID := c.GetHeader(HeaderUserID)

	result, err := h.service.Batch(c.Request.Context(), userID, req.ASINs, req.MarketplaceID)
	if err != nil {
		h.jsonError(c, statusForError(err), "batch lookup failed", err)
		return
	}

	jsonSuccess(c, result)
}

// Search 关键词搜索
// GET /api/v1/products/search?q=fone+bluetooth&pageSize=10
func (h *ProductHandler) Search(c *gin.Context) {
	keywords := strings.TrimSpace(c.Query("q"))
	if keywords == "" {
		h.jsonError(c, http.StatusBadRequest, "query parameter q is required", nil)
		return
	}

	pageSize := 0
	if raw := c.Query("pageSize"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 20 {
			h.jsonError(c, http.StatusBadRequest, "pageSize must be between 1 and 20", nil)
			return
		}
		pageSize = parsed
	}

	userID := c.GetHeader(HeaderUserID)
	marketplaceID := c.Query("marketplace")

	results, err := h.service.Search(c.Request.Context(), userID, keywords, marketplaceID, pageSize)
	if err != nil {
		h.jsonError(c, statusForError(err), "product search failed", err)
		return
	}

	jsonSuccess(c, results)
}

// OfferPrice 报价解析
// GET /api/v1/pricing/:asin?marketplace=A2Q3Y263D00KWC
func (h *ProductHandler) OfferPrice(c *gin.Context) {
	asin := strings.TrimSpace(c.Param("asin"))
	if len(asin) != 10 {
		h.jsonError(c, http.StatusBadRequest, "invalid asin", nil)
		return
	}

	userID := c.GetHeader(HeaderUserID)
	marketplaceID := c.Query("marketplace")

	result, err := h.service.ResolveOfferPrice(c.Request.Context(), userID, asin, marketplaceID)
	if err != nil {
		h.jsonError(c, statusForError(err), "offer price lookup failed", err)
		return
	}

	// 所有梯队都无法解析出价格
	if result == nil {
		h.jsonError(c, http.StatusNotFound, "price unknown", nil)
		return
	}

	jsonSuccess(c, result)
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
