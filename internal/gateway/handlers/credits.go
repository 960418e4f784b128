package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/ledger"
)

// BalanceReader 积分余额查询接口
type BalanceReader interface {
	Balance(ctx context.Context, userID string) (int64, error)
}

// CreditsHandler 积分查询处理器
type CreditsHandler struct {
	ledger BalanceReader
	logger *zap.Logger
}

// NewCreditsHandler 创建积分查询处理器
func NewCreditsHandler(l BalanceReader, logger *zap.Logger) *CreditsHandler {
	return &CreditsHandler{
		ledger: l,
		logger: logger,
	}
}

// Balance 查询当前调用方余额
// GET /api/v1/credits/balance
func (h *CreditsHandler) Balance(c *gin.Context) {
	userID := c.GetHeader(HeaderUserID)
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "X-User-ID header is required",
		})
		return
	}

	balance, err := h.ledger.Balance(c.Request.Context(), userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ledger.ErrAccountNotFound) {
			status = http.StatusNotFound
		}
		if h.logger != nil {
			h.logger.Error("balance lookup failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
		c.JSON(status, ErrorResponse{
			Code:    status,
			Message: "balance lookup failed",
			Error:   err.Error(),
		})
		return
	}

	jsonSuccess(c, gin.H{
		"userId":  userID,
		"balance": balance,
	})
}
