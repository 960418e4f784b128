package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/model"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/spapi"
)

// Endpoint 定价 API 路径
const Endpoint = "products/pricing/v0/items"

// Service 定价查询服务
type Service struct {
	client *spapi.Client
	logger *zap.Logger
}

// NewService 创建定价查询服务
func NewService(client *spapi.Client, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		logger: logger,
	}
}

// RequestParams 定价请求参数
type RequestParams struct {
	MarketplaceID string `json:"marketplaceId"` // 必需
	ASIN          string `json:"asin"`          // 必需
	ItemCondition string `json:"itemCondition,omitempty"` // 可选，默认 New
}

// Validate 验证请求参数
func (p *RequestParams) Validate() error {
	if p.MarketplaceID == "" {
		return fmt.Errorf("marketplaceId is required")
	}

	p.ASIN = strings.TrimSpace(p.ASIN)
	if p.ASIN == "" {
		return fmt.Errorf("asin is required")
	}
	if len(p.ASIN) != 10 {
		return fmt.Errorf("invalid ASIN: %s (ASIN must be exactly 10 characters)", p.ASIN)
	}

	return nil
}

// ToQueryParams 将 RequestParams 转换为查询参数字典
func (p *RequestParams) ToQueryParams() map[string]string {
	params := make(map[string]string)

	params["MarketplaceId"] = p.MarketplaceID

	condition := p.ItemCondition
	if condition == "" {
		condition = "New"
	}
	params["ItemCondition"] = condition

	return params
}

// GetPricing 获取商品定价数据
func (s *Service) GetPricing(ctx context.Context, params RequestParams) (*model.PricingPayload, error) {
	// 验证参数
	if err := params.Validate(); err != nil {
		if s.logger != nil {
			s.logger.Error("invalid pricing request parameters", zap.Error(err))
		}
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("fetching pricing data",
			zap.String("asin", params.ASIN),
			zap.String("marketplace_id", params.MarketplaceID),
		)
	}

	// 调用 API 获取原始数据
	endpoint := Endpoint + "/" + params.ASIN + "/offers"
	rawData, err := s.client.GetRawData(ctx, endpoint, params.ToQueryParams())
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to fetch pricing data",
				zap.String("asin", params.ASIN),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("failed to fetch pricing data: %w", err)
	}

	// 解析响应
	payload, err := ParsePayload(rawData)
	if err != nil {
		return nil, err
	}

	// 上游偶尔不回填 asin，补上请求值
	if payload.ASIN == "" {
		payload.ASIN = params.ASIN
	}
	if payload.MarketplaceID == "" {
		payload.MarketplaceID = params.MarketplaceID
	}

	if s.logger != nil {
		s.logger.Debug("pricing data fetched successfully",
			zap.String("asin", payload.ASIN),
			zap.Int("offer_count", len(payload.Offers)),
		)
	}

	return payload, nil
}

// ParsePayload 解析定价响应
func ParsePayload(data []byte) (*model.PricingPayload, error) {
	var payload model.PricingPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse pricing payload: %w", err)
	}
	return &payload, nil
}
