package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/model"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/spapi"
)

// Endpoint 目录 API 路径
const Endpoint = "catalog/2022-04-01/items"

// Service 目录查询服务
type Service struct {
	client *spapi.Client
	logger *zap.Logger
}

// NewService 创建目录查询服务
func NewService(client *spapi.Client, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		logger: logger,
	}
}

// RequestParams 目录请求参数
type RequestParams struct {
	// 必需参数
	MarketplaceID string `json:"marketplaceId"` // 站点标识，例如 A2Q3Y263D00KWC (com.br)

	// 查询方式（三选一）
	ASIN     string   `json:"asin,omitempty"`     // 单个 ASIN 查询
	ASINs    []string `json:"asins,omitempty"`    // 批量 ASIN 查询（最多20个）
	Keywords string   `json:"keywords,omitempty"` // 关键词搜索

	// 可选参数
	PageSize int `json:"pageSize,omitempty"` // 搜索结果数量（1-20，默认10）
}

// Validate 验证请求参数
func (p *RequestParams) Validate() error {
	if p.MarketplaceID == "" {
		return fmt.Errorf("marketplaceId is required")
	}

	// 三种查询方式必须且只能使用一种
	modes := 0
	if p.ASIN != "" {
		modes++
	}
	if len(p.ASINs) > 0 {
		modes++
	}
	if p.Keywords != "" {
		modes++
	}
	if modes == 0 {
		return fmt.Errorf("one of asin, asins or keywords is required")
	}
	if modes > 1 {
		return fmt.Errorf("asin, asins and keywords are mutually exclusive")
	}

	// 验证单个 ASIN 格式
	if p.ASIN != "" {
		p.ASIN = strings.TrimSpace(p.ASIN)
		if len(p.ASIN) != 10 {
			return fmt.Errorf("invalid ASIN: %s (ASIN must be exactly 10 characters)", p.ASIN)
		}
	}

	// 验证批量 ASIN（最多20个）
	if len(p.ASINs) > 20 {
		return fmt.Errorf("too many ASINs: %d (maximum 20 allowed)", len(p.ASINs))
	}
	for i, asin := range p.ASINs {
		asin = strings.TrimSpace(asin)
		if asin == "" {
			return fmt.Errorf("ASIN at index %d is empty", i)
		}
		if len(asin) != 10 {
			return fmt.Errorf("invalid ASIN at index %d: %s (ASIN must be exactly 10 characters)", i, asin)
		}
		p.ASINs[i] = asin
	}

	// 验证 pageSize（1-20）
	if p.PageSize != 0 && (p.PageSize < 1 || p.PageSize > 20) {
		return fmt.Errorf("invalid pageSize: %d (must be between 1 and 20)", p.PageSize)
	}

	return nil
}

// ToQueryParams 将 RequestParams 转换为查询参数字典
func (p *RequestParams) ToQueryParams() map[string]string {
	params := make(map[string]string)

	params["marketplaceIds"] = p.MarketplaceID

	if len(p.ASINs) > 0 {
		params["identifiers"] = strings.Join(p.ASINs, ",")
		params["identifiersType"] = "ASIN"
	} else if p.Keywords != "" {
		params["keywords"] = p.Keywords
	}

	if p.PageSize > 0 {
		params["pageSize"] = strconv.Itoa(p.PageSize)
	}

	return params
}

// searchResponse 目录搜索响应
type searchResponse struct {
	NumberOfResults int                 `json:"numberOfResults"`
	Items           []model.CatalogItem `json:"items"`
}

// GetItem 按 ASIN 获取单个商品元数据
func (s *Service) GetItem(ctx context.Context, params RequestParams) (*model.CatalogItem, error) {
	// 验证参数
	if err := params.Validate(); err != nil {
		if s.logger != nil {
			s.logger.Error("invalid catalog request parameters", zap.Error(err))
		}
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if params.ASIN == "" {
		return nil, fmt.Errorf("GetItem requires a single asin")
	}

	if s.logger != nil {
		s.logger.Info("fetching catalog item",
			zap.String("asin", params.ASIN),
			zap.String("marketplace_id", params.MarketplaceID),
		)
	}

	// 调用 API 获取原始数据
	endpoint := Endpoint + "/" + params.ASIN
	rawData, err := s.client.GetRawData(ctx, endpoint, params.ToQueryParams())
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to fetch catalog item",
				zap.String("asin", params.ASIN),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("failed to fetch catalog item: %w", err)
	}

	// 解析响应
	item, err := ParseItem(rawData)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Debug("catalog item fetched successfully",
			zap.String("asin", item.ASIN),
			zap.String("title", item.Title),
		)
	}

	return item, nil
}

// Search 按关键词或批量 ASIN 搜索商品
func (s *Service) Search(ctx context.Context, params RequestParams) ([]model.CatalogItem, error) {
	// 验证参数
	if err := params.Validate(); err != nil {
		if s.logger != nil {
			s.logger.Error("invalid catalog search parameters", zap.Error(err))
		}
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if params.ASIN != "" {
		return nil, fmt.Errorf("Search requires keywords or asins, not a single asin")
	}

	if s.logger != nil {
		s.logger.Info("searching catalog",
			zap.String("keywords", params.Keywords),
			zap.Int("asin_count", len(params.ASINs)),
			zap.String("marketplace_id", params.MarketplaceID),
		)
	}

	rawData, err := s.client.GetRawData(ctx, Endpoint, params.ToQueryParams())
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to search catalog", zap.Error(err))
		}
		return nil, fmt.Errorf("failed to search catalog: %w", err)
	}

	items, err := ParseItems(rawData)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Debug("catalog search succeeded",
			zap.Int("item_count", len(items)),
		)
	}

	return items, nil
}

// ParseItem 解析单个商品响应
func ParseItem(data []byte) (*model.CatalogItem, error) {
	var item model.CatalogItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("failed to parse catalog item: %w", err)
	}
	if item.ASIN == "" {
		return nil, fmt.Errorf("catalog item response missing asin")
	}
	return &item, nil
}

// ParseItems 解析搜索响应
func ParseItems(data []byte) ([]model.CatalogItem, error) {
	var resp searchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse catalog search response: %w", err)
	}
	return resp.Items, nil
}
