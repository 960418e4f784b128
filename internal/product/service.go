package product

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/ledger"

	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/enrich"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/model"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/offers"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/spapi/catalog"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/spapi/pricing"
)

// CatalogClient 目录查询接口
type CatalogClient interface {
	GetItem(ctx context.Context, params catalog.RequestParams) (*model.CatalogItem, error)
	Search(ctx context.Context, params catalog.RequestParams) ([]model.CatalogItem, error)
}

// PricingClient 定价查询接口
type PricingClient interface {
	GetPricing(ctx context.Context, params pricing.RequestParams) (*model.PricingPayload, error)
}

// CacheReader 缓存读取接口，写入由富化器异步完成
type CacheReader interface {
	Get(ctx context.Context, asin, marketplaceID string) (*model.CachedProductRecord, error)
}

// CreditLedger 积分扣减接口
type CreditLedger interface {
	AuthorizeAndCharge(ctx context.Context, userID string, amount int, reason string) error
}

// Service 商品查询服务，串联缓存、计费、上游查询和富化
//
// 计费规则：缓存命中免费，只有触发上游查询的请求才扣积分。
type Service struct {
	catalog   CatalogClient
	pricing   PricingClient
	cache     CacheReader
	ledger    CreditLedger
	assembler *enrich.Assembler
	logger    *zap.Logger

	defaultMarketplace string
	lookupCost         int
}

// Config 服务配置
type Config struct {
	Catalog   CatalogClient
	Pricing   PricingClient
	Cache     CacheReader
	Ledger    CreditLedger
	Assembler *enrich.Assembler
	Logger    *zap.Logger

	DefaultMarketplace string
	LookupCost         int
}

// NewService 创建商品查询服务
func NewService(cfg Config) *Service {
	if cfg.LookupCost <= 0 {
		cfg.LookupCost = 1
	}
	return &Service{
		catalog:            cfg.Catalog,
		pricing:            cfg.Pricing,
		cache:              cfg.Cache,
		ledger:             cfg.Ledger,
		assembler:          cfg.Assembler,
		logger:             cfg.Logger,
		defaultMarketplace: cfg.DefaultMarketplace,
		lookupCost:         cfg.LookupCost,
	}
}

// marketplaceOrDefault 站点为空时退回默认站点
func (s *Service) marketplaceOrDefault(marketplaceID string) string {
	if marketplaceID == "" {
		return s.defaultMarketplace
	}
	return marketplaceID
}

// charge 按次扣减积分；未配置账本或 userID 为空时跳过计费
func (s *Service) charge(ctx context.Context, userID, reason string) error {
	if s.ledger == nil || userID == "" {
		return nil
	}
	return s.ledger.AuthorizeAndCharge(ctx, userID, s.lookupCost, reason)
}

// Lookup 查询单个商品并返回富化结果
//
// 返回值第二项表示是否命中缓存；命中缓存不扣积分也不访问上游。
func (s *Service) Lookup(ctx context.Context, userID, asin, marketplaceID string) (*model.EnrichedProduct, bool, error) {
	marketplaceID = s.marketplaceOrDefault(marketplaceID)

	// 1. 先查缓存
	if s.cache != nil {
		record, err := s.cache.Get(ctx, asin, marketplaceID)
		if err != nil {
			// 缓存故障不阻断查询，降级为直接访问上游
			if s.logger != nil {
				s.logger.Warn("cache lookup failed, falling back to upstream",
					zap.String("asin", asin),
					zap.Error(err),
				)
			}
		} else if record != nil {
			return record.ToEnriched(), true, nil
		}
	}

	// 2. 缓存未命中，先计费再访问上游
	if err := s.charge(ctx, userID, "product_lookup"); err != nil {
		return nil, false, err
	}

	enriched, err := s.fetchAndEnrich(ctx, asin, marketplaceID)
	if err != nil {
		return nil, false, err
	}

	return enriched, false, nil
}

// Refresh 重新拉取并富化单个商品，绕过缓存读取和计费
// 供后台缓存刷新任务使用
func (s *Service) Refresh(ctx context.Context, asin, marketplaceID string) error {
	marketplaceID = s.marketplaceOrDefault(marketplaceID)
	_, err := s.fetchAndEnrich(ctx, asin, marketplaceID)
	return err
}

// fetchAndEnrich 上游查询 + 报价解析 + 富化
func (s *Service) fetchAndEnrich(ctx context.Context, asin, marketplaceID string) (*model.EnrichedProduct, error) {
	// 1. 目录元数据
	item, err := s.catalog.GetItem(ctx, catalog.RequestParams{
		MarketplaceID: marketplaceID,
		ASIN:          asin,
	})
	if err != nil {
		return nil, fmt.Errorf("catalog lookup failed for %s: %w", asin, err)
	}

	// 2. 定价数据；定价接口故障时退回目录价格继续富化
	payload, err := s.pricing.GetPricing(ctx, pricing.RequestParams{
		MarketplaceID: marketplaceID,
		ASIN:          asin,
	})
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("pricing lookup failed, using catalog price only",
				zap.String("asin", asin),
				zap.Error(err),
			)
		}
	} else if resolved := offers.ResolvePrice(payload); resolved != nil {
		// 报价解析结果优先于目录价格
		item.CurrentPrice = &model.Money{
			Amount:       resolved.Price,
			CurrencyCode: resolved.Currency,
		}
	}

	// 3. 富化（内部异步回写缓存）
	enriched := s.assembler.EnrichItem(ctx, item, marketplaceID)
	if enriched == nil {
		return nil, fmt.Errorf("enrichment produced no result for %s", asin)
	}

	return enriched, nil
}

// isLedgerError 计费相关错误需要中断整批请求
func isLedgerError(err error) bool {
	return errors.Is(err, ledger.ErrInsufficientCredits) || errors.Is(err, ledger.ErrAccountNotFound)
}

// BatchResult 批量查询结果
type BatchResult struct {
	Products []*model.EnrichedProduct `json:"products"`
	Failed   map[string]string        `json:"failed,omitempty"` // asin -> 错误描述
}

// Batch 批量查询商品
//
// 单个 ASIN 失败不中断整批，失败原因记入 Failed；
// 积分不足会立即中断并返回错误。
func (s *Service) Batch(ctx context.Context, userID string, asins []string, marketplaceID string) (*BatchResult, error) {
	result := &BatchResult{}

	for _, asin := range asins {
		enriched, _, err := s.Lookup(ctx, userID, asin, marketplaceID)
		if err != nil {
			if isLedgerError(err) {
				return nil, err
			}
			if result.Failed == nil {
				result.Failed = make(map[string]string)
			}
			result.Failed[asin] = err.Error()
			continue
		}
		result.Products = append(result.Products, enriched)
	}

	return result, nil
}

// Search 按关键词搜索并富化结果
//
// 搜索整体计一次费，结果只用目录自带的价格富化，不逐个访问定价接口。
func (s *Service) Search(ctx context.Context, userID, keywords, marketplaceID string, pageSize int) ([]*model.EnrichedProduct, error) {
	marketplaceID = s.marketplaceOrDefault(marketplaceID)

	if err := s.charge(ctx, userID, "product_search"); err != nil {
		return nil, err
	}

	items, err := s.catalog.Search(ctx, catalog.RequestParams{
		MarketplaceID: marketplaceID,
		Keywords:      keywords,
		PageSize:      pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("catalog search failed: %w", err)
	}

	pointers := make([]*model.CatalogItem, len(items))
	for i := range items {
		pointers[i] = &items[i]
	}

	return s.assembler.EnrichBatch(ctx, pointers, marketplaceID), nil
}

// ResolveOfferPrice 只做报价解析，不富化
// 价格无法解析时返回 (nil, nil)，调用方据此返回"价格未知"
func (s *Service) ResolveOfferPrice(ctx context.Context, userID, asin, marketplaceID string) (*model.OfferPriceResult, error) {
	marketplaceID = s.marketplaceOrDefault(marketplaceID)

	if err := s.charge(ctx, userID, "offer_price_lookup"); err != nil {
		return nil, err
	}

	payload, err := s.pricing.GetPricing(ctx, pricing.RequestParams{
		MarketplaceID: marketplaceID,
		ASIN:          asin,
	})
	if err != nil {
		return nil, fmt.Errorf("pricing lookup failed for %s: %w", asin, err)
	}

	return offers.ResolvePrice(payload), nil
}
