// Package enrich 把目录商品、销量估算和费用拆分组装成最终的富化结果。
package enrich

import (
	"context"
	"math"
	"time"

	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/category"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/estimator"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/fees"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/model"

	"go.uber.org/zap"
)

// cacheWriteTimeout 异步缓存写入的独立超时，不受调用方上下文影响
const cacheWriteTimeout = 5 * time.Second

// Cache 产品缓存收集方的窄契约
// 写入是 best-effort：错误只记日志，不影响富化结果
type Cache interface {
	Upsert(ctx context.Context, record *model.CachedProductRecord) error
}

// Assembler 富化结果组装器
type Assembler struct {
	estimator *estimator.Estimator
	cache     Cache
	logger    *zap.Logger
}

// New 创建组装器，cache 可以为 nil（禁用缓存写入）
func New(est *estimator.Estimator, cache Cache, logger *zap.Logger) *Assembler {
	if est == nil {
		est = estimator.New(nil)
	}
	return &Assembler{
		estimator: est,
		cache:     cache,
		logger:    logger,
	}
}

// EnrichItem 富化单个目录商品并（异步、best-effort）写入缓存
// 即使缓存不可用富化也必须成功
func (a *Assembler) EnrichItem(ctx context.Context, item *model.CatalogItem, marketplaceID string) *model.EnrichedProduct {
	if item == nil {
		return nil
	}

	cat := category.Normalize(item.DisplayGroup)

	// 销量估算：完全没有排名的商品用 NEW_RISING 标记，不调用估算器
	var estimate model.SalesEstimate
	band := model.SalesBandNewRising
	if rank, ok := item.PrimaryRank(); ok {
		estimate = a.estimator.Estimate(rank, item.DisplayGroup, marketplaceID)
		band = estimate.Percentile
	} else {
		estimate.CategoryTotal = a.estimator.Table().Lookup(cat).Top10
	}

	// 成交价优先于厂商建议零售价；MSRP 绝不能当作成交价
	priceCents, currency := currentPrice(item)

	feeResult := fees.Calculate(priceCents, item.PackageDimensions, item.PackageWeight, item.DisplayGroup)

	enriched := &model.EnrichedProduct{
		ASIN:                  item.ASIN,
		MarketplaceID:         marketplaceID,
		Title:                 item.Title,
		Brand:                 item.Brand,
		Category:              string(cat),
		PriceCents:            priceCents,
		Currency:              currency,
		EstimatedUnits:        estimate.EstimatedUnits,
		SalesBand:             band,
		CategoryTotal:         estimate.CategoryTotal,
		Fees:                  feeResult,
		EstimatedRevenueCents: priceCents * int64(estimate.EstimatedUnits),
		NetProfitCents:        priceCents - feeResult.TotalFeeCents,
		EnrichedAt:            time.Now(),
	}

	a.writeCacheAsync(enriched)

	return enriched
}

// EnrichBatch 富化一批商品
// 每个商品的缓存写入相互独立并发，后写覆盖先写，无顺序保证
func (a *Assembler) EnrichBatch(ctx context.Context, items []*model.CatalogItem, marketplaceID string) []*model.EnrichedProduct {
	results := make([]*model.EnrichedProduct, 0, len(items))
	for _, item := range items {
		if enriched := a.EnrichItem(ctx, item, marketplaceID); enriched != nil {
			results = append(results, enriched)
		}
	}
	return results
}

// writeCacheAsync 异步写缓存，失败只记日志，绝不传播给调用方
func (a *Assembler) writeCacheAsync(enriched *model.EnrichedProduct) {
	if a.cache == nil {
		return
	}

	record := enriched.ToCacheRecord()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
		defer cancel()

		if err := a.cache.Upsert(ctx, record); err != nil {
			if a.logger != nil {
				a.logger.Warn("cache write dropped",
					zap.String("asin", record.ASIN),
					zap.String("marketplace_id", record.MarketplaceID),
					zap.Error(err),
				)
			}
		}
	}()
}

// currentPrice 取商品当前成交价（分），没有在售报价时退回标价
func currentPrice(item *model.CatalogItem) (int64, string) {
	if item.CurrentPrice.Positive() {
		return toCents(item.CurrentPrice.Amount), item.CurrentPrice.CurrencyCode
	}
	if item.ListPrice.Positive() {
		return toCents(item.ListPrice.Amount), item.ListPrice.CurrencyCode
	}
	return 0, ""
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
