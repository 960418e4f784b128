package model

import "time"

// CollectionProductCache 产品缓存集合名
const CollectionProductCache = "product_cache"

// EnrichedProduct 富化后的商品数据，网关直接返回给调用方
type EnrichedProduct struct {
	ASIN          string `json:"asin"`
	MarketplaceID string `json:"marketplaceId"`
	Title         string `json:"title,omitempty"`
	Brand         string `json:"brand,omitempty"`
	Category      string `json:"category"`

	PriceCents int64  `json:"priceCents"`
	Currency   string `json:"currency,omitempty"`

	EstimatedUnits int    `json:"estimatedUnits"`
	SalesBand      string `json:"salesBand,omitempty"`
	CategoryTotal  int    `json:"categoryTotal"`

	Fees FeeResult `json:"fees"`

	EstimatedRevenueCents int64 `json:"estimatedRevenueCents"`
	NetProfitCents        int64 `json:"netProfitCents"`

	EnrichedAt time.Time `json:"enrichedAt"`
}

// CachedProductRecord 产品缓存记录，以 (asin, marketplace_id) 为键
// 新鲜度窗口由存储层判断，核心算法不关心过期逻辑
type CachedProductRecord struct {
	ASIN          string `bson:"asin" json:"asin"`
	MarketplaceID string `bson:"marketplace_id" json:"marketplaceId"`
	Title         string `bson:"title,omitempty" json:"title,omitempty"`
	Category      string `bson:"category,omitempty" json:"category,omitempty"`

	PriceCents int64  `bson:"price_cents" json:"priceCents"`
	Currency   string `bson:"currency,omitempty" json:"currency,omitempty"`

	EstimatedUnits int    `bson:"estimated_units" json:"estimatedUnits"`
	SalesBand      string `bson:"sales_band,omitempty" json:"salesBand,omitempty"`
	CategoryTotal  int    `bson:"category_total" json:"categoryTotal"`

	ReferralFeeCents    int64 `bson:"referral_fee_cents" json:"referralFeeCents"`
	FulfillmentFeeCents int64 `bson:"fulfillment_fee_cents" json:"fulfillmentFeeCents"`
	TotalFeeCents       int64 `bson:"total_fee_cents" json:"totalFeeCents"`
	FeeIsEstimate       bool  `bson:"fee_is_estimate" json:"feeIsEstimate"`

	EstimatedRevenueCents int64 `bson:"estimated_revenue_cents" json:"estimatedRevenueCents"`
	NetProfitCents        int64 `bson:"net_profit_cents" json:"netProfitCents"`

	CachedAt  time.Time `bson:"cached_at" json:"cachedAt"`
	CreatedAt time.Time `bson:"created_at,omitempty" json:"createdAt,omitempty"`
}

// ToCacheRecord 由富化结果构建缓存记录
func (p *EnrichedProduct) ToCacheRecord() *CachedProductRecord {
	return &CachedProductRecord{
		ASIN:                  p.ASIN,
		MarketplaceID:         p.MarketplaceID,
		Title:                 p.Title,
		Category:              p.Category,
		PriceCents:            p.PriceCents,
		Currency:              p.Currency,
		EstimatedUnits:        p.EstimatedUnits,
		SalesBand:             p.SalesBand,
		CategoryTotal:         p.CategoryTotal,
		ReferralFeeCents:      p.Fees.ReferralFeeCents,
		FulfillmentFeeCents:   p.Fees.FulfillmentFeeCents,
		TotalFeeCents:         p.Fees.TotalFeeCents,
		FeeIsEstimate:         p.Fees.IsEstimate,
		EstimatedRevenueCents: p.EstimatedRevenueCents,
		NetProfitCents:        p.NetProfitCents,
		CachedAt:              p.EnrichedAt,
	}
}

// ToEnriched 由缓存记录还原富化结果（缓存命中路径）
func (r *CachedProductRecord) ToEnriched() *EnrichedProduct {
	return &EnrichedProduct{
		ASIN:           r.ASIN,
		MarketplaceID:  r.MarketplaceID,
		Title:          r.Title,
		Category:       r.Category,
		PriceCents:     r.PriceCents,
		Currency:       r.Currency,
		EstimatedUnits: r.EstimatedUnits,
		SalesBand:      r.SalesBand,
		CategoryTotal:  r.CategoryTotal,
		Fees: FeeResult{
			TotalFeeCents:       r.TotalFeeCents,
			ReferralFeeCents:    r.ReferralFeeCents,
			FulfillmentFeeCents: r.FulfillmentFeeCents,
			IsEstimate:          r.FeeIsEstimate,
		},
		EstimatedRevenueCents: r.EstimatedRevenueCents,
		NetProfitCents:        r.NetProfitCents,
		EnrichedAt:            r.CachedAt,
	}
}
