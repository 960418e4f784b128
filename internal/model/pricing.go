package model

// CompetitivePriceIDPrimary 主要竞争价格条目的标识
const CompetitivePriceIDPrimary = "1"

// PricingPayload 上游定价 API 的原始响应
// summary 下的四个兄弟列表相互独立且填充不一致，任何一个都可能为空
type PricingPayload struct {
	ASIN          string `json:"asin,omitempty"`
	MarketplaceID string `json:"marketplaceId,omitempty"`

	Summary *OfferSummary `json:"summary,omitempty"`
	Offers  []Offer       `json:"offers,omitempty"`
}

// OfferSummary 定价摘要
type OfferSummary struct {
	TotalOfferCount   int                `json:"totalOfferCount,omitempty"`
	BuyBoxPrices      []ConditionedPrice `json:"buyBoxPrices,omitempty"`
	LowestPrices      []ConditionedPrice `json:"lowestPrices,omitempty"`
	CompetitivePrices []CompetitivePrice `json:"competitivePrices,omitempty"`
}

// ConditionedPrice 按商品成色区分的价格条目
// 三个价格字段的填充因接口版本而异：landedPrice（含运费）、
// listingPrice（标价）、price（裸价）至多出现其一或其二
type ConditionedPrice struct {
	Condition    string `json:"condition,omitempty"`
	LandedPrice  *Money `json:"landedPrice,omitempty"`
	ListingPrice *Money `json:"listingPrice,omitempty"`
	Price        *Money `json:"price,omitempty"`
	Shipping     *Money `json:"shipping,omitempty"`
}

// CompetitivePrice 竞争价格条目
type CompetitivePrice struct {
	CompetitivePriceID string `json:"competitivePriceId,omitempty"`
	Condition          string `json:"condition,omitempty"`
	LandedPrice        *Money `json:"landedPrice,omitempty"`
	ListingPrice       *Money `json:"listingPrice,omitempty"`
	Price              *Money `json:"price,omitempty"`
}

// Offer 扁平报价列表中的单个报价
type Offer struct {
	SellerID       string `json:"sellerId,omitempty"`
	Condition      string `json:"condition,omitempty"`
	IsBuyBoxWinner bool   `json:"isBuyBoxWinner,omitempty"`
	LandedPrice    *Money `json:"landedPrice,omitempty"`
	ListingPrice   *Money `json:"listingPrice,omitempty"`
	Price          *Money `json:"price,omitempty"`
	Shipping       *Money `json:"shipping,omitempty"`
}
