package model

// DimensionUnit 尺寸单位
type DimensionUnit string

const (
	DimensionCentimeters DimensionUnit = "CENTIMETERS"
	DimensionInches      DimensionUnit = "INCHES"
	DimensionMillimeters DimensionUnit = "MILLIMETERS"
)

// WeightUnit 重量单位
type WeightUnit string

const (
	WeightKilograms WeightUnit = "KILOGRAMS"
	WeightPounds    WeightUnit = "POUNDS"
	WeightOunces    WeightUnit = "OUNCES"
	WeightGrams     WeightUnit = "GRAMS"
)

// DimensionSpec 包装尺寸，未指定单位时默认为厘米
type DimensionSpec struct {
	Length float64       `json:"length" bson:"length"`
	Width  float64       `json:"width" bson:"width"`
	Height float64       `json:"height" bson:"height"`
	Unit   DimensionUnit `json:"unit,omitempty" bson:"unit,omitempty"`
}

// WeightSpec 包装重量，未指定单位时默认为千克
type WeightSpec struct {
	Value float64    `json:"value" bson:"value"`
	Unit  WeightUnit `json:"unit,omitempty" bson:"unit,omitempty"`
}

// FeeResult 费用拆分结果，金额一律以最小货币单位（分）表示
// 不变量: TotalFeeCents == ReferralFeeCents + FulfillmentFeeCents
type FeeResult struct {
	TotalFeeCents       int64 `json:"totalFeeCents"`
	ReferralFeeCents    int64 `json:"referralFeeCents"`
	FulfillmentFeeCents int64 `json:"fulfillmentFeeCents"`
	// IsEstimate 缺少尺寸或重量时使用平价兜底估算
	IsEstimate bool `json:"isEstimate"`
}

// 销量排名百分位档位
const (
	PercentileTop1  = "1%"
	PercentileTop3  = "3%"
	PercentileTop10 = "10%"
	// PercentileNone 排名在前10%之外，置信度低
	PercentileNone = ""
)

// SalesBandNewRising 商品完全没有销量排名时由调用方使用的标记，
// 与 PercentileNone（有排名但在前10%之外）含义不同
const SalesBandNewRising = "NEW_RISING"

// SalesEstimate 月销量估算结果
type SalesEstimate struct {
	EstimatedUnits int    `json:"estimatedUnits"`
	Percentile     string `json:"percentile,omitempty"`
	// CategoryTotal 类目前10%的排名截止值，供展示 "X out of Y" 使用
	CategoryTotal int `json:"categoryTotal"`
}

// OfferPriceResult 报价解析结果，nil 表示所有层级都未能解析出价格，
// 调用方必须将其视为 "价格未知" 而不是零价
type OfferPriceResult struct {
	Price            float64 `json:"price"`
	Currency         string  `json:"currency"`
	ActiveOfferCount int     `json:"activeOfferCount"`
	// FallbackUsed 价格来自非首选提取层级（非 buy-box new），置信度较低
	FallbackUsed bool `json:"fallbackUsed"`
}
