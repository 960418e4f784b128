package model

// Money 上游返回的金额，Amount 为主货币单位的十进制数
type Money struct {
	Amount       float64 `json:"amount" bson:"amount"`
	CurrencyCode string  `json:"currencyCode,omitempty" bson:"currency_code,omitempty"`
}

// Positive 金额是否存在且为正数
func (m *Money) Positive() bool {
	return m != nil && m.Amount > 0
}

// SalesRankGroup 类目维度的销量排名列表
type SalesRankGroup struct {
	DisplayGroup string `json:"displayGroup,omitempty" bson:"display_group,omitempty"`
	Ranks        []int  `json:"ranks,omitempty" bson:"ranks,omitempty"`
}

// CatalogItem 上游目录 API 返回的商品元数据
// 上游字段填充极不稳定，所有指针字段都可能为 nil，消费方必须防御性访问
type CatalogItem struct {
	ASIN         string `json:"asin"`
	Title        string `json:"title,omitempty"`
	Brand        string `json:"brand,omitempty"`
	DisplayGroup string `json:"displayGroup,omitempty"`

	SalesRanks []SalesRankGroup `json:"salesRanks,omitempty"`

	// CurrentPrice 当前可成交报价；ListPrice 为厂商建议零售价（MSRP），
	// 两者同时存在时绝不能把 ListPrice 当作成交价
	CurrentPrice *Money `json:"currentPrice,omitempty"`
	ListPrice    *Money `json:"listPrice,omitempty"`

	PackageDimensions *DimensionSpec `json:"packageDimensions,omitempty"`
	PackageWeight     *WeightSpec    `json:"packageWeight,omitempty"`

	ImageURL string `json:"imageUrl,omitempty"`
}

// PrimaryRank 取第一个非空排名列表的首个排名
// 返回 (0, false) 表示商品没有任何销量排名
func (i *CatalogItem) PrimaryRank() (int, bool) {
	if i == nil {
		return 0, false
	}
	for _, group := range i.SalesRanks {
		if len(group.Ranks) > 0 {
			return group.Ranks[0], true
		}
	}
	return 0, false
}
