// Package offers 从上游深度嵌套、填充不一致的定价响应中解析出唯一的规范价格。
//
// 解析是一条有序兜底链：每个提取层仅在前一层一无所获时才尝试，
// 首个产出正金额的层获胜。链本身是数据而非控制流，增删或重排
// 层级只需改动 chain 表。
package offers

import (
	"strings"

	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/model"
)

const conditionNew = "new"

// amount 单个提取层的产出
type amount struct {
	value    float64
	currency string
}

// tier 提取层：fn 返回 nil 表示该层一无所获
type tier struct {
	name string
	// fallback 非首选层级，命中时结果标记低置信度
	fallback bool
	fn       func(*model.PricingPayload) *amount
}

// chain 有序兜底链，自上而下求值
var chain = []tier{
	{name: "buybox_new", fallback: false, fn: extractBuyBoxNew},
	{name: "competitive", fallback: true, fn: extractCompetitive},
	{name: "lowest_new", fallback: true, fn: extractLowestNew},
	{name: "flat_offers", fallback: true, fn: extractFlatOffers},
	{name: "any_summary", fallback: true, fn: extractAnySummary},
}

// ResolvePrice 解析规范价格
// 纯函数，幂等；返回 nil 表示没有任何层级能解析出正金额，
// 调用方必须将 nil 视为价格未知而不是零价
func ResolvePrice(payload *model.PricingPayload) *model.OfferPriceResult {
	if payload == nil {
		return nil
	}

	// 在售报价数独立于价格命中的层级，从摘要读取一次
	offerCount := 0
	if payload.Summary != nil && payload.Summary.TotalOfferCount > 0 {
		offerCount = payload.Summary.TotalOfferCount
	}

	for _, t := range chain {
		if a := t.fn(payload); a != nil {
			return &model.OfferPriceResult{
				Price:            a.value,
				Currency:         a.currency,
				ActiveOfferCount: offerCount,
				FallbackUsed:     t.fallback,
			}
		}
	}

	return nil
}

// pickAmount 金额字段的子优先级：到手价 > 标价 > 裸价，取首个正金额
func pickAmount(landed, listing, price *model.Money) *amount {
	for _, m := range []*model.Money{landed, listing, price} {
		if m.Positive() {
			return &amount{value: m.Amount, currency: m.CurrencyCode}
		}
	}
	return nil
}

func isNew(condition string) bool {
	return strings.EqualFold(strings.TrimSpace(condition), conditionNew)
}

// extractBuyBoxNew 第1层：成色为 new 的 buy-box 价格
func extractBuyBoxNew(p *model.PricingPayload) *amount {
	if p.Summary == nil {
		return nil
	}
	for i := range p.Summary.BuyBoxPrices {
		entry := &p.Summary.BuyBoxPrices[i]
		if !isNew(entry.Condition) {
			continue
		}
		if a := pickAmount(entry.LandedPrice, entry.ListingPrice, entry.Price); a != nil {
			return a
		}
	}
	return nil
}

// extractCompetitive 第2层：竞争价格，优先取标记为主要价格 id 的条目
func extractCompetitive(p *model.PricingPayload) *amount {
	if p.Summary == nil {
		return nil
	}
	prices := p.Summary.CompetitivePrices

	for i := range prices {
		if prices[i].CompetitivePriceID != model.CompetitivePriceIDPrimary {
			continue
		}
		if a := pickAmount(prices[i].LandedPrice, prices[i].ListingPrice, prices[i].Price); a != nil {
			return a
		}
	}
	for i := range prices {
		if a := pickAmount(prices[i].LandedPrice, prices[i].ListingPrice, prices[i].Price); a != nil {
			return a
		}
	}
	return nil
}

// extractLowestNew 第3层：成色为 new 的最低价条目
func extractLowestNew(p *model.PricingPayload) *amount {
	if p.Summary == nil {
		return nil
	}
	for i := range p.Summary.LowestPrices {
		entry := &p.Summary.LowestPrices[i]
		if !isNew(entry.Condition) {
			continue
		}
		if a := pickAmount(entry.LandedPrice, entry.ListingPrice, entry.Price); a != nil {
			return a
		}
	}
	return nil
}

// extractFlatOffers 第4层：扁平报价表
// 候选顺序：buy-box 赢家 > 首个 new 成色报价 > 首个任意报价
func extractFlatOffers(p *model.PricingPayload) *amount {
	offerAmount := func(o *model.Offer) *amount {
		return pickAmount(o.LandedPrice, o.ListingPrice, o.Price)
	}

	for i := range p.Offers {
		if p.Offers[i].IsBuyBoxWinner {
			if a := offerAmount(&p.Offers[i]); a != nil {
				return a
			}
		}
	}
	for i := range p.Offers {
		if isNew(p.Offers[i].Condition) {
			if a := offerAmount(&p.Offers[i]); a != nil {
				return a
			}
		}
	}
	for i := range p.Offers {
		if a := offerAmount(&p.Offers[i]); a != nil {
			return a
		}
	}
	return nil
}

// extractAnySummary 第5层兜底：按 buy-box/竞争价/最低价的顺序，
// 取首个非空列表的第一个条目，不做任何成色过滤
func extractAnySummary(p *model.PricingPayload) *amount {
	if p.Summary == nil {
		return nil
	}
	if entries := p.Summary.BuyBoxPrices; len(entries) > 0 {
		if a := pickAmount(entries[0].LandedPrice, entries[0].ListingPrice, entries[0].Price); a != nil {
			return a
		}
	}
	if entries := p.Summary.CompetitivePrices; len(entries) > 0 {
		if a := pickAmount(entries[0].LandedPrice, entries[0].ListingPrice, entries[0].Price); a != nil {
			return a
		}
	}
	if entries := p.Summary.LowestPrices; len(entries) > 0 {
		if a := pickAmount(entries[0].LandedPrice, entries[0].ListingPrice, entries[0].Price); a != nil {
			return a
		}
	}
	return nil
}
