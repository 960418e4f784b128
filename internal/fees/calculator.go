// Package fees 根据价格、包装规格和类目推导市场佣金与配送费。
package fees

import (
	"math"
	"strings"

	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/model"
)

// 佣金费率
const (
	referralRateBase = 0.15
	// referralRateReduced 价格超过阈值且属于电子/大家电类目时的优惠费率
	referralRateReduced    = 0.12
	reducedRateMinCents    = 15000
	missingDataCombinedPct = 0.30
	toyFulfillmentCapPct   = 0.40
)

// 按 (长, 宽, 高, 重量) 顺序求值的体积/重量档位，单位 cm / kg
const (
	tierASmallCents  = 250
	tierBMediumCents = 450
	tierCLargeCents  = 650
	heavyBaseCents   = 750
)

// 单位换算系数
const (
	inchesToCM     = 2.54
	poundsToKG     = 0.453592
	ouncesToKG     = 0.0283495
)

// reducedRatePatterns 优惠费率的类目匹配表
// 刻意独立于 category 包的规范化规则，范围更窄
var reducedRatePatterns = []string{
	"eletrôn", "eletron", "electrón", "electron",
	"eletrodom", "electrodom", "appliance",
	"informát", "informat", "computador", "computer",
	"tv", "televis",
}

// toyPatterns 配送费封顶的玩具类目匹配表
var toyPatterns = []string{"brinquedo", "juguete", "toy"}

// Calculate 计算费用拆分，价格以最小货币单位（分）传入
// 全函数：缺失或为零的输入都有明确的兜底路径，绝不报错
// 价格为 0 时费用全部为 0
func Calculate(priceCents int64, dims *model.DimensionSpec, weight *model.WeightSpec, rawCategory string) model.FeeResult {
	missingData := dims == nil || weight == nil

	if priceCents <= 0 {
		return model.FeeResult{IsEstimate: missingData}
	}

	referral := referralFee(priceCents, rawCategory)

	// 缺少物理数据：按价格 30% 做合并费用估算
	if missingData {
		combined := roundCents(float64(priceCents) * missingDataCombinedPct)
		fulfillment := combined - referral
		if fulfillment < 0 {
			fulfillment = 0
		}
		return model.FeeResult{
			TotalFeeCents:       referral + fulfillment,
			ReferralFeeCents:    referral,
			FulfillmentFeeCents: fulfillment,
			IsEstimate:          true,
		}
	}

	lengthCM, widthCM, heightCM := toCentimeters(dims)
	weightKG := toKilograms(weight)

	fulfillment := fulfillmentFee(lengthCM, widthCM, heightCM, weightKG)

	// 玩具封顶：轻小但高价的玩具会被体积档位系统性错估
	if weightKG < 2 && matchesAny(rawCategory, toyPatterns) {
		capCents := roundCents(float64(priceCents) * toyFulfillmentCapPct)
		if fulfillment > capCents {
			fulfillment = capCents
		}
	}

	return model.FeeResult{
		TotalFeeCents:       referral + fulfillment,
		ReferralFeeCents:    referral,
		FulfillmentFeeCents: fulfillment,
		IsEstimate:          false,
	}
}

// referralFee 市场佣金：基础 15%，高价电子/大家电降为 12%
func referralFee(priceCents int64, rawCategory string) int64 {
	rate := referralRateBase
	if priceCents > reducedRateMinCents && matchesAny(rawCategory, reducedRatePatterns) {
		rate = referralRateReduced
	}
	return roundCents(float64(priceCents) * rate)
}

// fulfillmentFee 配送费：有序档位，首个命中生效
// 超重档对"总重量"而非超出部分计费（7.50 + floor(kg*0.50)），
// 在 2kg 边界存在不连续，为兼容历史数据必须原样保留
func fulfillmentFee(lengthCM, widthCM, heightCM, weightKG float64) int64 {
	switch {
	case lengthCM <= 35 && widthCM <= 25 && heightCM <= 2 && weightKG <= 0.1:
		return tierASmallCents
	case lengthCM <= 45 && widthCM <= 34 && heightCM <= 26 && weightKG <= 1:
		return tierBMediumCents
	case weightKG <= 2:
		return tierCLargeCents
	default:
		return heavyBaseCents + int64(math.Floor(weightKG*0.50))*100
	}
}

// toCentimeters 尺寸换算为厘米，未知单位按厘米处理
func toCentimeters(d *model.DimensionSpec) (length, width, height float64) {
	factor := 1.0
	switch d.Unit {
	case model.DimensionInches:
		factor = inchesToCM
	case model.DimensionMillimeters:
		factor = 0.1
	}
	return d.Length * factor, d.Width * factor, d.Height * factor
}

// toKilograms 重量换算为千克，未知单位按千克处理
func toKilograms(w *model.WeightSpec) float64 {
	switch w.Unit {
	case model.WeightPounds:
		return w.Value * poundsToKG
	case model.WeightOunces:
		return w.Value * ouncesToKG
	case model.WeightGrams:
		return w.Value / 1000
	}
	return w.Value
}

func matchesAny(raw string, patterns []string) bool {
	needle := strings.ToLower(raw)
	for _, p := range patterns {
		if strings.Contains(needle, p) {
			return true
		}
	}
	return false
}

func roundCents(v float64) int64 {
	return int64(math.Round(v))
}
