// Package estimator 把类目销量排名转换为月销量估算。
//
// 排名-销量关系是重尾分布，线性插值会高估中段排名，因此全部
// 插值在 log10 空间进行。曲线是手工标定的启发式，不是统计模型。
package estimator

import (
	"math"

	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/category"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/census"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/model"
)

// 各百分位档的销量边界（基准站点、缩放前）
const (
	top1FloorUnits  = 300 // top1 档慢端（rank == top1）
	top3CeilUnits   = 299
	top3FloorUnits  = 100
	top10CeilUnits  = 45
	top10FloorUnits = 10
	// beyondUnits 前10%之外的固定保底估算
	beyondUnits = 5
)

// top1 档快端（rank == 1）的类目上限：大家电类目峰值流速天然更低
const (
	top1MaxDefault         = 2500
	top1MaxMajorAppliances = 800
)

// Estimator 月销量估算器，纯 CPU 计算，可被任意数量的调用方并发使用
type Estimator struct {
	table *census.Table
}

// New 创建估算器
func New(table *census.Table) *Estimator {
	if table == nil {
		table = census.Default()
	}
	return &Estimator{table: table}
}

// Table 返回底层普查表
func (e *Estimator) Table() *census.Table {
	return e.table
}

// Estimate 估算 (排名, 原始类目, 站点) 对应的月销量
// 全函数：排名非法时夹逼到 1，类目和站点未知时使用兜底行/默认系数
func (e *Estimator) Estimate(rank int, rawCategory, marketplaceID string) model.SalesEstimate {
	cat := category.Normalize(rawCategory)
	row := e.table.Lookup(cat)
	scale := e.table.MarketplaceScale(marketplaceID)

	// log10 对非正数无定义
	if rank <= 0 {
		rank = 1
	}

	top1Max := float64(top1MaxDefault)
	if cat == census.CategoryMajorAppliances {
		top1Max = top1MaxMajorAppliances
	}

	units, percentile := bandedUnits(rank, row, top1Max)

	scaled := int(math.Floor(float64(units) * scale))
	if scaled < 0 {
		scaled = 0
	}

	return model.SalesEstimate{
		EstimatedUnits: scaled,
		Percentile:     percentile,
		CategoryTotal:  row.Top10,
	}
}

// bandedUnits 在排名所属的百分位档内做对数插值，返回缩放前的销量
func bandedUnits(rank int, row census.Cutoffs, top1Max float64) (int, string) {
	logRank := math.Log10(float64(rank))

	switch {
	case rank <= row.Top1:
		// ratio=1 对应 rank==1，ratio=0 对应档位慢端 rank==top1
		ratio := safeRatio(math.Log10(float64(row.Top1))-logRank, math.Log10(float64(row.Top1)))
		units := math.Floor(top1FloorUnits + ratio*(top1Max-top1FloorUnits))
		return int(units), model.PercentileTop1

	case rank <= row.Top3:
		span := math.Log10(float64(row.Top3)) - math.Log10(float64(row.Top1))
		ratio := safeRatio(math.Log10(float64(row.Top3))-logRank, span)
		units := math.Floor(top3FloorUnits + ratio*float64(top3CeilUnits-top3FloorUnits))
		return int(units), model.PercentileTop3

	case rank <= row.Top10:
		span := math.Log10(float64(row.Top10)) - math.Log10(float64(row.Top3))
		ratio := safeRatio(math.Log10(float64(row.Top10))-logRank, span)
		units := math.Floor(top10FloorUnits + ratio*float64(top10CeilUnits-top10FloorUnits))
		return int(units), model.PercentileTop10

	default:
		return beyondUnits, model.PercentileNone
	}
}

// safeRatio 分母为零或结果非有限时返回 0，并夹逼到 [0, 1]
func safeRatio(num, denom float64) float64 {
	if denom == 0 {
		return 0
	}
	r := num / denom
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}
