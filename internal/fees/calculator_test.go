package fees

import (
	"testing"

	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/model"
)

func dims(l, w, h float64, unit model.DimensionUnit) *model.DimensionSpec {
	return &model.DimensionSpec{Length: l, Width: w, Height: h, Unit: unit}
}

func weight(v float64, unit model.WeightUnit) *model.WeightSpec {
	return &model.WeightSpec{Value: v, Unit: unit}
}

func TestCalculate_TierA(t *testing.T) {
	// 25.00 的小件美妆：A 档配送费 2.50，佣金 15% = 3.75
	got := Calculate(2500, dims(30, 20, 1.5, model.DimensionCentimeters), weight(0.08, model.WeightKilograms), "Beleza")

	if got.IsEstimate {
		t.Error("IsEstimate = true, want false with full physical data")
	}
	if got.ReferralFeeCents != 375 {
		t.Errorf("ReferralFeeCents = %d, want 375", got.ReferralFeeCents)
	}
	if got.FulfillmentFeeCents != 250 {
		t.Errorf("FulfillmentFeeCents = %d, want 250", got.FulfillmentFeeCents)
	}
	if got.TotalFeeCents != 625 {
		t.Errorf("TotalFeeCents = %d, want 625", got.TotalFeeCents)
	}
}

func TestCalculate_Tiers(t *testing.T) {
	tests := []struct {
		name            string
		dims            *model.DimensionSpec
		weight          *model.WeightSpec
		wantFulfillment int64
	}{
		{"tier A small light", dims(35, 25, 2, model.DimensionCentimeters), weight(0.1, model.WeightKilograms), 250},
		{"tier B medium", dims(45, 34, 26, model.DimensionCentimeters), weight(1, model.WeightKilograms), 450},
		{"tier C by weight only", dims(120, 80, 60, model.DimensionCentimeters), weight(2, model.WeightKilograms), 650},
		// 超重档：7.50 + floor(5.0 * 0.50) = 9.50，按总重量计费
		{"heavy 5kg", dims(60, 40, 40, model.DimensionCentimeters), weight(5, model.WeightKilograms), 950},
		// 7.50 + floor(2.1 * 0.50) = 7.50 + 1.00*0 -> floor(1.05)=1 -> 8.50
		{"heavy just past 2kg", dims(60, 40, 40, model.DimensionCentimeters), weight(2.1, model.WeightKilograms), 850},
		{"heavy 10kg", dims(60, 40, 40, model.DimensionCentimeters), weight(10, model.WeightKilograms), 1250},
		// 毫米与磅换算后落在 A 档：350x250x20mm, 0.2lb = 0.0907kg
		{"unit conversion mm and lb", dims(350, 250, 20, model.DimensionMillimeters), weight(0.2, model.WeightPounds), 250},
		// 英寸换算：10in = 25.4cm, 2oz = 0.0567kg -> A 档
		{"unit conversion in and oz", dims(10, 8, 0.5, model.DimensionInches), weight(2, model.WeightOunces), 250},
		// 克换算：800g -> B 档（配合 B 档尺寸）
		{"unit conversion grams", dims(40, 30, 20, model.DimensionCentimeters), weight(800, model.WeightGrams), 450},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(10000, tt.dims, tt.weight, "Cozinha")
			if got.IsEstimate {
				t.Error("IsEstimate = true, want false")
			}
			if got.FulfillmentFeeCents != tt.wantFulfillment {
				t.Errorf("FulfillmentFeeCents = %d, want %d", got.FulfillmentFeeCents, tt.wantFulfillment)
			}
		})
	}
}

func TestCalculate_MissingPhysicalData(t *testing.T) {
	tests := []struct {
		name   string
		dims   *model.DimensionSpec
		weight *model.WeightSpec
	}{
		{"no dims", nil, weight(1, model.WeightKilograms)},
		{"no weight", dims(30, 20, 10, model.DimensionCentimeters), nil},
		{"neither", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(10000, tt.dims, tt.weight, "Beleza")
			if !got.IsEstimate {
				t.Error("IsEstimate = false, want true when physical data missing")
			}
			// 合并估算为价格的 30%：佣金 1500，配送费补足到 3000
			if got.ReferralFeeCents != 1500 {
				t.Errorf("ReferralFeeCents = %d, want 1500", got.ReferralFeeCents)
			}
			if got.FulfillmentFeeCents != 1500 {
				t.Errorf("FulfillmentFeeCents = %d, want 1500", got.FulfillmentFeeCents)
			}
			if got.TotalFeeCents != 3000 {
				t.Errorf("TotalFeeCents = %d, want 3000", got.TotalFeeCents)
			}
		})
	}
}

func TestCalculate_ReducedReferralRate(t *testing.T) {
	tests := []struct {
		name         string
		priceCents   int64
		category     string
		wantReferral int64
	}{
		// 高价电子产品 12%
		{"electronics above threshold", 20000, "Eletrônicos", 2400},
		{"appliance above threshold", 20000, "Major Appliances", 2400},
		// 刚好在阈值上仍是 15%
		{"electronics at threshold", 15000, "Eletrônicos", 2250},
		// 高价但非电子类目 15%
		{"beauty above threshold", 20000, "Beleza", 3000},
		// 低价电子产品 15%
		{"electronics below threshold", 10000, "Eletrônicos", 1500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.priceCents, nil, nil, tt.category)
			if got.ReferralFeeCents != tt.wantReferral {
				t.Errorf("ReferralFeeCents = %d, want %d", got.ReferralFeeCents, tt.wantReferral)
			}
		})
	}
}

func TestCalculate_ToyFulfillmentCap(t *testing.T) {
	// 轻小高配送费的玩具：C 档 6.50 被封顶到价格的 40%
	got := Calculate(1000, dims(120, 80, 60, model.DimensionCentimeters), weight(0.5, model.WeightKilograms), "Brinquedos")

	if got.FulfillmentFeeCents != 400 {
		t.Errorf("FulfillmentFeeCents = %d, want capped 400", got.FulfillmentFeeCents)
	}
	if got.TotalFeeCents != got.ReferralFeeCents+got.FulfillmentFeeCents {
		t.Errorf("fee identity violated: total=%d referral=%d fulfillment=%d",
			got.TotalFeeCents, got.ReferralFeeCents, got.FulfillmentFeeCents)
	}

	// 超过 2kg 的玩具不封顶
	heavy := Calculate(1000, dims(120, 80, 60, model.DimensionCentimeters), weight(3, model.WeightKilograms), "Brinquedos")
	if heavy.FulfillmentFeeCents <= 400 {
		t.Errorf("heavy toy should not be capped, got %d", heavy.FulfillmentFeeCents)
	}

	// 封顶不低估本来就便宜的配送费
	cheap := Calculate(100000, dims(30, 20, 1, model.DimensionCentimeters), weight(0.05, model.WeightKilograms), "Toys")
	if cheap.FulfillmentFeeCents != 250 {
		t.Errorf("cap should not raise a low fee, got %d", cheap.FulfillmentFeeCents)
	}
}

func TestCalculate_FeeIdentity(t *testing.T) {
	// total == referral + fulfillment 对所有输入组合严格成立
	cases := []struct {
		priceCents int64
		dims       *model.DimensionSpec
		weight     *model.WeightSpec
		category   string
	}{
		{0, nil, nil, ""},
		{1, nil, nil, "Beleza"},
		{2500, dims(30, 20, 1.5, model.DimensionCentimeters), weight(0.08, model.WeightKilograms), "Beleza"},
		{99999, dims(60, 40, 40, model.DimensionCentimeters), weight(12.7, model.WeightKilograms), "Eletrônicos"},
		{333, nil, weight(1, model.WeightKilograms), "Brinquedos"},
		{100001, dims(1, 1, 1, model.DimensionMillimeters), weight(1, model.WeightGrams), "Informática"},
	}

	for _, c := range cases {
		got := Calculate(c.priceCents, c.dims, c.weight, c.category)
		if got.TotalFeeCents != got.ReferralFeeCents+got.FulfillmentFeeCents {
			t.Errorf("identity violated for price=%d cat=%q: %+v", c.priceCents, c.category, got)
		}
	}
}

func TestCalculate_ZeroPrice(t *testing.T) {
	got := Calculate(0, dims(30, 20, 10, model.DimensionCentimeters), weight(1, model.WeightKilograms), "Beleza")
	if got.TotalFeeCents != 0 || got.ReferralFeeCents != 0 || got.FulfillmentFeeCents != 0 {
		t.Errorf("zero price must yield zero fees, got %+v", got)
	}

	missing := Calculate(0, nil, nil, "Beleza")
	if !missing.IsEstimate {
		t.Error("zero price with missing data should still flag IsEstimate")
	}
}
