package estimator

import (
	"testing"

	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/census"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/model"
)

func TestEstimate_Bands(t *testing.T) {
	est := New(census.Default())
	row := census.Default().Lookup(census.CategoryElectronics)

	tests := []struct {
		name           string
		rank           int
		wantPercentile string
	}{
		{"rank 1", 1, model.PercentileTop1},
		{"inside top1", 500, model.PercentileTop1},
		{"top1 boundary", row.Top1, model.PercentileTop1},
		{"just past top1", row.Top1 + 1, model.PercentileTop3},
		{"top3 boundary", row.Top3, model.PercentileTop3},
		{"just past top3", row.Top3 + 1, model.PercentileTop10},
		{"top10 boundary", row.Top10, model.PercentileTop10},
		{"beyond top10", row.Top10 + 1, model.PercentileNone},
		{"deep tail", 90000000, model.PercentileNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := est.Estimate(tt.rank, "Eletrônicos", census.BaselineMarketplaceID)
			if got.Percentile != tt.wantPercentile {
				t.Errorf("Estimate(rank=%d).Percentile = %q, want %q", tt.rank, got.Percentile, tt.wantPercentile)
			}
			if got.EstimatedUnits < 0 {
				t.Errorf("Estimate(rank=%d) negative units: %d", tt.rank, got.EstimatedUnits)
			}
			if got.CategoryTotal != row.Top10 {
				t.Errorf("CategoryTotal = %d, want %d", got.CategoryTotal, row.Top10)
			}
		})
	}
}

func TestEstimate_Rank500Electronics(t *testing.T) {
	est := New(census.Default())

	got := est.Estimate(500, "Electrónica", census.BaselineMarketplaceID)

	// floor(300 + (log10(199266)-log10(500))/log10(199266) * (2500-300))
	if got.Percentile != model.PercentileTop1 {
		t.Errorf("Percentile = %q, want %q", got.Percentile, model.PercentileTop1)
	}
	if got.EstimatedUnits != 1379 {
		t.Errorf("EstimatedUnits = %d, want 1379", got.EstimatedUnits)
	}
}

func TestEstimate_MonotonicDecayWithinBands(t *testing.T) {
	est := New(census.Default())
	row := census.Default().Lookup(census.CategoryBeauty)

	bands := []struct {
		name string
		lo   int
		hi   int
	}{
		{"top1 band", 1, row.Top1},
		{"top3 band", row.Top1 + 1, row.Top3},
		{"top10 band", row.Top3 + 1, row.Top10},
	}

	for _, band := range bands {
		t.Run(band.name, func(t *testing.T) {
			prev := -1
			step := (band.hi - band.lo) / 50
			if step < 1 {
				step = 1
			}
			for rank := band.hi; rank >= band.lo; rank -= step {
				units := est.Estimate(rank, "Beleza", census.BaselineMarketplaceID).EstimatedUnits
				if units < prev {
					t.Fatalf("units decreased towards better rank: rank=%d units=%d prev=%d", rank, units, prev)
				}
				prev = units
			}
		})
	}
}

func TestEstimate_MajorApplianceCeiling(t *testing.T) {
	est := New(census.Default())

	appliance := est.Estimate(1, "Eletrodomésticos", census.BaselineMarketplaceID)
	if appliance.EstimatedUnits > top1MaxMajorAppliances {
		t.Errorf("appliance units = %d, exceeds category ceiling %d", appliance.EstimatedUnits, top1MaxMajorAppliances)
	}

	other := est.Estimate(1, "Beleza", census.BaselineMarketplaceID)
	if other.EstimatedUnits <= top1MaxMajorAppliances {
		t.Errorf("non-appliance top rank should exceed appliance ceiling, got %d", other.EstimatedUnits)
	}
}

func TestEstimate_MarketplaceScaling(t *testing.T) {
	est := New(census.Default())

	baseline := est.Estimate(100, "Beleza", census.BaselineMarketplaceID)
	brazil := est.Estimate(100, "Beleza", "A2Q3Y263D00KWC")
	unknown := est.Estimate(100, "Beleza", "XXXXXXXXXXXXX")

	if brazil.EstimatedUnits >= baseline.EstimatedUnits {
		t.Errorf("scaled marketplace should estimate fewer units: brazil=%d baseline=%d",
			brazil.EstimatedUnits, baseline.EstimatedUnits)
	}
	if unknown.EstimatedUnits > brazil.EstimatedUnits {
		t.Errorf("unknown marketplace should use the conservative default: unknown=%d brazil=%d",
			unknown.EstimatedUnits, brazil.EstimatedUnits)
	}
}

func TestEstimate_DegenerateInputs(t *testing.T) {
	est := New(census.Default())

	tests := []struct {
		name string
		rank int
	}{
		{"zero rank clamps to 1", 0},
		{"negative rank clamps to 1", -42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := est.Estimate(tt.rank, "Beleza", census.BaselineMarketplaceID)
			want := est.Estimate(1, "Beleza", census.BaselineMarketplaceID)
			if got != want {
				t.Errorf("Estimate(%d) = %+v, want same as rank 1 %+v", tt.rank, got, want)
			}
		})
	}

	// 未知类目和未知站点都不能让估算失败
	got := est.Estimate(123, "", "")
	if got.EstimatedUnits < 0 || got.CategoryTotal <= 0 {
		t.Errorf("degenerate category/marketplace produced invalid estimate: %+v", got)
	}
}
