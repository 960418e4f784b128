package census

import "testing"

func TestDefault_CutoffsAreOrdered(t *testing.T) {
	table := Default()

	categories := []Category{
		CategoryBeauty, CategoryElectronics, CategoryHomeKitchen,
		CategoryGrocery, CategoryToys, CategoryBaby, CategorySports,
		CategoryFashion, CategoryTools, CategoryComputing, CategoryPets,
		CategoryHealth, CategoryBooks, CategoryGarden, CategoryLighting,
		CategoryOffice, CategoryMajorAppliances, CategoryAutomotive,
		CategoryOther,
	}

	for _, cat := range categories {
		t.Run(string(cat), func(t *testing.T) {
			if !table.Has(cat) {
				t.Fatalf("category %s missing from census table", cat)
			}
			row := table.Lookup(cat)
			if row.Top1 <= 0 {
				t.Errorf("Top1 must be positive, got %d", row.Top1)
			}
			if !(row.Top1 < row.Top2 && row.Top2 < row.Top3 && row.Top3 < row.Top5 && row.Top5 < row.Top10) {
				t.Errorf("cutoffs not strictly increasing: %+v", row)
			}
		})
	}
}

func TestLookup_FallsBackToOther(t *testing.T) {
	table := Default()

	unknown := table.Lookup(Category("does-not-exist"))
	other := table.Lookup(CategoryOther)

	if unknown != other {
		t.Errorf("Lookup(unknown) = %+v, want fallback row %+v", unknown, other)
	}
}

func TestMarketplaceScale(t *testing.T) {
	table := Default()

	tests := []struct {
		name          string
		marketplaceID string
		want          float64
	}{
		{"baseline marketplace", BaselineMarketplaceID, 1.0},
		{"brazil marketplace", "A2Q3Y263D00KWC", 0.30},
		{"unknown marketplace", "ZZZZZZZZZZZZZ", DefaultMarketplaceScale},
		{"empty marketplace", "", DefaultMarketplaceScale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table.MarketplaceScale(tt.marketplaceID)
			if got != tt.want {
				t.Errorf("MarketplaceScale(%q) = %v, want %v", tt.marketplaceID, got, tt.want)
			}
		})
	}
}

func TestMarketplaceScale_InRange(t *testing.T) {
	table := Default()
	for id, scale := range table.scales {
		if scale <= 0 || scale > 1 {
			t.Errorf("scale for %s out of (0, 1]: %v", id, scale)
		}
	}
}
