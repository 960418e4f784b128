package offers

import (
	"reflect"
	"testing"

	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/model"
)

func money(v float64) *model.Money {
	return &model.Money{Amount: v, CurrencyCode: "BRL"}
}

func TestResolvePrice_BuyBoxNewIsPrimary(t *testing.T) {
	payload := &model.PricingPayload{
		ASIN: "B000TEST01",
		Summary: &model.OfferSummary{
			TotalOfferCount: 7,
			BuyBoxPrices: []model.ConditionedPrice{
				{Condition: "New", LandedPrice: money(10.00)},
			},
		},
	}

	got := ResolvePrice(payload)
	if got == nil {
		t.Fatal("ResolvePrice() = nil, want result")
	}
	if got.Price != 10.00 {
		t.Errorf("Price = %v, want 10.00", got.Price)
	}
	if got.FallbackUsed {
		t.Error("FallbackUsed = true, want false for buy-box new")
	}
	if got.ActiveOfferCount != 7 {
		t.Errorf("ActiveOfferCount = %d, want 7", got.ActiveOfferCount)
	}
	if got.Currency != "BRL" {
		t.Errorf("Currency = %q, want BRL", got.Currency)
	}
}

func TestResolvePrice_LowestNewFallback(t *testing.T) {
	payload := &model.PricingPayload{
		Summary: &model.OfferSummary{
			LowestPrices: []model.ConditionedPrice{
				{Condition: "new", ListingPrice: money(8.50)},
			},
		},
	}

	got := ResolvePrice(payload)
	if got == nil {
		t.Fatal("ResolvePrice() = nil, want result")
	}
	if got.Price != 8.50 {
		t.Errorf("Price = %v, want 8.50", got.Price)
	}
	if !got.FallbackUsed {
		t.Error("FallbackUsed = false, want true for non-primary tier")
	}
}

func TestResolvePrice_TierOrder(t *testing.T) {
	tests := []struct {
		name         string
		payload      *model.PricingPayload
		wantPrice    float64
		wantFallback bool
	}{
		{
			name: "buybox beats competitive",
			payload: &model.PricingPayload{
				Summary: &model.OfferSummary{
					BuyBoxPrices:      []model.ConditionedPrice{{Condition: "new", LandedPrice: money(11)}},
					CompetitivePrices: []model.CompetitivePrice{{CompetitivePriceID: "1", LandedPrice: money(22)}},
				},
			},
			wantPrice:    11,
			wantFallback: false,
		},
		{
			name: "competitive beats lowest",
			payload: &model.PricingPayload{
				Summary: &model.OfferSummary{
					CompetitivePrices: []model.CompetitivePrice{{CompetitivePriceID: "1", LandedPrice: money(22)}},
					LowestPrices:      []model.ConditionedPrice{{Condition: "new", LandedPrice: money(33)}},
				},
			},
			wantPrice:    22,
			wantFallback: true,
		},
		{
			name: "competitive prefers primary id over first entry",
			payload: &model.PricingPayload{
				Summary: &model.OfferSummary{
					CompetitivePrices: []model.CompetitivePrice{
						{CompetitivePriceID: "2", LandedPrice: money(19)},
						{CompetitivePriceID: "1", LandedPrice: money(21)},
					},
				},
			},
			wantPrice:    21,
			wantFallback: true,
		},
		{
			name: "competitive without primary id takes first",
			payload: &model.PricingPayload{
				Summary: &model.OfferSummary{
					CompetitivePrices: []model.CompetitivePrice{
						{CompetitivePriceID: "2", LandedPrice: money(19)},
						{CompetitivePriceID: "3", LandedPrice: money(24)},
					},
				},
			},
			wantPrice:    19,
			wantFallback: true,
		},
		{
			name: "used buybox skipped in primary tier, caught by last-ditch",
			payload: &model.PricingPayload{
				Summary: &model.OfferSummary{
					BuyBoxPrices: []model.ConditionedPrice{{Condition: "used", LandedPrice: money(6)}},
				},
			},
			wantPrice:    6,
			wantFallback: true,
		},
		{
			name: "flat offers prefer buybox winner",
			payload: &model.PricingPayload{
				Offers: []model.Offer{
					{Condition: "new", ListingPrice: money(14)},
					{Condition: "used", IsBuyBoxWinner: true, ListingPrice: money(13)},
				},
			},
			wantPrice:    13,
			wantFallback: true,
		},
		{
			name: "flat offers prefer new over first",
			payload: &model.PricingPayload{
				Offers: []model.Offer{
					{Condition: "used", ListingPrice: money(5)},
					{Condition: "New", ListingPrice: money(9)},
				},
			},
			wantPrice:    9,
			wantFallback: true,
		},
		{
			name: "flat offers any condition as last resort",
			payload: &model.PricingPayload{
				Offers: []model.Offer{
					{Condition: "refurbished", ListingPrice: money(4)},
				},
			},
			wantPrice:    4,
			wantFallback: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePrice(tt.payload)
			if got == nil {
				t.Fatal("ResolvePrice() = nil, want result")
			}
			if got.Price != tt.wantPrice {
				t.Errorf("Price = %v, want %v", got.Price, tt.wantPrice)
			}
			if got.FallbackUsed != tt.wantFallback {
				t.Errorf("FallbackUsed = %v, want %v", got.FallbackUsed, tt.wantFallback)
			}
		})
	}
}

func TestResolvePrice_AmountSubPriority(t *testing.T) {
	tests := []struct {
		name  string
		entry model.ConditionedPrice
		want  float64
	}{
		{"landed wins over listing and price", model.ConditionedPrice{Condition: "new", LandedPrice: money(12), ListingPrice: money(10), Price: money(9)}, 12},
		{"listing wins over price", model.ConditionedPrice{Condition: "new", ListingPrice: money(10), Price: money(9)}, 10},
		{"bare price as last field", model.ConditionedPrice{Condition: "new", Price: money(9)}, 9},
		{"zero landed skipped", model.ConditionedPrice{Condition: "new", LandedPrice: money(0), ListingPrice: money(10)}, 10},
		{"negative landed skipped", model.ConditionedPrice{Condition: "new", LandedPrice: money(-3), Price: money(9)}, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := &model.PricingPayload{
				Summary: &model.OfferSummary{BuyBoxPrices: []model.ConditionedPrice{tt.entry}},
			}
			got := ResolvePrice(payload)
			if got == nil {
				t.Fatal("ResolvePrice() = nil, want result")
			}
			if got.Price != tt.want {
				t.Errorf("Price = %v, want %v", got.Price, tt.want)
			}
		})
	}
}

func TestResolvePrice_NothingResolvable(t *testing.T) {
	tests := []struct {
		name    string
		payload *model.PricingPayload
	}{
		{"nil payload", nil},
		{"empty payload", &model.PricingPayload{}},
		{"empty summary", &model.PricingPayload{Summary: &model.OfferSummary{}}},
		{"only zero amounts", &model.PricingPayload{
			Summary: &model.OfferSummary{
				BuyBoxPrices: []model.ConditionedPrice{{Condition: "new", LandedPrice: money(0)}},
			},
			Offers: []model.Offer{{Condition: "new", ListingPrice: money(0)}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolvePrice(tt.payload); got != nil {
				t.Errorf("ResolvePrice() = %+v, want nil (price unknown)", got)
			}
		})
	}
}

func TestResolvePrice_Idempotent(t *testing.T) {
	payload := &model.PricingPayload{
		Summary: &model.OfferSummary{
			TotalOfferCount: 3,
			LowestPrices:    []model.ConditionedPrice{{Condition: "new", LandedPrice: money(8.50)}},
		},
	}

	first := ResolvePrice(payload)
	second := ResolvePrice(payload)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("ResolvePrice not idempotent: first=%+v second=%+v", first, second)
	}
}

func TestResolvePrice_OfferCountIndependentOfTier(t *testing.T) {
	payload := &model.PricingPayload{
		Summary: &model.OfferSummary{
			TotalOfferCount: 12,
		},
		Offers: []model.Offer{{Condition: "new", ListingPrice: money(7)}},
	}

	got := ResolvePrice(payload)
	if got == nil {
		t.Fatal("ResolvePrice() = nil, want result")
	}
	if got.ActiveOfferCount != 12 {
		t.Errorf("ActiveOfferCount = %d, want 12 from summary regardless of winning tier", got.ActiveOfferCount)
	}
}
