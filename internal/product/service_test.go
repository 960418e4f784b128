package product

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/enrich"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/ledger"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/model"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/spapi/catalog"
	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/spapi/pricing"
)

const marketplaceBR = "A2Q3Y263D00KWC"

type fakeCatalog struct {
	items    map[string]*model.CatalogItem
	searched []model.CatalogItem
	calls    int
}

func (f *fakeCatalog) GetItem(ctx context.Context, params catalog.RequestParams) (*model.CatalogItem, error) {
	f.calls++
	item, ok := f.items[params.ASIN]
	if !ok {
		return nil, fmt.Errorf("asin %s not found", params.ASIN)
	}
	copied := *item
	return &copied, nil
}

func (f *fakeCatalog) Search(ctx context.Context, params catalog.RequestParams) ([]model.CatalogItem, error) {
	f.calls++
	return f.searched, nil
}

type fakePricing struct {
	payloads map[string]*model.PricingPayload
	err      error
	calls    int
}

func (f *fakePricing) GetPricing(ctx context.Context, params pricing.RequestParams) (*model.PricingPayload, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if payload, ok := f.payloads[params.ASIN]; ok {
		return payload, nil
	}
	return &model.PricingPayload{ASIN: params.ASIN}, nil
}

type fakeCache struct {
	records map[string]*model.CachedProductRecord
	err     error
	calls   int
}

func (f *fakeCache) Get(ctx context.Context, asin, marketplaceID string) (*model.CachedProductRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records[asin+"/"+marketplaceID], nil
}

type fakeLedger struct {
	charges int
	err     error
}

func (f *fakeLedger) AuthorizeAndCharge(ctx context.Context, userID string, amount int, reason string) error {
	if f.err != nil {
		return f.err
	}
	f.charges++
	return nil
}

func money(amount float64) *model.Money {
	return &model.Money{Amount: amount, CurrencyCode: "BRL"}
}

func testItem(asin string) *model.CatalogItem {
	return &model.CatalogItem{
		ASIN:         asin,
		Title:        "Fone Bluetooth",
		DisplayGroup: "Electrónica",
		SalesRanks:   []model.SalesRankGroup{{DisplayGroup: "Electrónica", Ranks: []int{500}}},
		CurrentPrice: money(99.90),
	}
}

func newTestService(cat *fakeCatalog, pri *fakePricing, cache *fakeCache, led *fakeLedger) *Service {
	cfg := Config{
		Catalog:            cat,
		Pricing:            pri,
		Assembler:          enrich.New(nil, nil, zap.NewNop()),
		Logger:             zap.NewNop(),
		DefaultMarketplace: marketplaceBR,
		LookupCost:         1,
	}
	if cache != nil {
		cfg.Cache = cache
	}
	if led != nil {
		cfg.Ledger = led
	}
	return NewService(cfg)
}

func TestLookup_CacheHitIsFree(t *testing.T) {
	cat := &fakeCatalog{}
	pri := &fakePricing{}
	led := &fakeLedger{}
	cache := &fakeCache{records: map[string]*model.CachedProductRecord{
		"B08N5WRWNW/" + marketplaceBR: {
			ASIN:           "B08N5WRWNW",
			MarketplaceID:  marketplaceBR,
			PriceCents:     9990,
			EstimatedUnits: 850,
		},
	}}

	svc := newTestService(cat, pri, cache, led)

	enriched, hit, err := svc.Lookup(context.Background(), "user1", "B08N5WRWNW", marketplaceBR)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if !hit {
		t.Error("expected cache hit")
	}
	if enriched.PriceCents != 9990 || enriched.EstimatedUnits != 850 {
		t.Errorf("unexpected cached values: %+v", enriched)
	}

	// 命中缓存不计费也不访问上游
	if led.charges != 0 {
		t.Errorf("cache hit should not charge credits, charged %d times", led.charges)
	}
	if cat.calls != 0 || pri.calls != 0 {
		t.Error("cache hit should not reach upstream")
	}
}

func TestLookup_CacheMissChargesAndFetches(t *testing.T) {
	cat := &fakeCatalog{items: map[string]*model.CatalogItem{"B08N5WRWNW": testItem("B08N5WRWNW")}}
	pri := &fakePricing{payloads: map[string]*model.PricingPayload{
		"B08N5WRWNW": {
			ASIN: "B08N5WRWNW",
			Summary: &model.OfferSummary{
				TotalOfferCount: 3,
				BuyBoxPrices: []model.ConditionedPrice{
					{Condition: "New", LandedPrice: money(89.90)},
				},
			},
		},
	}}
	led := &fakeLedger{}
	cache := &fakeCache{}

	svc := newTestService(cat, pri, cache, led)

	enriched, hit, err := svc.Lookup(context.Background(), "user1", "B08N5WRWNW", marketplaceBR)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if hit {
		t.Error("expected cache miss")
	}
	if led.charges != 1 {
		t.Errorf("expected exactly one charge, got %d", led.charges)
	}

	// 报价解析结果优先于目录价格
	if enriched.PriceCents != 8990 {
		t.Errorf("PriceCents = %d, want 8990 (resolved offer price)", enriched.PriceCents)
	}
}

func TestLookup_InsufficientCredits(t *testing.T) {
	cat := &fakeCatalog{items: map[string]*model.CatalogItem{"B08N5WRWNW": testItem("B08N5WRWNW")}}
	led := &fakeLedger{err: fmt.Errorf("user user1 has 0 credits, need 1: %w", ledger.ErrInsufficientCredits)}

	svc := newTestService(cat, &fakePricing{}, &fakeCache{}, led)

	_, _, err := svc.Lookup(context.Background(), "user1", "B08N5WRWNW", marketplaceBR)
	if !errors.Is(err, ledger.ErrInsufficientCredits) {
		t.Errorf("expected ErrInsufficientCredits, got %v", err)
	}
	if cat.calls != 0 {
		t.Error("charge must happen before upstream access")
	}
}

func TestLookup_PricingFailureFallsBackToCatalogPrice(t *testing.T) {
	cat := &fakeCatalog{items: map[string]*model.CatalogItem{"B08N5WRWNW": testItem("B08N5WRWNW")}}
	pri := &fakePricing{err: fmt.Errorf("upstream timeout")}

	svc := newTestService(cat, pri, nil, nil)

	enriched, _, err := svc.Lookup(context.Background(), "", "B08N5WRWNW", "")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}

	// 定价接口故障时退回目录价格
	if enriched.PriceCents != 9990 {
		t.Errorf("PriceCents = %d, want 9990 (catalog price)", enriched.PriceCents)
	}
	if enriched.MarketplaceID != marketplaceBR {
		t.Errorf("empty marketplace should fall back to default, got %q", enriched.MarketplaceID)
	}
}

func TestLookup_CacheErrorDegradesToUpstream(t *testing.T) {
	cat := &fakeCatalog{items: map[string]*model.CatalogItem{"B08N5WRWNW": testItem("B08N5WRWNW")}}
	cache := &fakeCache{err: fmt.Errorf("mongo unavailable")}

	svc := newTestService(cat, &fakePricing{}, cache, nil)

	enriched, hit, err := svc.Lookup(context.Background(), "", "B08N5WRWNW", marketplaceBR)
	if err != nil {
		t.Fatalf("Lookup() should degrade on cache error, got %v", err)
	}
	if hit {
		t.Error("cache error must not count as hit")
	}
	if enriched == nil || cat.calls != 1 {
		t.Error("expected upstream fetch after cache failure")
	}
}

func TestBatch_PartialFailure(t *testing.T) {
	cat := &fakeCatalog{items: map[string]*model.CatalogItem{"B08N5WRWNW": testItem("B08N5WRWNW")}}

	svc := newTestService(cat, &fakePricing{}, nil, nil)

	result, err := svc.Batch(context.Background(), "", []string{"B08N5WRWNW", "B000MISSING"}, marketplaceBR)
	if err != nil {
		t.Fatalf("Batch() error = %v", err)
	}
	if len(result.Products) != 1 {
		t.Errorf("got %d products, want 1", len(result.Products))
	}
	if _, ok := result.Failed["B000MISSING"]; !ok {
		t.Error("missing asin should be recorded in Failed")
	}
}

func TestBatch_LedgerErrorAborts(t *testing.T) {
	cat := &fakeCatalog{items: map[string]*model.CatalogItem{"B08N5WRWNW": testItem("B08N5WRWNW")}}
	led := &fakeLedger{err: fmt.Errorf("charge: %w", ledger.ErrInsufficientCredits)}

	svc := newTestService(cat, &fakePricing{}, &fakeCache{}, led)

	_, err := svc.Batch(context.Background(), "user1", []string{"B08N5WRWNW", "B07PXGQC1Q"}, marketplaceBR)
	if !errors.Is(err, ledger.ErrInsufficientCredits) {
		t.Errorf("ledger error should abort the batch, got %v", err)
	}
}

func TestSearch_ChargesOnce(t *testing.T) {
	item := testItem("B08N5WRWNW")
	cat := &fakeCatalog{searched: []model.CatalogItem{*item, *testItem("B07PXGQC1Q")}}
	led := &fakeLedger{}

	svc := newTestService(cat, &fakePricing{}, nil, led)

	results, err := svc.Search(context.Background(), "user1", "fone bluetooth", marketplaceBR, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
	if led.charges != 1 {
		t.Errorf("search should charge exactly once, got %d", led.charges)
	}
}

func TestResolveOfferPrice_Unresolvable(t *testing.T) {
	pri := &fakePricing{payloads: map[string]*model.PricingPayload{
		"B08N5WRWNW": {ASIN: "B08N5WRWNW"},
	}}

	svc := newTestService(&fakeCatalog{}, pri, nil, nil)

	result, err := svc.ResolveOfferPrice(context.Background(), "", "B08N5WRWNW", marketplaceBR)
	if err != nil {
		t.Fatalf("ResolveOfferPrice() error = %v", err)
	}
	if result != nil {
		t.Errorf("empty payload should resolve to nil, got %+v", result)
	}
}
