package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/sergiorpaes/amazon-sem-segredos-sub000/internal/model"
)

// ProductCache 产品缓存存储层
//
// 缓存按 (asin, marketplace_id) 唯一，cached_at 决定记录是否仍然新鲜。
type ProductCache struct {
	db       *mongo.Database
	logger   *zap.Logger
	freshFor time.Duration
}

// NewProductCache 创建产品缓存存储层
func NewProductCache(db *mongo.Database, logger *zap.Logger, freshFor time.Duration) *ProductCache {
	if freshFor <= 0 {
		freshFor = 6 * time.Hour // 默认新鲜度窗口
	}
	return &ProductCache{
		db:       db,
		logger:   logger,
		freshFor: freshFor,
	}
}

func (r *ProductCache) collection() *mongo.Collection {
	return r.db.Collection(model.CollectionProductCache)
}

// Get 按 ASIN 和站点查询新鲜的缓存记录
// 缓存未命中或已过期时返回 (nil, nil)
func (r *ProductCache) Get(ctx context.Context, asin, marketplaceID string) (*model.CachedProductRecord, error) {
	if asin == "" {
		return nil, fmt.Errorf("asin cannot be empty")
	}

	filter := bson.M{
		"asin":           asin,
		"marketplace_id": marketplaceID,
		"cached_at":      bson.M{"$gte": time.Now().Add(-r.freshFor)},
	}

	var record model.CachedProductRecord
	err := r.collection().FindOne(ctx, filter).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		if r.logger != nil {
			r.logger.Error("failed to query product cache",
				zap.String("asin", asin),
				zap.String("marketplace_id", marketplaceID),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("failed to query product cache: %w", err)
	}

	if r.logger != nil {
		r.logger.Debug("product cache hit",
			zap.String("asin", asin),
			zap.String("marketplace_id", marketplaceID),
			zap.Time("cached_at", record.CachedAt),
		)
	}

	return &record, nil
}

// Upsert 写入缓存记录（upsert）
func (r *ProductCache) Upsert(ctx context.Context, record *model.CachedProductRecord) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if record.ASIN == "" {
		return fmt.Errorf("record asin cannot be empty")
	}

	now := time.Now()
	if record.CachedAt.IsZero() {
		record.CachedAt = now
	}

	// 使用 asin 和 marketplace_id 作为唯一标识进行 upsert
	filter := bson.M{
		"asin":           record.ASIN,
		"marketplace_id": record.MarketplaceID,
	}

	update := bson.M{
		"$set": bson.M{
			"title":                   record.Title,
			"category":                record.Category,
			"price_cents":             record.PriceCents,
			"currency":                record.Currency,
			"estimated_units":         record.EstimatedUnits,
			"sales_band":              record.SalesBand,
			"category_total":          record.CategoryTotal,
			"referral_fee_cents":      record.ReferralFeeCents,
			"fulfillment_fee_cents":   record.FulfillmentFeeCents,
			"total_fee_cents":         record.TotalFeeCents,
			"fee_is_estimate":         record.FeeIsEstimate,
			"estimated_revenue_cents": record.EstimatedRevenueCents,
			"net_profit_cents":        record.NetProfitCents,
			"cached_at":               record.CachedAt,
		},
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}

	opts := options.Update().SetUpsert(true)
	result, err := r.collection().UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if r.logger != nil {
			r.logger.Error("failed to upsert product cache",
				zap.String("asin", record.ASIN),
				zap.String("marketplace_id", record.MarketplaceID),
				zap.Error(err),
			)
		}
		return fmt.Errorf("failed to upsert product cache: %w", err)
	}

	if r.logger != nil {
		r.logger.Debug("upserted product cache",
			zap.String("asin", record.ASIN),
			zap.Int64("upserted_count", result.UpsertedCount),
			zap.Int64("modified_count", result.ModifiedCount),
		)
	}

	return nil
}

// ListStale 列出已超出新鲜度窗口的缓存记录，用于后台刷新
// 按 cached_at 升序返回，先刷新最旧的记录
func (r *ProductCache) ListStale(ctx context.Context, limit int) ([]*model.CachedProductRecord, error) {
	if limit <= 0 {
		limit = 100 // 默认限制
	}

	filter := bson.M{
		"cached_at": bson.M{"$lt": time.Now().Add(-r.freshFor)},
	}

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.M{"cached_at": 1})

	cursor, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		if r.logger != nil {
			r.logger.Error("failed to query stale cache records",
				zap.Int("limit", limit),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("failed to query stale cache records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*model.CachedProductRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode stale cache records: %w", err)
	}

	if r.logger != nil {
		r.logger.Debug("found stale cache records",
			zap.Int("count", len(records)),
		)
	}

	return records, nil
}

// DeleteOlderThan 删除超过保留上限的缓存记录，返回删除数量
func (r *ProductCache) DeleteOlderThan(ctx context.Context, maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		return 0, fmt.Errorf("maxAge must be positive")
	}

	filter := bson.M{
		"cached_at": bson.M{"$lt": time.Now().Add(-maxAge)},
	}

	result, err := r.collection().DeleteMany(ctx, filter)
	if err != nil {
		if r.logger != nil {
			r.logger.Error("failed to delete expired cache records",
				zap.Duration("max_age", maxAge),
				zap.Error(err),
			)
		}
		return 0, fmt.Errorf("failed to delete expired cache records: %w", err)
	}

	if r.logger != nil {
		r.logger.Info("deleted expired cache records",
			zap.Int64("deleted_count", result.DeletedCount),
			zap.Duration("max_age", maxAge),
		)
	}

	return result.DeletedCount, nil
}

// Count 统计缓存记录总数
func (r *ProductCache) Count(ctx context.Context) (int64, error) {
	count, err := r.collection().CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count cache records: %w", err)
	}
	return count, nil
}

// EnsureIndexes 创建必要的索引
func (r *ProductCache) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "asin", Value: 1}, {Key: "marketplace_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "cached_at", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "category", Value: 1}},
		},
	}

	_, err := r.collection().Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create product cache indexes: %w", err)
	}

	if r.logger != nil {
		r.logger.Info("ensured product cache indexes")
	}

	return nil
}
