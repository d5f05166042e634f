package store

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"bermudabuy/shipworker/internal/product"
	"bermudabuy/shipworker/logger"
	pkgerrors "bermudabuy/shipworker/pkg/errors"
)

const (
	productKeyPrefix  = "shipworker:product:"
	categoryKeyPrefix = "shipworker:pattern:category:"
	retailerKeyPrefix = "shipworker:pattern:retailer:"
	recentKeyPrefix   = "shipworker:recent:"

	// recentListLimit bounds the per category+retailer sample lists
	recentListLimit = 50
)

// RedisStore is the production Store implementation. Aggregate updates are
// read-then-write without locking: estimation tolerates the occasional lost
// update under concurrency, per-URL product records rely on plain
// last-write-wins upsert.
type RedisStore struct {
	client *redis.Client
	opts   Options
	now    func() time.Time
	log    *logger.Logger
}

var _ Store = (*RedisStore)(nil)

// storedProduct wraps a product with its save timestamp
type storedProduct struct {
	Product *product.Product `json:"product"`
	SavedAt time.Time        `json:"saved_at"`
}

// recentSample is one physical-attribute observation for a category+retailer combo
type recentSample struct {
	Weight     float64             `json:"weight"`
	Dimensions *product.Dimensions `json:"dimensions,omitempty"`
	Confidence float64             `json:"confidence"`
}

// NewRedisStore creates a Redis-backed estimation store
func NewRedisStore(addr string, db int, opts Options) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	return &RedisStore{
		client: client,
		opts:   opts,
		now:    time.Now,
		log:    logger.ForStore(),
	}
}

// Ping checks connectivity to Redis
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return pkgerrors.NewStoreUnavailable("redis ping failed", err)
	}
	return nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func productKey(url string) string {
	sum := sha1.Sum([]byte(url))
	return productKeyPrefix + hex.EncodeToString(sum[:])
}

func recentKey(category, retailer string) string {
	return recentKeyPrefix + category + ":" + retailer
}

// GetKnownProduct returns a fresh, confident record for the URL, nil otherwise
func (s *RedisStore) GetKnownProduct(ctx context.Context, url string) (*product.Product, error) {
	data, err := s.client.Get(ctx, productKey(url)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.NewStoreUnavailable("product lookup failed", err)
	}

	var stored storedProduct
	if err := json.Unmarshal(data, &stored); err != nil || stored.Product == nil {
		// a corrupt record is a cache miss, not a fault
		return nil, nil
	}
	if s.opts.MaxAge > 0 && s.now().Sub(stored.SavedAt) > s.opts.MaxAge {
		return nil, nil
	}
	if stored.Product.Confidence < s.opts.MinConfidence {
		return nil, nil
	}
	return stored.Product, nil
}

// SaveProduct upserts by URL and feeds the category and recent-sample aggregates
func (s *RedisStore) SaveProduct(ctx context.Context, p *product.Product) error {
	now := s.now()
	key := productKey(p.URL)

	var existing *product.Product
	if data, err := s.client.Get(ctx, key).Bytes(); err == nil {
		var stored storedProduct
		if json.Unmarshal(data, &stored) == nil {
			existing = stored.Product
		}
	}
	mergeOnSave(existing, p, now)

	data, err := json.Marshal(storedProduct{Product: p, SavedAt: now})
	if err != nil {
		return pkgerrors.NewStoreUnavailable("product encode failed", err)
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return pkgerrors.NewStoreUnavailable("product save failed", err)
	}

	s.updateCategory(ctx, p)
	s.pushRecentSample(ctx, p)
	return nil
}

func (s *RedisStore) updateCategory(ctx context.Context, p *product.Product) {
	key := categoryKeyPrefix + p.Category
	pat := &CategoryPattern{}
	if data, err := s.client.Get(ctx, key).Bytes(); err == nil {
		json.Unmarshal(data, pat)
	}
	updateCategoryPattern(pat, p)
	data, err := json.Marshal(pat)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		s.log.Debug().Err(err).Str("category", p.Category).Msg("Category pattern update failed")
	}
}

func (s *RedisStore) pushRecentSample(ctx context.Context, p *product.Product) {
	if p.Weight == nil || *p.Weight <= 0 {
		return
	}
	sample := recentSample{
		Weight:     *p.Weight,
		Dimensions: p.Dimensions,
		Confidence: p.Confidence,
	}
	data, err := json.Marshal(sample)
	if err != nil {
		return
	}
	key := recentKey(p.Category, p.Retailer)
	pipe := s.client.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, recentListLimit-1)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("Recent sample push failed")
	}
}

// GetSmartEstimation answers the two-tier estimation query
func (s *RedisStore) GetSmartEstimation(ctx context.Context, category, retailer string) (*Estimation, error) {
	entries, err := s.client.LRange(ctx, recentKey(category, retailer), 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, pkgerrors.NewStoreUnavailable("recent samples lookup failed", err)
	}

	var weights, lengths, widths, heights []float64
	for _, entry := range entries {
		var sample recentSample
		if json.Unmarshal([]byte(entry), &sample) != nil {
			continue
		}
		if sample.Confidence < s.opts.ConfidenceFloor || sample.Weight <= 0 {
			continue
		}
		weights = append(weights, sample.Weight)
		if sample.Dimensions != nil && sample.Dimensions.Valid() {
			lengths = append(lengths, sample.Dimensions.Length)
			widths = append(widths, sample.Dimensions.Width)
			heights = append(heights, sample.Dimensions.Height)
		}
	}

	if len(weights) > s.opts.MinRetailerSamples {
		return &Estimation{
			Weight: trimmedMean(weights),
			Dimensions: product.Dimensions{
				Length: trimmedMean(lengths),
				Width:  trimmedMean(widths),
				Height: trimmedMean(heights),
			},
			Confidence: 0.75,
			Source:     SourceRetailerRecent,
			Samples:    len(weights),
		}, nil
	}

	pat := &CategoryPattern{}
	data, err := s.client.Get(ctx, categoryKeyPrefix+category).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.NewStoreUnavailable("category pattern lookup failed", err)
	}
	if json.Unmarshal(data, pat) != nil {
		return nil, nil
	}
	return categoryEstimation(pat, s.opts.MinCategorySamples), nil
}

// RecordScrapingResult folds one attempt into the retailer aggregate
func (s *RedisStore) RecordScrapingResult(ctx context.Context, url, retailer string, p *product.Product, method string) error {
	key := retailerKeyPrefix + retailer
	rp := &RetailerPattern{}
	if data, err := s.client.Get(ctx, key).Bytes(); err == nil {
		json.Unmarshal(data, rp)
	}
	updateRetailerPattern(rp, p, method)

	data, err := json.Marshal(rp)
	if err != nil {
		return pkgerrors.NewStoreUnavailable("retailer pattern encode failed", err)
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return pkgerrors.NewStoreUnavailable("retailer pattern save failed", err)
	}
	return nil
}
