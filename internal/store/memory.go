package store

import (
	"context"
	"sync"
	"time"

	"bermudabuy/shipworker/internal/product"
)

// record is a stored product plus its save timestamp
type record struct {
	prod    *product.Product
	savedAt time.Time
}

// MemoryStore is the reference Store implementation: RWMutex-guarded maps.
// It is the default when no Redis address is configured and the substitute
// used throughout the tests.
type MemoryStore struct {
	opts Options

	mu         sync.RWMutex
	products   map[string]*record
	categories map[string]*CategoryPattern
	retailers  map[string]*RetailerPattern

	// now is swappable for freshness-window tests
	now func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an in-memory estimation store
func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{
		opts:       opts,
		products:   make(map[string]*record),
		categories: make(map[string]*CategoryPattern),
		retailers:  make(map[string]*RetailerPattern),
		now:        time.Now,
	}
}

// GetKnownProduct returns a fresh, confident record for the URL, nil otherwise
func (s *MemoryStore) GetKnownProduct(ctx context.Context, url string) (*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.products[url]
	if !ok {
		return nil, nil
	}
	if s.opts.MaxAge > 0 && s.now().Sub(rec.savedAt) > s.opts.MaxAge {
		return nil, nil
	}
	if rec.prod.Confidence < s.opts.MinConfidence {
		return nil, nil
	}
	return rec.prod.Clone(), nil
}

// SaveProduct upserts by URL. The passed product is mutated with the merged
// TimesSeen/Confidence/LastUpdated so callers see the stored values.
func (s *MemoryStore) SaveProduct(ctx context.Context, p *product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var existing *product.Product
	if rec, ok := s.products[p.URL]; ok {
		existing = rec.prod
	}
	mergeOnSave(existing, p, now)

	s.products[p.URL] = &record{prod: p.Clone(), savedAt: now}

	pat := s.categories[p.Category]
	if pat == nil {
		pat = &CategoryPattern{}
		s.categories[p.Category] = pat
	}
	updateCategoryPattern(pat, p)

	return nil
}

// GetSmartEstimation answers the two-tier estimation query: recent confident
// products for the exact category+retailer combo first, the category-wide
// trimmed-mean pattern second, nothing when both are too thin.
func (s *MemoryStore) GetSmartEstimation(ctx context.Context, category, retailer string) (*Estimation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	var weights, lengths, widths, heights []float64
	for _, rec := range s.products {
		p := rec.prod
		if p.Category != category || p.Retailer != retailer {
			continue
		}
		if s.opts.MaxAge > 0 && now.Sub(rec.savedAt) > s.opts.MaxAge {
			continue
		}
		if p.Confidence < s.opts.ConfidenceFloor {
			continue
		}
		if p.Weight != nil && *p.Weight > 0 {
			weights = append(weights, *p.Weight)
		}
		if p.Dimensions != nil && p.Dimensions.Valid() {
			lengths = append(lengths, p.Dimensions.Length)
			widths = append(widths, p.Dimensions.Width)
			heights = append(heights, p.Dimensions.Height)
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

	return categoryEstimation(s.categories[category], s.opts.MinCategorySamples), nil
}

// RecordScrapingResult folds one attempt into the retailer aggregate
func (s *MemoryStore) RecordScrapingResult(ctx context.Context, url, retailer string, p *product.Product, method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rp := s.retailers[retailer]
	if rp == nil {
		rp = &RetailerPattern{}
		s.retailers[retailer] = rp
	}
	updateRetailerPattern(rp, p, method)
	return nil
}

// RetailerStats returns a snapshot of one retailer's pattern for reporting
func (s *MemoryStore) RetailerStats(retailer string) (RetailerPattern, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rp, ok := s.retailers[retailer]
	if !ok {
		return RetailerPattern{}, false
	}
	snapshot := RetailerPattern{
		Attempts:      rp.Attempts,
		Successes:     rp.Successes,
		Methods:       make(map[string]*MethodStats, len(rp.Methods)),
		MissingFields: make(map[string]int, len(rp.MissingFields)),
	}
	for k, v := range rp.Methods {
		stats := *v
		snapshot.Methods[k] = &stats
	}
	for k, v := range rp.MissingFields {
		snapshot.MissingFields[k] = v
	}
	return snapshot, true
}
