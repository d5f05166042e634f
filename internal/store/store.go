package store

import (
	"context"
	"time"

	"bermudabuy/shipworker/internal/product"
)

// Estimation is a physical-attribute guess for a category/retailer combo
type Estimation struct {
	Weight     float64            `json:"weight"`
	Dimensions product.Dimensions `json:"dimensions"`
	Confidence float64            `json:"confidence"`
	Source     string             `json:"source"`
	Samples    int                `json:"samples"`
}

// Estimation sources
const (
	SourceRetailerRecent  = "retailer_recent"
	SourceCategoryPattern = "category_pattern"
)

// Store persists observed products and scrape outcomes and answers
// estimation queries from the accumulated history. A nil result with a nil
// error means "nothing known" — callers treat that as a gap, not a fault.
type Store interface {
	// GetKnownProduct returns the stored product for a URL when it is fresh
	// enough and confident enough, nil otherwise
	GetKnownProduct(ctx context.Context, url string) (*product.Product, error)

	// SaveProduct upserts a product by URL, recomputing its confidence and
	// incrementing its observation counter
	SaveProduct(ctx context.Context, p *product.Product) error

	// GetSmartEstimation returns typical weight/dimensions for a
	// category+retailer combo, or nil when the history is too thin
	GetSmartEstimation(ctx context.Context, category, retailer string) (*Estimation, error)

	// RecordScrapingResult records the outcome of one scrape attempt for
	// per-retailer observability
	RecordScrapingResult(ctx context.Context, url, retailer string, p *product.Product, method string) error
}

// Options tunes lookup gating and estimation thresholds
type Options struct {
	// MaxAge is the freshness window for GetKnownProduct; zero disables it
	MaxAge time.Duration
	// MinConfidence gates GetKnownProduct results
	MinConfidence float64
	// ConfidenceFloor gates which stored products feed tier-one estimation
	ConfidenceFloor float64
	// MinRetailerSamples is the sample count tier-one estimation requires (exclusive)
	MinRetailerSamples int
	// MinCategorySamples is the sample count tier-two estimation requires (exclusive)
	MinCategorySamples int
}

// DefaultOptions returns the production defaults
func DefaultOptions() Options {
	return Options{
		MaxAge:             7 * 24 * time.Hour,
		MinConfidence:      0.5,
		ConfidenceFloor:    0.5,
		MinRetailerSamples: 3,
		MinCategorySamples: 5,
	}
}

// NoopStore is the degraded substitute used when no backing store is
// configured: every method is a no-op and every query answers "nothing known"
type NoopStore struct{}

var _ Store = (*NoopStore)(nil)

func (NoopStore) GetKnownProduct(ctx context.Context, url string) (*product.Product, error) {
	return nil, nil
}

func (NoopStore) SaveProduct(ctx context.Context, p *product.Product) error {
	return nil
}

func (NoopStore) GetSmartEstimation(ctx context.Context, category, retailer string) (*Estimation, error) {
	return nil, nil
}

func (NoopStore) RecordScrapingResult(ctx context.Context, url, retailer string, p *product.Product, method string) error {
	return nil
}
