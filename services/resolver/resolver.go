package resolver

import (
	"context"
	"encoding/json"
	"time"

	"bermudabuy/shipworker/internal/product"
	"bermudabuy/shipworker/internal/provider"
	"bermudabuy/shipworker/internal/store"
	"bermudabuy/shipworker/logger"
	"bermudabuy/shipworker/services/publisher"
)

// Options tunes the resolution pipeline
type Options struct {
	// CacheConfidence is the confidence a stored product needs (exclusive)
	// to short-circuit the provider cascade
	CacheConfidence float64
	// GroupSize is how many URLs of a batch resolve concurrently
	GroupSize int
	// GroupPause is the delay between batch groups
	GroupPause time.Duration
	// MaxBatch is the largest accepted batch
	MaxBatch int
}

// DefaultOptions returns the production defaults
func DefaultOptions() Options {
	return Options{
		CacheConfidence: 0.8,
		GroupSize:       3,
		GroupPause:      2 * time.Second,
		MaxBatch:        20,
	}
}

// Resolver turns product URLs into shipping-cost estimates. It runs the
// provider cascade, fills gaps from the estimation store, and always answers
// with a product, synthesizing a fallback when every provider fails.
type Resolver struct {
	providers []provider.Extractor
	store     store.Store
	pub       publisher.Publisher
	opts      Options
	log       *logger.Logger
}

// New creates a resolver. pub may be nil when no stream is configured.
func New(providers []provider.Extractor, st store.Store, pub publisher.Publisher, opts Options) *Resolver {
	if st == nil {
		st = store.NoopStore{}
	}
	return &Resolver{
		providers: providers,
		store:     st,
		pub:       pub,
		opts:      opts,
		log:       logger.ForResolver(),
	}
}

// ResolveProduct resolves a single URL. It never returns an error: a stored
// record, a scraped product, or a synthesized fallback, in that order.
func (r *Resolver) ResolveProduct(ctx context.Context, url string) *product.Product {
	retailer := product.DetectRetailer(url)

	cached, err := r.store.GetKnownProduct(ctx, url)
	if err != nil {
		r.log.Warn().Err(err).Str("url", url).Msg("Known-product lookup failed, scraping instead")
	}
	if cached != nil && cached.Confidence > r.opts.CacheConfidence {
		cached.ScrapingMethod = product.MethodCache
		r.log.Debug().Str("url", url).Float64("confidence", cached.Confidence).Msg("Answering from store")
		return cached
	}

	raw, method := r.runCascade(ctx, url)

	p := r.buildProduct(ctx, url, retailer, raw, method)
	r.persist(ctx, p, retailer)
	return p
}

// runCascade tries each provider in priority order, first success wins
func (r *Resolver) runCascade(ctx context.Context, url string) (*provider.RawProduct, string) {
	for _, p := range r.providers {
		if !p.Available() {
			r.log.Debug().Str("provider", p.Name()).Msg("Provider unavailable, skipping")
			continue
		}

		raw, err := p.Scrape(ctx, url)
		if err != nil {
			r.log.Warn().Err(err).Str("provider", p.Name()).Str("url", url).Msg("Provider failed, trying next")
			continue
		}
		if raw != nil {
			return raw, p.Name()
		}
	}
	return nil, product.MethodFallback
}

// buildProduct assembles the response from whatever the cascade yielded,
// filling gaps from the estimation store
func (r *Resolver) buildProduct(ctx context.Context, url, retailer string, raw *provider.RawProduct, method string) *product.Product {
	p := &product.Product{
		URL:            url,
		Retailer:       retailer,
		InStock:        true,
		ScrapingMethod: method,
	}

	if raw == nil {
		p.Name = "Product from " + retailer
		p.Image = product.PlaceholderImage
		p.Category = product.GeneralMerchandise
		p.ScrapingMethod = product.MethodFallback
	} else {
		p.Name = raw.Name
		p.Price = raw.Price
		p.Weight = raw.Weight
		p.Dimensions = raw.Dimensions
		p.Image = raw.Image
		if p.Image == "" {
			p.Image = product.PlaceholderImage
		}
		if raw.InStock != nil {
			p.InStock = *raw.InStock
		}
		p.Category = resolveCategory(raw.Category, raw.Name, url)
	}

	r.fillGaps(ctx, p, retailer)

	p.ShippingCost = product.EstimateShipping(p.Category, p.Weight, p.Price, p.Dimensions)
	p.NeedsPriceConfirmation = p.Price == nil || p.ScrapingMethod == product.MethodFallback
	p.Confidence = store.ScoreConfidence(p)
	return p
}

// resolveCategory trusts a provider-supplied category only when it belongs to
// the closed set, otherwise classifies from the name and URL
func resolveCategory(supplied, name, url string) string {
	for _, c := range product.Categories() {
		if supplied == c {
			return supplied
		}
	}
	return product.Classify(name, url)
}

// fillGaps completes missing physical attributes from the estimation store
func (r *Resolver) fillGaps(ctx context.Context, p *product.Product, retailer string) {
	if p.Weight != nil && p.Dimensions != nil {
		return
	}

	est, err := r.store.GetSmartEstimation(ctx, p.Category, retailer)
	if err != nil {
		r.log.Warn().Err(err).Str("url", p.URL).Msg("Estimation lookup failed")
		return
	}
	if est == nil {
		return
	}

	if p.Weight == nil && est.Weight > 0 {
		w := est.Weight
		p.Weight = &w
	}
	if p.Dimensions == nil && est.Dimensions.Valid() {
		d := est.Dimensions
		p.Dimensions = &d
	}
	r.log.Debug().Str("url", p.URL).Str("source", est.Source).Int("samples", est.Samples).Msg("Filled gaps from estimation")
}

// persist saves, records, and publishes the result. Failures here never
// reach the caller, the resolved product is already in hand.
func (r *Resolver) persist(ctx context.Context, p *product.Product, retailer string) {
	method := p.ScrapingMethod

	if err := r.store.SaveProduct(ctx, p); err != nil {
		r.log.Warn().Err(err).Str("url", p.URL).Msg("Product save failed")
	}
	if err := r.store.RecordScrapingResult(ctx, p.URL, retailer, p, method); err != nil {
		r.log.Warn().Err(err).Str("url", p.URL).Msg("Scrape outcome record failed")
	}

	if r.pub == nil {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		r.log.Warn().Err(err).Str("url", p.URL).Msg("Product encode failed")
		return
	}
	if err := r.pub.Publish(data); err != nil {
		r.log.Warn().Err(err).Str("url", p.URL).Msg("Product publish failed")
	}
}
