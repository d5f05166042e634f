package resolver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bermudabuy/shipworker/internal/product"
	"bermudabuy/shipworker/internal/store"
	pkgerrors "bermudabuy/shipworker/pkg/errors"
)

// ResolveProducts resolves a batch of URLs in small concurrent groups with a
// pause between groups, so a batch never hammers the target hosts. Results
// are positional: results[i] always answers urls[i].
func (r *Resolver) ResolveProducts(ctx context.Context, urls []string) ([]*product.Product, error) {
	if len(urls) == 0 {
		return nil, pkgerrors.NewInvalidInput("url list must not be empty")
	}
	if len(urls) > r.opts.MaxBatch {
		return nil, pkgerrors.NewInvalidInput(fmt.Sprintf("batch size %d exceeds limit %d", len(urls), r.opts.MaxBatch))
	}

	groupSize := r.opts.GroupSize
	if groupSize < 1 {
		groupSize = 1
	}

	results := make([]*product.Product, len(urls))
	for start := 0; start < len(urls); start += groupSize {
		end := min(start+groupSize, len(urls))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = r.resolveSafely(ctx, urls[i])
			}(i)
		}
		wg.Wait()

		if end < len(urls) && r.opts.GroupPause > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(r.opts.GroupPause):
			}
		}
	}
	return results, nil
}

// resolveSafely isolates one URL's resolution: a panic is turned into the
// fallback product instead of taking the whole batch down
func (r *Resolver) resolveSafely(ctx context.Context, url string) (p *product.Product) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Interface("panic", rec).Str("url", url).Msg("Resolution panicked, answering fallback")
			p = fallbackProduct(url)
		}
	}()
	return r.ResolveProduct(ctx, url)
}

// fallbackProduct synthesizes a minimal answer without touching the store
func fallbackProduct(url string) *product.Product {
	retailer := product.DetectRetailer(url)
	p := &product.Product{
		URL:                    url,
		Name:                   "Product from " + retailer,
		Image:                  product.PlaceholderImage,
		Retailer:               retailer,
		Category:               product.GeneralMerchandise,
		InStock:                true,
		ScrapingMethod:         product.MethodFallback,
		NeedsPriceConfirmation: true,
	}
	p.ShippingCost = product.EstimateShipping(p.Category, nil, nil, nil)
	p.Confidence = store.ScoreConfidence(p)
	return p
}
