package provider

import (
	"context"
	"errors"
	"time"

	"github.com/PuerkitoBio/goquery"

	"bermudabuy/shipworker/helpers"
	pkgerrors "bermudabuy/shipworker/pkg/errors"
	"bermudabuy/shipworker/services/cache"
)

// SelectorProvider fetches the page directly and extracts product data with
// CSS selectors. It needs no external service, so it is always available and
// acts as the workhorse of the cascade.
type SelectorProvider struct {
	baseProvider
}

var _ Extractor = (*SelectorProvider)(nil)

// NewSelectorProvider creates a direct-fetch provider
func NewSelectorProvider(timeout time.Duration, cacheSvc cache.CacheService) *SelectorProvider {
	return &SelectorProvider{
		baseProvider: baseProvider{
			name:      "selector",
			cacheSvc:  cacheSvc,
			blockTime: defaultBlockTime,
			timeout:   timeout,
		},
	}
}

// Name returns the provider name
func (p *SelectorProvider) Name() string {
	return p.name
}

// Available always reports true
func (p *SelectorProvider) Available() bool {
	return true
}

// Scrape fetches the URL and extracts product data from its HTML
func (p *SelectorProvider) Scrape(ctx context.Context, rawurl string) (*RawProduct, error) {
	if p.blocked(rawurl) {
		return nil, pkgerrors.NewProviderUnavailable(p.name)
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	body, err := helpers.FetchWithRandomHeaders(ctx, rawurl)
	if err != nil {
		if errors.Is(err, helpers.ErrRateLimited) {
			p.block(rawurl)
			return nil, pkgerrors.NewProviderUnavailable(p.name)
		}
		return nil, requestError(p.name, err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, pkgerrors.NewProviderFailure(p.name, "HTML parse failed", err)
	}

	raw := ParseProductPage(doc)
	if raw == nil {
		return nil, pkgerrors.NewProviderFailure(p.name, "no product data found", nil)
	}
	return raw, nil
}
