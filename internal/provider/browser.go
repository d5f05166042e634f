package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	pkgerrors "bermudabuy/shipworker/pkg/errors"
	"bermudabuy/shipworker/services/cache"
)

// BrowserProvider renders pages through a headless Chrome service before
// extraction, which defeats client-side rendered storefronts
type BrowserProvider struct {
	baseProvider
	addr   string
	client *http.Client
}

var _ Extractor = (*BrowserProvider)(nil)

// NewBrowserProvider creates a headless-browser-backed provider
func NewBrowserProvider(addr string, timeout time.Duration, cacheSvc cache.CacheService) *BrowserProvider {
	return &BrowserProvider{
		baseProvider: baseProvider{
			name:      "browser",
			cacheSvc:  cacheSvc,
			blockTime: defaultBlockTime,
			timeout:   timeout,
		},
		addr:   addr,
		client: &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name
func (p *BrowserProvider) Name() string {
	return p.name
}

// Available reports whether a browser service address is configured
func (p *BrowserProvider) Available() bool {
	return p.addr != ""
}

// Scrape renders the URL and extracts product data from the resulting HTML
func (p *BrowserProvider) Scrape(ctx context.Context, rawurl string) (*RawProduct, error) {
	if p.blocked(rawurl) {
		return nil, pkgerrors.NewProviderUnavailable(p.name)
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	payload, err := json.Marshal(map[string]interface{}{
		"url": rawurl,
		"gotoOptions": map[string]interface{}{
			"waitUntil": "networkidle0",
		},
	})
	if err != nil {
		return nil, pkgerrors.NewProviderFailure(p.name, "request encode failed", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.addr+"/content", bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.NewProviderFailure(p.name, "request build failed", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, requestError(p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		p.block(rawurl)
		return nil, pkgerrors.NewProviderUnavailable(p.name)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, pkgerrors.NewProviderFailure(p.name, fmt.Sprintf("rendering failed with status %d", resp.StatusCode), nil)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, pkgerrors.NewProviderFailure(p.name, "HTML parse failed", err)
	}

	raw := ParseProductPage(doc)
	if raw == nil {
		return nil, pkgerrors.NewProviderFailure(p.name, "no product data in rendered page", nil)
	}
	return raw, nil
}
