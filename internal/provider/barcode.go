package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"bermudabuy/shipworker/helpers"
	"bermudabuy/shipworker/internal/product"
	pkgerrors "bermudabuy/shipworker/pkg/errors"
	"bermudabuy/shipworker/services/cache"
)

// barcodePattern matches a UPC-A or EAN-13 code embedded in a product URL
var barcodePattern = regexp.MustCompile(`\b(\d{12,13})\b`)

// BarcodeProvider looks products up by the UPC/EAN code embedded in the URL.
// Last in the cascade: it only helps for the minority of URLs that carry a
// barcode, but the data it returns is catalog-grade.
type BarcodeProvider struct {
	baseProvider
	endpoint string
	apiKey   string
	client   *http.Client
}

var _ Extractor = (*BarcodeProvider)(nil)

type barcodeItem struct {
	Title     string   `json:"title"`
	Weight    string   `json:"weight"`
	Dimension string   `json:"dimension"`
	Category  string   `json:"category"`
	Images    []string `json:"images"`
}

type barcodeResponse struct {
	Items []barcodeItem `json:"items"`
}

// NewBarcodeProvider creates a barcode-lookup provider
func NewBarcodeProvider(endpoint, apiKey string, timeout time.Duration, cacheSvc cache.CacheService) *BarcodeProvider {
	return &BarcodeProvider{
		baseProvider: baseProvider{
			name:      "barcode",
			cacheSvc:  cacheSvc,
			blockTime: defaultBlockTime,
			timeout:   timeout,
		},
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name
func (p *BarcodeProvider) Name() string {
	return p.name
}

// Available reports whether a lookup endpoint is configured
func (p *BarcodeProvider) Available() bool {
	return p.endpoint != ""
}

// ExtractBarcode returns the UPC/EAN code embedded in a URL, if any
func ExtractBarcode(rawurl string) string {
	return barcodePattern.FindString(rawurl)
}

// Scrape looks the URL's barcode up in the catalog service
func (p *BarcodeProvider) Scrape(ctx context.Context, rawurl string) (*RawProduct, error) {
	code := ExtractBarcode(rawurl)
	if code == "" {
		return nil, pkgerrors.NewProviderFailure(p.name, "no barcode in url", nil)
	}
	if p.blocked(rawurl) {
		return nil, pkgerrors.NewProviderUnavailable(p.name)
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	lookupURL := p.endpoint + "?upc=" + url.QueryEscape(code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, pkgerrors.NewProviderFailure(p.name, "request build failed", err)
	}
	if p.apiKey != "" {
		req.Header.Set("key", p.apiKey)
	}

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
		return nil, pkgerrors.NewProviderFailure(p.name, fmt.Sprintf("lookup failed with status %d", resp.StatusCode), nil)
	}

	var lookup barcodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&lookup); err != nil {
		return nil, pkgerrors.NewProviderFailure(p.name, "response decode failed", err)
	}
	if len(lookup.Items) == 0 || lookup.Items[0].Title == "" {
		return nil, pkgerrors.NewProviderFailure(p.name, "barcode not in catalog", nil)
	}

	item := lookup.Items[0]
	raw := &RawProduct{
		Name:     item.Title,
		Category: item.Category,
	}
	if len(item.Images) > 0 {
		raw.Image = item.Images[0]
	}
	if w, ok := helpers.ParseWeight(item.Weight); ok {
		raw.Weight = &w
	}
	if l, w, h, ok := helpers.ParseDimensions(item.Dimension); ok {
		raw.Dimensions = &product.Dimensions{Length: l, Width: w, Height: h}
	}
	return raw, nil
}
