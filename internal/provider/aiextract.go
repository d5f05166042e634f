package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bermudabuy/shipworker/internal/product"
	pkgerrors "bermudabuy/shipworker/pkg/errors"
	"bermudabuy/shipworker/services/cache"
)

// AIExtractProvider delegates extraction to a hosted model endpoint that
// answers structured product data for a URL
type AIExtractProvider struct {
	baseProvider
	endpoint string
	apiKey   string
	client   *http.Client
}

var _ Extractor = (*AIExtractProvider)(nil)

type aiExtractResponse struct {
	Name       string   `json:"name"`
	Price      *float64 `json:"price"`
	Image      string   `json:"image"`
	WeightLbs  *float64 `json:"weight_lbs"`
	Dimensions *struct {
		Length float64 `json:"length"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	} `json:"dimensions"`
	InStock  *bool  `json:"in_stock"`
	Category string `json:"category"`
}

// NewAIExtractProvider creates a model-endpoint-backed provider
func NewAIExtractProvider(endpoint, apiKey string, timeout time.Duration, cacheSvc cache.CacheService) *AIExtractProvider {
	return &AIExtractProvider{
		baseProvider: baseProvider{
			name:      "ai_extract",
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
func (p *AIExtractProvider) Name() string {
	return p.name
}

// Available reports whether the endpoint and API key are configured
func (p *AIExtractProvider) Available() bool {
	return p.endpoint != "" && p.apiKey != ""
}

// Scrape asks the extraction endpoint for structured product data
func (p *AIExtractProvider) Scrape(ctx context.Context, rawurl string) (*RawProduct, error) {
	if p.blocked(rawurl) {
		return nil, pkgerrors.NewProviderUnavailable(p.name)
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	payload, err := json.Marshal(map[string]string{"url": rawurl})
	if err != nil {
		return nil, pkgerrors.NewProviderFailure(p.name, "request encode failed", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.NewProviderFailure(p.name, "request build failed", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, requestError(p.name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		p.block(rawurl)
		return nil, pkgerrors.NewProviderUnavailable(p.name)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, pkgerrors.NewProviderUnavailable(p.name)
	case resp.StatusCode != http.StatusOK:
		return nil, pkgerrors.NewProviderFailure(p.name, fmt.Sprintf("extraction failed with status %d", resp.StatusCode), nil)
	}

	var extracted aiExtractResponse
	if err := json.NewDecoder(resp.Body).Decode(&extracted); err != nil {
		return nil, pkgerrors.NewProviderFailure(p.name, "response decode failed", err)
	}
	if extracted.Name == "" {
		return nil, pkgerrors.NewProviderFailure(p.name, "no product data in response", nil)
	}

	raw := &RawProduct{
		Name:     extracted.Name,
		Price:    extracted.Price,
		Image:    extracted.Image,
		Weight:   extracted.WeightLbs,
		Category: extracted.Category,
		InStock:  extracted.InStock,
	}
	if d := extracted.Dimensions; d != nil {
		raw.Dimensions = &product.Dimensions{Length: d.Length, Width: d.Width, Height: d.Height}
	}
	return raw, nil
}
