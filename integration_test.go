package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bermudabuy/shipworker/internal/product"
	"bermudabuy/shipworker/internal/provider"
	"bermudabuy/shipworker/internal/store"
	"bermudabuy/shipworker/server"
	"bermudabuy/shipworker/services/resolver"
)

const storefrontPage = `<html><head>
<title>Storefront</title>
<meta property="og:title" content="Walnut Standing Desk">
<meta property="og:image" content="https://example.com/desk.jpg">
<meta property="product:price:amount" content="499.00">
</head><body>
<ul>
<li>Item Weight: 88 pounds</li>
<li>Product Dimensions: 60 x 30 x 48 inches</li>
</ul>
<div id="availability">In Stock</div>
</body></html>`

func newPipeline(t *testing.T) (*httptest.Server, *httptest.Server) {
	t.Helper()

	storefront := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/product/") {
			w.Write([]byte(storefrontPage))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	opts := resolver.DefaultOptions()
	opts.GroupPause = 0
	r := resolver.New(
		[]provider.Extractor{provider.NewSelectorProvider(5*time.Second, nil)},
		store.NewMemoryStore(store.DefaultOptions()),
		nil,
		opts,
	)
	api := httptest.NewServer(server.New(":0", r).Handler())
	return storefront, api
}

func resolveBatch(t *testing.T, api *httptest.Server, urls []string) []*product.Product {
	t.Helper()

	payload, err := json.Marshal(map[string][]string{"urls": urls})
	assert.NoError(t, err)

	resp, err := http.Post(api.URL+"/api/products/resolve", "application/json", strings.NewReader(string(payload)))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Products []*product.Product `json:"products"`
		Count    int                `json:"count"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, len(urls), body.Count)
	return body.Products
}

func TestEndToEndResolution(t *testing.T) {
	storefront, api := newPipeline(t)
	defer storefront.Close()
	defer api.Close()

	products := resolveBatch(t, api, []string{storefront.URL + "/product/desk-1"})
	p := products[0]

	assert.Equal(t, "Walnut Standing Desk", p.Name)
	assert.Equal(t, "selector", p.ScrapingMethod)
	assert.Equal(t, product.CategoryFurniture, p.Category)
	if assert.NotNil(t, p.Price) {
		assert.InDelta(t, 499.00, *p.Price, 0.001)
	}
	if assert.NotNil(t, p.Weight) {
		assert.InDelta(t, 88, *p.Weight, 0.001)
	}
	assert.True(t, p.InStock)
	assert.False(t, p.NeedsPriceConfirmation)
	assert.Greater(t, p.ShippingCost, 0.0)
	assert.Greater(t, p.Confidence, 0.8)
}

func TestEndToEndSecondRequestServedFromStore(t *testing.T) {
	storefront, api := newPipeline(t)
	defer storefront.Close()
	defer api.Close()

	url := storefront.URL + "/product/desk-2"

	first := resolveBatch(t, api, []string{url})
	assert.Equal(t, "selector", first[0].ScrapingMethod)

	second := resolveBatch(t, api, []string{url})
	assert.Equal(t, product.MethodCache, second[0].ScrapingMethod)
	assert.Equal(t, first[0].Name, second[0].Name)
}

func TestEndToEndFallbackWhenScrapingFails(t *testing.T) {
	storefront, api := newPipeline(t)
	defer storefront.Close()
	defer api.Close()

	products := resolveBatch(t, api, []string{storefront.URL + "/missing/page"})
	p := products[0]

	assert.Equal(t, product.MethodFallback, p.ScrapingMethod)
	assert.Equal(t, "Product from "+product.UnknownRetailer, p.Name)
	assert.Equal(t, product.PlaceholderImage, p.Image)
	assert.True(t, p.NeedsPriceConfirmation)
	assert.Greater(t, p.ShippingCost, 0.0)
}
