package server

import (
	"context"
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
	"bermudabuy/shipworker/services/resolver"
)

// staticProvider answers every URL with the same product
type staticProvider struct{}

func (staticProvider) Name() string    { return "selector" }
func (staticProvider) Available() bool { return true }

func (staticProvider) Scrape(ctx context.Context, url string) (*provider.RawProduct, error) {
	price := 249.99
	weight := 35.2
	return &provider.RawProduct{
		Name:   "Ergonomic Office Chair",
		Price:  &price,
		Weight: &weight,
	}, nil
}

func newTestServer() *httptest.Server {
	opts := resolver.DefaultOptions()
	opts.GroupPause = 0
	r := resolver.New([]provider.Extractor{staticProvider{}}, store.NewMemoryStore(store.DefaultOptions()), nil, opts)
	return httptest.NewServer(New(":0", r).Handler())
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestResolveEndpoint(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	payload := `{"urls": ["https://amazon.com/dp/1", "https://walmart.com/ip/2"]}`
	resp, err := http.Post(ts.URL+"/api/products/resolve", "application/json", strings.NewReader(payload))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Products []*product.Product `json:"products"`
		Count    int                `json:"count"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.Count)
	assert.Len(t, body.Products, 2)

	assert.Equal(t, "https://amazon.com/dp/1", body.Products[0].URL)
	assert.Equal(t, "Amazon", body.Products[0].Retailer)
	assert.Equal(t, "Walmart", body.Products[1].Retailer)
	assert.Greater(t, body.Products[0].ShippingCost, 0.0)
}

func TestResolveEndpointBadJSON(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/products/resolve", "application/json", strings.NewReader("{not json"))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestResolveEndpointEmptyBatch(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/products/resolve", "application/json", strings.NewReader(`{"urls": []}`))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "empty")
}

func TestResolveEndpointOversizedBatch(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	urls := make([]string, 21)
	for i := range urls {
		urls[i] = "https://amazon.com/dp/x"
	}
	payload, _ := json.Marshal(map[string][]string{"urls": urls})

	resp, err := http.Post(ts.URL+"/api/products/resolve", "application/json", strings.NewReader(string(payload)))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServerShutdown(t *testing.T) {
	opts := resolver.DefaultOptions()
	opts.GroupPause = 0
	r := resolver.New([]provider.Extractor{staticProvider{}}, store.NewMemoryStore(store.DefaultOptions()), nil, opts)
	s := New("127.0.0.1:0", r)

	done := make(chan error, 1)
	go func() { done <- s.Start() }()

	time.Sleep(50 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Shutdown(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Error("server did not stop after shutdown")
	}
}