package resolver

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bermudabuy/shipworker/internal/product"
	"bermudabuy/shipworker/internal/provider"
	"bermudabuy/shipworker/internal/store"
	pkgerrors "bermudabuy/shipworker/pkg/errors"
)

// echoProvider names the product after its URL so positional checks are easy
type echoProvider struct{}

func (echoProvider) Name() string    { return "selector" }
func (echoProvider) Available() bool { return true }

func (echoProvider) Scrape(ctx context.Context, url string) (*provider.RawProduct, error) {
	return &provider.RawProduct{Name: "Product at " + url}, nil
}

// panickyProvider panics for URLs containing "boom"
type panickyProvider struct{}

func (panickyProvider) Name() string    { return "selector" }
func (panickyProvider) Available() bool { return true }

func (panickyProvider) Scrape(ctx context.Context, url string) (*provider.RawProduct, error) {
	if strings.Contains(url, "boom") {
		panic("scripted panic")
	}
	return &provider.RawProduct{Name: "Product at " + url}, nil
}

func batchOptions() Options {
	opts := DefaultOptions()
	opts.GroupPause = 10 * time.Millisecond
	return opts
}

func TestResolveProductsPositionalResults(t *testing.T) {
	r := New([]provider.Extractor{echoProvider{}}, store.NewMemoryStore(store.DefaultOptions()), nil, batchOptions())

	urls := make([]string, 7)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://amazon.com/dp/%d", i)
	}

	results, err := r.ResolveProducts(context.Background(), urls)
	assert.NoError(t, err)
	assert.Len(t, results, len(urls))
	for i, p := range results {
		assert.Equal(t, urls[i], p.URL)
		assert.Equal(t, "Product at "+urls[i], p.Name)
	}
}

func TestResolveProductsEmptyBatch(t *testing.T) {
	r := New([]provider.Extractor{echoProvider{}}, store.NewMemoryStore(store.DefaultOptions()), nil, batchOptions())

	results, err := r.ResolveProducts(context.Background(), nil)
	assert.Nil(t, results)
	assert.True(t, pkgerrors.IsInvalidInput(err))
}

func TestResolveProductsOversizedBatch(t *testing.T) {
	r := New([]provider.Extractor{echoProvider{}}, store.NewMemoryStore(store.DefaultOptions()), nil, batchOptions())

	urls := make([]string, 21)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://amazon.com/dp/%d", i)
	}

	results, err := r.ResolveProducts(context.Background(), urls)
	assert.Nil(t, results)
	assert.True(t, pkgerrors.IsInvalidInput(err))
}

func TestResolveProductsPanicIsolation(t *testing.T) {
	r := New([]provider.Extractor{panickyProvider{}}, store.NewMemoryStore(store.DefaultOptions()), nil, batchOptions())

	urls := []string{
		"https://amazon.com/dp/1",
		"https://amazon.com/dp/boom",
		"https://amazon.com/dp/3",
	}

	results, err := r.ResolveProducts(context.Background(), urls)
	assert.NoError(t, err)
	assert.Len(t, results, 3)

	assert.Equal(t, "Product at "+urls[0], results[0].Name)
	assert.Equal(t, "Product at "+urls[2], results[2].Name)

	// the panicking slot still answers with the fallback
	assert.Equal(t, "Product from Amazon", results[1].Name)
	assert.Equal(t, product.MethodFallback, results[1].ScrapingMethod)
	assert.True(t, results[1].NeedsPriceConfirmation)
}

func TestResolveProductsGroupPacing(t *testing.T) {
	opts := batchOptions()
	opts.GroupSize = 2
	opts.GroupPause = 30 * time.Millisecond
	r := New([]provider.Extractor{echoProvider{}}, store.NewMemoryStore(store.DefaultOptions()), nil, opts)

	urls := []string{
		"https://amazon.com/dp/1",
		"https://amazon.com/dp/2",
		"https://amazon.com/dp/3",
		"https://amazon.com/dp/4",
	}

	started := time.Now()
	results, err := r.ResolveProducts(context.Background(), urls)
	elapsed := time.Since(started)

	assert.NoError(t, err)
	assert.Len(t, results, 4)
	// two groups means one inter-group pause
	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
}
