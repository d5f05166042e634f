package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	pkgerrors "bermudabuy/shipworker/pkg/errors"
)

func TestAIExtractProviderScrape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"name": "Cast Iron Skillet",
			"price": 34.95,
			"image": "https://example.com/skillet.jpg",
			"weight_lbs": 8.0,
			"dimensions": {"length": 16, "width": 10, "height": 3},
			"in_stock": true,
			"category": "Home & Kitchen"
		}`))
	}))
	defer server.Close()

	p := NewAIExtractProvider(server.URL, "test-key", 5*time.Second, newMockCache())
	assert.Equal(t, "ai_extract", p.Name())
	assert.True(t, p.Available())

	raw, err := p.Scrape(context.Background(), "https://example.com/skillet")
	assert.NoError(t, err)
	assert.NotNil(t, raw)
	assert.Equal(t, "Cast Iron Skillet", raw.Name)
	assert.Equal(t, "Home & Kitchen", raw.Category)
	if assert.NotNil(t, raw.Price) {
		assert.InDelta(t, 34.95, *raw.Price, 0.001)
	}
	if assert.NotNil(t, raw.Weight) {
		assert.InDelta(t, 8.0, *raw.Weight, 0.001)
	}
	if assert.NotNil(t, raw.Dimensions) {
		assert.InDelta(t, 16, raw.Dimensions.Length, 0.001)
	}
	if assert.NotNil(t, raw.InStock) {
		assert.True(t, *raw.InStock)
	}
}

func TestAIExtractProviderUnconfigured(t *testing.T) {
	p := NewAIExtractProvider("", "", 5*time.Second, nil)
	assert.False(t, p.Available())

	p = NewAIExtractProvider("https://extract.example.com", "", 5*time.Second, nil)
	assert.False(t, p.Available())
}

func TestAIExtractProviderEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name": ""}`))
	}))
	defer server.Close()

	p := NewAIExtractProvider(server.URL, "test-key", 5*time.Second, newMockCache())
	raw, err := p.Scrape(context.Background(), "https://example.com/p")
	assert.Nil(t, raw)

	var serr *pkgerrors.ScrapeError
	assert.ErrorAs(t, err, &serr)
	assert.Equal(t, pkgerrors.ErrorTypeProviderFailure, serr.Type)
}

func TestAIExtractProviderAuthRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	p := NewAIExtractProvider(server.URL, "bad-key", 5*time.Second, newMockCache())
	_, err := p.Scrape(context.Background(), "https://example.com/p")
	assert.True(t, pkgerrors.IsUnavailable(err))
}
