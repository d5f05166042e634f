package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bermudabuy/shipworker/internal/product"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()

	s := NewRedisStore("localhost:6379", 0, DefaultOptions())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Ping(ctx); err != nil {
		s.Close()
		t.Skip("Redis is not available, skipping test")
	}
	return s
}

func TestRedisStoreSaveAndLookup(t *testing.T) {
	s := newTestRedisStore(t)
	defer s.Close()
	ctx := context.Background()

	url := fmt.Sprintf("https://amazon.com/dp/test-%d", time.Now().UnixNano())
	defer s.client.Del(ctx, productKey(url))

	p := testProduct(url)
	assert.NoError(t, s.SaveProduct(ctx, p))
	assert.Equal(t, 1, p.TimesSeen)

	got, err := s.GetKnownProduct(ctx, url)
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, 1, got.TimesSeen)

	// second save merges against the stored record
	assert.NoError(t, s.SaveProduct(ctx, testProduct(url)))
	got, err = s.GetKnownProduct(ctx, url)
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, 2, got.TimesSeen)
}

func TestRedisStoreUnknownURL(t *testing.T) {
	s := newTestRedisStore(t)
	defer s.Close()

	got, err := s.GetKnownProduct(context.Background(), "https://amazon.com/dp/never-saved")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreRecordScrapingResult(t *testing.T) {
	s := newTestRedisStore(t)
	defer s.Close()
	ctx := context.Background()

	retailer := fmt.Sprintf("TestRetailer-%d", time.Now().UnixNano())
	defer s.client.Del(ctx, retailerKeyPrefix+retailer)

	p := testProduct("https://example.com/p/1")
	assert.NoError(t, s.RecordScrapingResult(ctx, p.URL, retailer, p, "selector"))
	assert.NoError(t, s.RecordScrapingResult(ctx, p.URL, retailer, nil, product.MethodFallback))

	data, err := s.client.Get(ctx, retailerKeyPrefix+retailer).Bytes()
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"attempts":2`)
}
