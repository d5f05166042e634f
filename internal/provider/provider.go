package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"bermudabuy/shipworker/internal/product"
	pkgerrors "bermudabuy/shipworker/pkg/errors"
	"bermudabuy/shipworker/services/cache"
)

// RawProduct is what a single extraction attempt yields. Every field except
// Name is optional, the resolver fills the gaps.
type RawProduct struct {
	Name       string
	Price      *float64
	Image      string
	Weight     *float64
	Dimensions *product.Dimensions
	Category   string
	InStock    *bool
}

// Extractor interface defines the contract for all extraction providers
type Extractor interface {
	// Scrape attempts to extract product data from a URL
	Scrape(ctx context.Context, url string) (*RawProduct, error)

	// Name returns the provider name for logging and method attribution
	Name() string

	// Available reports whether the provider is configured and usable
	Available() bool
}

// defaultBlockTime is how long a host stays blocked after a rate-limit response
const defaultBlockTime = 300 * time.Second

// baseProvider provides common functionality for all providers
type baseProvider struct {
	name      string
	cacheSvc  cache.CacheService
	blockTime time.Duration
	timeout   time.Duration
}

func (b *baseProvider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.timeout)
}

// blockKey builds the rate-limit cache key for a target host
func (b *baseProvider) blockKey(rawurl string) string {
	host := rawurl
	if u, err := url.Parse(rawurl); err == nil && u.Host != "" {
		host = u.Host
	}
	return b.name + "_" + strings.TrimPrefix(host, "www.") + "_rate_limited"
}

// blocked reports whether the target host is inside a rate-limit block window
func (b *baseProvider) blocked(rawurl string) bool {
	if b.cacheSvc == nil {
		return false
	}
	_, err := b.cacheSvc.Get(b.blockKey(rawurl))
	return err == nil
}

// block opens a rate-limit block window for the target host
func (b *baseProvider) block(rawurl string) {
	if b.cacheSvc == nil {
		return
	}
	value := fmt.Sprintf("%d", b.blockTime/time.Second)
	b.cacheSvc.Set(b.blockKey(rawurl), []byte(value), b.blockTime)
}

// requestError classifies a transport error into the provider error taxonomy
func requestError(name string, err error) error {
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return pkgerrors.NewProviderTimeout(name, err)
	}
	return pkgerrors.NewProviderFailure(name, "request failed", err)
}
