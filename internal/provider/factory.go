package provider

import (
	"bermudabuy/shipworker/config"
	"bermudabuy/shipworker/logger"
	"bermudabuy/shipworker/services/cache"
)

// CreateProviders creates all extraction providers in cascade priority order.
// Unconfigured providers are still created, their Available method keeps the
// resolver from calling them.
func CreateProviders(cfg *config.Config, cacheSvc cache.CacheService) []Extractor {
	providers := []Extractor{
		NewBrowserProvider(cfg.BrowserAddr, cfg.BrowserTimeout, cacheSvc),
		NewAIExtractProvider(cfg.AIExtractURL, cfg.AIExtractAPIKey, cfg.AIExtractTimeout, cacheSvc),
		NewSelectorProvider(cfg.SelectorTimeout, cacheSvc),
		NewBarcodeProvider(cfg.BarcodeAPIURL, cfg.BarcodeAPIKey, cfg.BarcodeTimeout, cacheSvc),
	}

	for _, p := range providers {
		logger.ForProvider(p.Name()).Debug().
			Bool("available", p.Available()).
			Msg("Provider created")
	}

	return providers
}
