package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bermudabuy/shipworker/config"
)

func TestCreateProvidersOrder(t *testing.T) {
	cfg := &config.Config{
		BrowserAddr:  "http://localhost:3000",
		AIExtractURL: "https://extract.example.com",
	}

	providers := CreateProviders(cfg, newMockCache())
	assert.Len(t, providers, 4)

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"browser", "ai_extract", "selector", "barcode"}, names)
}

func TestCreateProvidersAvailability(t *testing.T) {
	// nothing configured: only the selector provider can run
	providers := CreateProviders(&config.Config{}, nil)

	available := make(map[string]bool)
	for _, p := range providers {
		available[p.Name()] = p.Available()
	}
	assert.False(t, available["browser"])
	assert.False(t, available["ai_extract"])
	assert.True(t, available["selector"])
	assert.False(t, available["barcode"])
}
