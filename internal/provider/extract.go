package provider

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"bermudabuy/shipworker/helpers"
	"bermudabuy/shipworker/internal/product"
)

// priceSelectors are tried in order after the structured metadata
var priceSelectors = []string{
	"meta[property='product:price:amount']",
	"meta[property='og:price:amount']",
	"[itemprop='price']",
	".a-price .a-offscreen",
	"#priceblock_ourprice",
	".product-price",
	".price",
}

var outOfStockPhrases = []string{
	"out of stock",
	"currently unavailable",
	"sold out",
	"no longer available",
}

// ParseProductPage extracts product data from an HTML document. It returns
// nil when no product name can be found, which callers treat as an
// extraction failure.
func ParseProductPage(doc *goquery.Document) *RawProduct {
	raw := &RawProduct{
		Name:  extractName(doc),
		Image: metaContent(doc, "meta[property='og:image']", "meta[name='twitter:image']"),
	}
	if raw.Name == "" {
		return nil
	}

	if price, ok := extractPrice(doc); ok {
		raw.Price = &price
	}
	extractPhysical(doc, raw)
	raw.InStock = extractStock(doc)

	return raw
}

func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if content, ok := doc.Find(sel).First().Attr("content"); ok {
			if trimmed := strings.TrimSpace(content); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func extractName(doc *goquery.Document) string {
	if name := metaContent(doc, "meta[property='og:title']", "meta[name='twitter:title']"); name != "" {
		return name
	}
	for _, sel := range []string{"h1[itemprop='name']", "#productTitle", "h1"} {
		if name := strings.TrimSpace(doc.Find(sel).First().Text()); name != "" {
			return name
		}
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func extractPrice(doc *goquery.Document) (float64, bool) {
	for _, sel := range priceSelectors {
		node := doc.Find(sel).First()
		text, ok := node.Attr("content")
		if !ok || text == "" {
			text = node.Text()
		}
		if price, ok := helpers.ParsePrice(text); ok {
			return price, true
		}
	}
	return 0, false
}

// extractPhysical scans detail rows and list items for weight and dimensions
func extractPhysical(doc *goquery.Document, raw *RawProduct) {
	doc.Find("tr, li, dd, p, span").EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := strings.ToLower(strings.TrimSpace(s.Text()))
		if text == "" || len(text) > 200 {
			return true
		}

		if raw.Weight == nil && strings.Contains(text, "weight") {
			if w, ok := helpers.ParseWeight(text); ok {
				raw.Weight = &w
			}
		}
		if raw.Dimensions == nil && strings.Contains(text, "dimension") {
			if l, w, h, ok := helpers.ParseDimensions(text); ok {
				raw.Dimensions = &product.Dimensions{Length: l, Width: w, Height: h}
			}
		}

		return raw.Weight == nil || raw.Dimensions == nil
	})
}

func extractStock(doc *goquery.Document) *bool {
	for _, sel := range []string{"#availability", ".availability", ".stock-status"} {
		text := strings.ToLower(strings.TrimSpace(doc.Find(sel).First().Text()))
		if text == "" {
			continue
		}
		for _, phrase := range outOfStockPhrases {
			if strings.Contains(text, phrase) {
				out := false
				return &out
			}
		}
		if strings.Contains(text, "in stock") {
			in := true
			return &in
		}
	}

	// whole-page sweep for the unmistakable phrases only
	text := strings.ToLower(doc.Find("body").Text())
	for _, phrase := range outOfStockPhrases {
		if strings.Contains(text, phrase) {
			out := false
			return &out
		}
	}
	return nil
}
