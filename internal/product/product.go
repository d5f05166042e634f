package product

import "time"

// Scraping method tags for records not produced by a live provider
const (
	MethodCache    = "cache"
	MethodFallback = "fallback"
)

// PlaceholderImage is used when no image could be extracted
const PlaceholderImage = "https://via.placeholder.com/300x300.png?text=Product"

// Dimensions represents a package size in inches
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether all three sides are positive
func (d Dimensions) Valid() bool {
	return d.Length > 0 && d.Width > 0 && d.Height > 0
}

// Volume returns the package volume in cubic inches
func (d Dimensions) Volume() float64 {
	return d.Length * d.Width * d.Height
}

// Product is the canonical record returned for a resolved URL.
// Price, Weight and Dimensions are pointers: absence means the value was
// neither extracted nor estimable, not that it is zero.
type Product struct {
	URL                    string      `json:"url"`
	Name                   string      `json:"name"`
	Price                  *float64    `json:"price,omitempty"`
	Image                  string      `json:"image"`
	Retailer               string      `json:"retailer"`
	Category               string      `json:"category"`
	Weight                 *float64    `json:"weight,omitempty"`
	Dimensions             *Dimensions `json:"dimensions,omitempty"`
	InStock                bool        `json:"in_stock"`
	ShippingCost           float64     `json:"shipping_cost"`
	ScrapingMethod         string      `json:"scraping_method"`
	Confidence             float64     `json:"confidence"`
	NeedsPriceConfirmation bool        `json:"needs_price_confirmation"`
	TimesSeen              int         `json:"times_seen"`
	LastUpdated            time.Time   `json:"last_updated"`
}

// Clone returns a deep copy of the product
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	if p.Price != nil {
		v := *p.Price
		clone.Price = &v
	}
	if p.Weight != nil {
		v := *p.Weight
		clone.Weight = &v
	}
	if p.Dimensions != nil {
		v := *p.Dimensions
		clone.Dimensions = &v
	}
	return &clone
}
