package product

import "math"

// Shipping cost model for Bermuda import freight
const (
	shippingBase       = 15.0
	perPoundRate       = 2.50
	dimensionalRate    = 1.75
	dimensionalDivisor = 166.0
	valueThreshold     = 200.0
	valueRate          = 0.02
	valueCap           = 50.0
	defaultPriceGuess  = 50.0

	// ShippingFloor and ShippingCeiling bound every estimate
	ShippingFloor   = 9.99
	ShippingCeiling = 450.0
)

var categoryMultipliers = map[string]float64{
	CategoryFurniture:   1.8,
	CategoryElectronics: 1.3,
	CategoryClothing:    0.8,
	CategoryHomeKitchen: 1.2,
	CategoryToys:        1.0,
	CategoryBooks:       0.7,
	CategorySports:      1.4,
	CategoryBeauty:      0.9,
	CategoryAutomotive:  1.6,
	CategoryJewelry:     1.1,
}

func categoryMultiplier(category string) float64 {
	if m, ok := categoryMultipliers[category]; ok {
		return m
	}
	return 1.0
}

// EstimateShipping computes the import shipping cost from whatever attributes
// are known. Pure function: same inputs always yield the same cost, and the
// result is clamped to [ShippingFloor, ShippingCeiling].
//
// When weight is unknown it is substituted with an estimate derived from the
// price; when the volumetric weight (l*w*h/166) exceeds the linear weight the
// excess is charged at a secondary rate, matching the carrier rule that bulky
// but light items are billed by volume.
func EstimateShipping(category string, weight, price *float64, dims *Dimensions) float64 {
	mult := categoryMultiplier(category)
	cost := shippingBase * mult

	p := defaultPriceGuess
	if price != nil && *price > 0 {
		p = *price
	}

	w := 0.0
	if weight != nil && *weight > 0 {
		w = *weight
	} else {
		w = math.Max(1, p*0.02*mult)
	}
	cost += w * perPoundRate

	if dims != nil && dims.Valid() {
		dimWeight := dims.Volume() / dimensionalDivisor
		if dimWeight > w {
			cost += (dimWeight - w) * dimensionalRate
		}
	}

	if p > valueThreshold {
		cost += math.Min(p*valueRate, valueCap)
	}

	cost = math.Round(cost*100) / 100
	if cost < ShippingFloor {
		return ShippingFloor
	}
	if cost > ShippingCeiling {
		return ShippingCeiling
	}
	return cost
}
