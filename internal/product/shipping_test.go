package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fptr(v float64) *float64 { return &v }

func TestEstimateShippingDeterministic(t *testing.T) {
	weight := fptr(3.5)
	price := fptr(120.0)
	dims := &Dimensions{Length: 12, Width: 10, Height: 4}

	first := EstimateShipping(CategoryElectronics, weight, price, dims)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, EstimateShipping(CategoryElectronics, weight, price, dims))
	}
}

func TestEstimateShippingBounds(t *testing.T) {
	// sweep a grid of inputs; every cost must land inside [floor, ceiling]
	weights := []*float64{nil, fptr(0.1), fptr(5), fptr(80), fptr(500)}
	prices := []*float64{nil, fptr(1), fptr(50), fptr(500), fptr(20000)}
	dims := []*Dimensions{
		nil,
		{Length: 2, Width: 2, Height: 2},
		{Length: 40, Width: 30, Height: 30},
		{Length: 100, Width: 100, Height: 100},
	}

	for _, cat := range Categories() {
		for _, w := range weights {
			for _, p := range prices {
				for _, d := range dims {
					cost := EstimateShipping(cat, w, p, d)
					assert.GreaterOrEqual(t, cost, ShippingFloor)
					assert.LessOrEqual(t, cost, ShippingCeiling)
				}
			}
		}
	}
}

func TestEstimateShippingKnownValues(t *testing.T) {
	// 2 lb book, $20: 15*0.7 + 2*2.5 = 15.50
	cost := EstimateShipping(CategoryBooks, fptr(2), fptr(20), nil)
	assert.Equal(t, 15.50, cost)

	// no weight, no price: estimated weight = max(1, 50*0.02*1.0) = 1
	// 15 + 1*2.5 = 17.50
	cost = EstimateShipping(GeneralMerchandise, nil, nil, nil)
	assert.Equal(t, 17.50, cost)
}

func TestEstimateShippingDimensionalWeight(t *testing.T) {
	weight := fptr(2.0)
	price := fptr(50.0)
	small := &Dimensions{Length: 5, Width: 4, Height: 3}
	bulky := &Dimensions{Length: 30, Width: 20, Height: 20}

	base := EstimateShipping(GeneralMerchandise, weight, price, nil)

	// small box: volumetric weight 60/166 < 2 lb, no surcharge
	assert.Equal(t, base, EstimateShipping(GeneralMerchandise, weight, price, small))

	// bulky box: volumetric weight 12000/166 ≈ 72 lb, excess is charged
	withDims := EstimateShipping(GeneralMerchandise, weight, price, bulky)
	assert.Greater(t, withDims, base)
}

func TestEstimateShippingValueProtection(t *testing.T) {
	weight := fptr(1.0)

	cheap := EstimateShipping(GeneralMerchandise, weight, fptr(100), nil)
	pricey := EstimateShipping(GeneralMerchandise, weight, fptr(1000), nil)
	assert.Greater(t, pricey, cheap)

	// the surcharge is capped: a $5,000 and a $50,000 item pay the same protection
	capped := EstimateShipping(GeneralMerchandise, weight, fptr(5000), nil)
	doubled := EstimateShipping(GeneralMerchandise, weight, fptr(50000), nil)
	assert.Equal(t, capped, doubled)
}

func TestEstimateShippingUnknownWeightUsesPrice(t *testing.T) {
	// heavier implied weight for pricier items of the same category
	low := EstimateShipping(CategoryFurniture, nil, fptr(100), nil)
	high := EstimateShipping(CategoryFurniture, nil, fptr(190), nil)
	assert.Greater(t, high, low)
}

func TestEstimateShippingRoundsToCents(t *testing.T) {
	cost := EstimateShipping(CategoryElectronics, fptr(1.333), fptr(33.33), nil)
	assert.Equal(t, cost, float64(int(cost*100+0.5))/100)
}
