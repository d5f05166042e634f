package store

import (
	"sort"
	"strings"
	"time"

	"bermudabuy/shipworker/internal/product"
)

// maxPatternSamples bounds the per-category sample windows
const maxPatternSamples = 200

// CategoryPattern aggregates physical attributes of every product seen in a
// category. Created lazily on the first product, updated incrementally,
// never deleted.
type CategoryPattern struct {
	Weights   []float64 `json:"weights"`
	Lengths   []float64 `json:"lengths"`
	Widths    []float64 `json:"widths"`
	Heights   []float64 `json:"heights"`
	MinPrice  float64   `json:"min_price"`
	MaxPrice  float64   `json:"max_price"`
	MinWeight float64   `json:"min_weight"`
	MaxWeight float64   `json:"max_weight"`
	Samples   int       `json:"samples"`
}

// MethodStats counts attempts and successes for one scraping method
type MethodStats struct {
	Attempts  int `json:"attempts"`
	Successes int `json:"successes"`
}

// RetailerPattern tracks scrape outcomes per retailer. Observability only:
// it is never consulted when ordering providers.
type RetailerPattern struct {
	Attempts      int                     `json:"attempts"`
	Successes     int                     `json:"successes"`
	Methods       map[string]*MethodStats `json:"methods"`
	MissingFields map[string]int          `json:"missing_fields"`
}

// SuccessRate returns the fraction of attempts that produced usable data
func (rp *RetailerPattern) SuccessRate() float64 {
	if rp.Attempts == 0 {
		return 0
	}
	return float64(rp.Successes) / float64(rp.Attempts)
}

// BestMethod returns the method with the most successes
func (rp *RetailerPattern) BestMethod() string {
	best := ""
	bestCount := 0
	for method, stats := range rp.Methods {
		if stats.Successes > bestCount {
			best = method
			bestCount = stats.Successes
		}
	}
	return best
}

// trimmedMean averages samples after discarding the extreme 20% at each end.
// The trim only kicks in above five data points; smaller sets use a plain
// mean.
func trimmedMean(samples []float64) float64 {
	n := len(samples)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, samples)
	sort.Float64s(sorted)

	if n > 5 {
		k := n / 5
		sorted = sorted[k : n-k]
	}

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	return sum / float64(len(sorted))
}

// appendBounded appends a sample, dropping the oldest when the window is full
func appendBounded(samples []float64, v float64) []float64 {
	samples = append(samples, v)
	if len(samples) > maxPatternSamples {
		samples = samples[len(samples)-maxPatternSamples:]
	}
	return samples
}

// ScoreConfidence derives a confidence score from which fields are present
func ScoreConfidence(p *product.Product) float64 {
	score := 0.3
	if p.Name != "" && !strings.HasPrefix(p.Name, "Product from ") {
		score += 0.2
	}
	if p.Price != nil {
		score += 0.2
	}
	if p.Weight != nil {
		score += 0.15
	}
	if p.Dimensions != nil && p.Dimensions.Valid() {
		score += 0.15
	}
	if p.Image != "" && p.Image != product.PlaceholderImage {
		score += 0.1
	}
	if score > 1 {
		score = 1
	}
	return score
}

// mergeOnSave applies the upsert bookkeeping to an incoming product:
// the observation counter carries over and grows, and confidence never
// drops below what the URL already earned. Callers that confirmed data
// with the user pass an explicitly higher Confidence, which wins.
func mergeOnSave(existing, incoming *product.Product, now time.Time) {
	timesSeen := 1
	prevConfidence := 0.0
	if existing != nil {
		timesSeen = existing.TimesSeen + 1
		prevConfidence = existing.Confidence
	}

	confidence := ScoreConfidence(incoming)
	// small bonus for repeated observation of the same URL
	bonus := 0.02 * float64(timesSeen-1)
	if bonus > 0.1 {
		bonus = 0.1
	}
	confidence += bonus
	if confidence > 0.99 {
		confidence = 0.99
	}
	if incoming.Confidence > confidence {
		confidence = incoming.Confidence
	}
	if prevConfidence > confidence {
		confidence = prevConfidence
	}
	if confidence > 1 {
		confidence = 1
	}

	incoming.TimesSeen = timesSeen
	incoming.Confidence = confidence
	incoming.LastUpdated = now
}

// updateCategoryPattern folds one observed product into its category aggregate
func updateCategoryPattern(pat *CategoryPattern, p *product.Product) {
	pat.Samples++

	if p.Weight != nil && *p.Weight > 0 {
		w := *p.Weight
		pat.Weights = appendBounded(pat.Weights, w)
		if pat.MinWeight == 0 || w < pat.MinWeight {
			pat.MinWeight = w
		}
		if w > pat.MaxWeight {
			pat.MaxWeight = w
		}
	}

	if p.Dimensions != nil && p.Dimensions.Valid() {
		pat.Lengths = appendBounded(pat.Lengths, p.Dimensions.Length)
		pat.Widths = appendBounded(pat.Widths, p.Dimensions.Width)
		pat.Heights = appendBounded(pat.Heights, p.Dimensions.Height)
	}

	if p.Price != nil && *p.Price > 0 {
		if pat.MinPrice == 0 || *p.Price < pat.MinPrice {
			pat.MinPrice = *p.Price
		}
		if *p.Price > pat.MaxPrice {
			pat.MaxPrice = *p.Price
		}
	}
}

// updateRetailerPattern folds one scrape attempt into its retailer aggregate
func updateRetailerPattern(rp *RetailerPattern, p *product.Product, method string) {
	if rp.Methods == nil {
		rp.Methods = make(map[string]*MethodStats)
	}
	if rp.MissingFields == nil {
		rp.MissingFields = make(map[string]int)
	}

	rp.Attempts++
	stats := rp.Methods[method]
	if stats == nil {
		stats = &MethodStats{}
		rp.Methods[method] = stats
	}
	stats.Attempts++

	success := p != nil && p.Name != "" && method != product.MethodFallback
	if success {
		rp.Successes++
		stats.Successes++
	}

	if p != nil {
		if p.Price == nil {
			rp.MissingFields["price"]++
		}
		if p.Weight == nil {
			rp.MissingFields["weight"]++
		}
		if p.Dimensions == nil {
			rp.MissingFields["dimensions"]++
		}
		if p.Image == "" || p.Image == product.PlaceholderImage {
			rp.MissingFields["image"]++
		}
	}
}

// categoryEstimation builds the tier-two estimation from a category pattern.
// The sample gate counts actual weight observations, not saves: fallback
// records with no physical data must not open the gate.
func categoryEstimation(pat *CategoryPattern, minSamples int) *Estimation {
	if pat == nil || len(pat.Weights) <= minSamples {
		return nil
	}
	return &Estimation{
		Weight: trimmedMean(pat.Weights),
		Dimensions: product.Dimensions{
			Length: trimmedMean(pat.Lengths),
			Width:  trimmedMean(pat.Widths),
			Height: trimmedMean(pat.Heights),
		},
		Confidence: 0.6,
		Source:     SourceCategoryPattern,
		Samples:    len(pat.Weights),
	}
}
