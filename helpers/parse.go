package helpers

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	pricePattern = regexp.MustCompile(`(\d{1,3}(?:,\d{3})*|\d+)(?:\.(\d{1,2}))?`)

	weightPattern = regexp.MustCompile(`(?i)([\d.]+)\s*(pounds?|lbs?|ounces?|oz|kilograms?|kgs?|grams?|g)\b`)

	dimensionsPattern = regexp.MustCompile(`(?i)([\d.]+)\s*(?:"|in(?:ch(?:es)?)?|cm)?\s*[x×]\s*([\d.]+)\s*(?:"|in(?:ch(?:es)?)?|cm)?\s*[x×]\s*([\d.]+)\s*("|in(?:ch(?:es)?)?|cm)?`)
)

// ParsePrice extracts a currency amount from a text fragment like "$1,299.99"
// or "USD 45". Returns false when no usable number is present.
func ParsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	match := pricePattern.FindStringSubmatch(s)
	if match == nil {
		return 0, false
	}

	number := strings.ReplaceAll(match[1], ",", "")
	if match[2] != "" {
		number += "." + match[2]
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}

// ParseWeight extracts a weight from a text fragment like "2.5 pounds" or
// "800 g" and converts it to pounds.
func ParseWeight(s string) (float64, bool) {
	match := weightPattern.FindStringSubmatch(s)
	if match == nil {
		return 0, false
	}

	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil || value <= 0 {
		return 0, false
	}

	unit := strings.ToLower(match[2])
	switch {
	case strings.HasPrefix(unit, "pound"), strings.HasPrefix(unit, "lb"):
		// already pounds
	case strings.HasPrefix(unit, "ounce"), unit == "oz":
		value /= 16
	case strings.HasPrefix(unit, "kilogram"), strings.HasPrefix(unit, "kg"):
		value *= 2.20462
	case strings.HasPrefix(unit, "gram"), unit == "g":
		value *= 0.00220462
	default:
		return 0, false
	}

	return value, true
}

// ParseDimensions extracts a length/width/height triple from a fragment like
// "10 x 8 x 2.5 inches" or "30 x 20 x 5 cm" and converts it to inches.
func ParseDimensions(s string) (length, width, height float64, ok bool) {
	match := dimensionsPattern.FindStringSubmatch(s)
	if match == nil {
		return 0, 0, 0, false
	}

	l, err1 := strconv.ParseFloat(match[1], 64)
	w, err2 := strconv.ParseFloat(match[2], 64)
	h, err3 := strconv.ParseFloat(match[3], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, false
	}
	if l <= 0 || w <= 0 || h <= 0 {
		return 0, 0, 0, false
	}

	if strings.EqualFold(match[4], "cm") {
		l /= 2.54
		w /= 2.54
		h /= 2.54
	}

	return l, w, h, true
}
