package scoring

import (
	"regexp"
	"strconv"
)

var (
	rePercent  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	reFraction = regexp.MustCompile(`(\d+)\s*/\s*(\d+)`)
	reDecimal  = regexp.MustCompile(`(?:^|[^\d.])(0\.\d+)`)
)

// RoyaltyClass buckets a royalty percentage against the 12.5% (1/8) benchmark.
type RoyaltyClass string

const (
	RoyaltyUnknown       RoyaltyClass = "unknown"
	RoyaltyBelowMarket   RoyaltyClass = "below market"
	RoyaltyStandard      RoyaltyClass = "standard"
	RoyaltyAboveStandard RoyaltyClass = "above standard"
)

// ExtractRoyalty returns the royalty as a percentage. A percentage wins over a
// fraction, which wins over a bare decimal. ok is false when none is present.
func ExtractRoyalty(royalty string) (pct float64, ok bool) {
	if m := rePercent.FindStringSubmatch(royalty); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v, true
		}
	}
	if m := reFraction.FindStringSubmatch(royalty); m != nil {
		num, err1 := strconv.ParseFloat(m[1], 64)
		den, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil && den != 0 {
			return num / den * 100, true
		}
	}
	if m := reDecimal.FindStringSubmatch(royalty); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v * 100, true
		}
	}
	return 0, false
}

// ClassifyRoyalty compares a royalty string with market norms.
func ClassifyRoyalty(royalty string) RoyaltyClass {
	pct, ok := ExtractRoyalty(royalty)
	if !ok {
		return RoyaltyUnknown
	}
	switch {
	case pct > 12.5:
		return RoyaltyAboveStandard
	case pct < 10:
		return RoyaltyBelowMarket
	default:
		return RoyaltyStandard
	}
}
