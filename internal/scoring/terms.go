package scoring

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/lease-intake/constants"
	"github.com/joseph-ayodele/lease-intake/internal/entity"
)

var (
	reAcres    = regexp.MustCompile(`(?i)(\d[\d,]*(?:\.\d+)?)\s*(?:net\s+|gross\s+)?acres?`)
	reNumber   = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
	reTermYear = regexp.MustCompile(`(?i)(\d+)\)?\s*(?:\(\w+\)\s*)?years?`)
)

type AcreageClass string

const (
	AcreageUnknown AcreageClass = "unknown"
	AcreageSmall   AcreageClass = "small"
	AcreageMedium  AcreageClass = "medium"
	AcreageLarge   AcreageClass = "large"
)

// ExtractAcreage returns the first number followed by "acres", or failing
// that the first number in the string.
func ExtractAcreage(acreage string) (float64, bool) {
	raw := ""
	if m := reAcres.FindStringSubmatch(acreage); m != nil {
		raw = m[1]
	} else if m := reNumber.FindString(acreage); m != "" {
		raw = m
	}
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func ClassifyAcreage(acreage string) AcreageClass {
	v, ok := ExtractAcreage(acreage)
	switch {
	case !ok:
		return AcreageUnknown
	case v < 50:
		return AcreageSmall
	case v < 500:
		return AcreageMedium
	default:
		return AcreageLarge
	}
}

// ExtractTermYears returns the first integer followed by "year" or "years".
func ExtractTermYears(term string) (int, bool) {
	m := reTermYear.FindStringSubmatch(term)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsStandardTerm is true for a primary term of 3 to 5 years.
func IsStandardTerm(term string) bool {
	y, ok := ExtractTermYears(term)
	return ok && y >= 3 && y <= 5
}

// PartyCount counts lessors and lessees that are real names.
func PartyCount(r entity.AnalysisResult) int {
	n := 0
	for _, p := range append(append([]string{}, r.Lessors...), r.Lessees...) {
		if p != "" && !constants.IsMissing(p) {
			n++
		}
	}
	return n
}

func IsComplexParties(r entity.AnalysisResult) bool {
	return PartyCount(r) > 4
}

// CriticalInsights returns the insights that mention a risk keyword.
func CriticalInsights(insights []string) []string {
	var out []string
	for _, in := range insights {
		lower := strings.ToLower(in)
		for _, kw := range constants.CriticalInsightKeywords {
			if strings.Contains(lower, kw) {
				out = append(out, in)
				break
			}
		}
	}
	return out
}
